package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredential_Validate(t *testing.T) {
	var nilCred *Credential
	assert.Error(t, nilCred.Validate())
	assert.EqualError(t, (&Credential{}).Validate(), "access_token is required")
	assert.NoError(t, (&Credential{AccessToken: "a"}).Validate())
}

func TestCredential_ExpiresAt(t *testing.T) {
	now := time.Unix(1_700_000_000, 500_000_000)
	c := &Credential{AccessToken: "a", ExpiresIn: Ptr(int64(3600))}

	_, ok := c.ExpiresAt()
	assert.False(t, ok, "missing obtained_at")

	c.Stamp(now)
	at, ok := c.ExpiresAt()
	require.True(t, ok)
	assert.WithinDuration(t, now.Add(time.Hour), at, time.Millisecond)
	assert.WithinDuration(t, now, c.ObtainedTime(), time.Millisecond)

	c.ExpiresIn = nil
	_, ok = c.ExpiresAt()
	assert.False(t, ok, "missing expires_in")
}

func TestCredential_JSONShape(t *testing.T) {
	raw := `{"access_token":"tok","token_type":"bearer","expires_in":15551999,"obtained_at":1700000000.25,"scope":"tasks:read tasks:write"}`
	var c Credential
	require.NoError(t, json.Unmarshal([]byte(raw), &c))
	assert.Equal(t, "tok", c.AccessToken)
	assert.False(t, c.HasRefreshToken())
	require.NotNil(t, c.ExpiresIn)
	assert.Equal(t, int64(15551999), *c.ExpiresIn)
	require.NotNil(t, c.ObtainedAt)
	assert.InDelta(t, 1700000000.25, *c.ObtainedAt, 1e-6)

	out, err := json.Marshal(&Credential{AccessToken: "x"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"access_token":"x"}`, string(out))
}

func TestCredential_Clone(t *testing.T) {
	c := &Credential{AccessToken: "a", RefreshToken: "r", ExpiresIn: Ptr(int64(10))}
	c.Stamp(time.Now())

	clone := c.Clone()
	*clone.ExpiresIn = 99
	*clone.ObtainedAt = 1
	assert.Equal(t, int64(10), *c.ExpiresIn)
	assert.NotEqual(t, float64(1), *c.ObtainedAt)

	var nilCred *Credential
	assert.Nil(t, nilCred.Clone())
}
