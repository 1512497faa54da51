package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTime_Layouts(t *testing.T) {
	want := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	for _, in := range []string{
		"2024-03-01T09:30:00.000+0000",
		"2024-03-01T09:30:00+0000",
		"2024-03-01T09:30:00Z",
		"2024-03-01T18:30:00+09:00",
	} {
		got, err := ParseTime(in)
		require.NoError(t, err, in)
		assert.True(t, got.Equal(want), "%s parsed to %s", in, got)
	}

	_, err := ParseTime("yesterday")
	assert.Error(t, err)
}

func TestTime_JSON(t *testing.T) {
	ts := NewTime(time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC))
	data, err := json.Marshal(ts)
	require.NoError(t, err)
	assert.Equal(t, `"2024-03-01T09:30:00.000+0000"`, string(data))

	var back Time
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, back.Equal(ts.Time))

	var empty Time
	require.NoError(t, json.Unmarshal([]byte(`""`), &empty))
	assert.True(t, empty.IsZero())
	assert.Equal(t, "", empty.String())

	zero, err := json.Marshal(Time{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(zero))

	assert.Error(t, json.Unmarshal([]byte(`12345`), &back))
}
