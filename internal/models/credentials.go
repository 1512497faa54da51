package models

import (
	"fmt"
	"math"
	"time"
)

// Credential is the persisted OAuth token record.
// ExpiresIn and ObtainedAt are pointers so a record that lacks them can be
// told apart from one that expires immediately; both cases count as expired.
type Credential struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token,omitempty"`
	TokenType    string   `json:"token_type,omitempty"`
	ExpiresIn    *int64   `json:"expires_in,omitempty"`
	ObtainedAt   *float64 `json:"obtained_at,omitempty"` // unix seconds
	Scope        string   `json:"scope,omitempty"`
}

// Validate checks that the record can be used at all.
func (c *Credential) Validate() error {
	if c == nil {
		return fmt.Errorf("credential is nil")
	}
	if c.AccessToken == "" {
		return fmt.Errorf("access_token is required")
	}
	return nil
}

// HasRefreshToken reports whether the record can be renewed without the user.
func (c *Credential) HasRefreshToken() bool {
	return c != nil && c.RefreshToken != ""
}

// ExpiresAt returns obtained_at + expires_in. ok is false when either is missing.
func (c *Credential) ExpiresAt() (at time.Time, ok bool) {
	if c == nil || c.ExpiresIn == nil || c.ObtainedAt == nil {
		return time.Time{}, false
	}
	sec, frac := math.Modf(*c.ObtainedAt)
	obtained := time.Unix(int64(sec), int64(frac*float64(time.Second)))
	return obtained.Add(time.Duration(*c.ExpiresIn) * time.Second), true
}

// Stamp sets obtained_at to now.
func (c *Credential) Stamp(now time.Time) {
	ts := float64(now.UnixNano()) / float64(time.Second)
	c.ObtainedAt = &ts
}

// ObtainedTime returns obtained_at as a time, zero when missing.
func (c *Credential) ObtainedTime() time.Time {
	if c == nil || c.ObtainedAt == nil {
		return time.Time{}
	}
	sec, frac := math.Modf(*c.ObtainedAt)
	return time.Unix(int64(sec), int64(frac*float64(time.Second)))
}

// Clone returns a deep copy.
func (c *Credential) Clone() *Credential {
	if c == nil {
		return nil
	}
	out := *c
	if c.ExpiresIn != nil {
		v := *c.ExpiresIn
		out.ExpiresIn = &v
	}
	if c.ObtainedAt != nil {
		v := *c.ObtainedAt
		out.ObtainedAt = &v
	}
	return &out
}
