package models

import (
	"bytes"
	"fmt"
	"strings"
	"time"
)

// ProviderTimeLayout is the timestamp layout the task service emits and accepts.
const ProviderTimeLayout = "2006-01-02T15:04:05.000-0700"

var acceptedLayouts = []string{
	ProviderTimeLayout,
	"2006-01-02T15:04:05-0700",
	time.RFC3339Nano,
	time.RFC3339,
}

// Time wraps time.Time with the provider's wire format. The offset is
// written without a colon, which encoding/json's RFC 3339 codec rejects.
type Time struct {
	time.Time
}

// NewTime wraps t.
func NewTime(t time.Time) Time {
	return Time{Time: t}
}

// ParseTime parses any of the accepted timestamp layouts.
func ParseTime(s string) (Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range acceptedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Time{Time: t}, nil
		}
	}
	return Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.Format(ProviderTimeLayout) + `"`), nil
}

func (t *Time) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) || bytes.Equal(data, []byte(`""`)) {
		t.Time = time.Time{}
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("timestamp must be a JSON string, got %s", data)
	}
	parsed, err := ParseTime(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t Time) String() string {
	if t.IsZero() {
		return ""
	}
	return t.Format(ProviderTimeLayout)
}
