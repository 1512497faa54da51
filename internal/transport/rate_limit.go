package transport

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

const defaultRetryAfter = 30 * time.Second

// RateLimitError reports an HTTP 429 from the provider. Nothing in this
// module retries; RetryAfter is surfaced so the caller can decide.
type RateLimitError struct {
	RetryAfter time.Duration
	Message    string
}

func (e *RateLimitError) Error() string {
	if e == nil {
		return "rate limit"
	}
	if e.Message != "" {
		return e.Message + " (retry after " + e.RetryAfter.Round(time.Second).String() + ")"
	}
	return "rate limit exceeded"
}

// RateLimitFromHeaders builds a RateLimitError from Retry-After, which may be
// delta-seconds or an HTTP date.
func RateLimitFromHeaders(headers http.Header, msg string, now time.Time) *RateLimitError {
	value := strings.TrimSpace(headers.Get("Retry-After"))
	if value == "" {
		return &RateLimitError{RetryAfter: defaultRetryAfter, Message: msg}
	}
	if secs, err := strconv.ParseInt(value, 10, 64); err == nil && secs >= 0 {
		return &RateLimitError{RetryAfter: time.Duration(secs) * time.Second, Message: msg}
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := at.Sub(now); d > 0 {
			return &RateLimitError{RetryAfter: d, Message: msg}
		}
	}
	return &RateLimitError{RetryAfter: defaultRetryAfter, Message: msg}
}
