package errors

import (
	stderrors "errors"
	"fmt"
)

// Config errors

type ErrConfigNotFound struct {
	Path string
}

func (e *ErrConfigNotFound) Error() string {
	return fmt.Sprintf("config file not found: %s", e.Path)
}

type ErrConfigParse struct {
	Err error
}

func (e *ErrConfigParse) Error() string {
	return fmt.Sprintf("failed to parse YAML: %v", e.Err)
}

func (e *ErrConfigParse) Unwrap() error {
	return e.Err
}

type ErrConfigValidation struct {
	Err error
}

func (e *ErrConfigValidation) Error() string {
	return fmt.Sprintf("config validation failed: %v", e.Err)
}

func (e *ErrConfigValidation) Unwrap() error {
	return e.Err
}

// Database errors

type ErrDatabaseOpen struct {
	Path string
	Err  error
}

func (e *ErrDatabaseOpen) Error() string {
	return fmt.Sprintf("failed to open database %s: %v", e.Path, e.Err)
}

func (e *ErrDatabaseOpen) Unwrap() error {
	return e.Err
}

type ErrDatabaseQuery struct {
	Operation string
	Err       error
}

func (e *ErrDatabaseQuery) Error() string {
	return fmt.Sprintf("database query failed for operation %s: %v", e.Operation, e.Err)
}

func (e *ErrDatabaseQuery) Unwrap() error {
	return e.Err
}

// Filesystem errors

type ErrDirectoryCreate struct {
	Path string
	Err  error
}

func (e *ErrDirectoryCreate) Error() string {
	return fmt.Sprintf("failed to create directory %s: %v", e.Path, e.Err)
}

func (e *ErrDirectoryCreate) Unwrap() error {
	return e.Err
}

type ErrFileRead struct {
	Path string
	Err  error
}

func (e *ErrFileRead) Error() string {
	return fmt.Sprintf("failed to read file %s: %v", e.Path, e.Err)
}

func (e *ErrFileRead) Unwrap() error {
	return e.Err
}

// ErrCredentialWrite is returned when the credential record cannot be
// persisted. It terminates the operation that produced the credential.
type ErrCredentialWrite struct {
	Backend string
	Err     error
}

func (e *ErrCredentialWrite) Error() string {
	return fmt.Sprintf("failed to persist credential (%s): %v", e.Backend, e.Err)
}

func (e *ErrCredentialWrite) Unwrap() error {
	return e.Err
}

// Provider errors

// ErrTransport covers network failures and timeouts talking to the provider.
type ErrTransport struct {
	Operation string
	Err       error
}

func (e *ErrTransport) Error() string {
	return fmt.Sprintf("transport error during %s: %v", e.Operation, e.Err)
}

func (e *ErrTransport) Unwrap() error {
	return e.Err
}

// ErrAuthorization reports a missing or invalid authorization code or state.
type ErrAuthorization struct {
	Reason string
}

func (e *ErrAuthorization) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("authorization failed: %s", e.Reason)
	}
	return "authorization failed"
}

// ErrTokenExchange reports a non-success or unparsable token endpoint response.
type ErrTokenExchange struct {
	GrantType  string
	StatusCode int
	Body       string
	Err        error
}

func (e *ErrTokenExchange) Error() string {
	msg := fmt.Sprintf("token exchange (%s) failed", e.GrantType)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s: status %d", msg, e.StatusCode)
	}
	if e.Body != "" {
		msg = fmt.Sprintf("%s, body: %s", msg, e.Body)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ErrTokenExchange) Unwrap() error {
	return e.Err
}

// ErrValidation reports a response body that does not match the expected schema.
type ErrValidation struct {
	Entity string
	Err    error
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("invalid %s payload: %v", e.Entity, e.Err)
}

func (e *ErrValidation) Unwrap() error {
	return e.Err
}

// ErrNotFoundOrDenied reports a non-2xx answer from a resource endpoint.
type ErrNotFoundOrDenied struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *ErrNotFoundOrDenied) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
}

// IsTransport reports whether err is or wraps an ErrTransport.
func IsTransport(err error) bool {
	var target *ErrTransport
	return stderrors.As(err, &target)
}

// IsAuthorization reports whether err is or wraps an ErrAuthorization.
func IsAuthorization(err error) bool {
	var target *ErrAuthorization
	return stderrors.As(err, &target)
}

// IsTokenExchange reports whether err is or wraps an ErrTokenExchange.
func IsTokenExchange(err error) bool {
	var target *ErrTokenExchange
	return stderrors.As(err, &target)
}

// IsValidation reports whether err is or wraps an ErrValidation.
func IsValidation(err error) bool {
	var target *ErrValidation
	return stderrors.As(err, &target)
}

// IsNotFoundOrDenied reports whether err is or wraps an ErrNotFoundOrDenied.
func IsNotFoundOrDenied(err error) bool {
	var target *ErrNotFoundOrDenied
	return stderrors.As(err, &target)
}

// Kind returns a short label for err suitable for logs and metric labels.
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case IsTransport(err):
		return "transport"
	case IsAuthorization(err):
		return "authorization"
	case IsTokenExchange(err):
		return "token_exchange"
	case IsValidation(err):
		return "validation"
	case IsNotFoundOrDenied(err):
		return "not_found_or_denied"
	default:
		return "internal"
	}
}
