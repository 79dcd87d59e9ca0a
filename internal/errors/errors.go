// Package errors provides shared error types for the DokuWiki tools.
package errors

import (
	"errors"
	"fmt"
)

// ConfigMissingError indicates a config file was not found. Callers treat it
// as "use defaults".
type ConfigMissingError struct {
	Path string
}

func (e *ConfigMissingError) Error() string {
	return fmt.Sprintf("config file not found: %s", e.Path)
}

// TransportError indicates the HTTP exchange with the wiki failed.
type TransportError struct {
	Endpoint   string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("transport error: %s returned status %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("transport error: %s: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// MalformedResponseError indicates the response body is not well-formed XML.
type MalformedResponseError struct {
	Snippet string // leading part of the body
	Err     error
}

func (e *MalformedResponseError) Error() string {
	if e.Snippet != "" {
		return fmt.Sprintf("malformed response: %v (body starts with %q)", e.Err, e.Snippet)
	}
	return fmt.Sprintf("malformed response: %v", e.Err)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// NewMalformedResponseError creates a MalformedResponseError keeping at most
// the first 80 bytes of body.
func NewMalformedResponseError(body string, err error) *MalformedResponseError {
	if len(body) > 80 {
		body = body[:80]
	}
	return &MalformedResponseError{Snippet: body, Err: err}
}

// DecodeError indicates a base64 payload could not be decoded.
type DecodeError struct {
	Method string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: invalid base64 payload: %v", e.Method, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// NoPayloadError indicates a response carried no usable value at the
// expected position.
type NoPayloadError struct {
	Method string
	Detail string
}

func (e *NoPayloadError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: no usable payload in response: %s", e.Method, e.Detail)
	}
	return fmt.Sprintf("%s: no usable payload in response", e.Method)
}

// FaultError is an XML-RPC fault returned by the server.
type FaultError struct {
	Method  string
	Code    int
	Message string
}

func (e *FaultError) Error() string {
	return fmt.Sprintf("%s: server fault %d: %s", e.Method, e.Code, e.Message)
}

// UsageError indicates bad or missing command line arguments.
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string {
	return e.Message
}

// NewUsageError creates a UsageError with a formatted message.
func NewUsageError(format string, args ...any) *UsageError {
	return &UsageError{Message: fmt.Sprintf(format, args...)}
}

// ExternalProcessError indicates the converter process failed.
type ExternalProcessError struct {
	Command  string
	ExitCode int // -1 when the process could not be started
	Err      error
}

func (e *ExternalProcessError) Error() string {
	if e.ExitCode >= 0 {
		return fmt.Sprintf("converter %s exited with status %d", e.Command, e.ExitCode)
	}
	return fmt.Sprintf("converter %s failed: %v", e.Command, e.Err)
}

func (e *ExternalProcessError) Unwrap() error {
	return e.Err
}

// LoginFailedError is returned by a login in strict mode when the server
// rejects the credentials.
type LoginFailedError struct {
	User string
}

func (e *LoginFailedError) Error() string {
	return fmt.Sprintf("login rejected for user %q", e.User)
}

// ValidationError indicates invalid input parameters.
type ValidationError struct {
	Field   string // field name that failed validation
	Value   string // the invalid value (may be empty for sensitive data)
	Message string // human-readable error message
}

func (e *ValidationError) Error() string {
	if e.Field != "" && e.Value != "" {
		return fmt.Sprintf("validation failed for %s=%q: %s", e.Field, e.Value, e.Message)
	}
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// NewValidationError creates a ValidationError.
func NewValidationError(field, value, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// IsConfigMissing returns true if err is or wraps a ConfigMissingError.
func IsConfigMissing(err error) bool {
	var target *ConfigMissingError
	return errors.As(err, &target)
}

// IsTransport returns true if err is or wraps a TransportError.
func IsTransport(err error) bool {
	var target *TransportError
	return errors.As(err, &target)
}

// IsMalformedResponse returns true if err is or wraps a MalformedResponseError.
func IsMalformedResponse(err error) bool {
	var target *MalformedResponseError
	return errors.As(err, &target)
}

// IsDecode returns true if err is or wraps a DecodeError.
func IsDecode(err error) bool {
	var target *DecodeError
	return errors.As(err, &target)
}

// IsNoPayload returns true if err is or wraps a NoPayloadError.
func IsNoPayload(err error) bool {
	var target *NoPayloadError
	return errors.As(err, &target)
}

// IsFault returns true if err is or wraps a FaultError.
func IsFault(err error) bool {
	var target *FaultError
	return errors.As(err, &target)
}

// IsUsage returns true if err is or wraps a UsageError.
func IsUsage(err error) bool {
	var target *UsageError
	return errors.As(err, &target)
}

// IsExternalProcess returns true if err is or wraps an ExternalProcessError.
func IsExternalProcess(err error) bool {
	var target *ExternalProcessError
	return errors.As(err, &target)
}

// IsLoginFailed returns true if err is or wraps a LoginFailedError.
func IsLoginFailed(err error) bool {
	var target *LoginFailedError
	return errors.As(err, &target)
}

// IsValidation returns true if err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// Code returns a short stable label for err, used as a metric label.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case IsTransport(err):
		return "transport"
	case IsMalformedResponse(err):
		return "malformed_response"
	case IsDecode(err):
		return "decode"
	case IsNoPayload(err):
		return "no_payload"
	case IsFault(err):
		return "fault"
	case IsLoginFailed(err):
		return "login_failed"
	case IsExternalProcess(err):
		return "external_process"
	case IsUsage(err):
		return "usage"
	case IsValidation(err):
		return "validation"
	default:
		return "other"
	}
}
