package analysis

import (
	"errors"
	"fmt"
)

// Failure kind names surfaced to callers in FailureReports.
const (
	KindConfigurationError     = "ConfigurationError"
	KindTransportError         = "TransportError"
	KindTimeoutError           = "TimeoutError"
	KindUpstreamError          = "UpstreamError"
	KindPayloadTooLargeError   = "PayloadTooLargeError"
	KindMalformedResponseError = "MalformedResponseError"
	KindInternalError          = "InternalError"
)

// ConfigurationError indicates the model gateway is missing required
// configuration. Fatal: no retry, must be fixed by the operator.
type ConfigurationError struct {
	Missing string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("model gateway not configured: missing %s", e.Missing)
}

func (e *ConfigurationError) Kind() string { return KindConfigurationError }

// TransportError indicates the inference service could not be reached.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("model gateway transport failure: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
func (e *TransportError) Kind() string  { return KindTransportError }

// TimeoutError indicates the request exceeded the configured deadline.
type TimeoutError struct {
	Err error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("model gateway request timed out: %v", e.Err)
}

func (e *TimeoutError) Unwrap() error { return e.Err }
func (e *TimeoutError) Kind() string  { return KindTimeoutError }

// UpstreamError indicates the service was reachable but rejected or failed
// the request. Not retried: typically a bad request shape.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("inference service error (status %d): %s", e.Status, e.Body)
}

func (e *UpstreamError) Kind() string { return KindUpstreamError }

// PayloadTooLargeError indicates the combined image payload exceeds the
// service's accepted size. The caller must reduce image count or resolution.
type PayloadTooLargeError struct {
	SizeBytes int64
	Limit     int64
}

func (e *PayloadTooLargeError) Error() string {
	return fmt.Sprintf("image payload too large: %d bytes (limit %d)", e.SizeBytes, e.Limit)
}

func (e *PayloadTooLargeError) Kind() string { return KindPayloadTooLargeError }

// MalformedResponseError indicates no structured payload could be recovered
// from the raw model output after all recovery heuristics.
type MalformedResponseError struct {
	Raw string
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("unparseable model response: %v (raw: %s)", e.Err, truncate(e.Raw, 500))
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }
func (e *MalformedResponseError) Kind() string  { return KindMalformedResponseError }

// kinder is implemented by every taxonomy error.
type kinder interface {
	Kind() string
}

// FailureKind maps an error to its taxonomy kind name, walking the wrap
// chain. Errors outside the taxonomy map to InternalError.
func FailureKind(err error) string {
	for e := err; e != nil; e = errors.Unwrap(e) {
		if k, ok := e.(kinder); ok {
			return k.Kind()
		}
	}
	return KindInternalError
}

// retryable reports whether a failed model call may be retried with the
// same mode. Only transient transport-level failures qualify.
func retryable(err error) bool {
	var te *TransportError
	var to *TimeoutError
	return errors.As(err, &te) || errors.As(err, &to)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
