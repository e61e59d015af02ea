package client

import (
	"errors"
	"fmt"
)

// Kind discriminates the ways a call to the validation API can fail.
type Kind string

const (
	KindNone       Kind = ""
	KindTransport  Kind = "transport"
	KindHTTPStatus Kind = "http_status"
	KindDecode     Kind = "decode"
	KindAPI        Kind = "api"
	KindConfig     Kind = "config"
	KindInvalid    Kind = "invalid"
)

var (
	// ErrMissingAPIKey is returned by New when no API key is configured.
	ErrMissingAPIKey = &ConfigError{Message: "address validation API key is required"}

	// ErrMissingResponseID is returned by ProvideFeedback without a response id.
	ErrMissingResponseID = &InvalidArgumentError{Message: "response id is required"}

	// ErrInvalidConclusion is returned by ProvideFeedback for an unknown conclusion.
	ErrInvalidConclusion = &InvalidArgumentError{Message: "unknown validation conclusion"}
)

// TransportError means the service could not be reached: DNS, connection,
// TLS or timeout failures.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("address validation: transport: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
func (e *TransportError) Kind() Kind    { return KindTransport }

// HTTPStatusError means the service answered with a non-2xx status.
// Message carries the service's error message when the body had one.
type HTTPStatusError struct {
	StatusCode int
	Message    string
}

func (e *HTTPStatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("address validation: http status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("address validation: http status %d", e.StatusCode)
}

func (e *HTTPStatusError) Kind() Kind { return KindHTTPStatus }

// DecodeError means the response body was not a JSON object.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("address validation: decode response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
func (e *DecodeError) Kind() Kind    { return KindDecode }

// APIError is an error object embedded in an otherwise successful response.
type APIError struct {
	Code    int
	Status  string
	Message string
}

func (e *APIError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("address validation: api error %s: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("address validation: api error: %s", e.Message)
}

func (e *APIError) Kind() Kind { return KindAPI }

// ConfigError means the client was misconfigured.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string { return e.Message }
func (e *ConfigError) Kind() Kind    { return KindConfig }

// InvalidArgumentError means the caller passed something unusable.
type InvalidArgumentError struct {
	Message string
}

func (e *InvalidArgumentError) Error() string { return e.Message }
func (e *InvalidArgumentError) Kind() Kind    { return KindInvalid }

type kinded interface {
	Kind() Kind
}

// KindOf returns the Kind of the first error in err's chain that has one,
// or KindNone.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	var k kinded
	if errors.As(err, &k) {
		return k.Kind()
	}
	return KindNone
}
