package planka

import (
	"errors"
	"fmt"
)

// StatusError is a non-2xx response. Body is the raw response text.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP status %d: %s", e.Code, e.Body)
}

// DecodeError is a 2xx response whose body did not match the expected shape.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string { return "JSON error: " + e.Err.Error() }
func (e *DecodeError) Unwrap() error { return e.Err }

// TransportError is a request that never produced a response.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return "HTTP error: " + e.Err.Error() }
func (e *TransportError) Unwrap() error { return e.Err }

// ConfigError covers URL construction failures and login responses without a token.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string { return "Configuration error: " + e.Msg }

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}
