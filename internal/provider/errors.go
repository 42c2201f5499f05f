package provider

import (
	"errors"
	"fmt"
)

// Registry misuse errors. Both are fatal to the call that hit them.
var (
	ErrUnknownProvider      = errors.New("unknown provider")
	ErrNoProviderRegistered = errors.New("no provider registered")
)

// InvocationError reports a failed backend call (network, auth, quota).
type InvocationError struct {
	Provider   string
	Operation  string
	StatusCode int
	Err        error
}

func (e *InvocationError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s %s error (status %d): %v", e.Provider, e.Operation, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s error: %v", e.Provider, e.Operation, e.Err)
}

func (e *InvocationError) Unwrap() error {
	return e.Err
}

// JSONParseError reports backend output that was requested as JSON but
// did not parse. Raw keeps the offending text for diagnostics.
type JSONParseError struct {
	Raw string
	Err error
}

func (e *JSONParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("response is not valid JSON: %v", e.Err)
	}
	return "response is not valid JSON"
}

func (e *JSONParseError) Unwrap() error {
	return e.Err
}
