package network

import (
	"context"
	"errors"
	"fmt"
)

// TransportError is returned when a spin request fails before a usable
// response is decoded: the request could not be sent, the authority
// answered with a non-2xx status, or the body was not a spin response.
type TransportError struct {
	// StatusCode is zero when no response was received.
	StatusCode int
	// Message is the authority's error message, if it sent one.
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		if e.Message != "" {
			return fmt.Sprintf("authority returned status %d: %s", e.StatusCode, e.Message)
		}
		return fmt.Sprintf("authority returned status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("spin request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the request was abandoned after the configured timeout.
func (e *TransportError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var te interface{ Timeout() bool }
	return errors.As(e.Err, &te) && te.Timeout()
}

// MalformedResultError is returned when the result grid does not have the
// shape of the machine.
type MalformedResultError struct {
	Reason string
}

func (e *MalformedResultError) Error() string {
	return "malformed result: " + e.Reason
}
