package source

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrAPIUnavailable means no browser host can be reached at all. It is
	// permanent for the session and never retried automatically.
	ErrAPIUnavailable = errors.New("browser API unavailable")

	// ErrAPITimeout means the host did not answer before the deadline. The
	// user may retry with a refresh.
	ErrAPITimeout = errors.New("browser API timeout")
)

// APIError is a failure reported by the host itself.
type APIError struct {
	Op      string // e.g. "list-tabs", "close"
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return e.Op + ": host reported a failure"
	}
	return e.Op + ": " + e.Message
}

func (e *APIError) Unwrap() error { return e.Err }

// translate maps any host error onto the adapter's taxonomy.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrAPIUnavailable) || errors.Is(err, ErrAPITimeout) {
		return err
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return err
	}
	return &APIError{Op: op, Message: err.Error(), Err: err}
}

// Describe returns the single line shown in the error banner.
func Describe(err error) string {
	var apiErr *APIError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrAPIUnavailable):
		return fmt.Sprintf("Browser API not available: %v", err)
	case errors.Is(err, ErrAPITimeout):
		return fmt.Sprintf("Browser did not respond in time: %v", err)
	case errors.As(err, &apiErr):
		return fmt.Sprintf("Browser reported an error: %v", apiErr)
	default:
		return err.Error()
	}
}
