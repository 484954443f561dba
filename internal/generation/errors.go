package generation

import (
	"errors"
	"fmt"
)

// Common errors returned by the generation package
var (
	// ErrTransientTransport marks network failures, timeouts and error-status
	// responses. These are retried under the default policy.
	ErrTransientTransport = errors.New("transient transport error")

	// ErrMalformedContent marks completion text that is not the expected JSON
	// object. It is recovered locally with fallback content and never surfaced.
	ErrMalformedContent = errors.New("malformed generation content")

	// ErrUnauthorized is returned when the provider rejects the credentials.
	ErrUnauthorized = errors.New("generation request unauthorized")

	// ErrProvider is returned when the provider answers with a non-zero status code.
	ErrProvider = errors.New("generation provider error")

	// ErrContentBlocked is returned when the provider refuses to generate for safety reasons.
	ErrContentBlocked = errors.New("content blocked by provider safety filters")

	// ErrRetriesExhausted is returned when every allowed attempt failed.
	ErrRetriesExhausted = errors.New("retry attempts exhausted")

	// ErrInvalidConfig is returned when the generator configuration is invalid
	ErrInvalidConfig = errors.New("invalid generator configuration")

	// ErrInvalidTask is returned when the task cannot be turned into a prompt.
	ErrInvalidTask = errors.New("invalid task for content generation")
)

// ContentGenerationError is returned by Generator implementations when no
// content could be produced. Callers are expected to fall back to the message
// they already have.
type ContentGenerationError struct {
	// Reason is a short machine-readable cause, e.g. "retries_exhausted".
	Reason string
	// Attempts is the number of calls made to the provider.
	Attempts int
	Err      error
}

// Error implements the error interface.
func (e *ContentGenerationError) Error() string {
	return fmt.Sprintf("content generation failed (%s) after %d attempt(s): %v", e.Reason, e.Attempts, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ContentGenerationError) Unwrap() error {
	return e.Err
}

// newContentGenerationError classifies err into a ContentGenerationError.
func newContentGenerationError(attempts int, err error) *ContentGenerationError {
	reason := "failed"
	switch {
	case errors.Is(err, ErrRetriesExhausted):
		reason = "retries_exhausted"
	case errors.Is(err, ErrUnauthorized):
		reason = "unauthorized"
	case errors.Is(err, ErrProvider):
		reason = "provider_error"
	case errors.Is(err, ErrContentBlocked):
		reason = "content_blocked"
	case errors.Is(err, ErrInvalidTask):
		reason = "invalid_task"
	case errors.Is(err, ErrCanceled):
		reason = "canceled"
	}
	return &ContentGenerationError{Reason: reason, Attempts: attempts, Err: err}
}

// IsTransient reports whether err is worth retrying.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransientTransport)
}
