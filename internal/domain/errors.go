package domain

import "errors"

// Sentinel errors shared across layers. Wrap with fmt.Errorf("...: %w") and match with errors.Is.
var (
	// ErrProviderUnavailable means a mandatory collaborator was never initialized
	// or cannot be reached. The API surfaces it as 503.
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrEmbeddingUnavailable means no embedding provider is configured.
	ErrEmbeddingUnavailable = wrapUnavailable("embedding provider not initialized")

	// ErrIndexUnavailable means the vector index could not be queried.
	ErrIndexUnavailable = wrapUnavailable("vector index unavailable")

	// ErrClassifierUnavailable means the classification subsystem has no usable dependencies.
	ErrClassifierUnavailable = wrapUnavailable("classifier unavailable")

	// ErrNotFound is returned for operations on resources that do not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidRequest marks caller mistakes (blank query, bad limit, ...).
	ErrInvalidRequest = errors.New("invalid request")
)

type unavailableError struct {
	msg string
}

func wrapUnavailable(msg string) error {
	return &unavailableError{msg: msg}
}

func (e *unavailableError) Error() string { return e.msg }

func (e *unavailableError) Unwrap() error { return ErrProviderUnavailable }
