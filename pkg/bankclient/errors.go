package bankclient

import (
	"errors"
	"fmt"
)

// ErrUnauthorized is returned when the server rejects the current credential.
// By the time a caller sees it the forced-invalidation hook has already fired.
var ErrUnauthorized = errors.New("credential rejected by server")

// APIError is a structured rejection from the backend. Message carries the
// server-provided text verbatim; it is what the user sees.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server rejected request: status %d: %s", e.Status, e.Message)
}

// UserMessage extracts the text to show the user for a failed call. Server
// rejections surface verbatim; anything else (transport failures, decode
// errors) collapses to the given fallback, since the raw error is an
// implementation detail.
func UserMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
