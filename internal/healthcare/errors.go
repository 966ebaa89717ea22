package healthcare

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnauthorized matches any 401 from the backend via errors.Is. Callers
// decide whether to redirect to login; the client never retries.
var ErrUnauthorized = errors.New("healthcare: unauthorized")

// APIError is a non-2xx response from the healthcare backend.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("healthcare: status %d: %s", e.StatusCode, e.Body)
}

func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}
