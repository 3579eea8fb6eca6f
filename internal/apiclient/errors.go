package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrTransport covers everything that is not a backend answer: network
	// failures, timeouts, and bodies that do not decode.
	ErrTransport = errors.New("transport error")
	// ErrMalformed is a transport error for responses of the wrong shape.
	ErrMalformed = fmt.Errorf("%w: malformed response", ErrTransport)
	// ErrEmptyQuery is returned by SearchBooks before any request is made.
	ErrEmptyQuery = errors.New("empty search query")
	// ErrNoToken is returned by authenticated calls made without a session.
	ErrNoToken = errors.New("no session token")
)

// ConnectionMessage is shown for every ErrTransport.
const ConnectionMessage = "Could not reach the server. Check your connection."

// APIError is an error the backend reported: a non-2xx status, with the
// message from the {"error": ...} body when there is one.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
}

func newAPIError(status int, message string) *APIError {
	if message == "" {
		message = fmt.Sprintf("Request failed (%d %s)", status, http.StatusText(status))
	}
	return &APIError{Status: status, Message: message}
}

// Message returns the text to show a user for err. Backend messages are
// passed through verbatim.
func Message(err error) string {
	var apiErr *APIError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &apiErr):
		return apiErr.Message
	case errors.Is(err, ErrTransport):
		return ConnectionMessage
	default:
		return err.Error()
	}
}
