package service

import "fmt"

// maxBodyInError caps how much of an error response body ends up in messages.
const maxBodyInError = 200

// APIError is returned when the API answers with a non-2xx status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	body := e.Body
	if len(body) > maxBodyInError {
		body = body[:maxBodyInError]
	}
	return fmt.Sprintf("api error: %d - %s", e.StatusCode, body)
}

// IsAuth reports whether the status indicates a rejected token.
func (e *APIError) IsAuth() bool {
	return e.StatusCode == 401 || e.StatusCode == 403
}

// TransportError is returned when a request never produced a response
// (DNS failure, connection refused, timeout).
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
