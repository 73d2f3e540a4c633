package client

import (
	"errors"
	"fmt"
	"net/http"
)

// maxErrorBody caps how much of an upstream body is echoed into an error
const maxErrorBody = 256

// StatusError is returned when an upstream answers with a non-2xx status
// (after any in-client retries on the retryable set are exhausted).
type StatusError struct {
	Upstream string
	URL      string
	Status   int
	Body     string
}

// Error implements the error interface
func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s returned status %d: %s", e.Upstream, e.Status, e.Body)
	}
	return fmt.Sprintf("%s returned status %d", e.Upstream, e.Status)
}

// TransportError is returned when no usable HTTP response was obtained:
// DNS, connect and read failures, and bodies that are not valid JSON.
type TransportError struct {
	Upstream string
	URL      string
	Err      error
}

// Error implements the error interface
func (e *TransportError) Error() string {
	return fmt.Sprintf("%s request failed: %v", e.Upstream, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As
func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusCode extracts the HTTP status from a StatusError anywhere in the chain
func StatusCode(err error) (int, bool) {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Status, true
	}
	return 0, false
}

// IsStatus reports whether err carries one of the given HTTP statuses
func IsStatus(err error, codes ...int) bool {
	status, ok := StatusCode(err)
	if !ok {
		return false
	}
	for _, code := range codes {
		if status == code {
			return true
		}
	}
	return false
}

// IsTransport reports whether err is a TransportError
func IsTransport(err error) bool {
	var transportErr *TransportError
	return errors.As(err, &transportErr)
}

// isRetryableStatus is the set the adapter retries on its own
func isRetryableStatus(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

func truncateBody(body []byte) string {
	if len(body) > maxErrorBody {
		return string(body[:maxErrorBody]) + "..."
	}
	return string(body)
}
