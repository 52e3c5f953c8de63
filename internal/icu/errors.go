package icu

import "fmt"

// TransportError wraps network-level failures: DNS, connect, timeout.
// No response was received, so retrying may succeed.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// AuthError is returned for 401 and 403 responses. Retrying without fixing
// credentials will not help.
type AuthError struct {
	Status int
	Body   string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed (status %d): %s", e.Status, e.Body)
}

// NotFoundError is returned for 404 responses on listing endpoints. Detail
// lookups translate it to an empty result instead.
type NotFoundError struct {
	Status int
	Body   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("not found (status %d): %s", e.Status, e.Body)
}

// UpstreamError covers every other non-2xx response.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream error (status %d): %s", e.Status, e.Body)
}
