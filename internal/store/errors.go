package store

import "fmt"

// TransportError is returned when a persistence call fails at the
// transport layer. Its message carries the upstream error text verbatim
// so error panels can render it unchanged (e.g. "Erreur 404").
type TransportError struct {
	Message string
	Status  int
}

// Error returns the upstream error text
func (e *TransportError) Error() string {
	return e.Message
}

// NewTransportError builds a TransportError from an HTTP-class status code,
// formatted the way the backend reports failures.
func NewTransportError(status int) *TransportError {
	return &TransportError{
		Message: fmt.Sprintf("Erreur %d", status),
		Status:  status,
	}
}
