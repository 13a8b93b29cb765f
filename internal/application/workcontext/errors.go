package workcontext

import (
	"fmt"
	"net/http"
)

// AdmissionDeniedError is the only error that crosses the pipeline boundary
// as an exceptional outcome. The transport layer inspects it once to choose
// a response status.
type AdmissionDeniedError struct {
	Status int    // http.StatusForbidden or http.StatusTooManyRequests
	Reason string // short human-readable reason
}

// Error implements the error interface
func (e *AdmissionDeniedError) Error() string {
	return fmt.Sprintf("admission denied (%d): %s", e.Status, e.Reason)
}

// NewGuestCreationForbidden reports that the overload policy blocked
// creation of a new guest record.
func NewGuestCreationForbidden(reason string) *AdmissionDeniedError {
	return &AdmissionDeniedError{Status: http.StatusForbidden, Reason: reason}
}

// NewTooManyRequests reports that existing guest or bot traffic was shed.
func NewTooManyRequests(reason string) *AdmissionDeniedError {
	return &AdmissionDeniedError{Status: http.StatusTooManyRequests, Reason: reason}
}
