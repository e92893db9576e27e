package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrOptimizeTimeout is returned when no solution arrived within the maximum wait.
	ErrOptimizeTimeout = errors.New("optimization timed out")
	// ErrAllDropped is returned when the provider routed none of the submitted parcels.
	ErrAllDropped = errors.New("optimizer dropped every parcel")
	// ErrProviderRejected is returned when the provider refuses the problem or reports a failure.
	ErrProviderRejected = errors.New("optimizer rejected the request")
	// ErrOptimizeNetwork is returned on transport failures and provider server errors.
	ErrOptimizeNetwork = errors.New("optimizer unreachable")
)

// OptimizeError describes a failed optimization.
type OptimizeError struct {
	// Op is "submit", "poll" or "optimize".
	Op         string
	Kind       error
	StatusCode int
	Err        error
}

func (e *OptimizeError) Error() string {
	msg := e.Op + ": " + e.Kind.Error()
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the cause to errors.Is.
func (e *OptimizeError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
