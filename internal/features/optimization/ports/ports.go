package ports

import (
	"context"

	"fleet-route-api/internal/features/optimization/domain"
)

// Provider is a route optimization backend.
// This is a Secondary Port (Driven Port).
type Provider interface {
	// Submit sends a problem; the provider answers either inline or with a job id.
	Submit(ctx context.Context, req *domain.Request) (domain.Submission, error)
	// Poll checks a pending job. done is false while the job is still running.
	Poll(ctx context.Context, id string) (solution *domain.Solution, done bool, err error)
}
