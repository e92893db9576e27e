package ports

import (
	"context"

	"fleet-route-api/internal/features/carrier/domain"
)

// Authenticator exchanges driver credentials for a carrier session token.
// This is a Secondary Port (Driven Port).
type Authenticator interface {
	Authenticate(ctx context.Context, creds domain.Credentials) (domain.SessionToken, error)
}

// ManifestQuery selects one driver's tour on one day.
type ManifestQuery struct {
	DriverID    string
	CompanyCode string
	// Date is YYYY-MM-DD; empty means today.
	Date string
}

// ManifestProvider retrieves a driver's tour manifest.
type ManifestProvider interface {
	// GetManifest returns an error wrapping domain.ErrUnauthorized when the token is rejected.
	GetManifest(ctx context.Context, q ManifestQuery, token domain.SessionToken) ([]domain.ManifestEntry, error)
}

// DetailFetcher retrieves package details.
type DetailFetcher interface {
	// FetchDetails returns exactly one result per distinct input reference.
	FetchDetails(ctx context.Context, refs []domain.PackageReference, token domain.SessionToken) map[domain.PackageReference]domain.DetailResult
}

// SessionProvider hands out live session tokens for a set of credentials.
// This is a Primary Port consumed by the pipeline.
type SessionProvider interface {
	// Token returns a cached live token or authenticates.
	Token(ctx context.Context, creds domain.Credentials) (domain.SessionToken, error)
	// Refresh drops any cached token and authenticates again.
	Refresh(ctx context.Context, creds domain.Credentials) (domain.SessionToken, error)
}
