package ports

import (
	"context"

	carrier "fleet-route-api/internal/features/carrier/domain"
	carrierports "fleet-route-api/internal/features/carrier/ports"
	optimization "fleet-route-api/internal/features/optimization/domain"
)

// Sessions hands out carrier session tokens.
type Sessions interface {
	Token(ctx context.Context, creds carrier.Credentials) (carrier.SessionToken, error)
	Refresh(ctx context.Context, creds carrier.Credentials) (carrier.SessionToken, error)
}

// Manifests retrieves a driver's tour.
type Manifests interface {
	GetManifest(ctx context.Context, q carrierports.ManifestQuery, token carrier.SessionToken) ([]carrier.ManifestEntry, error)
}

// Details looks up package details, one result per distinct reference.
type Details interface {
	FetchDetails(ctx context.Context, refs []carrier.PackageReference, token carrier.SessionToken) map[carrier.PackageReference]carrier.DetailResult
}

// RouteOptimizer orders parcels into a single route.
type RouteOptimizer interface {
	Optimize(ctx context.Context, parcels []optimization.Parcel, depot *optimization.Point) (*optimization.Result, error)
}
