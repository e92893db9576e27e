package service

import (
	"context"

	carrier "fleet-route-api/internal/features/carrier/domain"
	carrierports "fleet-route-api/internal/features/carrier/ports"
	optimization "fleet-route-api/internal/features/optimization/domain"

	"github.com/stretchr/testify/mock"
)

// MockAuthenticator is a mock implementation of carrier ports.Authenticator.
type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Authenticate(ctx context.Context, creds carrier.Credentials) (carrier.SessionToken, error) {
	args := m.Called(ctx, creds)
	return args.Get(0).(carrier.SessionToken), args.Error(1)
}

// MockManifests is a mock implementation of ports.Manifests.
type MockManifests struct {
	mock.Mock
}

func (m *MockManifests) GetManifest(ctx context.Context, q carrierports.ManifestQuery, token carrier.SessionToken) ([]carrier.ManifestEntry, error) {
	args := m.Called(ctx, q, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]carrier.ManifestEntry), args.Error(1)
}

// MockDetails is a mock implementation of ports.Details.
type MockDetails struct {
	mock.Mock
}

func (m *MockDetails) FetchDetails(ctx context.Context, refs []carrier.PackageReference, token carrier.SessionToken) map[carrier.PackageReference]carrier.DetailResult {
	args := m.Called(ctx, refs, token)
	return args.Get(0).(map[carrier.PackageReference]carrier.DetailResult)
}

// MockOptimizer is a mock implementation of ports.RouteOptimizer.
type MockOptimizer struct {
	mock.Mock
}

func (m *MockOptimizer) Optimize(ctx context.Context, parcels []optimization.Parcel, depot *optimization.Point) (*optimization.Result, error) {
	args := m.Called(ctx, parcels, depot)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*optimization.Result), args.Error(1)
}
