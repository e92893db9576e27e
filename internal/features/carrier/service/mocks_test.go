package service

import (
	"context"

	"fleet-route-api/internal/features/carrier/domain"
	"fleet-route-api/internal/features/carrier/ports"

	"github.com/stretchr/testify/mock"
)

// MockAuthenticator is a mock implementation of ports.Authenticator.
type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Authenticate(ctx context.Context, creds domain.Credentials) (domain.SessionToken, error) {
	args := m.Called(ctx, creds)
	return args.Get(0).(domain.SessionToken), args.Error(1)
}

// MockManifestProvider is a mock implementation of ports.ManifestProvider.
type MockManifestProvider struct {
	mock.Mock
}

func (m *MockManifestProvider) GetManifest(ctx context.Context, q ports.ManifestQuery, token domain.SessionToken) ([]domain.ManifestEntry, error) {
	args := m.Called(ctx, q, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ManifestEntry), args.Error(1)
}

// MockDetailFetcher is a mock implementation of ports.DetailFetcher.
type MockDetailFetcher struct {
	mock.Mock
}

func (m *MockDetailFetcher) FetchDetails(ctx context.Context, refs []domain.PackageReference, token domain.SessionToken) map[domain.PackageReference]domain.DetailResult {
	args := m.Called(ctx, refs, token)
	return args.Get(0).(map[domain.PackageReference]domain.DetailResult)
}
