package service

import (
	"context"
	"errors"

	"fleet-route-api/internal/features/carrier/domain"
	"fleet-route-api/internal/features/carrier/ports"
)

// CarrierService exposes the carrier operations to the HTTP layer.
type CarrierService struct {
	sessions ports.SessionProvider
	manifest ports.ManifestProvider
	details  ports.DetailFetcher
}

// NewCarrierService creates a new CarrierService.
func NewCarrierService(sessions ports.SessionProvider, manifest ports.ManifestProvider, details ports.DetailFetcher) *CarrierService {
	return &CarrierService{
		sessions: sessions,
		manifest: manifest,
		details:  details,
	}
}

// Authenticate opens a fresh carrier session.
func (s *CarrierService) Authenticate(ctx context.Context, creds domain.Credentials) (domain.SessionToken, error) {
	return s.sessions.Refresh(ctx, creds)
}

// GetManifest returns the driver's tour. A rejected token is refreshed and the call retried once.
func (s *CarrierService) GetManifest(ctx context.Context, creds domain.Credentials, q ports.ManifestQuery) ([]domain.ManifestEntry, error) {
	if q.CompanyCode == "" {
		q.CompanyCode = creds.CompanyCode
	}

	token, err := s.sessions.Token(ctx, creds)
	if err != nil {
		return nil, err
	}

	entries, err := s.manifest.GetManifest(ctx, q, token)
	if errors.Is(err, domain.ErrUnauthorized) {
		if token, err = s.sessions.Refresh(ctx, creds); err != nil {
			return nil, err
		}
		entries, err = s.manifest.GetManifest(ctx, q, token)
	}
	return entries, err
}

// FetchDetails looks up package details with a live session.
func (s *CarrierService) FetchDetails(ctx context.Context, creds domain.Credentials, refs []domain.PackageReference) (map[domain.PackageReference]domain.DetailResult, error) {
	token, err := s.sessions.Token(ctx, creds)
	if err != nil {
		return nil, err
	}
	return s.details.FetchDetails(ctx, refs, token), nil
}
