package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"fleet-route-api/internal/core/logger"
	"fleet-route-api/internal/features/carrier/domain"
	"fleet-route-api/internal/features/carrier/ports"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// SessionService caches carrier session tokens per driver account.
// It never hands out an expired token.
type SessionService struct {
	auth ports.Authenticator

	mu       sync.Mutex
	sessions map[string]domain.SessionToken
	logins   singleflight.Group

	now func() time.Time
	log *zap.Logger
}

// NewSessionService creates a new SessionService backed by auth.
func NewSessionService(auth ports.Authenticator) *SessionService {
	return &SessionService{
		auth:     auth,
		sessions: make(map[string]domain.SessionToken),
		now:      time.Now,
		log:      logger.Named("carrier.session"),
	}
}

// Token returns the cached live token for creds, authenticating when there is none.
func (s *SessionService) Token(ctx context.Context, creds domain.Credentials) (domain.SessionToken, error) {
	key := creds.SessionKey()

	if token, ok := s.cached(key); ok {
		return token, nil
	}
	return s.login(ctx, key, creds)
}

// Refresh discards the cached token for creds and authenticates again.
func (s *SessionService) Refresh(ctx context.Context, creds domain.Credentials) (domain.SessionToken, error) {
	key := creds.SessionKey()
	s.Invalidate(creds)
	return s.login(ctx, key, creds)
}

// Invalidate drops the cached token for creds.
func (s *SessionService) Invalidate(creds domain.Credentials) {
	s.mu.Lock()
	delete(s.sessions, creds.SessionKey())
	s.mu.Unlock()
}

// Len returns the number of cached sessions, expired ones included.
func (s *SessionService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *SessionService) cached(key string) (domain.SessionToken, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, ok := s.sessions[key]
	if !ok {
		return domain.SessionToken{}, false
	}
	if token.Expired(s.now()) {
		delete(s.sessions, key)
		return domain.SessionToken{}, false
	}
	return token, true
}

// login authenticates once per key even under concurrent callers.
// The shared login outlives any single caller; each caller stops waiting when its own ctx ends.
func (s *SessionService) login(ctx context.Context, key string, creds domain.Credentials) (domain.SessionToken, error) {
	loginCtx := context.WithoutCancel(ctx)
	ch := s.logins.DoChan(key, func() (any, error) {
		token, err := s.auth.Authenticate(loginCtx, creds)
		if err != nil {
			return domain.SessionToken{}, err
		}

		s.mu.Lock()
		s.sessions[key] = token
		s.mu.Unlock()

		s.log.Info("Carrier session opened",
			zap.String("login", creds.Login()),
			zap.Time("expires_at", token.ExpiresAt),
		)
		return token, nil
	})

	select {
	case <-ctx.Done():
		return domain.SessionToken{}, fmt.Errorf("carrier login: %w", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return domain.SessionToken{}, res.Err
		}
		if res.Shared {
			s.log.Debug("Joined in-flight carrier login", zap.String("login", creds.Login()))
		}
		return res.Val.(domain.SessionToken), nil
	}
}
