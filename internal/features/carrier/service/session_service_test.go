package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"fleet-route-api/internal/features/carrier/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	creds   = domain.Credentials{Username: "U", Password: "P", CompanyCode: "C"}
	issued  = time.Date(2025, 9, 11, 6, 0, 0, 0, time.UTC)
	tokenV1 = domain.NewSessionToken("token-1", issued, 24*time.Hour)
	tokenV2 = domain.NewSessionToken("token-2", issued.Add(time.Hour), 24*time.Hour)
)

func TestSessionService_ReusesLiveToken(t *testing.T) {
	auth := new(MockAuthenticator)
	auth.On("Authenticate", mock.Anything, creds).Return(tokenV1, nil).Once()

	svc := NewSessionService(auth)
	svc.now = func() time.Time { return issued.Add(time.Minute) }

	first, err := svc.Token(t.Context(), creds)
	require.NoError(t, err)
	second, err := svc.Token(t.Context(), creds)
	require.NoError(t, err)

	assert.Equal(t, tokenV1, first)
	assert.Equal(t, tokenV1, second)
	auth.AssertNumberOfCalls(t, "Authenticate", 1)
}

func TestSessionService_ReauthenticatesAfterExpiry(t *testing.T) {
	auth := new(MockAuthenticator)
	auth.On("Authenticate", mock.Anything, creds).Return(tokenV1, nil).Once()
	auth.On("Authenticate", mock.Anything, creds).Return(tokenV2, nil).Once()

	now := issued.Add(time.Minute)
	svc := NewSessionService(auth)
	svc.now = func() time.Time { return now }

	_, err := svc.Token(t.Context(), creds)
	require.NoError(t, err)

	now = tokenV1.ExpiresAt
	token, err := svc.Token(t.Context(), creds)
	require.NoError(t, err)

	assert.Equal(t, "token-2", token.Value)
	auth.AssertExpectations(t)
}

func TestSessionService_Refresh(t *testing.T) {
	auth := new(MockAuthenticator)
	auth.On("Authenticate", mock.Anything, creds).Return(tokenV1, nil).Once()
	auth.On("Authenticate", mock.Anything, creds).Return(tokenV2, nil).Once()

	svc := NewSessionService(auth)
	svc.now = func() time.Time { return issued.Add(time.Minute) }

	_, err := svc.Token(t.Context(), creds)
	require.NoError(t, err)

	token, err := svc.Refresh(t.Context(), creds)
	require.NoError(t, err)
	assert.Equal(t, "token-2", token.Value)

	cached, err := svc.Token(t.Context(), creds)
	require.NoError(t, err)
	assert.Equal(t, "token-2", cached.Value)
	auth.AssertNumberOfCalls(t, "Authenticate", 2)
}

func TestSessionService_FailureIsNotCached(t *testing.T) {
	authErr := &domain.AuthError{Kind: domain.ErrInvalidCredentials}
	auth := new(MockAuthenticator)
	auth.On("Authenticate", mock.Anything, creds).Return(domain.SessionToken{}, authErr).Once()
	auth.On("Authenticate", mock.Anything, creds).Return(tokenV1, nil).Once()

	svc := NewSessionService(auth)
	svc.now = func() time.Time { return issued }

	_, err := svc.Token(t.Context(), creds)
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	assert.Zero(t, svc.Len())

	token, err := svc.Token(t.Context(), creds)
	require.NoError(t, err)
	assert.Equal(t, "token-1", token.Value)
}

func TestSessionService_WrongPasswordDoesNotReuseSession(t *testing.T) {
	wrong := creds
	wrong.Password = "nope"

	auth := new(MockAuthenticator)
	auth.On("Authenticate", mock.Anything, creds).Return(tokenV1, nil).Once()
	auth.On("Authenticate", mock.Anything, wrong).Return(domain.SessionToken{}, errors.New("rejected")).Once()

	svc := NewSessionService(auth)
	svc.now = func() time.Time { return issued }

	_, err := svc.Token(t.Context(), creds)
	require.NoError(t, err)

	_, err = svc.Token(t.Context(), wrong)
	assert.Error(t, err)
	auth.AssertExpectations(t)
}

func TestSessionService_ConcurrentCallers(t *testing.T) {
	release := make(chan struct{})
	auth := new(MockAuthenticator)
	auth.On("Authenticate", mock.Anything, creds).
		After(50 * time.Millisecond).
		Return(tokenV1, nil)

	svc := NewSessionService(auth)
	svc.now = func() time.Time { return issued }

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-release
			token, err := svc.Token(t.Context(), creds)
			assert.NoError(t, err)
			assert.Equal(t, "token-1", token.Value)
		}()
	}
	close(release)
	wg.Wait()

	assert.LessOrEqual(t, len(auth.Calls), 2, "concurrent logins are collapsed")
}

func TestSessionService_CanceledCallerDoesNotAbortSharedLogin(t *testing.T) {
	var (
		once     sync.Once
		loginCtx context.Context
	)
	started := make(chan struct{})
	release := make(chan time.Time)
	auth := new(MockAuthenticator)
	auth.On("Authenticate", mock.MatchedBy(func(ctx context.Context) bool {
		once.Do(func() {
			loginCtx = ctx
			close(started)
		})
		return true
	}), creds).
		WaitUntil(release).
		Return(tokenV1, nil).
		Once()

	svc := NewSessionService(auth)
	svc.now = func() time.Time { return issued }

	firstCtx, cancelFirst := context.WithCancel(t.Context())
	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.Token(firstCtx, creds)
		firstErr <- err
	}()
	<-started

	second := make(chan domain.SessionToken, 1)
	go func() {
		token, err := svc.Token(t.Context(), creds)
		assert.NoError(t, err)
		second <- token
	}()

	cancelFirst()
	assert.ErrorIs(t, <-firstErr, context.Canceled)
	assert.NoError(t, loginCtx.Err())

	close(release)
	assert.Equal(t, "token-1", (<-second).Value)
	assert.Equal(t, 1, svc.Len())
	auth.AssertNumberOfCalls(t, "Authenticate", 1)
}
