package adapter

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fleet-route-api/internal/core/config"
	"fleet-route-api/internal/features/carrier/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 9, 11, 7, 30, 0, 0, time.UTC)

// newTestAdapter points every carrier endpoint at baseURL.
func newTestAdapter(baseURL string) *ColisPriveAdapter {
	a := NewColisPriveAdapter(config.ColisPriveConfig{
		AuthURL:            baseURL,
		TourneeURL:         baseURL,
		DetailURL:          baseURL,
		TokenLifetimeHours: 24,
		DetailBatchSize:    5,
		DetailBatchDelay:   500 * time.Millisecond,
		RequestTimeout:     5 * time.Second,
	}, nil)
	a.now = func() time.Time { return testNow }
	return a
}

var testCreds = domain.Credentials{Username: "A187518", Password: "secret", CompanyCode: "PCP0010699"}

// TestColisPriveAdapter_Authenticate_PrimaryPath verifies the payload, headers and token extraction.
func TestColisPriveAdapter_Authenticate_PrimaryPath(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/auth/login/Membership", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "https://gestiontournee.colisprive.com", r.Header.Get("Origin"))
		assert.Equal(t, "fr-FR,fr;q=0.6", r.Header.Get("Accept-Language"))
		assert.Empty(t, r.Header.Get("SsoHopps"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "PCP0010699_A187518", body["login"])
		assert.Equal(t, "secret", body["password"])
		assert.Equal(t, "PCP0010699", body["societe"])
		assert.Equal(t, map[string]any{"dureeTokenInHour": float64(24)}, body["commun"])

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"isAuthentif": true, "tokens": {"SsoHopps": "primary-token"}}`))
	}))
	defer server.Close()

	token, err := newTestAdapter(server.URL).Authenticate(t.Context(), testCreds)
	require.NoError(t, err)
	assert.Equal(t, "primary-token", token.Value)
	assert.Equal(t, testNow, token.IssuedAt)
	assert.Equal(t, testNow.Add(24*time.Hour), token.ExpiresAt)
}

func TestColisPriveAdapter_Authenticate_ResponseShapes(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantToken string
		wantKind  error
	}{
		{
			name:      "FallbackPath",
			status:    http.StatusOK,
			body:      `{"habilitationAD": {"SsoHopps": [{"valeur": "fallback-token"}]}}`,
			wantToken: "fallback-token",
		},
		{
			name:      "PrimaryWinsOverFallback",
			status:    http.StatusOK,
			body:      `{"tokens": {"SsoHopps": "primary"}, "habilitationAD": {"SsoHopps": [{"valeur": "fallback"}]}}`,
			wantToken: "primary",
		},
		{
			name:      "EmptyPrimaryFallsThrough",
			status:    http.StatusOK,
			body:      `{"tokens": {"SsoHopps": ""}, "habilitationAD": {"SsoHopps": [{"valeur": "fallback"}]}}`,
			wantToken: "fallback",
		},
		{
			name:     "NoTokenPath",
			status:   http.StatusOK,
			body:     `{"isAuthentif": true, "identity": "A187518"}`,
			wantKind: domain.ErrTokenNotFound,
		},
		{
			name:     "EmptyFallbackList",
			status:   http.StatusOK,
			body:     `{"habilitationAD": {"SsoHopps": []}}`,
			wantKind: domain.ErrTokenNotFound,
		},
		{
			name:     "RejectedWith200",
			status:   http.StatusOK,
			body:     `{"isAuthentif": false, "message": "Identifiant ou mot de passe incorrect"}`,
			wantKind: domain.ErrInvalidCredentials,
		},
		{
			name:     "Unauthorized",
			status:   http.StatusUnauthorized,
			body:     `{"message": "Identifiant ou mot de passe incorrect"}`,
			wantKind: domain.ErrInvalidCredentials,
		},
		{
			name:     "BadRequestWithRejection",
			status:   http.StatusBadRequest,
			body:     `{"message": "Compte bloqué"}`,
			wantKind: domain.ErrInvalidCredentials,
		},
		{
			name:     "ServerError",
			status:   http.StatusBadGateway,
			body:     `<html>bad gateway</html>`,
			wantKind: domain.ErrNetwork,
		},
		{
			name:     "MalformedJSON",
			status:   http.StatusOK,
			body:     `{"tokens": `,
			wantKind: domain.ErrMalformedResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			token, err := newTestAdapter(server.URL).Authenticate(t.Context(), testCreds)
			if tt.wantKind != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantKind)

				var authErr *domain.AuthError
				require.ErrorAs(t, err, &authErr)
				assert.Equal(t, tt.status, authErr.StatusCode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantToken, token.Value)
		})
	}
}

func TestColisPriveAdapter_Authenticate_EmptyCredentials(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	_, err := newTestAdapter(server.URL).Authenticate(t.Context(), domain.Credentials{Username: "A187518"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	assert.Zero(t, calls, "no request is sent for incomplete credentials")
}

func TestColisPriveAdapter_Authenticate_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := newTestAdapter(url).Authenticate(t.Context(), testCreds)
	assert.ErrorIs(t, err, domain.ErrNetwork)
}
