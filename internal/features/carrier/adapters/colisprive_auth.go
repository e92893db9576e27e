package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"fleet-route-api/internal/features/carrier/domain"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// tokenStrategy extracts a session token from a login response, or returns "".
type tokenStrategy func(body gjson.Result) string

// pathStrategy reads a string at a gjson path.
func pathStrategy(path string) tokenStrategy {
	return func(body gjson.Result) string {
		v := body.Get(path)
		if v.Type != gjson.String {
			return ""
		}
		return v.String()
	}
}

// tokenStrategies are tried in order; the first non-empty token wins.
var tokenStrategies = []tokenStrategy{
	pathStrategy("tokens.SsoHopps"),
	pathStrategy("habilitationAD.SsoHopps.0.valeur"),
	// Shapes observed on older Membership deployments.
	pathStrategy("SsoHopps"),
	pathStrategy("shortToken.SsoHopps"),
}

// extractToken runs the strategies over a login response body.
func extractToken(body gjson.Result) (string, bool) {
	for _, strategy := range tokenStrategies {
		if token := strategy(body); token != "" {
			return token, true
		}
	}
	return "", false
}

// rejectionPaths are fields the carrier fills when it refuses a login.
var rejectionPaths = []string{"message", "Message", "error", "errorMessage", "libelleErreur"}

// rejectionMessage returns the carrier's refusal text, if the body is one.
func rejectionMessage(body gjson.Result) string {
	if !body.IsObject() {
		return ""
	}
	if ok := body.Get("isAuthentif"); ok.Exists() && ok.Bool() {
		return ""
	}
	for _, path := range rejectionPaths {
		if msg := body.Get(path).String(); msg != "" {
			return msg
		}
	}
	return ""
}

type loginRequest struct {
	Login    string      `json:"login"`
	Password string      `json:"password"`
	Societe  string      `json:"societe"`
	Commun   loginCommun `json:"commun"`
}

type loginCommun struct {
	DureeTokenInHour int `json:"dureeTokenInHour"`
}

// Authenticate logs the driver in and returns the session token.
func (a *ColisPriveAdapter) Authenticate(ctx context.Context, creds domain.Credentials) (domain.SessionToken, error) {
	if err := creds.Validate(); err != nil {
		return domain.SessionToken{}, &domain.AuthError{Kind: domain.ErrInvalidCredentials, Err: errors.New("username, password and company code are required")}
	}

	payload, err := json.Marshal(loginRequest{
		Login:    creds.Login(),
		Password: creds.Password,
		Societe:  creds.CompanyCode,
		Commun:   loginCommun{DureeTokenInHour: a.config.TokenLifetimeHours},
	})
	if err != nil {
		return domain.SessionToken{}, &domain.AuthError{Kind: domain.ErrMalformedResponse, Err: err}
	}

	url := a.config.AuthURL + "/api/auth/login/Membership"
	a.log.Info("Authenticating with carrier", zap.String("login", creds.Login()))

	status, body, err := a.post(ctx, url, payload, "")
	if err != nil {
		return domain.SessionToken{}, &domain.AuthError{Kind: domain.ErrNetwork, StatusCode: status, Err: err}
	}

	token, err := a.parseLogin(status, body)
	if err != nil {
		a.log.Warn("Carrier authentication failed", zap.String("login", creds.Login()), zap.Error(err))
		return domain.SessionToken{}, err
	}

	issued := a.now()
	return domain.NewSessionToken(token, issued, time.Duration(a.config.TokenLifetimeHours)*time.Hour), nil
}

// parseLogin classifies a login response and extracts its token.
func (a *ColisPriveAdapter) parseLogin(status int, body []byte) (string, error) {
	valid := gjson.ValidBytes(body)
	parsed := gjson.ParseBytes(body)

	if status < 200 || status > 299 {
		if status == http.StatusUnauthorized || status == http.StatusForbidden {
			return "", &domain.AuthError{Kind: domain.ErrInvalidCredentials, StatusCode: status, Err: messageErr(rejectionMessage(parsed))}
		}
		if valid {
			if msg := rejectionMessage(parsed); msg != "" && status < 500 {
				return "", &domain.AuthError{Kind: domain.ErrInvalidCredentials, StatusCode: status, Err: errors.New(msg)}
			}
		}
		return "", &domain.AuthError{Kind: domain.ErrNetwork, StatusCode: status}
	}

	if !valid {
		return "", &domain.AuthError{Kind: domain.ErrMalformedResponse, StatusCode: status, Err: errors.New("login response is not valid JSON")}
	}

	token, ok := extractToken(parsed)
	if !ok {
		// Some deployments answer 200 with isAuthentif=false instead of 401.
		if flag := parsed.Get("isAuthentif"); flag.Exists() && !flag.Bool() {
			return "", &domain.AuthError{Kind: domain.ErrInvalidCredentials, StatusCode: status, Err: messageErr(rejectionMessage(parsed))}
		}
		return "", &domain.AuthError{Kind: domain.ErrTokenNotFound, StatusCode: status}
	}

	return token, nil
}

func messageErr(msg string) error {
	if msg == "" {
		return nil
	}
	return errors.New(msg)
}
