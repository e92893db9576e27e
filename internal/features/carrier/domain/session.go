package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Credentials identify a driver account at the carrier.
type Credentials struct {
	// Username is the driver login without the company prefix.
	Username string `json:"username"`
	// Password is sent verbatim to the carrier.
	Password string `json:"-"`
	// CompanyCode is the carrier "societe" code, e.g. "PCP0010699".
	CompanyCode string `json:"societe"`
}

// Validate reports ErrInvalidCredentials when a field is blank.
func (c Credentials) Validate() error {
	if strings.TrimSpace(c.Username) == "" || c.Password == "" || strings.TrimSpace(c.CompanyCode) == "" {
		return ErrInvalidCredentials
	}
	return nil
}

// Login returns the composite login identifier expected by the carrier.
func (c Credentials) Login() string {
	return CompositeID(c.CompanyCode, c.Username)
}

// SessionKey identifies the session of one driver within one company.
// The password digest keeps a cached token from being served for wrong credentials.
func (c Credentials) SessionKey() string {
	sum := sha256.Sum256([]byte(c.Password))
	return strings.TrimSpace(c.CompanyCode) + ":" + strings.TrimSpace(c.Username) + ":" + hex.EncodeToString(sum[:8])
}

// CompositeID joins a company code and a driver or user id as "<company>_<id>".
func CompositeID(companyCode, id string) string {
	return strings.TrimSpace(companyCode) + "_" + strings.TrimSpace(id)
}

// SessionToken is the carrier-issued "SsoHopps" credential.
type SessionToken struct {
	Value     string    `json:"token"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewSessionToken returns a token issued at issuedAt and valid for lifetime.
func NewSessionToken(value string, issuedAt time.Time, lifetime time.Duration) SessionToken {
	return SessionToken{
		Value:     value,
		IssuedAt:  issuedAt,
		ExpiresAt: issuedAt.Add(lifetime),
	}
}

// Expired reports whether the token can no longer be used at now.
func (t SessionToken) Expired(now time.Time) bool {
	return t.Value == "" || !now.Before(t.ExpiresAt)
}
