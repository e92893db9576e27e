package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCredentials_Validate(t *testing.T) {
	tests := []struct {
		name  string
		creds Credentials
		valid bool
	}{
		{"Complete", Credentials{Username: "A187518", Password: "secret", CompanyCode: "PCP0010699"}, true},
		{"MissingUsername", Credentials{Username: "  ", Password: "secret", CompanyCode: "PCP0010699"}, false},
		{"MissingPassword", Credentials{Username: "A187518", CompanyCode: "PCP0010699"}, false},
		{"MissingCompany", Credentials{Username: "A187518", Password: "secret"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.creds.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidCredentials)
			}
		})
	}
}

func TestCredentials_Login(t *testing.T) {
	creds := Credentials{Username: " A187518 ", Password: "x", CompanyCode: "PCP0010699"}

	assert.Equal(t, "PCP0010699_A187518", creds.Login())
	assert.True(t, strings.HasPrefix(creds.SessionKey(), "PCP0010699:A187518:"))
	assert.NotContains(t, creds.SessionKey(), "x")

	other := creds
	other.Password = "y"
	assert.NotEqual(t, creds.SessionKey(), other.SessionKey())
	assert.Equal(t, "C_D42", CompositeID("C", "D42"))
}

func TestSessionToken_Expired(t *testing.T) {
	issued := time.Date(2025, 9, 11, 6, 0, 0, 0, time.UTC)
	token := NewSessionToken("tok", issued, 24*time.Hour)

	assert.Equal(t, issued.Add(24*time.Hour), token.ExpiresAt)
	assert.False(t, token.Expired(issued.Add(time.Hour)))
	assert.True(t, token.Expired(issued.Add(24*time.Hour)))
	assert.True(t, SessionToken{}.Expired(issued))
}

func TestCoordinates_Valid(t *testing.T) {
	assert.True(t, Coordinates{Latitude: 48.85, Longitude: 2.35}.Valid())
	assert.False(t, Coordinates{}.Valid())
	assert.False(t, Coordinates{Latitude: 120, Longitude: 2}.Valid())
}
