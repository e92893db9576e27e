package handler

import (
	"context"
	"errors"
	"strings"
	"time"

	"fleet-route-api/internal/core/cache"
	"fleet-route-api/internal/core/server"
	"fleet-route-api/internal/features/carrier/domain"
	"fleet-route-api/internal/features/carrier/ports"
	"fleet-route-api/internal/features/carrier/service"

	"github.com/gofiber/fiber/v2"
)

// maxReferences bounds a single details request.
const maxReferences = 500

// CarrierHandler handles HTTP requests for Colis Privé operations.
type CarrierHandler struct {
	carrierService *service.CarrierService
	stats          cache.StatsProvider
}

// NewCarrierHandler creates a new CarrierHandler. stats may be nil.
func NewCarrierHandler(carrierService *service.CarrierService, stats cache.StatsProvider) *CarrierHandler {
	return &CarrierHandler{
		carrierService: carrierService,
		stats:          stats,
	}
}

// CredentialsRequest carries the driver account.
type CredentialsRequest struct {
	Username string `json:"username" example:"A187518"`
	Password string `json:"password" example:"secret"`
	Societe  string `json:"societe" example:"PCP0010699"`
}

func (r CredentialsRequest) credentials() domain.Credentials {
	return domain.Credentials{
		Username:    strings.TrimSpace(r.Username),
		Password:    r.Password,
		CompanyCode: strings.TrimSpace(r.Societe),
	}
}

// AuthResponse is returned by a successful login.
type AuthResponse struct {
	Token     string    `json:"token"`
	Matricule string    `json:"matricule"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// PackagesRequest selects a driver's tour.
type PackagesRequest struct {
	CredentialsRequest
	// Matricule is the driver id; defaults to the username.
	Matricule string `json:"matricule" example:"A187518"`
	// Date is YYYY-MM-DD; defaults to today.
	Date string `json:"date" example:"2025-09-11"`
}

// PackagesResponse lists the parcels of a tour.
type PackagesResponse struct {
	Matricule string                 `json:"matricule"`
	Date      string                 `json:"date,omitempty"`
	Count     int                    `json:"count"`
	Packages  []domain.ManifestEntry `json:"packages"`
}

// DetailsRequest lists the parcels to look up.
type DetailsRequest struct {
	CredentialsRequest
	References []string `json:"references"`
}

// DetailsResponse maps each reference to its lookup result.
type DetailsResponse struct {
	Succeeded int                                            `json:"succeeded"`
	Failed    int                                            `json:"failed"`
	Results   map[domain.PackageReference]domain.DetailResult `json:"results"`
}

// Authenticate godoc
// @Summary Log a driver in at Colis Privé
// @Description Exchanges driver credentials for a carrier session token
// @Tags colis-prive
// @Accept json
// @Produce json
// @Param request body CredentialsRequest true "Driver credentials"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} server.ErrorResponse
// @Failure 401 {object} server.ErrorResponse
// @Failure 502 {object} server.ErrorResponse
// @Router /api/colis-prive/auth [post]
func (h *CarrierHandler) Authenticate(c *fiber.Ctx) error {
	var req CredentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return server.Fail(c, fiber.StatusBadRequest, "invalid_body", "request body must be valid JSON")
	}

	creds := req.credentials()
	if err := creds.Validate(); err != nil {
		return server.Fail(c, fiber.StatusBadRequest, "validation_error", "username, password and societe are required")
	}

	token, err := h.carrierService.Authenticate(c.UserContext(), creds)
	if err != nil {
		return WriteError(c, err)
	}

	return c.JSON(AuthResponse{
		Token:     token.Value,
		Matricule: creds.Login(),
		IssuedAt:  token.IssuedAt,
		ExpiresAt: token.ExpiresAt,
	})
}

// GetPackages godoc
// @Summary Get a driver's tour manifest
// @Description Retrieves the parcels assigned to a driver for a date
// @Tags colis-prive
// @Accept json
// @Produce json
// @Param request body PackagesRequest true "Driver and date"
// @Success 200 {object} PackagesResponse
// @Failure 400 {object} server.ErrorResponse
// @Failure 401 {object} server.ErrorResponse
// @Failure 404 {object} server.ErrorResponse
// @Failure 502 {object} server.ErrorResponse
// @Router /api/colis-prive/packages [post]
func (h *CarrierHandler) GetPackages(c *fiber.Ctx) error {
	var req PackagesRequest
	if err := c.BodyParser(&req); err != nil {
		return server.Fail(c, fiber.StatusBadRequest, "invalid_body", "request body must be valid JSON")
	}

	creds := req.credentials()
	if err := creds.Validate(); err != nil {
		return server.Fail(c, fiber.StatusBadRequest, "validation_error", "username, password and societe are required")
	}

	driver := strings.TrimSpace(req.Matricule)
	if driver == "" {
		driver = creds.Username
	}

	entries, err := h.carrierService.GetManifest(c.UserContext(), creds, ports.ManifestQuery{
		DriverID:    driver,
		CompanyCode: creds.CompanyCode,
		Date:        req.Date,
	})
	if err != nil {
		return WriteError(c, err)
	}

	return c.JSON(PackagesResponse{
		Matricule: domain.CompositeID(creds.CompanyCode, driver),
		Date:      req.Date,
		Count:     len(entries),
		Packages:  entries,
	})
}

// GetDetails godoc
// @Summary Get package details
// @Description Looks up tracking detail for each reference; failures are reported per reference
// @Tags colis-prive
// @Accept json
// @Produce json
// @Param request body DetailsRequest true "Credentials and references"
// @Success 200 {object} DetailsResponse
// @Failure 400 {object} server.ErrorResponse
// @Failure 401 {object} server.ErrorResponse
// @Router /api/colis-prive/details [post]
func (h *CarrierHandler) GetDetails(c *fiber.Ctx) error {
	var req DetailsRequest
	if err := c.BodyParser(&req); err != nil {
		return server.Fail(c, fiber.StatusBadRequest, "invalid_body", "request body must be valid JSON")
	}

	creds := req.credentials()
	if err := creds.Validate(); err != nil {
		return server.Fail(c, fiber.StatusBadRequest, "validation_error", "username, password and societe are required")
	}
	if len(req.References) == 0 {
		return server.Fail(c, fiber.StatusBadRequest, "validation_error", "references must not be empty")
	}
	if len(req.References) > maxReferences {
		return server.Fail(c, fiber.StatusBadRequest, "validation_error", "too many references")
	}

	refs := make([]domain.PackageReference, 0, len(req.References))
	for _, r := range req.References {
		refs = append(refs, domain.PackageReference(strings.TrimSpace(r)))
	}

	results, err := h.carrierService.FetchDetails(c.UserContext(), creds, refs)
	if err != nil {
		return WriteError(c, err)
	}

	resp := DetailsResponse{Results: results}
	for _, r := range results {
		if r.OK() {
			resp.Succeeded++
		} else {
			resp.Failed++
		}
	}
	return c.JSON(resp)
}

// CacheStats godoc
// @Summary Package detail cache statistics
// @Tags cache
// @Produce json
// @Success 200 {object} cache.Stats
// @Failure 501 {object} server.ErrorResponse
// @Router /api/cache/stats [get]
func (h *CarrierHandler) CacheStats(c *fiber.Ctx) error {
	if h.stats == nil {
		return server.Fail(c, fiber.StatusNotImplemented, "not_supported", "cache statistics are not available")
	}

	stats, err := h.stats.Stats(c.UserContext())
	if err != nil {
		return server.Fail(c, fiber.StatusServiceUnavailable, "cache_unavailable", err.Error())
	}
	return c.JSON(stats)
}

// WriteError maps carrier errors to HTTP responses.
func WriteError(c *fiber.Ctx, err error) error {
	status, code := StatusFor(err)
	return server.Fail(c, status, code, err.Error())
}

// StatusFor returns the HTTP status and error code for a carrier error.
func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return fiber.StatusUnauthorized, "invalid_credentials"
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, "session_rejected"
	case errors.Is(err, domain.ErrInvalidDate):
		return fiber.StatusBadRequest, "validation_error"
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrTokenNotFound):
		return fiber.StatusBadGateway, "token_not_found"
	case errors.Is(err, domain.ErrMalformedResponse):
		return fiber.StatusBadGateway, "malformed_response"
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout, "timeout"
	case errors.Is(err, domain.ErrNetwork):
		return fiber.StatusBadGateway, "carrier_unavailable"
	default:
		return fiber.StatusInternalServerError, "internal_error"
	}
}
