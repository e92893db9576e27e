package handler

import (
	"context"
	"errors"
	"strings"

	"fleet-route-api/internal/core/server"
	"fleet-route-api/internal/features/optimization/domain"
	"fleet-route-api/internal/features/optimization/service"

	"github.com/gofiber/fiber/v2"
)

const maxPackages = 500

// OptimizationHandler handles HTTP requests for route optimization.
type OptimizationHandler struct {
	optimizationService *service.OptimizationService
}

// NewOptimizationHandler creates a new OptimizationHandler.
func NewOptimizationHandler(optimizationService *service.OptimizationService) *OptimizationHandler {
	return &OptimizationHandler{optimizationService: optimizationService}
}

// PackageInput is one parcel to route. A parcel without both coordinates is reported as unrouted.
type PackageInput struct {
	Reference string   `json:"reference" example:"10677000012345"`
	Latitude  *float64 `json:"latitude,omitempty" example:"48.8566"`
	Longitude *float64 `json:"longitude,omitempty" example:"2.3522"`
}

// OptimizeRequest lists the parcels of one vehicle.
type OptimizeRequest struct {
	Packages []PackageInput `json:"packages"`
	Depot    *domain.Point  `json:"depot,omitempty"`
}

// Optimize godoc
// @Summary Optimize a delivery route
// @Description Orders parcels for a single vehicle using the Mapbox Optimization API
// @Tags optimization
// @Accept json
// @Produce json
// @Param request body OptimizeRequest true "Parcels and optional depot"
// @Success 200 {object} domain.Result
// @Failure 400 {object} server.ErrorResponse
// @Failure 422 {object} server.ErrorResponse
// @Failure 502 {object} server.ErrorResponse
// @Failure 504 {object} server.ErrorResponse
// @Router /api/optimization/optimize [post]
func (h *OptimizationHandler) Optimize(c *fiber.Ctx) error {
	var req OptimizeRequest
	if err := c.BodyParser(&req); err != nil {
		return server.Fail(c, fiber.StatusBadRequest, "invalid_body", "request body must be valid JSON")
	}

	if len(req.Packages) == 0 {
		return server.Fail(c, fiber.StatusBadRequest, "validation_error", "packages must not be empty")
	}
	if len(req.Packages) > maxPackages {
		return server.Fail(c, fiber.StatusBadRequest, "validation_error", "too many packages")
	}
	if req.Depot != nil && !validPoint(req.Depot.Latitude, req.Depot.Longitude) {
		return server.Fail(c, fiber.StatusBadRequest, "validation_error", "depot coordinates are out of range")
	}

	parcels := make([]domain.Parcel, 0, len(req.Packages))
	for _, p := range req.Packages {
		ref := strings.TrimSpace(p.Reference)
		if ref == "" {
			return server.Fail(c, fiber.StatusBadRequest, "validation_error", "every package needs a reference")
		}

		parcel := domain.Parcel{Reference: ref}
		if p.Latitude != nil && p.Longitude != nil && validPoint(*p.Latitude, *p.Longitude) {
			parcel.Location = &domain.Point{Latitude: *p.Latitude, Longitude: *p.Longitude}
		}
		parcels = append(parcels, parcel)
	}

	result, err := h.optimizationService.Optimize(c.UserContext(), parcels, req.Depot)
	if err != nil {
		return WriteError(c, err)
	}
	return c.JSON(result)
}

func validPoint(lat, lon float64) bool {
	if lat == 0 && lon == 0 {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// WriteError maps optimizer errors to HTTP responses.
func WriteError(c *fiber.Ctx, err error) error {
	status, code := StatusFor(err)
	return server.Fail(c, status, code, err.Error())
}

// StatusFor returns the HTTP status and error code for an optimizer error.
func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrOptimizeTimeout), errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout, "optimization_timeout"
	case errors.Is(err, domain.ErrAllDropped):
		return fiber.StatusUnprocessableEntity, "all_dropped"
	case errors.Is(err, domain.ErrProviderRejected):
		return fiber.StatusBadGateway, "optimizer_rejected"
	case errors.Is(err, domain.ErrOptimizeNetwork):
		return fiber.StatusBadGateway, "optimizer_unavailable"
	default:
		return fiber.StatusInternalServerError, "internal_error"
	}
}
