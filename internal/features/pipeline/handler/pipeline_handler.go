package handler

import (
	"errors"
	"strings"

	"fleet-route-api/internal/core/server"
	carrier "fleet-route-api/internal/features/carrier/domain"
	carrierhandler "fleet-route-api/internal/features/carrier/handler"
	optimization "fleet-route-api/internal/features/optimization/domain"
	optimizationhandler "fleet-route-api/internal/features/optimization/handler"
	"fleet-route-api/internal/features/pipeline/domain"
	"fleet-route-api/internal/features/pipeline/service"

	"github.com/gofiber/fiber/v2"
)

// PipelineHandler handles HTTP requests for the tour optimization pipeline.
type PipelineHandler struct {
	pipelineService *service.PipelineService
}

// NewPipelineHandler creates a new PipelineHandler.
func NewPipelineHandler(pipelineService *service.PipelineService) *PipelineHandler {
	return &PipelineHandler{pipelineService: pipelineService}
}

// TourRequest selects the tour to optimize.
type TourRequest struct {
	Username string `json:"username" example:"A187518"`
	Password string `json:"password" example:"secret"`
	Societe  string `json:"societe" example:"PCP0010699"`
	// Matricule is the driver id; defaults to the username.
	Matricule string `json:"matricule" example:"A187518"`
	// Date is YYYY-MM-DD; defaults to today.
	Date  string              `json:"date" example:"2025-09-11"`
	Depot *optimization.Point `json:"depot,omitempty"`
	// WithDetails overrides the configured enrichment default.
	WithDetails *bool `json:"with_details,omitempty"`
}

// FailureResponse is an error body that also carries the partial run.
type FailureResponse struct {
	server.ErrorResponse
	Stage  domain.Stage   `json:"stage,omitempty"`
	Result *domain.Result `json:"result,omitempty"`
}

// OptimizeTour godoc
// @Summary Optimize a driver's tour
// @Description Authenticates at Colis Privé, retrieves the tour, enriches each parcel and orders the stops
// @Tags tournees
// @Accept json
// @Produce json
// @Param request body TourRequest true "Driver, date and options"
// @Success 200 {object} domain.Result
// @Failure 400 {object} server.ErrorResponse
// @Failure 401 {object} FailureResponse
// @Failure 422 {object} FailureResponse
// @Failure 502 {object} FailureResponse
// @Failure 504 {object} FailureResponse
// @Router /api/tournees/optimize [post]
func (h *PipelineHandler) OptimizeTour(c *fiber.Ctx) error {
	var req TourRequest
	if err := c.BodyParser(&req); err != nil {
		return server.Fail(c, fiber.StatusBadRequest, "invalid_body", "request body must be valid JSON")
	}

	creds := carrier.Credentials{
		Username:    strings.TrimSpace(req.Username),
		Password:    req.Password,
		CompanyCode: strings.TrimSpace(req.Societe),
	}
	if err := creds.Validate(); err != nil {
		return server.Fail(c, fiber.StatusBadRequest, "validation_error", "username, password and societe are required")
	}

	result, err := h.pipelineService.Run(c.UserContext(), domain.Request{
		Credentials:   creds,
		DriverID:      req.Matricule,
		Date:          req.Date,
		Depot:         req.Depot,
		EnrichDetails: req.WithDetails,
	})
	if err != nil {
		status, code := StatusFor(err)
		resp := FailureResponse{
			ErrorResponse: server.ErrorResponse{Message: err.Error(), Code: code, RayID: server.RayID(c)},
			Result:        result,
		}
		var se *domain.StageError
		if errors.As(err, &se) {
			resp.Stage = se.Stage
		}
		return c.Status(status).JSON(resp)
	}

	return c.JSON(result)
}

// StatusFor returns the HTTP status and error code for a failed run.
func StatusFor(err error) (int, string) {
	if errors.Is(err, domain.ErrPipelineTimeout) {
		return fiber.StatusGatewayTimeout, "pipeline_timeout"
	}
	if status, code := carrierhandler.StatusFor(err); status != fiber.StatusInternalServerError {
		return status, code
	}
	return optimizationhandler.StatusFor(err)
}
