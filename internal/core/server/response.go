package server

import "github.com/gofiber/fiber/v2"

// ErrorResponse represents an error response with Ray ID.
type ErrorResponse struct {
	// Message is the error description.
	Message string `json:"message" example:"invalid credentials"`
	// Code is a stable machine-readable error code.
	Code string `json:"code" example:"invalid_credentials"`
	// RayID is the unique request identifier for tracing.
	RayID string `json:"ray_id,omitempty" example:"5f0c6f0e-3c1a-4b59-9e3c-1d2f3a4b5c6d"`
}

// RayID returns the request id assigned by the requestid middleware.
func RayID(c *fiber.Ctx) string {
	id, _ := c.Locals("requestid").(string)
	return id
}

// Fail writes an ErrorResponse with the given status.
func Fail(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(ErrorResponse{
		Message: message,
		Code:    code,
		RayID:   RayID(c),
	})
}
