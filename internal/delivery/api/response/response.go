// Package response renders API responses. Successful responses carry the bare resource.
package response

import (
	"net/http"

	deliverycontext "accounts/internal/delivery/context"

	"github.com/labstack/echo/v4"
)

// ErrorResponse is the body of every non-empty error response.
type ErrorResponse struct {
	Message   string `json:"message"`           // User-friendly error message
	Code      string `json:"code"`              // Machine-readable error code, e.g. "INVALID_CODE"
	Details   string `json:"details,omitempty"` // Only for 4xx errors other than 401/403
	RequestID string `json:"request_id"`
}

// HealthResponse is returned by the health endpoints.
type HealthResponse struct {
	Status string `json:"status"`
}

// Success returns data as the response body.
func Success(c echo.Context, statusCode int, data any) error {
	return c.JSON(statusCode, data)
}

// Error returns an error response
func Error(c echo.Context, statusCode int, errorCode string, message string, details string) error {
	// Details should not be included for 5xx errors or authentication/authorization errors
	if statusCode >= http.StatusInternalServerError || statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden {
		details = ""
	}

	return c.JSON(statusCode, ErrorResponse{
		Message:   message,
		Code:      errorCode,
		Details:   details,
		RequestID: deliverycontext.GetRequestID(c),
	})
}

// InternalServerError returns a 500 error
func InternalServerError(c echo.Context, errorCode string, message string) error {
	return Error(c, http.StatusInternalServerError, errorCode, message, "")
}

// HealthCheck reports that the process is serving.
func HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}
