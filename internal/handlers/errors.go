package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vrisetechno/vrise-api/internal/models"
)

const (
	// InvalidJSONMessage is returned when the body cannot be decoded
	InvalidJSONMessage = "Invalid JSON payload."
	// PayloadTooLargeMessage is returned when the body exceeds the route's ceiling
	PayloadTooLargeMessage = "Request body is too large."
	// RouteNotFoundMessage is returned for unknown routes
	RouteNotFoundMessage = "Route not found"
	// InternalServerErrorMessage hides unexpected failures from clients
	InternalServerErrorMessage = "Internal server error"
)

// attachError attaches err to the gin context for the request log.
func attachError(c *gin.Context, err error) {
	if err != nil {
		_ = c.Error(err) //nolint:errcheck
	}
}

// respondError sends a failure envelope and attaches err for the request log
func respondError(c *gin.Context, status int, message string, err error) {
	attachError(c, err)
	c.JSON(status, models.Envelope{Success: false, Message: message})
}

// respondSuccess sends a success envelope
func respondSuccess(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, models.Envelope{Success: true, Message: message, Data: data})
}

// NotFound answers unknown routes with the standard envelope
func NotFound(c *gin.Context) {
	respondError(c, http.StatusNotFound, RouteNotFoundMessage, nil)
}
