package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/confhub/proposal-service/internal/models"
	"github.com/confhub/proposal-service/internal/services"
	"github.com/confhub/proposal-service/internal/utils"
)

// BaseHandler carries the logging and error-mapping helpers shared by
// every resource handler.
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

// LogRequest logs handler entry with request-scoped fields.
func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	if requestID, exists := c.Get("request_id"); exists {
		args = append(args, "request_id", requestID)
	}
	h.logger.Info(msg, args...)
}

// LogError logs an unexpected error with request context.
func (h *BaseHandler) LogError(c *gin.Context, err error, msg string) {
	args := []any{"error", err, "method", c.Request.Method, "path", c.Request.URL.Path}
	if requestID, exists := c.Get("request_id"); exists {
		args = append(args, "request_id", requestID)
	}
	h.logger.Error(msg, args...)
}

// currentUser returns the authenticated user set by the session middleware.
func (h *BaseHandler) currentUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusUnauthorized, errorEnvelope("Unauthenticated", nil))
		return nil, false
	}

	user, ok := value.(*models.User)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorEnvelope("Unauthenticated", nil))
		return nil, false
	}

	return user, true
}

// parseIDParam parses a numeric path parameter; responds 400 and
// returns 0 when invalid.
func (h *BaseHandler) parseIDParam(c *gin.Context, param string) uint {
	idStr := c.Param(param)
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, errorEnvelope("Invalid "+param, nil))
		return 0
	}
	return uint(id)
}

func (h *BaseHandler) parseIntQuery(c *gin.Context, param string, defaultValue int) int {
	valueStr := c.Query(param)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// handleServiceError maps service errors onto the error envelope.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	// Typed errors first
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusUnprocessableEntity, errorEnvelope("Validation failed", validationErrors.FieldMap()))
		return
	}

	var businessRuleError *services.BusinessRuleError
	if errors.As(err, &businessRuleError) {
		c.JSON(http.StatusUnprocessableEntity, errorEnvelope(businessRuleError.Message, nil))
		return
	}

	var permissionError *services.PermissionError
	if errors.As(err, &permissionError) {
		c.JSON(http.StatusForbidden, errorEnvelope("Forbidden", nil))
		return
	}

	switch {
	case errors.Is(err, services.ErrProposalNotFound):
		c.JSON(http.StatusNotFound, errorEnvelope("Proposal not found", nil))
	case errors.Is(err, services.ErrReviewNotFound):
		c.JSON(http.StatusNotFound, errorEnvelope("Review not found", nil))
	case errors.Is(err, services.ErrUserNotFound):
		c.JSON(http.StatusNotFound, errorEnvelope("User not found", nil))
	case errors.Is(err, services.ErrFileNotFound):
		c.JSON(http.StatusNotFound, errorEnvelope("File not found", nil))
	case errors.Is(err, services.ErrDuplicateReview):
		c.JSON(http.StatusUnprocessableEntity, errorEnvelope("You have already reviewed this proposal", nil))
	case errors.Is(err, services.ErrEmailTaken):
		c.JSON(http.StatusUnprocessableEntity, errorEnvelope("Validation failed", map[string]string{
			"email": "has already been taken",
		}))
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, errorEnvelope("Invalid credentials", nil))
	case errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, errorEnvelope("Unauthenticated", nil))
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, errorEnvelope("Forbidden", nil))
	default:
		// No internal detail leaks to the client
		h.LogError(c, err, "Unexpected service error")
		c.JSON(http.StatusInternalServerError, errorEnvelope("Internal server error", nil))
	}
}
