package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/confhub/proposal-service/internal/services"
	"github.com/confhub/proposal-service/internal/utils"
	"github.com/confhub/proposal-service/internal/validator"
)

func newTestBaseHandler() BaseHandler {
	logger := utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return NewBaseHandler(logger)
}

func TestHandleServiceError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newTestBaseHandler()

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"validation errors", services.ValidationErrors{{Field: "title", Message: "is required"}}, http.StatusUnprocessableEntity},
		{"business rule", &services.BusinessRuleError{Rule: "x", Message: "conflict"}, http.StatusUnprocessableEntity},
		{"permission denied", &services.PermissionError{Resource: "proposal", Action: "view"}, http.StatusForbidden},
		{"proposal not found", services.ErrProposalNotFound, http.StatusNotFound},
		{"review not found", services.ErrReviewNotFound, http.StatusNotFound},
		{"file not found", services.ErrFileNotFound, http.StatusNotFound},
		{"duplicate review", services.ErrDuplicateReview, http.StatusUnprocessableEntity},
		{"email taken", services.ErrEmailTaken, http.StatusUnprocessableEntity},
		{"invalid credentials", services.ErrInvalidCredentials, http.StatusUnauthorized},
		{"unauthorized", services.ErrUnauthorized, http.StatusUnauthorized},
		{"forbidden", services.ErrForbidden, http.StatusForbidden},
		{"unknown error", errors.New("database exploded"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/test", nil)

			h.handleServiceError(c, tt.err)

			if w.Code != tt.wantStatus {
				t.Errorf("got status %d, want %d", w.Code, tt.wantStatus)
			}

			var body ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("unmarshal body: %v", err)
			}
			if body.Status != "error" {
				t.Errorf("got envelope status %q, want error", body.Status)
			}
		})
	}
}

func TestHandleServiceErrorFieldMap(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newTestBaseHandler()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/test", nil)

	h.handleServiceError(c, validator.ValidationErrors{
		{Field: "rating", Message: "must be one of: 1, 2, 3, 4, 5, 10"},
	})

	var body struct {
		Errors map[string]string `json:"errors"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if body.Errors["rating"] == "" {
		t.Errorf("missing field error, got %v", body.Errors)
	}
}

func TestHandleServiceErrorHidesInternalDetail(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newTestBaseHandler()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/test", nil)

	h.handleServiceError(c, errors.New("pq: connection refused host=10.0.0.5"))

	var body ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if body.Message != "Internal server error" {
		t.Errorf("internal detail leaked: %q", body.Message)
	}
}
