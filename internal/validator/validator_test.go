package validator

import (
	"testing"

	"github.com/confhub/proposal-service/internal/models"
)

func TestValidateRegisterRequest(t *testing.T) {
	v := New()

	tests := []struct {
		name      string
		req       RegisterRequest
		wantField string
	}{
		{
			name: "valid speaker",
			req:  RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "long-enough", Role: models.RoleSpeaker},
		},
		{
			name: "valid reviewer",
			req:  RegisterRequest{Name: "Rev", Email: "rev@example.com", Password: "long-enough", Role: models.RoleReviewer},
		},
		{
			name:      "admin role rejected",
			req:       RegisterRequest{Name: "Root", Email: "root@example.com", Password: "long-enough", Role: models.RoleAdmin},
			wantField: "role",
		},
		{
			name:      "invalid email",
			req:       RegisterRequest{Name: "Ada", Email: "not-an-email", Password: "long-enough", Role: models.RoleSpeaker},
			wantField: "email",
		},
		{
			name:      "short password",
			req:       RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "short", Role: models.RoleSpeaker},
			wantField: "password",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(&tt.req)
			assertFieldError(t, err, tt.wantField)
		})
	}
}

func TestValidateReviewRequest(t *testing.T) {
	v := New()

	for _, rating := range models.ReviewRatings {
		if err := v.Validate(&ReviewCreateRequest{Rating: rating}); err != nil {
			t.Errorf("rating %d: unexpected error %v", rating, err)
		}
	}

	for _, rating := range []int{-1, 0, 6, 9, 11, 100} {
		err := v.Validate(&ReviewCreateRequest{Rating: rating})
		assertFieldError(t, err, "rating")
	}
}

func TestValidateProposalCreateRequest(t *testing.T) {
	v := New()

	tests := []struct {
		name      string
		req       ProposalCreateRequest
		wantField string
	}{
		{
			name: "valid with tags",
			req:  ProposalCreateRequest{Title: "Talk", Description: "Body", Tags: []string{"go", "testing"}},
		},
		{
			name:      "missing title",
			req:       ProposalCreateRequest{Description: "Body"},
			wantField: "title",
		},
		{
			name:      "missing description",
			req:       ProposalCreateRequest{Title: "Talk"},
			wantField: "description",
		},
		{
			name: "too many tags",
			req: ProposalCreateRequest{
				Title:       "Talk",
				Description: "Body",
				Tags:        []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k"},
			},
			wantField: "tags",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(&tt.req)
			assertFieldError(t, err, tt.wantField)
		})
	}
}

func TestValidateStatusUpdateRequest(t *testing.T) {
	v := New()

	for _, status := range models.ProposalStatuses {
		if err := v.Validate(&StatusUpdateRequest{Status: status}); err != nil {
			t.Errorf("status %q: unexpected error %v", status, err)
		}
	}

	err := v.Validate(&StatusUpdateRequest{Status: "archived"})
	assertFieldError(t, err, "status")
}

func TestFieldMap(t *testing.T) {
	errs := ValidationErrors{
		{Field: "title", Message: "is required"},
		{Field: "title", Message: "second message is dropped"},
		{Field: "rating", Message: "must be one of: 1, 2, 3, 4, 5, 10"},
	}

	m := errs.FieldMap()
	if len(m) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(m))
	}
	if m["title"] != "is required" {
		t.Errorf("first message should win, got %q", m["title"])
	}
}

func assertFieldError(t *testing.T, err error, wantField string) {
	t.Helper()

	if wantField == "" {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return
	}

	valErrs, ok := err.(ValidationErrors)
	if !ok {
		t.Fatalf("expected ValidationErrors, got %v", err)
	}
	if _, found := valErrs.FieldMap()[wantField]; !found {
		t.Errorf("expected an error on %q, got %v", wantField, valErrs.FieldMap())
	}
}
