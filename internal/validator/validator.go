package validator

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/confhub/proposal-service/internal/models"
)

// ValidationError represents a single field-level validation failure
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	if len(ve) == 1 {
		return fmt.Sprintf("validation failed: %s %s", ve[0].Field, ve[0].Message)
	}
	return fmt.Sprintf("validation failed: %d field errors", len(ve))
}

// FieldMap folds the errors into a field -> message map for the error
// envelope.
func (ve ValidationErrors) FieldMap() map[string]string {
	out := make(map[string]string, len(ve))
	for _, e := range ve {
		if _, exists := out[e.Field]; !exists {
			out[e.Field] = e.Message
		}
	}
	return out
}

// Validator wraps go-playground/validator with the domain's custom rules
type Validator struct {
	validate *validator.Validate
}

// New creates a validator with all custom rules registered
func New() *Validator {
	validate := validator.New()

	v := &Validator{validate: validate}
	v.registerRules()

	return v
}

// Validate validates a struct; returns nil or ValidationErrors
func (v *Validator) Validate(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	fieldErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	var errors ValidationErrors
	for _, fe := range fieldErrors {
		errors = append(errors, ValidationError{
			Field:   jsonFieldName(fe),
			Message: errorMessage(fe),
			Value:   fe.Value(),
			Rule:    fe.Tag(),
		})
	}

	return errors
}

func (v *Validator) registerRules() {
	// Public registration only accepts the two self-service roles
	v.validate.RegisterValidation("registration_role", func(fl validator.FieldLevel) bool {
		role := models.UserRole(fl.Field().String())
		for _, allowed := range models.RegistrableRoles {
			if role == allowed {
				return true
			}
		}
		return false
	})

	// Discrete rating scale
	v.validate.RegisterValidation("review_rating", func(fl validator.FieldLevel) bool {
		return models.ValidRating(int(fl.Field().Int()))
	})

	// Three-state proposal status
	v.validate.RegisterValidation("proposal_status", func(fl validator.FieldLevel) bool {
		return models.ProposalStatus(fl.Field().String()).Valid()
	})
}

func jsonFieldName(fe validator.FieldError) string {
	// StructNamespace is Type.Field; report the lowercase field to match
	// the JSON payload keys
	return toSnake(fe.Field())
}

func toSnake(s string) string {
	var out []rune
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				out = append(out, '_')
			}
			out = append(out, r+('a'-'A'))
			continue
		}
		out = append(out, r)
	}
	return string(out)
}

func errorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "registration_role":
		return "must be one of: speaker, reviewer"
	case "review_rating":
		return "must be one of: 1, 2, 3, 4, 5, 10"
	case "proposal_status":
		return "must be one of: pending, approved, rejected"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
