package dto

import (
	"github.com/go-playground/validator/v10"

	apperrors "github.com/helpdesk-kit/helpdesk/pkg/util"
)

var validate = validator.New()

// Validate checks struct tags on a request payload and converts the first
// failure into a validation error. Services revalidate their own
// invariants; this catches malformed payloads at the boundary.
func Validate(payload any) error {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}
	if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 {
		first := fieldErrs[0]
		return apperrors.NewValidationError("invalid request payload", map[string]any{
			"field": first.Field(),
			"rule":  first.Tag(),
		})
	}
	return apperrors.NewValidationError("invalid request payload", nil)
}
