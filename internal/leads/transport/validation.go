package transport

import (
	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/platform/validator"

	playground "github.com/go-playground/validator/v10"
)

// TagLeadStatus validates that a string field names a catalog status.
const TagLeadStatus = "leadstatus"

// RegisterValidations adds the lead-specific tags to v.
func RegisterValidations(v *validator.Validator) error {
	return v.RegisterValidation(TagLeadStatus, func(fl playground.FieldLevel) bool {
		return domain.IsKnownStatus(fl.Field().String())
	})
}
