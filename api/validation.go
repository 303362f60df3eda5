package api

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// ErrorResponse is the JSON error envelope for every non-2xx response.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

// requestValidator wraps a shared validator instance. Struct tags cover
// field-level rules; cross-field rules (amount presence per record kind)
// are checked in the handlers.
type requestValidator struct {
	validate *validator.Validate
}

func newRequestValidator() *requestValidator {
	return &requestValidator{validate: validator.New()}
}

// Check validates req and returns a field -> message map on failure.
func (v *requestValidator) Check(req any) map[string]string {
	err := v.validate.Struct(req)
	if err == nil {
		return nil
	}

	details := make(map[string]string)
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			details[fe.Field()] = fe.Tag()
		}
	} else {
		details["request"] = err.Error()
	}
	return details
}
