package server

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// validateRequest checks struct tags on a decoded request body.
func validateRequest(req any) error {
	if err := validate.Struct(req); err != nil {
		return &ErrValidation{Field: "body", Message: err.Error()}
	}
	return nil
}
