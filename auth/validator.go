package auth

import (
	"rosterhub/errors"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validator is shared with the services for command validation.
func Validator() *validator.Validate {
	return validate
}

type RegisterRequest struct {
	Name           string `validate:"required,max=80"`
	Email          string `validate:"required,email"`
	Password       string `validate:"required,min=12,max=72"`
	OrganizationID string `validate:"omitempty,excludes=:"`
}

func ValidateRegister(req RegisterRequest) error {
	if err := validate.Struct(req); err != nil {
		return err
	}
	if !isPasswordComplex(req.Password) {
		return errors.ErrInvalidPassword
	}
	return nil
}

func isPasswordComplex(s string) bool {
	var hasUpper, hasLower, hasNumber, hasSpecial bool
	for _, char := range s {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		case unicode.IsPunct(char) || unicode.IsSymbol(char):
			hasSpecial = true
		}
	}
	return hasUpper && hasLower && hasNumber && hasSpecial
}
