package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/codefreela/userhub/internal/apperr"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateInput runs struct validation and surfaces only the first
// violated rule, in field declaration order, as a BadRequest.
func validateInput(in any) error {
	err := validate.Struct(in)

	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors

	if !errors.As(err, &fieldErrors) || len(fieldErrors) == 0 {
		return apperr.BadRequest()
	}

	first := fieldErrors[0]

	return apperr.BadRequest(ruleMessage(first))
}

func ruleMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())

	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	default:
		return field + " failed " + fe.Tag() + " validation"
	}
}
