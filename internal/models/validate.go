package models

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names so messages match the request body.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks a request DTO against its validate tags. Failures wrap
// ErrValidation and describe the first offending field.
func Validate(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%w: %s is required", ErrValidation, fe.Field())
	case "oneof":
		return fmt.Errorf("%w: %s must be one of: %s", ErrValidation, fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "min":
		return fmt.Errorf("%w: %s must be at least %s characters", ErrValidation, fe.Field(), fe.Param())
	case "max":
		return fmt.Errorf("%w: %s must be at most %s characters", ErrValidation, fe.Field(), fe.Param())
	case "gt":
		return fmt.Errorf("%w: %s must be greater than %s", ErrValidation, fe.Field(), fe.Param())
	default:
		return fmt.Errorf("%w: %s is invalid", ErrValidation, fe.Field())
	}
}
