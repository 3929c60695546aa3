// Package validator adapts go-playground/validator to echo.Validator.
package validator

import (
	"fmt"
	"reflect"
	"strings"

	domainerrors "splitpay/internal/domain/errors"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// CustomValidator runs struct tag validation on bound request bodies.
type CustomValidator struct {
	validate *validator.Validate
}

// New returns a validator that reports field names by their json tag.
func New() echo.Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}

		return name
	})

	return &CustomValidator{validate: v}
}

// Validate returns ErrValidationFailed describing every failing field.
func (cv *CustomValidator) Validate(i any) error {
	err := cv.validate.Struct(i)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errors.WithStack(domainerrors.ErrValidationFailed.WithDetails(err.Error()))
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}

	return errors.WithStack(domainerrors.ErrValidationFailed.WithDetails(strings.Join(msgs, "; ")))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag())
	}
}
