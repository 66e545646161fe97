// Package validate adapts go-playground/validator to echo's Validator hook so
// handlers can call c.Validate after c.Bind.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/clinic/clinic/internal/platform/apperr"
)

// Validator implements echo.Validator.
type Validator struct {
	v *validator.Validate
}

// New returns a Validator with the clinic tags registered:
//
//	isodate   YYYY-MM-DD calendar date
//	hhmm      24-hour HH:MM clock time
//	notblank  not empty after trimming whitespace
func New() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		return IsDate(fl.Field().String())
	})
	_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		return IsClock(fl.Field().String())
	})
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	return &Validator{v: v}
}

var std = New()

// Struct validates i with the shared Validator. Services use it so that
// callers outside HTTP get the same checks as request handlers.
func Struct(i interface{}) error {
	return std.Validate(i)
}

// Validate checks struct tags and returns an apperr validation error naming
// the first offending field.
func (cv *Validator) Validate(i interface{}) error {
	err := cv.v.Struct(i)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return apperr.Validation("%s", describe(verrs[0]))
	}
	return apperr.Validation("invalid request: %v", err)
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s is required", field)
	case "isodate":
		return fmt.Sprintf("%s must be a date in YYYY-MM-DD format", field)
	case "hhmm":
		return fmt.Sprintf("%s must be a time in HH:MM format", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte", "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// IsDate reports whether s is a real calendar date in YYYY-MM-DD form.
func IsDate(s string) bool {
	if len(s) != len("2006-01-02") {
		return false
	}
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

// IsClock reports whether s is a 24-hour HH:MM time.
func IsClock(s string) bool {
	if len(s) != len("15:04") {
		return false
	}
	_, err := time.Parse("15:04", s)
	return err == nil
}
