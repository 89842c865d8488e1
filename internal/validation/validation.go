// Package validation holds the process-wide validator shared by request
// binding and the service layer.
package validation

import (
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/rosterhq/shift-roster/internal/domain"
)

var (
	once     sync.Once
	validate *validator.Validate
)

// Instance returns the shared validator. Field names in errors follow json
// tags and the isodate tag accepts YYYY-MM-DD.
func Instance() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return field.Name
			}
			return name
		})
		_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
			_, err := domain.ParseDate(fl.Field().String())
			return err == nil
		})
		validate = v
	})
	return validate
}

// Email reports whether value is a well-formed address.
func Email(value string) bool {
	return Instance().Var(value, "required,email") == nil
}
