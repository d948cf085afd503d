package validate

// This package adds struct and field validation as a thin wrapper around the go-playground/validator package.
//
// e.g. internal/layout/bounds.go
//   type ViewportBounds struct {
//       MaxWidthPx    float64 `json:"max_width_px" validate:"finite,gt=0"`
//       MaxFontSizePx float64 `json:"max_font_size_px" validate:"finite,gt=0,gtefield=MinFontSizePx"`
//       ...
//   }
//
// This allows for consistent validation of numeric bounds, hex colors and uuid tags.

import (
	"errors"
	"math"
	"reflect"
	"sync"

	"github.com/go-playground/validator/v10"
)

// validatorInstance is a shared validator for the application.
// It is initialized once and reused to avoid repeated allocations.
//
//nolint:gochecknoglobals // Shared validator singleton.
var (
	validatorOnce sync.Once
	validatorInst *validator.Validate
)

// get returns a process-wide singleton of the validator.
func get() *validator.Validate {
	validatorOnce.Do(func() {
		validatorInst = validator.New(validator.WithRequiredStructEnabled())
		// Built-in tags include: gt, gte, gtefield, hexcolor, http_url, uuid4, etc.
		// "finite" rejects NaN and +/-Inf, which gt/gte let through for Inf.
		_ = validatorInst.RegisterValidation("finite", isFinite)
	})
	return validatorInst
}

func isFinite(fl validator.FieldLevel) bool {
	f := fl.Field()
	switch f.Kind() {
	case reflect.Float32, reflect.Float64:
		v := f.Float()
		return !math.IsNaN(v) && !math.IsInf(v, 0)
	default:
		return true
	}
}

// Struct validates a struct using the shared validator instance.
func Struct(v any) error {
	return get().Struct(v)
}

// Var validates a single variable against the provided tag constraints.
func Var(field any, tag string) error {
	return get().Var(field, tag)
}

// FailedFields returns the struct field names reported by a validation error,
// in the order the validator reported them. Non-validation errors yield nil.
func FailedFields(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return fields
}
