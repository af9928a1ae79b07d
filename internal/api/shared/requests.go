package shared

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/taskr-api/internal/domain"
)

// Validate is the request validator. Field errors are reported under their
// JSON names.
var Validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// DecodeJSON decodes the request body into the given struct.
func DecodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// ValidateRequest validates v and converts validator failures into a
// *domain.ValidationError keyed by JSON field name.
func ValidateRequest(v any) error {
	err := Validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	verr := &domain.ValidationError{}
	for _, fe := range fieldErrs {
		verr.Add(fe.Field(), tagMessage(fe.Tag()))
	}
	return verr
}

// tagMessage maps validation tags to user-friendly error messages
func tagMessage(tag string) string {
	switch tag {
	case "required":
		return "is required"
	case "email":
		return "is invalid"
	case "gte", "min":
		return "is too small"
	case "lte", "max":
		return "is too large"
	default:
		return "is invalid"
	}
}
