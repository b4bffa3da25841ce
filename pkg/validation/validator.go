package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/oksasatya/campus-resource-tracker/pkg/apperror"
)

// MaxPasswordBytes is bcrypt's input limit; longer passwords are rejected
// by the hasher rather than truncated.
const MaxPasswordBytes = 72

var (
	std     *validator.Validate
	stdOnce sync.Once
)

// configure applies the shared tag-name function and aliases.
func configure(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterAlias("pwd", "min=6,max=72")
	_ = v.RegisterValidation("pwdbytes", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= MaxPasswordBytes
	})
	v.RegisterAlias("username", "min=3,max=30")
	v.RegisterAlias("nonzero", "required")
}

// Init configures the global validator used by Gin's binding.
func Init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		configure(v)
	}
}

// Validator returns the validator used by services for `validate` tags.
func Validator() *validator.Validate {
	stdOnce.Do(func() {
		std = validator.New(validator.WithRequiredStructEnabled())
		configure(std)
	})
	return std
}

// Struct validates s and converts failures into a VALIDATION AppError.
func Struct(s any) error {
	if err := Validator().Struct(s); err != nil {
		return apperror.Validation("invalid payload", ToDetails(err))
	}
	return nil
}

// ToDetails converts validation/binding errors into a map[field]message suitable for API error.details.
func ToDetails(err error) map[string]string {
	if err == nil {
		return nil
	}

	var se *json.SyntaxError
	var ute *json.UnmarshalTypeError
	if errors.As(err, &ute) {
		if ute.Field != "" {
			return map[string]string{ute.Field: "must be a " + ute.Type.String()}
		}
		return map[string]string{"payload": "invalid json"}
	}
	if errors.As(err, &se) {
		return map[string]string{"payload": "invalid json"}
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			out[fe.Field()] = formatFieldError(fe)
		}
		return out
	}

	return map[string]string{"payload": "invalid payload"}
}

func formatFieldError(fe validator.FieldError) string {
	tag := fe.Tag()
	param := fe.Param()
	kind := fe.Kind()

	switch tag {
	case "required", "nonzero":
		return "is required"
	case "email":
		return "must be a valid email"
	case "uuid", "uuid4":
		return "must be a valid UUID"
	case "len":
		return fmt.Sprintf("must be exactly %s characters long", param)
	case "min":
		if isNumberKind(kind) {
			return "must be at least " + param
		}
		return "must be at least " + param + " characters long"
	case "max":
		if isNumberKind(kind) {
			return "must be at most " + param
		}
		return "must be at most " + param + " characters long"
	case "gte":
		return "must be greater than or equal to " + param
	case "lte":
		return "must be less than or equal to " + param
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(param), ", ")
	case "latitude":
		return "must be a valid latitude"
	case "longitude":
		return "must be a valid longitude"
	case "pwd":
		return "must be between 6 and 72 characters long"
	case "pwdbytes":
		return fmt.Sprintf("must be at most %d bytes", MaxPasswordBytes)
	case "username":
		return "must be between 3 and 30 characters long"
	default:
		if param != "" {
			return fmt.Sprintf("validation failed for '%s' with parameter '%s'", tag, param)
		}
		return fmt.Sprintf("validation failed for '%s'", tag)
	}
}

func isNumberKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}
