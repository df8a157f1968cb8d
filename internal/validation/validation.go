package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/wichananm65/sheshape-backend/internal/apperror"
)

const DateLayout = "2006-01-02"

var (
	phonePattern    = regexp.MustCompile(`^[+]?[0-9]{10,15}$`)
	languagePattern = regexp.MustCompile(`^[a-z]{2}$`)
)

// Validator wraps go-playground/validator with the project's custom rules and
// reports failures keyed by the JSON field name.
type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	// decimals are validated as numbers so gte/lte work on prices
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})

	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("langcode", func(fl validator.FieldLevel) bool {
		return languagePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("pastdate", func(fl validator.FieldLevel) bool {
		d, err := time.Parse(DateLayout, fl.Field().String())
		if err != nil {
			return false
		}
		return d.Before(today())
	})

	return &Validator{v: v}
}

// Struct validates s and returns an *apperror.Error carrying every failing
// field, or nil.
func (val *Validator) Struct(s any) error {
	err := val.v.Struct(s)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return apperror.BadRequest("invalid payload")
	}
	fields := make(map[string]string, len(ves))
	for _, fe := range ves {
		key := fieldPath(fe)
		if _, seen := fields[key]; seen {
			continue
		}
		fields[key] = message(fe)
	}
	return apperror.Validation(fields)
}

// fieldPath drops the top-level struct name from the namespace so nested
// fields read as "preferences.language".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	if i := strings.Index(ns, "["); i >= 0 {
		ns = ns[:i]
	}
	return ns
}

func message(fe validator.FieldError) string {
	name := fe.Field()
	if i := strings.Index(name, "["); i >= 0 {
		name = name[:i]
	}
	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "max":
		if isCollection(fe.Kind()) {
			return "you can select up to " + fe.Param() + " " + name
		}
		if fe.Kind() == reflect.String {
			return name + " must not exceed " + fe.Param() + " characters"
		}
		return name + " must not exceed " + fe.Param()
	case "min":
		if fe.Kind() == reflect.String {
			return name + " must be at least " + fe.Param() + " characters"
		}
		return name + " must be at least " + fe.Param()
	case "gte":
		return name + " cannot be less than " + fe.Param()
	case "lte":
		return name + " cannot exceed " + fe.Param()
	case "gt":
		return name + " must be greater than " + fe.Param()
	case "lt":
		return name + " must be less than " + fe.Param()
	case "oneof":
		return name + " must be one of " + fe.Param()
	case "phone":
		return "please provide a valid " + name
	case "langcode":
		return name + " must be a valid 2-letter language code"
	case "pastdate":
		return name + " must be a past date in YYYY-MM-DD format"
	case "email":
		return name + " must be a valid email address"
	}
	return name + " is invalid"
}

func isCollection(k reflect.Kind) bool {
	return k == reflect.Slice || k == reflect.Array || k == reflect.Map
}

func today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
