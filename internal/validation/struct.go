package validation

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strings"
	"sync"

	"devhub/internal/models"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		mustRegister(v, "role", func(fl validator.FieldLevel) bool {
			return models.Role(fl.Field().String()).Valid()
		})
		mustRegister(v, "weburl", func(fl validator.FieldLevel) bool {
			return ValidateURL(fl.Field().String()) == nil
		})
		mustRegister(v, "notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		mustRegister(v, "password", func(fl validator.FieldLevel) bool {
			return ValidatePassword(fl.Field().String()) == nil
		})
		validate = v
	})
	return validate
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("failed to register validation tag %q: %v", tag, err))
	}
}

// Struct validates s against its `validate` tags. Failures come back as a
// single models.AppError with code VALIDATION_ERROR listing every field.
func Struct(s any) error {
	err := instance().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return models.NewValidationError(err.Error())
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	sort.Strings(msgs)
	return models.NewValidationError(strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "role":
		return fmt.Sprintf("%s must be one of: developer, hr, user", field)
	case "weburl":
		return fmt.Sprintf("%s must be an absolute http(s) URL", field)
	case "password":
		if err := ValidatePassword(fmt.Sprint(fe.Value())); err != nil {
			return err.Error()
		}
		return "password is invalid"
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// ValidateURL accepts absolute http and https URLs with a host.
func ValidateURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("invalid URL")
	}
	return nil
}
