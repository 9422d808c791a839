package usecase

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"nearbasket/pkg/errors"
)

var (
	dialCodePattern = regexp.MustCompile(`^\+[0-9]{1,3}$`)
	alphaSpacePattern  = regexp.MustCompile(`^[\p{L} ]+$`)
)

// Validator checks use-case inputs before any repository is touched. Fields
// are named in messages by their `label` tag.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if label := f.Tag.Get("label"); label != "" {
			return label
		}
		return f.Name
	})
	v.RegisterValidation("dial_code", func(fl validator.FieldLevel) bool {
		return dialCodePattern.MatchString(fl.Field().String())
	})
	v.RegisterValidation("alpha_space", func(fl validator.FieldLevel) bool {
		return alphaSpacePattern.MatchString(fl.Field().String())
	})
	return &Validator{validate: v}
}

// Struct validates s and returns the first failure as a validation error.
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !stderrors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return errors.Internal("Invalid input", err)
	}
	appErr := errors.Validation(message(validationErrs[0]))
	appErr.Err = err
	return appErr
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	param := fe.Param()
	isString := fe.Kind() == reflect.String

	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "len":
		if isString {
			return fmt.Sprintf("%s must be %s characters", field, param)
		}
		return fmt.Sprintf("%s must contain exactly %s", field, param)
	case "min":
		if isString {
			return fmt.Sprintf("%s must be at least %s characters", field, param)
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must contain at least %s", field, param)
		}
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		if isString {
			return fmt.Sprintf("%s must be at most %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, param)
	case "gte":
		return fmt.Sprintf("%s must be %s or more", field, param)
	case "lte":
		return fmt.Sprintf("%s must be %s or less", field, param)
	case "number":
		return field + " must contain digits only"
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", field, strings.ReplaceAll(param, " ", ", "))
	case "dial_code":
		return field + " must look like +91"
	case "alpha_space":
		return field + " may only contain letters and spaces"
	}
	return field + " is invalid"
}
