package web

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Validator checks bound request structs against their `validate` tags.
type Validator struct {
	validator                *validator.Validate
	logger                   *slog.Logger
	tagValidationDetailsOnce sync.Once
	tagValidationDetailsMap  map[string]tagValidationDetails
}

type tagValidationDetails struct {
	validatorFunc validator.Func
	err           error
}

func NewValidator(logger *slog.Logger) (*Validator, error) {
	v := &Validator{validator: validator.New(validator.WithRequiredStructEnabled()), logger: logger}
	v.validator.RegisterTagNameFunc(useFormFieldNames)
	if err := v.registerCustomValidatorsForTags(); err != nil {
		return nil, err
	}

	return v, nil
}

func (v *Validator) Validate(i any) error {
	if err := v.validator.Struct(i); err != nil {
		v.logger.Warn("validation failed", "err", err.Error())
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
			if details, ok := v.getTagValidationDetails()[validationErrs[0].Tag()]; ok {
				return details.err
			}

			switch validationErrs[0].Tag() {
			case "required":
				return fmt.Errorf("missing required field '%s'", validationErrs[0].Field())
			case "min", "max":
				return fmt.Errorf("value or length of field '%s' is not in the expected range", validationErrs[0].Field())
			case "oneof":
				return fmt.Errorf("field '%s' must be one of: %s", validationErrs[0].Field(), validationErrs[0].Param())
			}
		}
		return err
	}
	return nil
}

func (v *Validator) getTagValidationDetails() map[string]tagValidationDetails {
	v.tagValidationDetailsOnce.Do(func() {
		v.tagValidationDetailsMap = map[string]tagValidationDetails{
			"safe_path": {validatorFunc: v.isSafePath, err: errors.New("invalid path")},
		}
	})
	return v.tagValidationDetailsMap
}

func (v *Validator) registerCustomValidatorsForTags() error {
	for tag, details := range v.getTagValidationDetails() {
		if err := v.validator.RegisterValidation(tag, details.validatorFunc); err != nil {
			v.logger.Error("failed to register custom validator function", "tag", tag, "err", err.Error())
			return err
		}
	}
	return nil
}

func useFormFieldNames(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

// isSafePath only rejects malformed input; containment is decided by the guard.
func (v *Validator) isSafePath(fl validator.FieldLevel) bool {
	inputPath := fl.Field().String()
	if strings.Contains(inputPath, "\x00") {
		v.logger.Warn("path has null byte")
		return false
	}
	return true
}
