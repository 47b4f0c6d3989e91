package common

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	validator "github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the shared struct validator.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// ValidateStruct runs tag validation and converts failures into a validation AppError.
func ValidateStruct(v any) error {
	err := Validator().Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return Validation("%v", err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	details := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		msg := fmt.Sprintf("%s failed %q (value: %v)", fe.Field(), fe.Tag(), fe.Value())
		if fe.Param() != "" {
			msg = fmt.Sprintf("%s failed %q=%s (value: %v)", fe.Field(), fe.Tag(), fe.Param(), fe.Value())
		}
		msgs = append(msgs, msg)
		details[fe.Field()] = fe.Tag()
	}
	appErr := Validation("%s", strings.Join(msgs, "; "))
	appErr.Details = details
	return appErr
}
