// Package validator wraps go-playground/validator for tag-driven struct
// validation. Failures come back as an error chain rooted at
// ErrValidationFailed with one readable message per offending field.
package validator

import (
	"errors"
	"fmt"

	gvalidator "github.com/go-playground/validator/v10"
)

// ErrValidationFailed roots every validation error chain, so callers can
// classify failures with errors.Is regardless of which fields failed.
var ErrValidationFailed = errors.New("struct validation failed")

var validate = gvalidator.New(gvalidator.WithRequiredStructEnabled())

// Validate checks v against its `validate` struct tags. It returns nil when
// every rule passes, otherwise an error joining ErrValidationFailed with one
// message per failed field.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrors gvalidator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return err
	}

	errs := []error{ErrValidationFailed}
	for _, fieldErr := range fieldErrors {
		errs = append(errs, fmt.Errorf("field %q (value %q) fails rule %q",
			fieldErr.Field(), fmt.Sprint(fieldErr.Value()), fieldErr.Tag()))
	}
	return errors.Join(errs...)
}
