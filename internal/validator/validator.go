package validator

import (
	"fmt"
	"strings"

	validatorlib "github.com/go-playground/validator/v10"
)

type Validator struct {
	validate *validatorlib.Validate
}

// ValidationError carries the per-field messages for a failed validation.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Errors, "; ")
}

func New() *Validator {
	return &Validator{validate: validatorlib.New()}
}

func (v *Validator) Validate(obj interface{}) error {
	err := v.validate.Struct(obj)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validatorlib.ValidationErrors)
	if !ok {
		return err
	}

	var msgs []string
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("field %s failed on rule %s", fe.Field(), fe.Tag()))
	}
	return &ValidationError{Errors: msgs}
}
