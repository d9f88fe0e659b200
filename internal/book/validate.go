package book

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate reports ErrMissingFields when any required field of in holds its zero value.
func (in Input) Validate() error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return ErrMissingFields
	}
	return err
}
