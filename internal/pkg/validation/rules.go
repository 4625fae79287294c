// Package validation performs the client-side checks repositories run before
// contacting the store. Defense in depth: the store's constraints remain the
// final authority.
package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/rahul/acadcore/internal/pkg/apperrors"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Struct validates a struct against its `validate` tags and normalizes
// failures into the application's validation error.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.NewValidationError(err.Error())
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
	}
	return apperrors.NewValidationError("invalid fields: " + strings.Join(fields, ", "))
}

// Required rejects an empty or whitespace-only value for the named field.
func Required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return apperrors.NewValidationError(field + " is required")
	}
	return nil
}
