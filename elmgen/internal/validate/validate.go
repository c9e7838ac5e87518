// Package validate checks decoded documents and config files with
// go-playground/validator and turns failures into readable errors.
package validate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Error lists every failed field, in struct order.
type Error struct {
	// Fields maps the namespaced field (e.g. "Document.Endpoints[0].Method")
	// to its message.
	Fields map[string]string

	// Messages holds "field: message" lines in struct order.
	Messages []string
}

func (e *Error) Error() string {
	return strings.Join(e.Messages, "; ")
}

// Struct validates v. It returns nil, an *Error for field failures, or
// the validator's own error for invalid input.
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var valErrs validator.ValidationErrors
	if !errors.As(err, &valErrs) {
		return err
	}
	out := &Error{Fields: make(map[string]string, len(valErrs))}
	for _, fe := range valErrs {
		msg := message(fe)
		out.Fields[fe.Namespace()] = msg
		out.Messages = append(out.Messages, fe.Namespace()+": "+msg)
	}
	return out
}

// message converts a validator.FieldError to a human-readable message.
func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "min", "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max", "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "startswith":
		return fmt.Sprintf("must start with %q", fe.Param())
	case "excludesall":
		return fmt.Sprintf("must not contain any of %q", fe.Param())
	case "required_without":
		return fmt.Sprintf("required when %s is empty", fe.Param())
	case "excluded_with":
		return fmt.Sprintf("must be empty when %s is set", fe.Param())
	default:
		if fe.Param() != "" {
			return fmt.Sprintf("failed %s=%s validation", fe.Tag(), fe.Param())
		}
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
