// Package validation checks untyped registration input before it reaches the
// user service.
package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Kind classifies a field-level validation failure.
type Kind string

const (
	MissingField   Kind = "MissingField"
	InvalidType    Kind = "InvalidType"
	UntrimmedField Kind = "UntrimmedField"
	OutOfRange     Kind = "OutOfRange"
)

// Bound names the length limit an OutOfRange failure violated.
type Bound string

const (
	BoundMin Bound = "min"
	BoundMax Bound = "max"
)

// FieldError describes why one field of the input was rejected.
type FieldError struct {
	Kind    Kind
	Field   string
	Message string
	// Bound and Limit are only set for OutOfRange.
	Bound Bound
	Limit int
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field '%s': %s", e.Field, e.Message)
}

// NewUser is the normalized result of a successful validation.
type NewUser struct {
	Username string
	Password string
	Fullname string
}

// sizedField declares the length limits of a field in characters. A zero max
// or maxBytes means unbounded.
type sizedField struct {
	name     string
	min      int
	max      int
	maxBytes int
}

var (
	requiredFields = []string{"username", "password"}
	stringFields   = []string{"username", "password", "fullname"}
	trimmedFields  = []string{"username", "password"}

	// bcrypt rejects passwords over 72 bytes, which multibyte input can reach
	// well under 72 characters.
	sizedFields = []sizedField{
		{name: "username", min: 3},
		{name: "password", min: 8, max: 72, maxBytes: 72},
	}
)

// rule pairs a finder, which reports the first offending field, with the
// constructor of the error for that field.
type rule struct {
	find func(input map[string]any) (string, bool)
	fail func(field string) *FieldError
}

var userRules = []rule{
	{
		find: func(input map[string]any) (string, bool) {
			return firstField(requiredFields, func(f string) bool {
				_, ok := input[f]
				return !ok
			})
		},
		fail: func(field string) *FieldError {
			return &FieldError{Kind: MissingField, Field: field, Message: "Missing field"}
		},
	},
	{
		find: func(input map[string]any) (string, bool) {
			return firstField(stringFields, func(f string) bool {
				v, ok := input[f]
				if !ok {
					return false
				}
				_, isString := v.(string)
				return !isString
			})
		},
		fail: func(field string) *FieldError {
			return &FieldError{Kind: InvalidType, Field: field, Message: "Incorrect field type: expected string"}
		},
	},
	{
		find: func(input map[string]any) (string, bool) {
			return firstField(trimmedFields, func(f string) bool {
				s := input[f].(string)
				return strings.TrimSpace(s) != s
			})
		},
		fail: func(field string) *FieldError {
			return &FieldError{Kind: UntrimmedField, Field: field, Message: "Cannot start or end with whitespace"}
		},
	},
	{
		find: func(input map[string]any) (string, bool) {
			for _, sf := range sizedFields {
				if utf8.RuneCountInString(input[sf.name].(string)) < sf.min {
					return sf.name, true
				}
			}
			return "", false
		},
		fail: func(field string) *FieldError {
			sf := lookupSized(field)
			return &FieldError{
				Kind:    OutOfRange,
				Field:   field,
				Message: fmt.Sprintf("Must be at least %d characters long", sf.min),
				Bound:   BoundMin,
				Limit:   sf.min,
			}
		},
	},
	{
		find: func(input map[string]any) (string, bool) {
			for _, sf := range sizedFields {
				if sf.max > 0 && utf8.RuneCountInString(input[sf.name].(string)) > sf.max {
					return sf.name, true
				}
			}
			return "", false
		},
		fail: func(field string) *FieldError {
			sf := lookupSized(field)
			return &FieldError{
				Kind:    OutOfRange,
				Field:   field,
				Message: fmt.Sprintf("Must be at most %d characters long", sf.max),
				Bound:   BoundMax,
				Limit:   sf.max,
			}
		},
	},
	{
		find: func(input map[string]any) (string, bool) {
			for _, sf := range sizedFields {
				if sf.maxBytes > 0 && len(input[sf.name].(string)) > sf.maxBytes {
					return sf.name, true
				}
			}
			return "", false
		},
		fail: func(field string) *FieldError {
			sf := lookupSized(field)
			return &FieldError{
				Kind:    OutOfRange,
				Field:   field,
				Message: fmt.Sprintf("Must be at most %d bytes long", sf.maxBytes),
				Bound:   BoundMax,
				Limit:   sf.maxBytes,
			}
		},
	},
}

// ValidateNewUser applies the registration rules in order and returns the first
// failure as a *FieldError. On success fullname defaults to "" and is trimmed.
func ValidateNewUser(input map[string]any) (NewUser, error) {
	for _, r := range userRules {
		if field, found := r.find(input); found {
			return NewUser{}, r.fail(field)
		}
	}

	fullname, _ := input["fullname"].(string)
	return NewUser{
		Username: input["username"].(string),
		Password: input["password"].(string),
		Fullname: strings.TrimSpace(fullname),
	}, nil
}

func firstField(fields []string, offends func(string) bool) (string, bool) {
	for _, f := range fields {
		if offends(f) {
			return f, true
		}
	}
	return "", false
}

func lookupSized(name string) sizedField {
	for _, sf := range sizedFields {
		if sf.name == name {
			return sf
		}
	}
	return sizedField{name: name}
}
