// Package validation turns malformed request bodies into *pipeline.ValidationError.
//
// Struct rules are declared with `validate` tags on the pipeline types and
// checked by go-playground/validator. Field paths use the JSON wire names,
// e.g. "edges[0].source".
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/meikuraledutech/pipeline"
)

// Validator checks decoded request structs. It satisfies fiber.StructValidator.
type Validator struct {
	validate *validator.Validate
}

// New creates a Validator that reports fields by their json tag names.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return &Validator{validate: v}
}

// Validate validates a struct using its `validate` tags.
func (v *Validator) Validate(out any) error {
	err := v.validate.Struct(out)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &pipeline.ValidationError{Fields: []pipeline.FieldError{{Field: "body", Message: err.Error()}}}
	}

	verr := &pipeline.ValidationError{Fields: make([]pipeline.FieldError, 0, len(fieldErrs))}
	for _, fe := range fieldErrs {
		verr.Fields = append(verr.Fields, pipeline.FieldError{
			Field:   fieldPath(fe.Namespace()),
			Message: message(fe),
		})
	}
	return verr
}

// FromDecodeError maps a JSON decoding failure to a ValidationError.
func FromDecodeError(err error) *pipeline.ValidationError {
	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
	)
	switch {
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		msg := fmt.Sprintf("must be %s, got %s", kindName(typeErr.Type), typeErr.Value)
		// The decoder reports numeric overflow as "number <literal>".
		if lit, ok := strings.CutPrefix(typeErr.Value, "number "); ok {
			msg = fmt.Sprintf("is out of range: %s", lit)
		}
		return &pipeline.ValidationError{Fields: []pipeline.FieldError{{Field: field, Message: msg}}}
	case errors.As(err, &syntaxErr):
		return &pipeline.ValidationError{Fields: []pipeline.FieldError{{
			Field:   "body",
			Message: fmt.Sprintf("malformed JSON at offset %d: %s", syntaxErr.Offset, syntaxErr.Error()),
		}}}
	default:
		return &pipeline.ValidationError{Fields: []pipeline.FieldError{{Field: "body", Message: err.Error()}}}
	}
}

// CheckEncoding rejects bodies that are not valid UTF-8. The JSON decoder
// would otherwise replace invalid bytes with U+FFFD, merging distinct ids.
func CheckEncoding(body []byte) error {
	if utf8.Valid(body) {
		return nil
	}
	offset := 0
	for offset < len(body) {
		r, size := utf8.DecodeRune(body[offset:])
		if r == utf8.RuneError && size <= 1 {
			break
		}
		offset += size
	}
	return &pipeline.ValidationError{Fields: []pipeline.FieldError{{
		Field:   "body",
		Message: fmt.Sprintf("invalid UTF-8 at offset %d", offset),
	}}}
}

// fieldPath drops the root struct name: "Pipeline.edges[0].source" -> "edges[0].source".
func fieldPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must have at least " + fe.Param() + " items"
	case "max":
		return "must have at most " + fe.Param() + " items"
	default:
		return "is invalid"
	}
}

func kindName(t reflect.Type) string {
	if t == nil {
		return "a valid value"
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return "a string"
	case reflect.Float32, reflect.Float64, reflect.Int, reflect.Int64:
		return "a number"
	case reflect.Bool:
		return "a boolean"
	case reflect.Slice, reflect.Array:
		return "an array"
	case reflect.Map, reflect.Struct:
		return "an object"
	default:
		return t.String()
	}
}

// Decode parses and validates a pipeline document outside of an HTTP request.
func (v *Validator) Decode(data []byte) (*pipeline.Pipeline, error) {
	if err := CheckEncoding(data); err != nil {
		return nil, err
	}
	var p pipeline.Pipeline
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, FromDecodeError(err)
	}
	if err := v.Validate(&p); err != nil {
		return nil, err
	}
	return &p, nil
}
