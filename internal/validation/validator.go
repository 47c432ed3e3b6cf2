// Package validation wraps go-playground/validator so failures come back as
// 400 ErrValidation problems keyed by JSON field name.
package validation

import (
	"fmt"
	"net/http"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// FieldErrors maps JSON field names to their failure messages.
type FieldErrors map[string][]string

// ValidationError satisfies httpx.DomainProblem structurally.
type ValidationError struct {
	summary string
	fields  FieldErrors
}

func (e *ValidationError) Error() string { return e.summary }

func (e *ValidationError) ProblemCode() string    { return "ErrValidation" }
func (e *ValidationError) ProblemStatus() int     { return http.StatusBadRequest }
func (e *ValidationError) ProblemTitle() string   { return "Validation error" }
func (e *ValidationError) ProblemDetail() string  { return e.summary }
func (e *ValidationError) ProblemTypeURI() string { return "urn:problem:validation-error" }
func (e *ValidationError) ProblemContext() any    { return map[string]any{"fields": e.fields} }

// Fields exposes the per-field messages.
func (e *ValidationError) Fields() FieldErrors { return e.fields }

// custom are the application tags registered on top of the built-in ones.
var custom = map[string]struct {
	fn      validator.Func
	message string
}{
	"port": {fn: isPort, message: "must be a port between 1 and 65535"},
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func instance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(jsonName)
		for tag, c := range custom {
			if err := validate.RegisterValidation(tag, c.fn); err != nil {
				panic(fmt.Sprintf("validation: register %q: %v", tag, err))
			}
		}
	})
	return validate
}

// ValidateStruct checks v against its `validate` tags. The summary reads like
// "invalid email, and 2 other errors".
func ValidateStruct(v any) error {
	return collect(instance().Struct(v), func(fe validator.FieldError) string { return fe.Field() })
}

// Var validates a single value against tag and reports failures under field.
func Var(field string, value any, tag string) error {
	return collect(instance().Var(value, tag), func(validator.FieldError) string { return field })
}

func collect(err error, fieldOf func(validator.FieldError) string) error {
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return &ValidationError{summary: "validation failed", fields: FieldErrors{}}
	}
	fields := FieldErrors{}
	for _, fe := range verrs {
		name := fieldOf(fe)
		fields[name] = append(fields[name], message(fe))
	}
	return &ValidationError{summary: summarize(fields), fields: fields}
}

func isPort(fl validator.FieldLevel) bool {
	f := fl.Field()
	var n int64
	switch f.Kind() {
	case reflect.String:
		v, err := strconv.ParseInt(f.String(), 10, 32)
		if err != nil {
			return false
		}
		n = v
	case reflect.Int, reflect.Int32, reflect.Int64:
		n = f.Int()
	default:
		return false
	}
	return n >= 1 && n <= 65535
}

func message(fe validator.FieldError) string {
	if c, ok := custom[fe.Tag()]; ok {
		return c.message
	}
	unit := ""
	if fe.Kind() == reflect.String {
		unit = " characters"
	}
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		return "must be at least " + fe.Param() + unit
	case "max":
		return "must be at most " + fe.Param() + unit
	case "url", "http_url":
		return "must be an absolute URL"
	case "uuid", "uuid4", "uuid7":
		return "must be a valid id"
	case "oneof":
		return "must be one of [" + fe.Param() + "]"
	case "gte":
		return "must be " + fe.Param() + " or more"
	case "lte":
		return "must be " + fe.Param() + " or less"
	case "number", "numeric":
		return "must be a number"
	case "hostname", "hostname_rfc1123":
		return "must be a valid hostname"
	case "startswith":
		return fmt.Sprintf("must start with %q", fe.Param())
	}
	return "is invalid"
}

// summarize names one failure and counts the rest. An invalid email always
// leads; otherwise the alphabetically first field does so the text is stable.
func summarize(fields FieldErrors) string {
	total := 0
	keys := make([]string, 0, len(fields))
	for k, msgs := range fields {
		total += len(msgs)
		if len(msgs) > 0 {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return "validation failed"
	}
	slices.Sort(keys)

	lead := keys[0] + " " + fields[keys[0]][0]
	if slices.Contains(fields["email"], "must be a valid email") {
		lead = "invalid email"
	}
	if others := total - 1; others > 0 {
		return fmt.Sprintf("%s, and %d other error%s", lead, others, plural(others))
	}
	return lead
}

func jsonName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return strings.ToLower(fld.Name[:1]) + fld.Name[1:]
	}
	return name
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
