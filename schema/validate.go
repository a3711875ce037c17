package schema

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// FieldError describes why a single field was rejected.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError aggregates every field error found in one payload.
type ValidationError struct {
	Errors []FieldError
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Errors: []FieldError{{Field: field, Message: message}}}
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add records a field error.
func (e *ValidationError) Add(field, message string) {
	e.Errors = append(e.Errors, FieldError{Field: field, Message: message})
}

// Fields returns the names of the rejected fields, in report order.
func (e *ValidationError) Fields() []string {
	names := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		names[i] = fe.Field
	}
	return names
}

// Err returns e, or nil when no error was recorded.
func (e *ValidationError) Err() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}

// Validate checks payload against the schema and returns a normalized copy.
// With partial set, only the fields present in payload are checked and
// missing required fields are not reported. Every violation is reported,
// in schema order, followed by unknown fields sorted by name.
func (s *Schema) Validate(payload map[string]interface{}, partial bool) (map[string]interface{}, error) {
	verr := &ValidationError{}
	out := make(map[string]interface{}, len(payload))

	for _, f := range s.fields {
		v, ok := payload[f.Name]
		if !ok {
			if !partial && !f.Optional {
				verr.Add(f.Name, "field required")
			}
			continue
		}

		if v == nil {
			if !f.Nullable {
				verr.Add(f.Name, "none is not an allowed value")
				continue
			}
			out[f.Name] = nil
			continue
		}

		nv, err := f.convert(v)
		if err != nil {
			verr.Add(f.Name, err.Error())
			continue
		}
		if err := f.check(nv); err != nil {
			verr.Add(f.Name, err.Error())
			continue
		}
		out[f.Name] = nv
	}

	var unknown []string
	for name := range payload {
		if !s.Has(name) {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	for _, name := range unknown {
		verr.Add(name, "extra fields not permitted")
	}

	if err := verr.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// check runs the field constraints through the validator.
func (f Field) check(v interface{}) error {
	tag := f.tag()
	if tag == "" {
		return nil
	}

	err := validate.Var(v, tag)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	return errors.New(f.message(verrs[0]))
}

// tag translates the constraints into a validator tag.
func (f Field) tag() string {
	var tags []string

	switch f.Type {
	case String:
		if f.MinLength > 0 {
			tags = append(tags, "min="+strconv.Itoa(f.MinLength))
		}
		if f.MaxLength > 0 {
			tags = append(tags, "max="+strconv.Itoa(f.MaxLength))
		}
		if len(f.Enum) > 0 {
			values := make([]string, len(f.Enum))
			for i, e := range f.Enum {
				values[i] = "'" + escapeParam(e) + "'"
			}
			tags = append(tags, "oneof="+strings.Join(values, " "))
		}
	case Int:
		// the validator parses integer params strictly for int kinds
		if f.Min != nil {
			tags = append(tags, "min="+strconv.FormatInt(int64(math.Ceil(*f.Min)), 10))
		}
		if f.Max != nil {
			tags = append(tags, "max="+strconv.FormatInt(int64(math.Floor(*f.Max)), 10))
		}
	case Float:
		if f.Min != nil {
			tags = append(tags, "min="+strconv.FormatFloat(*f.Min, 'f', -1, 64))
		}
		if f.Max != nil {
			tags = append(tags, "max="+strconv.FormatFloat(*f.Max, 'f', -1, 64))
		}
	}

	return strings.Join(tags, ",")
}

func (f Field) message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "min":
		if f.Type == String {
			return fmt.Sprintf("ensure this value has at least %s characters", fe.Param())
		}
		return fmt.Sprintf("ensure this value is greater than or equal to %s", fe.Param())
	case "max":
		if f.Type == String {
			return fmt.Sprintf("ensure this value has at most %s characters", fe.Param())
		}
		return fmt.Sprintf("ensure this value is less than or equal to %s", fe.Param())
	case "oneof":
		return "value is not a valid enumeration member; permitted: " + strings.Join(f.Enum, ", ")
	}
	return fmt.Sprintf("failed on the %q constraint", fe.Tag())
}

// escapeParam hides the validator's tag separators inside a parameter.
func escapeParam(s string) string {
	s = strings.ReplaceAll(s, ",", "0x2C")
	return strings.ReplaceAll(s, "|", "0x7C")
}
