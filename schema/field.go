package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Type is the value type of a field.
type Type string

const (
	String Type = "string"
	Int    Type = "int"
	Float  Type = "float"
	Bool   Type = "bool"
)

// KeyStrategy decides who generates primary keys for new records.
type KeyStrategy string

const (
	// KeyAuto leaves key generation to the database (auto increment, serial).
	KeyAuto KeyStrategy = "auto"
	// KeyUUID generates a random UUID before insert.
	KeyUUID KeyStrategy = "uuid"
)

// Field is a named, typed and constrained record attribute.
type Field struct {
	Name string
	Type Type `json:",default=string,options=string|int|float|bool"`
	// Optional fields may be omitted on add; required otherwise.
	Optional bool `json:",optional"`
	// Nullable fields accept an explicit null.
	Nullable bool `json:",optional"`
	// MinLength and MaxLength bound strings, counted in runes. Zero means unbounded.
	MinLength int `json:",optional"`
	MaxLength int `json:",optional"`
	// Min and Max bound numbers.
	Min *float64 `json:",optional"`
	Max *float64 `json:",optional"`
	// Enum restricts strings to a fixed set of values.
	Enum []string `json:",optional"`
}

// Schema is an immutable ordered set of fields.
type Schema struct {
	fields []Field
	index  map[string]int
}

// New builds a schema. Field names must be unique and non-empty.
func New(fields ...Field) (*Schema, error) {
	s := &Schema{
		fields: make([]Field, 0, len(fields)),
		index:  make(map[string]int, len(fields)),
	}

	for _, f := range fields {
		if f.Name == "" {
			return nil, errors.New("field name is required")
		}
		if _, ok := s.index[f.Name]; ok {
			return nil, fmt.Errorf("duplicate field %q", f.Name)
		}
		if f.Type == "" {
			f.Type = String
		}
		switch f.Type {
		case String, Int, Float, Bool:
		default:
			return nil, fmt.Errorf("field %q: unknown type %q", f.Name, f.Type)
		}
		if f.MaxLength > 0 && f.MinLength > f.MaxLength {
			return nil, fmt.Errorf("field %q: min length %d exceeds max length %d", f.Name, f.MinLength, f.MaxLength)
		}
		if f.Min != nil && f.Max != nil && *f.Min > *f.Max {
			return nil, fmt.Errorf("field %q: min %v exceeds max %v", f.Name, *f.Min, *f.Max)
		}

		for _, e := range f.Enum {
			if e == "" || strings.Contains(e, "'") {
				return nil, fmt.Errorf("field %q: enum value %q must be non-empty and free of single quotes", f.Name, e)
			}
		}

		f.Enum = append([]string(nil), f.Enum...)
		f.Min = copyFloat(f.Min)
		f.Max = copyFloat(f.Max)

		s.index[f.Name] = len(s.fields)
		s.fields = append(s.fields, f)
	}

	return s, nil
}

// MustNew is like New but panics on error. Meant for static declarations.
func MustNew(fields ...Field) *Schema {
	s, err := New(fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// Fields returns a copy of the fields in declaration order.
func (s *Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Names returns field names in declaration order.
func (s *Schema) Names() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.Name
	}
	return names
}

// Field looks up a field by name.
func (s *Schema) Field(name string) (Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

// Has reports whether the schema declares name.
func (s *Schema) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Coerce parses a raw query string value into the field's type.
func (s *Schema) Coerce(name, raw string) (interface{}, error) {
	f, ok := s.Field(name)
	if !ok {
		return nil, fmt.Errorf("unknown field %q", name)
	}
	return f.parse(raw)
}

// Normalize converts driver values in a scanned row to the declared field
// types. Columns outside the schema are left untouched.
func (s *Schema) Normalize(row map[string]interface{}) map[string]interface{} {
	for name, v := range row {
		f, ok := s.Field(name)
		if !ok || v == nil {
			continue
		}
		if b, ok := v.([]byte); ok {
			v = string(b)
		}
		if nv, err := f.convert(v); err == nil {
			row[name] = nv
		} else {
			row[name] = v
		}
	}
	return row
}

func (f Field) parse(raw string) (interface{}, error) {
	switch f.Type {
	case Int:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, errors.New("value is not a valid integer")
		}
		return n, nil
	case Float:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, errors.New("value is not a valid float")
		}
		return n, nil
	case Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, errors.New("value could not be parsed to a boolean")
		}
		return b, nil
	default:
		return raw, nil
	}
}

// convert checks v against the field type and returns it in canonical form:
// string, int64, float64 or bool.
func (f Field) convert(v interface{}) (interface{}, error) {
	switch f.Type {
	case String:
		if s, ok := v.(string); ok {
			return s, nil
		}
		return nil, errors.New("str type expected")
	case Int:
		switch n := v.(type) {
		case json.Number:
			if i, err := n.Int64(); err == nil {
				return i, nil
			}
			if fl, err := n.Float64(); err == nil {
				if i, ok := exactInt(fl); ok {
					return i, nil
				}
			}
		case int:
			return int64(n), nil
		case int32:
			return int64(n), nil
		case int64:
			return n, nil
		case float64:
			if i, ok := exactInt(n); ok {
				return i, nil
			}
		case string:
			if i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64); err == nil {
				return i, nil
			}
		}
		return nil, errors.New("value is not a valid integer")
	case Float:
		switch n := v.(type) {
		case json.Number:
			if fl, err := n.Float64(); err == nil {
				return fl, nil
			}
		case float64:
			return n, nil
		case float32:
			return float64(n), nil
		case int:
			return float64(n), nil
		case int64:
			return float64(n), nil
		case string:
			if fl, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
				return fl, nil
			}
		}
		return nil, errors.New("value is not a valid float")
	case Bool:
		switch b := v.(type) {
		case bool:
			return b, nil
		case int64:
			return b != 0, nil
		case string:
			if pb, err := strconv.ParseBool(b); err == nil {
				return pb, nil
			}
		}
		return nil, errors.New("value could not be parsed to a boolean")
	}
	return nil, fmt.Errorf("unknown type %q", f.Type)
}

// exactInt converts fl when it is a whole number inside the int64 range.
func exactInt(fl float64) (int64, bool) {
	if fl != math.Trunc(fl) || fl < math.MinInt64 || fl >= math.MaxInt64 {
		return 0, false
	}
	return int64(fl), true
}

func copyFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
