package schema_test

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/xcono/bread/schema"
)

func float(v float64) *float64 { return &v }

func orgSchema(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.New(
		schema.Field{Name: "name", Type: schema.String},
		schema.Field{Name: "slug", Type: schema.String, MaxLength: 10},
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func decode(t *testing.T, body string) map[string]interface{} {
	t.Helper()
	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()
	var m map[string]interface{}
	if err := dec.Decode(&m); err != nil {
		t.Fatalf("decode %s: %v", body, err)
	}
	return m
}

func TestNewRejectsBadDeclarations(t *testing.T) {
	tt := []struct {
		name   string
		fields []schema.Field
	}{
		{"empty name", []schema.Field{{Type: schema.String}}},
		{"duplicate", []schema.Field{{Name: "a"}, {Name: "a"}}},
		{"unknown type", []schema.Field{{Name: "a", Type: "date"}}},
		{"inverted length", []schema.Field{{Name: "a", MinLength: 5, MaxLength: 2}}},
		{"inverted range", []schema.Field{{Name: "a", Type: schema.Int, Min: float(3), Max: float(1)}}},
		{"empty enum value", []schema.Field{{Name: "a", Enum: []string{"x", ""}}}},
		{"quoted enum value", []schema.Field{{Name: "a", Enum: []string{"it's"}}}},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := schema.New(tc.fields...); err == nil {
				t.Errorf("expected error for %v", tc.fields)
			}
		})
	}
}

func TestSchemaIsImmutable(t *testing.T) {
	enum := []string{"a", "b"}
	s := schema.MustNew(schema.Field{Name: "kind", Enum: enum})

	enum[0] = "z"
	fields := s.Fields()
	fields[0].Name = "other"

	f, ok := s.Field("kind")
	if !ok {
		t.Fatal("field kind disappeared")
	}
	if f.Enum[0] != "a" {
		t.Errorf("enum changed through caller slice: %v", f.Enum)
	}
	if f.Type != schema.String {
		t.Errorf("expected default type string, got %q", f.Type)
	}
}

func TestValidate(t *testing.T) {
	s := orgSchema(t)

	tt := []struct {
		name    string
		body    string
		partial bool
		want    map[string]interface{}
		fields  []string
	}{
		{
			name: "valid",
			body: `{"name": "Acme", "slug": "acme"}`,
			want: map[string]interface{}{"name": "Acme", "slug": "acme"},
		},
		{
			name:   "slug too long",
			body:   `{"name": "Acme", "slug": "acmeacmeacme"}`,
			fields: []string{"slug"},
		},
		{
			name:   "every violation is reported",
			body:   `{"slug": "acmeacmeacme", "extra": 1}`,
			fields: []string{"name", "slug", "extra"},
		},
		{
			name:   "wrong type",
			body:   `{"name": 42, "slug": "a"}`,
			fields: []string{"name"},
		},
		{
			name:   "null not allowed",
			body:   `{"name": null, "slug": "a"}`,
			fields: []string{"name"},
		},
		{
			name:    "partial skips missing fields",
			body:    `{"slug": "new"}`,
			partial: true,
			want:    map[string]interface{}{"slug": "new"},
		},
		{
			name:    "partial still checks constraints",
			body:    `{"slug": "acmeacmeacme"}`,
			partial: true,
			fields:  []string{"slug"},
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			got, err := s.Validate(decode(t, tc.body), tc.partial)

			if tc.fields != nil {
				var verr *schema.ValidationError
				if !errors.As(err, &verr) {
					t.Fatalf("expected validation error, got %v", err)
				}
				if !reflect.DeepEqual(verr.Fields(), tc.fields) {
					t.Errorf("expected fields %v, got %v", tc.fields, verr.Fields())
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestValidateNumbersAndEnums(t *testing.T) {
	s := schema.MustNew(
		schema.Field{Name: "age", Type: schema.Int, Min: float(0), Max: float(150)},
		schema.Field{Name: "score", Type: schema.Float, Optional: true, Max: float(1.5)},
		schema.Field{Name: "active", Type: schema.Bool, Optional: true},
		schema.Field{Name: "level", Enum: []string{"low", "high, very"}, Optional: true, Nullable: true},
	)

	got, err := s.Validate(decode(t, `{"age": 30, "score": 1.25, "active": true, "level": "high, very"}`), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]interface{}{"age": int64(30), "score": 1.25, "active": true, "level": "high, very"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	got, err = s.Validate(decode(t, `{"age": 1, "level": null}`), false)
	if err != nil {
		t.Fatalf("nullable enum: %v", err)
	}
	if v, ok := got["level"]; !ok || v != nil {
		t.Errorf("expected explicit null level, got %v", got)
	}

	_, err = s.Validate(decode(t, `{"age": 151, "score": 2, "active": "maybe", "level": "mid"}`), false)
	var verr *schema.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if want := []string{"age", "score", "active", "level"}; !reflect.DeepEqual(verr.Fields(), want) {
		t.Errorf("expected fields %v, got %v", want, verr.Fields())
	}
	if !strings.Contains(verr.Errors[0].Message, "150") {
		t.Errorf("expected max in message, got %q", verr.Errors[0].Message)
	}

	_, err = s.Validate(decode(t, `{"age": 1.5}`), false)
	if !errors.As(err, &verr) || verr.Errors[0].Message != "value is not a valid integer" {
		t.Errorf("expected integer error, got %v", err)
	}
}

func TestValidateIntRange(t *testing.T) {
	s := schema.MustNew(schema.Field{Name: "n", Type: schema.Int})

	got, err := s.Validate(decode(t, `{"n": 1e3}`), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["n"] != int64(1000) {
		t.Errorf("expected 1000, got %v", got["n"])
	}

	for _, body := range []string{`{"n": 1e30}`, `{"n": -1e30}`, `{"n": 9223372036854775808}`} {
		_, err := s.Validate(decode(t, body), false)
		var verr *schema.ValidationError
		if !errors.As(err, &verr) || verr.Errors[0].Message != "value is not a valid integer" {
			t.Errorf("%s: expected integer error, got %v", body, err)
		}
	}

	if _, err := s.Validate(map[string]interface{}{"n": 1e19}, false); err == nil {
		t.Error("expected an out of range float64 to be rejected")
	}
}

func TestCoerceAndNormalize(t *testing.T) {
	s := schema.MustNew(
		schema.Field{Name: "n", Type: schema.Int},
		schema.Field{Name: "f", Type: schema.Float},
		schema.Field{Name: "b", Type: schema.Bool},
		schema.Field{Name: "s"},
	)

	if v, err := s.Coerce("n", "42"); err != nil || v != int64(42) {
		t.Errorf("Coerce int: %v %v", v, err)
	}
	if _, err := s.Coerce("n", "abc"); err == nil {
		t.Error("expected error coercing abc to int")
	}
	if _, err := s.Coerce("missing", "1"); err == nil {
		t.Error("expected error for unknown field")
	}

	row := s.Normalize(map[string]interface{}{
		"id": []byte("7"),
		"n":  []byte("12"),
		"f":  "1.5",
		"b":  int64(1),
		"s":  []byte("text"),
	})
	want := map[string]interface{}{"id": []byte("7"), "n": int64(12), "f": 1.5, "b": true, "s": "text"}
	if !reflect.DeepEqual(row, want) {
		t.Errorf("expected %v, got %v", want, row)
	}
}
