package builder

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/huandu/go-sqlbuilder"
	"github.com/xcono/bread/schema"
)

// Filter operators
const (
	OpEQ   = "eq"   // equals
	OpNEQ  = "neq"  // not equals
	OpGT   = "gt"   // greater than
	OpGTE  = "gte"  // greater than or equal
	OpLT   = "lt"   // less than
	OpLTE  = "lte"  // less than or equal
	OpLike = "like" // pattern matching, * is the wildcard
	OpIn   = "in"   // in list: in.(a,b,c)
	OpIs   = "is"   // is.null, is.not.null
)

var operators = []string{OpEQ, OpNEQ, OpGT, OpGTE, OpLT, OpLTE, OpLike, OpIn, OpIs}

// notNull is the Value of an "is.not.null" filter.
const notNull = "not null"

// Filter represents a single filter condition
type Filter struct {
	Column   string      `json:"column"`
	Operator string      `json:"operator"`
	Value    interface{} `json:"value"`
}

// Order is one ORDER BY term.
type Order struct {
	Column string `json:"column"`
	Desc   bool   `json:"desc"`
}

func (o Order) String() string {
	if o.Desc {
		return o.Column + " DESC"
	}
	return o.Column + " ASC"
}

// ParseOrder parses ordering declarations. A leading "-" sorts descending.
func ParseOrder(fields []string) []Order {
	order := make([]Order, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		if strings.HasPrefix(f, "-") {
			order = append(order, Order{Column: f[1:], Desc: true})
		} else {
			order = append(order, Order{Column: strings.TrimPrefix(f, "+")})
		}
	}
	return order
}

// Key names the primary key column and how its values are generated.
type Key struct {
	Column   string
	Strategy schema.KeyStrategy
}

// ParseFilters turns query parameters into filters on schema fields or the
// primary key. Parameters listed in reserved are skipped. Every rejected
// parameter is reported in one *schema.ValidationError.
//
// Values take the form "op.value" (age=gt.18); a value without a known
// operator prefix is an equality match.
func ParseFilters(s *schema.Schema, key Key, params url.Values, reserved ...string) ([]Filter, error) {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	verr := &schema.ValidationError{}
	var filters []Filter

	for _, name := range names {
		if contains(reserved, name) {
			continue
		}
		if name != key.Column && !s.Has(name) {
			verr.Add(name, "unknown filter field")
			continue
		}

		for _, raw := range params[name] {
			filter, err := parseFilterParam(s, key, name, raw)
			if err != nil {
				verr.Add(name, err.Error())
				break
			}
			filters = append(filters, filter)
		}
	}

	if err := verr.Err(); err != nil {
		return nil, err
	}
	return filters, nil
}

// parseFilterParam parses a single filter parameter
func parseFilterParam(s *schema.Schema, key Key, column, raw string) (Filter, error) {
	operator, value := OpEQ, raw
	if op, rest, ok := strings.Cut(raw, "."); ok && contains(operators, op) {
		operator, value = op, rest
	}

	parsed, err := parseFilterValue(s, key, column, operator, value)
	if err != nil {
		return Filter{}, err
	}

	return Filter{Column: column, Operator: operator, Value: parsed}, nil
}

// parseFilterValue parses filter values based on operator and field type
func parseFilterValue(s *schema.Schema, key Key, column, operator, value string) (interface{}, error) {
	switch operator {
	case OpIn:
		if strings.HasPrefix(value, "(") && strings.HasSuffix(value, ")") {
			value = value[1 : len(value)-1]
		}
		if strings.TrimSpace(value) == "" {
			return nil, fmt.Errorf("in requires at least one value")
		}
		var result []interface{}
		for _, part := range strings.Split(value, ",") {
			v, err := coerce(s, key, column, strings.TrimSpace(part))
			if err != nil {
				return nil, err
			}
			result = append(result, v)
		}
		return result, nil
	case OpIs:
		switch value {
		case "null":
			return nil, nil
		case "not.null":
			return notNull, nil
		}
		return nil, fmt.Errorf("invalid is operator value: %s", value)
	case OpLike:
		if f, ok := s.Field(column); column == key.Column || !ok || f.Type != schema.String {
			return nil, fmt.Errorf("like requires a string field")
		}
		return strings.ReplaceAll(value, "*", "%"), nil
	default:
		return coerce(s, key, column, value)
	}
}

// coerce parses a value by field type. Auto keys are integers, other keys
// stay opaque strings.
func coerce(s *schema.Schema, key Key, column, value string) (interface{}, error) {
	if column != key.Column {
		return s.Coerce(column, value)
	}
	if key.Strategy == schema.KeyAuto {
		id, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("value is not a valid integer")
		}
		return id, nil
	}
	return value, nil
}

// applyFilters adds every filter to the WHERE clause, sorted by column.
func applyFilters(cond *sqlbuilder.Cond, where func(...string), filters []Filter) error {
	sorted := make([]Filter, len(filters))
	copy(sorted, filters)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Column < sorted[j].Column
	})

	for _, f := range sorted {
		expr, err := condition(cond, f)
		if err != nil {
			return err
		}
		where(expr)
	}
	return nil
}

// condition builds a single filter condition
func condition(cond *sqlbuilder.Cond, filter Filter) (string, error) {
	switch filter.Operator {
	case OpEQ:
		return cond.EQ(filter.Column, filter.Value), nil
	case OpNEQ:
		return cond.NE(filter.Column, filter.Value), nil
	case OpGT:
		return cond.GT(filter.Column, filter.Value), nil
	case OpGTE:
		return cond.GE(filter.Column, filter.Value), nil
	case OpLT:
		return cond.LT(filter.Column, filter.Value), nil
	case OpLTE:
		return cond.LE(filter.Column, filter.Value), nil
	case OpLike:
		return cond.Like(filter.Column, filter.Value), nil
	case OpIn:
		values, ok := filter.Value.([]interface{})
		if !ok || len(values) == 0 {
			return "", fmt.Errorf("in filter on %s needs a value list", filter.Column)
		}
		return cond.In(filter.Column, values...), nil
	case OpIs:
		if filter.Value == nil {
			return cond.IsNull(filter.Column), nil
		}
		if filter.Value == notNull {
			return cond.IsNotNull(filter.Column), nil
		}
		return "", fmt.Errorf("invalid is value on %s", filter.Column)
	}
	return "", fmt.Errorf("unknown operator: %s", filter.Operator)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
