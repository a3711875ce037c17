package builder

import (
	"sort"

	"github.com/huandu/go-sqlbuilder"
)

// Select builds a paged SELECT over a table.
func Select(flavor sqlbuilder.Flavor, table string, filters []Filter, order []Order, limit, offset int) (string, []interface{}, error) {
	sb := flavor.NewSelectBuilder()
	sb.Select("*").From(table)

	if err := applyFilters(&sb.Cond, func(expr ...string) { sb.Where(expr...) }, filters); err != nil {
		return "", nil, err
	}

	if len(order) > 0 {
		terms := make([]string, len(order))
		for i, o := range order {
			terms[i] = o.String()
		}
		sb.OrderBy(terms...)
	}

	if limit > 0 {
		sb.Limit(limit)
	}
	if offset > 0 {
		sb.Offset(offset)
	}

	sql, args := sb.Build()
	return sql, args, nil
}

// Count builds a SELECT COUNT(*) with the same filters as Select.
func Count(flavor sqlbuilder.Flavor, table string, filters []Filter) (string, []interface{}, error) {
	sb := flavor.NewSelectBuilder()
	sb.Select("COUNT(*)").From(table)

	if err := applyFilters(&sb.Cond, func(expr ...string) { sb.Where(expr...) }, filters); err != nil {
		return "", nil, err
	}

	sql, args := sb.Build()
	return sql, args, nil
}

// Fetch builds a single row lookup by key.
func Fetch(flavor sqlbuilder.Flavor, table, key string, id interface{}) (string, []interface{}) {
	sb := flavor.NewSelectBuilder()
	sb.Select("*").From(table).Where(sb.EQ(key, id)).Limit(1)
	return sb.Build()
}

// Insert builds an INSERT of one row. Columns are emitted in name order.
// With returning set on PostgreSQL, the key column is returned.
func Insert(flavor sqlbuilder.Flavor, table string, row map[string]interface{}, returning string) (string, []interface{}) {
	columns := sortedKeys(row)
	values := make([]interface{}, len(columns))
	for i, col := range columns {
		values[i] = row[col]
	}

	ib := flavor.NewInsertBuilder()
	ib.InsertInto(table)
	ib.Cols(columns...)
	ib.Values(values...)

	sql, args := ib.Build()
	if returning != "" && flavor == sqlbuilder.PostgreSQL {
		sql += " RETURNING " + returning
	}
	return sql, args
}

// Update builds an UPDATE of one row by key.
func Update(flavor sqlbuilder.Flavor, table, key string, id interface{}, set map[string]interface{}) (string, []interface{}) {
	ub := flavor.NewUpdateBuilder()
	ub.Update(table)

	for _, col := range sortedKeys(set) {
		ub.SetMore(ub.Assign(col, set[col]))
	}
	ub.Where(ub.EQ(key, id))

	return ub.Build()
}

// Delete builds a DELETE of one row by key.
func Delete(flavor sqlbuilder.Flavor, table, key string, id interface{}) (string, []interface{}) {
	db := flavor.NewDeleteBuilder()
	db.DeleteFrom(table).Where(db.EQ(key, id))
	return db.Build()
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
