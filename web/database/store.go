package database

import (
	"context"
	"errors"

	"github.com/huandu/go-sqlbuilder"
	"github.com/xcono/bread/builder"
	"github.com/xcono/bread/resource"
)

// Store implements resource.Store on a SQL database.
type Store struct {
	exec    *Executor
	scanner *Scanner
	flavor  sqlbuilder.Flavor
}

var _ resource.Store = (*Store)(nil)

// NewStore creates a store that renders statements in flavor.
func NewStore(exec *Executor, flavor sqlbuilder.Flavor) *Store {
	return &Store{
		exec:    exec,
		scanner: NewScanner(),
		flavor:  flavor,
	}
}

// Flavor returns the SQL dialect of the store.
func (s *Store) Flavor() sqlbuilder.Flavor {
	return s.flavor
}

// Fetch returns the record for key.
func (s *Store) Fetch(ctx context.Context, t resource.Table, key string) (resource.Record, bool, error) {
	query, args := builder.Fetch(s.flavor, t.Name, t.Key, key)
	rows, err := s.query(ctx, query, args)
	if err != nil {
		return nil, false, err
	}
	if len(rows) == 0 {
		return nil, false, nil
	}
	return rows[0], true, nil
}

// Query returns one page of records.
func (s *Store) Query(ctx context.Context, t resource.Table, q resource.Query) ([]resource.Record, error) {
	query, args, err := builder.Select(s.flavor, t.Name, q.Filters, q.Order, q.Limit, q.Offset)
	if err != nil {
		return nil, err
	}
	return s.query(ctx, query, args)
}

// Count returns how many rows match filters.
func (s *Store) Count(ctx context.Context, t resource.Table, filters []builder.Filter) (int, error) {
	query, args, err := builder.Count(s.flavor, t.Name, filters)
	if err != nil {
		return 0, err
	}

	var n int
	if err := s.exec.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Insert writes payload and reads the stored row back.
func (s *Store) Insert(ctx context.Context, t resource.Table, payload resource.Record) (resource.Record, error) {
	key, generated := payload[t.Key]

	returning := ""
	if !generated {
		returning = t.Key
	}
	query, args := builder.Insert(s.flavor, t.Name, payload, returning)

	if !generated {
		if s.flavor == sqlbuilder.PostgreSQL {
			if err := s.exec.QueryRow(ctx, query, args...).Scan(&key); err != nil {
				return nil, err
			}
		} else {
			result, err := s.exec.Exec(ctx, query, args...)
			if err != nil {
				return nil, err
			}
			id, err := result.LastInsertId()
			if err != nil {
				return nil, err
			}
			key = id
		}
	} else if _, err := s.exec.Exec(ctx, query, args...); err != nil {
		return nil, err
	}

	fq, fargs := builder.Fetch(s.flavor, t.Name, t.Key, key)
	rows, err := s.query(ctx, fq, fargs)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.New("inserted row not found")
	}
	return rows[0], nil
}

// Update applies payload to key. MySQL reports zero affected rows when
// nothing changed, so existence is decided by reading the row back.
func (s *Store) Update(ctx context.Context, t resource.Table, key string, payload resource.Record) (resource.Record, bool, error) {
	if len(payload) > 0 {
		query, args := builder.Update(s.flavor, t.Name, t.Key, key, payload)
		if _, err := s.exec.Exec(ctx, query, args...); err != nil {
			return nil, false, err
		}
	}
	return s.Fetch(ctx, t, key)
}

// Delete removes key.
func (s *Store) Delete(ctx context.Context, t resource.Table, key string) (bool, error) {
	query, args := builder.Delete(s.flavor, t.Name, t.Key, key)
	result, err := s.exec.Exec(ctx, query, args...)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) query(ctx context.Context, query string, args []interface{}) ([]resource.Record, error) {
	rows, err := s.exec.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	scanned, err := s.scanner.ScanRows(rows)
	if err != nil {
		return nil, err
	}

	records := make([]resource.Record, len(scanned))
	for i, row := range scanned {
		records[i] = row
	}
	return records, nil
}
