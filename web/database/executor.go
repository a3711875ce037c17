package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/zeromicro/go-zero/core/logx"
)

// Executor provides database execution capabilities
type Executor struct {
	db *sql.DB
}

// NewExecutor creates a new database executor
func NewExecutor(db *sql.DB) *Executor {
	return &Executor{db: db}
}

// Query executes a SELECT query and returns rows
func (e *Executor) Query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	start := time.Now()
	rows, err := e.db.QueryContext(ctx, query, args...)
	logQuery(ctx, start, query, args, err)
	return rows, err
}

// QueryRow executes a query expected to return at most one row
func (e *Executor) QueryRow(ctx context.Context, query string, args ...interface{}) *sql.Row {
	start := time.Now()
	row := e.db.QueryRowContext(ctx, query, args...)
	logQuery(ctx, start, query, args, row.Err())
	return row
}

// Exec executes a non-SELECT query and returns the result
func (e *Executor) Exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	start := time.Now()
	result, err := e.db.ExecContext(ctx, query, args...)
	logQuery(ctx, start, query, args, err)
	return result, err
}

// Close closes the database connection
func (e *Executor) Close() error {
	return e.db.Close()
}

func logQuery(ctx context.Context, start time.Time, query string, args []interface{}, err error) {
	logger := logx.WithContext(ctx).WithDuration(time.Since(start))
	if err != nil {
		logger.Errorf("sql: %s %v: %v", query, args, err)
		return
	}
	logger.Debugf("sql: %s %v", query, args)
}
