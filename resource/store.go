package resource

import (
	"context"

	"github.com/xcono/bread/builder"
)

// Record is one row, keyed by column name.
type Record map[string]interface{}

// Table identifies the backing table of a resource.
type Table struct {
	Name string
	Key  string
}

// Query is a browse request as seen by the store.
type Query struct {
	Filters []builder.Filter
	Order   []builder.Order
	Limit   int
	Offset  int
}

// Store is the persistence layer a resource delegates to. Implementations
// must be safe for concurrent use.
type Store interface {
	// Fetch returns the record for key; ok is false when it does not exist.
	Fetch(ctx context.Context, table Table, key string) (rec Record, ok bool, err error)
	// Query returns records matching q, in q.Order.
	Query(ctx context.Context, table Table, q Query) ([]Record, error)
	// Count returns how many records match filters.
	Count(ctx context.Context, table Table, filters []builder.Filter) (int, error)
	// Insert writes payload and returns the stored record with its key.
	Insert(ctx context.Context, table Table, payload Record) (Record, error)
	// Update applies payload to key; ok is false when key does not exist.
	Update(ctx context.Context, table Table, key string, payload Record) (rec Record, ok bool, err error)
	// Delete removes key and reports whether a record was removed.
	Delete(ctx context.Context, table Table, key string) (bool, error)
}
