// Package resource generates the browse, retrieve, add, edit and delete
// operations of a schema-bound table.
package resource

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/xcono/bread/builder"
	"github.com/xcono/bread/schema"
	"github.com/zeromicro/go-zero/core/logx"
)

// PageParam is the browse query parameter selecting the 1-based page.
const PageParam = "page"

// Config declares a resource.
type Config struct {
	// Name is used in errors and logs. Defaults to Table.
	Name string
	// Table is the backing table.
	Table string
	// PrimaryKey is the key column. Defaults to "id".
	PrimaryKey string
	// KeyStrategy defaults to schema.KeyAuto.
	KeyStrategy schema.KeyStrategy
	// Operations are the enabled operations. At least one is required.
	Operations OperationSet
	// PageSize limits browse results per call.
	PageSize int
	// OrderBy is the browse ordering; the primary key ascending is always
	// appended as the final tie-breaker.
	OrderBy []builder.Order
	// Hooks run before the default operation, in order.
	Hooks []HookOption
}

// Page is one browse result.
type Page struct {
	Items []Record `json:"data"`
	Count int      `json:"count"`
	Page  int      `json:"page"`
	Pages int      `json:"pages"`
}

// Resource binds a schema and a config to a store. It is immutable and
// safe for concurrent use.
type Resource struct {
	schema   *schema.Schema
	config   Config
	table    Table
	order    []builder.Order
	store    Store
	handlers map[Operation]handlerFunc
}

// New validates cfg against s and builds the resource.
func New(s *schema.Schema, cfg Config, store Store) (*Resource, error) {
	if s == nil {
		return nil, errors.New("resource: schema is required")
	}
	if store == nil {
		return nil, errors.New("resource: store is required")
	}
	if cfg.Table == "" {
		return nil, errors.New("resource: table is required")
	}
	if cfg.Name == "" {
		cfg.Name = cfg.Table
	}
	if cfg.PrimaryKey == "" {
		cfg.PrimaryKey = "id"
	}
	if s.Has(cfg.PrimaryKey) {
		return nil, fmt.Errorf("resource %s: primary key %q must not be a schema field", cfg.Name, cfg.PrimaryKey)
	}
	switch cfg.KeyStrategy {
	case "":
		cfg.KeyStrategy = schema.KeyAuto
	case schema.KeyAuto, schema.KeyUUID:
	default:
		return nil, fmt.Errorf("resource %s: unknown key strategy %q", cfg.Name, cfg.KeyStrategy)
	}
	if len(cfg.Operations) == 0 {
		return nil, fmt.Errorf("resource %s: no operations enabled", cfg.Name)
	}
	for op := range cfg.Operations {
		if _, err := ParseOperation(string(op)); err != nil {
			return nil, fmt.Errorf("resource %s: %w", cfg.Name, err)
		}
	}
	if cfg.Operations.Has(Browse) && cfg.PageSize <= 0 {
		return nil, fmt.Errorf("resource %s: page size must be positive, got %d", cfg.Name, cfg.PageSize)
	}

	order := make([]builder.Order, 0, len(cfg.OrderBy)+1)
	keyOrdered := false
	for _, o := range cfg.OrderBy {
		if o.Column != cfg.PrimaryKey && !s.Has(o.Column) {
			return nil, fmt.Errorf("resource %s: cannot order by unknown field %q", cfg.Name, o.Column)
		}
		keyOrdered = keyOrdered || o.Column == cfg.PrimaryKey
		order = append(order, o)
	}
	if !keyOrdered {
		order = append(order, builder.Order{Column: cfg.PrimaryKey})
	}

	cfg.Operations = NewOperationSet(cfg.Operations.List()...)
	cfg.OrderBy = append([]builder.Order(nil), cfg.OrderBy...)
	cfg.Hooks = append([]HookOption(nil), cfg.Hooks...)

	r := &Resource{
		schema: s,
		config: cfg,
		table:  Table{Name: cfg.Table, Key: cfg.PrimaryKey},
		order:  order,
		store:  store,
	}

	defaults := map[Operation]handlerFunc{
		Browse:   func(ctx context.Context, req *Request) (interface{}, error) { return r.browse(ctx, req) },
		Retrieve: func(ctx context.Context, req *Request) (interface{}, error) { return r.retrieve(ctx, req) },
		Add:      func(ctx context.Context, req *Request) (interface{}, error) { return r.add(ctx, req) },
		Edit:     func(ctx context.Context, req *Request) (interface{}, error) { return r.edit(ctx, req) },
		Delete:   func(ctx context.Context, req *Request) (interface{}, error) { return nil, r.delete(ctx, req) },
	}
	r.handlers = make(map[Operation]handlerFunc, len(cfg.Operations))
	for _, op := range cfg.Operations.List() {
		r.handlers[op] = chain(cfg.Hooks, op, defaults[op])
	}

	return r, nil
}

// Name returns the resource name.
func (r *Resource) Name() string { return r.config.Name }

// Table returns the backing table.
func (r *Resource) Table() Table { return r.table }

// Schema returns the record schema.
func (r *Resource) Schema() *schema.Schema { return r.schema }

// PageSize returns the browse limit.
func (r *Resource) PageSize() int { return r.config.PageSize }

// KeyStrategy returns who generates primary keys.
func (r *Resource) KeyStrategy() schema.KeyStrategy { return r.config.KeyStrategy }

// Order returns the effective browse ordering, tie-breaker included.
func (r *Resource) Order() []builder.Order {
	return append([]builder.Order(nil), r.order...)
}

// Operations returns the enabled operations in canonical order.
func (r *Resource) Operations() []Operation { return r.config.Operations.List() }

// Enabled reports whether op is exposed.
func (r *Resource) Enabled(op Operation) bool { return r.config.Operations.Has(op) }

// Browse lists one page of records.
func (r *Resource) Browse(ctx context.Context, req *Request) (*Page, error) {
	v, err := r.dispatch(ctx, Browse, req)
	if err != nil {
		return nil, err
	}
	return v.(*Page), nil
}

// Retrieve fetches the record req.Key.
func (r *Resource) Retrieve(ctx context.Context, req *Request) (Record, error) {
	v, err := r.dispatch(ctx, Retrieve, req)
	if err != nil {
		return nil, err
	}
	return v.(Record), nil
}

// Add validates req.Payload and creates a record.
func (r *Resource) Add(ctx context.Context, req *Request) (Record, error) {
	v, err := r.dispatch(ctx, Add, req)
	if err != nil {
		return nil, err
	}
	return v.(Record), nil
}

// Edit validates req.Payload and updates the record req.Key.
func (r *Resource) Edit(ctx context.Context, req *Request) (Record, error) {
	v, err := r.dispatch(ctx, Edit, req)
	if err != nil {
		return nil, err
	}
	return v.(Record), nil
}

// Delete removes the record req.Key. Deleting a missing key succeeds.
func (r *Resource) Delete(ctx context.Context, req *Request) error {
	_, err := r.dispatch(ctx, Delete, req)
	return err
}

func (r *Resource) dispatch(ctx context.Context, op Operation, req *Request) (interface{}, error) {
	h, ok := r.handlers[op]
	if !ok {
		return nil, &OperationDisabledError{Resource: r.config.Name, Operation: op}
	}
	if req == nil {
		req = &Request{}
	}
	req.Operation = op
	return h(ctx, req)
}

func (r *Resource) browse(ctx context.Context, req *Request) (*Page, error) {
	verr := &ValidationError{}

	page := 1
	if raw := req.Query.Get(PageParam); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			verr.Add(PageParam, "value is not a valid page number")
		} else {
			page = n
		}
	}

	filters, err := builder.ParseFilters(r.schema, builder.Key{Column: r.table.Key, Strategy: r.config.KeyStrategy}, req.Query, PageParam)
	var ferr *ValidationError
	if errors.As(err, &ferr) {
		verr.Errors = append(verr.Errors, ferr.Errors...)
	} else if err != nil {
		return nil, err
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}

	count, err := r.store.Count(ctx, r.table, filters)
	if err != nil {
		return nil, r.storeError(ctx, Browse, err)
	}

	size := r.config.PageSize
	result := &Page{
		Items: []Record{},
		Count: count,
		Page:  page,
		Pages: (count + size - 1) / size,
	}
	// page is bounded by pages before the offset is computed so it cannot overflow
	if page <= result.Pages {
		items, err := r.store.Query(ctx, r.table, Query{
			Filters: filters,
			Order:   r.order,
			Limit:   size,
			Offset:  (page - 1) * size,
		})
		if err != nil {
			return nil, r.storeError(ctx, Browse, err)
		}
		for _, rec := range items {
			result.Items = append(result.Items, r.normalize(rec))
		}
	}

	return result, nil
}

func (r *Resource) retrieve(ctx context.Context, req *Request) (Record, error) {
	if !r.validKey(req.Key) {
		return nil, r.notFound(req.Key)
	}
	rec, ok, err := r.store.Fetch(ctx, r.table, req.Key)
	if err != nil {
		return nil, r.storeError(ctx, Retrieve, err)
	}
	if !ok {
		return nil, r.notFound(req.Key)
	}
	return r.normalize(rec), nil
}

func (r *Resource) add(ctx context.Context, req *Request) (Record, error) {
	payload, err := r.schema.Validate(req.Payload, false)
	if err != nil {
		return nil, err
	}

	if r.config.KeyStrategy == schema.KeyUUID {
		payload[r.table.Key] = uuid.NewString()
	}

	rec, err := r.store.Insert(ctx, r.table, payload)
	if err != nil {
		return nil, r.storeError(ctx, Add, err)
	}

	logx.WithContext(ctx).Infof("%s: added %v", r.config.Name, rec[r.table.Key])
	return r.normalize(rec), nil
}

func (r *Resource) edit(ctx context.Context, req *Request) (Record, error) {
	if req.Partial && len(req.Payload) == 0 {
		return nil, schema.NewValidationError("body", "no fields to update")
	}

	payload, err := r.schema.Validate(req.Payload, req.Partial)
	if err != nil {
		return nil, err
	}

	if !r.validKey(req.Key) {
		return nil, r.notFound(req.Key)
	}
	rec, ok, err := r.store.Update(ctx, r.table, req.Key, payload)
	if err != nil {
		return nil, r.storeError(ctx, Edit, err)
	}
	if !ok {
		return nil, r.notFound(req.Key)
	}
	return r.normalize(rec), nil
}

func (r *Resource) delete(ctx context.Context, req *Request) error {
	if !r.validKey(req.Key) {
		logx.WithContext(ctx).Debugf("%s: delete of malformed key %s", r.config.Name, req.Key)
		return nil
	}
	removed, err := r.store.Delete(ctx, r.table, req.Key)
	if err != nil {
		return r.storeError(ctx, Delete, err)
	}
	if !removed {
		logx.WithContext(ctx).Debugf("%s: delete of missing key %s", r.config.Name, req.Key)
	}
	return nil
}

// validKey reports whether key can name a record. Auto keys are integers.
func (r *Resource) validKey(key string) bool {
	if key == "" {
		return false
	}
	if r.config.KeyStrategy == schema.KeyAuto {
		_, err := strconv.ParseInt(key, 10, 64)
		return err == nil
	}
	return true
}

func (r *Resource) notFound(key string) error {
	return &NotFoundError{Resource: r.config.Name, Key: key}
}

func (r *Resource) storeError(ctx context.Context, op Operation, err error) error {
	serr := &StoreError{Resource: r.config.Name, Operation: op, Err: err}
	logx.WithContext(ctx).Error(serr)
	return serr
}

// normalize converts driver values to schema types and auto keys to integers.
func (r *Resource) normalize(rec Record) Record {
	r.schema.Normalize(rec)

	switch k := rec[r.table.Key].(type) {
	case []byte:
		rec[r.table.Key] = r.normalizeKey(string(k))
	case string:
		rec[r.table.Key] = r.normalizeKey(k)
	}
	return rec
}

func (r *Resource) normalizeKey(k string) interface{} {
	if r.config.KeyStrategy == schema.KeyAuto {
		if n, err := strconv.ParseInt(k, 10, 64); err == nil {
			return n
		}
	}
	return k
}
