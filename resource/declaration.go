package resource

import (
	"fmt"

	"github.com/xcono/bread/builder"
	"github.com/xcono/bread/schema"
)

// FromDeclaration builds a resource from its configuration file entry.
// Extra hooks run after the marker hooks declared in RejectQuery.
func FromDeclaration(decl schema.Resource, store Store, hooks ...HookOption) (*Resource, error) {
	s, err := schema.New(decl.Fields...)
	if err != nil {
		return nil, fmt.Errorf("resource %s: %w", decl.Name, err)
	}

	ops := make([]Operation, 0, len(decl.Operations))
	for _, name := range decl.Operations {
		op, err := ParseOperation(name)
		if err != nil {
			return nil, fmt.Errorf("resource %s: %w", decl.Name, err)
		}
		ops = append(ops, op)
	}

	var all []HookOption
	for _, m := range decl.RejectQuery {
		if m.Marker == "" {
			return nil, fmt.Errorf("resource %s: reject query marker is empty", decl.Name)
		}
		message := m.Message
		if message == "" {
			message = fmt.Sprintf("query parameter %q is not allowed", m.Marker)
		}
		all = append(all, Before(RejectQueryMarker(m.Marker, message)))
	}
	all = append(all, hooks...)

	return New(s, Config{
		Name:        decl.Name,
		Table:       decl.ResourceTable(),
		PrimaryKey:  decl.PrimaryKey,
		KeyStrategy: decl.KeyStrategy,
		Operations:  NewOperationSet(ops...),
		PageSize:    decl.PageSize,
		OrderBy:     builder.ParseOrder(decl.OrderBy),
		Hooks:       all,
	}, store)
}
