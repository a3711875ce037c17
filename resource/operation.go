package resource

import "fmt"

// Operation is one of the generated CRUD operations.
type Operation string

const (
	Browse   Operation = "browse"
	Retrieve Operation = "retrieve"
	Add      Operation = "add"
	Edit     Operation = "edit"
	Delete   Operation = "delete"
)

// AllOperations lists every operation in canonical order.
var AllOperations = []Operation{Browse, Retrieve, Add, Edit, Delete}

// ParseOperation parses an operation name.
func ParseOperation(s string) (Operation, error) {
	for _, op := range AllOperations {
		if string(op) == s {
			return op, nil
		}
	}
	return "", fmt.Errorf("unknown operation %q", s)
}

// OperationSet is a set of enabled operations.
type OperationSet map[Operation]struct{}

// NewOperationSet builds a set from ops.
func NewOperationSet(ops ...Operation) OperationSet {
	set := make(OperationSet, len(ops))
	for _, op := range ops {
		set[op] = struct{}{}
	}
	return set
}

// Has reports whether op is in the set.
func (s OperationSet) Has(op Operation) bool {
	_, ok := s[op]
	return ok
}

// List returns the members in canonical order.
func (s OperationSet) List() []Operation {
	out := make([]Operation, 0, len(s))
	for _, op := range AllOperations {
		if s.Has(op) {
			out = append(out, op)
		}
	}
	return out
}
