package extension

import (
	"github.com/viant/x"
)

// Types registers the go types block implementations expose for their
// options and durable snapshots.
type Types struct {
	x.Registry
}

// Register adds a data type to the registry.
func (t *Types) Register(dataType *x.Type) {
	t.Registry.Register(dataType)
}

// Lookup returns a registered data type by name, nil when unknown.
func (t *Types) Lookup(name string) *x.Type {
	return t.Registry.Lookup(name)
}

// NewTypes creates a new type registry.
func NewTypes(options ...x.RegistryOption) *Types {
	return &Types{Registry: *x.NewRegistry(options...)}
}
