package extension

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/viant/x"

	"github.com/samuraitruong/guardian/model"
	"github.com/samuraitruong/guardian/runtime/block"
)

// ErrUnknownBlockType is returned when a descriptor names a type no
// definition was registered for.
var ErrUnknownBlockType = errors.New("unknown block type")

// Factory constructs an unattached block instance.
type Factory func() block.Block

// Defaults are the per-type construction defaults a descriptor may override
// field by field.
type Defaults struct {
	DefaultActive bool
	Permissions   []model.Role
	Dependencies  []string
}

// Definition binds a descriptor type name to its factory and defaults.
type Definition struct {
	Type     string
	New      Factory
	Defaults Defaults
}

// Blocks is the block type registry.
type Blocks struct {
	types       *Types
	definitions map[string]*Definition
	mux         sync.RWMutex
}

// Types returns the go-type registry.
func (b *Blocks) Types() *Types {
	return b.types
}

// Register installs a definition, replacing any previous one for the type.
func (b *Blocks) Register(definition *Definition) {
	b.mux.Lock()
	defer b.mux.Unlock()
	b.definitions[definition.Type] = definition
}

// Lookup returns the definition for a type, nil when unknown.
func (b *Blocks) Lookup(blockType string) *Definition {
	b.mux.RLock()
	defer b.mux.RUnlock()
	return b.definitions[blockType]
}

// Known returns the registered type names sorted.
func (b *Blocks) Known() []string {
	b.mux.RLock()
	defer b.mux.RUnlock()
	ret := make([]string, 0, len(b.definitions))
	for name := range b.definitions {
		ret = append(ret, name)
	}
	sort.Strings(ret)
	return ret
}

// New constructs an unattached instance of the type along with its
// definition.
func (b *Blocks) New(blockType string) (block.Block, *Definition, error) {
	definition := b.Lookup(blockType)
	if definition == nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownBlockType, blockType)
	}
	return definition.New(), definition, nil
}

// NewBlocks creates a registry, optionally seeding the go-type registry.
func NewBlocks(goTypes ...*x.Type) *Blocks {
	ret := &Blocks{
		types:       NewTypes(),
		definitions: map[string]*Definition{},
	}
	for _, t := range goTypes {
		if t != nil {
			ret.types.Register(t)
		}
	}
	return ret
}
