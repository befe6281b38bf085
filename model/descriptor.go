package model

import (
	"github.com/samuraitruong/guardian/internal/idgen"
)

// SchemaFields lists the descriptor option keys that may carry a schema IRI.
// Publishing walks these to make sure every referenced schema is itself
// published before the policy goes live.
var SchemaFields = []string{"schema", "inputSchema", "outputSchema", "presetSchema"}

// BlockDescriptor is the persisted, declarative form of a single tree node.
// A descriptor tree is what a Policy stores in Config; the tree builder turns
// it into a live block graph.
type BlockDescriptor struct {
	// ID is the runtime uuid of the block. Optional in authored trees; it is
	// regenerated on publish so exported copies stop addressing live blocks.
	ID string `json:"id,omitempty" yaml:"id,omitempty"`

	// BlockType is the registry key selecting the block implementation.
	BlockType string `json:"blockType" yaml:"blockType"`

	// Tag is a human-assigned name, unique within a tree, used for lookup
	// independent of the generated id.
	Tag string `json:"tag,omitempty" yaml:"tag,omitempty"`

	DefaultActive bool `json:"defaultActive,omitempty" yaml:"defaultActive,omitempty"`

	// Permissions name the roles allowed to interact with the block. Besides
	// declared policy roles the reserved ANY_ROLE, OWNER and NO_ROLE entries
	// are accepted.
	Permissions []Role `json:"permissions,omitempty" yaml:"permissions,omitempty"`

	Dependencies []string `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`

	// Options carries block-type-specific configuration.
	Options map[string]interface{} `json:"options,omitempty" yaml:"options,omitempty"`

	Children []*BlockDescriptor `json:"children,omitempty" yaml:"children,omitempty"`
}

// Clone creates a deep copy of the descriptor tree.
func (d *BlockDescriptor) Clone() *BlockDescriptor {
	if d == nil {
		return nil
	}
	clone := &BlockDescriptor{
		ID:            d.ID,
		BlockType:     d.BlockType,
		Tag:           d.Tag,
		DefaultActive: d.DefaultActive,
	}
	if d.Permissions != nil {
		clone.Permissions = append([]Role(nil), d.Permissions...)
	}
	if d.Dependencies != nil {
		clone.Dependencies = append([]string(nil), d.Dependencies...)
	}
	if d.Options != nil {
		clone.Options = make(map[string]interface{}, len(d.Options))
		for k, v := range d.Options {
			clone.Options[k] = v
		}
	}
	if d.Children != nil {
		clone.Children = make([]*BlockDescriptor, len(d.Children))
		for i, child := range d.Children {
			clone.Children[i] = child.Clone()
		}
	}
	return clone
}

// Walk visits the descriptor and all descendants depth-first, pre-order, in
// declaration order.
func (d *BlockDescriptor) Walk(visit func(*BlockDescriptor)) {
	if d == nil {
		return
	}
	visit(d)
	for _, child := range d.Children {
		child.Walk(visit)
	}
}

// Tags collects every non-empty tag in declaration order, duplicates included.
func (d *BlockDescriptor) Tags() []string {
	var tags []string
	d.Walk(func(node *BlockDescriptor) {
		if node.Tag != "" {
			tags = append(tags, node.Tag)
		}
	})
	return tags
}

// RegenerateIDs assigns a fresh uuid to every node. Invoked on publish so any
// previously exported copy of the tree no longer addresses live blocks.
func (d *BlockDescriptor) RegenerateIDs() {
	d.Walk(func(node *BlockDescriptor) {
		node.ID = idgen.New()
	})
}

// SchemaRefs returns every schema IRI referenced anywhere in the tree through
// one of SchemaFields, deduplicated, in first-seen order.
func (d *BlockDescriptor) SchemaRefs() []string {
	var refs []string
	seen := map[string]bool{}
	d.Walk(func(node *BlockDescriptor) {
		for _, field := range SchemaFields {
			value, ok := node.Options[field].(string)
			if !ok || value == "" || seen[value] {
				continue
			}
			seen[value] = true
			refs = append(refs, value)
		}
	})
	return refs
}

// ReplaceSchemaRef rewrites every occurrence of oldIRI in SchemaFields options
// with newIRI.
func (d *BlockDescriptor) ReplaceSchemaRef(oldIRI, newIRI string) {
	d.Walk(func(node *BlockDescriptor) {
		for _, field := range SchemaFields {
			if value, ok := node.Options[field].(string); ok && value == oldIRI {
				node.Options[field] = newIRI
			}
		}
	})
}
