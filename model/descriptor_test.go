package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testTree() *BlockDescriptor {
	return &BlockDescriptor{
		BlockType:   "interfaceContainerBlock",
		Tag:         "root",
		Permissions: []Role{AnyRole},
		Children: []*BlockDescriptor{
			{
				BlockType: "requestVcDocumentBlock",
				Tag:       "request",
				Options:   map[string]interface{}{"schema": "#issuer-schema"},
			},
			{
				BlockType: "interfaceStepBlock",
				Tag:       "steps",
				Children: []*BlockDescriptor{
					{BlockType: "informationBlock", Options: map[string]interface{}{"schema": "#issuer-schema"}},
					{BlockType: "informationBlock", Options: map[string]interface{}{"presetSchema": "#report-schema"}},
				},
			},
		},
	}
}

func TestBlockDescriptor_Clone(t *testing.T) {
	original := testTree()
	clone := original.Clone()
	assert.Equal(t, original, clone)

	clone.Children[0].Tag = "changed"
	clone.Children[0].Options["schema"] = "#other"
	assert.Equal(t, "request", original.Children[0].Tag)
	assert.Equal(t, "#issuer-schema", original.Children[0].Options["schema"])
}

func TestBlockDescriptor_Tags(t *testing.T) {
	tree := testTree()
	assert.Equal(t, []string{"root", "request", "steps"}, tree.Tags())

	tree.Children[1].Children[0].Tag = "request"
	assert.Equal(t, []string{"root", "request", "steps", "request"}, tree.Tags())
}

func TestBlockDescriptor_RegenerateIDs(t *testing.T) {
	tree := testTree()
	tree.ID = "old-root"
	tree.RegenerateIDs()

	seen := map[string]bool{}
	tree.Walk(func(node *BlockDescriptor) {
		assert.NotEmpty(t, node.ID)
		assert.False(t, seen[node.ID], "ids must be unique")
		seen[node.ID] = true
	})
	assert.NotEqual(t, "old-root", tree.ID)
}

func TestBlockDescriptor_SchemaRefs(t *testing.T) {
	tree := testTree()
	assert.Equal(t, []string{"#issuer-schema", "#report-schema"}, tree.SchemaRefs())

	tree.ReplaceSchemaRef("#issuer-schema", "#issuer-schema@1.0.0")
	assert.Equal(t, []string{"#issuer-schema@1.0.0", "#report-schema"}, tree.SchemaRefs())
	assert.Equal(t, "#issuer-schema@1.0.0", tree.Children[0].Options["schema"])
}
