// Package blocks implements the built-in block types: containers, steps,
// role election, display blocks, credential requests and the pagination
// addon.
package blocks

import (
	"errors"

	"github.com/samuraitruong/guardian/extension"
	"github.com/samuraitruong/guardian/model"
	"github.com/samuraitruong/guardian/runtime/block"
)

// Block type names as they appear in descriptor trees.
const (
	TypeContainer   = "interfaceContainerBlock"
	TypeStep        = "interfaceStepBlock"
	TypePolicyRoles = "policyRolesBlock"
	TypeInformation = "informationBlock"
	TypeRequestVC   = "requestVcDocumentBlock"
	TypePagination  = "paginationAddon"
)

// ErrInvalidInput is returned when SetData receives a payload the block type
// cannot interpret.
var ErrInvalidInput = errors.New("invalid block input")

// RegisterDefaults installs every built-in block type.
func RegisterDefaults(registry *extension.Blocks) {
	registry.Register(&extension.Definition{
		Type: TypeContainer,
		New:  func() block.Block { return newContainer() },
		Defaults: extension.Defaults{
			DefaultActive: true,
			Permissions:   []model.Role{model.AnyRole},
		},
	})
	registry.Register(&extension.Definition{
		Type: TypeStep,
		New:  func() block.Block { return newStep() },
		Defaults: extension.Defaults{
			DefaultActive: true,
			Permissions:   []model.Role{model.AnyRole},
		},
	})
	registry.Register(&extension.Definition{
		Type: TypePolicyRoles,
		New:  func() block.Block { return newPolicyRoles() },
		Defaults: extension.Defaults{
			DefaultActive: true,
			Permissions:   []model.Role{model.NoRole},
		},
	})
	registry.Register(&extension.Definition{
		Type: TypeInformation,
		New:  func() block.Block { return newInformation() },
		Defaults: extension.Defaults{
			DefaultActive: true,
			Permissions:   []model.Role{model.AnyRole},
		},
	})
	registry.Register(&extension.Definition{
		Type: TypeRequestVC,
		New:  func() block.Block { return newRequestVC() },
		Defaults: extension.Defaults{
			DefaultActive: true,
		},
	})
	registry.Register(&extension.Definition{
		Type: TypePagination,
		New:  func() block.Block { return newPagination() },
		Defaults: extension.Defaults{
			DefaultActive: true,
			Permissions:   []model.Role{model.AnyRole},
		},
	})
}

func asMap(data interface{}) (map[string]interface{}, bool) {
	ret, ok := data.(map[string]interface{})
	return ret, ok
}
