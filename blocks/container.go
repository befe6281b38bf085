package blocks

import (
	"context"

	"github.com/samuraitruong/guardian/model"
	"github.com/samuraitruong/guardian/runtime/block"
)

// Container groups child blocks under shared ui metadata. Every child stays
// active; visibility filtering happens per requesting user at read time.
type Container struct {
	*block.BaseBlock
}

func newContainer() *Container {
	return &Container{BaseBlock: block.NewBase()}
}

// GetData returns the container's ui metadata and the summaries of children
// the user may currently see.
func (c *Container) GetData(ctx context.Context, user model.User) (interface{}, error) {
	role := c.roleOf(ctx, user)
	var children []interface{}
	for _, child := range c.Children() {
		if !child.IsActive(user) || !child.HasPermission(role, user) {
			continue
		}
		children = append(children, map[string]interface{}{
			"id":        child.UUID(),
			"blockType": child.BlockType(),
			"tag":       child.Tag(),
		})
	}
	return map[string]interface{}{
		"id":         c.UUID(),
		"blockType":  c.BlockType(),
		"uiMetaData": c.Options()["uiMetaData"],
		"blocks":     children,
	}, nil
}

func (c *Container) roleOf(ctx context.Context, user model.User) model.Role {
	if c.Env() == nil || c.Env().Policies == nil {
		return user.Role
	}
	policy, err := c.Env().Policies.Load(ctx, c.PolicyID())
	if err != nil {
		return user.Role
	}
	return policy.RoleOf(user.ID)
}
