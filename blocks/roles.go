package blocks

import (
	"context"
	"fmt"

	"github.com/samuraitruong/guardian/model"
	"github.com/samuraitruong/guardian/runtime/block"
)

// PolicyRoles lets an unjoined user elect one of the declared policy roles.
// A successful election registers the user on the policy record; only the
// acting user is notified, joining is not a shared state change.
type PolicyRoles struct {
	*block.BaseBlock
}

func newPolicyRoles() *PolicyRoles {
	return &PolicyRoles{BaseBlock: block.NewBase()}
}

// GetData returns the electable roles.
func (p *PolicyRoles) GetData(ctx context.Context, user model.User) (interface{}, error) {
	roles := p.electableRoles(ctx)
	return map[string]interface{}{
		"id":         p.UUID(),
		"blockType":  p.BlockType(),
		"uiMetaData": p.Options()["uiMetaData"],
		"roles":      roles,
	}, nil
}

// SetData registers the acting user under the elected role.
func (p *PolicyRoles) SetData(ctx context.Context, user model.User, data interface{}) (interface{}, error) {
	payload, ok := asMap(data)
	if !ok {
		return nil, ErrInvalidInput
	}
	elected, _ := payload["role"].(string)
	if elected == "" {
		return nil, fmt.Errorf("%w: missing role", ErrInvalidInput)
	}
	policy, err := p.Env().Policies.Load(ctx, p.PolicyID())
	if err != nil {
		return nil, err
	}
	if !policy.HasRole(model.Role(elected)) {
		return nil, fmt.Errorf("%w: role %s is not declared", ErrInvalidInput, elected)
	}
	policy.RegisterUser(user.ID, model.Role(elected))
	if err = p.Env().Policies.Save(ctx, policy); err != nil {
		return nil, err
	}
	state := map[string]interface{}{"role": elected}
	p.UpdateDataState(user, state)
	p.Env().Notifier.BlockUpdated(user, p.UUID(), state, p.Tag())
	return state, nil
}

func (p *PolicyRoles) electableRoles(ctx context.Context) []string {
	if declared, ok := p.Options()["roles"].([]interface{}); ok {
		var roles []string
		for _, role := range declared {
			if name, ok := role.(string); ok {
				roles = append(roles, name)
			}
		}
		return roles
	}
	policy, err := p.Env().Policies.Load(ctx, p.PolicyID())
	if err != nil {
		return nil
	}
	roles := make([]string, 0, len(policy.PolicyRoles))
	for _, role := range policy.PolicyRoles {
		roles = append(roles, string(role))
	}
	return roles
}
