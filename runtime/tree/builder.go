package tree

import (
	"context"

	"github.com/samuraitruong/guardian/extension"
	"github.com/samuraitruong/guardian/internal/idgen"
	"github.com/samuraitruong/guardian/model"
	"github.com/samuraitruong/guardian/runtime/block"
)

// Builder turns descriptor trees into live block graphs.
type Builder struct {
	registry *extension.Blocks
	env      *block.Env
}

// NewBuilder creates a builder over the given block registry and runtime
// collaborators.
func NewBuilder(registry *extension.Blocks, env *block.Env) *Builder {
	return &Builder{registry: registry, env: env}
}

// Build materializes the policy's descriptor tree depth-first, pre-order:
// every parent is fully attached before its children are constructed. With
// skipRegistration the build is disposable: every node gets a fresh uuid so
// the live tree (if any) is never aliased, and no durable state is touched.
// An unknown block type fails the whole build.
func (b *Builder) Build(ctx context.Context, policy *model.Policy, skipRegistration bool) (block.Block, error) {
	if policy == nil || policy.Config == nil {
		return nil, &BuildError{Err: ErrBlockNotFound}
	}
	policyID := policy.ID
	if policyID == "" || skipRegistration {
		policyID = idgen.New()
	}
	return b.build(ctx, policy.Config, nil, policyID, policy.Owner, skipRegistration)
}

func (b *Builder) build(ctx context.Context, descriptor *model.BlockDescriptor, parent block.Block, policyID, policyOwner string, skipRegistration bool) (block.Block, error) {
	instance, definition, err := b.registry.New(descriptor.BlockType)
	if err != nil {
		return nil, &BuildError{BlockID: descriptor.ID, Err: err}
	}

	uuid := descriptor.ID
	if uuid == "" || skipRegistration {
		uuid = idgen.New()
	}
	cfg := block.Config{
		UUID:          uuid,
		BlockType:     descriptor.BlockType,
		Tag:           descriptor.Tag,
		DefaultActive: descriptor.DefaultActive || definition.Defaults.DefaultActive,
		Permissions:   descriptor.Permissions,
		Dependencies:  descriptor.Dependencies,
		Options:       descriptor.Options,
		Parent:        parent,
		PolicyID:      policyID,
		PolicyOwner:   policyOwner,
		Env:           b.env,
	}
	if len(cfg.Permissions) == 0 {
		cfg.Permissions = definition.Defaults.Permissions
	}
	if len(cfg.Dependencies) == 0 {
		cfg.Dependencies = definition.Defaults.Dependencies
	}
	if err = instance.Base().Attach(instance, cfg); err != nil {
		return nil, &BuildError{BlockID: uuid, Err: err}
	}

	for _, child := range descriptor.Children {
		if _, err = b.build(ctx, child, instance, policyID, policyOwner, skipRegistration); err != nil {
			return nil, err
		}
	}
	if !skipRegistration {
		if err = instance.RestoreState(ctx); err != nil {
			return nil, &BuildError{BlockID: uuid, Err: err}
		}
	}
	return instance, nil
}
