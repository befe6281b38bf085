// Package block defines the uniform capability contract every tree node
// implements, and the base implementation concrete block types embed. The
// contract covers identity, hierarchy links, permissions, per-user state
// diffing, serialization, validation and lifecycle.
package block

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/samuraitruong/guardian/model"
	"github.com/samuraitruong/guardian/runtime/validation"
	"github.com/samuraitruong/guardian/service/credentials"
	"github.com/samuraitruong/guardian/service/dao/blockstate"
	"github.com/samuraitruong/guardian/service/dao/policy"
	"github.com/samuraitruong/guardian/service/event"
)

// ErrNotSupported is returned by blocks for operations their type does not
// implement (for example setData on a display-only block).
var ErrNotSupported = errors.New("block: operation not supported")

// Block is the runtime contract of one tree node. Concrete block types embed
// *BaseBlock and override the methods their semantics require; the parent
// link is a non-owning back-reference, the child list is the sole ownership
// edge.
type Block interface {
	UUID() string
	BlockType() string
	Tag() string
	DefaultActive() bool
	Permissions() []model.Role
	Dependencies() []string
	Options() map[string]interface{}

	Parent() Block
	Children() []Block
	// RegisterChild links a child; called exactly once per child during a
	// tree build.
	RegisterChild(child Block)

	SetPolicy(policyID, policyOwner string)
	PolicyID() string
	PolicyOwner() string

	// IsActive reports whether the node is reachable for the user: the root
	// is always active, other nodes ask their parent's IsChildActive.
	IsActive(user model.User) bool
	// IsChildActive is consulted by children; container types override it to
	// gate steps. The default is "always active".
	IsChildActive(child Block, user model.User) bool
	// HasPermission evaluates the block's permission set for a role and
	// user. OWNER short-circuits every other entry.
	HasPermission(role model.Role, user model.User) bool

	// GetData returns the block's user-facing data.
	GetData(ctx context.Context, user model.User) (interface{}, error)
	// SetData applies a user action to the block.
	SetData(ctx context.Context, user model.User, data interface{}) (interface{}, error)

	// Validate appends structural findings to the report and recurses into
	// children. It never returns an error.
	Validate(ctx context.Context, report *validation.Report)

	// Serialize reconstructs the descriptor this node was built from,
	// optionally including the runtime uuid.
	Serialize(withUUID bool) *model.BlockDescriptor

	// RestoreState seeds the block from its durable snapshot, if any.
	RestoreState(ctx context.Context) error

	// Destroy releases the subtree, children first.
	Destroy()

	// Base exposes the embedded base block to the tree builder.
	Base() *BaseBlock
}

// Initializer is the optional construction hook a block type may implement;
// it runs before the node becomes reachable from its parent's child list.
type Initializer interface {
	Init() error
}

// SelfValidator is the optional type-specific validation hook.
type SelfValidator interface {
	ValidateSelf(ctx context.Context, report *validation.Report)
}

// StepController is the step-advance capability container types implement.
// RunNext and RunTarget delegate to it; how steps sequence is entirely the
// container's policy.
type StepController interface {
	ChangeStep(ctx context.Context, user model.User, data interface{}, target Block) error
}

// StateSnapshotter marks a block type with durable fields. The snapshot is
// persisted on every state-changing operation and re-applied during rebuild.
type StateSnapshotter interface {
	SnapshotState() (map[string]interface{}, error)
	ApplyState(snapshot map[string]interface{}) error
}

// Env bundles the collaborators blocks reach during execution.
type Env struct {
	Policies    policy.Service
	States      blockstate.Store
	Notifier    event.Notifier
	Credentials credentials.Service
	Logger      zerolog.Logger
}

// Config carries everything a node needs at construction time. The builder
// assembles it from the descriptor, the registry defaults and the policy
// context.
type Config struct {
	UUID          string
	BlockType     string
	Tag           string
	DefaultActive bool
	Permissions   []model.Role
	Dependencies  []string
	Options       map[string]interface{}
	Parent        Block
	PolicyID      string
	PolicyOwner   string
	Env           *Env
}
