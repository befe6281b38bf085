package block

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/samuraitruong/guardian/internal/logger"
	"github.com/samuraitruong/guardian/model"
	"github.com/samuraitruong/guardian/runtime/validation"
	"github.com/samuraitruong/guardian/service/dao"
	"github.com/samuraitruong/guardian/service/dao/blockstate"
)

// BaseBlock carries the shared behaviour of every block type. Concrete types
// embed it by pointer and override the methods their semantics require; the
// self reference keeps overridden methods reachable from base behaviour.
type BaseBlock struct {
	self Block

	uuid          string
	blockType     string
	tag           string
	defaultActive bool
	permissions   []model.Role
	dependencies  []string
	options       map[string]interface{}

	parent   Block
	children []Block

	policyID    string
	policyOwner string

	env *Env
	log zerolog.Logger

	mu           sync.Mutex
	currentState map[string]interface{}
	oldState     map[string]interface{}
}

// NewBase creates an unattached base block; the tree builder wires it through
// Attach.
func NewBase() *BaseBlock {
	return &BaseBlock{
		currentState: map[string]interface{}{},
		oldState:     map[string]interface{}{},
	}
}

// Attach configures the node and links it into the tree: the type-specific
// Init hook runs first, then the node becomes reachable from its parent's
// child list.
func (b *BaseBlock) Attach(self Block, cfg Config) error {
	b.self = self
	b.uuid = cfg.UUID
	b.blockType = cfg.BlockType
	b.tag = cfg.Tag
	b.defaultActive = cfg.DefaultActive
	b.permissions = cfg.Permissions
	b.dependencies = cfg.Dependencies
	b.options = cfg.Options
	b.parent = cfg.Parent
	b.policyID = cfg.PolicyID
	b.policyOwner = cfg.PolicyOwner
	b.env = cfg.Env
	b.log = logger.New("block").With().
		Str("blockType", b.blockType).
		Str("uuid", b.uuid).
		Str("policyId", b.policyID).
		Logger()

	if initializer, ok := self.(Initializer); ok {
		if err := initializer.Init(); err != nil {
			return err
		}
	}
	if cfg.Parent != nil {
		cfg.Parent.RegisterChild(self)
	}
	return nil
}

func (b *BaseBlock) UUID() string                    { return b.uuid }
func (b *BaseBlock) BlockType() string               { return b.blockType }
func (b *BaseBlock) Tag() string                     { return b.tag }
func (b *BaseBlock) DefaultActive() bool             { return b.defaultActive }
func (b *BaseBlock) Permissions() []model.Role       { return b.permissions }
func (b *BaseBlock) Dependencies() []string          { return b.dependencies }
func (b *BaseBlock) Options() map[string]interface{} { return b.options }
func (b *BaseBlock) Parent() Block                   { return b.parent }
func (b *BaseBlock) PolicyID() string                { return b.policyID }
func (b *BaseBlock) PolicyOwner() string             { return b.policyOwner }

// Base exposes the embedded base to the tree builder.
func (b *BaseBlock) Base() *BaseBlock { return b }

// Env returns the collaborator bundle.
func (b *BaseBlock) Env() *Env { return b.env }

// Children returns a read-only view of the child list.
func (b *BaseBlock) Children() []Block {
	return append([]Block(nil), b.children...)
}

// RegisterChild appends a child; the child list is the sole ownership edge.
func (b *BaseBlock) RegisterChild(child Block) {
	b.children = append(b.children, child)
}

// SetPolicy assigns the enclosing policy identity.
func (b *BaseBlock) SetPolicy(policyID, policyOwner string) {
	b.policyID = policyID
	b.policyOwner = policyOwner
}

// IsActive reports whether the node is reachable for the user. The root is
// always active; other nodes delegate to the parent's gating.
func (b *BaseBlock) IsActive(user model.User) bool {
	if b.parent == nil {
		return true
	}
	return b.parent.IsChildActive(b.self, user)
}

// IsChildActive is the default gating: every child is active. Container
// types override it.
func (b *BaseBlock) IsChildActive(_ Block, _ model.User) bool {
	return true
}

// HasPermission evaluates the permission set in contract order: NO_ROLE,
// ANY_ROLE, then OWNER which short-circuits (owners may hold no explicit
// role), then exact role membership.
func (b *BaseBlock) HasPermission(role model.Role, user model.User) bool {
	hasAccess := false
	if b.permitted(model.NoRole) && role == "" && user.ID != b.policyOwner {
		hasAccess = true
	}
	if b.permitted(model.AnyRole) {
		hasAccess = true
	}
	if b.permitted(model.OwnerRole) {
		return user.ID == b.policyOwner
	}
	if role != "" && b.permitted(role) {
		hasAccess = true
	}
	return hasAccess
}

func (b *BaseBlock) permitted(role model.Role) bool {
	for _, candidate := range b.permissions {
		if candidate == role {
			return true
		}
	}
	return false
}

// UpdateDataState shifts the user's current state into the previous slot,
// installs the new state and reports whether the two differ structurally.
func (b *BaseBlock) UpdateDataState(user model.User, state interface{}) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.oldState[user.ID] = b.currentState[user.ID]
	b.currentState[user.ID] = state
	return !StatesEqual(b.currentState[user.ID], b.oldState[user.ID])
}

// CheckDataStateDiffer reports whether the user's state changed since the
// previous update. Kept always-true: differential notification suppression
// is a possible future optimisation, not current behaviour.
func (b *BaseBlock) CheckDataStateDiffer(_ model.User) bool {
	return true
}

// CurrentState returns the user's current state value.
func (b *BaseBlock) CurrentState(user model.User) interface{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.currentState[user.ID]
}

// GetData returns the user's current state by default; display blocks
// override it.
func (b *BaseBlock) GetData(_ context.Context, user model.User) (interface{}, error) {
	return b.CurrentState(user), nil
}

// SetData is not supported by default; interactive block types override it.
func (b *BaseBlock) SetData(_ context.Context, _ model.User, _ interface{}) (interface{}, error) {
	return nil, ErrNotSupported
}

// Validate registers the node, flags duplicate tags and undeclared
// permissions, runs the type-specific hook and recurses into children in
// declaration order. Findings accumulate in the report; nothing is thrown
// across the walk boundary.
func (b *BaseBlock) Validate(ctx context.Context, report *validation.Report) {
	if report.RegisterBlock(b.uuid, b.tag) {
		report.AddBlockErrorf(b.uuid, "tag %s already exists", b.tag)
	}
	if role, missing := report.PermissionNotDeclared(b.permissions); missing {
		report.AddBlockErrorf(b.uuid, "permission %s not exist", role)
	}
	if validator, ok := b.self.(SelfValidator); ok {
		validator.ValidateSelf(ctx, report)
	}
	for _, child := range b.children {
		child.Validate(ctx, report)
	}
}

// Serialize reconstructs the descriptor this subtree was built from.
func (b *BaseBlock) Serialize(withUUID bool) *model.BlockDescriptor {
	ret := &model.BlockDescriptor{
		BlockType:     b.blockType,
		DefaultActive: b.defaultActive,
		Permissions:   b.permissions,
	}
	if withUUID {
		ret.ID = b.uuid
	}
	if b.tag != "" {
		ret.Tag = b.tag
	}
	if len(b.dependencies) > 0 {
		ret.Dependencies = b.dependencies
	}
	if len(b.options) > 0 {
		ret.Options = b.options
	}
	for _, child := range b.children {
		ret.Children = append(ret.Children, child.Serialize(withUUID))
	}
	return ret
}

// Destroy releases the subtree, children first. The tree discard path calls
// it exactly once per node, never from a child upward.
func (b *BaseBlock) Destroy() {
	for _, child := range b.children {
		child.Destroy()
	}
	b.children = nil
}

// SaveState persists the durable snapshot when the block type declares one.
func (b *BaseBlock) SaveState(ctx context.Context) error {
	snapshotter, ok := b.self.(StateSnapshotter)
	if !ok || b.policyID == "" {
		return nil
	}
	snapshot, err := snapshotter.SnapshotState()
	if err != nil {
		return err
	}
	if len(snapshot) == 0 {
		return nil
	}
	blob, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return b.env.States.Upsert(ctx, &blockstate.State{
		PolicyID: b.policyID,
		BlockID:  b.uuid,
		Blob:     blob,
	})
}

// RestoreState seeds the block from its durable snapshot during rebuild.
func (b *BaseBlock) RestoreState(ctx context.Context) error {
	snapshotter, ok := b.self.(StateSnapshotter)
	if !ok || b.policyID == "" {
		return nil
	}
	state, err := b.env.States.Load(ctx, b.policyID, b.uuid)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return nil
		}
		return err
	}
	snapshot := map[string]interface{}{}
	if err = json.Unmarshal(state.Blob, &snapshot); err != nil {
		return err
	}
	return snapshotter.ApplyState(snapshot)
}

// UpdateBlock persists durable state and fans an update notification out to
// every entitled recipient. With the followUser option the sole recipient is
// the acting user; otherwise recipients are the registered users whose role
// intersects the permission set, every registered user when ANY_ROLE is
// present, and the owner when OWNER is present. Delivery failures never fail
// the originating operation.
func (b *BaseBlock) UpdateBlock(ctx context.Context, state interface{}, user model.User, tag string) {
	if err := b.SaveState(ctx); err != nil {
		b.log.Warn().Err(err).Msg("failed to persist block state")
	}
	if b.optionBool("followUser") {
		b.env.Notifier.BlockUpdated(user, b.uuid, state, tag)
		return
	}
	policy, err := b.env.Policies.Load(ctx, b.policyID)
	if err != nil {
		b.log.Warn().Err(err).Msg("skipped block update fan-out")
		return
	}
	for userID, role := range policy.RegisteredUsers {
		if b.permitted(role) || b.permitted(model.AnyRole) {
			b.env.Notifier.BlockUpdated(model.User{ID: userID, Role: role}, b.uuid, state, tag)
		}
	}
	if b.permitted(model.OwnerRole) {
		b.env.Notifier.BlockUpdated(model.User{ID: b.policyOwner}, b.uuid, state, tag)
	}
}

// ReportError emits a single error notification to the acting user. Errors
// cannot be attributed to an anonymous actor, so the call is a silent no-op
// without a user id.
func (b *BaseBlock) ReportError(user model.User, message string) {
	if user.ID == "" {
		return
	}
	b.env.Notifier.BlockFailed(user, b.blockType, message)
}

// RunNext advances the enclosing step container to the sibling immediately
// following this node, unless the block opts out via stopPropagation.
func (b *BaseBlock) RunNext(ctx context.Context, user model.User, data interface{}) error {
	if b.optionBool("stopPropagation") {
		return nil
	}
	controller, ok := b.parent.(StepController)
	if !ok {
		return nil
	}
	siblings := b.parent.Children()
	var target Block
	for i, sibling := range siblings {
		if sibling.UUID() == b.uuid && i+1 < len(siblings) {
			target = siblings[i+1]
			break
		}
	}
	return controller.ChangeStep(ctx, user, data, target)
}

// RunTarget advances target's enclosing step container directly to target,
// bypassing sibling-order derivation.
func (b *BaseBlock) RunTarget(ctx context.Context, user model.User, data interface{}, target Block) error {
	controller, ok := target.Parent().(StepController)
	if !ok {
		return nil
	}
	return controller.ChangeStep(ctx, user, data, target)
}

// Log returns the block-scoped logger.
func (b *BaseBlock) Log() zerolog.Logger { return b.log }

func (b *BaseBlock) optionBool(name string) bool {
	value, ok := b.options[name].(bool)
	return ok && value
}
