package blocks

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/samuraitruong/guardian/model"
	"github.com/samuraitruong/guardian/runtime/block"
	"github.com/samuraitruong/guardian/service/credentials"
	blockstatemem "github.com/samuraitruong/guardian/service/dao/blockstate/memory"
	policymem "github.com/samuraitruong/guardian/service/dao/policy/memory"
)

type capturedNotifier struct {
	mu      sync.Mutex
	updates []string
}

func (n *capturedNotifier) BlockUpdated(recipient model.User, _ string, _ interface{}, _ string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.updates = append(n.updates, recipient.ID)
}

func (n *capturedNotifier) BlockFailed(model.User, string, string) {}

func newTestEnv(t *testing.T) (*block.Env, *policymem.Service, *capturedNotifier) {
	notifier := &capturedNotifier{}
	policies := policymem.New()
	env := &block.Env{
		Policies:    policies,
		States:      blockstatemem.New(),
		Notifier:    notifier,
		Credentials: credentials.NewUnsigned(),
	}
	return env, policies, notifier
}

func attach(t *testing.T, instance block.Block, cfg block.Config) block.Block {
	assert.NoError(t, instance.Base().Attach(instance, cfg))
	return instance
}

func TestStep_Sequencing(t *testing.T) {
	ctx := context.Background()
	env, _, _ := newTestEnv(t)
	alice := model.User{ID: "did:alice"}
	bob := model.User{ID: "did:bob"}

	step := newStep()
	attach(t, step, block.Config{UUID: "step", BlockType: TypeStep, Tag: "flow", PolicyID: "p1", Env: env})
	first := attach(t, newInformation(), block.Config{UUID: "s1", BlockType: TypeInformation, Parent: step, PolicyID: "p1", Env: env})
	second := attach(t, newInformation(), block.Config{UUID: "s2", BlockType: TypeInformation, Parent: step, PolicyID: "p1", Env: env})

	assert.True(t, first.IsActive(alice))
	assert.False(t, second.IsActive(alice))

	assert.NoError(t, step.ChangeStep(ctx, alice, nil, nil))
	assert.False(t, first.IsActive(alice))
	assert.True(t, second.IsActive(alice))

	// each user's cursor is independent
	assert.True(t, first.IsActive(bob))

	// without the cyclic option the cursor stops at the last step
	assert.NoError(t, step.ChangeStep(ctx, alice, nil, nil))
	assert.True(t, second.IsActive(alice))

	assert.NoError(t, step.ChangeStep(ctx, alice, nil, first))
	assert.True(t, first.IsActive(alice))
}

func TestStep_CyclicWrapsAround(t *testing.T) {
	ctx := context.Background()
	env, _, _ := newTestEnv(t)
	alice := model.User{ID: "did:alice"}

	step := newStep()
	attach(t, step, block.Config{
		UUID: "step", BlockType: TypeStep, PolicyID: "p1", Env: env,
		Options: map[string]interface{}{"cyclic": true},
	})
	first := attach(t, newInformation(), block.Config{UUID: "s1", BlockType: TypeInformation, Parent: step, PolicyID: "p1", Env: env})
	attach(t, newInformation(), block.Config{UUID: "s2", BlockType: TypeInformation, Parent: step, PolicyID: "p1", Env: env})

	assert.NoError(t, step.ChangeStep(ctx, alice, nil, nil))
	assert.NoError(t, step.ChangeStep(ctx, alice, nil, nil))
	assert.True(t, first.IsActive(alice))
}

func TestStep_SnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	env, _, _ := newTestEnv(t)
	alice := model.User{ID: "did:alice"}

	step := newStep()
	attach(t, step, block.Config{UUID: "step", BlockType: TypeStep, PolicyID: "p1", Env: env})
	attach(t, newInformation(), block.Config{UUID: "s1", BlockType: TypeInformation, Parent: step, PolicyID: "p1", Env: env})
	attach(t, newInformation(), block.Config{UUID: "s2", BlockType: TypeInformation, Parent: step, PolicyID: "p1", Env: env})
	assert.NoError(t, step.ChangeStep(ctx, alice, nil, nil))

	rebuilt := newStep()
	attach(t, rebuilt, block.Config{UUID: "step", BlockType: TypeStep, PolicyID: "p1", Env: env})
	attach(t, newInformation(), block.Config{UUID: "s1", BlockType: TypeInformation, Parent: rebuilt, PolicyID: "p1", Env: env})
	rebuiltSecond := attach(t, newInformation(), block.Config{UUID: "s2", BlockType: TypeInformation, Parent: rebuilt, PolicyID: "p1", Env: env})
	assert.NoError(t, rebuilt.RestoreState(ctx))

	assert.True(t, rebuiltSecond.IsActive(alice))
}

func TestPolicyRoles_Election(t *testing.T) {
	ctx := context.Background()
	env, policies, notifier := newTestEnv(t)

	definition := model.NewPolicy("deforestation").
		WithOwner("did:owner").
		WithRoles("Issuer", "Auditor")
	assert.NoError(t, policies.Save(ctx, definition))

	roles := newPolicyRoles()
	attach(t, roles, block.Config{
		UUID: "roles", BlockType: TypePolicyRoles,
		Permissions: []model.Role{model.NoRole},
		PolicyID:    definition.ID, PolicyOwner: "did:owner", Env: env,
	})

	data, err := roles.GetData(ctx, model.User{ID: "did:alice"})
	assert.NoError(t, err)
	assert.ElementsMatch(t, []string{"Issuer", "Auditor"}, data.(map[string]interface{})["roles"])

	_, err = roles.SetData(ctx, model.User{ID: "did:alice"}, map[string]interface{}{"role": "Issuer"})
	assert.NoError(t, err)

	stored, err := policies.Load(ctx, definition.ID)
	assert.NoError(t, err)
	assert.Equal(t, model.Role("Issuer"), stored.RoleOf("did:alice"))
	assert.Equal(t, []string{"did:alice"}, notifier.updates)

	_, err = roles.SetData(ctx, model.User{ID: "did:bob"}, map[string]interface{}{"role": "Registrant"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = roles.SetData(ctx, model.User{ID: "did:bob"}, map[string]interface{}{})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestPagination_WindowDurability(t *testing.T) {
	ctx := context.Background()
	env, _, _ := newTestEnv(t)
	alice := model.User{ID: "did:alice"}

	addon := newPagination()
	attach(t, addon, block.Config{UUID: "pager", BlockType: TypePagination, PolicyID: "p1", Env: env})

	data, err := addon.GetData(ctx, alice)
	assert.NoError(t, err)
	assert.Equal(t, defaultItemsPerPage, data.(map[string]interface{})["itemsPerPage"])

	_, err = addon.SetData(ctx, alice, map[string]interface{}{"page": float64(3), "itemsPerPage": float64(25)})
	assert.NoError(t, err)

	rebuilt := newPagination()
	attach(t, rebuilt, block.Config{UUID: "pager", BlockType: TypePagination, PolicyID: "p1", Env: env})
	assert.NoError(t, rebuilt.RestoreState(ctx))

	data, err = rebuilt.GetData(ctx, alice)
	assert.NoError(t, err)
	assert.Equal(t, 3, data.(map[string]interface{})["page"])
	assert.Equal(t, 25, data.(map[string]interface{})["itemsPerPage"])
}

func TestRequestVC_SubmitSignsAndAdvances(t *testing.T) {
	ctx := context.Background()
	env, policies, _ := newTestEnv(t)
	alice := model.User{ID: "did:alice", Role: "Issuer"}

	definition := model.NewPolicy("mrv").WithOwner("did:owner").WithRoles("Issuer")
	definition.RegisterUser("did:alice", "Issuer")
	assert.NoError(t, policies.Save(ctx, definition))

	step := newStep()
	attach(t, step, block.Config{UUID: "step", BlockType: TypeStep, PolicyID: definition.ID, Env: env})
	request := newRequestVC()
	attach(t, request, block.Config{
		UUID: "request", BlockType: TypeRequestVC,
		Permissions: []model.Role{"Issuer"},
		Parent:      step, PolicyID: definition.ID, PolicyOwner: "did:owner", Env: env,
	})
	confirmation := attach(t, newInformation(), block.Config{UUID: "done", BlockType: TypeInformation, Parent: step, PolicyID: definition.ID, Env: env})

	result, err := request.SetData(ctx, alice, map[string]interface{}{
		"document": map[string]interface{}{"field0": "value"},
	})
	assert.NoError(t, err)

	state := result.(map[string]interface{})
	assert.Equal(t, "did:alice", state["owner"])
	valid, err := env.Credentials.Verify(ctx, state["token"].(string))
	assert.NoError(t, err)
	assert.True(t, valid)

	// submitting advanced the enclosing step
	assert.True(t, confirmation.IsActive(alice))
	assert.False(t, request.IsActive(alice))
}

func TestContainer_FiltersChildrenPerUser(t *testing.T) {
	ctx := context.Background()
	env, policies, _ := newTestEnv(t)

	definition := model.NewPolicy("visibility").WithOwner("did:owner").WithRoles("Issuer", "Auditor")
	definition.RegisterUser("did:alice", "Issuer")
	definition.RegisterUser("did:bob", "Auditor")
	assert.NoError(t, policies.Save(ctx, definition))

	container := newContainer()
	attach(t, container, block.Config{
		UUID: "root", BlockType: TypeContainer,
		Permissions: []model.Role{model.AnyRole},
		PolicyID:    definition.ID, PolicyOwner: "did:owner", Env: env,
	})
	attach(t, newInformation(), block.Config{
		UUID: "issuerOnly", BlockType: TypeInformation,
		Permissions: []model.Role{"Issuer"},
		Parent:      container, PolicyID: definition.ID, PolicyOwner: "did:owner", Env: env,
	})
	attach(t, newInformation(), block.Config{
		UUID: "everyone", BlockType: TypeInformation,
		Permissions: []model.Role{model.AnyRole},
		Parent:      container, PolicyID: definition.ID, PolicyOwner: "did:owner", Env: env,
	})

	data, err := container.GetData(ctx, model.User{ID: "did:bob"})
	assert.NoError(t, err)
	visible := data.(map[string]interface{})["blocks"].([]interface{})
	if assert.Len(t, visible, 1) {
		assert.Equal(t, "everyone", visible[0].(map[string]interface{})["id"])
	}

	data, err = container.GetData(ctx, model.User{ID: "did:alice"})
	assert.NoError(t, err)
	assert.Len(t, data.(map[string]interface{})["blocks"].([]interface{}), 2)
}
