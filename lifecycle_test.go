package guardian

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/samuraitruong/guardian/blocks"
	"github.com/samuraitruong/guardian/model"
	"github.com/samuraitruong/guardian/service/ledger"
	ledgermem "github.com/samuraitruong/guardian/service/ledger/memory"
	"github.com/samuraitruong/guardian/service/schema"
	schemamem "github.com/samuraitruong/guardian/service/schema/memory"
	storagemem "github.com/samuraitruong/guardian/service/storage/memory"
	"github.com/samuraitruong/guardian/transfer"
)

var (
	owner    = model.User{ID: "did:owner"}
	stranger = model.User{ID: "did:stranger"}
)

func draftDefinition() *model.Policy {
	definition := model.NewPolicy("irec").WithRoles("Issuer")
	definition.Config = &model.BlockDescriptor{
		ID:        "root",
		BlockType: blocks.TypeContainer,
		Tag:       "main",
		Children: []*model.BlockDescriptor{
			{
				ID: "roles", BlockType: blocks.TypePolicyRoles, Tag: "choose_role",
				Permissions: []model.Role{model.NoRole},
			},
			{
				ID: "request", BlockType: blocks.TypeRequestVC, Tag: "request",
				Permissions: []model.Role{"Issuer"},
			},
		},
	}
	return definition
}

func TestCreatePolicy(t *testing.T) {
	ctx := context.Background()
	engine := New()

	record, err := engine.CreatePolicy(ctx, draftDefinition(), owner)
	assert.NoError(t, err)
	assert.NotEmpty(t, record.ID)
	assert.NotEmpty(t, record.UUID)
	assert.Equal(t, model.StatusDraft, record.Status)
	assert.Equal(t, owner.ID, record.Owner)
	assert.Equal(t, owner.ID, record.Creator)
}

func TestSavePolicy_Guards(t *testing.T) {
	ctx := context.Background()
	engine := New()

	record, err := engine.CreatePolicy(ctx, draftDefinition(), owner)
	assert.NoError(t, err)

	updated := record.Clone().WithDescription("changed")
	_, err = engine.SavePolicy(ctx, updated, stranger)
	assert.ErrorIs(t, err, ErrInvalidOwner)

	saved, err := engine.SavePolicy(ctx, updated, owner)
	assert.NoError(t, err)
	assert.Equal(t, "changed", saved.Description)

	// caller-supplied publish metadata never survives a save
	tampered := record.Clone()
	tampered.Version = "9.9.9"
	tampered.MessageID = "msg-1"
	saved, err = engine.SavePolicy(ctx, tampered, owner)
	assert.NoError(t, err)
	assert.Empty(t, saved.Version)
	assert.Empty(t, saved.MessageID)

	_, _, err = engine.PublishPolicy(ctx, record.ID, "1.0.0", owner)
	assert.NoError(t, err)

	_, err = engine.SavePolicy(ctx, updated, owner)
	assert.ErrorIs(t, err, ErrPolicyPublished)

	missing := record.Clone()
	missing.ID = "no-such-policy"
	_, err = engine.SavePolicy(ctx, missing, owner)
	assert.ErrorIs(t, err, ErrPolicyNotFound)
}

func TestPublishPolicy_Guards(t *testing.T) {
	ctx := context.Background()
	engine := New()

	_, _, err := engine.PublishPolicy(ctx, "no-such-policy", "1.0.0", owner)
	assert.ErrorIs(t, err, ErrPolicyNotFound)

	record, err := engine.CreatePolicy(ctx, draftDefinition(), owner)
	assert.NoError(t, err)

	_, _, err = engine.PublishPolicy(ctx, record.ID, "1.0.0", stranger)
	assert.ErrorIs(t, err, ErrInvalidOwner)

	_, _, err = engine.PublishPolicy(ctx, record.ID, "first", owner)
	assert.ErrorIs(t, err, ErrInvalidVersion)

	record.PreviousVersion = "2.0.0"
	assert.NoError(t, engine.Policies().Save(ctx, record))
	_, _, err = engine.PublishPolicy(ctx, record.ID, "1.5.0", owner)
	assert.ErrorIs(t, err, ErrInvalidVersion)
	record.PreviousVersion = ""
	assert.NoError(t, engine.Policies().Save(ctx, record))

	// a structurally broken tree stops publishing with findings
	broken, err := engine.CreatePolicy(ctx, draftDefinition(), owner)
	assert.NoError(t, err)
	broken.Config.Children[1].Tag = "choose_role"
	assert.NoError(t, engine.Policies().Save(ctx, broken))
	_, report, err := engine.PublishPolicy(ctx, broken.ID, "1.0.0", owner)
	assert.ErrorIs(t, err, ErrInvalidDefinition)
	if assert.NotNil(t, report) {
		assert.False(t, report.IsValid())
	}

	_, _, err = engine.PublishPolicy(ctx, record.ID, "1.0.0", owner)
	assert.NoError(t, err)

	_, _, err = engine.PublishPolicy(ctx, record.ID, "2.0.0", owner)
	assert.ErrorIs(t, err, ErrPolicyPublished)

	// a sibling draft of the same series cannot reuse the version
	sibling, err := engine.CreatePolicy(ctx, draftDefinition(), owner)
	assert.NoError(t, err)
	sibling.UUID = record.UUID
	assert.NoError(t, engine.Policies().Save(ctx, sibling))
	_, _, err = engine.PublishPolicy(ctx, sibling.ID, "1.0.0", owner)
	assert.ErrorIs(t, err, ErrVersionAlreadyPublished)
}

// flakyLedger wraps the in-memory ledger and fails Publish on demand.
type flakyLedger struct {
	ledger.Service
	failPublish bool
}

func (l *flakyLedger) Publish(ctx context.Context, topic string, payload []byte) (string, error) {
	if l.failPublish {
		return "", assert.AnError
	}
	return l.Service.Publish(ctx, topic, payload)
}

func TestPublishPolicy_LedgerFailureLeavesDraftUntouched(t *testing.T) {
	ctx := context.Background()
	broken := &flakyLedger{Service: ledgermem.New(), failPublish: true}
	engine := New(WithLedger(broken))

	record, err := engine.CreatePolicy(ctx, draftDefinition(), owner)
	assert.NoError(t, err)
	draftRootID := record.Config.ID

	_, _, err = engine.PublishPolicy(ctx, record.ID, "1.0.0", owner)
	assert.Error(t, err)

	// every publish-side mutation must be invisible in the store
	stored, err := engine.Policies().Load(ctx, record.ID)
	assert.NoError(t, err)
	assert.Equal(t, model.StatusDraft, stored.Status)
	assert.Empty(t, stored.Version)
	assert.Empty(t, stored.TopicID)
	assert.Empty(t, stored.MessageID)
	assert.Equal(t, draftRootID, stored.Config.ID)
	_, err = engine.Trees().Get(record.ID)
	assert.Error(t, err)

	// the same draft publishes cleanly once the ledger recovers
	broken.failPublish = false
	published, _, err := engine.PublishPolicy(ctx, record.ID, "1.0.0", owner)
	assert.NoError(t, err)
	assert.Equal(t, model.StatusPublish, published.Status)
	assert.NotEmpty(t, published.MessageID)
}

func TestPublishPolicy_AnchorsAndRegisters(t *testing.T) {
	ctx := context.Background()
	store := storagemem.New()
	engine := New(WithStorage(store))

	record, err := engine.CreatePolicy(ctx, draftDefinition(), owner)
	assert.NoError(t, err)
	draftRootID := record.Config.ID

	published, report, err := engine.PublishPolicy(ctx, record.ID, "1.0.0", owner)
	assert.NoError(t, err)
	assert.True(t, report.IsValid())
	assert.Equal(t, model.StatusPublish, published.Status)
	assert.Equal(t, "1.0.0", published.Version)
	assert.NotEmpty(t, published.TopicID)
	assert.NotEmpty(t, published.MessageID)
	assert.NotEqual(t, draftRootID, published.Config.ID)

	// the live tree is reachable under regenerated ids
	_, err = engine.Trees().Get(record.ID)
	assert.NoError(t, err)
	rootID, err := engine.GetBlockByTag(record.ID, "main")
	assert.NoError(t, err)
	assert.Equal(t, published.Config.ID, rootID)

	// the ledger anchor resolves to the stored archive
	message, err := engine.ledger.Read(ctx, published.MessageID)
	assert.NoError(t, err)
	anchored := struct {
		transfer.Anchor
		Proof string `json:"proof"`
	}{}
	assert.NoError(t, json.Unmarshal(message.Payload, &anchored))
	assert.Equal(t, published.UUID, anchored.UUID)
	assert.Equal(t, "1.0.0", anchored.Version)
	assert.NotEmpty(t, anchored.Proof)

	valid, err := engine.credentials.Verify(ctx, anchored.Proof)
	assert.NoError(t, err)
	assert.True(t, valid)

	archive, err := store.Get(ctx, anchored.ContentID)
	assert.NoError(t, err)
	archived, err := transfer.Parse(archive)
	assert.NoError(t, err)
	assert.Equal(t, "1.0.0", archived.Version)
}

func TestPublishPolicy_PublishesReferencedSchemas(t *testing.T) {
	ctx := context.Background()
	schemas := schemamem.New()
	schemas.Add(&schema.Schema{IRI: "#GHGReport", Status: schema.StatusDraft})
	engine := New(WithSchemaService(schemas))

	definition := draftDefinition()
	definition.Config.Children[1].Options = map[string]interface{}{"schema": "#GHGReport"}
	record, err := engine.CreatePolicy(ctx, definition, owner)
	assert.NoError(t, err)

	published, _, err := engine.PublishPolicy(ctx, record.ID, "1.0.0", owner)
	assert.NoError(t, err)

	rewritten := published.Config.Children[1].Options["schema"].(string)
	assert.Equal(t, "#GHGReport@1.0.0", rewritten)

	publishedSchema, err := schemas.ByIRI(ctx, rewritten)
	assert.NoError(t, err)
	assert.Equal(t, schema.StatusPublished, publishedSchema.Status)
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	engine := New()

	record, err := engine.CreatePolicy(ctx, draftDefinition(), owner)
	assert.NoError(t, err)
	published, _, err := engine.PublishPolicy(ctx, record.ID, "1.0.0", owner)
	assert.NoError(t, err)

	archive, err := engine.ExportPolicy(ctx, record.ID)
	assert.NoError(t, err)

	anchor, err := engine.ExportPolicyMessage(ctx, record.ID)
	assert.NoError(t, err)
	assert.Equal(t, published.MessageID, anchor.ID)

	preview, err := engine.PreviewPolicy(ctx, archive)
	assert.NoError(t, err)
	assert.Empty(t, preview.NewerVersions)

	imported, err := engine.ImportPolicy(ctx, archive, stranger)
	assert.NoError(t, err)
	assert.Equal(t, model.StatusDraft, imported.Status)
	assert.Equal(t, stranger.ID, imported.Owner)
	assert.Empty(t, imported.Version)
	assert.NotEqual(t, published.UUID, imported.UUID)
	assert.NotEqual(t, published.Config.ID, imported.Config.ID)
}
