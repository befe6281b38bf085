package transfer

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/samuraitruong/guardian/model"
	ledgermem "github.com/samuraitruong/guardian/service/ledger/memory"
)

func archivedPolicy() *model.Policy {
	definition := model.NewPolicy("irec").
		WithOwner("did:exporter").
		WithRoles("Issuer")
	definition.ID = "policy-1"
	definition.Version = "1.2.0"
	definition.Status = model.StatusPublish
	definition.Config = &model.BlockDescriptor{
		ID:        "root",
		BlockType: "interfaceContainerBlock",
		Tag:       "main",
		Children: []*model.BlockDescriptor{
			{ID: "info", BlockType: "informationBlock", Tag: "info"},
		},
	}
	definition.RegisterUser("did:somebody", "Issuer")
	return definition
}

func TestPackParseRoundTrip(t *testing.T) {
	original := archivedPolicy()
	archive, err := Pack(original)
	assert.NoError(t, err)

	parsed, err := Parse(archive)
	assert.NoError(t, err)
	assert.Equal(t, original.Name, parsed.Name)
	assert.Equal(t, original.Version, parsed.Version)
	assert.Equal(t, "root", parsed.Config.ID)
	assert.Len(t, parsed.Config.Children, 1)
}

func TestParse_RejectsGarbage(t *testing.T) {
	_, err := Parse([]byte("not a zip"))
	assert.ErrorIs(t, err, ErrInvalidArchive)
}

func TestLocalize(t *testing.T) {
	original := archivedPolicy()
	imported := Localize(original, model.User{ID: "did:importer"})

	assert.Equal(t, model.StatusDraft, imported.Status)
	assert.Equal(t, "did:importer", imported.Owner)
	assert.Equal(t, "did:importer", imported.Creator)
	assert.Empty(t, imported.Version)
	assert.Empty(t, imported.TopicID)
	assert.Empty(t, imported.RegisteredUsers)
	assert.NotEqual(t, original.UUID, imported.UUID)
	assert.NotEqual(t, "root", imported.Config.ID)
	assert.NotEqual(t, "info", imported.Config.Children[0].ID)

	// the source record is untouched
	assert.Equal(t, model.StatusPublish, original.Status)
	assert.Equal(t, "root", original.Config.ID)
}

func TestInspect_DiscoversNewerVersions(t *testing.T) {
	ctx := context.Background()
	log := ledgermem.New()

	topic, err := log.NewTopic(ctx, "policy series")
	assert.NoError(t, err)

	original := archivedPolicy()
	original.TopicID = topic
	for _, version := range []string{"1.0.0", "1.2.0", "1.3.0", "2.0.0"} {
		payload, err := json.Marshal(&Anchor{UUID: original.UUID, Version: version})
		assert.NoError(t, err)
		_, err = log.Publish(ctx, topic, payload)
		assert.NoError(t, err)
	}

	archive, err := Pack(original)
	assert.NoError(t, err)

	preview, err := Inspect(ctx, archive, log)
	assert.NoError(t, err)
	assert.Equal(t, []string{"1.3.0", "2.0.0"}, preview.NewerVersions)
}

func TestInspect_NoTopic(t *testing.T) {
	archive, err := Pack(archivedPolicy())
	assert.NoError(t, err)

	preview, err := Inspect(context.Background(), archive, nil)
	assert.NoError(t, err)
	assert.Empty(t, preview.NewerVersions)
}
