package guardian

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/samuraitruong/guardian/model"
	"github.com/samuraitruong/guardian/runtime/validation"
	"github.com/samuraitruong/guardian/service/ledger"
	"github.com/samuraitruong/guardian/service/schema"
	"github.com/samuraitruong/guardian/tracing"
	"github.com/samuraitruong/guardian/transfer"
)

// CreatePolicy persists a new draft owned by the creating user.
func (s *Service) CreatePolicy(ctx context.Context, definition *model.Policy, user model.User) (*model.Policy, error) {
	if definition == nil {
		return nil, ErrInvalidDefinition
	}
	record := definition.Clone()
	record.ID = ""
	record.Status = model.StatusDraft
	record.Creator = user.ID
	record.Owner = user.ID
	if err := s.policies.Save(ctx, record); err != nil {
		return nil, err
	}
	s.log.Info().Str("policyId", record.ID).Str("owner", user.ID).Msg("policy created")
	return record, nil
}

// SavePolicy overwrites a draft definition. Only the creator may save;
// published definitions are immutable. Changing the tree resets registered
// users and, when the policy runs, rebuilds its live tree.
func (s *Service) SavePolicy(ctx context.Context, updated *model.Policy, user model.User) (*model.Policy, error) {
	if updated == nil {
		return nil, ErrInvalidDefinition
	}
	existing, err := s.loadPolicy(ctx, updated.ID)
	if err != nil {
		return nil, err
	}
	if existing.Creator != user.ID {
		return nil, ErrInvalidOwner
	}
	if existing.IsPublished() {
		return nil, ErrPolicyPublished
	}
	record := updated.Clone()
	record.UUID = existing.UUID
	record.Creator = existing.Creator
	record.Owner = existing.Owner
	record.Status = existing.Status
	record.TopicID = existing.TopicID
	record.CreatedAt = existing.CreatedAt
	record.Version = ""
	record.MessageID = ""
	record.RegisteredUsers = map[string]model.Role{}
	if err = s.policies.Save(ctx, record); err != nil {
		return nil, err
	}
	if _, treeErr := s.trees.Get(record.ID); treeErr == nil {
		if err = s.RegisterPolicy(ctx, record.ID); err != nil {
			return nil, err
		}
	}
	return record, nil
}

// ValidatePolicy runs structural validation over a definition without
// touching live trees or durable state.
func (s *Service) ValidatePolicy(ctx context.Context, definition *model.Policy) *validation.Report {
	return s.builder.Validate(ctx, definition)
}

// PublishPolicy moves a draft to PUBLISH under the given version: the guards
// run in order (version format, monotonicity, version uniqueness, structural
// validity), referenced draft schemas are published first, block ids are
// regenerated, the archive is stored and anchored on the ledger, and the
// live tree is rebuilt. The returned report is non-nil when publishing
// stopped on validation findings.
func (s *Service) PublishPolicy(ctx context.Context, policyID, version string, user model.User) (*model.Policy, *validation.Report, error) {
	ctx, span := tracing.StartSpan(ctx, "engine.publishPolicy")
	record, report, err := s.publishPolicy(ctx, policyID, version, user)
	tracing.EndSpan(span, err)
	return record, report, err
}

// collaboratorCtx bounds outbound ledger, storage and schema calls.
func (s *Service) collaboratorCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.config.CollaboratorTimeoutMs <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, time.Duration(s.config.CollaboratorTimeoutMs)*time.Millisecond)
}

func (s *Service) publishPolicy(ctx context.Context, policyID, version string, user model.User) (*model.Policy, *validation.Report, error) {
	record, err := s.loadPolicy(ctx, policyID)
	if err != nil {
		return nil, nil, err
	}
	if record.Owner != user.ID {
		return nil, nil, ErrInvalidOwner
	}
	if record.IsPublished() {
		return nil, nil, ErrPolicyPublished
	}
	if !model.CheckVersionFormat(version) {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidVersion, version)
	}
	if model.CompareVersions(version, record.PreviousVersion) <= 0 {
		return nil, nil, fmt.Errorf("%w: %v is not greater than %v", ErrInvalidVersion, version, record.PreviousVersion)
	}
	count, err := s.policies.CountVersions(ctx, record.UUID, version)
	if err != nil {
		return nil, nil, err
	}
	if count > 0 {
		return nil, nil, fmt.Errorf("%w: %v", ErrVersionAlreadyPublished, version)
	}
	report := s.builder.Validate(ctx, record)
	if !report.IsValid() {
		return record, report, ErrInvalidDefinition
	}

	// all mutations below run on a private copy; the stored draft stays
	// intact until the final save lands
	record = record.Clone()

	collabCtx, cancel := s.collaboratorCtx(ctx)
	defer cancel()

	if err = s.publishSchemas(collabCtx, record); err != nil {
		return nil, nil, err
	}
	record.Config.RegenerateIDs()

	if record.TopicID == "" {
		topic, err := s.ledger.NewTopic(collabCtx, record.Name)
		if err != nil {
			return nil, nil, err
		}
		record.TopicID = topic
	}
	record.Version = version
	record.Status = model.StatusPublish

	archive, err := transfer.Pack(record)
	if err != nil {
		return nil, nil, err
	}
	contentID, err := s.storage.Put(collabCtx, archive)
	if err != nil {
		return nil, nil, err
	}
	anchor := &transfer.Anchor{
		UUID:      record.UUID,
		Name:      record.Name,
		Version:   version,
		Owner:     record.Owner,
		ContentID: contentID,
	}
	proof, err := s.credentials.Sign(ctx, anchor)
	if err != nil {
		return nil, nil, err
	}
	payload, err := json.Marshal(struct {
		*transfer.Anchor
		Proof string `json:"proof"`
	}{Anchor: anchor, Proof: proof})
	if err != nil {
		return nil, nil, err
	}
	messageID, err := s.ledger.Publish(collabCtx, record.TopicID, payload)
	if err != nil {
		return nil, nil, err
	}
	record.MessageID = messageID

	if err = s.policies.Save(ctx, record); err != nil {
		return nil, nil, err
	}
	if err = s.RegisterPolicy(ctx, record.ID); err != nil {
		return nil, nil, err
	}
	s.log.Info().Str("policyId", record.ID).Str("version", version).Str("messageId", messageID).Msg("policy published")
	return record, report, nil
}

// publishSchemas publishes every draft schema the tree references and
// rewrites the references to the published IRIs.
func (s *Service) publishSchemas(ctx context.Context, record *model.Policy) error {
	for _, iri := range record.Config.SchemaRefs() {
		referenced, err := s.schemas.ByIRI(ctx, iri)
		if err != nil {
			return fmt.Errorf("schema %v: %w", iri, err)
		}
		if referenced.Status == schema.StatusPublished {
			continue
		}
		bumped, err := s.schemas.IncrementVersion(ctx, iri, record.Owner)
		if err != nil {
			return err
		}
		published, err := s.schemas.Publish(ctx, bumped.ID, bumped.Version, record.Owner)
		if err != nil {
			return err
		}
		record.Config.ReplaceSchemaRef(iri, published.IRI)
	}
	return nil
}

// ExportPolicy packs a policy into a portable archive.
func (s *Service) ExportPolicy(ctx context.Context, policyID string) ([]byte, error) {
	record, err := s.loadPolicy(ctx, policyID)
	if err != nil {
		return nil, err
	}
	return transfer.Pack(record)
}

// ExportPolicyMessage returns the ledger anchor of a published policy, the
// portable reference other installations import from.
func (s *Service) ExportPolicyMessage(ctx context.Context, policyID string) (*ledger.Message, error) {
	record, err := s.loadPolicy(ctx, policyID)
	if err != nil {
		return nil, err
	}
	if !record.IsPublished() || record.MessageID == "" {
		return nil, fmt.Errorf("%w: policy %v has no anchor", ErrInvalidDefinition, policyID)
	}
	return s.ledger.Read(ctx, record.MessageID)
}

// ImportPolicy unpacks an archive into a fresh local draft owned by the
// importing user.
func (s *Service) ImportPolicy(ctx context.Context, archive []byte, user model.User) (*model.Policy, error) {
	parsed, err := transfer.Parse(archive)
	if err != nil {
		return nil, err
	}
	record := transfer.Localize(parsed, user)
	if err = s.policies.Save(ctx, record); err != nil {
		return nil, err
	}
	s.log.Info().Str("policyId", record.ID).Str("owner", user.ID).Msg("policy imported")
	return record, nil
}

// PreviewPolicy describes an archive before import, listing newer versions
// of the same series found on the ledger.
func (s *Service) PreviewPolicy(ctx context.Context, archive []byte) (*transfer.Preview, error) {
	return transfer.Inspect(ctx, archive, s.ledger)
}
