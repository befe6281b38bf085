package guardian

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/viant/x"

	"github.com/samuraitruong/guardian/blocks"
	"github.com/samuraitruong/guardian/extension"
	"github.com/samuraitruong/guardian/internal/logger"
	"github.com/samuraitruong/guardian/model"
	"github.com/samuraitruong/guardian/runtime/block"
	"github.com/samuraitruong/guardian/runtime/tree"
	"github.com/samuraitruong/guardian/service/credentials"
	"github.com/samuraitruong/guardian/service/dao/blockstate"
	blockstatemem "github.com/samuraitruong/guardian/service/dao/blockstate/memory"
	"github.com/samuraitruong/guardian/service/dao/policy"
	policymem "github.com/samuraitruong/guardian/service/dao/policy/memory"
	"github.com/samuraitruong/guardian/service/event"
	"github.com/samuraitruong/guardian/service/identity"
	"github.com/samuraitruong/guardian/service/ledger"
	ledgermem "github.com/samuraitruong/guardian/service/ledger/memory"
	"github.com/samuraitruong/guardian/service/messaging"
	memqueue "github.com/samuraitruong/guardian/service/messaging/memory"
	"github.com/samuraitruong/guardian/service/schema"
	schemamem "github.com/samuraitruong/guardian/service/schema/memory"
	"github.com/samuraitruong/guardian/service/storage"
	storagemem "github.com/samuraitruong/guardian/service/storage/memory"
	"github.com/samuraitruong/guardian/tracing"
)

// Service is the policy block-tree engine: policy lifecycle, live trees and
// the block data endpoints.
type Service struct {
	config *Config

	registry       *extension.Blocks
	extensionTypes []*x.Type

	policies    policy.Service
	states      blockstate.Store
	ledger      ledger.Service
	storage     storage.Service
	schemas     schema.Service
	credentials credentials.Service
	identities  identity.Resolver

	updateQueue messaging.Queue[event.Event[event.BlockUpdate]]
	errorQueue  messaging.Queue[event.Event[event.BlockError]]
	notifier    *event.QueueNotifier

	builder *tree.Builder
	trees   *tree.Store
	log     zerolog.Logger
}

// New creates an engine with the default configuration.
func New(options ...Option) *Service {
	return NewFromConfig(DefaultConfig(), options...)
}

// NewFromConfig creates an engine from config; options override the default
// in-process collaborators.
func NewFromConfig(config *Config, options ...Option) *Service {
	if config == nil {
		config = DefaultConfig()
	}
	s := &Service{config: config, log: logger.New("engine")}
	for _, option := range options {
		option(s)
	}
	s.init()
	return s
}

func (s *Service) init() {
	if s.policies == nil {
		s.policies = policymem.New()
	}
	if s.states == nil {
		s.states = blockstatemem.New()
	}
	if s.ledger == nil {
		s.ledger = ledgermem.New()
	}
	if s.storage == nil {
		s.storage = storagemem.New()
	}
	if s.schemas == nil {
		s.schemas = schemamem.New()
	}
	if s.credentials == nil {
		s.credentials = credentials.NewUnsigned()
	}
	if s.identities == nil {
		s.identities = identity.NewStaticResolver()
	}
	queueConfig := memqueue.Config{
		MaxRetries:  s.config.Messaging.MaxRetries,
		RetryDelay:  s.config.Messaging.RetryDelay(),
		QueueBuffer: s.config.Messaging.QueueBuffer,
	}
	if s.updateQueue == nil {
		s.updateQueue = memqueue.NewQueue[event.Event[event.BlockUpdate]](queueConfig)
	}
	if s.errorQueue == nil {
		s.errorQueue = memqueue.NewQueue[event.Event[event.BlockError]](queueConfig)
	}
	s.notifier = event.NewQueueNotifier(s.updateQueue, s.errorQueue)

	if s.registry == nil {
		s.registry = extension.NewBlocks(s.extensionTypes...)
		blocks.RegisterDefaults(s.registry)
	} else {
		for _, t := range s.extensionTypes {
			s.registry.Types().Register(t)
		}
	}
	env := &block.Env{
		Policies:    s.policies,
		States:      s.states,
		Notifier:    s.notifier,
		Credentials: s.credentials,
		Logger:      s.log,
	}
	s.builder = tree.NewBuilder(s.registry, env)
	s.trees = tree.NewStore()

	if s.config.Tracing.Enabled {
		if err := tracing.Init(s.config.Name, s.config.Version, s.config.Tracing.OutputFile); err != nil {
			s.log.Warn().Err(err).Msg("tracing disabled")
		}
	}
}

// Policies exposes the policy definition store.
func (s *Service) Policies() policy.Service { return s.policies }

// Registry exposes the block type registry.
func (s *Service) Registry() *extension.Blocks { return s.registry }

// Identities exposes the token resolver for transports.
func (s *Service) Identities() identity.Resolver { return s.identities }

// Notifier exposes the notification fan-out for transports.
func (s *Service) Notifier() *event.QueueNotifier { return s.notifier }

// Trees exposes the live tree registry.
func (s *Service) Trees() *tree.Store { return s.trees }

// RegisterPolicy builds the policy's live tree and installs it, replacing
// and destroying any previous one.
func (s *Service) RegisterPolicy(ctx context.Context, policyID string) error {
	ctx, span := tracing.StartSpan(ctx, "engine.registerPolicy")
	var err error
	defer func() { tracing.EndSpan(span, err) }()

	record, err := s.loadPolicy(ctx, policyID)
	if err != nil {
		return err
	}
	root, err := s.builder.Build(ctx, record, false)
	if err != nil {
		return err
	}
	if retired := s.trees.Replace(policyID, root); retired != nil {
		retired.Destroy()
	}
	s.log.Info().Str("policyId", policyID).Str("name", record.Name).Msg("policy registered")
	return nil
}

// UnregisterPolicy evicts and destroys the policy's live tree.
func (s *Service) UnregisterPolicy(policyID string) {
	if retired := s.trees.Evict(policyID); retired != nil {
		retired.Destroy()
		s.log.Info().Str("policyId", policyID).Msg("policy unregistered")
	}
}

// GetBlockData reads a block's user-facing data after the visibility and
// permission gates.
func (s *Service) GetBlockData(ctx context.Context, user model.User, policyID, blockID string) (interface{}, error) {
	target, err := s.resolveBlock(ctx, user, policyID, blockID)
	if err != nil {
		return nil, err
	}
	return target.GetData(ctx, user)
}

// SetBlockData applies a user action to a block after the visibility and
// permission gates. A failing action is reported to the acting user and
// returned.
func (s *Service) SetBlockData(ctx context.Context, user model.User, policyID, blockID string, data interface{}) (interface{}, error) {
	ctx, span := tracing.StartSpan(ctx, "engine.setBlockData")
	target, err := s.resolveBlock(ctx, user, policyID, blockID)
	if err != nil {
		tracing.EndSpan(span, err)
		return nil, err
	}
	result, err := target.SetData(ctx, user, data)
	if err != nil {
		target.Base().ReportError(user, err.Error())
		tracing.EndSpan(span, err)
		return nil, fmt.Errorf("block %v action failed: %w", blockID, err)
	}
	tracing.EndSpan(span, nil)
	return result, nil
}

// GetBlockByTag resolves a block id by its tag within a policy.
func (s *Service) GetBlockByTag(policyID, tag string) (string, error) {
	target, err := s.trees.BlockByTag(policyID, tag)
	if err != nil {
		return "", err
	}
	return target.UUID(), nil
}

// GetBlockParents returns a block's ancestor chain ids, nearest first.
func (s *Service) GetBlockParents(blockID string) ([]string, error) {
	parents, err := s.trees.Parents(blockID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(parents))
	for _, parent := range parents {
		ids = append(ids, parent.UUID())
	}
	return ids, nil
}

func (s *Service) resolveBlock(ctx context.Context, user model.User, policyID, blockID string) (block.Block, error) {
	target, err := s.trees.BlockByUUID(blockID)
	if err != nil {
		return nil, err
	}
	if target.PolicyID() != policyID {
		return nil, tree.ErrBlockNotFound
	}
	record, err := s.loadPolicy(ctx, policyID)
	if err != nil {
		return nil, err
	}
	role := record.RoleOf(user.ID)
	if !target.IsActive(user) || !target.HasPermission(role, user) {
		return nil, ErrPermissionDenied
	}
	return target, nil
}

func (s *Service) loadPolicy(ctx context.Context, policyID string) (*model.Policy, error) {
	record, err := s.policies.Load(ctx, policyID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPolicyNotFound, policyID)
	}
	return record, nil
}
