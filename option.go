package guardian

import (
	"github.com/viant/x"

	"github.com/samuraitruong/guardian/extension"
	"github.com/samuraitruong/guardian/service/credentials"
	"github.com/samuraitruong/guardian/service/dao/blockstate"
	"github.com/samuraitruong/guardian/service/dao/policy"
	"github.com/samuraitruong/guardian/service/event"
	"github.com/samuraitruong/guardian/service/identity"
	"github.com/samuraitruong/guardian/service/ledger"
	"github.com/samuraitruong/guardian/service/messaging"
	"github.com/samuraitruong/guardian/service/schema"
	"github.com/samuraitruong/guardian/service/storage"
)

// Option customises engine assembly.
type Option func(s *Service)

// WithPolicyService sets the policy definition store.
func WithPolicyService(svc policy.Service) Option {
	return func(s *Service) { s.policies = svc }
}

// WithBlockStateStore sets the durable block state store.
func WithBlockStateStore(store blockstate.Store) Option {
	return func(s *Service) { s.states = store }
}

// WithLedger sets the ledger collaborator.
func WithLedger(svc ledger.Service) Option {
	return func(s *Service) { s.ledger = svc }
}

// WithStorage sets the content store.
func WithStorage(svc storage.Service) Option {
	return func(s *Service) { s.storage = svc }
}

// WithSchemaService sets the schema collaborator.
func WithSchemaService(svc schema.Service) Option {
	return func(s *Service) { s.schemas = svc }
}

// WithCredentials sets the credential signing service.
func WithCredentials(svc credentials.Service) Option {
	return func(s *Service) { s.credentials = svc }
}

// WithIdentityResolver sets the token resolver used by transports.
func WithIdentityResolver(resolver identity.Resolver) Option {
	return func(s *Service) { s.identities = resolver }
}

// WithBlockRegistry sets a pre-populated block type registry.
func WithBlockRegistry(registry *extension.Blocks) Option {
	return func(s *Service) { s.registry = registry }
}

// WithExtensionTypes registers go types for block options and snapshots.
func WithExtensionTypes(types ...*x.Type) Option {
	return func(s *Service) { s.extensionTypes = types }
}

// WithUpdateQueue sets the queue update notifications fan out onto.
func WithUpdateQueue(queue messaging.Queue[event.Event[event.BlockUpdate]]) Option {
	return func(s *Service) { s.updateQueue = queue }
}

// WithErrorQueue sets the queue error notifications fan out onto.
func WithErrorQueue(queue messaging.Queue[event.Event[event.BlockError]]) Option {
	return func(s *Service) { s.errorQueue = queue }
}
