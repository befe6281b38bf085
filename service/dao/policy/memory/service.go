// Package memory provides the in-memory policy definition store used by the
// engine by default and by tests.
package memory

import (
	"context"

	"github.com/samuraitruong/guardian/internal/idgen"
	"github.com/samuraitruong/guardian/model"
	"github.com/samuraitruong/guardian/service/dao"
	"github.com/samuraitruong/guardian/service/dao/policy"
	"github.com/samuraitruong/guardian/service/dao/store"
)

// Service is an in-memory policy.Service.
type Service struct {
	*store.MemoryStore[string, model.Policy]
}

// New creates a new in-memory policy store.
func New() *Service {
	memory := store.NewMemoryStore[string, model.Policy](func(p *model.Policy) string {
		return p.ID
	})
	memory.WithMatcher(func(p *model.Policy, parameter *dao.Parameter) bool {
		switch parameter.Name {
		case "owner":
			return p.Owner == parameter.Value
		case "uuid":
			return p.UUID == parameter.Value
		case "version":
			return p.Version == parameter.Value
		}
		return false
	})
	return &Service{MemoryStore: memory}
}

// Save assigns an id to new records and installs record defaults before
// delegating to the generic store.
func (s *Service) Save(ctx context.Context, p *model.Policy) error {
	if p == nil {
		return dao.ErrNilEntity
	}
	if p.ID == "" {
		p.ID = idgen.New()
	}
	p.EnsureDefaults()
	return s.MemoryStore.Save(ctx, p)
}

// CountVersions returns how many definitions of the series carry the version.
func (s *Service) CountVersions(ctx context.Context, uuid, version string) (int, error) {
	matched, err := s.List(ctx, dao.NewParameter("uuid", uuid), dao.NewParameter("version", version))
	if err != nil {
		return 0, err
	}
	return len(matched), nil
}

// ListByOwner returns every definition owned by the given identity.
func (s *Service) ListByOwner(ctx context.Context, owner string) ([]*model.Policy, error) {
	return s.List(ctx, dao.NewParameter("owner", owner))
}

var _ policy.Service = (*Service)(nil)
