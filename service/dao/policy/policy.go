// Package policy defines the persistence contract for policy definitions.
package policy

import (
	"context"

	"github.com/samuraitruong/guardian/model"
	"github.com/samuraitruong/guardian/service/dao"
)

// Service stores policy definitions and answers the queries the lifecycle
// coordinator needs beyond plain key access.
type Service interface {
	dao.Service[string, model.Policy]

	// CountVersions returns how many definitions of the given series (uuid)
	// already carry the given version. Publish refuses to proceed when > 0.
	CountVersions(ctx context.Context, uuid, version string) (int, error)

	// ListByOwner returns every definition owned by the given identity.
	ListByOwner(ctx context.Context, owner string) ([]*model.Policy, error)
}
