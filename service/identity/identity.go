// Package identity defines the authentication collaborator contract: the
// transport layer hands the engine a token, the resolver turns it into a
// short user identity.
package identity

import (
	"context"
	"errors"
	"sync"

	"github.com/samuraitruong/guardian/model"
)

// ErrUnknownToken is returned for tokens the resolver cannot map to a user.
var ErrUnknownToken = errors.New("identity: unknown token")

// Resolver resolves an opaque user token into an identity.
type Resolver interface {
	Resolve(ctx context.Context, token string) (*model.User, error)
}

// StaticResolver is an in-memory Resolver with a fixed token table, used by
// default wiring and tests.
type StaticResolver struct {
	mu    sync.RWMutex
	users map[string]model.User
}

// NewStaticResolver creates an empty resolver.
func NewStaticResolver() *StaticResolver {
	return &StaticResolver{users: map[string]model.User{}}
}

// Register maps a token to a user.
func (r *StaticResolver) Register(token string, user model.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[token] = user
}

// Resolve returns the user registered under token.
func (r *StaticResolver) Resolve(_ context.Context, token string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[token]
	if !ok {
		return nil, ErrUnknownToken
	}
	return &user, nil
}

var _ Resolver = (*StaticResolver)(nil)
