package model

import (
	"time"

	"github.com/samuraitruong/guardian/internal/clock"
	"github.com/samuraitruong/guardian/internal/idgen"
)

// Policy lifecycle states. PUBLISH is terminal for a given version; a new
// version starts over at DRAFT.
const (
	StatusDraft   = "DRAFT"
	StatusPublish = "PUBLISH"
)

// Policy is the persisted definition of a multi-party workflow: metadata, a
// declarative block tree and the set of users registered on the running
// instance.
type Policy struct {
	// ID identifies this record; UUID identifies the policy series across
	// versions (every published version shares the UUID).
	ID   string `json:"id,omitempty" yaml:"id,omitempty"`
	UUID string `json:"uuid,omitempty" yaml:"uuid,omitempty"`

	Name             string `json:"name" yaml:"name"`
	Description      string `json:"description,omitempty" yaml:"description,omitempty"`
	TopicDescription string `json:"topicDescription,omitempty" yaml:"topicDescription,omitempty"`

	Version         string `json:"version,omitempty" yaml:"version,omitempty"`
	PreviousVersion string `json:"previousVersion,omitempty" yaml:"previousVersion,omitempty"`

	// Config is the descriptor tree. Immutable once Status is PUBLISH.
	Config *BlockDescriptor `json:"config,omitempty" yaml:"config,omitempty"`

	Status  string `json:"status,omitempty" yaml:"status,omitempty"`
	Creator string `json:"creator,omitempty" yaml:"creator,omitempty"`
	Owner   string `json:"owner,omitempty" yaml:"owner,omitempty"`

	// PolicyRoles declares the roles users may join the running instance
	// under. Block permissions are validated against this set.
	PolicyRoles []Role `json:"policyRoles,omitempty" yaml:"policyRoles,omitempty"`

	// RegisteredUsers maps a user id to the role it joined under.
	RegisteredUsers map[string]Role `json:"registeredUsers,omitempty" yaml:"registeredUsers,omitempty"`

	// PolicyTag is a stable, human-readable series identifier.
	PolicyTag string `json:"policyTag,omitempty" yaml:"policyTag,omitempty"`

	// TopicID is the ledger topic assigned at first publish; MessageID points
	// at the submit message anchoring the published version.
	TopicID   string `json:"topicId,omitempty" yaml:"topicId,omitempty"`
	MessageID string `json:"messageId,omitempty" yaml:"messageId,omitempty"`

	CreatedAt time.Time `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
}

// NewPolicy creates a draft policy with the given name.
func NewPolicy(name string) *Policy {
	ret := &Policy{Name: name}
	ret.EnsureDefaults()
	return ret
}

// EnsureDefaults installs the invariants every persisted record carries:
// status, series uuid, registered-user map and creation time.
func (p *Policy) EnsureDefaults() {
	if p.Status == "" {
		p.Status = StatusDraft
	}
	if p.UUID == "" {
		p.UUID = idgen.New()
	}
	if p.RegisteredUsers == nil {
		p.RegisteredUsers = map[string]Role{}
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = clock.Now()
	}
}

// IsPublished reports whether this version has been published.
func (p *Policy) IsPublished() bool {
	return p.Status == StatusPublish
}

// RegisterUser records that a user joined the running instance under a role.
func (p *Policy) RegisterUser(userID string, role Role) {
	if p.RegisteredUsers == nil {
		p.RegisteredUsers = map[string]Role{}
	}
	p.RegisteredUsers[userID] = role
}

// RoleOf returns the role a user is registered under, empty if not joined.
func (p *Policy) RoleOf(userID string) Role {
	return p.RegisteredUsers[userID]
}

// HasRole reports whether a role is part of the declared policy role set.
func (p *Policy) HasRole(role Role) bool {
	for _, candidate := range p.PolicyRoles {
		if candidate == role {
			return true
		}
	}
	return false
}

// Clone creates a deep copy of the policy record.
func (p *Policy) Clone() *Policy {
	if p == nil {
		return nil
	}
	clone := *p
	clone.Config = p.Config.Clone()
	if p.PolicyRoles != nil {
		clone.PolicyRoles = append([]Role(nil), p.PolicyRoles...)
	}
	if p.RegisteredUsers != nil {
		clone.RegisteredUsers = make(map[string]Role, len(p.RegisteredUsers))
		for k, v := range p.RegisteredUsers {
			clone.RegisteredUsers[k] = v
		}
	}
	return &clone
}

// WithDescription sets the description.
func (p *Policy) WithDescription(description string) *Policy {
	p.Description = description
	return p
}

// WithConfig sets the descriptor tree.
func (p *Policy) WithConfig(config *BlockDescriptor) *Policy {
	p.Config = config
	return p
}

// WithRoles sets the declared policy roles.
func (p *Policy) WithRoles(roles ...Role) *Policy {
	p.PolicyRoles = roles
	return p
}

// WithOwner sets creator and owner to the same identity.
func (p *Policy) WithOwner(did string) *Policy {
	p.Creator = did
	p.Owner = did
	return p
}
