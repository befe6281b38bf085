package model

// Role is a named capability a registered user holds within a running policy
// instance. Besides the roles a policy declares, three reserved entries are
// understood by the permission evaluator.
type Role = string

const (
	// AnyRole grants access to every registered user regardless of role.
	AnyRole Role = "ANY_ROLE"
	// OwnerRole grants access to the policy owner only.
	OwnerRole Role = "OWNER"
	// NoRole grants access to users that joined without a role and are not
	// the policy owner.
	NoRole Role = "NO_ROLE"
)

// User is the short identity every engine operation acts on behalf of.
type User struct {
	ID       string `json:"id" yaml:"id"`
	Username string `json:"username,omitempty" yaml:"username,omitempty"`
	Role     Role   `json:"role,omitempty" yaml:"role,omitempty"`
}
