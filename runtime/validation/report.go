// Package validation accumulates structural findings while a candidate block
// tree is walked. A report is a value object: the walk never fails part-way,
// every finding is appended and the caller inspects the result at the end.
package validation

import (
	"fmt"

	"github.com/samuraitruong/guardian/model"
)

// BlockError is one finding attributed to a block.
type BlockError struct {
	BlockID string `json:"id"`
	Message string `json:"message"`
}

// Report collects tags, declared permissions and per-block errors over one
// full tree walk.
type Report struct {
	// declaredTags holds every tag found in the raw descriptor pre-scan,
	// including tags of nodes that could not be constructed.
	declaredTags map[string]int
	// seenTags tracks tags of blocks already registered during the walk, so
	// a duplicate pair yields exactly one finding.
	seenTags    map[string]bool
	permissions map[model.Role]bool
	errors      []BlockError
}

// NewReport creates an empty report.
func NewReport() *Report {
	return &Report{
		declaredTags: map[string]int{},
		seenTags:     map[string]bool{},
		permissions:  map[model.Role]bool{},
	}
}

// AddTag records a tag declared somewhere in the raw descriptor tree.
func (r *Report) AddTag(tag string) {
	if tag != "" {
		r.declaredTags[tag]++
	}
}

// CountTags returns how many descriptor nodes declared the tag.
func (r *Report) CountTags(tag string) int {
	return r.declaredTags[tag]
}

// AddPermissions records the policy's declared role set.
func (r *Report) AddPermissions(roles []model.Role) {
	for _, role := range roles {
		r.permissions[role] = true
	}
}

// PermissionNotDeclared returns the first permission entry that is neither a
// declared policy role nor one of the reserved entries.
func (r *Report) PermissionNotDeclared(permissions []model.Role) (model.Role, bool) {
	for _, permission := range permissions {
		switch permission {
		case model.AnyRole, model.OwnerRole, model.NoRole:
			continue
		}
		if !r.permissions[permission] {
			return permission, true
		}
	}
	return "", false
}

// RegisterBlock records a block entering validation and reports whether its
// tag collides with an already registered block.
func (r *Report) RegisterBlock(blockID, tag string) (duplicate bool) {
	if tag == "" {
		return false
	}
	if r.seenTags[tag] {
		return true
	}
	r.seenTags[tag] = true
	return false
}

// AddBlockError appends a finding attributed to a block.
func (r *Report) AddBlockError(blockID, message string) {
	r.errors = append(r.errors, BlockError{BlockID: blockID, Message: message})
}

// AddBlockErrorf appends a formatted finding attributed to a block.
func (r *Report) AddBlockErrorf(blockID, format string, args ...interface{}) {
	r.AddBlockError(blockID, fmt.Sprintf(format, args...))
}

// Errors returns all findings in the order they were appended.
func (r *Report) Errors() []BlockError {
	return append([]BlockError(nil), r.errors...)
}

// IsValid reports whether the walk produced no findings.
func (r *Report) IsValid() bool {
	return len(r.errors) == 0
}
