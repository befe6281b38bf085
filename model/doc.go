// Package model defines the persisted shapes of the policy engine: the
// versioned Policy record, the recursive BlockDescriptor tree it carries,
// the role/permission vocabulary and the semantic-version rules that guard
// publishing.
package model
