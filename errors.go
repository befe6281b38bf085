package guardian

import "errors"

var (
	// ErrPolicyNotFound is returned when no policy record exists for an id.
	ErrPolicyNotFound = errors.New("policy not found")

	// ErrInvalidOwner is returned when a user acts on a policy they do not
	// own.
	ErrInvalidOwner = errors.New("invalid policy owner")

	// ErrInvalidVersion is returned when a publish version is malformed or
	// not greater than the previous one.
	ErrInvalidVersion = errors.New("invalid policy version")

	// ErrVersionAlreadyPublished is returned when the series already carries
	// a published definition with the requested version.
	ErrVersionAlreadyPublished = errors.New("policy version already published")

	// ErrInvalidDefinition is returned when a policy fails structural
	// validation.
	ErrInvalidDefinition = errors.New("invalid policy definition")

	// ErrPolicyPublished is returned when a mutation targets a published,
	// immutable definition.
	ErrPolicyPublished = errors.New("policy is published")

	// ErrPermissionDenied is returned when a user addresses a block they may
	// not see or act on.
	ErrPermissionDenied = errors.New("permission denied")
)
