// Package credentials defines the credential signing collaborator. Published
// policies are anchored with a verifiable credential over the submit message;
// the engine only consumes sign/verify, the cryptographic format belongs to
// the implementation.
package credentials

import (
	"context"
)

// Service signs credential subjects and verifies issued tokens.
type Service interface {
	// Sign issues a credential over the given subject and returns its token.
	Sign(ctx context.Context, subject interface{}) (string, error)

	// Verify reports whether a token is a valid credential issued by this
	// service. An invalid token is a valid result, not an error.
	Verify(ctx context.Context, token string) (bool, error)
}
