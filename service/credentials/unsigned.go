package credentials

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"strings"

	"golang.org/x/crypto/sha3"
)

// UnsignedService issues unsigned "alg":"none" tokens carrying the subject as
// claims, with a content digest in place of a signature. It is the default
// wiring so the engine runs without key material; production deployments
// configure the scy-backed service instead.
type UnsignedService struct{}

// NewUnsigned creates the no-key credential service.
func NewUnsigned() *UnsignedService {
	return &UnsignedService{}
}

const unsignedHeader = `{"alg":"none","typ":"JWT"}`

// Sign encodes the subject as an unsigned JWT with a SHA3-256 digest segment.
func (s *UnsignedService) Sign(_ context.Context, subject interface{}) (string, error) {
	claims, err := asClaims(subject)
	if err != nil {
		return "", err
	}
	payload, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}
	encode := base64.RawURLEncoding.EncodeToString
	body := encode([]byte(unsignedHeader)) + "." + encode(payload)
	digest := sha3.Sum256([]byte(body))
	return body + "." + hex.EncodeToString(digest[:]), nil
}

// Verify recomputes and compares the digest segment.
func (s *UnsignedService) Verify(_ context.Context, token string) (bool, error) {
	idx := strings.LastIndex(token, ".")
	if idx <= 0 {
		return false, nil
	}
	body, digest := token[:idx], token[idx+1:]
	sum := sha3.Sum256([]byte(body))
	return hex.EncodeToString(sum[:]) == digest, nil
}

var _ Service = (*UnsignedService)(nil)
