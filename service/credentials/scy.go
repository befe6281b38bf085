package credentials

import (
	"context"
	"fmt"
	"time"

	"github.com/viant/scy"
	"github.com/viant/scy/auth/jwt/signer"
	"github.com/viant/scy/auth/jwt/verifier"
	"github.com/viant/toolbox"
)

// Config describes the signing key for the scy-backed service. Exactly one of
// RSAKeyURL or HMACKeyURL must be set; KeySecret decrypts the key when it is
// stored encrypted. RSAKeyURL points at the private key PEM; RSAPublicKeyURL
// at the matching public key PEM the verifier checks against.
type Config struct {
	RSAKeyURL       string        `json:"rsaKeyURL,omitempty" yaml:"rsaKeyURL,omitempty"`
	RSAPublicKeyURL string        `json:"rsaPublicKeyURL,omitempty" yaml:"rsaPublicKeyURL,omitempty"`
	HMACKeyURL      string        `json:"hmacKeyURL,omitempty" yaml:"hmacKeyURL,omitempty"`
	KeySecret       string        `json:"keySecret,omitempty" yaml:"keySecret,omitempty"`
	Expiry          time.Duration `json:"expiry,omitempty" yaml:"expiry,omitempty"`
}

// ScyService issues credentials as signed JWTs using viant/scy.
type ScyService struct {
	config   Config
	signer   *signer.Service
	verifier *verifier.Service
}

// NewScy creates a credential service from config.
func NewScy(ctx context.Context, config Config) (*ScyService, error) {
	if config.RSAKeyURL == "" && config.HMACKeyURL == "" {
		return nil, fmt.Errorf("credentials: either rsaKeyURL or hmacKeyURL must be provided")
	}
	if config.Expiry == 0 {
		config.Expiry = time.Hour
	}
	signerConfig := &signer.Config{}
	verifierConfig := &verifier.Config{}
	if config.RSAKeyURL != "" {
		if config.RSAPublicKeyURL == "" {
			return nil, fmt.Errorf("credentials: rsaPublicKeyURL is required with rsaKeyURL")
		}
		signerConfig.RSA = &scy.Resource{URL: config.RSAKeyURL, Key: config.KeySecret}
		verifierConfig.RSA = []*scy.Resource{{URL: config.RSAPublicKeyURL, Key: config.KeySecret}}
	} else {
		signerConfig.HMAC = &scy.Resource{URL: config.HMACKeyURL, Key: config.KeySecret}
		verifierConfig.HMAC = &scy.Resource{URL: config.HMACKeyURL, Key: config.KeySecret}
	}
	jwtSigner := signer.New(signerConfig)
	if err := jwtSigner.Init(ctx); err != nil {
		return nil, fmt.Errorf("credentials: failed to initialize signer: %w", err)
	}
	jwtVerifier := verifier.New(verifierConfig)
	if err := jwtVerifier.Init(ctx); err != nil {
		return nil, fmt.Errorf("credentials: failed to initialize verifier: %w", err)
	}
	return &ScyService{config: config, signer: jwtSigner, verifier: jwtVerifier}, nil
}

// Sign issues a signed JWT whose claims are the credential subject.
func (s *ScyService) Sign(_ context.Context, subject interface{}) (string, error) {
	claims, err := asClaims(subject)
	if err != nil {
		return "", err
	}
	return s.signer.Create(s.config.Expiry, claims)
}

// Verify reports whether the token verifies against the configured key.
func (s *ScyService) Verify(ctx context.Context, token string) (bool, error) {
	if _, err := s.verifier.VerifyClaims(ctx, token); err != nil {
		return false, nil
	}
	return true, nil
}

// asClaims converts an arbitrary subject value into a claims map.
func asClaims(subject interface{}) (map[string]interface{}, error) {
	if claims, ok := subject.(map[string]interface{}); ok {
		return claims, nil
	}
	claims := map[string]interface{}{}
	if err := toolbox.DefaultConverter.AssignConverted(&claims, subject); err != nil {
		return nil, fmt.Errorf("credentials: failed to convert subject: %w", err)
	}
	return toolbox.DeleteEmptyKeys(claims), nil
}

var _ Service = (*ScyService)(nil)
