package credentials

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRSAKeyPair(t *testing.T) (privateURL, publicURL string) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	dir := t.TempDir()

	privatePEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	privateURL = filepath.Join(dir, "private.pem")
	require.NoError(t, os.WriteFile(privateURL, privatePEM, 0o600))

	publicDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	publicPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: publicDER})
	publicURL = filepath.Join(dir, "public.pem")
	require.NoError(t, os.WriteFile(publicURL, publicPEM, 0o600))
	return privateURL, publicURL
}

func TestScyService_RSARoundTrip(t *testing.T) {
	ctx := context.Background()
	privateURL, publicURL := writeRSAKeyPair(t)

	service, err := NewScy(ctx, Config{RSAKeyURL: privateURL, RSAPublicKeyURL: publicURL})
	require.NoError(t, err)

	token, err := service.Sign(ctx, map[string]interface{}{"uuid": "p1", "version": "1.0.0"})
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	valid, err := service.Verify(ctx, token)
	assert.NoError(t, err)
	assert.True(t, valid)

	valid, err = service.Verify(ctx, token+"tampered")
	assert.NoError(t, err)
	assert.False(t, valid)
}

func TestNewScy_ConfigGuards(t *testing.T) {
	ctx := context.Background()

	_, err := NewScy(ctx, Config{})
	assert.Error(t, err)

	// the RSA private key alone cannot serve verification
	_, err = NewScy(ctx, Config{RSAKeyURL: "/tmp/private.pem"})
	assert.Error(t, err)
}
