package credentials

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnsignedService_SignVerify(t *testing.T) {
	svc := NewUnsigned()
	ctx := context.Background()

	token, err := svc.Sign(ctx, map[string]interface{}{"name": "issuance", "version": "1.0.0"})
	require.NoError(t, err)
	assert.Len(t, strings.Split(token, "."), 3)

	valid, err := svc.Verify(ctx, token)
	require.NoError(t, err)
	assert.True(t, valid)

	valid, err = svc.Verify(ctx, token+"tampered")
	require.NoError(t, err)
	assert.False(t, valid)

	valid, err = svc.Verify(ctx, "not-a-token")
	require.NoError(t, err)
	assert.False(t, valid)
}
