package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samuraitruong/guardian/service/storage"
)

func TestService_PutGet(t *testing.T) {
	svc := New()
	ctx := context.Background()

	ref, err := svc.Put(ctx, []byte("policy archive"))
	require.NoError(t, err)
	assert.Len(t, ref, 64)

	again, err := svc.Put(ctx, []byte("policy archive"))
	require.NoError(t, err)
	assert.Equal(t, ref, again, "identical content must share a reference")

	data, err := svc.Get(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, []byte("policy archive"), data)

	_, err = svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
