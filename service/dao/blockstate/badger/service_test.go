package badger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samuraitruong/guardian/service/dao"
	"github.com/samuraitruong/guardian/service/dao/blockstate"
)

func TestService_UpsertLoadDelete(t *testing.T) {
	svc, err := New(Config{InMemory: true})
	require.NoError(t, err)
	defer svc.Close()

	ctx := context.Background()

	_, err = svc.Load(ctx, "p1", "b1")
	assert.ErrorIs(t, err, dao.ErrNotFound)

	err = svc.Upsert(ctx, &blockstate.State{PolicyID: "p1", BlockID: "b1", Blob: []byte(`{"page":2}`)})
	require.NoError(t, err)
	err = svc.Upsert(ctx, &blockstate.State{PolicyID: "p1", BlockID: "b2", Blob: []byte(`{"page":0}`)})
	require.NoError(t, err)
	err = svc.Upsert(ctx, &blockstate.State{PolicyID: "p2", BlockID: "b1", Blob: []byte(`{}`)})
	require.NoError(t, err)

	state, err := svc.Load(ctx, "p1", "b1")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"page":2}`), state.Blob)

	// upsert overwrites
	err = svc.Upsert(ctx, &blockstate.State{PolicyID: "p1", BlockID: "b1", Blob: []byte(`{"page":3}`)})
	require.NoError(t, err)
	state, err = svc.Load(ctx, "p1", "b1")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"page":3}`), state.Blob)

	require.NoError(t, svc.DeletePolicy(ctx, "p1"))
	_, err = svc.Load(ctx, "p1", "b1")
	assert.ErrorIs(t, err, dao.ErrNotFound)
	_, err = svc.Load(ctx, "p2", "b1")
	assert.NoError(t, err)
}
