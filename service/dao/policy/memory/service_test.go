package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samuraitruong/guardian/model"
	"github.com/samuraitruong/guardian/service/dao"
)

func TestService_ListFilters(t *testing.T) {
	ctx := context.Background()
	service := New()

	first := model.NewPolicy("irec")
	first.Owner = "did:alice"
	first.UUID = "series-a"
	first.Version = "1.0.0"
	require.NoError(t, service.Save(ctx, first))

	second := model.NewPolicy("irec")
	second.Owner = "did:alice"
	second.UUID = "series-a"
	second.Version = "2.0.0"
	require.NoError(t, service.Save(ctx, second))

	third := model.NewPolicy("other")
	third.Owner = "did:bob"
	third.UUID = "series-b"
	require.NoError(t, service.Save(ctx, third))

	all, err := service.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	mine, err := service.ListByOwner(ctx, "did:alice")
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	series, err := service.List(ctx, dao.NewParameter("uuid", "series-a"))
	require.NoError(t, err)
	assert.Len(t, series, 2)

	count, err := service.CountVersions(ctx, "series-a", "1.0.0")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = service.CountVersions(ctx, "series-a", "9.9.9")
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	// unknown filter names match nothing rather than everything
	none, err := service.List(ctx, dao.NewParameter("creator", "did:alice"))
	require.NoError(t, err)
	assert.Empty(t, none)
}
