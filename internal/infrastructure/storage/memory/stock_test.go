package memory

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slice/internal/core/id"
	"slice/internal/core/types"
	"slice/internal/domain/stock"
)

func TestStockRepo_CreditOutOfRange(t *testing.T) {
	ctx := context.Background()
	repo := New().Stock()
	branchID, itemID := id.New(), id.New()

	_, err := repo.Credit(ctx, branchID, itemID, types.Quantity(math.MaxInt64-5), 0)
	require.NoError(t, err)

	_, err = repo.Credit(ctx, branchID, itemID, types.Quantity(6), 0)
	assert.ErrorIs(t, err, types.ErrQuantityOutOfRange)

	rec, err := repo.Get(ctx, branchID, itemID)
	require.NoError(t, err)
	assert.Equal(t, types.Quantity(math.MaxInt64-5), rec.CurrentQuantity)
}

func TestStockRepo_ListByBranch(t *testing.T) {
	ctx := context.Background()
	repo := New().Stock()
	branchID, other := id.New(), id.New()
	flour, sugar := id.New(), id.New()
	threshold := types.MustQuantity("10")

	_, err := repo.Credit(ctx, branchID, flour, types.MustQuantity("50"), threshold)
	require.NoError(t, err)
	_, err = repo.Credit(ctx, branchID, sugar, types.MustQuantity("5"), threshold)
	require.NoError(t, err)
	_, err = repo.Credit(ctx, other, flour, types.MustQuantity("1"), threshold)
	require.NoError(t, err)

	all, err := repo.ListByBranch(ctx, branchID, stock.Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	low, err := repo.ListByBranch(ctx, branchID, stock.Filter{LowOnly: true})
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, sugar, low[0].ItemID)

	only, err := repo.ListByBranch(ctx, branchID, stock.Filter{ItemIDs: []id.ID{flour}})
	require.NoError(t, err)
	require.Len(t, only, 1)
	assert.Equal(t, types.MustQuantity("50"), only[0].CurrentQuantity)
}

func TestStore_RollbackRestoresStock(t *testing.T) {
	ctx := context.Background()
	s := New()
	branchID, itemID := id.New(), id.New()
	boom := errors.New("boom")

	_, err := s.Stock().Credit(ctx, branchID, itemID, types.MustQuantity("100"), 0)
	require.NoError(t, err)

	err = s.RunInTransaction(ctx, func(ctx context.Context) error {
		_, ok, err := s.Stock().Deduct(ctx, branchID, itemID, types.MustQuantity("40"))
		require.NoError(t, err)
		require.True(t, ok)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	rec, err := s.Stock().Get(ctx, branchID, itemID)
	require.NoError(t, err)
	assert.Equal(t, types.MustQuantity("100"), rec.CurrentQuantity)
}
