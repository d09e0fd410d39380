package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/B1acB1rd/SolSwap/internal/model"
)

func TestMemorySessionRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("find on missing user returns nil", func(t *testing.T) {
		repo := NewMemorySessionRepository()
		session, err := repo.FindByUserID(ctx, "nobody")
		require.NoError(t, err)
		assert.Nil(t, session)
	})

	t.Run("create then find", func(t *testing.T) {
		repo := NewMemorySessionRepository()
		created, err := repo.Create(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, model.StateStart, created.State)
		assert.NotEmpty(t, created.ID)

		found, err := repo.FindByUserID(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, created.ID, found.ID)
	})

	t.Run("returned sessions are detached copies", func(t *testing.T) {
		repo := NewMemorySessionRepository()
		_, err := repo.Create(ctx, "user-1")
		require.NoError(t, err)

		first, err := repo.FindByUserID(ctx, "user-1")
		require.NoError(t, err)
		first.State = model.StateAwaitingBank

		second, err := repo.FindByUserID(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, model.StateStart, second.State)
	})
}

func TestMemoryOrderRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("create assigns id and initial status", func(t *testing.T) {
		repo := NewMemoryOrderRepository()
		order, err := repo.Create(ctx, model.CreateOrderParams{
			UserID: "user-1", TokenSymbol: model.TokenSOL, DepositAddress: "addr",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, order.ID)
		assert.Equal(t, model.OrderStatusAwaitingDeposit, order.Status)
	})

	t.Run("tx signature lookup spans all orders", func(t *testing.T) {
		repo := NewMemoryOrderRepository()
		order, err := repo.Create(ctx, model.CreateOrderParams{
			UserID: "user-1", TokenSymbol: model.TokenSOL, DepositAddress: "addr",
		})
		require.NoError(t, err)

		sig := "somesignature"
		order.TxSignature = &sig
		require.NoError(t, repo.Update(ctx, order))

		exists, err := repo.TxSignatureExists(ctx, sig)
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.TxSignatureExists(ctx, "other")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("list recent is newest first and honors limit", func(t *testing.T) {
		repo := NewMemoryOrderRepository()
		for i := 0; i < 3; i++ {
			_, err := repo.Create(ctx, model.CreateOrderParams{
				UserID: "user-1", TokenSymbol: model.TokenUSDC, DepositAddress: "addr",
			})
			require.NoError(t, err)
			time.Sleep(time.Millisecond)
		}

		orders, err := repo.ListRecent(ctx, 2)
		require.NoError(t, err)
		require.Len(t, orders, 2)
		assert.True(t, !orders[0].CreatedAt.Before(orders[1].CreatedAt))
	})
}
