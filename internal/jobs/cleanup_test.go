package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/B1acB1rd/SolSwap/internal/model"
	"github.com/B1acB1rd/SolSwap/internal/repository"
	"github.com/B1acB1rd/SolSwap/internal/service"
)

type noQuotes struct{}

func (noQuotes) GetQuote(context.Context, []model.TokenSymbol) (*service.Quote, error) {
	return &service.Quote{}, nil
}

type noWallet struct{}

func (noWallet) GetDepositAddress(context.Context, model.TokenSymbol) (*service.DepositAddress, error) {
	return &service.DepositAddress{Address: "addr"}, nil
}

type noPayouts struct{}

func (noPayouts) ResolveBankAccount(context.Context, string, string) (string, error) {
	return "", nil
}

func (noPayouts) InitiateTransfer(context.Context, *model.Order) (string, error) {
	return "ref", nil
}

func TestCleanupJob(t *testing.T) {
	ctx := context.Background()

	sessions := repository.NewMemorySessionRepository()
	orders := repository.NewMemoryOrderRepository()
	conversations := service.NewConversationService(sessions, orders, nil, noQuotes{}, noWallet{}, noPayouts{})

	// An idle session in start state and one mid-flow.
	_, err := sessions.Create(ctx, "idle-user")
	require.NoError(t, err)

	active, err := sessions.Create(ctx, "active-user")
	require.NoError(t, err)
	active.State = model.StateAwaitingDeposit
	require.NoError(t, sessions.Update(ctx, active))

	t.Run("reaps only idle reapable sessions", func(t *testing.T) {
		// Zero retention makes every session past the cutoff.
		job := NewCleanupJob(sessions, conversations, 0, time.Hour)
		job.cleanup()

		idle, err := sessions.FindByUserID(ctx, "idle-user")
		require.NoError(t, err)
		assert.Nil(t, idle, "idle start-state session should be reaped")

		kept, err := sessions.FindByUserID(ctx, "active-user")
		require.NoError(t, err)
		require.NotNil(t, kept, "mid-flow session must survive")
		assert.Equal(t, model.StateAwaitingDeposit, kept.State)
	})

	t.Run("start and stop are clean", func(t *testing.T) {
		job := NewCleanupJob(sessions, conversations, time.Hour, 10*time.Millisecond)
		job.Start()
		time.Sleep(30 * time.Millisecond)
		job.Stop()
	})
}
