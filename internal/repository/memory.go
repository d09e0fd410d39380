package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/B1acB1rd/SolSwap/internal/model"
)

// In-memory adapters for the storage ports. Used by tests and by the
// standalone mode; each method is an atomic read-then-write per key.

type MemorySessionRepository struct {
	mu       sync.RWMutex
	byUserID map[string]*model.Session
}

func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{
		byUserID: make(map[string]*model.Session),
	}
}

func (r *MemorySessionRepository) WithTx(_ *sqlx.Tx) SessionRepository {
	return r
}

func (r *MemorySessionRepository) FindByUserID(_ context.Context, userID string) (*model.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byUserID[userID].Clone(), nil
}

func (r *MemorySessionRepository) Create(_ context.Context, userID string) (*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	session := &model.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		State:     model.StateStart,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.byUserID[userID] = session
	return session.Clone(), nil
}

func (r *MemorySessionRepository) Update(_ context.Context, session *model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := session.Clone()
	stored.UpdatedAt = time.Now()
	r.byUserID[session.UserID] = stored
	session.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *MemorySessionRepository) DeleteIdleBefore(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed int64
	for userID, session := range r.byUserID {
		idle := session.UpdatedAt.Before(cutoff)
		reapable := session.State == model.StateStart || session.State.Terminal()
		if idle && reapable {
			delete(r.byUserID, userID)
			removed++
		}
	}
	return removed, nil
}

type MemoryOrderRepository struct {
	mu   sync.RWMutex
	byID map[string]*model.Order
}

func NewMemoryOrderRepository() *MemoryOrderRepository {
	return &MemoryOrderRepository{
		byID: make(map[string]*model.Order),
	}
}

func (r *MemoryOrderRepository) WithTx(_ *sqlx.Tx) OrderRepository {
	return r
}

func (r *MemoryOrderRepository) FindByID(_ context.Context, id string) (*model.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byID[id].Clone(), nil
}

func (r *MemoryOrderRepository) Create(_ context.Context, params model.CreateOrderParams) (*model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	order := &model.Order{
		ID:                  uuid.NewString(),
		UserID:              params.UserID,
		TokenSymbol:         params.TokenSymbol,
		DepositAddress:      params.DepositAddress,
		DepositTokenAccount: params.DepositTokenAccount,
		Status:              model.OrderStatusAwaitingDeposit,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	r.byID[order.ID] = order
	return order.Clone(), nil
}

func (r *MemoryOrderRepository) Update(_ context.Context, order *model.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := order.Clone()
	stored.UpdatedAt = time.Now()
	r.byID[order.ID] = stored
	order.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *MemoryOrderRepository) TxSignatureExists(_ context.Context, signature string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, order := range r.byID {
		if order.TxSignature != nil && *order.TxSignature == signature {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryOrderRepository) ListRecent(_ context.Context, limit int) ([]*model.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orders := make([]*model.Order, 0, len(r.byID))
	for _, order := range r.byID {
		orders = append(orders, order.Clone())
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	if limit > 0 && len(orders) > limit {
		orders = orders[:limit]
	}
	return orders, nil
}
