package service

import (
	"context"

	"github.com/B1acB1rd/SolSwap/internal/audit"
	apperrors "github.com/B1acB1rd/SolSwap/internal/errors"
	"github.com/B1acB1rd/SolSwap/internal/model"
)

// External asynchronous events from the deposit-watching and payout
// collaborators. These are distinct entry points from chat turns, but take
// the same per-user lock so they never interleave with one.

// DepositEvent reports an on-chain deposit result for an order.
type DepositEvent struct {
	OrderID     string  `json:"orderId"`
	FromAddress string  `json:"fromAddress"`
	TxSignature string  `json:"txSignature"`
	AmountToken float64 `json:"amountToken"`
	AmountNGN   float64 `json:"amountNgn"`
	Confirmed   bool    `json:"confirmed"`
}

// ConfirmDeposit moves an order from awaiting_deposit/confirming to
// awaiting_bank (or failed), recording the deposit facts, and advances the
// owning session.
func (s *ConversationService) ConfirmDeposit(ctx context.Context, event DepositEvent) (*model.Order, error) {
	order, err := s.orders.FindByID(ctx, event.OrderID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if order == nil {
		return nil, apperrors.NotFound("Order")
	}

	release := s.locks.Acquire(order.UserID)
	defer release()

	// Re-read under the lock; a concurrent turn may have moved the order.
	order, err = s.orders.FindByID(ctx, event.OrderID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if order == nil {
		return nil, apperrors.NotFound("Order")
	}

	if order.Status != model.OrderStatusAwaitingDeposit && order.Status != model.OrderStatusConfirming {
		return nil, apperrors.Conflict("order is not awaiting deposit confirmation")
	}

	if !event.Confirmed {
		order.Status = model.OrderStatusFailed
		if err := s.orders.Update(ctx, order); err != nil {
			return nil, apperrors.Database(err)
		}
		if err := s.syncSessionState(ctx, order, model.StateFailed); err != nil {
			return nil, err
		}
		audit.Log(ctx, audit.Event{Type: audit.EventDepositFailed, UserID: order.UserID, OrderID: order.ID})
		return order, nil
	}

	if event.TxSignature != "" {
		if order.TxSignature == nil || *order.TxSignature != event.TxSignature {
			exists, err := s.orders.TxSignatureExists(ctx, event.TxSignature)
			if err != nil {
				return nil, apperrors.Database(err)
			}
			if exists {
				return nil, apperrors.DuplicateTransaction(event.TxSignature)
			}
			sig := event.TxSignature
			order.TxSignature = &sig
		}
	}
	if event.FromAddress != "" {
		from := event.FromAddress
		order.FromAddress = &from
	}
	order.AmountToken = event.AmountToken
	order.AmountNGN = event.AmountNGN
	order.Status = model.OrderStatusAwaitingBank

	if err := s.orders.Update(ctx, order); err != nil {
		return nil, apperrors.Database(err)
	}
	if err := s.syncSessionState(ctx, order, model.StateAwaitingBank); err != nil {
		return nil, err
	}

	audit.Log(ctx, audit.Event{
		Type:    audit.EventDepositConfirmed,
		UserID:  order.UserID,
		OrderID: order.ID,
		Details: map[string]interface{}{
			"amountToken": order.AmountToken,
			"amountNgn":   order.AmountNGN,
		},
	})

	return order, nil
}

// PayoutEvent reports the outcome of a bank transfer for an order.
type PayoutEvent struct {
	OrderID         string `json:"orderId"`
	PayoutReference string `json:"payoutReference"`
	Succeeded       bool   `json:"succeeded"`
}

// CompletePayout moves an order from ready_to_pay to paid (or failed) and
// advances the owning session.
func (s *ConversationService) CompletePayout(ctx context.Context, event PayoutEvent) (*model.Order, error) {
	order, err := s.orders.FindByID(ctx, event.OrderID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if order == nil {
		return nil, apperrors.NotFound("Order")
	}

	release := s.locks.Acquire(order.UserID)
	defer release()

	order, err = s.orders.FindByID(ctx, event.OrderID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if order == nil {
		return nil, apperrors.NotFound("Order")
	}

	if order.Status != model.OrderStatusReadyToPay {
		return nil, apperrors.Conflict("order is not awaiting payout")
	}

	if event.PayoutReference != "" {
		ref := event.PayoutReference
		order.PayoutReference = &ref
	}

	nextOrderStatus := model.OrderStatusPaid
	nextSessionState := model.StatePaid
	if !event.Succeeded {
		nextOrderStatus = model.OrderStatusFailed
		nextSessionState = model.StateFailed
	}

	order.Status = nextOrderStatus
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, apperrors.Database(err)
	}
	if err := s.syncSessionState(ctx, order, nextSessionState); err != nil {
		return nil, err
	}

	eventType := audit.EventPayoutCompleted
	if !event.Succeeded {
		eventType = audit.EventPayoutFailed
	}
	audit.Log(ctx, audit.Event{Type: eventType, UserID: order.UserID, OrderID: order.ID})

	return order, nil
}

// syncSessionState advances the owning session, but only while it still
// references this order. A cancelled session keeps its reset state.
func (s *ConversationService) syncSessionState(ctx context.Context, order *model.Order, state model.SessionState) error {
	session, err := s.sessions.FindByUserID(ctx, order.UserID)
	if err != nil {
		return apperrors.Database(err)
	}
	if session == nil || session.OrderID == nil || *session.OrderID != order.ID {
		return nil
	}

	session.State = state
	if state == model.StateFailed {
		// A failed order no longer counts as active.
		session.OrderID = nil
	}
	if err := s.sessions.Update(ctx, session); err != nil {
		return apperrors.Database(err)
	}
	return nil
}

// GetOrder looks up an order by id.
func (s *ConversationService) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if order == nil {
		return nil, apperrors.NotFound("Order")
	}
	return order, nil
}

// GetSession looks up a session by userId.
func (s *ConversationService) GetSession(ctx context.Context, userID string) (*model.Session, error) {
	session, err := s.sessions.FindByUserID(ctx, userID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if session == nil {
		return nil, apperrors.NotFound("Session")
	}
	return session, nil
}

// ListOrders returns the most recent orders, newest first.
func (s *ConversationService) ListOrders(ctx context.Context, limit int) ([]*model.Order, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	orders, err := s.orders.ListRecent(ctx, limit)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return orders, nil
}

// SweepIdempotency drops expired idempotency entries. Called by the cleanup job.
func (s *ConversationService) SweepIdempotency() int {
	return s.idem.Sweep()
}
