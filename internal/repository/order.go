package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/B1acB1rd/SolSwap/internal/model"
)

// OrderRepository is the storage port for sell transaction records.
type OrderRepository interface {
	FindByID(ctx context.Context, id string) (*model.Order, error)
	Create(ctx context.Context, params model.CreateOrderParams) (*model.Order, error)
	Update(ctx context.Context, order *model.Order) error
	// TxSignatureExists is the global duplicate-deposit check, spanning
	// all orders regardless of owner.
	TxSignatureExists(ctx context.Context, signature string) (bool, error)
	ListRecent(ctx context.Context, limit int) ([]*model.Order, error)
	// WithTx returns a new repository that uses the given transaction
	WithTx(tx *sqlx.Tx) OrderRepository
}

type orderRepo struct {
	db sessionDB
}

func NewOrderRepository(db *sqlx.DB) OrderRepository {
	return &orderRepo{db: db}
}

func (r *orderRepo) WithTx(tx *sqlx.Tx) OrderRepository {
	return &orderRepo{db: tx}
}

func (r *orderRepo) FindByID(ctx context.Context, id string) (*model.Order, error) {
	var order model.Order
	err := r.db.GetContext(ctx, &order, `
		SELECT * FROM orders WHERE id = $1
	`, id)
	return HandleNotFound(&order, err)
}

func (r *orderRepo) Create(ctx context.Context, params model.CreateOrderParams) (*model.Order, error) {
	var order model.Order
	err := r.db.GetContext(ctx, &order, `
		INSERT INTO orders (user_id, token_symbol, deposit_address, deposit_token_account, status)
		VALUES ($1, $2, $3, $4, 'awaiting_deposit')
		RETURNING *
	`, params.UserID, params.TokenSymbol, params.DepositAddress, params.DepositTokenAccount)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepo) Update(ctx context.Context, order *model.Order) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE orders SET
			status = $2,
			from_address = $3,
			tx_signature = $4,
			amount_token = $5,
			amount_ngn = $6,
			bank_account_number = $7,
			bank_code = $8,
			payout_reference = $9,
			updated_at = $10
		WHERE id = $1
	`, order.ID, order.Status, order.FromAddress, order.TxSignature,
		order.AmountToken, order.AmountNGN, order.BankAccountNumber,
		order.BankCode, order.PayoutReference, time.Now())
	return err
}

func (r *orderRepo) TxSignatureExists(ctx context.Context, signature string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `
		SELECT EXISTS (SELECT 1 FROM orders WHERE tx_signature = $1)
	`, signature)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (r *orderRepo) ListRecent(ctx context.Context, limit int) ([]*model.Order, error) {
	orders := []*model.Order{}
	err := r.db.SelectContext(ctx, &orders, `
		SELECT * FROM orders ORDER BY created_at DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	return orders, nil
}
