package model

import (
	"time"
)

// Order is a single sell transaction, tracked from token selection through
// payout. TxSignature is globally unique across all orders once set.
type Order struct {
	ID                  string      `db:"id" json:"id"`
	UserID              string      `db:"user_id" json:"userId"`
	TokenSymbol         TokenSymbol `db:"token_symbol" json:"tokenSymbol"`
	DepositAddress      string      `db:"deposit_address" json:"depositAddress"`
	DepositTokenAccount *string     `db:"deposit_token_account" json:"depositTokenAccount,omitempty"`
	Status              OrderStatus `db:"status" json:"status"`
	FromAddress         *string     `db:"from_address" json:"fromAddress,omitempty"`
	TxSignature         *string     `db:"tx_signature" json:"txSignature,omitempty"`
	AmountToken         float64     `db:"amount_token" json:"amountToken"`
	AmountNGN           float64     `db:"amount_ngn" json:"amountNgn"`
	BankAccountNumber   *string     `db:"bank_account_number" json:"bankAccountNumber,omitempty"`
	BankCode            *string     `db:"bank_code" json:"bankCode,omitempty"`
	PayoutReference     *string     `db:"payout_reference" json:"payoutReference,omitempty"`
	CreatedAt           time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt           time.Time   `db:"updated_at" json:"updatedAt"`
}

// CreateOrderParams carries the fields set at token selection time.
type CreateOrderParams struct {
	UserID              string
	TokenSymbol         TokenSymbol
	DepositAddress      string
	DepositTokenAccount *string
}

// Clone returns a deep copy of the order.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	out := *o
	out.DepositTokenAccount = cloneStr(o.DepositTokenAccount)
	out.FromAddress = cloneStr(o.FromAddress)
	out.TxSignature = cloneStr(o.TxSignature)
	out.BankAccountNumber = cloneStr(o.BankAccountNumber)
	out.BankCode = cloneStr(o.BankCode)
	out.PayoutReference = cloneStr(o.PayoutReference)
	return &out
}

func cloneStr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
