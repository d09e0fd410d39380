package model

import (
	"time"
)

// Session is the per-user conversational position. There is at most one
// session per userId; OrderID is set only while an order is in progress.
type Session struct {
	ID        string       `db:"id" json:"id"`
	UserID    string       `db:"user_id" json:"userId"`
	State     SessionState `db:"state" json:"state"`
	OrderID   *string      `db:"order_id" json:"orderId,omitempty"`
	CreatedAt time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time    `db:"updated_at" json:"updatedAt"`
}

// Clone returns a deep copy, so cached turn results cannot alias live state.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	if s.OrderID != nil {
		id := *s.OrderID
		out.OrderID = &id
	}
	return &out
}
