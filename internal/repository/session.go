package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/B1acB1rd/SolSwap/internal/model"
)

// SessionRepository is the storage port for per-user conversation state.
// Sessions are keyed by userId; there is at most one session per user.
type SessionRepository interface {
	FindByUserID(ctx context.Context, userID string) (*model.Session, error)
	Create(ctx context.Context, userID string) (*model.Session, error)
	Update(ctx context.Context, session *model.Session) error
	// DeleteIdleBefore reaps sessions not updated since cutoff whose state
	// carries no active order. Returns the number of rows removed.
	DeleteIdleBefore(ctx context.Context, cutoff time.Time) (int64, error)
	// WithTx returns a new repository that uses the given transaction
	WithTx(tx *sqlx.Tx) SessionRepository
}

// sessionDB is an interface satisfied by both *sqlx.DB and *sqlx.Tx
type sessionDB interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

type sessionRepo struct {
	db sessionDB
}

func NewSessionRepository(db *sqlx.DB) SessionRepository {
	return &sessionRepo{db: db}
}

func (r *sessionRepo) WithTx(tx *sqlx.Tx) SessionRepository {
	return &sessionRepo{db: tx}
}

func (r *sessionRepo) FindByUserID(ctx context.Context, userID string) (*model.Session, error) {
	var session model.Session
	err := r.db.GetContext(ctx, &session, `
		SELECT * FROM sessions WHERE user_id = $1
	`, userID)
	return HandleNotFound(&session, err)
}

func (r *sessionRepo) Create(ctx context.Context, userID string) (*model.Session, error) {
	var session model.Session
	err := r.db.GetContext(ctx, &session, `
		INSERT INTO sessions (user_id, state)
		VALUES ($1, 'start')
		RETURNING *
	`, userID)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepo) Update(ctx context.Context, session *model.Session) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE sessions SET
			state = $2,
			order_id = $3,
			updated_at = $4
		WHERE id = $1
	`, session.ID, session.State, session.OrderID, time.Now())
	return err
}

func (r *sessionRepo) DeleteIdleBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM sessions
		WHERE updated_at < $1
		AND state IN ('start', 'paid', 'failed', 'cancelled')
	`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
