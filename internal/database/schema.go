package database

import "context"

// schema holds the DDL for the session and order tables. Statements are
// idempotent so Migrate can run at every startup.
var schema = []string{
	`CREATE EXTENSION IF NOT EXISTS pgcrypto`,

	`CREATE TABLE IF NOT EXISTS sessions (
		id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id    TEXT NOT NULL UNIQUE,
		state      TEXT NOT NULL DEFAULT 'start',
		order_id   UUID,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS orders (
		id                    UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id               TEXT NOT NULL,
		token_symbol          TEXT NOT NULL,
		deposit_address       TEXT NOT NULL,
		deposit_token_account TEXT,
		status                TEXT NOT NULL DEFAULT 'awaiting_deposit',
		from_address          TEXT,
		tx_signature          TEXT,
		amount_token          DOUBLE PRECISION NOT NULL DEFAULT 0,
		amount_ngn            DOUBLE PRECISION NOT NULL DEFAULT 0,
		bank_account_number   TEXT,
		bank_code             TEXT,
		payout_reference      TEXT,
		created_at            TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at            TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	// Duplicate-deposit guard: a confirmed signature belongs to one order only.
	`CREATE UNIQUE INDEX IF NOT EXISTS orders_tx_signature_key
		ON orders (tx_signature) WHERE tx_signature IS NOT NULL`,

	`CREATE INDEX IF NOT EXISTS orders_user_id_idx ON orders (user_id)`,
}

// Migrate applies the schema. Safe to call on every startup.
func (db *DB) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
