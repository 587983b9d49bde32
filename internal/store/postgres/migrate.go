package postgres

import "context"

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id              TEXT PRIMARY KEY,
		name            TEXT NOT NULL,
		cost            NUMERIC(18,4) NOT NULL DEFAULT 0,
		price           NUMERIC(18,4) NOT NULL DEFAULT 0,
		unit_mode       TEXT NOT NULL DEFAULT 'simple',
		weight_per_unit NUMERIC(18,4) NOT NULL DEFAULT 0,
		stock_count     NUMERIC(18,4) NOT NULL DEFAULT 0,
		stock_weight    NUMERIC(18,4) NOT NULL DEFAULT 0,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS contacts (
		id               TEXT PRIMARY KEY,
		name             TEXT NOT NULL,
		phone            TEXT NOT NULL DEFAULT '',
		type             TEXT NOT NULL DEFAULT 'customer',
		balance          NUMERIC(18,4) NOT NULL DEFAULT 0,
		last_activity_at TIMESTAMPTZ,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_contacts_name ON contacts (name)`,
	`CREATE TABLE IF NOT EXISTS invoices (
		id                  TEXT PRIMARY KEY,
		type                TEXT NOT NULL,
		number              TEXT NOT NULL,
		contact_id          TEXT,
		contact_name        TEXT NOT NULL DEFAULT '',
		date                TIMESTAMPTZ NOT NULL,
		items               JSONB NOT NULL DEFAULT '[]',
		subtotal            NUMERIC(18,4) NOT NULL DEFAULT 0,
		discount            NUMERIC(18,4) NOT NULL DEFAULT 0,
		total               NUMERIC(18,4) NOT NULL DEFAULT 0,
		status              TEXT NOT NULL DEFAULT 'pending',
		cash_transaction_id TEXT,
		created_at          TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_invoices_contact_date ON invoices (contact_id, date DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_invoices_type_date ON invoices (type, date DESC)`,
	`CREATE TABLE IF NOT EXISTS cash_transactions (
		id         TEXT PRIMARY KEY,
		type       TEXT NOT NULL,
		amount     NUMERIC(18,4) NOT NULL,
		note       TEXT NOT NULL DEFAULT '',
		contact_id TEXT,
		invoice_id TEXT,
		date       TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_cash_transactions_contact_date ON cash_transactions (contact_id, date DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_cash_transactions_invoice ON cash_transactions (invoice_id)`,
	`CREATE TABLE IF NOT EXISTS invoice_counters (
		invoice_type TEXT PRIMARY KEY,
		seq          BIGINT NOT NULL DEFAULT 0
	)`,
}

// Migrate applies the idempotent schema. Statements run one at a time so a
// failure reports the offending DDL instead of a batched error.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range migrations {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
