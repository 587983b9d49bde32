// Package postgres implements the repository on PostgreSQL via database/sql
// and the pgx stdlib driver. Posting runs in serializable transactions with
// row locks on the products and contacts touched.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/shopspring/decimal"

	"mizan/backend/internal/domain"
	"mizan/backend/internal/store"
	"mizan/backend/internal/xid"
)

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

const productColumns = `id, name, cost, price, unit_mode, weight_per_unit, stock_count, stock_weight, created_at, updated_at`

func scanProduct(row interface{ Scan(...any) error }) (domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.Name, &p.Cost, &p.Price, &p.UnitMode, &p.WeightPerUnit, &p.StockCount, &p.StockWeight, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return domain.Product{}, err
	}
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return p, nil
}

func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]domain.Product, 0, 64)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *Store) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE id = $1
	`, id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *Store) CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	if product.ID == "" {
		product.ID = xid.New("prd")
	}
	now := time.Now().UTC()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (id, name, cost, price, unit_mode, weight_per_unit, stock_count, stock_weight, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, product.ID, product.Name, product.Cost, product.Price, product.UnitMode, product.WeightPerUnit,
		product.StockCount, product.StockWeight, product.CreatedAt, product.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrConflict
		}
		return nil, err
	}
	created := product
	return &created, nil
}

func (s *Store) UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	product.UpdatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE products
		SET name = $2, cost = $3, price = $4, unit_mode = $5, weight_per_unit = $6,
			stock_count = $7, stock_weight = $8, updated_at = $9
		WHERE id = $1
	`, product.ID, product.Name, product.Cost, product.Price, product.UnitMode, product.WeightPerUnit,
		product.StockCount, product.StockWeight, product.UpdatedAt)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}
	updated := product
	return &updated, nil
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

const contactColumns = `id, name, phone, type, balance, last_activity_at, created_at`

func scanContact(row interface{ Scan(...any) error }) (domain.Contact, error) {
	var c domain.Contact
	var lastActivity sql.NullTime
	err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.Type, &c.Balance, &lastActivity, &c.CreatedAt)
	if err != nil {
		return domain.Contact{}, err
	}
	if lastActivity.Valid {
		at := lastActivity.Time.UTC()
		c.LastActivityAt = &at
	}
	c.CreatedAt = c.CreatedAt.UTC()
	return c, nil
}

func (s *Store) ListContacts(ctx context.Context) ([]domain.Contact, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+contactColumns+`
		FROM contacts
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contacts := make([]domain.Contact, 0, 64)
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return contacts, nil
}

func (s *Store) GetContact(ctx context.Context, id string) (*domain.Contact, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+contactColumns+`
		FROM contacts
		WHERE id = $1
	`, id)
	c, err := scanContact(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (s *Store) CreateContact(ctx context.Context, contact domain.Contact) (*domain.Contact, error) {
	if contact.ID == "" {
		contact.ID = xid.New("cnt")
	}
	if contact.CreatedAt.IsZero() {
		contact.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO contacts (id, name, phone, type, balance, last_activity_at, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, contact.ID, contact.Name, contact.Phone, contact.Type, contact.Balance, nullTimePtr(contact.LastActivityAt), contact.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrConflict
		}
		return nil, err
	}
	created := contact
	return &created, nil
}

func (s *Store) UpdateContact(ctx context.Context, contact domain.Contact) (*domain.Contact, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE contacts
		SET name = $2, phone = $3, type = $4
		WHERE id = $1
		RETURNING `+contactColumns+`
	`, contact.ID, contact.Name, contact.Phone, contact.Type)
	updated, err := scanContact(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &updated, nil
}

func (s *Store) DeleteContact(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM contacts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

const invoiceColumns = `id, type, number, COALESCE(contact_id,''), contact_name, date, items, subtotal, discount, total, status, COALESCE(cash_transaction_id,''), created_at`

func scanInvoice(row interface{ Scan(...any) error }) (domain.Invoice, error) {
	var inv domain.Invoice
	var itemsJSON []byte
	err := row.Scan(&inv.ID, &inv.Type, &inv.Number, &inv.ContactID, &inv.ContactName, &inv.Date,
		&itemsJSON, &inv.Subtotal, &inv.Discount, &inv.Total, &inv.Status, &inv.CashTransactionID, &inv.CreatedAt)
	if err != nil {
		return domain.Invoice{}, err
	}
	if err := json.Unmarshal(itemsJSON, &inv.Items); err != nil {
		return domain.Invoice{}, err
	}
	inv.Date = inv.Date.UTC()
	inv.CreatedAt = inv.CreatedAt.UTC()
	return inv, nil
}

func (s *Store) GetInvoice(ctx context.Context, id string) (*domain.Invoice, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+invoiceColumns+`
		FROM invoices
		WHERE id = $1
	`, id)
	inv, err := scanInvoice(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

func (s *Store) ListInvoices(ctx context.Context, filter domain.InvoiceFilter) ([]domain.Invoice, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+invoiceColumns+`
		FROM invoices
		WHERE ($1 = '' OR contact_id = $1)
			AND ($2 = '' OR type = $2)
			AND ($3::timestamptz IS NULL OR date >= $3)
			AND ($4::timestamptz IS NULL OR date <= $4)
		ORDER BY date DESC, id DESC
	`, filter.ContactID, string(filter.Type), nullTimePtr(filter.From), nullTimePtr(filter.To))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invoices := make([]domain.Invoice, 0, 64)
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return invoices, nil
}

const cashColumns = `id, type, amount, note, COALESCE(contact_id,''), COALESCE(invoice_id,''), date, created_at`

func scanCashTransaction(row interface{ Scan(...any) error }) (domain.CashTransaction, error) {
	var tx domain.CashTransaction
	err := row.Scan(&tx.ID, &tx.Type, &tx.Amount, &tx.Note, &tx.ContactID, &tx.InvoiceID, &tx.Date, &tx.CreatedAt)
	if err != nil {
		return domain.CashTransaction{}, err
	}
	tx.Date = tx.Date.UTC()
	tx.CreatedAt = tx.CreatedAt.UTC()
	return tx, nil
}

func (s *Store) GetCashTransaction(ctx context.Context, id string) (*domain.CashTransaction, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+cashColumns+`
		FROM cash_transactions
		WHERE id = $1
	`, id)
	tx, err := scanCashTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &tx, nil
}

func (s *Store) ListCashTransactions(ctx context.Context, contactID string, from, to *time.Time) ([]domain.CashTransaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+cashColumns+`
		FROM cash_transactions
		WHERE ($1 = '' OR contact_id = $1)
			AND ($2::timestamptz IS NULL OR date >= $2)
			AND ($3::timestamptz IS NULL OR date <= $3)
		ORDER BY date DESC, id DESC
	`, contactID, nullTimePtr(from), nullTimePtr(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	txs := make([]domain.CashTransaction, 0, 64)
	for rows.Next() {
		tx, err := scanCashTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return txs, nil
}

func (s *Store) FinancialSummary(ctx context.Context, from, to time.Time) (domain.FinancialSummary, error) {
	summary := domain.FinancialSummary{From: from, To: to}

	err := s.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN type = 'sale' THEN total END), 0),
			COALESCE(SUM(CASE WHEN type = 'purchase' THEN total END), 0),
			COUNT(*)::int
		FROM invoices
		WHERE status <> 'cancelled' AND date >= $1 AND date <= $2
	`, from, to).Scan(&summary.TotalSales, &summary.TotalPurchases, &summary.InvoiceCount)
	if err != nil {
		return summary, err
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN type = 'receipt' THEN amount END), 0),
			COALESCE(SUM(CASE WHEN type = 'payment' THEN amount END), 0),
			COALESCE(SUM(CASE WHEN type = 'expense' THEN amount END), 0),
			COUNT(*)::int
		FROM cash_transactions
		WHERE date >= $1 AND date <= $2
	`, from, to).Scan(&summary.TotalReceipts, &summary.TotalPayments, &summary.TotalExpenses, &summary.CashCount)
	if err != nil {
		return summary, err
	}

	summary.NetProfit = summary.TotalSales.Sub(summary.TotalPurchases).Sub(summary.TotalExpenses)
	return summary, nil
}

func (s *Store) InventoryValuation(ctx context.Context) (domain.InventoryValuation, error) {
	valuation := domain.InventoryValuation{
		Products:        make([]domain.InventoryValuationLine, 0, 64),
		TotalCostValue:  decimal.Zero,
		TotalPriceValue: decimal.Zero,
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, unit_mode, stock_count, stock_weight, cost, price
		FROM products
		ORDER BY name
	`)
	if err != nil {
		return valuation, err
	}
	defer rows.Close()

	for rows.Next() {
		var line domain.InventoryValuationLine
		var cost, price decimal.Decimal
		if err := rows.Scan(&line.ProductID, &line.Name, &line.UnitMode, &line.StockCount, &line.StockWeight, &cost, &price); err != nil {
			return valuation, err
		}
		line.CostValue = line.StockCount.Mul(cost)
		line.PriceValue = line.StockCount.Mul(price)
		valuation.Products = append(valuation.Products, line)
		valuation.TotalCostValue = valuation.TotalCostValue.Add(line.CostValue)
		valuation.TotalPriceValue = valuation.TotalPriceValue.Add(line.PriceValue)
	}
	if err := rows.Err(); err != nil {
		return valuation, err
	}
	valuation.TotalProducts = len(valuation.Products)
	return valuation, nil
}

func (s *Store) CashBalance(ctx context.Context) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(CASE WHEN type = 'receipt' THEN amount ELSE -amount END), 0)
		FROM cash_transactions
	`).Scan(&balance)
	if err != nil {
		return decimal.Zero, err
	}
	return balance, nil
}

// Atomically runs fn in a serializable transaction. Serialization failures
// and deadlocks surface as ErrConflict so callers can retry or report 409.
func (s *Store) Atomically(ctx context.Context, fn func(tx store.Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return err
	}
	defer func() { _ = sqlTx.Rollback() }()

	if err := fn(&pgTx{tx: sqlTx}); err != nil {
		if isSerializationFailure(err) {
			return store.ErrConflict
		}
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		if isSerializationFailure(err) {
			return store.ErrConflict
		}
		return err
	}
	return nil
}

type pgTx struct {
	tx *sql.Tx
}

func (t *pgTx) GetProductForUpdate(ctx context.Context, id string) (*domain.Product, error) {
	row := t.tx.QueryRowContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE id = $1
		FOR UPDATE
	`, id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (t *pgTx) SetProductStock(ctx context.Context, id string, count, weight decimal.Decimal, at time.Time) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE products
		SET stock_count = $2, stock_weight = $3, updated_at = $4
		WHERE id = $1
	`, id, count, weight, at)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (t *pgTx) GetContactForUpdate(ctx context.Context, id string) (*domain.Contact, error) {
	row := t.tx.QueryRowContext(ctx, `
		SELECT `+contactColumns+`
		FROM contacts
		WHERE id = $1
		FOR UPDATE
	`, id)
	c, err := scanContact(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (t *pgTx) FindContactByName(ctx context.Context, name string) (*domain.Contact, error) {
	row := t.tx.QueryRowContext(ctx, `
		SELECT `+contactColumns+`
		FROM contacts
		WHERE name = $1
		ORDER BY created_at
		LIMIT 1
		FOR UPDATE
	`, name)
	c, err := scanContact(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (t *pgTx) InsertContact(ctx context.Context, contact domain.Contact) (*domain.Contact, error) {
	if contact.ID == "" {
		contact.ID = xid.New("cnt")
	}
	if contact.CreatedAt.IsZero() {
		contact.CreatedAt = time.Now().UTC()
	}
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO contacts (id, name, phone, type, balance, last_activity_at, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, contact.ID, contact.Name, contact.Phone, contact.Type, contact.Balance, nullTimePtr(contact.LastActivityAt), contact.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrConflict
		}
		return nil, err
	}
	created := contact
	return &created, nil
}

func (t *pgTx) AddContactBalance(ctx context.Context, id string, delta decimal.Decimal, touchActivity bool, at time.Time) error {
	var res sql.Result
	var err error
	if touchActivity {
		res, err = t.tx.ExecContext(ctx, `
			UPDATE contacts
			SET balance = balance + $2, last_activity_at = $3
			WHERE id = $1
		`, id, delta, at)
	} else {
		res, err = t.tx.ExecContext(ctx, `
			UPDATE contacts
			SET balance = balance + $2
			WHERE id = $1
		`, id, delta)
	}
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (t *pgTx) NextInvoiceNumber(ctx context.Context, invoiceType domain.InvoiceType) (int64, error) {
	var seq int64
	err := t.tx.QueryRowContext(ctx, `
		INSERT INTO invoice_counters (invoice_type, seq)
		VALUES ($1, 1)
		ON CONFLICT (invoice_type)
		DO UPDATE SET seq = invoice_counters.seq + 1
		RETURNING seq
	`, string(invoiceType)).Scan(&seq)
	if err != nil {
		return 0, err
	}
	return seq, nil
}

func (t *pgTx) GetInvoice(ctx context.Context, id string) (*domain.Invoice, error) {
	row := t.tx.QueryRowContext(ctx, `
		SELECT `+invoiceColumns+`
		FROM invoices
		WHERE id = $1
		FOR UPDATE
	`, id)
	inv, err := scanInvoice(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

func (t *pgTx) InsertInvoice(ctx context.Context, invoice domain.Invoice) error {
	itemsJSON, err := json.Marshal(invoice.Items)
	if err != nil {
		return err
	}
	_, err = t.tx.ExecContext(ctx, `
		INSERT INTO invoices (id, type, number, contact_id, contact_name, date, items, subtotal, discount, total, status, cash_transaction_id, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`, invoice.ID, invoice.Type, invoice.Number, nullIfEmpty(invoice.ContactID), invoice.ContactName, invoice.Date,
		itemsJSON, invoice.Subtotal, invoice.Discount, invoice.Total, invoice.Status,
		nullIfEmpty(invoice.CashTransactionID), invoice.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrConflict
		}
		return err
	}
	return nil
}

func (t *pgTx) UpdateInvoice(ctx context.Context, invoice domain.Invoice) error {
	itemsJSON, err := json.Marshal(invoice.Items)
	if err != nil {
		return err
	}
	res, err := t.tx.ExecContext(ctx, `
		UPDATE invoices
		SET date = $2, items = $3, subtotal = $4, discount = $5, total = $6, status = $7, cash_transaction_id = $8
		WHERE id = $1
	`, invoice.ID, invoice.Date, itemsJSON, invoice.Subtotal, invoice.Discount, invoice.Total,
		invoice.Status, nullIfEmpty(invoice.CashTransactionID))
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (t *pgTx) DeleteInvoice(ctx context.Context, id string) error {
	res, err := t.tx.ExecContext(ctx, `DELETE FROM invoices WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (t *pgTx) GetCashTransaction(ctx context.Context, id string) (*domain.CashTransaction, error) {
	row := t.tx.QueryRowContext(ctx, `
		SELECT `+cashColumns+`
		FROM cash_transactions
		WHERE id = $1
		FOR UPDATE
	`, id)
	tx, err := scanCashTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &tx, nil
}

func (t *pgTx) InsertCashTransaction(ctx context.Context, tx domain.CashTransaction) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO cash_transactions (id, type, amount, note, contact_id, invoice_id, date, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, tx.ID, tx.Type, tx.Amount, tx.Note, nullIfEmpty(tx.ContactID), nullIfEmpty(tx.InvoiceID), tx.Date, tx.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrConflict
		}
		return err
	}
	return nil
}

func (t *pgTx) DeleteCashTransaction(ctx context.Context, id string) error {
	res, err := t.tx.ExecContext(ctx, `DELETE FROM cash_transactions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}
