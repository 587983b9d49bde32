// Package memory implements the repository against process-local maps. It is
// the dev/demo backend used when DATABASE_URL is unset, and the fixture
// backend for service tests.
package memory

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"mizan/backend/internal/domain"
	"mizan/backend/internal/ledger"
	"mizan/backend/internal/store"
	"mizan/backend/internal/xid"
)

type Store struct {
	mu         sync.RWMutex
	products   map[string]domain.Product
	contacts   map[string]domain.Contact
	invoices   map[string]domain.Invoice
	cashTxs    map[string]domain.CashTransaction
	invoiceSeq map[domain.InvoiceType]int64
}

func New() *Store {
	return &Store{
		products:   make(map[string]domain.Product),
		contacts:   make(map[string]domain.Contact),
		invoices:   make(map[string]domain.Invoice),
		cashTxs:    make(map[string]domain.CashTransaction),
		invoiceSeq: make(map[domain.InvoiceType]int64),
	}
}

// NewSeeded returns a store preloaded with a small trading inventory so the
// API is usable out of the box in dev/demo mode.
func NewSeeded() *Store {
	s := New()
	now := time.Now().UTC()

	products := []domain.Product{
		{
			ID:            xid.New("prd"),
			Name:          "Wheat Flour 25kg Bag",
			Cost:          decimal.NewFromInt(65),
			Price:         decimal.NewFromInt(78),
			UnitMode:      domain.UnitModeDual,
			WeightPerUnit: decimal.NewFromInt(25),
			StockCount:    decimal.NewFromInt(120),
			StockWeight:   decimal.NewFromInt(3000),
		},
		{
			ID:            xid.New("prd"),
			Name:          "Sugar 50kg Sack",
			Cost:          decimal.NewFromInt(140),
			Price:         decimal.NewFromInt(162),
			UnitMode:      domain.UnitModeDual,
			WeightPerUnit: decimal.NewFromInt(50),
			StockCount:    decimal.NewFromInt(40),
			StockWeight:   decimal.NewFromInt(2000),
		},
		{
			ID:         xid.New("prd"),
			Name:       "Sunflower Oil 5L",
			Cost:       decimal.NewFromInt(22),
			Price:      decimal.NewFromInt(27),
			UnitMode:   domain.UnitModeSimple,
			StockCount: decimal.NewFromInt(200),
		},
		{
			ID:         xid.New("prd"),
			Name:       "Yeast 500g Pack",
			Cost:       decimal.NewFromFloat(3.5),
			Price:      decimal.NewFromFloat(4.25),
			UnitMode:   domain.UnitModeSimple,
			StockCount: decimal.NewFromInt(80),
		},
	}
	for _, p := range products {
		p.CreatedAt = now
		p.UpdatedAt = now
		s.products[p.ID] = p
	}

	contacts := []domain.Contact{
		{ID: xid.New("cnt"), Name: "Al Noor Bakery", Phone: "0501112233", Type: domain.ContactTypeCustomer},
		{ID: xid.New("cnt"), Name: "City Mills Co", Phone: "0504445566", Type: domain.ContactTypeSupplier},
	}
	for _, c := range contacts {
		c.Balance = decimal.Zero
		c.CreatedAt = now
		s.contacts[c.ID] = c
	}

	return s
}

func (s *Store) ListProducts(_ context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		products = append(products, p)
	}
	slices.SortFunc(products, func(a, b domain.Product) int {
		return strings.Compare(a.Name, b.Name)
	})
	return products, nil
}

func (s *Store) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copyProduct := p
	return &copyProduct, nil
}

func (s *Store) CreateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if product.ID == "" {
		product.ID = xid.New("prd")
	}
	if _, exists := s.products[product.ID]; exists {
		return nil, store.ErrConflict
	}
	now := time.Now().UTC()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now

	s.products[product.ID] = product
	created := product
	return &created, nil
}

func (s *Store) UpdateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.products[product.ID]
	if !ok {
		return nil, store.ErrNotFound
	}
	product.CreatedAt = existing.CreatedAt
	product.UpdatedAt = time.Now().UTC()

	s.products[product.ID] = product
	updated := product
	return &updated, nil
}

func (s *Store) DeleteProduct(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.products, id)
	return nil
}

func (s *Store) ListContacts(_ context.Context) ([]domain.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	contacts := make([]domain.Contact, 0, len(s.contacts))
	for _, c := range s.contacts {
		contacts = append(contacts, c)
	}
	slices.SortFunc(contacts, func(a, b domain.Contact) int {
		return strings.Compare(a.Name, b.Name)
	})
	return contacts, nil
}

func (s *Store) GetContact(_ context.Context, id string) (*domain.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.contacts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copyContact := c
	return &copyContact, nil
}

func (s *Store) CreateContact(_ context.Context, contact domain.Contact) (*domain.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if contact.ID == "" {
		contact.ID = xid.New("cnt")
	}
	if _, exists := s.contacts[contact.ID]; exists {
		return nil, store.ErrConflict
	}
	if contact.CreatedAt.IsZero() {
		contact.CreatedAt = time.Now().UTC()
	}

	s.contacts[contact.ID] = contact
	created := contact
	return &created, nil
}

func (s *Store) UpdateContact(_ context.Context, contact domain.Contact) (*domain.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.contacts[contact.ID]
	if !ok {
		return nil, store.ErrNotFound
	}
	contact.Balance = existing.Balance
	contact.LastActivityAt = existing.LastActivityAt
	contact.CreatedAt = existing.CreatedAt

	s.contacts[contact.ID] = contact
	updated := contact
	return &updated, nil
}

func (s *Store) DeleteContact(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.contacts[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.contacts, id)
	return nil
}

func (s *Store) GetInvoice(_ context.Context, id string) (*domain.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inv, ok := s.invoices[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copyInvoice := cloneInvoice(inv)
	return &copyInvoice, nil
}

func (s *Store) ListInvoices(_ context.Context, filter domain.InvoiceFilter) ([]domain.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Invoice, 0, len(s.invoices))
	for _, inv := range s.invoices {
		if filter.ContactID != "" && inv.ContactID != filter.ContactID {
			continue
		}
		if filter.Type != "" && inv.Type != filter.Type {
			continue
		}
		if filter.From != nil && inv.Date.Before(*filter.From) {
			continue
		}
		if filter.To != nil && inv.Date.After(*filter.To) {
			continue
		}
		result = append(result, cloneInvoice(inv))
	}
	slices.SortFunc(result, func(a, b domain.Invoice) int {
		if a.Date.Equal(b.Date) {
			return strings.Compare(b.ID, a.ID)
		}
		if a.Date.After(b.Date) {
			return -1
		}
		return 1
	})
	return result, nil
}

func (s *Store) GetCashTransaction(_ context.Context, id string) (*domain.CashTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, ok := s.cashTxs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copyTx := tx
	return &copyTx, nil
}

func (s *Store) ListCashTransactions(_ context.Context, contactID string, from, to *time.Time) ([]domain.CashTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.CashTransaction, 0, len(s.cashTxs))
	for _, tx := range s.cashTxs {
		if contactID != "" && tx.ContactID != contactID {
			continue
		}
		if from != nil && tx.Date.Before(*from) {
			continue
		}
		if to != nil && tx.Date.After(*to) {
			continue
		}
		result = append(result, tx)
	}
	slices.SortFunc(result, func(a, b domain.CashTransaction) int {
		if a.Date.Equal(b.Date) {
			return strings.Compare(b.ID, a.ID)
		}
		if a.Date.After(b.Date) {
			return -1
		}
		return 1
	})
	return result, nil
}

func (s *Store) FinancialSummary(_ context.Context, from, to time.Time) (domain.FinancialSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary := domain.FinancialSummary{
		From:           from,
		To:             to,
		TotalSales:     decimal.Zero,
		TotalPurchases: decimal.Zero,
		TotalReceipts:  decimal.Zero,
		TotalPayments:  decimal.Zero,
		TotalExpenses:  decimal.Zero,
		NetProfit:      decimal.Zero,
	}

	for _, inv := range s.invoices {
		if inv.Status == domain.InvoiceStatusCancelled {
			continue
		}
		if inv.Date.Before(from) || inv.Date.After(to) {
			continue
		}
		summary.InvoiceCount++
		if inv.Type == domain.InvoiceTypeSale {
			summary.TotalSales = summary.TotalSales.Add(inv.Total)
		} else {
			summary.TotalPurchases = summary.TotalPurchases.Add(inv.Total)
		}
	}

	for _, tx := range s.cashTxs {
		if tx.Date.Before(from) || tx.Date.After(to) {
			continue
		}
		summary.CashCount++
		switch tx.Type {
		case domain.CashTypeReceipt:
			summary.TotalReceipts = summary.TotalReceipts.Add(tx.Amount)
		case domain.CashTypePayment:
			summary.TotalPayments = summary.TotalPayments.Add(tx.Amount)
		case domain.CashTypeExpense:
			summary.TotalExpenses = summary.TotalExpenses.Add(tx.Amount)
		}
	}

	summary.NetProfit = summary.TotalSales.Sub(summary.TotalPurchases).Sub(summary.TotalExpenses)
	return summary, nil
}

func (s *Store) InventoryValuation(_ context.Context) (domain.InventoryValuation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	valuation := domain.InventoryValuation{
		Products:        make([]domain.InventoryValuationLine, 0, len(s.products)),
		TotalCostValue:  decimal.Zero,
		TotalPriceValue: decimal.Zero,
	}

	for _, p := range s.products {
		line := domain.InventoryValuationLine{
			ProductID:   p.ID,
			Name:        p.Name,
			UnitMode:    p.UnitMode,
			StockCount:  p.StockCount,
			StockWeight: p.StockWeight,
			CostValue:   p.StockCount.Mul(p.Cost),
			PriceValue:  p.StockCount.Mul(p.Price),
		}
		valuation.Products = append(valuation.Products, line)
		valuation.TotalCostValue = valuation.TotalCostValue.Add(line.CostValue)
		valuation.TotalPriceValue = valuation.TotalPriceValue.Add(line.PriceValue)
	}
	slices.SortFunc(valuation.Products, func(a, b domain.InventoryValuationLine) int {
		return strings.Compare(a.Name, b.Name)
	})
	valuation.TotalProducts = len(valuation.Products)
	return valuation, nil
}

func (s *Store) CashBalance(_ context.Context) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	balance := decimal.Zero
	for _, tx := range s.cashTxs {
		balance = balance.Add(ledger.CashAggregateDelta(tx.Type, tx.Amount))
	}
	return balance, nil
}

// Atomically runs fn against a staged copy of every table under the write
// lock. The staged maps replace the live ones only when fn returns nil, so a
// failed posting leaves no trace.
func (s *Store) Atomically(_ context.Context, fn func(tx store.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	staged := &memTx{
		products:   maps.Clone(s.products),
		contacts:   maps.Clone(s.contacts),
		invoices:   maps.Clone(s.invoices),
		cashTxs:    maps.Clone(s.cashTxs),
		invoiceSeq: maps.Clone(s.invoiceSeq),
	}
	if err := fn(staged); err != nil {
		return err
	}

	s.products = staged.products
	s.contacts = staged.contacts
	s.invoices = staged.invoices
	s.cashTxs = staged.cashTxs
	s.invoiceSeq = staged.invoiceSeq
	return nil
}

type memTx struct {
	products   map[string]domain.Product
	contacts   map[string]domain.Contact
	invoices   map[string]domain.Invoice
	cashTxs    map[string]domain.CashTransaction
	invoiceSeq map[domain.InvoiceType]int64
}

func (t *memTx) GetProductForUpdate(_ context.Context, id string) (*domain.Product, error) {
	p, ok := t.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copyProduct := p
	return &copyProduct, nil
}

func (t *memTx) SetProductStock(_ context.Context, id string, count, weight decimal.Decimal, at time.Time) error {
	p, ok := t.products[id]
	if !ok {
		return store.ErrNotFound
	}
	p.StockCount = count
	p.StockWeight = weight
	p.UpdatedAt = at
	t.products[id] = p
	return nil
}

func (t *memTx) GetContactForUpdate(_ context.Context, id string) (*domain.Contact, error) {
	c, ok := t.contacts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copyContact := c
	return &copyContact, nil
}

func (t *memTx) FindContactByName(_ context.Context, name string) (*domain.Contact, error) {
	for _, c := range t.contacts {
		if c.Name == name {
			copyContact := c
			return &copyContact, nil
		}
	}
	return nil, store.ErrNotFound
}

func (t *memTx) InsertContact(_ context.Context, contact domain.Contact) (*domain.Contact, error) {
	if contact.ID == "" {
		contact.ID = xid.New("cnt")
	}
	if _, exists := t.contacts[contact.ID]; exists {
		return nil, store.ErrConflict
	}
	if contact.CreatedAt.IsZero() {
		contact.CreatedAt = time.Now().UTC()
	}
	t.contacts[contact.ID] = contact
	created := contact
	return &created, nil
}

func (t *memTx) AddContactBalance(_ context.Context, id string, delta decimal.Decimal, touchActivity bool, at time.Time) error {
	c, ok := t.contacts[id]
	if !ok {
		return store.ErrNotFound
	}
	c.Balance = c.Balance.Add(delta)
	if touchActivity {
		activity := at
		c.LastActivityAt = &activity
	}
	t.contacts[id] = c
	return nil
}

func (t *memTx) NextInvoiceNumber(_ context.Context, invoiceType domain.InvoiceType) (int64, error) {
	t.invoiceSeq[invoiceType]++
	return t.invoiceSeq[invoiceType], nil
}

func (t *memTx) GetInvoice(_ context.Context, id string) (*domain.Invoice, error) {
	inv, ok := t.invoices[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copyInvoice := cloneInvoice(inv)
	return &copyInvoice, nil
}

func (t *memTx) InsertInvoice(_ context.Context, invoice domain.Invoice) error {
	if _, exists := t.invoices[invoice.ID]; exists {
		return store.ErrConflict
	}
	t.invoices[invoice.ID] = cloneInvoice(invoice)
	return nil
}

func (t *memTx) UpdateInvoice(_ context.Context, invoice domain.Invoice) error {
	if _, ok := t.invoices[invoice.ID]; !ok {
		return store.ErrNotFound
	}
	t.invoices[invoice.ID] = cloneInvoice(invoice)
	return nil
}

func (t *memTx) DeleteInvoice(_ context.Context, id string) error {
	if _, ok := t.invoices[id]; !ok {
		return store.ErrNotFound
	}
	delete(t.invoices, id)
	return nil
}

func (t *memTx) GetCashTransaction(_ context.Context, id string) (*domain.CashTransaction, error) {
	tx, ok := t.cashTxs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copyTx := tx
	return &copyTx, nil
}

func (t *memTx) InsertCashTransaction(_ context.Context, tx domain.CashTransaction) error {
	if _, exists := t.cashTxs[tx.ID]; exists {
		return store.ErrConflict
	}
	t.cashTxs[tx.ID] = tx
	return nil
}

func (t *memTx) DeleteCashTransaction(_ context.Context, id string) error {
	if _, ok := t.cashTxs[id]; !ok {
		return store.ErrNotFound
	}
	delete(t.cashTxs, id)
	return nil
}

func cloneInvoice(src domain.Invoice) domain.Invoice {
	dup := src
	items := make([]domain.InvoiceItem, len(src.Items))
	copy(items, src.Items)
	dup.Items = items
	return dup
}
