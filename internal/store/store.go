package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"mizan/backend/internal/domain"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrConflict          = errors.New("conflict")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// InsufficientStockError reports which product ran short, in which unit, and
// how much was available. It matches ErrInsufficientStock under errors.Is.
type InsufficientStockError struct {
	ProductID string
	Unit      domain.SaleUnit
	Requested decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %s, available %s (%s)",
		e.ProductID, e.Requested.String(), e.Available.String(), e.Unit)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// Repository is the persistence boundary consumed by the service layer.
// Plain reads and configuration writes go through the top-level methods;
// every posting or reversal runs inside Atomically, whose callback sees an
// isolated all-or-nothing view through Tx.
type Repository interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error

	ListContacts(ctx context.Context) ([]domain.Contact, error)
	GetContact(ctx context.Context, id string) (*domain.Contact, error)
	CreateContact(ctx context.Context, contact domain.Contact) (*domain.Contact, error)
	UpdateContact(ctx context.Context, contact domain.Contact) (*domain.Contact, error)
	DeleteContact(ctx context.Context, id string) error

	GetInvoice(ctx context.Context, id string) (*domain.Invoice, error)
	ListInvoices(ctx context.Context, filter domain.InvoiceFilter) ([]domain.Invoice, error)

	GetCashTransaction(ctx context.Context, id string) (*domain.CashTransaction, error)
	ListCashTransactions(ctx context.Context, contactID string, from, to *time.Time) ([]domain.CashTransaction, error)

	FinancialSummary(ctx context.Context, from, to time.Time) (domain.FinancialSummary, error)
	InventoryValuation(ctx context.Context) (domain.InventoryValuation, error)
	CashBalance(ctx context.Context) (decimal.Decimal, error)

	Atomically(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the multi-record atomic unit used by the invoice posting engine and
// the cash transaction ledger. Implementations guarantee that either every
// write performed through the Tx commits, or none does, and that records read
// for update are isolated from concurrent units.
type Tx interface {
	GetProductForUpdate(ctx context.Context, id string) (*domain.Product, error)
	SetProductStock(ctx context.Context, id string, count, weight decimal.Decimal, at time.Time) error

	GetContactForUpdate(ctx context.Context, id string) (*domain.Contact, error)
	FindContactByName(ctx context.Context, name string) (*domain.Contact, error)
	InsertContact(ctx context.Context, contact domain.Contact) (*domain.Contact, error)
	// AddContactBalance applies a signed delta with an atomic increment.
	// touchActivity updates the contact's last-activity timestamp (invoice
	// posting only, per the balance ledger contract).
	AddContactBalance(ctx context.Context, id string, delta decimal.Decimal, touchActivity bool, at time.Time) error

	// NextInvoiceNumber increments and returns the per-type invoice sequence.
	NextInvoiceNumber(ctx context.Context, invoiceType domain.InvoiceType) (int64, error)

	GetInvoice(ctx context.Context, id string) (*domain.Invoice, error)
	InsertInvoice(ctx context.Context, invoice domain.Invoice) error
	UpdateInvoice(ctx context.Context, invoice domain.Invoice) error
	DeleteInvoice(ctx context.Context, id string) error

	GetCashTransaction(ctx context.Context, id string) (*domain.CashTransaction, error)
	InsertCashTransaction(ctx context.Context, tx domain.CashTransaction) error
	DeleteCashTransaction(ctx context.Context, id string) error
}
