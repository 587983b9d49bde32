package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type UnitMode string

const (
	UnitModeSimple UnitMode = "simple"
	UnitModeDual   UnitMode = "dual"
)

type SaleUnit string

const (
	SaleUnitCount  SaleUnit = "count"
	SaleUnitWeight SaleUnit = "weight"
)

type InvoiceType string

const (
	InvoiceTypeSale     InvoiceType = "sale"
	InvoiceTypePurchase InvoiceType = "purchase"
)

type InvoiceStatus string

const (
	InvoiceStatusPending   InvoiceStatus = "pending"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

type CashTransactionType string

const (
	CashTypeReceipt CashTransactionType = "receipt"
	CashTypePayment CashTransactionType = "payment"
	CashTypeExpense CashTransactionType = "expense"
)

type ContactType string

const (
	ContactTypeCustomer ContactType = "customer"
	ContactTypeSupplier ContactType = "supplier"
)

// Product tracks stock either as a plain count (simple) or as a synchronized
// count + weight pair (dual). For dual products stock_weight always equals
// stock_count * weight_per_unit after any ledger mutation.
type Product struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Cost          decimal.Decimal `json:"cost"`
	Price         decimal.Decimal `json:"price"`
	UnitMode      UnitMode        `json:"unit_mode"`
	WeightPerUnit decimal.Decimal `json:"weight_per_unit"`
	StockCount    decimal.Decimal `json:"stock_count"`
	StockWeight   decimal.Decimal `json:"stock_weight"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type ProductCreateRequest struct {
	Name          string          `json:"name"`
	Cost          decimal.Decimal `json:"cost"`
	Price         decimal.Decimal `json:"price"`
	UnitMode      UnitMode        `json:"unit_mode"`
	WeightPerUnit decimal.Decimal `json:"weight_per_unit"`
	StockCount    decimal.Decimal `json:"stock_count"`
}

// ProductUpdateRequest accepts stock_weight so a fetched product can be sent
// back unchanged, but the value is ignored: the weight side is always derived
// from stock_count and weight_per_unit.
type ProductUpdateRequest struct {
	Name          *string          `json:"name,omitempty"`
	Cost          *decimal.Decimal `json:"cost,omitempty"`
	Price         *decimal.Decimal `json:"price,omitempty"`
	UnitMode      *UnitMode        `json:"unit_mode,omitempty"`
	WeightPerUnit *decimal.Decimal `json:"weight_per_unit,omitempty"`
	StockCount    *decimal.Decimal `json:"stock_count,omitempty"`
	StockWeight   *decimal.Decimal `json:"stock_weight,omitempty"`
}

type Contact struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Phone          string          `json:"phone"`
	Type           ContactType     `json:"type"`
	Balance        decimal.Decimal `json:"balance"`
	LastActivityAt *time.Time      `json:"last_activity_at,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

type ContactCreateRequest struct {
	Name  string      `json:"name"`
	Phone string      `json:"phone"`
	Type  ContactType `json:"type"`
}

type ContactUpdateRequest struct {
	Name  *string      `json:"name,omitempty"`
	Phone *string      `json:"phone,omitempty"`
	Type  *ContactType `json:"type,omitempty"`
}

// InvoiceItem carries posting-time snapshots of the product's name, unit price
// and weight-per-unit. Reversal depends on the snapshots, never on the
// product's current configuration.
type InvoiceItem struct {
	ProductID     string          `json:"product_id"`
	ProductName   string          `json:"product_name"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Total         decimal.Decimal `json:"total"`
	SaleUnit      SaleUnit        `json:"sale_unit"`
	WeightPerUnit decimal.Decimal `json:"weight_per_unit"`
}

type Invoice struct {
	ID                string          `json:"id"`
	Type              InvoiceType     `json:"type"`
	Number            string          `json:"number"`
	ContactID         string          `json:"contact_id"`
	ContactName       string          `json:"contact_name"`
	Date              time.Time       `json:"date"`
	Items             []InvoiceItem   `json:"items"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	Discount          decimal.Decimal `json:"discount"`
	Total             decimal.Decimal `json:"total"`
	Status            InvoiceStatus   `json:"status"`
	CashTransactionID string          `json:"cash_transaction_id,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
}

type InvoiceItemRequest struct {
	ProductID string           `json:"product_id"`
	Quantity  decimal.Decimal  `json:"quantity"`
	SaleUnit  SaleUnit         `json:"sale_unit"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
}

type InvoiceCreateRequest struct {
	Type        InvoiceType          `json:"type"`
	ContactID   string               `json:"contact_id"`
	ContactName string               `json:"contact_name"`
	Date        *time.Time           `json:"date,omitempty"`
	Items       []InvoiceItemRequest `json:"items"`
	Discount    decimal.Decimal      `json:"discount"`
	Status      InvoiceStatus        `json:"status"`
}

// InvoiceEditRequest replaces the invoice's item list wholesale; the invoice
// keeps its id, number, type and counterparty across edits.
type InvoiceEditRequest struct {
	Date     *time.Time           `json:"date,omitempty"`
	Items    []InvoiceItemRequest `json:"items"`
	Discount decimal.Decimal      `json:"discount"`
	Status   InvoiceStatus        `json:"status"`
}

type InvoiceFilter struct {
	ContactID string
	Type      InvoiceType
	From      *time.Time
	To        *time.Time
}

type CashTransaction struct {
	ID        string              `json:"id"`
	Type      CashTransactionType `json:"type"`
	Amount    decimal.Decimal     `json:"amount"`
	Note      string              `json:"note"`
	ContactID string              `json:"contact_id,omitempty"`
	InvoiceID string              `json:"invoice_id,omitempty"`
	Date      time.Time           `json:"date"`
	CreatedAt time.Time           `json:"created_at"`
}

type CashTransactionCreateRequest struct {
	Type      CashTransactionType `json:"type"`
	Amount    decimal.Decimal     `json:"amount"`
	Note      string              `json:"note"`
	ContactID string              `json:"contact_id,omitempty"`
	Date      *time.Time          `json:"date,omitempty"`
}

type FinancialSummary struct {
	From           time.Time       `json:"from"`
	To             time.Time       `json:"to"`
	TotalSales     decimal.Decimal `json:"total_sales"`
	TotalPurchases decimal.Decimal `json:"total_purchases"`
	TotalReceipts  decimal.Decimal `json:"total_receipts"`
	TotalPayments  decimal.Decimal `json:"total_payments"`
	TotalExpenses  decimal.Decimal `json:"total_expenses"`
	NetProfit      decimal.Decimal `json:"net_profit"`
	InvoiceCount   int             `json:"invoice_count"`
	CashCount      int             `json:"cash_count"`
}

type InventoryValuationLine struct {
	ProductID   string          `json:"product_id"`
	Name        string          `json:"name"`
	UnitMode    UnitMode        `json:"unit_mode"`
	StockCount  decimal.Decimal `json:"stock_count"`
	StockWeight decimal.Decimal `json:"stock_weight"`
	CostValue   decimal.Decimal `json:"cost_value"`
	PriceValue  decimal.Decimal `json:"price_value"`
}

type InventoryValuation struct {
	Products        []InventoryValuationLine `json:"products"`
	TotalProducts   int                      `json:"total_products"`
	TotalCostValue  decimal.Decimal          `json:"total_cost_value"`
	TotalPriceValue decimal.Decimal          `json:"total_price_value"`
}

type AccountStatement struct {
	Contact          Contact           `json:"contact"`
	Invoices         []Invoice         `json:"invoices"`
	CashTransactions []CashTransaction `json:"cash_transactions"`
}
