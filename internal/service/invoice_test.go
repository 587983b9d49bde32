package service

import (
	"context"
	"errors"
	"testing"

	"mizan/backend/internal/domain"
	"mizan/backend/internal/store"
)

func TestSaleInvoicePostsStockBalanceAndNumber(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	product := mustCreateProduct(t, svc, domain.ProductCreateRequest{
		Name:       "Sunflower Oil 5L",
		Cost:       dec("4"),
		Price:      dec("5"),
		StockCount: dec("10"),
	})
	contact := mustCreateContact(t, svc, "Al Noor Bakery", domain.ContactTypeCustomer)

	inv, err := svc.CreateInvoice(ctx, domain.InvoiceCreateRequest{
		Type:      domain.InvoiceTypeSale,
		ContactID: contact.ID,
		Items: []domain.InvoiceItemRequest{
			{ProductID: product.ID, Quantity: dec("3")},
		},
	})
	if err != nil {
		t.Fatalf("create invoice failed: %v", err)
	}

	if inv.Number != "INV-000001" {
		t.Fatalf("unexpected invoice number %s", inv.Number)
	}
	if inv.Status != domain.InvoiceStatusPending {
		t.Fatalf("expected pending default, got %s", inv.Status)
	}
	if !inv.Subtotal.Equal(dec("15")) || !inv.Total.Equal(dec("15")) {
		t.Fatalf("unexpected totals: subtotal=%s total=%s", inv.Subtotal, inv.Total)
	}

	got, err := svc.GetProduct(ctx, product.ID)
	if err != nil {
		t.Fatalf("get product failed: %v", err)
	}
	if !got.StockCount.Equal(dec("7")) {
		t.Fatalf("expected stock 7, got %s", got.StockCount)
	}

	gotContact, err := svc.GetContact(ctx, contact.ID)
	if err != nil {
		t.Fatalf("get contact failed: %v", err)
	}
	if !gotContact.Balance.Equal(dec("15")) {
		t.Fatalf("expected balance 15, got %s", gotContact.Balance)
	}
	if gotContact.LastActivityAt == nil {
		t.Fatalf("posting must touch last activity")
	}
}

func TestDeleteInvoiceRestoresStockAndBalance(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	product := mustCreateProduct(t, svc, domain.ProductCreateRequest{
		Name:       "Yeast 500g Pack",
		Price:      dec("4"),
		StockCount: dec("10"),
	})
	contact := mustCreateContact(t, svc, "Al Noor Bakery", domain.ContactTypeCustomer)

	inv, err := svc.CreateInvoice(ctx, domain.InvoiceCreateRequest{
		Type:      domain.InvoiceTypeSale,
		ContactID: contact.ID,
		Items:     []domain.InvoiceItemRequest{{ProductID: product.ID, Quantity: dec("3")}},
	})
	if err != nil {
		t.Fatalf("create invoice failed: %v", err)
	}

	if err := svc.DeleteInvoice(ctx, inv.ID); err != nil {
		t.Fatalf("delete invoice failed: %v", err)
	}

	got, _ := svc.GetProduct(ctx, product.ID)
	if !got.StockCount.Equal(dec("10")) {
		t.Fatalf("stock not restored, got %s", got.StockCount)
	}
	gotContact, _ := svc.GetContact(ctx, contact.ID)
	if !gotContact.Balance.IsZero() {
		t.Fatalf("balance not restored, got %s", gotContact.Balance)
	}
	if _, err := svc.GetInvoice(ctx, inv.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("invoice should be gone, got %v", err)
	}
}

func TestDualUnitSaleByCount(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	product := mustCreateProduct(t, svc, domain.ProductCreateRequest{
		Name:          "Wheat Flour 25kg Bag",
		Price:         dec("78"),
		UnitMode:      domain.UnitModeDual,
		WeightPerUnit: dec("25"),
		StockCount:    dec("100"),
	})

	inv, err := svc.CreateInvoice(ctx, domain.InvoiceCreateRequest{
		Type:  domain.InvoiceTypeSale,
		Items: []domain.InvoiceItemRequest{{ProductID: product.ID, Quantity: dec("4"), SaleUnit: domain.SaleUnitCount}},
	})
	if err != nil {
		t.Fatalf("create invoice failed: %v", err)
	}
	if !inv.Items[0].WeightPerUnit.Equal(dec("25")) {
		t.Fatalf("item must snapshot weight-per-unit, got %s", inv.Items[0].WeightPerUnit)
	}

	got, _ := svc.GetProduct(ctx, product.ID)
	if !got.StockCount.Equal(dec("96")) || !got.StockWeight.Equal(dec("2400")) {
		t.Fatalf("unexpected stock: %s / %s", got.StockCount, got.StockWeight)
	}
}

func TestDualUnitSaleByWeight(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	product := mustCreateProduct(t, svc, domain.ProductCreateRequest{
		Name:          "Wheat Flour 25kg Bag",
		Price:         dec("78"),
		UnitMode:      domain.UnitModeDual,
		WeightPerUnit: dec("25"),
		StockCount:    dec("100"),
	})

	inv, err := svc.CreateInvoice(ctx, domain.InvoiceCreateRequest{
		Type: domain.InvoiceTypeSale,
		Items: []domain.InvoiceItemRequest{
			{ProductID: product.ID, Quantity: dec("50"), SaleUnit: domain.SaleUnitWeight, UnitPrice: decPtr("3.2")},
		},
	})
	if err != nil {
		t.Fatalf("create invoice failed: %v", err)
	}
	if !inv.Total.Equal(dec("160")) {
		t.Fatalf("expected total 160, got %s", inv.Total)
	}

	got, _ := svc.GetProduct(ctx, product.ID)
	if !got.StockCount.Equal(dec("98")) || !got.StockWeight.Equal(dec("2450")) {
		t.Fatalf("unexpected stock: %s / %s", got.StockCount, got.StockWeight)
	}

	if err := svc.DeleteInvoice(ctx, inv.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	got, _ = svc.GetProduct(ctx, product.ID)
	if !got.StockCount.Equal(dec("100")) || !got.StockWeight.Equal(dec("2500")) {
		t.Fatalf("stock not restored exactly: %s / %s", got.StockCount, got.StockWeight)
	}
}

func TestDualUnitMixedSaleSequence(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	product := mustCreateProduct(t, svc, domain.ProductCreateRequest{
		Name:          "Wheat Flour 25kg Bag",
		Price:         dec("78"),
		UnitMode:      domain.UnitModeDual,
		WeightPerUnit: dec("25"),
		StockCount:    dec("100"),
	})

	_, err := svc.CreateInvoice(ctx, domain.InvoiceCreateRequest{
		Type:  domain.InvoiceTypeSale,
		Items: []domain.InvoiceItemRequest{{ProductID: product.ID, Quantity: dec("4"), SaleUnit: domain.SaleUnitCount}},
	})
	if err != nil {
		t.Fatalf("count sale failed: %v", err)
	}
	_, err = svc.CreateInvoice(ctx, domain.InvoiceCreateRequest{
		Type: domain.InvoiceTypeSale,
		Items: []domain.InvoiceItemRequest{
			{ProductID: product.ID, Quantity: dec("50"), SaleUnit: domain.SaleUnitWeight, UnitPrice: decPtr("3.2")},
		},
	})
	if err != nil {
		t.Fatalf("weight sale failed: %v", err)
	}

	got, _ := svc.GetProduct(ctx, product.ID)
	if !got.StockCount.Equal(dec("94")) || !got.StockWeight.Equal(dec("2350")) {
		t.Fatalf("unexpected stock after mixed sales: %s / %s", got.StockCount, got.StockWeight)
	}
}

func TestInsufficientStockLeavesNoTrace(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	product := mustCreateProduct(t, svc, domain.ProductCreateRequest{
		Name:       "Sunflower Oil 5L",
		Price:      dec("27"),
		StockCount: dec("10"),
	})
	contact := mustCreateContact(t, svc, "Al Noor Bakery", domain.ContactTypeCustomer)

	// Two lines that pass individually but overdraw together.
	_, err := svc.CreateInvoice(ctx, domain.InvoiceCreateRequest{
		Type:      domain.InvoiceTypeSale,
		ContactID: contact.ID,
		Items: []domain.InvoiceItemRequest{
			{ProductID: product.ID, Quantity: dec("6")},
			{ProductID: product.ID, Quantity: dec("6")},
		},
	})
	if !errors.Is(err, store.ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}

	got, _ := svc.GetProduct(ctx, product.ID)
	if !got.StockCount.Equal(dec("10")) {
		t.Fatalf("failed posting must not move stock, got %s", got.StockCount)
	}
	gotContact, _ := svc.GetContact(ctx, contact.ID)
	if !gotContact.Balance.IsZero() {
		t.Fatalf("failed posting must not move balance, got %s", gotContact.Balance)
	}
	invoices, _ := svc.ListInvoices(ctx, domain.InvoiceFilter{})
	if len(invoices) != 0 {
		t.Fatalf("failed posting must not store an invoice, found %d", len(invoices))
	}
}

func TestPaidInvoiceBooksSettlement(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	product := mustCreateProduct(t, svc, domain.ProductCreateRequest{
		Name:       "Yeast 500g Pack",
		Price:      dec("4"),
		StockCount: dec("20"),
	})
	contact := mustCreateContact(t, svc, "Al Noor Bakery", domain.ContactTypeCustomer)

	inv, err := svc.CreateInvoice(ctx, domain.InvoiceCreateRequest{
		Type:      domain.InvoiceTypeSale,
		ContactID: contact.ID,
		Status:    domain.InvoiceStatusPaid,
		Items:     []domain.InvoiceItemRequest{{ProductID: product.ID, Quantity: dec("5")}},
	})
	if err != nil {
		t.Fatalf("create invoice failed: %v", err)
	}
	if inv.CashTransactionID == "" {
		t.Fatalf("paid invoice must reference its settlement")
	}

	settlement, err := svc.GetCashTransaction(ctx, inv.CashTransactionID)
	if err != nil {
		t.Fatalf("get settlement failed: %v", err)
	}
	if settlement.Type != domain.CashTypeReceipt || !settlement.Amount.Equal(dec("20")) || settlement.InvoiceID != inv.ID {
		t.Fatalf("unexpected settlement: %+v", settlement)
	}

	gotContact, _ := svc.GetContact(ctx, contact.ID)
	if !gotContact.Balance.IsZero() {
		t.Fatalf("paid invoice must not move the balance, got %s", gotContact.Balance)
	}
	balance, _ := svc.CashBalance(ctx)
	if !balance.Equal(dec("20")) {
		t.Fatalf("expected cash balance 20, got %s", balance)
	}

	if err := svc.DeleteInvoice(ctx, inv.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := svc.GetCashTransaction(ctx, inv.CashTransactionID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("settlement must be removed with its invoice, got %v", err)
	}
	balance, _ = svc.CashBalance(ctx)
	if !balance.IsZero() {
		t.Fatalf("cash balance not restored, got %s", balance)
	}
}

func TestEditInvoiceReplacesEffects(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	product := mustCreateProduct(t, svc, domain.ProductCreateRequest{
		Name:       "Sunflower Oil 5L",
		Price:      dec("27"),
		StockCount: dec("10"),
	})
	contact := mustCreateContact(t, svc, "Al Noor Bakery", domain.ContactTypeCustomer)

	inv, err := svc.CreateInvoice(ctx, domain.InvoiceCreateRequest{
		Type:      domain.InvoiceTypeSale,
		ContactID: contact.ID,
		Items:     []domain.InvoiceItemRequest{{ProductID: product.ID, Quantity: dec("3")}},
	})
	if err != nil {
		t.Fatalf("create invoice failed: %v", err)
	}

	edited, err := svc.EditInvoice(ctx, inv.ID, domain.InvoiceEditRequest{
		Items: []domain.InvoiceItemRequest{{ProductID: product.ID, Quantity: dec("5")}},
	})
	if err != nil {
		t.Fatalf("edit invoice failed: %v", err)
	}
	if edited.Number != inv.Number || edited.ID != inv.ID {
		t.Fatalf("edit must keep identity: %s %s", edited.ID, edited.Number)
	}
	if !edited.Total.Equal(dec("135")) {
		t.Fatalf("expected total 135, got %s", edited.Total)
	}

	got, _ := svc.GetProduct(ctx, product.ID)
	if !got.StockCount.Equal(dec("5")) {
		t.Fatalf("expected stock 5 after edit, got %s", got.StockCount)
	}
	gotContact, _ := svc.GetContact(ctx, contact.ID)
	if !gotContact.Balance.Equal(dec("135")) {
		t.Fatalf("expected balance 135 after edit, got %s", gotContact.Balance)
	}
}

func TestEditStatusTransitionsMoveSettlement(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	product := mustCreateProduct(t, svc, domain.ProductCreateRequest{
		Name:       "Sunflower Oil 5L",
		Price:      dec("5"),
		StockCount: dec("10"),
	})
	contact := mustCreateContact(t, svc, "Al Noor Bakery", domain.ContactTypeCustomer)

	items := []domain.InvoiceItemRequest{{ProductID: product.ID, Quantity: dec("3")}}
	inv, err := svc.CreateInvoice(ctx, domain.InvoiceCreateRequest{
		Type:      domain.InvoiceTypeSale,
		ContactID: contact.ID,
		Items:     items,
	})
	if err != nil {
		t.Fatalf("create invoice failed: %v", err)
	}

	paid, err := svc.EditInvoice(ctx, inv.ID, domain.InvoiceEditRequest{
		Items:  items,
		Status: domain.InvoiceStatusPaid,
	})
	if err != nil {
		t.Fatalf("edit to paid failed: %v", err)
	}
	if paid.CashTransactionID == "" {
		t.Fatalf("paid revision must book a settlement")
	}
	settlement, err := svc.GetCashTransaction(ctx, paid.CashTransactionID)
	if err != nil {
		t.Fatalf("get settlement failed: %v", err)
	}
	if settlement.Type != domain.CashTypeReceipt || !settlement.Amount.Equal(dec("15")) || settlement.InvoiceID != inv.ID {
		t.Fatalf("unexpected settlement: %+v", settlement)
	}
	gotContact, _ := svc.GetContact(ctx, contact.ID)
	if !gotContact.Balance.IsZero() {
		t.Fatalf("paid revision must clear the receivable, got %s", gotContact.Balance)
	}

	pending, err := svc.EditInvoice(ctx, inv.ID, domain.InvoiceEditRequest{
		Items:  items,
		Status: domain.InvoiceStatusPending,
	})
	if err != nil {
		t.Fatalf("edit back to pending failed: %v", err)
	}
	if pending.CashTransactionID != "" {
		t.Fatalf("pending revision must not reference a settlement")
	}
	if _, err := svc.GetCashTransaction(ctx, paid.CashTransactionID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("settlement must be removed, got %v", err)
	}
	gotContact, _ = svc.GetContact(ctx, contact.ID)
	if !gotContact.Balance.Equal(dec("15")) {
		t.Fatalf("pending revision must re-apply the receivable, got %s", gotContact.Balance)
	}
	got, _ := svc.GetProduct(ctx, product.ID)
	if !got.StockCount.Equal(dec("7")) {
		t.Fatalf("status changes must not move stock, got %s", got.StockCount)
	}
}

func TestEditToCancelledReversesEverything(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	product := mustCreateProduct(t, svc, domain.ProductCreateRequest{
		Name:       "Sunflower Oil 5L",
		Price:      dec("27"),
		StockCount: dec("10"),
	})
	contact := mustCreateContact(t, svc, "Al Noor Bakery", domain.ContactTypeCustomer)

	inv, err := svc.CreateInvoice(ctx, domain.InvoiceCreateRequest{
		Type:      domain.InvoiceTypeSale,
		ContactID: contact.ID,
		Items:     []domain.InvoiceItemRequest{{ProductID: product.ID, Quantity: dec("4")}},
	})
	if err != nil {
		t.Fatalf("create invoice failed: %v", err)
	}

	edited, err := svc.EditInvoice(ctx, inv.ID, domain.InvoiceEditRequest{
		Items:  []domain.InvoiceItemRequest{{ProductID: product.ID, Quantity: dec("4")}},
		Status: domain.InvoiceStatusCancelled,
	})
	if err != nil {
		t.Fatalf("edit invoice failed: %v", err)
	}
	if edited.Status != domain.InvoiceStatusCancelled {
		t.Fatalf("expected cancelled status, got %s", edited.Status)
	}

	got, _ := svc.GetProduct(ctx, product.ID)
	if !got.StockCount.Equal(dec("10")) {
		t.Fatalf("cancelled invoice must hold no stock, got %s", got.StockCount)
	}
	gotContact, _ := svc.GetContact(ctx, contact.ID)
	if !gotContact.Balance.IsZero() {
		t.Fatalf("cancelled invoice must hold no balance, got %s", gotContact.Balance)
	}
	if _, err := svc.GetInvoice(ctx, inv.ID); err != nil {
		t.Fatalf("cancelled invoice must stay on record: %v", err)
	}
}

func TestInvoiceNumbersRunPerType(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	product := mustCreateProduct(t, svc, domain.ProductCreateRequest{
		Name:       "Yeast 500g Pack",
		Cost:       dec("3"),
		Price:      dec("4"),
		StockCount: dec("50"),
	})

	first, err := svc.CreateInvoice(ctx, domain.InvoiceCreateRequest{
		Type:  domain.InvoiceTypeSale,
		Items: []domain.InvoiceItemRequest{{ProductID: product.ID, Quantity: dec("1")}},
	})
	if err != nil {
		t.Fatalf("first sale failed: %v", err)
	}
	second, err := svc.CreateInvoice(ctx, domain.InvoiceCreateRequest{
		Type:  domain.InvoiceTypeSale,
		Items: []domain.InvoiceItemRequest{{ProductID: product.ID, Quantity: dec("1")}},
	})
	if err != nil {
		t.Fatalf("second sale failed: %v", err)
	}
	purchase, err := svc.CreateInvoice(ctx, domain.InvoiceCreateRequest{
		Type:  domain.InvoiceTypePurchase,
		Items: []domain.InvoiceItemRequest{{ProductID: product.ID, Quantity: dec("10")}},
	})
	if err != nil {
		t.Fatalf("purchase failed: %v", err)
	}

	if first.Number != "INV-000001" || second.Number != "INV-000002" {
		t.Fatalf("unexpected sale numbers: %s %s", first.Number, second.Number)
	}
	if purchase.Number != "PUR-000001" {
		t.Fatalf("unexpected purchase number: %s", purchase.Number)
	}
}

func TestInvoiceCreatesContactByName(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	product := mustCreateProduct(t, svc, domain.ProductCreateRequest{
		Name:       "Yeast 500g Pack",
		Cost:       dec("3"),
		StockCount: dec("0"),
	})

	inv, err := svc.CreateInvoice(ctx, domain.InvoiceCreateRequest{
		Type:        domain.InvoiceTypePurchase,
		ContactName: "City Mills Co",
		Items:       []domain.InvoiceItemRequest{{ProductID: product.ID, Quantity: dec("10")}},
	})
	if err != nil {
		t.Fatalf("create invoice failed: %v", err)
	}
	if inv.ContactID == "" {
		t.Fatalf("invoice must reference the auto-created contact")
	}

	contact, err := svc.GetContact(ctx, inv.ContactID)
	if err != nil {
		t.Fatalf("get contact failed: %v", err)
	}
	if contact.Type != domain.ContactTypeSupplier {
		t.Fatalf("purchase counterparty should default to supplier, got %s", contact.Type)
	}

	// Same name again reuses the contact instead of duplicating it.
	_, err = svc.CreateInvoice(ctx, domain.InvoiceCreateRequest{
		Type:        domain.InvoiceTypePurchase,
		ContactName: "City Mills Co",
		Items:       []domain.InvoiceItemRequest{{ProductID: product.ID, Quantity: dec("5")}},
	})
	if err != nil {
		t.Fatalf("second invoice failed: %v", err)
	}
	contacts, _ := svc.ListContacts(ctx)
	if len(contacts) != 1 {
		t.Fatalf("expected one contact, got %d", len(contacts))
	}
}

func TestPurchasePostingAndGuardedReversal(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	product := mustCreateProduct(t, svc, domain.ProductCreateRequest{
		Name:       "Sunflower Oil 5L",
		Cost:       dec("22"),
		Price:      dec("27"),
		StockCount: dec("0"),
	})
	supplier := mustCreateContact(t, svc, "City Mills Co", domain.ContactTypeSupplier)

	purchase, err := svc.CreateInvoice(ctx, domain.InvoiceCreateRequest{
		Type:      domain.InvoiceTypePurchase,
		ContactID: supplier.ID,
		Items:     []domain.InvoiceItemRequest{{ProductID: product.ID, Quantity: dec("5")}},
	})
	if err != nil {
		t.Fatalf("purchase failed: %v", err)
	}

	got, _ := svc.GetProduct(ctx, product.ID)
	if !got.StockCount.Equal(dec("5")) {
		t.Fatalf("expected stock 5 after purchase, got %s", got.StockCount)
	}
	gotSupplier, _ := svc.GetContact(ctx, supplier.ID)
	if !gotSupplier.Balance.Equal(dec("-110")) {
		t.Fatalf("expected balance -110, got %s", gotSupplier.Balance)
	}

	// Sell most of the purchased stock, then try to unwind the purchase.
	_, err = svc.CreateInvoice(ctx, domain.InvoiceCreateRequest{
		Type:   domain.InvoiceTypeSale,
		Status: domain.InvoiceStatusPaid,
		Items:  []domain.InvoiceItemRequest{{ProductID: product.ID, Quantity: dec("4")}},
	})
	if err != nil {
		t.Fatalf("sale failed: %v", err)
	}

	err = svc.DeleteInvoice(ctx, purchase.ID)
	if !errors.Is(err, store.ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock on purchase reversal, got %v", err)
	}
	got, _ = svc.GetProduct(ctx, product.ID)
	if !got.StockCount.Equal(dec("1")) {
		t.Fatalf("failed reversal must not move stock, got %s", got.StockCount)
	}
	if _, err := svc.GetInvoice(ctx, purchase.ID); err != nil {
		t.Fatalf("purchase must survive the failed delete: %v", err)
	}
}
