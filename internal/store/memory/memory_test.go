package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"mizan/backend/internal/domain"
	"mizan/backend/internal/store"
)

func TestAtomicallyRollsBackOnError(t *testing.T) {
	s := New()
	ctx := context.Background()

	created, err := s.CreateProduct(ctx, domain.Product{
		Name:       "Sunflower Oil 5L",
		UnitMode:   domain.UnitModeSimple,
		StockCount: decimal.NewFromInt(10),
	})
	if err != nil {
		t.Fatalf("create product failed: %v", err)
	}

	boom := errors.New("boom")
	err = s.Atomically(ctx, func(tx store.Tx) error {
		if err := tx.SetProductStock(ctx, created.ID, decimal.NewFromInt(3), decimal.Zero, created.UpdatedAt); err != nil {
			return err
		}
		if err := tx.InsertCashTransaction(ctx, domain.CashTransaction{
			ID:     "csh-test",
			Type:   domain.CashTypeExpense,
			Amount: decimal.NewFromInt(5),
		}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected the callback error, got %v", err)
	}

	p, err := s.GetProduct(ctx, created.ID)
	if err != nil {
		t.Fatalf("get product failed: %v", err)
	}
	if !p.StockCount.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("staged stock write leaked, got %s", p.StockCount)
	}
	if _, err := s.GetCashTransaction(ctx, "csh-test"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("staged insert leaked, got %v", err)
	}
}

func TestAtomicallyCommitsOnSuccess(t *testing.T) {
	s := New()
	ctx := context.Background()

	err := s.Atomically(ctx, func(tx store.Tx) error {
		return tx.InsertCashTransaction(ctx, domain.CashTransaction{
			ID:     "csh-test",
			Type:   domain.CashTypeReceipt,
			Amount: decimal.NewFromInt(40),
		})
	})
	if err != nil {
		t.Fatalf("atomically failed: %v", err)
	}

	tx, err := s.GetCashTransaction(ctx, "csh-test")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !tx.Amount.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("unexpected amount %s", tx.Amount)
	}
}

func TestNextInvoiceNumberRunsPerType(t *testing.T) {
	s := New()
	ctx := context.Background()

	var sale1, sale2, purchase1 int64
	err := s.Atomically(ctx, func(tx store.Tx) error {
		var err error
		if sale1, err = tx.NextInvoiceNumber(ctx, domain.InvoiceTypeSale); err != nil {
			return err
		}
		if sale2, err = tx.NextInvoiceNumber(ctx, domain.InvoiceTypeSale); err != nil {
			return err
		}
		purchase1, err = tx.NextInvoiceNumber(ctx, domain.InvoiceTypePurchase)
		return err
	})
	if err != nil {
		t.Fatalf("atomically failed: %v", err)
	}
	if sale1 != 1 || sale2 != 2 || purchase1 != 1 {
		t.Fatalf("unexpected sequence: %d %d %d", sale1, sale2, purchase1)
	}
}

func TestNextInvoiceNumberRollsBackWithTheBatch(t *testing.T) {
	s := New()
	ctx := context.Background()

	boom := errors.New("boom")
	_ = s.Atomically(ctx, func(tx store.Tx) error {
		if _, err := tx.NextInvoiceNumber(ctx, domain.InvoiceTypeSale); err != nil {
			return err
		}
		return boom
	})

	var seq int64
	err := s.Atomically(ctx, func(tx store.Tx) error {
		var err error
		seq, err = tx.NextInvoiceNumber(ctx, domain.InvoiceTypeSale)
		return err
	})
	if err != nil {
		t.Fatalf("atomically failed: %v", err)
	}
	if seq != 1 {
		t.Fatalf("aborted posting must not burn a number, got %d", seq)
	}
}

func TestNewSeededHasUsableInventory(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()

	products, err := s.ListProducts(ctx)
	if err != nil {
		t.Fatalf("list products failed: %v", err)
	}
	if len(products) == 0 {
		t.Fatalf("seeded store must carry products")
	}
	for _, p := range products {
		if p.UnitMode == domain.UnitModeDual {
			want := p.StockCount.Mul(p.WeightPerUnit)
			if !p.StockWeight.Equal(want) {
				t.Fatalf("seed %q out of sync: weight %s, want %s", p.Name, p.StockWeight, want)
			}
		}
	}

	contacts, err := s.ListContacts(ctx)
	if err != nil {
		t.Fatalf("list contacts failed: %v", err)
	}
	for _, c := range contacts {
		if !c.Balance.IsZero() {
			t.Fatalf("seed contact %q must start at zero balance", c.Name)
		}
	}
}
