package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"mizan/backend/internal/domain"
	"mizan/backend/internal/ledger"
	"mizan/backend/internal/store"
	"mizan/backend/internal/xid"
)

func (s *Service) GetInvoice(ctx context.Context, id string) (domain.Invoice, error) {
	inv, err := s.repo.GetInvoice(ctx, id)
	if err != nil {
		return domain.Invoice{}, err
	}
	return *inv, nil
}

func (s *Service) ListInvoices(ctx context.Context, filter domain.InvoiceFilter) ([]domain.Invoice, error) {
	if filter.Type != "" && filter.Type != domain.InvoiceTypeSale && filter.Type != domain.InvoiceTypePurchase {
		return nil, store.ErrInvalidInput
	}
	return s.repo.ListInvoices(ctx, filter)
}

// CreateInvoice posts a new invoice: it snapshots every line against the
// current product catalog, moves stock, applies the balance effect for
// pending invoices, and books a settlement cash transaction for paid ones.
// Everything happens in one atomic unit; any failure leaves no effects.
func (s *Service) CreateInvoice(ctx context.Context, req domain.InvoiceCreateRequest) (domain.Invoice, error) {
	if req.Type != domain.InvoiceTypeSale && req.Type != domain.InvoiceTypePurchase {
		return domain.Invoice{}, store.ErrInvalidInput
	}
	if req.Status == "" {
		req.Status = domain.InvoiceStatusPending
	}
	if !validInvoiceStatus(req.Status) {
		return domain.Invoice{}, store.ErrInvalidInput
	}

	now := time.Now().UTC()
	date := now
	if req.Date != nil {
		date = req.Date.UTC()
	}

	var created domain.Invoice
	err := s.repo.Atomically(ctx, func(tx store.Tx) error {
		contactID, contactName, err := s.resolveContact(ctx, tx, req.ContactID, req.ContactName, req.Type)
		if err != nil {
			return err
		}

		seq, err := tx.NextInvoiceNumber(ctx, req.Type)
		if err != nil {
			return err
		}

		inv := domain.Invoice{
			ID:          xid.New("inv"),
			Type:        req.Type,
			Number:      formatInvoiceNumber(req.Type, seq),
			ContactID:   contactID,
			ContactName: contactName,
			Date:        date,
			Discount:    req.Discount,
			Status:      req.Status,
			CreatedAt:   now,
		}
		if err := s.post(ctx, tx, &inv, req.Items, now); err != nil {
			return err
		}
		if err := tx.InsertInvoice(ctx, inv); err != nil {
			return err
		}
		created = inv
		return nil
	})
	if err != nil {
		return domain.Invoice{}, err
	}

	s.log.Info().
		Str("invoice_id", created.ID).
		Str("number", created.Number).
		Str("type", string(created.Type)).
		Str("status", string(created.Status)).
		Str("total", created.Total.String()).
		Msg("invoice posted")
	return created, nil
}

// EditInvoice replaces an invoice's date, items, discount and status. The
// stored effects of the old revision are reversed and the new revision is
// posted from scratch, so the result is identical to delete-then-create
// except that the id, number and counterparty survive.
func (s *Service) EditInvoice(ctx context.Context, id string, req domain.InvoiceEditRequest) (domain.Invoice, error) {
	if req.Status != "" && !validInvoiceStatus(req.Status) {
		return domain.Invoice{}, store.ErrInvalidInput
	}

	now := time.Now().UTC()
	var edited domain.Invoice
	err := s.repo.Atomically(ctx, func(tx store.Tx) error {
		old, err := tx.GetInvoice(ctx, id)
		if err != nil {
			return err
		}
		if err := s.reverse(ctx, tx, *old, now); err != nil {
			return err
		}

		next := *old
		next.Items = nil
		next.CashTransactionID = ""
		next.Discount = req.Discount
		if req.Date != nil {
			next.Date = req.Date.UTC()
		}
		if req.Status != "" {
			next.Status = req.Status
		}

		if err := s.post(ctx, tx, &next, req.Items, now); err != nil {
			return err
		}
		if err := tx.UpdateInvoice(ctx, next); err != nil {
			return err
		}
		edited = next
		return nil
	})
	if err != nil {
		return domain.Invoice{}, err
	}

	s.log.Info().
		Str("invoice_id", edited.ID).
		Str("number", edited.Number).
		Str("status", string(edited.Status)).
		Msg("invoice edited")
	return edited, nil
}

// DeleteInvoice reverses every stored effect of the invoice and removes the
// record.
func (s *Service) DeleteInvoice(ctx context.Context, id string) error {
	now := time.Now().UTC()
	err := s.repo.Atomically(ctx, func(tx store.Tx) error {
		inv, err := tx.GetInvoice(ctx, id)
		if err != nil {
			return err
		}
		if err := s.reverse(ctx, tx, *inv, now); err != nil {
			return err
		}
		return tx.DeleteInvoice(ctx, id)
	})
	if err != nil {
		return err
	}
	s.log.Info().Str("invoice_id", id).Msg("invoice deleted")
	return nil
}

// resolveContact locks the named contact for the posting, creating it on the
// fly when only a name is given. An empty id and name means a walk-in
// counterparty with no ledger account.
func (s *Service) resolveContact(ctx context.Context, tx store.Tx, contactID, contactName string, invoiceType domain.InvoiceType) (string, string, error) {
	if contactID != "" {
		contact, err := tx.GetContactForUpdate(ctx, contactID)
		if err != nil {
			return "", "", err
		}
		return contact.ID, contact.Name, nil
	}

	contactName = strings.TrimSpace(contactName)
	if contactName == "" {
		return "", "", nil
	}

	contact, err := tx.FindContactByName(ctx, contactName)
	if err == nil {
		return contact.ID, contact.Name, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return "", "", err
	}

	contactType := domain.ContactTypeCustomer
	if invoiceType == domain.InvoiceTypePurchase {
		contactType = domain.ContactTypeSupplier
	}
	created, err := tx.InsertContact(ctx, domain.Contact{
		Name:    contactName,
		Type:    contactType,
		Balance: decimal.Zero,
	})
	if err != nil {
		return "", "", err
	}
	return created.ID, created.Name, nil
}

type productPosting struct {
	product *domain.Product
	delta   ledger.StockDelta
	loaded  bool
}

// post fills in the invoice's items and totals from the request lines and
// applies stock, balance and settlement effects for the invoice's status. A
// cancelled invoice is recorded with zero effects.
func (s *Service) post(ctx context.Context, tx store.Tx, inv *domain.Invoice, lines []domain.InvoiceItemRequest, now time.Time) error {
	if len(lines) == 0 {
		return store.ErrInvalidInput
	}
	if inv.Discount.IsNegative() {
		return store.ErrInvalidInput
	}

	postings := make(map[string]*productPosting)
	order := make([]string, 0, len(lines))
	items := make([]domain.InvoiceItem, 0, len(lines))
	subtotal := decimal.Zero

	for _, line := range lines {
		if line.ProductID == "" || !line.Quantity.IsPositive() {
			return store.ErrInvalidInput
		}

		entry, ok := postings[line.ProductID]
		if !ok {
			product, err := tx.GetProductForUpdate(ctx, line.ProductID)
			if err != nil {
				return err
			}
			entry = &productPosting{product: product}
			postings[line.ProductID] = entry
			order = append(order, line.ProductID)
		}
		product := entry.product

		unit := line.SaleUnit
		if unit == "" || product.UnitMode != domain.UnitModeDual {
			unit = domain.SaleUnitCount
		}
		if unit != domain.SaleUnitCount && unit != domain.SaleUnitWeight {
			return store.ErrInvalidInput
		}

		unitPrice := product.Price
		if inv.Type == domain.InvoiceTypePurchase {
			unitPrice = product.Cost
		}
		if line.UnitPrice != nil {
			if line.UnitPrice.IsNegative() {
				return store.ErrInvalidInput
			}
			unitPrice = *line.UnitPrice
		}

		delta, err := ledger.DeltaFor(product.UnitMode, unit, line.Quantity, product.WeightPerUnit)
		if err != nil {
			return err
		}
		if inv.Type == domain.InvoiceTypeSale {
			delta = delta.Inverse()
		}
		if entry.loaded {
			entry.delta = entry.delta.Merge(delta)
		} else {
			entry.delta = delta
			entry.loaded = true
		}

		item := domain.InvoiceItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    line.Quantity,
			UnitPrice:   unitPrice,
			Total:       line.Quantity.Mul(unitPrice),
			SaleUnit:    unit,
		}
		if product.UnitMode == domain.UnitModeDual {
			item.WeightPerUnit = product.WeightPerUnit
		}
		items = append(items, item)
		subtotal = subtotal.Add(item.Total)
	}

	if inv.Discount.GreaterThan(subtotal) {
		return store.ErrInvalidInput
	}
	inv.Items = items
	inv.Subtotal = subtotal
	inv.Total = subtotal.Sub(inv.Discount)

	if inv.Status == domain.InvoiceStatusCancelled {
		return nil
	}

	for _, id := range order {
		entry := postings[id]
		if err := ledger.Apply(entry.product, entry.delta); err != nil {
			return err
		}
		if err := tx.SetProductStock(ctx, id, entry.product.StockCount, entry.product.StockWeight, now); err != nil {
			return err
		}
	}

	if inv.ContactID != "" {
		balanceDelta := decimal.Zero
		if inv.Status == domain.InvoiceStatusPending {
			balanceDelta = ledger.InvoiceBalanceDelta(inv.Type, inv.Total)
		}
		if err := tx.AddContactBalance(ctx, inv.ContactID, balanceDelta, true, now); err != nil {
			return err
		}
	}

	if inv.Status == domain.InvoiceStatusPaid {
		settlement := domain.CashTransaction{
			ID:        xid.New("csh"),
			Type:      settlementCashType(inv.Type),
			Amount:    inv.Total,
			Note:      "settlement for " + inv.Number,
			InvoiceID: inv.ID,
			Date:      inv.Date,
			CreatedAt: now,
		}
		if err := tx.InsertCashTransaction(ctx, settlement); err != nil {
			return err
		}
		inv.CashTransactionID = settlement.ID
	}

	return nil
}

// reverse undoes the stored effects of an invoice using its item snapshots.
// Products deleted since posting are skipped; a purchase reversal that would
// drive stock negative aborts so the books never show negative inventory.
func (s *Service) reverse(ctx context.Context, tx store.Tx, inv domain.Invoice, now time.Time) error {
	if inv.Status == domain.InvoiceStatusCancelled {
		return nil
	}

	postings := make(map[string]*productPosting)
	order := make([]string, 0, len(inv.Items))

	for _, item := range inv.Items {
		entry, ok := postings[item.ProductID]
		if !ok {
			product, err := tx.GetProductForUpdate(ctx, item.ProductID)
			if errors.Is(err, store.ErrNotFound) {
				postings[item.ProductID] = &productPosting{}
				continue
			}
			if err != nil {
				return err
			}
			entry = &productPosting{product: product}
			postings[item.ProductID] = entry
			order = append(order, item.ProductID)
		}
		if entry.product == nil {
			continue
		}

		mode := domain.UnitModeSimple
		if item.WeightPerUnit.IsPositive() {
			mode = domain.UnitModeDual
		}
		delta, err := ledger.DeltaFor(mode, item.SaleUnit, item.Quantity, item.WeightPerUnit)
		if err != nil {
			return err
		}
		// Reversal restores stock for sales and takes it back for purchases.
		if inv.Type == domain.InvoiceTypePurchase {
			delta = delta.Inverse()
		}
		if entry.loaded {
			entry.delta = entry.delta.Merge(delta)
		} else {
			entry.delta = delta
			entry.loaded = true
		}
	}

	for _, id := range order {
		entry := postings[id]
		if err := ledger.Apply(entry.product, entry.delta); err != nil {
			return err
		}
		if err := tx.SetProductStock(ctx, id, entry.product.StockCount, entry.product.StockWeight, now); err != nil {
			return err
		}
	}

	if inv.Status == domain.InvoiceStatusPending && inv.ContactID != "" {
		_, err := tx.GetContactForUpdate(ctx, inv.ContactID)
		if err == nil {
			delta := ledger.InvoiceBalanceDelta(inv.Type, inv.Total).Neg()
			if err := tx.AddContactBalance(ctx, inv.ContactID, delta, false, now); err != nil {
				return err
			}
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}
	}

	if inv.CashTransactionID != "" {
		err := tx.DeleteCashTransaction(ctx, inv.CashTransactionID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
	}

	return nil
}

func validInvoiceStatus(status domain.InvoiceStatus) bool {
	switch status {
	case domain.InvoiceStatusPending, domain.InvoiceStatusPaid, domain.InvoiceStatusCancelled:
		return true
	}
	return false
}

func settlementCashType(t domain.InvoiceType) domain.CashTransactionType {
	if t == domain.InvoiceTypePurchase {
		return domain.CashTypePayment
	}
	return domain.CashTypeReceipt
}

func formatInvoiceNumber(t domain.InvoiceType, seq int64) string {
	prefix := "INV"
	if t == domain.InvoiceTypePurchase {
		prefix = "PUR"
	}
	return fmt.Sprintf("%s-%06d", prefix, seq)
}
