package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"mizan/backend/internal/domain"
	"mizan/backend/internal/ledger"
	"mizan/backend/internal/store"
	"mizan/backend/internal/xid"
)

func (s *Service) GetCashTransaction(ctx context.Context, id string) (domain.CashTransaction, error) {
	tx, err := s.repo.GetCashTransaction(ctx, id)
	if err != nil {
		return domain.CashTransaction{}, err
	}
	return *tx, nil
}

func (s *Service) ListCashTransactions(ctx context.Context, contactID string, from, to *time.Time) ([]domain.CashTransaction, error) {
	return s.repo.ListCashTransactions(ctx, contactID, from, to)
}

// CreateCashTransaction books a receipt, payment or expense. Receipts and
// payments may reference a contact, in which case the contact's balance moves
// atomically with the booking. Expenses never reference a contact.
func (s *Service) CreateCashTransaction(ctx context.Context, req domain.CashTransactionCreateRequest) (domain.CashTransaction, error) {
	switch req.Type {
	case domain.CashTypeReceipt, domain.CashTypePayment, domain.CashTypeExpense:
	default:
		return domain.CashTransaction{}, store.ErrInvalidInput
	}
	if !req.Amount.IsPositive() {
		return domain.CashTransaction{}, store.ErrInvalidInput
	}
	if req.Type == domain.CashTypeExpense && req.ContactID != "" {
		return domain.CashTransaction{}, store.ErrInvalidInput
	}

	now := time.Now().UTC()
	date := now
	if req.Date != nil {
		date = req.Date.UTC()
	}

	record := domain.CashTransaction{
		ID:        xid.New("csh"),
		Type:      req.Type,
		Amount:    req.Amount,
		Note:      strings.TrimSpace(req.Note),
		ContactID: req.ContactID,
		Date:      date,
		CreatedAt: now,
	}

	err := s.repo.Atomically(ctx, func(tx store.Tx) error {
		if record.ContactID != "" {
			if _, err := tx.GetContactForUpdate(ctx, record.ContactID); err != nil {
				return err
			}
			delta := ledger.ContactCashDelta(record.Type, record.Amount)
			if err := tx.AddContactBalance(ctx, record.ContactID, delta, false, now); err != nil {
				return err
			}
		}
		return tx.InsertCashTransaction(ctx, record)
	})
	if err != nil {
		return domain.CashTransaction{}, err
	}

	s.log.Info().
		Str("cash_id", record.ID).
		Str("type", string(record.Type)).
		Str("amount", record.Amount.String()).
		Msg("cash transaction booked")
	return record, nil
}

// DeleteCashTransaction removes a booking and reverses its balance effect.
// Settlement transactions belong to their invoice and can only go away by
// deleting or editing the invoice.
func (s *Service) DeleteCashTransaction(ctx context.Context, id string) error {
	now := time.Now().UTC()
	err := s.repo.Atomically(ctx, func(tx store.Tx) error {
		record, err := tx.GetCashTransaction(ctx, id)
		if err != nil {
			return err
		}
		if record.InvoiceID != "" {
			return store.ErrConflict
		}
		if record.ContactID != "" {
			_, err := tx.GetContactForUpdate(ctx, record.ContactID)
			if err == nil {
				delta := ledger.ContactCashDelta(record.Type, record.Amount).Neg()
				if err := tx.AddContactBalance(ctx, record.ContactID, delta, false, now); err != nil {
					return err
				}
			} else if !errors.Is(err, store.ErrNotFound) {
				return err
			}
		}
		return tx.DeleteCashTransaction(ctx, id)
	})
	if err != nil {
		return err
	}
	s.log.Info().Str("cash_id", id).Msg("cash transaction deleted")
	return nil
}
