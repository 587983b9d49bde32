package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"mizan/backend/internal/domain"
)

// FinancialSummary aggregates invoice and cash totals for a period. Results
// are cached briefly; the numbers behind a dashboard tile can lag a few
// seconds without anyone noticing.
func (s *Service) FinancialSummary(ctx context.Context, from, to time.Time) (domain.FinancialSummary, error) {
	if to.IsZero() {
		to = time.Now().UTC()
	}
	if from.IsZero() {
		from = to.AddDate(0, -1, 0)
	}

	key := fmt.Sprintf("report:financial:%d:%d", from.Unix(), to.Unix())
	var cached domain.FinancialSummary
	if s.fromCache(ctx, key, &cached) {
		return cached, nil
	}

	summary, err := s.repo.FinancialSummary(ctx, from, to)
	if err != nil {
		return domain.FinancialSummary{}, err
	}
	s.toCache(ctx, key, summary)
	return summary, nil
}

func (s *Service) InventoryValuation(ctx context.Context) (domain.InventoryValuation, error) {
	const key = "report:inventory"
	var cached domain.InventoryValuation
	if s.fromCache(ctx, key, &cached) {
		return cached, nil
	}

	valuation, err := s.repo.InventoryValuation(ctx)
	if err != nil {
		return domain.InventoryValuation{}, err
	}
	s.toCache(ctx, key, valuation)
	return valuation, nil
}

func (s *Service) CashBalance(ctx context.Context) (decimal.Decimal, error) {
	return s.repo.CashBalance(ctx)
}

// AccountStatement returns a contact's current balance together with the
// invoices and cash transactions behind it. Not cached: the statement is the
// one report a user reads right after posting something.
func (s *Service) AccountStatement(ctx context.Context, contactID string, from, to *time.Time) (domain.AccountStatement, error) {
	contact, err := s.repo.GetContact(ctx, contactID)
	if err != nil {
		return domain.AccountStatement{}, err
	}

	invoices, err := s.repo.ListInvoices(ctx, domain.InvoiceFilter{
		ContactID: contactID,
		From:      from,
		To:        to,
	})
	if err != nil {
		return domain.AccountStatement{}, err
	}

	cashTxs, err := s.repo.ListCashTransactions(ctx, contactID, from, to)
	if err != nil {
		return domain.AccountStatement{}, err
	}

	return domain.AccountStatement{
		Contact:          *contact,
		Invoices:         invoices,
		CashTransactions: cashTxs,
	}, nil
}

func (s *Service) fromCache(ctx context.Context, key string, out any) bool {
	payload, ok, err := s.reports.Get(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("report cache read failed")
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(payload, out); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("report cache payload corrupt")
		return false
	}
	return true
}

func (s *Service) toCache(ctx context.Context, key string, value any) {
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.reports.Set(ctx, key, payload, s.reportTTL); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("report cache write failed")
	}
}
