// Package service holds the business rules: product and contact management,
// the invoice posting engine, the cash ledger and the reporting queries. All
// multi-record mutations run through Repository.Atomically.
package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"mizan/backend/internal/cache"
	"mizan/backend/internal/domain"
	"mizan/backend/internal/store"
)

type Service struct {
	repo      store.Repository
	reports   cache.ReportCache
	log       zerolog.Logger
	reportTTL time.Duration
}

func New(repo store.Repository, reports cache.ReportCache, logger zerolog.Logger, reportTTL time.Duration) *Service {
	if reports == nil {
		reports = cache.NoopReportCache{}
	}
	if reportTTL < time.Second {
		reportTTL = 30 * time.Second
	}

	return &Service{
		repo:      repo,
		reports:   reports,
		log:       logger,
		reportTTL: reportTTL,
	}
}

func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.repo.ListProducts(ctx)
}

func (s *Service) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	p, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	return *p, nil
}

func (s *Service) CreateProduct(ctx context.Context, req domain.ProductCreateRequest) (domain.Product, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return domain.Product{}, store.ErrInvalidInput
	}
	if req.UnitMode == "" {
		req.UnitMode = domain.UnitModeSimple
	}
	if req.UnitMode != domain.UnitModeSimple && req.UnitMode != domain.UnitModeDual {
		return domain.Product{}, store.ErrInvalidInput
	}
	if req.Cost.IsNegative() || req.Price.IsNegative() || req.StockCount.IsNegative() {
		return domain.Product{}, store.ErrInvalidInput
	}

	product := domain.Product{
		Name:       req.Name,
		Cost:       req.Cost,
		Price:      req.Price,
		UnitMode:   req.UnitMode,
		StockCount: req.StockCount,
	}
	if req.UnitMode == domain.UnitModeDual {
		if !req.WeightPerUnit.IsPositive() {
			return domain.Product{}, store.ErrInvalidInput
		}
		product.WeightPerUnit = req.WeightPerUnit
		product.StockWeight = req.StockCount.Mul(req.WeightPerUnit)
	}

	created, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		return domain.Product{}, err
	}
	s.log.Info().Str("product_id", created.ID).Str("name", created.Name).Msg("product created")
	return *created, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id string, req domain.ProductUpdateRequest) (domain.Product, error) {
	existing, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	product := *existing

	if req.Name != nil {
		product.Name = strings.TrimSpace(*req.Name)
		if product.Name == "" {
			return domain.Product{}, store.ErrInvalidInput
		}
	}
	if req.Cost != nil {
		product.Cost = *req.Cost
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.UnitMode != nil {
		product.UnitMode = *req.UnitMode
	}
	if req.WeightPerUnit != nil {
		product.WeightPerUnit = *req.WeightPerUnit
	}
	if req.StockCount != nil {
		product.StockCount = *req.StockCount
	}

	if product.UnitMode != domain.UnitModeSimple && product.UnitMode != domain.UnitModeDual {
		return domain.Product{}, store.ErrInvalidInput
	}
	if product.Cost.IsNegative() || product.Price.IsNegative() || product.StockCount.IsNegative() {
		return domain.Product{}, store.ErrInvalidInput
	}

	switch product.UnitMode {
	case domain.UnitModeDual:
		if !product.WeightPerUnit.IsPositive() {
			return domain.Product{}, store.ErrInvalidInput
		}
		// Re-derive the weight side only when the request touched stock
		// accounting. Weight-denominated sales can leave weight that is not
		// an exact multiple of weight-per-unit, and an untouched product
		// must keep it.
		if req.UnitMode != nil || req.WeightPerUnit != nil || req.StockCount != nil {
			product.StockWeight = product.StockCount.Mul(product.WeightPerUnit)
		}
	case domain.UnitModeSimple:
		product.WeightPerUnit = decimal.Zero
		product.StockWeight = decimal.Zero
	}

	updated, err := s.repo.UpdateProduct(ctx, product)
	if err != nil {
		return domain.Product{}, err
	}
	return *updated, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("product_id", id).Msg("product deleted")
	return nil
}

func (s *Service) ListContacts(ctx context.Context) ([]domain.Contact, error) {
	return s.repo.ListContacts(ctx)
}

func (s *Service) GetContact(ctx context.Context, id string) (domain.Contact, error) {
	c, err := s.repo.GetContact(ctx, id)
	if err != nil {
		return domain.Contact{}, err
	}
	return *c, nil
}

func (s *Service) CreateContact(ctx context.Context, req domain.ContactCreateRequest) (domain.Contact, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return domain.Contact{}, store.ErrInvalidInput
	}
	if req.Type == "" {
		req.Type = domain.ContactTypeCustomer
	}
	if req.Type != domain.ContactTypeCustomer && req.Type != domain.ContactTypeSupplier {
		return domain.Contact{}, store.ErrInvalidInput
	}

	contact := domain.Contact{
		Name:    req.Name,
		Phone:   strings.TrimSpace(req.Phone),
		Type:    req.Type,
		Balance: decimal.Zero,
	}
	created, err := s.repo.CreateContact(ctx, contact)
	if err != nil {
		return domain.Contact{}, err
	}
	s.log.Info().Str("contact_id", created.ID).Str("name", created.Name).Msg("contact created")
	return *created, nil
}

func (s *Service) UpdateContact(ctx context.Context, id string, req domain.ContactUpdateRequest) (domain.Contact, error) {
	existing, err := s.repo.GetContact(ctx, id)
	if err != nil {
		return domain.Contact{}, err
	}
	contact := *existing

	if req.Name != nil {
		contact.Name = strings.TrimSpace(*req.Name)
		if contact.Name == "" {
			return domain.Contact{}, store.ErrInvalidInput
		}
	}
	if req.Phone != nil {
		contact.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Type != nil {
		if *req.Type != domain.ContactTypeCustomer && *req.Type != domain.ContactTypeSupplier {
			return domain.Contact{}, store.ErrInvalidInput
		}
		contact.Type = *req.Type
	}

	updated, err := s.repo.UpdateContact(ctx, contact)
	if err != nil {
		return domain.Contact{}, err
	}
	return *updated, nil
}

func (s *Service) DeleteContact(ctx context.Context, id string) error {
	return s.repo.DeleteContact(ctx, id)
}
