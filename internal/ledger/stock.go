// Package ledger holds the pure delta arithmetic behind invoice posting and
// reversal: stock movements for simple and dual-unit products, and the sign
// conventions for contact balances and the cash aggregate. It performs no I/O.
package ledger

import (
	"github.com/shopspring/decimal"

	"mizan/backend/internal/domain"
	"mizan/backend/internal/store"
)

// StockDelta is a signed stock movement. Unit records which side the caller
// denominated the movement in; the other side is derived from the snapshot
// weight-per-unit and is not independently validated for weight-denominated
// movements.
type StockDelta struct {
	Count  decimal.Decimal
	Weight decimal.Decimal
	Unit   domain.SaleUnit
}

// Inverse flips the delta's sign. Reversal applies the inverse of the exact
// delta posted originally, so post-then-reverse restores stock bit-for-bit.
func (d StockDelta) Inverse() StockDelta {
	return StockDelta{Count: d.Count.Neg(), Weight: d.Weight.Neg(), Unit: d.Unit}
}

// Merge combines two movements against the same product so duplicate invoice
// lines validate in aggregate. A count-denominated side wins the unit, which
// keeps both sides validated whenever any merged line named the count.
func (d StockDelta) Merge(other StockDelta) StockDelta {
	unit := d.Unit
	if other.Unit == domain.SaleUnitCount {
		unit = domain.SaleUnitCount
	}
	return StockDelta{Count: d.Count.Add(other.Count), Weight: d.Weight.Add(other.Weight), Unit: unit}
}

// DeltaFor computes the positive-magnitude stock movement for quantity qty.
// For dual products a count-denominated movement derives the weight side as
// qty * weightPerUnit, and a weight-denominated movement derives the count
// side as qty / weightPerUnit. Simple products always move by count,
// whatever sale unit the caller named.
func DeltaFor(mode domain.UnitMode, unit domain.SaleUnit, qty, weightPerUnit decimal.Decimal) (StockDelta, error) {
	if !qty.IsPositive() {
		return StockDelta{}, store.ErrInvalidInput
	}

	if mode != domain.UnitModeDual {
		return StockDelta{Count: qty, Unit: domain.SaleUnitCount}, nil
	}

	if !weightPerUnit.IsPositive() {
		return StockDelta{}, store.ErrInvalidInput
	}

	switch unit {
	case domain.SaleUnitCount:
		return StockDelta{Count: qty, Weight: qty.Mul(weightPerUnit), Unit: domain.SaleUnitCount}, nil
	case domain.SaleUnitWeight:
		return StockDelta{Count: qty.Div(weightPerUnit), Weight: qty, Unit: domain.SaleUnitWeight}, nil
	default:
		return StockDelta{}, store.ErrInvalidInput
	}
}

// Apply validates and applies a signed delta against the product's stock.
// Validation and mutation are atomic: if any check fails the product is left
// untouched and an InsufficientStockError is returned.
//
// Count-denominated movements on dual products validate both sides;
// weight-denominated movements validate weight only (count is derived).
// The product's current unit mode decides whether the weight side is
// tracked at all, so reversing a dual-era item against a product that has
// since been reconfigured as simple restores the count and drops the weight.
func Apply(p *domain.Product, d StockDelta) error {
	newCount := p.StockCount.Add(d.Count)

	if p.UnitMode != domain.UnitModeDual {
		if newCount.IsNegative() {
			return &store.InsufficientStockError{
				ProductID: p.ID,
				Unit:      domain.SaleUnitCount,
				Requested: d.Count.Abs(),
				Available: p.StockCount,
			}
		}
		p.StockCount = newCount
		return nil
	}

	newWeight := p.StockWeight.Add(d.Weight)

	if d.Unit == domain.SaleUnitCount && newCount.IsNegative() {
		return &store.InsufficientStockError{
			ProductID: p.ID,
			Unit:      domain.SaleUnitCount,
			Requested: d.Count.Abs(),
			Available: p.StockCount,
		}
	}
	if newWeight.IsNegative() {
		return &store.InsufficientStockError{
			ProductID: p.ID,
			Unit:      domain.SaleUnitWeight,
			Requested: d.Weight.Abs(),
			Available: p.StockWeight,
		}
	}

	p.StockCount = newCount
	p.StockWeight = newWeight
	return nil
}
