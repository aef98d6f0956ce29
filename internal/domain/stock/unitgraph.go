// Package stock implements the stock computation engine: the unit-hierarchy
// resolver, the multi-source movement aggregation and the inventory-snapshot
// anchoring rule that together produce a quantity for any
// (article, unit, warehouse) tuple.
package stock

import (
	"github.com/shopspring/decimal"

	"gestock/internal/core/apperror"
	"gestock/internal/core/id"
	"gestock/internal/domain/catalogs/unit"
)

// UnitGraph holds the packaging hierarchy of one article and the cumulative
// conversion coefficient of every unit to the article's base unit.
//
// The coefficient of a non-base unit is NOT its own conversion factor: it is
// the product of factors from level 1 up through the unit's level
// (piece -> box(12) -> carton(8) gives the carton a coefficient of 96).
type UnitGraph struct {
	articleID id.ID
	units     []unit.Unit // ordered by level ascending
	coefs     map[id.ID]decimal.Decimal
}

// NewUnitGraph builds the graph from an article's units, which must be
// ordered by level ascending (the repository contract).
//
// Fails with NO_UNITS_DEFINED when units is empty and with
// INVALID_CONVERSION_FACTOR when any non-base level carries a factor <= 0.
// Levels must be contiguous starting at 0 with exactly one base unit.
func NewUnitGraph(articleID id.ID, units []unit.Unit) (*UnitGraph, error) {
	if len(units) == 0 {
		return nil, apperror.NewNoUnitsDefined(articleID)
	}

	coefs := make(map[id.ID]decimal.Decimal, len(units))
	coef := decimal.NewFromInt(1)

	for i, u := range units {
		if u.Level != i {
			return nil, apperror.NewValidation("unit levels must be contiguous starting at 0").
				WithDetail("article_id", articleID).
				WithDetail("level", u.Level).
				WithDetail("expected", i)
		}

		if u.Level > 0 {
			if !u.ConversionFactor.IsPositive() {
				return nil, apperror.NewInvalidConversionFactor(articleID, u.ID, u.ConversionFactor.String())
			}
			coef = coef.Mul(u.ConversionFactor)
		}

		coefs[u.ID] = coef
	}

	return &UnitGraph{
		articleID: articleID,
		units:     units,
		coefs:     coefs,
	}, nil
}

// ArticleID returns the owning article.
func (g *UnitGraph) ArticleID() id.ID {
	return g.articleID
}

// Units returns the hierarchy ordered by level, base first.
func (g *UnitGraph) Units() []unit.Unit {
	return g.units
}

// BaseUnit returns the level-0 unit.
func (g *UnitGraph) BaseUnit() unit.Unit {
	return g.units[0]
}

// CoefficientToBase returns the multiplier converting a quantity expressed
// in the given unit into the base unit. The base unit's coefficient is
// exactly 1.
func (g *UnitGraph) CoefficientToBase(unitID id.ID) (decimal.Decimal, error) {
	coef, ok := g.coefs[unitID]
	if !ok {
		return decimal.Zero, apperror.NewNotFound("unit", unitID).
			WithDetail("article_id", g.articleID)
	}
	return coef, nil
}

// ToBase converts a quantity from the given unit into base units.
func (g *UnitGraph) ToBase(unitID id.ID, qty decimal.Decimal) (decimal.Decimal, error) {
	coef, err := g.CoefficientToBase(unitID)
	if err != nil {
		return decimal.Zero, err
	}
	return qty.Mul(coef), nil
}

// FromBase converts a quantity in base units into the given unit.
// Coefficients are validated positive at construction, so the division is
// safe; the guard stays to keep a malformed graph from dividing by zero.
func (g *UnitGraph) FromBase(unitID id.ID, baseQty decimal.Decimal) (decimal.Decimal, error) {
	coef, err := g.CoefficientToBase(unitID)
	if err != nil {
		return decimal.Zero, err
	}
	if !coef.IsPositive() {
		return decimal.Zero, apperror.NewInvalidConversionFactor(g.articleID, unitID, coef.String())
	}
	return baseQty.DivRound(coef, conversionScale), nil
}

// conversionScale bounds division precision; storage is NUMERIC(15,4) but
// intermediate results keep a few guard digits for round-tripping.
const conversionScale = 8
