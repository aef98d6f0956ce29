package stock

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gestock/internal/core/apperror"
	"gestock/internal/core/id"
	"gestock/internal/domain/catalogs/unit"
)

func testHierarchy(articleID id.ID, factors ...int64) []unit.Unit {
	units := make([]unit.Unit, 0, len(factors)+1)
	base := unit.NewBaseUnit(articleID, "Piece", "ART-P")
	units = append(units, *base)
	names := []string{"Box", "Carton", "Pallet"}
	for i, f := range factors {
		u := unit.NewUnit(articleID, names[i], i+1, decimal.NewFromInt(f), "ART-"+names[i])
		units = append(units, *u)
	}
	return units
}

func TestUnitGraph_BaseCoefficientIsOne(t *testing.T) {
	articleID := id.New()
	units := testHierarchy(articleID, 12)

	graph, err := NewUnitGraph(articleID, units)
	require.NoError(t, err)

	coef, err := graph.CoefficientToBase(units[0].ID)
	require.NoError(t, err)
	assert.True(t, coef.Equal(decimal.NewFromInt(1)), "base unit coefficient must be exactly 1")
}

func TestUnitGraph_CumulativeCoefficients(t *testing.T) {
	articleID := id.New()
	// piece -> box(12) -> carton(8): carton coefficient is 96, not 8.
	units := testHierarchy(articleID, 12, 8)

	graph, err := NewUnitGraph(articleID, units)
	require.NoError(t, err)

	box, err := graph.CoefficientToBase(units[1].ID)
	require.NoError(t, err)
	assert.True(t, box.Equal(decimal.NewFromInt(12)))

	carton, err := graph.CoefficientToBase(units[2].ID)
	require.NoError(t, err)
	assert.True(t, carton.Equal(decimal.NewFromInt(96)))
}

func TestUnitGraph_RoundTripConversion(t *testing.T) {
	articleID := id.New()
	units := testHierarchy(articleID, 12, 8)
	graph, err := NewUnitGraph(articleID, units)
	require.NoError(t, err)

	// Convert 7 cartons to boxes and back; must round-trip within tolerance.
	qty := decimal.NewFromInt(7)
	base, err := graph.ToBase(units[2].ID, qty)
	require.NoError(t, err)

	inBoxes, err := graph.FromBase(units[1].ID, base)
	require.NoError(t, err)

	backToBase, err := graph.ToBase(units[1].ID, inBoxes)
	require.NoError(t, err)

	roundTripped, err := graph.FromBase(units[2].ID, backToBase)
	require.NoError(t, err)

	diff := roundTripped.Sub(qty).Abs()
	assert.True(t, diff.LessThan(decimal.New(1, -6)),
		"round trip drifted by %s", diff)
}

func TestUnitGraph_NoUnitsDefined(t *testing.T) {
	_, err := NewUnitGraph(id.New(), nil)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeNoUnitsDefined))
}

func TestUnitGraph_InvalidConversionFactor(t *testing.T) {
	articleID := id.New()
	units := testHierarchy(articleID, 12)
	units[1].ConversionFactor = decimal.Zero

	_, err := NewUnitGraph(articleID, units)
	require.Error(t, err, "a zero factor must fail, never yield a silent 0 or inf")
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidConversionFactor))

	units[1].ConversionFactor = decimal.NewFromInt(-3)
	_, err = NewUnitGraph(articleID, units)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidConversionFactor))
}

func TestUnitGraph_NonContiguousLevels(t *testing.T) {
	articleID := id.New()
	units := testHierarchy(articleID, 12)
	units[1].Level = 2 // hole at level 1

	_, err := NewUnitGraph(articleID, units)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestUnitGraph_UnknownUnit(t *testing.T) {
	articleID := id.New()
	graph, err := NewUnitGraph(articleID, testHierarchy(articleID, 12))
	require.NoError(t, err)

	_, err = graph.CoefficientToBase(id.New())
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestUnitGraph_FractionalFactors(t *testing.T) {
	articleID := id.New()
	units := testHierarchy(articleID)
	half := unit.NewUnit(articleID, "HalfDozen", 1, decimal.RequireFromString("6.5"), "ART-HD")
	units = append(units, *half)

	graph, err := NewUnitGraph(articleID, units)
	require.NoError(t, err)

	base, err := graph.ToBase(half.ID, decimal.NewFromInt(2))
	require.NoError(t, err)
	assert.True(t, base.Equal(decimal.RequireFromString("13")))
}
