package cart

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rental-backend/internal/model"
)

func rentalItem(name string, price int64) model.Item {
	return model.Item{
		ID:          uuid.New(),
		Kind:        model.ItemKindRental,
		Name:        name,
		RentalPrice: decimal.NewFromInt(price),
	}
}

func decorationItem(name string, price int64) model.Item {
	return model.Item{
		ID:          uuid.New(),
		Kind:        model.ItemKindDecoration,
		Name:        name,
		RentalPrice: decimal.NewFromInt(price),
	}
}

func TestAddMergesSameItem(t *testing.T) {
	c := New()
	item := rentalItem("Tent", 100)

	require.NoError(t, c.Add(item, 2, 3))
	require.NoError(t, c.Add(item, 1, 3))

	require.Equal(t, 1, c.Len())
	line := c.Lines()[0]
	assert.Equal(t, 3, line.Quantity)
	assert.True(t, line.Subtotal.Equal(decimal.NewFromInt(900)), "subtotal %s", line.Subtotal)
}

func TestAddRejectsBadInput(t *testing.T) {
	c := New()
	assert.ErrorIs(t, c.Add(model.Item{}, 1, 1), ErrNoItem)
	assert.ErrorIs(t, c.Add(rentalItem("Tent", 100), 0, 1), ErrBadQuantity)
	assert.Equal(t, 0, c.Len())
}

func TestSaleLineNotDayMultiplied(t *testing.T) {
	c := New()
	require.NoError(t, c.Add(decorationItem("Balloons", 25), 4, 5))

	line := c.Lines()[0]
	assert.Equal(t, 0, line.Days)
	assert.True(t, line.Subtotal.Equal(decimal.NewFromInt(100)), "subtotal %s", line.Subtotal)
}

func TestRemove(t *testing.T) {
	c := New()
	require.NoError(t, c.Add(rentalItem("Tent", 100), 1, 1))
	require.NoError(t, c.Add(rentalItem("Chair", 10), 4, 1))

	assert.ErrorIs(t, c.Remove(5), ErrBadIndex)
	require.NoError(t, c.Remove(0))
	require.Equal(t, 1, c.Len())
	assert.Equal(t, "Chair", c.Lines()[0].ItemName)
}

func TestRecalculateForDates(t *testing.T) {
	c := New()
	require.NoError(t, c.Add(rentalItem("Tent", 100), 1, 2))
	require.NoError(t, c.Add(decorationItem("Balloons", 25), 2, 2))

	start := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	require.NoError(t, c.RecalculateForDates(start, end))

	assert.Equal(t, 5, c.Lines()[0].Days)
	assert.True(t, c.Lines()[0].Subtotal.Equal(decimal.NewFromInt(500)))
	// Sale line untouched.
	assert.Equal(t, 0, c.Lines()[1].Days)
	assert.True(t, c.Lines()[1].Subtotal.Equal(decimal.NewFromInt(50)))
}

func TestRecalculateInvertedRangeLeavesCartUntouched(t *testing.T) {
	c := New()
	require.NoError(t, c.Add(rentalItem("Tent", 100), 1, 2))
	before := c.Lines()[0].Subtotal

	start := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	assert.ErrorIs(t, c.RecalculateForDates(start, end), ErrBadDates)
	assert.True(t, c.Lines()[0].Subtotal.Equal(before))
	assert.Equal(t, 2, c.Lines()[0].Days)
}

func TestRecalculateEmptyCartIsNoop(t *testing.T) {
	c := New()
	assert.NoError(t, c.RecalculateForDates(time.Now(), time.Now().AddDate(0, 0, -1)))
}

func TestTotal(t *testing.T) {
	c := New()
	require.NoError(t, c.Add(rentalItem("Tent", 100), 1, 3))
	require.NoError(t, c.Add(decorationItem("Balloons", 25), 2, 3))
	assert.True(t, c.Total().Equal(decimal.NewFromInt(350)), "total %s", c.Total())
}
