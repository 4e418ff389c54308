package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"rental-backend/internal/model"
)

// Days returns the inclusive rental day count between start and end:
// Jan 1 to Jan 3 is 3 days, same-day rentals count as 1. Never less than 1.
func Days(start, end time.Time) int {
	days := int(end.Sub(start).Hours()/24) + 1
	if end.Sub(start)%(24*time.Hour) > 0 {
		days++
	}
	if days < 1 {
		return 1
	}
	return days
}

// LineTotal computes the total for one transaction line. Sale-kind lines
// (decorations) are never day-multiplied; they are consumed, not booked.
func LineTotal(unitPrice decimal.Decimal, qty, days int, kind model.ItemKind) decimal.Decimal {
	total := unitPrice.Mul(decimal.NewFromInt(int64(qty)))
	if kind == model.ItemKindDecoration {
		return total
	}
	return total.Mul(decimal.NewFromInt(int64(days)))
}
