package pricing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"rental-backend/internal/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDaysInclusive(t *testing.T) {
	cases := []struct {
		name  string
		start time.Time
		end   time.Time
		want  int
	}{
		{"same day", day(2026, 3, 10), day(2026, 3, 10), 1},
		{"one night", day(2026, 3, 10), day(2026, 3, 11), 2},
		{"ten day span", day(2026, 3, 10), day(2026, 3, 19), 10},
		{"end before start", day(2026, 3, 10), day(2026, 3, 8), 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Days(tc.start, tc.end); got != tc.want {
				t.Fatalf("Days(%s, %s) = %d, want %d", tc.start.Format("2006-01-02"), tc.end.Format("2006-01-02"), got, tc.want)
			}
		})
	}
}

func TestDaysPartialDayRoundsUp(t *testing.T) {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 11, 15, 0, 0, 0, time.UTC)
	// 30 hours: one full day plus a partial, inclusive count rounds up.
	if got := Days(start, end); got != 3 {
		t.Fatalf("Days over 30h = %d, want 3", got)
	}
}

func TestLineTotalRentalMultipliesDays(t *testing.T) {
	price := decimal.NewFromInt(150)
	got := LineTotal(price, 2, 3, model.ItemKindRental)
	if want := decimal.NewFromInt(900); !got.Equal(want) {
		t.Fatalf("LineTotal = %s, want %s", got, want)
	}
}

func TestLineTotalSaleIgnoresDays(t *testing.T) {
	price := decimal.NewFromInt(40)
	got := LineTotal(price, 5, 7, model.ItemKindDecoration)
	if want := decimal.NewFromInt(200); !got.Equal(want) {
		t.Fatalf("LineTotal = %s, want %s; sale lines must not be day-multiplied", got, want)
	}
}
