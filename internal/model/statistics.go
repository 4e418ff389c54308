package model

import (
	"github.com/shopspring/decimal"
)

// SummaryResponse aggregates the dashboard counters.
type SummaryResponse struct {
	ActiveRentals   int64           `json:"active_rentals"`
	ReservedRentals int64           `json:"reserved_rentals"`
	OverdueRentals  int64           `json:"overdue_rentals"`
	ReturnsDueToday int64           `json:"returns_due_today"`
	RevenuePaid     decimal.Decimal `json:"revenue_paid"`
	RevenuePending  decimal.Decimal `json:"revenue_pending"`
	TopRentedItems  []ItemRanking   `json:"top_rented_items"`
}

// ItemRanking represents a ranked item based on accumulated rented quantities.
type ItemRanking struct {
	ItemID        string   `json:"item_id"`
	ItemKind      ItemKind `json:"item_kind"`
	ItemName      string   `json:"item_name"`
	TotalQuantity int      `json:"total_quantity"`
}
