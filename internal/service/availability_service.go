package service

import (
	"context"
	"time"

	"rental-backend/internal/model"
	"rental-backend/internal/repository"

	"github.com/google/uuid"
)

// AvailabilityResult is the outcome of a date-range availability check.
type AvailabilityResult struct {
	Available    bool   `json:"available"`
	AvailableQty int    `json:"available_qty"`
	Committed    int    `json:"committed"`
	Reason       string `json:"reason,omitempty"`
}

// AvailabilityService answers whether enough units of an item are free
// across a whole date range.
//
// The check is deliberately conservative: any rental whose interval overlaps
// the requested range counts its full quantity against every day of the
// range, even a one-day overlap of a ten-day booking. This keeps the query
// single-pass; do not "fix" it into per-day precision.
type AvailabilityService interface {
	Check(ctx context.Context, kind model.ItemKind, itemID uuid.UUID, start, end time.Time, qty int, excludeRentalID *uuid.UUID) (AvailabilityResult, error)
}

type availabilityService struct {
	itemRepo   repository.ItemRepository
	rentalRepo repository.RentalRepository
}

func NewAvailabilityService(itemRepo repository.ItemRepository, rentalRepo repository.RentalRepository) AvailabilityService {
	return &availabilityService{itemRepo: itemRepo, rentalRepo: rentalRepo}
}

// Check runs the interval-overlap query (rent_date <= end AND return_date >=
// start) over committed, non-archived rentals of the item, optionally
// excluding the rental being edited so it does not collide with itself.
// Callers re-run this inside the write transaction immediately before every
// commit; a pre-submit check is advisory only.
func (s *availabilityService) Check(ctx context.Context, kind model.ItemKind, itemID uuid.UUID, start, end time.Time, qty int, excludeRentalID *uuid.UUID) (AvailabilityResult, error) {
	if end.Before(start) {
		return AvailabilityResult{Available: false, Reason: "Invalid dates"}, nil
	}

	item, err := s.itemRepo.FindByID(ctx, kind, itemID)
	if err != nil {
		return AvailabilityResult{}, storeErr("find item", err)
	}

	if kind == model.ItemKindDecoration {
		// Consumables have no booking intervals; the stored counter decides.
		result := AvailabilityResult{
			Available:    item.QuantityAvailable >= qty,
			AvailableQty: item.QuantityAvailable,
		}
		if !result.Available {
			result.Reason = "Insufficient stock for the selected dates"
		}
		return result, nil
	}

	committed, err := s.rentalRepo.SumOverlapping(ctx, itemID, start, end, excludeRentalID)
	if err != nil {
		return AvailabilityResult{}, storeErr("sum overlapping rentals", err)
	}

	availableForRange := item.QuantityTotal - committed
	result := AvailabilityResult{
		Available:    availableForRange >= qty,
		AvailableQty: availableForRange,
		Committed:    committed,
	}
	if !result.Available {
		result.Reason = "Insufficient stock for the selected dates"
	}
	return result, nil
}
