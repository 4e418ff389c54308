package service

import (
	"context"

	"rental-backend/internal/model"
	"rental-backend/internal/repository"
)

// CatalogService loads the unified rentable item list with real-time
// availability derived from committed rentals.
type CatalogService interface {
	LoadAll(ctx context.Context, kind model.ItemKind, search string) ([]model.Item, error)
	LoadArchived(ctx context.Context, kind model.ItemKind) ([]model.Item, error)
}

type catalogService struct {
	itemRepo   repository.ItemRepository
	rentalRepo repository.RentalRepository
}

func NewCatalogService(itemRepo repository.ItemRepository, rentalRepo repository.RentalRepository) CatalogService {
	return &catalogService{itemRepo: itemRepo, rentalRepo: rentalRepo}
}

// LoadAll merges non-archived inventory items and decorations, then derives
// each item's real-time availability: quantity_total minus every committed
// rental quantity minus the damaged count. This is an overall snapshot with
// no date window; date-scoped checks are AvailabilityService's job.
func (s *catalogService) LoadAll(ctx context.Context, kind model.ItemKind, search string) ([]model.Item, error) {
	items, err := s.itemRepo.ListActive(ctx, kind, search)
	if err != nil {
		return nil, storeErr("load items", err)
	}

	committed, err := s.rentalRepo.SumCommitted(ctx)
	if err != nil {
		return nil, storeErr("load committed quantities", err)
	}

	for i := range items {
		items[i].RealTimeAvailable = items[i].QuantityTotal - committed[items[i].ID] - items[i].QuantityDamaged
	}

	return items, nil
}

func (s *catalogService) LoadArchived(ctx context.Context, kind model.ItemKind) ([]model.Item, error) {
	items, err := s.itemRepo.ListArchived(ctx, kind)
	if err != nil {
		return nil, storeErr("load archived items", err)
	}
	return items, nil
}
