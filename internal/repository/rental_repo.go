package repository

import (
	"context"
	"time"

	"rental-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RentalRepository provides access to transaction rows. Listing filters
// mirror the legacy data: archived was once a nullable column, so the
// "not archived" predicate must also accept NULL.
type RentalRepository interface {
	Create(ctx context.Context, rental *model.Rental) error
	Update(ctx context.Context, rental *model.Rental) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Rental, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Rental, error)
	List(ctx context.Context, archived bool) ([]model.Rental, error)
	ListUnarchived(ctx context.Context) ([]model.Rental, error)
	SumCommitted(ctx context.Context) (map[uuid.UUID]int, error)
	SumOverlapping(ctx context.Context, itemID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (int, error)
	UpdateStatus(ctx context.Context, ids []uuid.UUID, status string) error
	SetArchived(ctx context.Context, id uuid.UUID, archived bool) error
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	MarkOverdue(ctx context.Context, before time.Time) (int64, error)
}

type rentalRepository struct {
	db *gorm.DB
}

func NewRentalRepository(db *gorm.DB) RentalRepository {
	return &rentalRepository{db: db}
}

func notArchived(db *gorm.DB) *gorm.DB {
	return db.Where("archived IS NULL OR archived = ?", false)
}

func (r *rentalRepository) Create(ctx context.Context, rental *model.Rental) error {
	return GetDB(ctx, r.db).Create(rental).Error
}

func (r *rentalRepository) Update(ctx context.Context, rental *model.Rental) error {
	return GetDB(ctx, r.db).Save(rental).Error
}

func (r *rentalRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Rental, error) {
	var rental model.Rental
	if err := GetDB(ctx, r.db).First(&rental, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rental, nil
}

func (r *rentalRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Rental, error) {
	var rentals []model.Rental
	if err := GetDB(ctx, r.db).Where("id IN ?", ids).Find(&rentals).Error; err != nil {
		return nil, err
	}
	return rentals, nil
}

// List returns rows ordered rent_date descending, then insertion order.
// Grouping preserves this order, so ties on rent_date keep first-seen order.
func (r *rentalRepository) List(ctx context.Context, archived bool) ([]model.Rental, error) {
	var rentals []model.Rental
	db := GetDB(ctx, r.db)
	if archived {
		db = db.Where("archived = ?", true)
	} else {
		db = notArchived(db)
	}
	if err := db.Order("rent_date desc, created_at asc").Find(&rentals).Error; err != nil {
		return nil, err
	}
	return rentals, nil
}

func (r *rentalRepository) ListUnarchived(ctx context.Context) ([]model.Rental, error) {
	return r.List(ctx, false)
}

// SumCommitted sums committed quantity per item with no date filter:
// the overall snapshot behind the catalog's real-time availability.
func (r *rentalRepository) SumCommitted(ctx context.Context) (map[uuid.UUID]int, error) {
	var rows []struct {
		ItemID   uuid.UUID
		Quantity int
	}
	db := notArchived(GetDB(ctx, r.db).Model(&model.Rental{}))
	if err := db.Select("item_id, SUM(quantity) as quantity").
		Where("status IN ?", model.CommittedStatuses).
		Group("item_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	committed := make(map[uuid.UUID]int, len(rows))
	for _, row := range rows {
		committed[row.ItemID] = row.Quantity
	}
	return committed, nil
}

// SumOverlapping totals the committed quantity of rentals whose interval
// overlaps [start, end]: rent_date <= end AND return_date >= start. A row
// overlapping a single day of the range counts its full quantity against
// the whole range; callers rely on that conservative behavior.
func (r *rentalRepository) SumOverlapping(ctx context.Context, itemID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (int, error) {
	db := notArchived(GetDB(ctx, r.db).Model(&model.Rental{})).
		Where("item_id = ?", itemID).
		Where("status IN ?", model.CommittedStatuses).
		Where("rent_date <= ?", end).
		Where("return_date >= ?", start)
	if excludeID != nil {
		db = db.Where("id <> ?", *excludeID)
	}

	var total struct{ Quantity int }
	if err := db.Select("COALESCE(SUM(quantity), 0) as quantity").Scan(&total).Error; err != nil {
		return 0, err
	}
	return total.Quantity, nil
}

func (r *rentalRepository) UpdateStatus(ctx context.Context, ids []uuid.UUID, status string) error {
	return GetDB(ctx, r.db).Model(&model.Rental{}).
		Where("id IN ?", ids).
		Update("status", status).Error
}

func (r *rentalRepository) SetArchived(ctx context.Context, id uuid.UUID, archived bool) error {
	return GetDB(ctx, r.db).Model(&model.Rental{}).
		Where("id = ?", id).
		Update("archived", archived).Error
}

// Delete hard-deletes one row and reports the affected count so callers can
// distinguish "already gone" from success.
func (r *rentalRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Rental{})
	return res.RowsAffected, res.Error
}

// MarkOverdue promotes active rentals whose return date has passed.
func (r *rentalRepository) MarkOverdue(ctx context.Context, before time.Time) (int64, error) {
	res := notArchived(GetDB(ctx, r.db).Model(&model.Rental{})).
		Where("status = ?", model.StatusActive).
		Where("return_date IS NOT NULL AND return_date < ?", before).
		Update("status", model.StatusOverdue)
	return res.RowsAffected, res.Error
}
