package repository

import (
	"context"

	"rental-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReportRepository stores insert-only audit reports of returns, losses and
// sale close-outs.
type ReportRepository interface {
	CreateBatch(ctx context.Context, reports []model.Report) error
	ExistsForRental(ctx context.Context, rentalID uuid.UUID) (bool, error)
	List(ctx context.Context, reportType string, page, limit int) ([]model.Report, int64, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}

type reportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) CreateBatch(ctx context.Context, reports []model.Report) error {
	if len(reports) == 0 {
		return nil
	}
	return GetDB(ctx, r.db).Create(&reports).Error
}

// ExistsForRental is the guard for delete-and-recreate edits: a rental with
// linked reports must never be deleted.
func (r *reportRepository) ExistsForRental(ctx context.Context, rentalID uuid.UUID) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Report{}).
		Where("rental_id = ?", rentalID).
		Limit(1).
		Count(&count).Error
	return count > 0, err
}

func (r *reportRepository) List(ctx context.Context, reportType string, page, limit int) ([]model.Report, int64, error) {
	var reports []model.Report
	var total int64

	db := GetDB(ctx, r.db).Model(&model.Report{})
	if reportType != "" {
		db = db.Where("type = ?", reportType)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("created_at desc").Offset(offset).Limit(limit).Find(&reports).Error; err != nil {
		return nil, 0, err
	}

	return reports, total, nil
}

func (r *reportRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Report{})
	return res.RowsAffected, res.Error
}
