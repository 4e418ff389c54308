package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"rental-backend/internal/model"
	"rental-backend/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateReportRequest struct {
	RentalID string `json:"rental_id" binding:"required"`
	Type     string `json:"type" binding:"required"`
	Quantity int    `json:"quantity" binding:"required"`
	Notes    string `json:"notes"`
}

// ReportService lists and prunes the insert-only return/loss/sale records.
// The return flow writes most reports; Create covers manual incident entry.
type ReportService interface {
	Create(ctx context.Context, userID string, req CreateReportRequest) (*model.Report, error)
	List(ctx context.Context, reportType string, page, limit int) ([]model.Report, int64, error)
	Delete(ctx context.Context, userID string, id uuid.UUID) error
}

type reportService struct {
	repo       repository.ReportRepository
	rentalRepo repository.RentalRepository
	itemRepo   repository.ItemRepository
	auditRepo  repository.AuditRepository
}

func NewReportService(
	repo repository.ReportRepository,
	rentalRepo repository.RentalRepository,
	itemRepo repository.ItemRepository,
	auditRepo repository.AuditRepository,
) ReportService {
	return &reportService{repo: repo, rentalRepo: rentalRepo, itemRepo: itemRepo, auditRepo: auditRepo}
}

func validReportType(t string) bool {
	return t == model.ReportReturned || t == model.ReportMissing || t == model.ReportSold
}

// Create records a manual incident against an existing rental row.
func (s *reportService) Create(ctx context.Context, userID string, req CreateReportRequest) (*model.Report, error) {
	if !validReportType(req.Type) {
		return nil, validationf("unknown report type %q", req.Type)
	}
	if req.Quantity <= 0 {
		return nil, validationf("quantity must be positive")
	}
	rentalID, err := uuid.Parse(req.RentalID)
	if err != nil {
		return nil, validationf("invalid rental id")
	}

	rental, err := s.rentalRepo.FindByID(ctx, rentalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, validationf("rental not found")
		}
		return nil, storeErr("find rental", err)
	}
	if req.Quantity > rental.Quantity {
		return nil, validationf("quantity exceeds the rented amount")
	}

	item, err := s.itemRepo.FindByID(ctx, rental.ItemKind, rental.ItemID)
	if err != nil {
		return nil, storeErr("find item", err)
	}

	report := model.Report{
		ID:       uuid.New(),
		RentalID: rental.ID,
		ItemName: item.Name,
		Quantity: req.Quantity,
		Type:     req.Type,
		Notes:    strings.TrimSpace(req.Notes),
	}
	if err := s.repo.CreateBatch(ctx, []model.Report{report}); err != nil {
		return nil, storeErr("create report", err)
	}

	var uid *uuid.UUID
	if parsed, err := uuid.Parse(userID); err == nil {
		uid = &parsed
	}
	payload, _ := json.Marshal(map[string]interface{}{
		"rental_id": rental.ID,
		"type":      req.Type,
		"quantity":  req.Quantity,
	})
	if err := s.auditRepo.Log(ctx, &model.AuditLog{
		UserID:     uid,
		Action:     model.ActionCreateReport,
		EntityID:   rental.ID.String(),
		EntityName: item.Name,
		Details:    string(payload),
	}); err != nil {
		return nil, storeErr("write audit log", err)
	}
	return &report, nil
}

func (s *reportService) List(ctx context.Context, reportType string, page, limit int) ([]model.Report, int64, error) {
	if reportType != "" &&
		reportType != model.ReportReturned &&
		reportType != model.ReportMissing &&
		reportType != model.ReportSold {
		return nil, 0, validationf("unknown report type %q", reportType)
	}
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	reports, total, err := s.repo.List(ctx, reportType, page, limit)
	if err != nil {
		return nil, 0, storeErr("list reports", err)
	}
	return reports, total, nil
}

// Delete removes one report. Deleting the last report referencing a rental
// re-enables that rental's hard delete.
func (s *reportService) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	count, err := s.repo.Delete(ctx, id)
	if err != nil {
		return storeErr("delete report", err)
	}
	if count == 0 {
		return validationf("report not found")
	}

	var uid *uuid.UUID
	if parsed, err := uuid.Parse(userID); err == nil {
		uid = &parsed
	}
	payload, _ := json.Marshal(map[string]interface{}{"report_id": id})
	return s.auditRepo.Log(ctx, &model.AuditLog{
		UserID:   uid,
		Action:   model.ActionDeleteReport,
		EntityID: id.String(),
		Details:  string(payload),
	})
}
