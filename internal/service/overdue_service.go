package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"rental-backend/internal/model"
	"rental-backend/internal/repository"
)

// OverdueService promotes active rentals whose return date has passed to
// overdue. It runs from the scheduler; audit entries it writes carry no
// user.
type OverdueService interface {
	Sweep(ctx context.Context) (int64, error)
}

type overdueService struct {
	rentalRepo repository.RentalRepository
	auditRepo  repository.AuditRepository
}

func NewOverdueService(rentalRepo repository.RentalRepository, auditRepo repository.AuditRepository) OverdueService {
	return &overdueService{rentalRepo: rentalRepo, auditRepo: auditRepo}
}

// startOfDay is the day-boundary convention shared by the sweep and the
// dashboard counters: midnight in the server's local zone.
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Sweep marks every active rental with return_date before today as overdue.
// Overdue rentals still hold inventory; only an explicit return releases it.
func (s *overdueService) Sweep(ctx context.Context) (int64, error) {
	today := startOfDay(time.Now())
	count, err := s.rentalRepo.MarkOverdue(ctx, today)
	if err != nil {
		return 0, storeErr("mark overdue rentals", err)
	}
	if count == 0 {
		return 0, nil
	}

	payload, _ := json.Marshal(map[string]interface{}{"marked_overdue": count})
	if err := s.auditRepo.Log(ctx, &model.AuditLog{
		Action:  model.ActionMarkOverdue,
		Details: string(payload),
	}); err != nil {
		log.Printf("overdue sweep: audit write failed: %v", err)
	}
	return count, nil
}
