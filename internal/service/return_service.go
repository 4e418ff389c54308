package service

import (
	"context"
	"encoding/json"
	"errors"

	"rental-backend/internal/model"
	"rental-backend/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Return resolutions the caller can pick after classification.
const (
	ResolutionAllGood        = "all_good"
	ResolutionPartialMissing = "partial_missing"
	ResolutionDamaged        = "damaged"
)

// ReturnClassification tells the caller whether a choice is needed.
// Orders made up entirely of sale-kind items have nothing to inspect and
// resolve automatically as sold.
type ReturnClassification struct {
	RentalIDs      []uuid.UUID         `json:"rental_ids"`
	DecorationOnly bool                `json:"decoration_only"`
	AutoResolved   bool                `json:"auto_resolved"`
	Items          []ReturnItemSummary `json:"items"`
}

type ReturnItemSummary struct {
	RentalID uuid.UUID      `json:"rental_id"`
	ItemKind model.ItemKind `json:"item_kind"`
	ItemName string         `json:"item_name"`
	Quantity int            `json:"quantity"`
}

// MissingLine reports per-line how many units came back.
type MissingLine struct {
	RentalID         string `json:"rental_id" binding:"required"`
	QuantityReturned int    `json:"quantity_returned" binding:"min=0"`
}

// DamagedLine tags one line's damage severity. Lines not listed default to
// minor.
type DamagedLine struct {
	RentalID string `json:"rental_id" binding:"required"`
	Severity string `json:"severity,omitempty"`
}

// ResolveReturnRequest carries the chosen resolution. Missing lines are
// required for partial_missing; a damage description is required for damaged.
type ResolveReturnRequest struct {
	RentalIDs    []string      `json:"rental_ids" binding:"required,min=1"`
	Resolution   string        `json:"resolution" binding:"required,oneof=all_good partial_missing damaged"`
	MissingLines []MissingLine `json:"missing_lines,omitempty"`
	DamageNotes  string        `json:"damage_notes,omitempty"`
	DamagedLines []DamagedLine `json:"damaged_lines,omitempty"`
}

type ReturnOutcome struct {
	Returned       int `json:"returned"`
	ReportsWritten int `json:"reports_written"`
	UnitsMissing   int `json:"units_missing,omitempty"`
}

// ReturnService closes out rentals. Reports are written before statuses
// flip so a failure leaves the rental open rather than silently closed.
type ReturnService interface {
	Classify(ctx context.Context, userID string, ids []uuid.UUID) (ReturnClassification, error)
	Resolve(ctx context.Context, userID string, req ResolveReturnRequest) (ReturnOutcome, error)
}

type returnService struct {
	itemRepo   repository.ItemRepository
	rentalRepo repository.RentalRepository
	reportRepo repository.ReportRepository
	auditRepo  repository.AuditRepository
	txManager  repository.TransactionManager
}

func NewReturnService(
	itemRepo repository.ItemRepository,
	rentalRepo repository.RentalRepository,
	reportRepo repository.ReportRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) ReturnService {
	return &returnService{
		itemRepo:   itemRepo,
		rentalRepo: rentalRepo,
		reportRepo: reportRepo,
		auditRepo:  auditRepo,
		txManager:  txManager,
	}
}

// Classify inspects the order's lines. A mixed or durable order needs the
// caller to pick a resolution; a decoration-only order is resolved on the
// spot as an all-good sale close-out.
func (s *returnService) Classify(ctx context.Context, userID string, ids []uuid.UUID) (ReturnClassification, error) {
	rows, err := s.rentalRepo.FindByIDs(ctx, ids)
	if err != nil {
		return ReturnClassification{}, storeErr("load rentals", err)
	}
	if len(rows) == 0 {
		return ReturnClassification{}, validationf("no rentals found for return")
	}

	itemIDs := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		itemIDs = append(itemIDs, row.ItemID)
	}
	names, err := s.itemRepo.NamesByIDs(ctx, itemIDs)
	if err != nil {
		return ReturnClassification{}, storeErr("resolve item names", err)
	}

	c := ReturnClassification{RentalIDs: ids, DecorationOnly: true}
	for _, row := range rows {
		if row.ItemKind != model.ItemKindDecoration {
			c.DecorationOnly = false
		}
		c.Items = append(c.Items, ReturnItemSummary{
			RentalID: row.ID,
			ItemKind: row.ItemKind,
			ItemName: names[row.ItemID],
			Quantity: row.Quantity,
		})
	}

	if c.DecorationOnly {
		idStrs := make([]string, len(ids))
		for i, id := range ids {
			idStrs[i] = id.String()
		}
		if _, err := s.Resolve(ctx, userID, ResolveReturnRequest{
			RentalIDs:  idStrs,
			Resolution: ResolutionAllGood,
		}); err != nil {
			return ReturnClassification{}, err
		}
		c.AutoResolved = true
	}
	return c, nil
}

// Resolve applies the chosen resolution to every row of the order in one
// transaction. Damaged units are flagged in reports but never deducted from
// item totals; only confirmed-missing units shrink inventory.
func (s *returnService) Resolve(ctx context.Context, userID string, req ResolveReturnRequest) (ReturnOutcome, error) {
	ids := make([]uuid.UUID, 0, len(req.RentalIDs))
	for _, raw := range req.RentalIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return ReturnOutcome{}, validationf("invalid rental id %q", raw)
		}
		ids = append(ids, id)
	}

	returnedByID := make(map[uuid.UUID]int)
	if req.Resolution == ResolutionPartialMissing {
		if len(req.MissingLines) == 0 {
			return ReturnOutcome{}, validationf("partial_missing requires per-item returned quantities")
		}
		for _, ml := range req.MissingLines {
			id, err := uuid.Parse(ml.RentalID)
			if err != nil {
				return ReturnOutcome{}, validationf("invalid rental id %q", ml.RentalID)
			}
			if ml.QuantityReturned < 0 {
				return ReturnOutcome{}, validationf("returned quantity cannot be negative")
			}
			returnedByID[id] = ml.QuantityReturned
		}
	}

	severityByID := make(map[uuid.UUID]string)
	if req.Resolution == ResolutionDamaged {
		if req.DamageNotes == "" {
			return ReturnOutcome{}, validationf("a damage description is required")
		}
		for _, dl := range req.DamagedLines {
			id, err := uuid.Parse(dl.RentalID)
			if err != nil {
				return ReturnOutcome{}, validationf("invalid rental id %q", dl.RentalID)
			}
			switch dl.Severity {
			case "", model.SeverityGood, model.SeverityMinor, model.SeverityMajor:
			default:
				return ReturnOutcome{}, validationf("unknown severity %q", dl.Severity)
			}
			severityByID[id] = dl.Severity
		}
	}

	var outcome ReturnOutcome
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		rows, err := s.rentalRepo.FindByIDs(txCtx, ids)
		if err != nil {
			return storeErr("load rentals", err)
		}
		if len(rows) == 0 {
			return validationf("no rentals found for return")
		}

		itemIDs := make([]uuid.UUID, 0, len(rows))
		for _, row := range rows {
			itemIDs = append(itemIDs, row.ItemID)
		}
		names, err := s.itemRepo.NamesByIDs(txCtx, itemIDs)
		if err != nil {
			return storeErr("resolve item names", err)
		}

		var reports []model.Report
		for _, row := range rows {
			if row.Status == model.StatusReturned {
				return &ConstraintError{Message: "rental " + row.ID.String() + " is already returned"}
			}
			name, ok := names[row.ItemID]
			if !ok {
				name = "Unknown Item"
			}

			switch req.Resolution {
			case ResolutionAllGood:
				reports = append(reports, closeOutReport(row, name, row.Quantity, model.ConditionGood, nil, nil))

			case ResolutionPartialMissing:
				returned, ok := returnedByID[row.ID]
				if !ok {
					returned = row.Quantity
				}
				if returned > row.Quantity {
					return validationf("returned quantity %d exceeds rented quantity %d for %s", returned, row.Quantity, name)
				}
				missing := row.Quantity - returned
				if returned > 0 {
					reports = append(reports, closeOutReport(row, name, returned, model.ConditionGood, nil, nil))
				}
				if missing > 0 {
					reports = append(reports, model.Report{
						RentalID: row.ID,
						ItemName: name,
						Quantity: missing,
						Type:     model.ReportMissing,
						Notes:    "not returned by " + row.RenterName,
					})
					if row.ItemKind == model.ItemKindRental {
						if err := s.itemRepo.DeductTotal(txCtx, row.ItemKind, row.ItemID, missing); err != nil {
							return storeErr("deduct missing units", err)
						}
					}
					outcome.UnitsMissing += missing
				}

			case ResolutionDamaged:
				notes := req.DamageNotes
				sev := severityByID[row.ID]
				if sev == "" {
					sev = model.SeverityMinor
				}
				reports = append(reports, closeOutReport(row, name, row.Quantity, model.ConditionDamaged, &notes, &sev))

			default:
				return validationf("unknown resolution %q", req.Resolution)
			}
		}

		if err := s.reportRepo.CreateBatch(txCtx, reports); err != nil {
			return storeErr("write return reports", err)
		}
		outcome.ReportsWritten = len(reports)

		rowIDs := make([]uuid.UUID, len(rows))
		for i, row := range rows {
			rowIDs[i] = row.ID
		}
		if err := s.rentalRepo.UpdateStatus(txCtx, rowIDs, model.StatusReturned); err != nil {
			return storeErr("mark rentals returned", err)
		}
		outcome.Returned = len(rows)

		var uid *uuid.UUID
		if parsed, err := uuid.Parse(userID); err == nil {
			uid = &parsed
		}
		payload, _ := json.Marshal(map[string]interface{}{
			"rental_ids": rowIDs,
			"resolution": req.Resolution,
			"missing":    outcome.UnitsMissing,
		})
		return s.auditRepo.Log(txCtx, &model.AuditLog{
			UserID:  uid,
			Action:  model.ActionProcessReturn,
			Details: string(payload),
		})
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ReturnOutcome{}, validationf("no rentals found for return")
		}
		return ReturnOutcome{}, err
	}
	return outcome, nil
}

// closeOutReport builds the close-out row: sales close as "sold", durable
// rentals as "returned".
func closeOutReport(row model.Rental, name string, qty int, condition string, damageNotes, severity *string) model.Report {
	reportType := model.ReportReturned
	notes := "returned by " + row.RenterName
	if row.ItemKind == model.ItemKindDecoration {
		reportType = model.ReportSold
		notes = "sold to " + row.RenterName
	}
	cond := condition
	return model.Report{
		RentalID:        row.ID,
		ItemName:        name,
		Quantity:        qty,
		Type:            reportType,
		Notes:           notes,
		ReturnCondition: &cond,
		DamageNotes:     damageNotes,
		Severity:        severity,
	}
}
