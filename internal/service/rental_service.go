package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"rental-backend/internal/cart"
	"rental-backend/internal/model"
	"rental-backend/internal/pricing"
	"rental-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

// DTOs

type CartLineRequest struct {
	ItemKind         string `json:"item_kind" binding:"required,oneof=rental decoration"`
	ItemID           string `json:"item_id" binding:"required"`
	Quantity         int    `json:"quantity" binding:"required,gt=0"`
	ExistingRentalID string `json:"existing_rental_id,omitempty"` // ties a line to its prior row when editing
}

type SaveRentalRequest struct {
	RenterName     string            `json:"renter_name" binding:"required"`
	ClientPhone    string            `json:"client_phone"`
	ClientAddress  string            `json:"client_address"`
	RentDate       string            `json:"rent_date" binding:"required"`
	ReturnDate     string            `json:"return_date"` // empty for pure sales
	RentTime       string            `json:"rent_time"`
	ReturnTime     string            `json:"return_time"`
	PaymentMethod  string            `json:"payment_method"`
	PaymentStatus  string            `json:"payment_status"`
	Status         string            `json:"status"`
	AdvancePayment string            `json:"advance_payment"`
	CustomPrice    string            `json:"custom_price"` // manual total override; disables auto pricing
	Lines          []CartLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// SaveOutcome summarizes what a submit did. ReturnChoiceRequired means the
// write was intercepted: the status was being set to "returned" and the
// close-out must go through the return flow instead.
type SaveOutcome struct {
	Created              int         `json:"created"`
	Updated              int         `json:"updated"`
	Deleted              int         `json:"deleted"`
	ReturnChoiceRequired bool        `json:"return_choice_required,omitempty"`
	RentalIDs            []uuid.UUID `json:"rental_ids,omitempty"`
}

// GroupDeleteResult reports a group hard-delete: per-row constraint
// failures do not stop the remaining rows.
type GroupDeleteResult struct {
	Deleted  int      `json:"deleted"`
	Failures []string `json:"failures,omitempty"`
}

// RentalService is the transaction writer and grouper: it commits carts as
// rental rows, resolves edits (in-place vs delete-and-recreate), and
// reconstructs logical multi-item orders from the flat row store.
type RentalService interface {
	ListGrouped(ctx context.Context, archived bool) ([]model.LogicalOrder, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Rental, error)
	Create(ctx context.Context, userID string, req SaveRentalRequest) (SaveOutcome, error)
	Update(ctx context.Context, userID string, id uuid.UUID, req SaveRentalRequest) (SaveOutcome, error)
	UpdateGroup(ctx context.Context, userID string, ids []uuid.UUID, req SaveRentalRequest) (SaveOutcome, error)
	Archive(ctx context.Context, userID string, ids []uuid.UUID) (int, error)
	Delete(ctx context.Context, userID string, ids []uuid.UUID) (GroupDeleteResult, error)
}

type rentalService struct {
	itemRepo   repository.ItemRepository
	rentalRepo repository.RentalRepository
	reportRepo repository.ReportRepository
	auditRepo  repository.AuditRepository
	txManager  repository.TransactionManager
}

func NewRentalService(
	itemRepo repository.ItemRepository,
	rentalRepo repository.RentalRepository,
	reportRepo repository.ReportRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) RentalService {
	return &rentalService{
		itemRepo:   itemRepo,
		rentalRepo: rentalRepo,
		reportRepo: reportRepo,
		auditRepo:  auditRepo,
		txManager:  txManager,
	}
}

// ListGrouped reconstructs logical orders by grouping rows on the exact
// tuple (renter, rent date, return date, status, payment status, payment
// method). Rows arrive rent_date descending, so groups come out in the same
// order; equal rent dates keep first-seen row order (no secondary sort key).
func (s *rentalService) ListGrouped(ctx context.Context, archived bool) ([]model.LogicalOrder, error) {
	rows, err := s.rentalRepo.List(ctx, archived)
	if err != nil {
		return nil, storeErr("list rentals", err)
	}

	itemIDs := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		itemIDs = append(itemIDs, row.ItemID)
	}
	names, err := s.itemRepo.NamesByIDs(ctx, itemIDs)
	if err != nil {
		return nil, storeErr("resolve item names", err)
	}

	var orders []*model.LogicalOrder
	index := make(map[string]*model.LogicalOrder)

	for _, row := range rows {
		key := row.GroupKey()
		group, ok := index[key]
		if !ok {
			group = &model.LogicalOrder{
				RenterName:     row.RenterName,
				ClientPhone:    row.ClientPhone,
				ClientAddress:  row.ClientAddress,
				RentDate:       row.RentDate,
				ReturnDate:     row.ReturnDate,
				RentTime:       row.RentTime,
				ReturnTime:     row.ReturnTime,
				Status:         row.Status,
				PaymentStatus:  row.PaymentStatus,
				PaymentMethod:  row.PaymentMethod,
				Archived:       row.Archived,
				TotalPayment:   decimal.Zero,
				AdvancePayment: row.AdvancePayment, // all rows of one order share one advance; the first carries it
			}
			index[key] = group
			orders = append(orders, group)
		}

		name, ok := names[row.ItemID]
		if !ok {
			name = "Unknown Item"
		}
		group.Items = append(group.Items, model.LogicalOrderItem{
			RentalID: row.ID,
			ItemKind: row.ItemKind,
			ItemID:   row.ItemID,
			Name:     name,
			Quantity: row.Quantity,
			Payment:  row.PaymentAmount,
		})
		group.RentalIDs = append(group.RentalIDs, row.ID)
		group.TotalQuantity += row.Quantity
		group.TotalPayment = group.TotalPayment.Add(row.PaymentAmount)
	}

	result := make([]model.LogicalOrder, len(orders))
	for i, g := range orders {
		result[i] = *g
	}
	return result, nil
}

func (s *rentalService) Get(ctx context.Context, id uuid.UUID) (*model.Rental, error) {
	rental, err := s.rentalRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, validationf("rental not found")
		}
		return nil, storeErr("find rental", err)
	}
	return rental, nil
}

// sharedFields is the validated common part of a save request.
type sharedFields struct {
	rentDate   time.Time
	returnDate *time.Time
	rentTime   *string
	returnTime *string
	status     string
	payStatus  string
	payMethod  string
	advance    decimal.Decimal
	custom     *decimal.Decimal
	days       int
}

func (s *rentalService) parseShared(req SaveRentalRequest) (sharedFields, error) {
	var f sharedFields

	rentDate, err := time.Parse(dateLayout, req.RentDate)
	if err != nil {
		return f, validationf("invalid rental date %q", req.RentDate)
	}
	f.rentDate = rentDate

	if req.ReturnDate != "" {
		returnDate, err := time.Parse(dateLayout, req.ReturnDate)
		if err != nil {
			return f, validationf("invalid return date %q", req.ReturnDate)
		}
		if returnDate.Before(rentDate) {
			return f, validationf("return date cannot be before rental date")
		}
		f.returnDate = &returnDate
	}

	if req.RentTime != "" {
		t := req.RentTime
		f.rentTime = &t
	}
	if req.ReturnTime != "" {
		t := req.ReturnTime
		f.returnTime = &t
	}

	f.status = req.Status
	if f.status == "" {
		f.status = model.StatusActive
	}
	f.payStatus = req.PaymentStatus
	if f.payStatus == "" {
		f.payStatus = model.PaymentPending
	}
	f.payMethod = req.PaymentMethod
	if f.payMethod == "" {
		f.payMethod = "Cash"
	}

	f.advance = decimal.Zero
	if req.AdvancePayment != "" {
		adv, err := decimal.NewFromString(req.AdvancePayment)
		if err != nil || adv.IsNegative() {
			return f, validationf("invalid advance payment %q", req.AdvancePayment)
		}
		f.advance = adv
	}

	if req.CustomPrice != "" {
		custom, err := decimal.NewFromString(req.CustomPrice)
		if err != nil || !custom.IsPositive() {
			return f, validationf("custom price must be greater than zero")
		}
		f.custom = &custom
	}

	f.days = pricing.Days(rentDate, f.rangeEnd())
	return f, nil
}

// rangeEnd is the effective end of the availability window: sales have no
// return date and occupy only their rent date.
func (f sharedFields) rangeEnd() time.Time {
	if f.returnDate != nil {
		return *f.returnDate
	}
	return f.rentDate
}

func (f sharedFields) committed() bool {
	for _, st := range model.CommittedStatuses {
		if f.status == st {
			return true
		}
	}
	return false
}

// lockedLine is one cart line with its item row locked FOR UPDATE.
type lockedLine struct {
	line     cart.Line
	item     model.Item
	priorID  *uuid.UUID
	quantity int
}

// lockLines resolves and locks every requested line inside the current
// transaction. Locking before the availability re-check serializes
// concurrent checkouts of the same item, closing the check-then-write gap.
func (s *rentalService) lockLines(txCtx context.Context, reqLines []CartLineRequest, f sharedFields) ([]lockedLine, error) {
	c := cart.New()
	type meta struct {
		item    model.Item
		priorID *uuid.UUID
	}
	byItem := make(map[uuid.UUID]meta)

	for _, lr := range reqLines {
		kind := model.ItemKind(lr.ItemKind)
		if !kind.Valid() {
			return nil, validationf("unknown item kind %q", lr.ItemKind)
		}
		itemID, err := uuid.Parse(lr.ItemID)
		if err != nil {
			return nil, validationf("invalid item id %q", lr.ItemID)
		}

		m, seen := byItem[itemID]
		if !seen {
			item, err := s.itemRepo.FindByIDForUpdate(txCtx, kind, itemID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, validationf("item %s not found", lr.ItemID)
				}
				return nil, storeErr("lock item", err)
			}
			m = meta{item: *item}
			byItem[itemID] = m
		}

		if lr.ExistingRentalID != "" {
			prior, err := uuid.Parse(lr.ExistingRentalID)
			if err != nil {
				return nil, validationf("invalid rental id %q", lr.ExistingRentalID)
			}
			m.priorID = &prior
			byItem[itemID] = m
		}

		if err := c.Add(m.item, lr.Quantity, f.days); err != nil {
			return nil, &ValidationError{Message: err.Error()}
		}
	}

	lines := make([]lockedLine, 0, c.Len())
	for _, line := range c.Lines() {
		m := byItem[line.ItemID]
		lines = append(lines, lockedLine{
			line:     line,
			item:     m.item,
			priorID:  m.priorID,
			quantity: line.Quantity,
		})
	}
	return lines, nil
}

// checkAvailability re-runs the interval-overlap check for every line and
// collects all shortfalls so the caller can abort with the full list.
func (s *rentalService) checkAvailability(txCtx context.Context, lines []lockedLine, f sharedFields, excludeOwn bool) error {
	var shortfalls []Shortfall
	for _, ll := range lines {
		var available int
		if ll.item.Kind == model.ItemKindDecoration {
			// Sales draw from the stored counter, not booked intervals.
			available = ll.item.QuantityAvailable
		} else {
			var exclude *uuid.UUID
			if excludeOwn {
				exclude = ll.priorID
			}
			committed, err := s.rentalRepo.SumOverlapping(txCtx, ll.item.ID, f.rentDate, f.rangeEnd(), exclude)
			if err != nil {
				return storeErr("sum overlapping rentals", err)
			}
			available = ll.item.QuantityTotal - committed
		}
		if available < ll.quantity {
			shortfalls = append(shortfalls, Shortfall{
				ItemName:  ll.item.Name,
				Requested: ll.quantity,
				Available: available,
			})
		}
	}
	if len(shortfalls) > 0 {
		return &AvailabilityError{Shortfalls: shortfalls}
	}
	return nil
}

// rowFromLine builds the persisted row for one cart line. The advance
// payment rides on the first row of the order only.
func (s *rentalService) rowFromLine(ll lockedLine, req SaveRentalRequest, f sharedFields, first bool) *model.Rental {
	payment := ll.line.Subtotal
	if f.custom != nil {
		// A manual price overrides auto pricing for single-line orders only;
		// multi-line orders keep per-line computed subtotals.
		payment = *f.custom
	}
	advance := decimal.Zero
	if first {
		advance = f.advance
	}
	return &model.Rental{
		ItemKind:       ll.item.Kind,
		ItemID:         ll.item.ID,
		Quantity:       ll.quantity,
		RenterName:     req.RenterName,
		ClientPhone:    req.ClientPhone,
		ClientAddress:  req.ClientAddress,
		RentDate:       f.rentDate,
		ReturnDate:     f.returnDate,
		RentTime:       f.rentTime,
		ReturnTime:     f.returnTime,
		PaymentAmount:  payment,
		AdvancePayment: advance,
		PaymentMethod:  f.payMethod,
		PaymentStatus:  f.payStatus,
		Status:         f.status,
	}
}

// Create commits a cart as new rental rows, one row per line. All lines are
// availability-checked first: any shortfall aborts the whole order with the
// full list and nothing is written. Sale-kind lines additionally decrement
// the decoration's stored availability counter; durable inventory is never
// decremented this way, its availability is always computed from committed
// rentals.
func (s *rentalService) Create(ctx context.Context, userID string, req SaveRentalRequest) (SaveOutcome, error) {
	f, err := s.parseShared(req)
	if err != nil {
		return SaveOutcome{}, err
	}
	if f.custom != nil && len(req.Lines) > 1 {
		f.custom = nil
	}

	var outcome SaveOutcome
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		lines, err := s.lockLines(txCtx, req.Lines, f)
		if err != nil {
			return err
		}
		if err := s.checkAvailability(txCtx, lines, f, false); err != nil {
			return err
		}

		for i, ll := range lines {
			row := s.rowFromLine(ll, req, f, i == 0)
			if err := s.rentalRepo.Create(txCtx, row); err != nil {
				return storeErr("create rental", err)
			}
			if ll.item.Kind == model.ItemKindDecoration {
				if err := s.itemRepo.DecrementAvailable(txCtx, ll.item.Kind, ll.item.ID, ll.quantity); err != nil {
					return storeErr("decrement decoration stock", err)
				}
			}
			outcome.RentalIDs = append(outcome.RentalIDs, row.ID)
			outcome.Created++
		}

		return s.audit(txCtx, userID, model.ActionCreateRental, req.RenterName, map[string]interface{}{
			"rental_ids": outcome.RentalIDs,
			"lines":      len(lines),
			"rent_date":  req.RentDate,
		})
	})
	if err != nil {
		return SaveOutcome{}, err
	}
	return outcome, nil
}

// Update resolves an edit of a single-row order. Branch order matters and
// the first match wins:
//  1. status moving to "returned" aborts the write and hands the close-out
//     to the return flow;
//  2. exactly one line tied to the same row: in-place update, preserving the
//     row id and any report references to it;
//  3. anything else changed the item set: delete-and-recreate, refused when
//     incident reports reference the original row.
func (s *rentalService) Update(ctx context.Context, userID string, id uuid.UUID, req SaveRentalRequest) (SaveOutcome, error) {
	if req.Status == model.StatusReturned {
		return SaveOutcome{ReturnChoiceRequired: true, RentalIDs: []uuid.UUID{id}}, nil
	}

	f, err := s.parseShared(req)
	if err != nil {
		return SaveOutcome{}, err
	}

	original, err := s.Get(ctx, id)
	if err != nil {
		return SaveOutcome{}, err
	}

	inPlace := len(req.Lines) == 1 && req.Lines[0].ExistingRentalID == id.String()

	var outcome SaveOutcome
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		lines, err := s.lockLines(txCtx, req.Lines, f)
		if err != nil {
			return err
		}

		if inPlace {
			if err := s.checkAvailability(txCtx, lines, f, true); err != nil {
				return err
			}
			ll := lines[0]
			row := s.rowFromLine(ll, req, f, true)
			row.ID = original.ID
			row.CreatedAt = original.CreatedAt
			if f.committed() {
				row.Archived = false
			} else {
				row.Archived = original.Archived
			}
			if err := s.rentalRepo.Update(txCtx, row); err != nil {
				return storeErr("update rental", err)
			}
			outcome.Updated = 1
			outcome.RentalIDs = []uuid.UUID{original.ID}
		} else {
			linked, err := s.reportRepo.ExistsForRental(txCtx, id)
			if err != nil {
				return storeErr("check linked reports", err)
			}
			if linked {
				return &ConstraintError{Message: "cannot modify items: this rental has linked incident reports; delete the reports first or edit without changing items"}
			}
			if _, err := s.rentalRepo.Delete(txCtx, id); err != nil {
				return storeErr("delete rental", err)
			}
			outcome.Deleted = 1

			if err := s.checkAvailability(txCtx, lines, f, false); err != nil {
				return err
			}
			for i, ll := range lines {
				row := s.rowFromLine(ll, req, f, i == 0)
				if err := s.rentalRepo.Create(txCtx, row); err != nil {
					return storeErr("create rental", err)
				}
				if ll.item.Kind == model.ItemKindDecoration {
					if err := s.itemRepo.DecrementAvailable(txCtx, ll.item.Kind, ll.item.ID, ll.quantity); err != nil {
						return storeErr("decrement decoration stock", err)
					}
				}
				outcome.RentalIDs = append(outcome.RentalIDs, row.ID)
				outcome.Created++
			}
		}

		return s.audit(txCtx, userID, model.ActionUpdateRental, req.RenterName, map[string]interface{}{
			"rental_id": id,
			"in_place":  inPlace,
		})
	})
	if err != nil {
		return SaveOutcome{}, err
	}
	return outcome, nil
}

// UpdateGroup resolves a batch edit of a grouped multi-row order: lines
// carrying a prior row id are updated in place, new lines are inserted, and
// original rows missing from the edited set are deleted. The whole batch is
// one transaction; one failing line rolls everything back.
func (s *rentalService) UpdateGroup(ctx context.Context, userID string, ids []uuid.UUID, req SaveRentalRequest) (SaveOutcome, error) {
	if req.Status == model.StatusReturned {
		return SaveOutcome{ReturnChoiceRequired: true, RentalIDs: ids}, nil
	}
	if len(req.Lines) == 0 {
		return SaveOutcome{}, validationf("at least one item is required")
	}

	f, err := s.parseShared(req)
	if err != nil {
		return SaveOutcome{}, err
	}

	originals, err := s.rentalRepo.FindByIDs(ctx, ids)
	if err != nil {
		return SaveOutcome{}, storeErr("load rentals", err)
	}
	originalByID := make(map[uuid.UUID]model.Rental, len(originals))
	for _, row := range originals {
		originalByID[row.ID] = row
	}

	var outcome SaveOutcome
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		lines, err := s.lockLines(txCtx, req.Lines, f)
		if err != nil {
			return err
		}
		if err := s.checkAvailability(txCtx, lines, f, true); err != nil {
			return err
		}

		processed := make(map[uuid.UUID]bool, len(lines))
		for i, ll := range lines {
			row := s.rowFromLine(ll, req, f, i == 0)
			if ll.priorID != nil {
				original, ok := originalByID[*ll.priorID]
				if !ok {
					return validationf("rental %s is not part of this order", ll.priorID)
				}
				row.ID = original.ID
				row.CreatedAt = original.CreatedAt
				if f.committed() {
					row.Archived = false
				} else {
					row.Archived = original.Archived
				}
				if err := s.rentalRepo.Update(txCtx, row); err != nil {
					return storeErr("update rental", err)
				}
				processed[original.ID] = true
				outcome.Updated++
			} else {
				if err := s.rentalRepo.Create(txCtx, row); err != nil {
					return storeErr("create rental", err)
				}
				if ll.item.Kind == model.ItemKindDecoration {
					if err := s.itemRepo.DecrementAvailable(txCtx, ll.item.Kind, ll.item.ID, ll.quantity); err != nil {
						return storeErr("decrement decoration stock", err)
					}
				}
				outcome.Created++
			}
			outcome.RentalIDs = append(outcome.RentalIDs, row.ID)
		}

		for _, id := range ids {
			if processed[id] {
				continue
			}
			linked, err := s.reportRepo.ExistsForRental(txCtx, id)
			if err != nil {
				return storeErr("check linked reports", err)
			}
			if linked {
				return &ConstraintError{Message: "cannot remove an item with linked incident reports from this order"}
			}
			if _, err := s.rentalRepo.Delete(txCtx, id); err != nil {
				return storeErr("delete rental", err)
			}
			outcome.Deleted++
		}

		return s.audit(txCtx, userID, model.ActionUpdateRental, req.RenterName, map[string]interface{}{
			"rental_ids": ids,
			"updated":    outcome.Updated,
			"created":    outcome.Created,
			"deleted":    outcome.Deleted,
		})
	})
	if err != nil {
		return SaveOutcome{}, err
	}
	return outcome, nil
}

// Archive soft-hides a group of rows. Per-row failures do not stop the
// remaining rows; the caller receives the partial success count.
func (s *rentalService) Archive(ctx context.Context, userID string, ids []uuid.UUID) (int, error) {
	archived := 0
	var lastErr error
	for _, id := range ids {
		if err := s.rentalRepo.SetArchived(ctx, id, true); err != nil {
			lastErr = err
			continue
		}
		archived++
	}
	if archived == 0 && lastErr != nil {
		return 0, storeErr("archive rentals", lastErr)
	}

	_ = s.audit(ctx, userID, model.ActionArchiveRental, "", map[string]interface{}{
		"rental_ids": ids,
		"archived":   archived,
	})
	return archived, nil
}

// Delete hard-deletes a group of rows. Rows with linked incident reports
// are skipped with a per-row failure message; the rest proceed.
func (s *rentalService) Delete(ctx context.Context, userID string, ids []uuid.UUID) (GroupDeleteResult, error) {
	var result GroupDeleteResult
	for _, id := range ids {
		linked, err := s.reportRepo.ExistsForRental(ctx, id)
		if err != nil {
			return result, storeErr("check linked reports", err)
		}
		if linked {
			result.Failures = append(result.Failures, "rental "+id.String()+" has linked incident reports; delete the reports first")
			continue
		}
		count, err := s.rentalRepo.Delete(ctx, id)
		if err != nil {
			return result, storeErr("delete rental", err)
		}
		if count == 0 {
			result.Failures = append(result.Failures, "rental "+id.String()+" was already deleted")
			continue
		}
		result.Deleted++
	}

	_ = s.audit(ctx, userID, model.ActionDeleteRental, "", map[string]interface{}{
		"rental_ids": ids,
		"deleted":    result.Deleted,
	})
	return result, nil
}

func (s *rentalService) audit(ctx context.Context, userID, action, entityName string, details map[string]interface{}) error {
	var uid *uuid.UUID
	if parsed, err := uuid.Parse(userID); err == nil {
		uid = &parsed
	}
	payload, _ := json.Marshal(details)
	entry := &model.AuditLog{
		UserID:     uid,
		Action:     action,
		EntityName: entityName,
		Details:    string(payload),
	}
	if err := s.auditRepo.Log(ctx, entry); err != nil {
		return storeErr("write audit log", err)
	}
	return nil
}
