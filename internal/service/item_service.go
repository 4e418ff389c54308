package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"rental-backend/internal/model"
	"rental-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SaveItemRequest struct {
	Name            string `json:"name" binding:"required"`
	Category        string `json:"category"`
	QuantityTotal   int    `json:"quantity_total" binding:"min=0"`
	QuantityDamaged int    `json:"quantity_damaged" binding:"min=0"`
	RentalPrice     string `json:"rental_price"`
}

// ItemService manages the two item catalogs behind the unified kind-tagged
// surface.
type ItemService interface {
	Create(ctx context.Context, userID string, kind model.ItemKind, req SaveItemRequest) (*model.Item, error)
	Update(ctx context.Context, userID string, kind model.ItemKind, id uuid.UUID, req SaveItemRequest) (*model.Item, error)
	Archive(ctx context.Context, userID string, kind model.ItemKind, id uuid.UUID) error
	Restore(ctx context.Context, userID string, kind model.ItemKind, id uuid.UUID) error
	Delete(ctx context.Context, userID string, kind model.ItemKind, id uuid.UUID) error
}

type itemService struct {
	itemRepo   repository.ItemRepository
	rentalRepo repository.RentalRepository
	auditRepo  repository.AuditRepository
	txManager  repository.TransactionManager
}

func NewItemService(
	itemRepo repository.ItemRepository,
	rentalRepo repository.RentalRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) ItemService {
	return &itemService{
		itemRepo:   itemRepo,
		rentalRepo: rentalRepo,
		auditRepo:  auditRepo,
		txManager:  txManager,
	}
}

func (s *itemService) validate(req SaveItemRequest) (decimal.Decimal, error) {
	if strings.TrimSpace(req.Name) == "" {
		return decimal.Zero, validationf("item name is required")
	}
	if req.QuantityTotal < 0 {
		return decimal.Zero, validationf("total quantity cannot be negative")
	}
	if req.QuantityDamaged < 0 || req.QuantityDamaged > req.QuantityTotal {
		return decimal.Zero, validationf("damaged quantity must be between 0 and the total quantity")
	}

	price := decimal.Zero
	if req.RentalPrice != "" {
		parsed, err := decimal.NewFromString(req.RentalPrice)
		if err != nil || parsed.IsNegative() {
			return decimal.Zero, validationf("invalid price %q", req.RentalPrice)
		}
		price = parsed
	}
	return price, nil
}

func (s *itemService) Create(ctx context.Context, userID string, kind model.ItemKind, req SaveItemRequest) (*model.Item, error) {
	if !kind.Valid() {
		return nil, validationf("unknown item kind %q", kind)
	}
	price, err := s.validate(req)
	if err != nil {
		return nil, err
	}

	item := &model.Item{
		Kind:              kind,
		Name:              strings.TrimSpace(req.Name),
		Category:          req.Category,
		QuantityTotal:     req.QuantityTotal,
		QuantityDamaged:   req.QuantityDamaged,
		QuantityAvailable: req.QuantityTotal - req.QuantityDamaged,
		RentalPrice:       price,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.itemRepo.Create(txCtx, kind, item); err != nil {
			return storeErr("create item", err)
		}
		return s.audit(txCtx, userID, model.ActionCreateItem, item, map[string]interface{}{
			"quantity_total": item.QuantityTotal,
		})
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// Update edits an item in place. The quantity delta is mirrored into the
// stored availability counter so sold decorations keep their deficit.
func (s *itemService) Update(ctx context.Context, userID string, kind model.ItemKind, id uuid.UUID, req SaveItemRequest) (*model.Item, error) {
	price, err := s.validate(req)
	if err != nil {
		return nil, err
	}

	var updated *model.Item
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		current, err := s.itemRepo.FindByIDForUpdate(txCtx, kind, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return validationf("item not found")
			}
			return storeErr("lock item", err)
		}

		available := current.QuantityAvailable + (req.QuantityTotal - current.QuantityTotal)
		if available < 0 {
			available = 0
		}

		next := *current
		next.Name = strings.TrimSpace(req.Name)
		next.Category = req.Category
		next.QuantityTotal = req.QuantityTotal
		next.QuantityDamaged = req.QuantityDamaged
		next.QuantityAvailable = available
		next.RentalPrice = price

		if err := s.itemRepo.Update(txCtx, &next); err != nil {
			return storeErr("update item", err)
		}
		updated = &next

		return s.audit(txCtx, userID, model.ActionUpdateItem, &next, map[string]interface{}{
			"old_quantity_total":   current.QuantityTotal,
			"new_quantity_total":   next.QuantityTotal,
			"old_quantity_damaged": current.QuantityDamaged,
			"new_quantity_damaged": next.QuantityDamaged,
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *itemService) Archive(ctx context.Context, userID string, kind model.ItemKind, id uuid.UUID) error {
	return s.setArchived(ctx, userID, kind, id, true)
}

func (s *itemService) Restore(ctx context.Context, userID string, kind model.ItemKind, id uuid.UUID) error {
	return s.setArchived(ctx, userID, kind, id, false)
}

func (s *itemService) setArchived(ctx context.Context, userID string, kind model.ItemKind, id uuid.UUID, archived bool) error {
	item, err := s.itemRepo.FindByID(ctx, kind, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return validationf("item not found")
		}
		return storeErr("find item", err)
	}
	if err := s.itemRepo.SetArchived(ctx, kind, id, archived); err != nil {
		return storeErr("archive item", err)
	}
	return s.audit(ctx, userID, model.ActionArchiveItem, item, map[string]interface{}{
		"archived": archived,
	})
}

// Delete hard-deletes an item. Items still referenced by committed rentals
// are refused; archive them instead.
func (s *itemService) Delete(ctx context.Context, userID string, kind model.ItemKind, id uuid.UUID) error {
	item, err := s.itemRepo.FindByID(ctx, kind, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return validationf("item not found")
		}
		return storeErr("find item", err)
	}

	committed, err := s.rentalRepo.SumCommitted(ctx)
	if err != nil {
		return storeErr("check committed rentals", err)
	}
	if committed[id] > 0 {
		return &ConstraintError{Message: "cannot delete an item with active rentals; archive it instead"}
	}

	if err := s.itemRepo.Delete(ctx, kind, id); err != nil {
		return storeErr("delete item", err)
	}
	return s.audit(ctx, userID, model.ActionDeleteItem, item, nil)
}

func (s *itemService) audit(ctx context.Context, userID, action string, item *model.Item, details map[string]interface{}) error {
	var uid *uuid.UUID
	if parsed, err := uuid.Parse(userID); err == nil {
		uid = &parsed
	}
	var payload []byte
	if details != nil {
		payload, _ = json.Marshal(details)
	}
	entry := &model.AuditLog{
		UserID:     uid,
		Action:     action,
		EntityID:   item.ID.String(),
		EntityName: item.Name,
		Details:    string(payload),
	}
	if err := s.auditRepo.Log(ctx, entry); err != nil {
		return storeErr("write audit log", err)
	}
	return nil
}
