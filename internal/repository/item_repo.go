package repository

import (
	"context"
	"fmt"

	"rental-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ItemRepository unifies the two physical item tables (inventory_items and
// decorations) behind one interface keyed by explicit item kind.
type ItemRepository interface {
	ListActive(ctx context.Context, kind model.ItemKind, search string) ([]model.Item, error)
	ListArchived(ctx context.Context, kind model.ItemKind) ([]model.Item, error)
	FindByID(ctx context.Context, kind model.ItemKind, id uuid.UUID) (*model.Item, error)
	FindByIDForUpdate(ctx context.Context, kind model.ItemKind, id uuid.UUID) (*model.Item, error)
	NamesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
	Create(ctx context.Context, kind model.ItemKind, item *model.Item) error
	Update(ctx context.Context, item *model.Item) error
	SetArchived(ctx context.Context, kind model.ItemKind, id uuid.UUID, archived bool) error
	Delete(ctx context.Context, kind model.ItemKind, id uuid.UUID) error
	DecrementAvailable(ctx context.Context, kind model.ItemKind, id uuid.UUID, qty int) error
	DeductTotal(ctx context.Context, kind model.ItemKind, id uuid.UUID, qty int) error
}

type itemRepository struct {
	db *gorm.DB
}

func NewItemRepository(db *gorm.DB) ItemRepository {
	return &itemRepository{db: db}
}

func inventoryToItem(i model.InventoryItem) model.Item {
	return model.Item{
		ID: i.ID, Kind: model.ItemKindRental, Name: i.Name, Category: i.Category,
		QuantityTotal: i.QuantityTotal, QuantityDamaged: i.QuantityDamaged,
		QuantityAvailable: i.QuantityAvailable, RentalPrice: i.RentalPrice, Archived: i.Archived,
	}
}

func decorationToItem(d model.Decoration) model.Item {
	return model.Item{
		ID: d.ID, Kind: model.ItemKindDecoration, Name: d.Name, Category: d.Type,
		QuantityTotal: d.QuantityTotal, QuantityDamaged: d.QuantityDamaged,
		QuantityAvailable: d.QuantityAvailable, RentalPrice: d.RentalPrice, Archived: d.Archived,
	}
}

func (r *itemRepository) list(ctx context.Context, kind model.ItemKind, archived bool, search string) ([]model.Item, error) {
	var items []model.Item

	if kind == "" || kind == model.ItemKindRental {
		var rows []model.InventoryItem
		db := GetDB(ctx, r.db).Where("archived = ?", archived)
		if search != "" {
			db = db.Where("lower(name) LIKE lower(?)", "%"+search+"%")
		}
		if err := db.Order("name").Find(&rows).Error; err != nil {
			return nil, err
		}
		for _, row := range rows {
			items = append(items, inventoryToItem(row))
		}
	}

	if kind == "" || kind == model.ItemKindDecoration {
		var rows []model.Decoration
		db := GetDB(ctx, r.db).Where("archived = ?", archived)
		if search != "" {
			db = db.Where("lower(name) LIKE lower(?)", "%"+search+"%")
		}
		if err := db.Order("name").Find(&rows).Error; err != nil {
			return nil, err
		}
		for _, row := range rows {
			items = append(items, decorationToItem(row))
		}
	}

	return items, nil
}

func (r *itemRepository) ListActive(ctx context.Context, kind model.ItemKind, search string) ([]model.Item, error) {
	return r.list(ctx, kind, false, search)
}

func (r *itemRepository) ListArchived(ctx context.Context, kind model.ItemKind) ([]model.Item, error) {
	return r.list(ctx, kind, true, "")
}

func (r *itemRepository) FindByID(ctx context.Context, kind model.ItemKind, id uuid.UUID) (*model.Item, error) {
	switch kind {
	case model.ItemKindRental:
		var row model.InventoryItem
		if err := GetDB(ctx, r.db).First(&row, "id = ?", id).Error; err != nil {
			return nil, err
		}
		item := inventoryToItem(row)
		return &item, nil
	case model.ItemKindDecoration:
		var row model.Decoration
		if err := GetDB(ctx, r.db).First(&row, "id = ?", id).Error; err != nil {
			return nil, err
		}
		item := decorationToItem(row)
		return &item, nil
	default:
		return nil, fmt.Errorf("unknown item kind %q", kind)
	}
}

// forUpdate adds row locking where the dialect supports it. SQLite
// serializes writers on its own and rejects FOR UPDATE syntax.
func forUpdate(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == "sqlite" {
		return db
	}
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

// FindByIDForUpdate locks the item row for the remainder of the enclosing
// transaction. The writer takes this lock before re-checking availability so
// two concurrent checkouts of the same item serialize instead of overselling.
func (r *itemRepository) FindByIDForUpdate(ctx context.Context, kind model.ItemKind, id uuid.UUID) (*model.Item, error) {
	db := forUpdate(GetDB(ctx, r.db))
	switch kind {
	case model.ItemKindRental:
		var row model.InventoryItem
		if err := db.First(&row, "id = ?", id).Error; err != nil {
			return nil, err
		}
		item := inventoryToItem(row)
		return &item, nil
	case model.ItemKindDecoration:
		var row model.Decoration
		if err := db.First(&row, "id = ?", id).Error; err != nil {
			return nil, err
		}
		item := decorationToItem(row)
		return &item, nil
	default:
		return nil, fmt.Errorf("unknown item kind %q", kind)
	}
}

// NamesByIDs resolves display names across both tables in two queries.
func (r *itemRepository) NamesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	names := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	var inv []model.InventoryItem
	if err := GetDB(ctx, r.db).Select("id", "name").Where("id IN ?", ids).Find(&inv).Error; err != nil {
		return nil, err
	}
	for _, row := range inv {
		names[row.ID] = row.Name
	}

	var dec []model.Decoration
	if err := GetDB(ctx, r.db).Select("id", "name").Where("id IN ?", ids).Find(&dec).Error; err != nil {
		return nil, err
	}
	for _, row := range dec {
		names[row.ID] = row.Name
	}

	return names, nil
}

func (r *itemRepository) Create(ctx context.Context, kind model.ItemKind, item *model.Item) error {
	switch kind {
	case model.ItemKindRental:
		row := model.InventoryItem{
			ID: item.ID, Name: item.Name, Category: item.Category,
			QuantityTotal: item.QuantityTotal, QuantityDamaged: item.QuantityDamaged,
			QuantityAvailable: item.QuantityAvailable, RentalPrice: item.RentalPrice,
		}
		if err := GetDB(ctx, r.db).Create(&row).Error; err != nil {
			return err
		}
		item.ID = row.ID
		item.Kind = model.ItemKindRental
		return nil
	case model.ItemKindDecoration:
		row := model.Decoration{
			ID: item.ID, Name: item.Name, Type: item.Category,
			QuantityTotal: item.QuantityTotal, QuantityDamaged: item.QuantityDamaged,
			QuantityAvailable: item.QuantityAvailable, RentalPrice: item.RentalPrice,
		}
		if err := GetDB(ctx, r.db).Create(&row).Error; err != nil {
			return err
		}
		item.ID = row.ID
		item.Kind = model.ItemKindDecoration
		return nil
	default:
		return fmt.Errorf("unknown item kind %q", kind)
	}
}

func (r *itemRepository) Update(ctx context.Context, item *model.Item) error {
	cols := map[string]interface{}{
		"name":               item.Name,
		"quantity_total":     item.QuantityTotal,
		"quantity_damaged":   item.QuantityDamaged,
		"quantity_available": item.QuantityAvailable,
		"rental_price":       item.RentalPrice,
	}
	switch item.Kind {
	case model.ItemKindRental:
		cols["category"] = item.Category
		return GetDB(ctx, r.db).Model(&model.InventoryItem{}).Where("id = ?", item.ID).Updates(cols).Error
	case model.ItemKindDecoration:
		cols["type"] = item.Category
		return GetDB(ctx, r.db).Model(&model.Decoration{}).Where("id = ?", item.ID).Updates(cols).Error
	default:
		return fmt.Errorf("unknown item kind %q", item.Kind)
	}
}

func (r *itemRepository) SetArchived(ctx context.Context, kind model.ItemKind, id uuid.UUID, archived bool) error {
	switch kind {
	case model.ItemKindRental:
		return GetDB(ctx, r.db).Model(&model.InventoryItem{}).Where("id = ?", id).Update("archived", archived).Error
	case model.ItemKindDecoration:
		return GetDB(ctx, r.db).Model(&model.Decoration{}).Where("id = ?", id).Update("archived", archived).Error
	default:
		return fmt.Errorf("unknown item kind %q", kind)
	}
}

func (r *itemRepository) Delete(ctx context.Context, kind model.ItemKind, id uuid.UUID) error {
	switch kind {
	case model.ItemKindRental:
		return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.InventoryItem{}).Error
	case model.ItemKindDecoration:
		return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Decoration{}).Error
	default:
		return fmt.Errorf("unknown item kind %q", kind)
	}
}

// DecrementAvailable lowers the stored availability counter. Only sale-kind
// commits call this; durable inventory availability is always computed.
func (r *itemRepository) DecrementAvailable(ctx context.Context, kind model.ItemKind, id uuid.UUID, qty int) error {
	db := GetDB(ctx, r.db)
	switch kind {
	case model.ItemKindRental:
		return db.Model(&model.InventoryItem{}).Where("id = ?", id).
			Update("quantity_available", gorm.Expr("quantity_available - ?", qty)).Error
	case model.ItemKindDecoration:
		return db.Model(&model.Decoration{}).Where("id = ?", id).
			Update("quantity_available", gorm.Expr("quantity_available - ?", qty)).Error
	default:
		return fmt.Errorf("unknown item kind %q", kind)
	}
}

// DeductTotal permanently shrinks the fleet after irrecoverable loss,
// floored at zero.
func (r *itemRepository) DeductTotal(ctx context.Context, kind model.ItemKind, id uuid.UUID, qty int) error {
	item, err := r.FindByIDForUpdate(ctx, kind, id)
	if err != nil {
		return err
	}
	newTotal := item.QuantityTotal - qty
	if newTotal < 0 {
		newTotal = 0
	}
	switch kind {
	case model.ItemKindRental:
		return GetDB(ctx, r.db).Model(&model.InventoryItem{}).Where("id = ?", id).
			Update("quantity_total", newTotal).Error
	case model.ItemKindDecoration:
		return GetDB(ctx, r.db).Model(&model.Decoration{}).Where("id = ?", id).
			Update("quantity_total", newTotal).Error
	default:
		return fmt.Errorf("unknown item kind %q", kind)
	}
}
