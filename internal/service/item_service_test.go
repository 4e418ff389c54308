package service

import (
	"errors"
	"testing"

	"rental-backend/internal/model"
)

func newItemService(env *testEnv) ItemService {
	return NewItemService(env.itemRepo, env.rentalRepo, env.auditRepo, env.txManager)
}

func TestCreateItemValidation(t *testing.T) {
	env := newTestEnv(t)
	svc := newItemService(env)

	cases := []struct {
		name string
		req  SaveItemRequest
	}{
		{"blank name", SaveItemRequest{Name: "   ", QuantityTotal: 5}},
		{"damaged above total", SaveItemRequest{Name: "Tent", QuantityTotal: 5, QuantityDamaged: 6}},
		{"negative price", SaveItemRequest{Name: "Tent", QuantityTotal: 5, RentalPrice: "-10"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx(), "", model.ItemKindRental, tc.req)
			var validationErr *ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestUpdateItemKeepsSaleDeficit(t *testing.T) {
	env := newTestEnv(t)
	svc := newItemService(env)

	dec := seedDecoration(t, env.db, "Balloons", 100, 2)
	// 30 sold: the stored counter sits below the total.
	if err := env.db.Model(&model.Decoration{}).Where("id = ?", dec.ID).
		Update("quantity_available", 70).Error; err != nil {
		t.Fatalf("update: %v", err)
	}

	updated, err := svc.Update(ctx(), "", model.ItemKindDecoration, dec.ID, SaveItemRequest{
		Name:          "Balloons",
		QuantityTotal: 120,
		RentalPrice:   "2",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	// Restock of 20 raises availability by the same delta, keeping the
	// 30-unit sale deficit.
	if updated.QuantityAvailable != 90 {
		t.Fatalf("available = %d, want 90", updated.QuantityAvailable)
	}
}

func TestDeleteItemRefusedWhileRented(t *testing.T) {
	env := newTestEnv(t)
	svc := newItemService(env)

	tent := seedInventoryItem(t, env.db, "Tent", 5, 150)
	seedRental(t, env.db, tent.ID, model.ItemKindRental, 1, "Alice", model.StatusActive,
		day(2026, 3, 10), datePtr(day(2026, 3, 12)))

	err := svc.Delete(ctx(), "", model.ItemKindRental, tent.ID)
	var constraintErr *ConstraintError
	if !errors.As(err, &constraintErr) {
		t.Fatalf("expected ConstraintError, got %v", err)
	}

	var count int64
	env.db.Model(&model.InventoryItem{}).Count(&count)
	if count != 1 {
		t.Fatal("item must survive the refused delete")
	}
}

func TestCatalogRealTimeAvailability(t *testing.T) {
	env := newTestEnv(t)
	tent := seedInventoryItem(t, env.db, "Tent", 10, 150)
	if err := env.db.Model(&model.InventoryItem{}).Where("id = ?", tent.ID).
		Update("quantity_damaged", 2).Error; err != nil {
		t.Fatalf("update: %v", err)
	}
	seedRental(t, env.db, tent.ID, model.ItemKindRental, 3, "Alice", model.StatusActive,
		day(2026, 3, 10), datePtr(day(2026, 3, 12)))

	catalog := NewCatalogService(env.itemRepo, env.rentalRepo)
	items, err := catalog.LoadAll(ctx(), model.ItemKindRental, "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}
	// 10 total minus 3 committed minus 2 damaged.
	if items[0].RealTimeAvailable != 5 {
		t.Fatalf("real-time available = %d, want 5", items[0].RealTimeAvailable)
	}
}
