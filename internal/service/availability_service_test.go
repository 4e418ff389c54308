package service

import (
	"testing"
	"time"

	"rental-backend/internal/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCheckRejectsInvertedDates(t *testing.T) {
	env := newTestEnv(t)
	item := seedInventoryItem(t, env.db, "Tent", 5, 150)
	svc := NewAvailabilityService(env.itemRepo, env.rentalRepo)

	res, err := svc.Check(ctx(), model.ItemKindRental, item.ID, day(2026, 3, 14), day(2026, 3, 10), 1, nil)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if res.Available {
		t.Fatal("expected unavailable for inverted dates")
	}
	if res.Reason != "Invalid dates" {
		t.Fatalf("reason = %q", res.Reason)
	}
}

func TestCheckConservativeOverlap(t *testing.T) {
	env := newTestEnv(t)
	item := seedInventoryItem(t, env.db, "Tent", 5, 150)
	// All five units booked March 10-19.
	seedRental(t, env.db, item.ID, model.ItemKindRental, 5, "Alice", model.StatusActive,
		day(2026, 3, 10), datePtr(day(2026, 3, 19)))

	svc := NewAvailabilityService(env.itemRepo, env.rentalRepo)

	// March 19-21 overlaps the booking on a single day; the full quantity
	// still counts against the whole range.
	res, err := svc.Check(ctx(), model.ItemKindRental, item.ID, day(2026, 3, 19), day(2026, 3, 21), 1, nil)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if res.Available {
		t.Fatal("expected unavailable: one-day overlap blocks the whole range")
	}
	if res.Committed != 5 {
		t.Fatalf("committed = %d, want 5", res.Committed)
	}

	// March 20-22 does not overlap; everything is free again.
	res, err = svc.Check(ctx(), model.ItemKindRental, item.ID, day(2026, 3, 20), day(2026, 3, 22), 5, nil)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !res.Available {
		t.Fatalf("expected available, reason %q", res.Reason)
	}
	if res.AvailableQty != 5 {
		t.Fatalf("available = %d, want 5", res.AvailableQty)
	}
}

func TestCheckPartialCommitment(t *testing.T) {
	env := newTestEnv(t)
	item := seedInventoryItem(t, env.db, "Chair", 10, 10)
	seedRental(t, env.db, item.ID, model.ItemKindRental, 6, "Bob", model.StatusReserved,
		day(2026, 4, 1), datePtr(day(2026, 4, 5)))

	svc := NewAvailabilityService(env.itemRepo, env.rentalRepo)

	res, err := svc.Check(ctx(), model.ItemKindRental, item.ID, day(2026, 4, 3), day(2026, 4, 4), 4, nil)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !res.Available || res.AvailableQty != 4 {
		t.Fatalf("available=%v qty=%d, want true/4", res.Available, res.AvailableQty)
	}

	res, err = svc.Check(ctx(), model.ItemKindRental, item.ID, day(2026, 4, 3), day(2026, 4, 4), 5, nil)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if res.Available {
		t.Fatal("expected unavailable for 5 of 4 free")
	}
	if res.Reason != "Insufficient stock for the selected dates" {
		t.Fatalf("reason = %q", res.Reason)
	}
}

func TestCheckExcludesOwnRentalWhenEditing(t *testing.T) {
	env := newTestEnv(t)
	item := seedInventoryItem(t, env.db, "Tent", 5, 150)
	existing := seedRental(t, env.db, item.ID, model.ItemKindRental, 5, "Alice", model.StatusActive,
		day(2026, 3, 10), datePtr(day(2026, 3, 19)))

	svc := NewAvailabilityService(env.itemRepo, env.rentalRepo)

	res, err := svc.Check(ctx(), model.ItemKindRental, item.ID, day(2026, 3, 10), day(2026, 3, 19), 5, &existing.ID)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !res.Available {
		t.Fatalf("editing its own dates must not collide with itself, reason %q", res.Reason)
	}
}

func TestCheckIgnoresReleasedStatuses(t *testing.T) {
	env := newTestEnv(t)
	item := seedInventoryItem(t, env.db, "Tent", 5, 150)
	seedRental(t, env.db, item.ID, model.ItemKindRental, 5, "Alice", model.StatusReturned,
		day(2026, 3, 10), datePtr(day(2026, 3, 19)))
	seedRental(t, env.db, item.ID, model.ItemKindRental, 5, "Bob", model.StatusCancelled,
		day(2026, 3, 10), datePtr(day(2026, 3, 19)))

	svc := NewAvailabilityService(env.itemRepo, env.rentalRepo)

	res, err := svc.Check(ctx(), model.ItemKindRental, item.ID, day(2026, 3, 12), day(2026, 3, 13), 5, nil)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !res.Available {
		t.Fatalf("returned and cancelled rentals must not hold inventory, reason %q", res.Reason)
	}
}

func TestCheckOverdueStillHoldsInventory(t *testing.T) {
	env := newTestEnv(t)
	item := seedInventoryItem(t, env.db, "Tent", 5, 150)
	seedRental(t, env.db, item.ID, model.ItemKindRental, 5, "Alice", model.StatusOverdue,
		day(2026, 3, 10), datePtr(day(2026, 3, 19)))

	svc := NewAvailabilityService(env.itemRepo, env.rentalRepo)

	res, err := svc.Check(ctx(), model.ItemKindRental, item.ID, day(2026, 3, 12), day(2026, 3, 13), 1, nil)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if res.Available {
		t.Fatal("overdue rentals still hold inventory until explicitly returned")
	}
}

func TestCheckDecorationUsesStoredCounter(t *testing.T) {
	env := newTestEnv(t)
	dec := seedDecoration(t, env.db, "Balloons", 100, 2)
	if err := env.db.Model(&model.Decoration{}).Where("id = ?", dec.ID).
		Update("quantity_available", 3).Error; err != nil {
		t.Fatalf("update: %v", err)
	}

	svc := NewAvailabilityService(env.itemRepo, env.rentalRepo)

	res, err := svc.Check(ctx(), model.ItemKindDecoration, dec.ID, day(2026, 3, 10), day(2026, 3, 10), 5, nil)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if res.Available || res.AvailableQty != 3 {
		t.Fatalf("available=%v qty=%d, want false/3", res.Available, res.AvailableQty)
	}
}
