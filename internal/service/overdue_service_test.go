package service

import (
	"testing"
	"time"

	"rental-backend/internal/model"
)

func TestSweepMarksPastDueActiveRentals(t *testing.T) {
	env := newTestEnv(t)
	tent := seedInventoryItem(t, env.db, "Tent", 5, 150)

	pastDue := seedRental(t, env.db, tent.ID, model.ItemKindRental, 1, "Alice", model.StatusActive,
		day(2025, 1, 1), datePtr(day(2025, 1, 3)))
	future := seedRental(t, env.db, tent.ID, model.ItemKindRental, 1, "Bob", model.StatusActive,
		time.Now(), datePtr(time.Now().AddDate(0, 0, 7)))
	reserved := seedRental(t, env.db, tent.ID, model.ItemKindRental, 1, "Carol", model.StatusReserved,
		day(2025, 1, 1), datePtr(day(2025, 1, 3)))

	svc := NewOverdueService(env.rentalRepo, env.auditRepo)
	count, err := svc.Sweep(ctx())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if count != 1 {
		t.Fatalf("marked = %d, want 1", count)
	}

	assertStatus := func(id interface{}, want string) {
		var row model.Rental
		if err := env.db.First(&row, "id = ?", id).Error; err != nil {
			t.Fatalf("load: %v", err)
		}
		if row.Status != want {
			t.Fatalf("status = %q, want %q", row.Status, want)
		}
	}
	assertStatus(pastDue.ID, model.StatusOverdue)
	assertStatus(future.ID, model.StatusActive)
	// Only active rentals are promoted; reservations age separately.
	assertStatus(reserved.ID, model.StatusReserved)
}

func TestSweepLeavesReturnsDueTodayOpen(t *testing.T) {
	env := newTestEnv(t)
	tent := seedInventoryItem(t, env.db, "Tent", 5, 150)

	today := startOfDay(time.Now())
	dueToday := seedRental(t, env.db, tent.ID, model.ItemKindRental, 1, "Alice", model.StatusActive,
		today.AddDate(0, 0, -2), datePtr(today))
	dueYesterday := seedRental(t, env.db, tent.ID, model.ItemKindRental, 1, "Bob", model.StatusActive,
		today.AddDate(0, 0, -2), datePtr(today.AddDate(0, 0, -1)))

	svc := NewOverdueService(env.rentalRepo, env.auditRepo)
	count, err := svc.Sweep(ctx())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if count != 1 {
		t.Fatalf("marked = %d, want 1", count)
	}

	var row model.Rental
	env.db.First(&row, "id = ?", dueYesterday.ID)
	if row.Status != model.StatusOverdue {
		t.Fatalf("yesterday's return should be overdue, got %q", row.Status)
	}
	// Same local-midnight boundary the dashboard's due-today counter uses:
	// a rental due today stays open until tomorrow's sweep.
	var todayRow model.Rental
	env.db.First(&todayRow, "id = ?", dueToday.ID)
	if todayRow.Status != model.StatusActive {
		t.Fatalf("today's return flipped early, got %q", todayRow.Status)
	}
}

func TestSweepIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	tent := seedInventoryItem(t, env.db, "Tent", 5, 150)
	seedRental(t, env.db, tent.ID, model.ItemKindRental, 1, "Alice", model.StatusActive,
		day(2025, 1, 1), datePtr(day(2025, 1, 3)))

	svc := NewOverdueService(env.rentalRepo, env.auditRepo)
	if _, err := svc.Sweep(ctx()); err != nil {
		t.Fatalf("sweep: %v", err)
	}
	count, err := svc.Sweep(ctx())
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if count != 0 {
		t.Fatalf("second sweep marked %d, want 0", count)
	}
}
