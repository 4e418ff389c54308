package service

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"rental-backend/internal/model"
)

func TestResolveAllGood(t *testing.T) {
	env := newTestEnv(t)
	tent := seedInventoryItem(t, env.db, "Tent", 5, 150)
	rental := seedRental(t, env.db, tent.ID, model.ItemKindRental, 2, "Alice", model.StatusActive,
		day(2026, 3, 10), datePtr(day(2026, 3, 12)))
	svc := env.returnService()

	outcome, err := svc.Resolve(ctx(), "", ResolveReturnRequest{
		RentalIDs:  []string{rental.ID.String()},
		Resolution: ResolutionAllGood,
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if outcome.Returned != 1 || outcome.ReportsWritten != 1 {
		t.Fatalf("outcome = %+v", outcome)
	}

	var row model.Rental
	if err := env.db.First(&row, "id = ?", rental.ID).Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if row.Status != model.StatusReturned {
		t.Fatalf("status = %q, want returned", row.Status)
	}

	var report model.Report
	if err := env.db.First(&report, "rental_id = ?", rental.ID).Error; err != nil {
		t.Fatalf("load report: %v", err)
	}
	if report.Type != model.ReportReturned || report.Quantity != 2 {
		t.Fatalf("report = %+v", report)
	}
	if report.ReturnCondition == nil || *report.ReturnCondition != model.ConditionGood {
		t.Fatalf("condition = %v", report.ReturnCondition)
	}
}

func TestResolvePartialMissingDeductsFleet(t *testing.T) {
	env := newTestEnv(t)
	tent := seedInventoryItem(t, env.db, "Tent", 5, 150)
	chairs := seedInventoryItem(t, env.db, "Chair", 20, 10)
	tentRow := seedRental(t, env.db, tent.ID, model.ItemKindRental, 3, "Alice", model.StatusActive,
		day(2026, 3, 10), datePtr(day(2026, 3, 12)))
	chairRow := seedRental(t, env.db, chairs.ID, model.ItemKindRental, 2, "Alice", model.StatusActive,
		day(2026, 3, 10), datePtr(day(2026, 3, 12)))
	svc := env.returnService()

	// One of three tents came back, both chairs did.
	outcome, err := svc.Resolve(ctx(), "", ResolveReturnRequest{
		RentalIDs:  []string{tentRow.ID.String(), chairRow.ID.String()},
		Resolution: ResolutionPartialMissing,
		MissingLines: []MissingLine{
			{RentalID: tentRow.ID.String(), QuantityReturned: 1},
			{RentalID: chairRow.ID.String(), QuantityReturned: 2},
		},
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if outcome.UnitsMissing != 2 {
		t.Fatalf("missing = %d, want 2", outcome.UnitsMissing)
	}

	var reloaded model.InventoryItem
	if err := env.db.First(&reloaded, "id = ?", tent.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.QuantityTotal != 3 {
		t.Fatalf("tent total = %d, want 3 (two lost units deducted)", reloaded.QuantityTotal)
	}

	var chairItem model.InventoryItem
	if err := env.db.First(&chairItem, "id = ?", chairs.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if chairItem.QuantityTotal != 20 {
		t.Fatalf("chair total = %d, want 20 (fully returned)", chairItem.QuantityTotal)
	}

	// Tent line produced two reports: one returned, one missing.
	var reports []model.Report
	if err := env.db.Where("rental_id = ?", tentRow.ID).Order("type desc").Find(&reports).Error; err != nil {
		t.Fatalf("load reports: %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("tent reports = %d, want 2", len(reports))
	}
}

func TestResolveMissingExceedingRentedIsRejected(t *testing.T) {
	env := newTestEnv(t)
	tent := seedInventoryItem(t, env.db, "Tent", 5, 150)
	rental := seedRental(t, env.db, tent.ID, model.ItemKindRental, 2, "Alice", model.StatusActive,
		day(2026, 3, 10), datePtr(day(2026, 3, 12)))
	svc := env.returnService()

	_, err := svc.Resolve(ctx(), "", ResolveReturnRequest{
		RentalIDs:    []string{rental.ID.String()},
		Resolution:   ResolutionPartialMissing,
		MissingLines: []MissingLine{{RentalID: rental.ID.String(), QuantityReturned: 5}},
	})
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	// The refused return left the rental open.
	var row model.Rental
	env.db.First(&row, "id = ?", rental.ID)
	if row.Status != model.StatusActive {
		t.Fatalf("status = %q, want active", row.Status)
	}
}

func TestResolveDamagedPreservesFleet(t *testing.T) {
	env := newTestEnv(t)
	tent := seedInventoryItem(t, env.db, "Tent", 5, 150)
	rental := seedRental(t, env.db, tent.ID, model.ItemKindRental, 2, "Alice", model.StatusActive,
		day(2026, 3, 10), datePtr(day(2026, 3, 12)))
	svc := env.returnService()

	outcome, err := svc.Resolve(ctx(), "", ResolveReturnRequest{
		RentalIDs:   []string{rental.ID.String()},
		Resolution:  ResolutionDamaged,
		DamageNotes: "torn canvas on both units",
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if outcome.Returned != 1 {
		t.Fatalf("outcome = %+v", outcome)
	}

	// Damage never shrinks the fleet; the units are preserved and flagged.
	var reloaded model.InventoryItem
	env.db.First(&reloaded, "id = ?", tent.ID)
	if reloaded.QuantityTotal != 5 {
		t.Fatalf("total = %d, want 5", reloaded.QuantityTotal)
	}

	var report model.Report
	if err := env.db.First(&report, "rental_id = ?", rental.ID).Error; err != nil {
		t.Fatalf("load report: %v", err)
	}
	if report.ReturnCondition == nil || *report.ReturnCondition != model.ConditionDamaged {
		t.Fatalf("condition = %v", report.ReturnCondition)
	}
	if report.Severity == nil || *report.Severity != model.SeverityMinor {
		t.Fatalf("severity should default to minor, got %v", report.Severity)
	}
	if report.DamageNotes == nil || *report.DamageNotes == "" {
		t.Fatal("damage notes must be carried on the report")
	}
}

func TestResolveDamagedSeveritiesPerLine(t *testing.T) {
	env := newTestEnv(t)
	tent := seedInventoryItem(t, env.db, "Tent", 5, 150)
	chairs := seedInventoryItem(t, env.db, "Chairs", 20, 10)
	tentRow := seedRental(t, env.db, tent.ID, model.ItemKindRental, 1, "Alice", model.StatusActive,
		day(2026, 3, 10), datePtr(day(2026, 3, 12)))
	chairRow := seedRental(t, env.db, chairs.ID, model.ItemKindRental, 4, "Alice", model.StatusActive,
		day(2026, 3, 10), datePtr(day(2026, 3, 12)))
	svc := env.returnService()

	_, err := svc.Resolve(ctx(), "", ResolveReturnRequest{
		RentalIDs:   []string{tentRow.ID.String(), chairRow.ID.String()},
		Resolution:  ResolutionDamaged,
		DamageNotes: "storm damage across the order",
		DamagedLines: []DamagedLine{
			{RentalID: tentRow.ID.String(), Severity: model.SeverityMajor},
		},
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	var tentReport, chairReport model.Report
	if err := env.db.First(&tentReport, "rental_id = ?", tentRow.ID).Error; err != nil {
		t.Fatalf("load tent report: %v", err)
	}
	if err := env.db.First(&chairReport, "rental_id = ?", chairRow.ID).Error; err != nil {
		t.Fatalf("load chair report: %v", err)
	}
	if tentReport.Severity == nil || *tentReport.Severity != model.SeverityMajor {
		t.Fatalf("tent severity = %v, want major", tentReport.Severity)
	}
	// Lines without an explicit tag default to minor.
	if chairReport.Severity == nil || *chairReport.Severity != model.SeverityMinor {
		t.Fatalf("chair severity = %v, want minor", chairReport.Severity)
	}
}

func TestResolveDamagedRejectsUnknownSeverity(t *testing.T) {
	env := newTestEnv(t)
	tent := seedInventoryItem(t, env.db, "Tent", 5, 150)
	rental := seedRental(t, env.db, tent.ID, model.ItemKindRental, 2, "Alice", model.StatusActive,
		day(2026, 3, 10), datePtr(day(2026, 3, 12)))
	svc := env.returnService()

	_, err := svc.Resolve(ctx(), "", ResolveReturnRequest{
		RentalIDs:   []string{rental.ID.String()},
		Resolution:  ResolutionDamaged,
		DamageNotes: "scratched",
		DamagedLines: []DamagedLine{
			{RentalID: rental.ID.String(), Severity: "catastrophic"},
		},
	})
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestResolveDamagedRequiresDescription(t *testing.T) {
	env := newTestEnv(t)
	tent := seedInventoryItem(t, env.db, "Tent", 5, 150)
	rental := seedRental(t, env.db, tent.ID, model.ItemKindRental, 2, "Alice", model.StatusActive,
		day(2026, 3, 10), datePtr(day(2026, 3, 12)))
	svc := env.returnService()

	_, err := svc.Resolve(ctx(), "", ResolveReturnRequest{
		RentalIDs:  []string{rental.ID.String()},
		Resolution: ResolutionDamaged,
	})
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestResolveAlreadyReturnedIsRejected(t *testing.T) {
	env := newTestEnv(t)
	tent := seedInventoryItem(t, env.db, "Tent", 5, 150)
	rental := seedRental(t, env.db, tent.ID, model.ItemKindRental, 2, "Alice", model.StatusReturned,
		day(2026, 3, 10), datePtr(day(2026, 3, 12)))
	svc := env.returnService()

	_, err := svc.Resolve(ctx(), "", ResolveReturnRequest{
		RentalIDs:  []string{rental.ID.String()},
		Resolution: ResolutionAllGood,
	})
	var constraintErr *ConstraintError
	if !errors.As(err, &constraintErr) {
		t.Fatalf("expected ConstraintError, got %v", err)
	}
}

func TestClassifyMixedOrderNeedsChoice(t *testing.T) {
	env := newTestEnv(t)
	tent := seedInventoryItem(t, env.db, "Tent", 5, 150)
	dec := seedDecoration(t, env.db, "Balloons", 100, 2)
	tentRow := seedRental(t, env.db, tent.ID, model.ItemKindRental, 1, "Alice", model.StatusActive,
		day(2026, 3, 10), datePtr(day(2026, 3, 12)))
	decRow := seedRental(t, env.db, dec.ID, model.ItemKindDecoration, 10, "Alice", model.StatusActive,
		day(2026, 3, 10), datePtr(day(2026, 3, 12)))
	svc := env.returnService()

	c, err := svc.Classify(ctx(), "", []uuid.UUID{tentRow.ID, decRow.ID})
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if c.DecorationOnly || c.AutoResolved {
		t.Fatalf("classification = %+v, want a pending choice", c)
	}
	if len(c.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(c.Items))
	}

	// A pending classification writes nothing.
	var row model.Rental
	env.db.First(&row, "id = ?", tentRow.ID)
	if row.Status != model.StatusActive {
		t.Fatalf("status = %q, want untouched active", row.Status)
	}
}

func TestClassifyDecorationOnlyAutoResolves(t *testing.T) {
	env := newTestEnv(t)
	dec := seedDecoration(t, env.db, "Balloons", 100, 2)
	decRow := seedRental(t, env.db, dec.ID, model.ItemKindDecoration, 10, "Bob", model.StatusActive,
		day(2026, 3, 10), nil)
	svc := env.returnService()

	c, err := svc.Classify(ctx(), "", []uuid.UUID{decRow.ID})
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if !c.DecorationOnly || !c.AutoResolved {
		t.Fatalf("classification = %+v, want auto-resolved", c)
	}

	var row model.Rental
	env.db.First(&row, "id = ?", decRow.ID)
	if row.Status != model.StatusReturned {
		t.Fatalf("status = %q, want returned", row.Status)
	}

	var report model.Report
	if err := env.db.First(&report, "rental_id = ?", decRow.ID).Error; err != nil {
		t.Fatalf("load report: %v", err)
	}
	if report.Type != model.ReportSold {
		t.Fatalf("report type = %q, want sold (sales close as sold)", report.Type)
	}
}
