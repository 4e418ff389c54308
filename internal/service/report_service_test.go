package service

import (
	"errors"
	"testing"

	"rental-backend/internal/model"
)

func newReportService(env *testEnv) ReportService {
	return NewReportService(env.reportRepo, env.rentalRepo, env.itemRepo, env.auditRepo)
}

func TestCreateManualReport(t *testing.T) {
	env := newTestEnv(t)
	svc := newReportService(env)

	tent := seedInventoryItem(t, env.db, "Tent", 5, 150)
	row := seedRental(t, env.db, tent.ID, model.ItemKindRental, 3, "Alice", model.StatusActive,
		day(2026, 3, 10), datePtr(day(2026, 3, 12)))

	report, err := svc.Create(ctx(), "", CreateReportRequest{
		RentalID: row.ID.String(),
		Type:     model.ReportMissing,
		Quantity: 1,
		Notes:    "one pole missing at pickup",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if report.ItemName != "Tent" || report.Type != model.ReportMissing {
		t.Fatalf("unexpected report: %+v", report)
	}

	var stored model.Report
	if err := env.db.First(&stored, "rental_id = ?", row.ID).Error; err != nil {
		t.Fatalf("load report: %v", err)
	}
	if stored.Quantity != 1 {
		t.Fatalf("quantity = %d, want 1", stored.Quantity)
	}
}

func TestCreateManualReportRejectsBadInput(t *testing.T) {
	env := newTestEnv(t)
	svc := newReportService(env)

	tent := seedInventoryItem(t, env.db, "Tent", 5, 150)
	row := seedRental(t, env.db, tent.ID, model.ItemKindRental, 3, "Alice", model.StatusActive,
		day(2026, 3, 10), datePtr(day(2026, 3, 12)))

	cases := []struct {
		name string
		req  CreateReportRequest
	}{
		{"unknown type", CreateReportRequest{RentalID: row.ID.String(), Type: "broken", Quantity: 1}},
		{"zero quantity", CreateReportRequest{RentalID: row.ID.String(), Type: model.ReportMissing, Quantity: 0}},
		{"over rented amount", CreateReportRequest{RentalID: row.ID.String(), Type: model.ReportMissing, Quantity: 4}},
		{"bad rental id", CreateReportRequest{RentalID: "not-a-uuid", Type: model.ReportMissing, Quantity: 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx(), "", tc.req)
			var validationErr *ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}
}
