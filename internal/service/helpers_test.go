package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"rental-backend/internal/database"
	"rental-backend/internal/model"
	"rental-backend/internal/repository"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

type testEnv struct {
	db         *gorm.DB
	itemRepo   repository.ItemRepository
	rentalRepo repository.RentalRepository
	reportRepo repository.ReportRepository
	auditRepo  repository.AuditRepository
	txManager  repository.TransactionManager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := setupTestDB(t)
	return &testEnv{
		db:         db,
		itemRepo:   repository.NewItemRepository(db),
		rentalRepo: repository.NewRentalRepository(db),
		reportRepo: repository.NewReportRepository(db),
		auditRepo:  repository.NewAuditRepository(db),
		txManager:  repository.NewTransactionManager(db),
	}
}

func (e *testEnv) rentalService() RentalService {
	return NewRentalService(e.itemRepo, e.rentalRepo, e.reportRepo, e.auditRepo, e.txManager)
}

func (e *testEnv) returnService() ReturnService {
	return NewReturnService(e.itemRepo, e.rentalRepo, e.reportRepo, e.auditRepo, e.txManager)
}

func seedInventoryItem(t *testing.T, db *gorm.DB, name string, total int, price int64) model.InventoryItem {
	t.Helper()
	item := model.InventoryItem{
		Name:              name,
		QuantityTotal:     total,
		QuantityAvailable: total,
		RentalPrice:       decimal.NewFromInt(price),
	}
	if err := db.Create(&item).Error; err != nil {
		t.Fatalf("seed inventory item: %v", err)
	}
	return item
}

func seedDecoration(t *testing.T, db *gorm.DB, name string, total int, price int64) model.Decoration {
	t.Helper()
	dec := model.Decoration{
		Name:              name,
		QuantityTotal:     total,
		QuantityAvailable: total,
		RentalPrice:       decimal.NewFromInt(price),
	}
	if err := db.Create(&dec).Error; err != nil {
		t.Fatalf("seed decoration: %v", err)
	}
	return dec
}

func seedRental(t *testing.T, db *gorm.DB, itemID uuid.UUID, kind model.ItemKind, qty int, renter, status string, rentDate time.Time, returnDate *time.Time) model.Rental {
	t.Helper()
	rental := model.Rental{
		ItemKind:       kind,
		ItemID:         itemID,
		Quantity:       qty,
		RenterName:     renter,
		RentDate:       rentDate,
		ReturnDate:     returnDate,
		Status:         status,
		PaymentStatus:  model.PaymentPending,
		PaymentMethod:  "Cash",
		PaymentAmount:  decimal.Zero,
		AdvancePayment: decimal.Zero,
	}
	if err := db.Create(&rental).Error; err != nil {
		t.Fatalf("seed rental: %v", err)
	}
	return rental
}

func datePtr(d time.Time) *time.Time { return &d }

func ctx() context.Context { return context.Background() }
