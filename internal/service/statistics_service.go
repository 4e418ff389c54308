package service

import (
	"context"
	"time"

	"rental-backend/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type StatisticsService interface {
	GetSummary(ctx context.Context) (model.SummaryResponse, error)
}

type statisticsService struct {
	db *gorm.DB
}

func NewStatisticsService(db *gorm.DB) StatisticsService {
	return &statisticsService{db: db}
}

// GetSummary aggregates the dashboard counters over non-archived rentals.
func (s *statisticsService) GetSummary(ctx context.Context) (model.SummaryResponse, error) {
	var response model.SummaryResponse
	db := s.db.WithContext(ctx)

	live := func() *gorm.DB {
		return db.Model(&model.Rental{}).Where("archived IS NULL OR archived = ?", false)
	}

	if err := live().Where("status = ?", model.StatusActive).Count(&response.ActiveRentals).Error; err != nil {
		return response, storeErr("count active rentals", err)
	}
	if err := live().Where("status = ?", model.StatusReserved).Count(&response.ReservedRentals).Error; err != nil {
		return response, storeErr("count reserved rentals", err)
	}
	if err := live().Where("status = ?", model.StatusOverdue).Count(&response.OverdueRentals).Error; err != nil {
		return response, storeErr("count overdue rentals", err)
	}

	dayStart := startOfDay(time.Now())
	dayEnd := dayStart.AddDate(0, 0, 1)
	if err := live().
		Where("status IN ?", model.CommittedStatuses).
		Where("return_date >= ? AND return_date < ?", dayStart, dayEnd).
		Count(&response.ReturnsDueToday).Error; err != nil {
		return response, storeErr("count returns due today", err)
	}

	// Revenue split: rows of one logical order each carry their own payment
	// amount, so summing rows equals summing orders.
	var revenue []struct {
		PaymentStatus string
		Total         decimal.Decimal
	}
	if err := live().
		Select("payment_status, COALESCE(SUM(payment_amount), 0) as total").
		Group("payment_status").
		Scan(&revenue).Error; err != nil {
		return response, storeErr("sum revenue", err)
	}
	response.RevenuePaid = decimal.Zero
	response.RevenuePending = decimal.Zero
	for _, row := range revenue {
		switch row.PaymentStatus {
		case model.PaymentPaid:
			response.RevenuePaid = response.RevenuePaid.Add(row.Total)
		default:
			response.RevenuePending = response.RevenuePending.Add(row.Total)
		}
	}

	var top []model.ItemRanking
	if err := live().
		Select("item_id, item_kind, SUM(quantity) as total_quantity").
		Group("item_id, item_kind").
		Order("total_quantity DESC").
		Limit(5).
		Scan(&top).Error; err != nil {
		return response, storeErr("rank items", err)
	}

	for i := range top {
		var name string
		table := "inventory_items"
		if top[i].ItemKind == model.ItemKindDecoration {
			table = "decorations"
		}
		if err := db.Table(table).Select("name").Where("id = ?", top[i].ItemID).Scan(&name).Error; err == nil && name != "" {
			top[i].ItemName = name
		} else {
			top[i].ItemName = "Unknown Item"
		}
	}
	response.TopRentedItems = top

	return response, nil
}
