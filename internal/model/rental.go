package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RentalStatus constants
const (
	StatusActive    = "active"
	StatusReserved  = "reserved"
	StatusOverdue   = "overdue"
	StatusReturned  = "returned"
	StatusCancelled = "cancelled"
)

// PaymentStatus constants
const (
	PaymentPending = "Pending"
	PaymentPartial = "Partial"
	PaymentPaid    = "Paid"
)

// CommittedStatuses are the rental statuses that hold inventory.
var CommittedStatuses = []string{StatusActive, StatusReserved, StatusOverdue}

// Rental is the atomic persisted unit: one row is one item line of one
// logical order. Multi-item orders are reconstructed by grouping rows that
// share the client, dates, status and payment fields.
type Rental struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ItemKind       ItemKind        `gorm:"type:varchar(20);not null;index" json:"item_kind"`
	ItemID         uuid.UUID       `gorm:"type:uuid;not null;index" json:"item_id"`
	Quantity       int             `gorm:"type:int;not null" json:"quantity"`
	RenterName     string          `gorm:"type:varchar(255);not null" json:"renter_name"`
	ClientPhone    string          `gorm:"type:varchar(50)" json:"client_phone"`
	ClientAddress  string          `gorm:"type:text" json:"client_address"`
	RentDate       time.Time       `gorm:"type:date;not null;index" json:"rent_date"`
	ReturnDate     *time.Time      `gorm:"type:date;index" json:"return_date"` // nil for pure sales
	RentTime       *string         `gorm:"type:varchar(8)" json:"rent_time"`   // set only for hour-bounded events
	ReturnTime     *string         `gorm:"type:varchar(8)" json:"return_time"`
	PaymentAmount  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"payment_amount"`
	AdvancePayment decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"advance_payment"`
	PaymentMethod  string          `gorm:"type:varchar(50);not null;default:'Cash'" json:"payment_method"`
	PaymentStatus  string          `gorm:"type:varchar(20);not null;default:'Pending'" json:"payment_status"`
	Status         string          `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	Archived       bool            `gorm:"not null;default:false;index" json:"archived"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func (r *Rental) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// GroupKey is the exact tuple that identifies a logical multi-item order.
// String-concatenated equality, no trimming or case folding.
func (r *Rental) GroupKey() string {
	ret := ""
	if r.ReturnDate != nil {
		ret = r.ReturnDate.Format("2006-01-02")
	}
	return fmt.Sprintf("%s|%s|%s|%s|%s|%s",
		r.RenterName, r.RentDate.Format("2006-01-02"), ret,
		r.Status, r.PaymentStatus, r.PaymentMethod)
}

// LogicalOrderItem is one line of a grouped order as shown in listings.
type LogicalOrderItem struct {
	RentalID uuid.UUID       `json:"rental_id"`
	ItemKind ItemKind        `json:"item_kind"`
	ItemID   uuid.UUID       `json:"item_id"`
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Payment  decimal.Decimal `json:"payment"`
}

// LogicalOrder is a derived, never persisted grouping of rental rows.
type LogicalOrder struct {
	RenterName     string             `json:"renter_name"`
	ClientPhone    string             `json:"client_phone"`
	ClientAddress  string             `json:"client_address"`
	RentDate       time.Time          `json:"rent_date"`
	ReturnDate     *time.Time         `json:"return_date"`
	RentTime       *string            `json:"rent_time"`
	ReturnTime     *string            `json:"return_time"`
	Status         string             `json:"status"`
	PaymentStatus  string             `json:"payment_status"`
	PaymentMethod  string             `json:"payment_method"`
	Archived       bool               `json:"archived"`
	Items          []LogicalOrderItem `json:"items"`
	RentalIDs      []uuid.UUID        `json:"rental_ids"`
	TotalQuantity  int                `json:"total_quantity"`
	TotalPayment   decimal.Decimal    `json:"total_payment"`
	AdvancePayment decimal.Decimal    `json:"advance_payment"` // carried by the first row of the group
}
