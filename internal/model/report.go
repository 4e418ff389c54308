package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReportType constants
const (
	ReportReturned = "returned"
	ReportMissing  = "missing"
	ReportSold     = "sold"
)

// ReturnCondition constants
const (
	ConditionGood    = "good"
	ConditionDamaged = "damaged"
)

// DamageSeverity constants
const (
	SeverityGood  = "good"
	SeverityMinor = "minor"
	SeverityMajor = "major"
)

// Report is an insert-only audit record of a return, a loss or a sale
// close-out. Rows referencing a rental block that rental's deletion.
type Report struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RentalID        uuid.UUID `gorm:"type:uuid;not null;index" json:"rental_id"`
	Rental          Rental    `gorm:"foreignKey:RentalID;constraint:OnDelete:RESTRICT" json:"-"`
	ItemName        string    `gorm:"type:varchar(255);not null" json:"item_name"`
	Quantity        int       `gorm:"type:int;not null" json:"quantity"`
	Type            string    `gorm:"type:varchar(20);not null;index" json:"type"`
	Notes           string    `gorm:"type:text" json:"notes"`
	ReturnCondition *string   `gorm:"type:varchar(20)" json:"return_condition"`
	DamageNotes     *string   `gorm:"type:text" json:"damage_notes"`
	Severity        *string   `gorm:"type:varchar(10)" json:"severity"`
	CreatedAt       time.Time `gorm:"index" json:"created_at"`
}

func (r *Report) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
