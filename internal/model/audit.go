package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ActionCreateItem  = "CREATE_ITEM"
	ActionUpdateItem  = "UPDATE_ITEM"
	ActionArchiveItem = "ARCHIVE_ITEM"
	ActionDeleteItem  = "DELETE_ITEM"

	ActionCreateRental  = "CREATE_RENTAL"
	ActionUpdateRental  = "UPDATE_RENTAL"
	ActionArchiveRental = "ARCHIVE_RENTAL"
	ActionDeleteRental  = "DELETE_RENTAL"

	ActionProcessReturn = "PROCESS_RETURN"
	ActionMarkOverdue   = "MARK_OVERDUE"
	ActionCreateReport  = "CREATE_REPORT"
	ActionDeleteReport  = "DELETE_REPORT"
)

// AuditLog tracks Who, What, and When for critical system changes.
// It also carries the old/new quantity snapshots the inventory history
// views are built from.
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"` // nil for automated jobs
	User       *User      `gorm:"foreignKey:UserID" json:"user"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"`
	Details    string     `gorm:"type:jsonb" json:"details"` // serialized JSON payload of the action
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
