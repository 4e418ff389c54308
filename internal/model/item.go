package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ItemKind discriminates the two physical item tables. It is carried
// explicitly on rentals and cart lines and is never derived from id shape.
type ItemKind string

const (
	ItemKindRental     ItemKind = "rental"     // durable inventory, returned after use
	ItemKindDecoration ItemKind = "decoration" // consumable, sold rather than booked
)

// Valid reports whether k is one of the known item kinds.
func (k ItemKind) Valid() bool {
	return k == ItemKindRental || k == ItemKindDecoration
}

// InventoryItem is a durable rentable item. Availability is computed from
// committed rentals; QuantityAvailable is informational for this kind.
type InventoryItem struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Name              string          `gorm:"type:varchar(255);not null" json:"name"`
	Category          string          `gorm:"type:varchar(100)" json:"category"`
	QuantityTotal     int             `gorm:"type:int;not null;default:0" json:"quantity_total"`
	QuantityDamaged   int             `gorm:"type:int;not null;default:0" json:"quantity_damaged"`
	QuantityAvailable int             `gorm:"type:int;not null;default:0" json:"quantity_available"`
	RentalPrice       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"rental_price"`
	Archived          bool            `gorm:"not null;default:false;index" json:"archived"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

func (i *InventoryItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// Decoration is a consumable sale item. Its QuantityAvailable is a stored
// counter decremented at sale time, unlike durable inventory.
type Decoration struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Name              string          `gorm:"type:varchar(255);not null" json:"name"`
	Type              string          `gorm:"type:varchar(100)" json:"type"`
	QuantityTotal     int             `gorm:"type:int;not null;default:0" json:"quantity_total"`
	QuantityDamaged   int             `gorm:"type:int;not null;default:0" json:"quantity_damaged"`
	QuantityAvailable int             `gorm:"type:int;not null;default:0" json:"quantity_available"`
	RentalPrice       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"rental_price"`
	Archived          bool            `gorm:"not null;default:false;index" json:"archived"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

func (d *Decoration) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// Item is the unified read model over both physical tables. RealTimeAvailable
// is derived at load time: quantity_total - committed - quantity_damaged.
type Item struct {
	ID                uuid.UUID       `json:"id"`
	Kind              ItemKind        `json:"kind"`
	Name              string          `json:"name"`
	Category          string          `json:"category"`
	QuantityTotal     int             `json:"quantity_total"`
	QuantityDamaged   int             `json:"quantity_damaged"`
	QuantityAvailable int             `json:"quantity_available"`
	RentalPrice       decimal.Decimal `json:"rental_price"`
	Archived          bool            `json:"archived"`
	RealTimeAvailable int             `json:"real_time_available"`
}
