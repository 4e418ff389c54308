// Package cart holds the transient multi-item order being assembled before
// commit. A cart lives for the duration of one checkout or edit request and
// is never persisted; each line translates 1:1 into a rental row.
package cart

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"rental-backend/internal/model"
	"rental-backend/internal/pricing"
)

var (
	ErrNoItem      = errors.New("no item selected")
	ErrBadQuantity = errors.New("quantity must be greater than zero")
	ErrBadDates    = errors.New("return date cannot be before rental date")
	ErrBadIndex    = errors.New("no cart line at that position")
)

// Line is one item line of the cart.
type Line struct {
	ItemID           uuid.UUID       `json:"item_id"`
	ItemKind         model.ItemKind  `json:"item_kind"`
	ItemName         string          `json:"item_name"`
	Quantity         int             `json:"quantity"`
	PricePerUnit     decimal.Decimal `json:"price_per_unit"`
	Days             int             `json:"days"` // 0 for sale-kind lines
	Subtotal         decimal.Decimal `json:"subtotal"`
	ExistingRentalID *uuid.UUID      `json:"existing_rental_id,omitempty"` // set when editing
}

// Cart is an ordered collection of lines.
type Cart struct {
	lines []Line
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{}
}

// Add appends a line for the item, merging into an existing line with the
// same item id by incrementing its quantity. Rental-kind merges also refresh
// the day count; decoration subtotals are never day-multiplied.
func (c *Cart) Add(item model.Item, qty, days int) error {
	if item.ID == uuid.Nil {
		return ErrNoItem
	}
	if qty <= 0 {
		return ErrBadQuantity
	}

	for i := range c.lines {
		if c.lines[i].ItemID == item.ID {
			c.lines[i].Quantity += qty
			if c.lines[i].ItemKind == model.ItemKindRental {
				c.lines[i].Days = days
			}
			c.lines[i].Subtotal = pricing.LineTotal(
				c.lines[i].PricePerUnit, c.lines[i].Quantity, c.lines[i].Days, c.lines[i].ItemKind)
			return nil
		}
	}

	line := Line{
		ItemID:       item.ID,
		ItemKind:     item.Kind,
		ItemName:     item.Name,
		Quantity:     qty,
		PricePerUnit: item.RentalPrice,
		Subtotal:     pricing.LineTotal(item.RentalPrice, qty, days, item.Kind),
	}
	if item.Kind == model.ItemKindRental {
		line.Days = days
	}
	c.lines = append(c.lines, line)
	return nil
}

// Remove deletes the line at index i.
func (c *Cart) Remove(i int) error {
	if i < 0 || i >= len(c.lines) {
		return ErrBadIndex
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	return nil
}

// RecalculateForDates recomputes days and subtotals of every rental-kind
// line for a changed date range. An empty cart is a no-op; an inverted range
// leaves all lines untouched and reports the error.
func (c *Cart) RecalculateForDates(start, end time.Time) error {
	if len(c.lines) == 0 {
		return nil
	}
	if end.Before(start) {
		return ErrBadDates
	}
	days := pricing.Days(start, end)
	for i := range c.lines {
		if c.lines[i].ItemKind != model.ItemKindRental {
			continue
		}
		c.lines[i].Days = days
		c.lines[i].Subtotal = pricing.LineTotal(
			c.lines[i].PricePerUnit, c.lines[i].Quantity, days, c.lines[i].ItemKind)
	}
	return nil
}

// Total sums all line subtotals. Unless a custom price override is active
// this becomes the payment amount of the committed transaction.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.Subtotal)
	}
	return total
}

// Lines returns the lines in insertion order.
func (c *Cart) Lines() []Line {
	return c.lines
}

// Len returns the number of lines.
func (c *Cart) Len() int {
	return len(c.lines)
}
