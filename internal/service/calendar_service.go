package service

import (
	"context"
	"time"

	"rental-backend/internal/model"

	"github.com/google/uuid"
)

// Event colors by rental status, matching the dashboard calendar legend.
var statusColors = map[string]string{
	model.StatusActive:   "#2e7d32",
	model.StatusReserved: "#f9a825",
	model.StatusOverdue:  "#c62828",
	model.StatusReturned: "#9e9e9e",
}

// CalendarEvent is one bar on the dashboard calendar: the full span of one
// logical order from pickup to return.
type CalendarEvent struct {
	ID        string      `json:"id"`
	Title     string      `json:"title"`
	Start     string      `json:"start"` // date, or datetime when an hour is set
	End       string      `json:"end,omitempty"`
	Color     string      `json:"color"`
	Status    string      `json:"status"`
	RentalIDs []uuid.UUID `json:"rental_ids"`
}

type CalendarService interface {
	Events(ctx context.Context, from, to time.Time) ([]CalendarEvent, error)
}

type calendarService struct {
	rentals RentalService
}

func NewCalendarService(rentals RentalService) CalendarService {
	return &calendarService{rentals: rentals}
}

// Events renders non-archived orders overlapping [from, to] as calendar
// events, one per logical order. Hour-bounded orders get datetime stamps so
// the calendar can place them inside the day.
func (s *calendarService) Events(ctx context.Context, from, to time.Time) ([]CalendarEvent, error) {
	orders, err := s.rentals.ListGrouped(ctx, false)
	if err != nil {
		return nil, err
	}

	var events []CalendarEvent
	for _, order := range orders {
		end := order.RentDate
		if order.ReturnDate != nil {
			end = *order.ReturnDate
		}
		if end.Before(from) || order.RentDate.After(to) {
			continue
		}

		color, ok := statusColors[order.Status]
		if !ok {
			color = "#9e9e9e"
		}

		event := CalendarEvent{
			ID:        order.RentalIDs[0].String(),
			Title:     order.RenterName,
			Start:     order.RentDate.Format("2006-01-02"),
			Color:     color,
			Status:    order.Status,
			RentalIDs: order.RentalIDs,
		}
		if len(order.Items) > 0 {
			event.Title = order.RenterName + " (" + order.Items[0].Name + ")"
		}
		if order.ReturnDate != nil {
			event.End = order.ReturnDate.Format("2006-01-02")
		}

		// Times are stored separately from dates; compose them only when set.
		if order.RentTime != nil && *order.RentTime != "" {
			event.Start = event.Start + "T" + *order.RentTime
		}
		if order.ReturnDate != nil && order.ReturnTime != nil && *order.ReturnTime != "" {
			event.End = event.End + "T" + *order.ReturnTime
		}

		events = append(events, event)
	}
	return events, nil
}
