// Package queue publishes PMS domain events to RabbitMQ.
package queue

import (
	"time"

	"hotel-pms/models"
)

type EventType string

const (
	EventBookingCreated    EventType = "booking.created"
	EventBookingUpdated    EventType = "booking.updated"
	EventBookingCheckedIn  EventType = "booking.checked_in"
	EventBookingCheckedOut EventType = "booking.checked_out"
	EventBookingCancelled  EventType = "booking.cancelled"
	EventBookingDeleted    EventType = "booking.deleted"
	EventBookingExtended   EventType = "booking.extended"
	EventBookingAmended    EventType = "booking.amended"
	EventPaymentAdded      EventType = "booking.payment_added"
	EventBanquetCreated    EventType = "banquet.created"
	EventBanquetUpdated    EventType = "banquet.updated"
	EventRoomsReconciled   EventType = "rooms.reconciled"
)

// Event is the message body. Amounts travel as strings to keep paisa exact.
type Event struct {
	Type         EventType `json:"type"`
	ID           uint      `json:"id,omitempty"`
	Reference    string    `json:"reference,omitempty"`
	Rooms        []string  `json:"rooms,omitempty"`
	CheckInDate  string    `json:"checkInDate,omitempty"`
	CheckOutDate string    `json:"checkOutDate,omitempty"`
	Status       string    `json:"status,omitempty"`
	Amount       string    `json:"amount,omitempty"`
	Balance      string    `json:"balance,omitempty"`
	Actor        string    `json:"actor,omitempty"`
	OccurredAt   time.Time `json:"occurredAt"`
}

func NewBookingEvent(t EventType, b *models.Booking, actor string, at time.Time) Event {
	return Event{
		Type:         t,
		ID:           b.ID,
		Reference:    b.GRCNumber,
		Rooms:        b.RoomNumbers(),
		CheckInDate:  b.CheckInDate.Format(models.DateLayout),
		CheckOutDate: b.CheckOutDate.Format(models.DateLayout),
		Status:       string(b.Status),
		Amount:       b.Rate.StringFixed(2),
		Balance:      b.BalanceAmount.StringFixed(2),
		Actor:        actor,
		OccurredAt:   at.UTC(),
	}
}

func NewBanquetEvent(t EventType, b *models.BanquetBooking, actor string, at time.Time) Event {
	return Event{
		Type:         t,
		ID:           b.ID,
		Reference:    b.ReferenceNumber,
		CheckInDate:  b.EventDate.Format(models.DateLayout),
		Amount:       b.Total.StringFixed(2),
		Balance:      b.BalanceAmount.StringFixed(2),
		Actor:        actor,
		OccurredAt:   at.UTC(),
	}
}
