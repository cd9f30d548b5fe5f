package models

import "fmt"

type BookingStatus string

const (
	StatusBooked     BookingStatus = "Booked"
	StatusCheckedIn  BookingStatus = "Checked In"
	StatusCheckedOut BookingStatus = "Checked Out"
	StatusCancelled  BookingStatus = "Cancelled"
)

// validTransitions is the booking lifecycle. Anything not listed is rejected.
var validTransitions = map[BookingStatus][]BookingStatus{
	StatusBooked:     {StatusCheckedIn, StatusCancelled},
	StatusCheckedIn:  {StatusCheckedOut, StatusCancelled},
	StatusCheckedOut: {},
	StatusCancelled:  {},
}

func (s BookingStatus) IsValid() bool {
	_, ok := validTransitions[s]
	return ok
}

func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	for _, t := range validTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// IsOpen reports whether a booking in this status still holds its rooms.
func (s BookingStatus) IsOpen() bool {
	return s == StatusBooked || s == StatusCheckedIn
}

func (s BookingStatus) IsTerminal() bool {
	return len(validTransitions[s]) == 0
}

func (s BookingStatus) String() string { return string(s) }

func ParseBookingStatus(raw string) (BookingStatus, error) {
	st := BookingStatus(raw)
	if !st.IsValid() {
		return "", fmt.Errorf("invalid booking status: %q", raw)
	}
	return st, nil
}

// OpenStatuses are the statuses whose bookings block their rooms.
func OpenStatuses() []BookingStatus {
	return []BookingStatus{StatusBooked, StatusCheckedIn}
}
