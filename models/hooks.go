package models

import "gorm.io/gorm"

// SQLite hands stored times back in whatever zone its parser picked. Dates
// are compared and formatted as UTC calendar days everywhere else, so rows
// are normalized on load.

func (b *Booking) AfterFind(*gorm.DB) error {
	b.CheckInDate = b.CheckInDate.UTC()
	b.CheckOutDate = b.CheckOutDate.UTC()
	b.CreatedAt = b.CreatedAt.UTC()
	b.UpdatedAt = b.UpdatedAt.UTC()
	return nil
}

func (r *BookingRoom) AfterFind(*gorm.DB) error {
	if r.ExtraBedStartDate != nil {
		t := r.ExtraBedStartDate.UTC()
		r.ExtraBedStartDate = &t
	}
	return nil
}

func (b *BanquetBooking) AfterFind(*gorm.DB) error {
	b.EventDate = b.EventDate.UTC()
	b.CreatedAt = b.CreatedAt.UTC()
	b.UpdatedAt = b.UpdatedAt.UTC()
	return nil
}
