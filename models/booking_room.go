package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BookingRoom is one room of a booking. Position keeps the order rooms were
// requested in.
type BookingRoom struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	BookingID  uint   `gorm:"column:booking_id;index" json:"bookingId"`
	RoomID     uint   `gorm:"column:room_id;index" json:"roomId"`
	RoomNumber string `gorm:"column:room_number;type:varchar(50);index" json:"roomNumber"`
	Position   int    `gorm:"column:position" json:"position"`

	DailyRate         decimal.Decimal `gorm:"column:daily_rate;type:decimal(12,2)" json:"dailyRate"`
	ExtraBed          bool            `gorm:"column:extra_bed;default:false" json:"extraBed"`
	ExtraBedStartDate *time.Time      `gorm:"column:extra_bed_start_date;type:date" json:"extraBedStartDate,omitempty"`
}
