package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type RoomStatus string

const (
	RoomAvailable   RoomStatus = "available"
	RoomReserved    RoomStatus = "reserved"
	RoomBooked      RoomStatus = "booked"
	RoomMaintenance RoomStatus = "maintenance"
)

func (s RoomStatus) IsValid() bool {
	switch s {
	case RoomAvailable, RoomReserved, RoomBooked, RoomMaintenance:
		return true
	}
	return false
}

type Room struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	CategoryID  uint            `gorm:"column:category_id;index" json:"categoryId"`
	RoomNumber  string          `gorm:"column:room_number;uniqueIndex;type:varchar(50)" json:"roomNumber"`
	Price       decimal.Decimal `gorm:"column:price;type:decimal(12,2)" json:"price"`
	ExtraBed    bool            `gorm:"column:extra_bed;default:false" json:"extraBed"`
	Status      RoomStatus      `gorm:"column:status;type:varchar(20);index;default:available" json:"status"`
	Floor       string          `gorm:"column:floor;type:varchar(10)" json:"floor"`
	Description string          `gorm:"column:description;type:text" json:"description"`

	// resolved on read, "Unknown" when the category no longer exists
	CategoryName string `gorm:"-" json:"categoryName,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AvailableRoom is a room as offered for a date range.
type AvailableRoom struct {
	ID         uint            `json:"id"`
	RoomNumber string          `json:"roomNumber"`
	Price      decimal.Decimal `json:"price"`
	ExtraBed   bool            `json:"extraBed"`
	Floor      string          `json:"floor,omitempty"`
	Status     RoomStatus      `json:"status"`
}

type AvailabilityGroup struct {
	CategoryID   uint            `json:"categoryId"`
	CategoryName string          `json:"categoryName"`
	Rooms        []AvailableRoom `json:"rooms"`
}
