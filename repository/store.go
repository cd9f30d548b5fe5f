// Package repository holds the persistence contracts of the PMS and their
// gorm (MySQL or SQLite) and in-memory implementations.
package repository

import (
	"context"
	"time"

	"hotel-pms/models"
)

type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id uint) (*models.Category, error)
	List(ctx context.Context) ([]models.Category, error)
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id uint) error
}

type RoomFilter struct {
	CategoryID uint
	Statuses   []models.RoomStatus
}

type RoomRepository interface {
	Create(ctx context.Context, room *models.Room) error
	GetByID(ctx context.Context, id uint) (*models.Room, error)
	List(ctx context.Context, filter RoomFilter) ([]models.Room, error)
	// LockByNumbers loads the named rooms ordered by room number and, inside
	// a transaction, holds their rows until commit. Unknown numbers are
	// simply absent from the result.
	LockByNumbers(ctx context.Context, numbers []string) ([]models.Room, error)
	// LockByFilter is LockByNumbers for every room matching filter.
	LockByFilter(ctx context.Context, filter RoomFilter) ([]models.Room, error)
	Update(ctx context.Context, room *models.Room) error
	// SetStatus returns ErrNotFound when no room has that number.
	SetStatus(ctx context.Context, number string, status models.RoomStatus) error
	Delete(ctx context.Context, id uint) error
}

// RoomClaim is one room held by an active open booking.
type RoomClaim struct {
	BookingID    uint      `gorm:"column:booking_id" json:"bookingId"`
	GRCNumber    string    `gorm:"column:grc_number" json:"grcNumber"`
	RoomNumber   string    `gorm:"column:room_number" json:"roomNumber"`
	CheckInDate  time.Time `gorm:"column:check_in_date" json:"checkInDate"`
	CheckOutDate time.Time `gorm:"column:check_out_date" json:"checkOutDate"`
}

// ClaimQuery selects room claims. Zero CheckIn/CheckOut means any dates, nil
// RoomNumbers means any room.
type ClaimQuery struct {
	RoomNumbers      []string
	CheckIn          time.Time
	CheckOut         time.Time
	ExcludeBookingID uint
}

type BookingRepository interface {
	// Create inserts the booking and its rooms. A taken GRC number yields
	// ErrDuplicate.
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id uint) (*models.Booking, error)
	// LockByID is GetByID holding the booking row until commit.
	LockByID(ctx context.Context, id uint) (*models.Booking, error)
	List(ctx context.Context, includeInactive bool) ([]models.Booking, error)
	// Save writes the booking's own columns. Rooms are left alone.
	Save(ctx context.Context, booking *models.Booking) error
	ReplaceRooms(ctx context.Context, bookingID uint, rooms []models.BookingRoom) error
	Delete(ctx context.Context, id uint) error
	GRCExists(ctx context.Context, grc string) (bool, error)
	// FindClaims lists rooms of active Booked/Checked In bookings that
	// overlap the query dates under the half-open stay rule.
	FindClaims(ctx context.Context, q ClaimQuery) ([]RoomClaim, error)
}

type BanquetRepository interface {
	Create(ctx context.Context, banquet *models.BanquetBooking) error
	GetByID(ctx context.Context, id uint) (*models.BanquetBooking, error)
	LockByID(ctx context.Context, id uint) (*models.BanquetBooking, error)
	List(ctx context.Context, includeInactive bool) ([]models.BanquetBooking, error)
	Save(ctx context.Context, banquet *models.BanquetBooking) error
	ReferenceExists(ctx context.Context, ref string) (bool, error)
}

// Store is the injected persistence handle. Transaction runs fn against a
// Store bound to one database transaction: fn's error rolls everything back.
type Store interface {
	Categories() CategoryRepository
	Rooms() RoomRepository
	Bookings() BookingRepository
	Banquets() BanquetRepository
	Transaction(ctx context.Context, fn func(tx Store) error) error
	Close() error
}
