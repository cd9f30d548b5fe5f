package repository

import (
	"gorm.io/gorm"

	"hotel-pms/models"
)

// AutoMigrate creates or updates the PMS tables, parents before children.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Category{},
		&models.Room{},
		&models.Booking{},
		&models.BookingRoom{},
		&models.BanquetBooking{},
	)
}
