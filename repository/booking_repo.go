package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hotel-pms/models"
)

type gormBookingRepo struct {
	s *GormStore
}

func orderedRooms(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func (r *gormBookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	return translate(r.s.write(ctx).Create(booking).Error)
}

func (r *gormBookingRepo) GetByID(ctx context.Context, id uint) (*models.Booking, error) {
	db, cancel := r.s.read(ctx)
	defer cancel()

	var b models.Booking
	if err := db.Preload("Rooms", orderedRooms).First(&b, id).Error; err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

func (r *gormBookingRepo) LockByID(ctx context.Context, id uint) (*models.Booking, error) {
	db, cancel := r.s.locking(ctx)
	defer cancel()

	var b models.Booking
	if err := db.Preload("Rooms", orderedRooms).First(&b, id).Error; err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

func (r *gormBookingRepo) List(ctx context.Context, includeInactive bool) ([]models.Booking, error) {
	db, cancel := r.s.read(ctx)
	defer cancel()

	q := db.Preload("Rooms", orderedRooms)
	if !includeInactive {
		q = q.Where("is_active = ?", true)
	}
	var list []models.Booking
	if err := q.Order("created_at DESC").Order("id DESC").Find(&list).Error; err != nil {
		return nil, translate(err)
	}
	return list, nil
}

func (r *gormBookingRepo) Save(ctx context.Context, booking *models.Booking) error {
	return translate(r.s.write(ctx).Omit(clause.Associations).Save(booking).Error)
}

func (r *gormBookingRepo) ReplaceRooms(ctx context.Context, bookingID uint, rooms []models.BookingRoom) error {
	db := r.s.write(ctx)
	if err := db.Where("booking_id = ?", bookingID).Delete(&models.BookingRoom{}).Error; err != nil {
		return translate(err)
	}
	if len(rooms) == 0 {
		return nil
	}
	for i := range rooms {
		rooms[i].ID = 0
		rooms[i].BookingID = bookingID
	}
	return translate(db.Create(&rooms).Error)
}

func (r *gormBookingRepo) Delete(ctx context.Context, id uint) error {
	return r.s.write(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("booking_id = ?", id).Delete(&models.BookingRoom{}).Error; err != nil {
			return translate(err)
		}
		res := tx.Delete(&models.Booking{}, id)
		if res.Error != nil {
			return translate(res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *gormBookingRepo) GRCExists(ctx context.Context, grc string) (bool, error) {
	db, cancel := r.s.read(ctx)
	defer cancel()

	var n int64
	if err := db.Model(&models.Booking{}).Where("grc_number = ?", grc).Count(&n).Error; err != nil {
		return false, translate(err)
	}
	return n > 0, nil
}

func (r *gormBookingRepo) FindClaims(ctx context.Context, q ClaimQuery) ([]RoomClaim, error) {
	db, cancel := r.s.locking(ctx)
	defer cancel()

	query := db.Table("booking_rooms").
		Select("bookings.id AS booking_id, bookings.grc_number, booking_rooms.room_number, bookings.check_in_date, bookings.check_out_date").
		Joins("JOIN bookings ON bookings.id = booking_rooms.booking_id").
		Where("bookings.is_active = ? AND bookings.status IN ?", true, models.OpenStatuses())

	if q.RoomNumbers != nil {
		if len(q.RoomNumbers) == 0 {
			return nil, nil
		}
		query = query.Where("booking_rooms.room_number IN ?", q.RoomNumbers)
	}
	if !q.CheckIn.IsZero() && !q.CheckOut.IsZero() {
		// half-open: a stay ending on q.CheckIn does not clash
		query = query.Where("bookings.check_in_date < ? AND bookings.check_out_date > ?", q.CheckOut, q.CheckIn)
	}
	if q.ExcludeBookingID != 0 {
		query = query.Where("bookings.id <> ?", q.ExcludeBookingID)
	}

	var claims []RoomClaim
	if err := query.Order("booking_rooms.room_number ASC").Order("bookings.id ASC").Scan(&claims).Error; err != nil {
		return nil, translate(err)
	}
	return claims, nil
}
