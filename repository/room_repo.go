package repository

import (
	"context"

	"gorm.io/gorm"

	"hotel-pms/models"
)

type gormRoomRepo struct {
	s *GormStore
}

func applyRoomFilter(db *gorm.DB, f RoomFilter) *gorm.DB {
	if f.CategoryID != 0 {
		db = db.Where("category_id = ?", f.CategoryID)
	}
	if len(f.Statuses) > 0 {
		db = db.Where("status IN ?", f.Statuses)
	}
	return db
}

func (r *gormRoomRepo) Create(ctx context.Context, room *models.Room) error {
	return translate(r.s.write(ctx).Create(room).Error)
}

func (r *gormRoomRepo) GetByID(ctx context.Context, id uint) (*models.Room, error) {
	db, cancel := r.s.read(ctx)
	defer cancel()

	var room models.Room
	if err := db.First(&room, id).Error; err != nil {
		return nil, translate(err)
	}
	return &room, nil
}

func (r *gormRoomRepo) List(ctx context.Context, filter RoomFilter) ([]models.Room, error) {
	db, cancel := r.s.read(ctx)
	defer cancel()

	var rooms []models.Room
	if err := applyRoomFilter(db, filter).Order("room_number ASC").Find(&rooms).Error; err != nil {
		return nil, translate(err)
	}
	return rooms, nil
}

func (r *gormRoomRepo) LockByNumbers(ctx context.Context, numbers []string) ([]models.Room, error) {
	if len(numbers) == 0 {
		return nil, nil
	}
	db, cancel := r.s.locking(ctx)
	defer cancel()

	var rooms []models.Room
	if err := db.Where("room_number IN ?", numbers).Order("room_number ASC").Find(&rooms).Error; err != nil {
		return nil, translate(err)
	}
	return rooms, nil
}

func (r *gormRoomRepo) LockByFilter(ctx context.Context, filter RoomFilter) ([]models.Room, error) {
	db, cancel := r.s.locking(ctx)
	defer cancel()

	var rooms []models.Room
	if err := applyRoomFilter(db, filter).Order("room_number ASC").Find(&rooms).Error; err != nil {
		return nil, translate(err)
	}
	return rooms, nil
}

func (r *gormRoomRepo) Update(ctx context.Context, room *models.Room) error {
	return translate(r.s.write(ctx).Save(room).Error)
}

func (r *gormRoomRepo) SetStatus(ctx context.Context, number string, status models.RoomStatus) error {
	db := r.s.write(ctx)
	res := db.Model(&models.Room{}).Where("room_number = ?", number).Update("status", status)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}
	// MySQL reports 0 affected rows when the value did not change
	var n int64
	if err := db.Model(&models.Room{}).Where("room_number = ?", number).Count(&n).Error; err != nil {
		return translate(err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormRoomRepo) Delete(ctx context.Context, id uint) error {
	res := r.s.write(ctx).Delete(&models.Room{}, id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
