package repository

import (
	"context"

	"hotel-pms/models"
)

type gormBanquetRepo struct {
	s *GormStore
}

func (r *gormBanquetRepo) Create(ctx context.Context, banquet *models.BanquetBooking) error {
	return translate(r.s.write(ctx).Create(banquet).Error)
}

func (r *gormBanquetRepo) GetByID(ctx context.Context, id uint) (*models.BanquetBooking, error) {
	db, cancel := r.s.read(ctx)
	defer cancel()

	var b models.BanquetBooking
	if err := db.First(&b, id).Error; err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

func (r *gormBanquetRepo) LockByID(ctx context.Context, id uint) (*models.BanquetBooking, error) {
	db, cancel := r.s.locking(ctx)
	defer cancel()

	var b models.BanquetBooking
	if err := db.First(&b, id).Error; err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

func (r *gormBanquetRepo) List(ctx context.Context, includeInactive bool) ([]models.BanquetBooking, error) {
	db, cancel := r.s.read(ctx)
	defer cancel()

	q := db
	if !includeInactive {
		q = q.Where("is_active = ?", true)
	}
	var list []models.BanquetBooking
	if err := q.Order("event_date ASC").Order("id ASC").Find(&list).Error; err != nil {
		return nil, translate(err)
	}
	return list, nil
}

func (r *gormBanquetRepo) Save(ctx context.Context, banquet *models.BanquetBooking) error {
	return translate(r.s.write(ctx).Save(banquet).Error)
}

func (r *gormBanquetRepo) ReferenceExists(ctx context.Context, ref string) (bool, error) {
	db, cancel := r.s.read(ctx)
	defer cancel()

	var n int64
	if err := db.Model(&models.BanquetBooking{}).Where("reference_number = ?", ref).Count(&n).Error; err != nil {
		return false, translate(err)
	}
	return n > 0, nil
}
