package repository

import (
	"context"

	"hotel-pms/models"
)

type gormCategoryRepo struct {
	s *GormStore
}

func (r *gormCategoryRepo) Create(ctx context.Context, category *models.Category) error {
	return translate(r.s.write(ctx).Create(category).Error)
}

func (r *gormCategoryRepo) GetByID(ctx context.Context, id uint) (*models.Category, error) {
	db, cancel := r.s.read(ctx)
	defer cancel()

	var c models.Category
	if err := db.First(&c, id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *gormCategoryRepo) List(ctx context.Context) ([]models.Category, error) {
	db, cancel := r.s.read(ctx)
	defer cancel()

	var list []models.Category
	if err := db.Order("name ASC").Find(&list).Error; err != nil {
		return nil, translate(err)
	}
	return list, nil
}

func (r *gormCategoryRepo) Update(ctx context.Context, category *models.Category) error {
	return translate(r.s.write(ctx).Save(category).Error)
}

func (r *gormCategoryRepo) Delete(ctx context.Context, id uint) error {
	res := r.s.write(ctx).Delete(&models.Category{}, id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
