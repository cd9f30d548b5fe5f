package services

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"hotel-pms/apperror"
	"hotel-pms/cache"
	"hotel-pms/models"
	"hotel-pms/repository"
)

type CategoryService struct {
	Store repository.Store
	Cache cache.AvailabilityCache
	Log   *logrus.Logger
}

func NewCategoryService(store repository.Store, c cache.AvailabilityCache, log *logrus.Logger) *CategoryService {
	return &CategoryService{Store: store, Cache: c, Log: log}
}

type CategoryInput struct {
	Name        *string
	Price       *decimal.Decimal
	Description *string
}

func applyCategoryInput(c *models.Category, in CategoryInput) error {
	if in.Name != nil {
		c.Name = strings.TrimSpace(*in.Name)
	}
	if in.Price != nil {
		c.Price = models.RoundMoney(*in.Price)
	}
	if in.Description != nil {
		c.Description = *in.Description
	}
	if c.Name == "" {
		return apperror.Validation("category name is required")
	}
	if c.Price.IsNegative() {
		return apperror.Validation("price must not be negative")
	}
	return nil
}

func (s *CategoryService) Create(ctx context.Context, in CategoryInput) (*models.Category, error) {
	var c models.Category
	if err := applyCategoryInput(&c, in); err != nil {
		return nil, err
	}
	if err := s.Store.Categories().Create(ctx, &c); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperror.Conflict("category '%s' already exists", c.Name)
		}
		return nil, classify(err, "create category")
	}
	s.Cache.Invalidate(ctx)
	return &c, nil
}

func (s *CategoryService) Get(ctx context.Context, id uint) (*models.Category, error) {
	c, err := s.Store.Categories().GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "category")
	}
	return c, nil
}

func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	list, err := s.Store.Categories().List(ctx)
	if err != nil {
		return nil, classify(err, "list categories")
	}
	return list, nil
}

func (s *CategoryService) Update(ctx context.Context, id uint, in CategoryInput) (*models.Category, error) {
	c, err := s.Store.Categories().GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "category")
	}
	if err := applyCategoryInput(c, in); err != nil {
		return nil, err
	}
	if err := s.Store.Categories().Update(ctx, c); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperror.Conflict("category '%s' already exists", c.Name)
		}
		return nil, storeErr(err, "category")
	}
	s.Cache.Invalidate(ctx)
	return c, nil
}

// Delete removes the category. Rooms and bookings keep the dangling id and
// are shown under a fallback name.
func (s *CategoryService) Delete(ctx context.Context, id uint) error {
	if err := s.Store.Categories().Delete(ctx, id); err != nil {
		return storeErr(err, "category")
	}
	s.Log.WithField("categoryId", id).Info("category deleted")
	s.Cache.Invalidate(ctx)
	return nil
}
