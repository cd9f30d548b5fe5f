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

type RoomService struct {
	Store repository.Store
	Cache cache.AvailabilityCache
	Log   *logrus.Logger
}

func NewRoomService(store repository.Store, c cache.AvailabilityCache, log *logrus.Logger) *RoomService {
	return &RoomService{Store: store, Cache: c, Log: log}
}

type RoomInput struct {
	CategoryID  *uint
	RoomNumber  *string
	Price       *decimal.Decimal
	ExtraBed    *bool
	Floor       *string
	Description *string
}

func applyRoomInput(ctx context.Context, store repository.Store, room *models.Room, in RoomInput) error {
	if in.CategoryID != nil {
		if _, err := store.Categories().GetByID(ctx, *in.CategoryID); err != nil {
			return storeErr(err, "category")
		}
		room.CategoryID = *in.CategoryID
	}
	if in.RoomNumber != nil {
		room.RoomNumber = strings.TrimSpace(*in.RoomNumber)
	}
	if in.Price != nil {
		room.Price = models.RoundMoney(*in.Price)
	}
	if in.ExtraBed != nil {
		room.ExtraBed = *in.ExtraBed
	}
	if in.Floor != nil {
		room.Floor = strings.TrimSpace(*in.Floor)
	}
	if in.Description != nil {
		room.Description = *in.Description
	}
	if room.RoomNumber == "" {
		return apperror.Validation("room number is required")
	}
	if room.Price.IsNegative() {
		return apperror.Validation("price must not be negative")
	}
	return nil
}

func (s *RoomService) Create(ctx context.Context, in RoomInput) (*models.Room, error) {
	if in.CategoryID == nil {
		return nil, apperror.Validation("categoryId is required")
	}
	room := models.Room{Status: models.RoomAvailable}
	if err := applyRoomInput(ctx, s.Store, &room, in); err != nil {
		return nil, err
	}
	if err := s.Store.Rooms().Create(ctx, &room); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperror.Conflict("room number '%s' already exists", room.RoomNumber)
		}
		return nil, classify(err, "create room")
	}
	s.Cache.Invalidate(ctx)
	return &room, nil
}

func (s *RoomService) Get(ctx context.Context, id uint) (*models.Room, error) {
	room, err := s.Store.Rooms().GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "room")
	}
	cat, err := s.Store.Categories().GetByID(ctx, room.CategoryID)
	switch {
	case err == nil:
		room.CategoryName = cat.Name
	case errors.Is(err, repository.ErrNotFound):
		room.CategoryName = models.UnknownCategoryName
	default:
		return nil, classify(err, "get category")
	}
	return room, nil
}

func (s *RoomService) List(ctx context.Context, filter repository.RoomFilter) ([]models.Room, error) {
	for _, st := range filter.Statuses {
		if !st.IsValid() {
			return nil, apperror.Validation("unknown room status %q", st)
		}
	}
	rooms, err := s.Store.Rooms().List(ctx, filter)
	if err != nil {
		return nil, classify(err, "list rooms")
	}
	cats, err := s.Store.Categories().List(ctx)
	if err != nil {
		return nil, classify(err, "list categories")
	}
	names := make(map[uint]string, len(cats))
	for _, c := range cats {
		names[c.ID] = c.Name
	}
	for i := range rooms {
		rooms[i].CategoryName = categoryName(names, rooms[i].CategoryID, models.UnknownCategoryName)
	}
	return rooms, nil
}

// heldBy returns the open bookings that hold the room on any date.
func heldBy(ctx context.Context, store repository.Store, number string) ([]repository.RoomClaim, error) {
	claims, err := store.Bookings().FindClaims(ctx, repository.ClaimQuery{RoomNumbers: []string{number}})
	if err != nil {
		return nil, classify(err, "find room bookings")
	}
	return claims, nil
}

// Update patches a room. Renumbering is refused while an open booking holds
// the old number; the room row stays locked until the change commits.
func (s *RoomService) Update(ctx context.Context, id uint, in RoomInput) (*models.Room, error) {
	var room *models.Room
	err := s.Store.Transaction(ctx, func(tx repository.Store) error {
		current, err := tx.Rooms().GetByID(ctx, id)
		if err != nil {
			return storeErr(err, "room")
		}
		oldNumber := current.RoomNumber
		locked, err := tx.Rooms().LockByNumbers(ctx, []string{oldNumber})
		if err != nil {
			return classify(err, "lock room")
		}
		if len(locked) != 1 {
			return apperror.NotFound("room not found")
		}
		r := locked[0]
		if err := applyRoomInput(ctx, tx, &r, in); err != nil {
			return err
		}
		if r.RoomNumber != oldNumber {
			claims, err := heldBy(ctx, tx, oldNumber)
			if err != nil {
				return err
			}
			if len(claims) > 0 {
				return apperror.Conflict("room %s is held by booking %s and cannot be renumbered", oldNumber, claims[0].GRCNumber)
			}
		}
		if err := tx.Rooms().Update(ctx, &r); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return apperror.Conflict("room number '%s' already exists", r.RoomNumber)
			}
			return storeErr(err, "room")
		}
		room = &r
		return nil
	})
	if err != nil {
		return nil, classify(err, "update room")
	}
	s.Cache.Invalidate(ctx)
	return room, nil
}

// SetStatus toggles a room between available and maintenance. Booked and
// reserved are owned by the booking lifecycle.
func (s *RoomService) SetStatus(ctx context.Context, id uint, status models.RoomStatus) (*models.Room, error) {
	if status != models.RoomAvailable && status != models.RoomMaintenance {
		return nil, apperror.Validation("status can only be set to %s or %s", models.RoomAvailable, models.RoomMaintenance)
	}
	room, err := s.Store.Rooms().GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "room")
	}
	if room.Status == models.RoomBooked || room.Status == models.RoomReserved {
		return nil, apperror.BusinessRule("room %s is %s; check the booking out or cancel it first", room.RoomNumber, room.Status)
	}
	if err := s.Store.Rooms().SetStatus(ctx, room.RoomNumber, status); err != nil {
		return nil, storeErr(err, "room")
	}
	room.Status = status
	s.Log.WithFields(logrus.Fields{"room": room.RoomNumber, "status": status}).Info("room status changed")
	return room, nil
}

// Delete refuses rooms still held by an open booking.
func (s *RoomService) Delete(ctx context.Context, id uint) error {
	room, err := s.Store.Rooms().GetByID(ctx, id)
	if err != nil {
		return storeErr(err, "room")
	}
	claims, err := heldBy(ctx, s.Store, room.RoomNumber)
	if err != nil {
		return err
	}
	if len(claims) > 0 {
		return apperror.Conflict("room %s is held by booking %s", room.RoomNumber, claims[0].GRCNumber).
			WithDetails(map[string]any{"conflicts": claims})
	}
	if err := s.Store.Rooms().Delete(ctx, id); err != nil {
		return storeErr(err, "room")
	}
	s.Cache.Invalidate(ctx)
	return nil
}
