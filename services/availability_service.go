package services

import (
	"context"
	"sort"

	"github.com/sirupsen/logrus"

	"hotel-pms/apperror"
	"hotel-pms/cache"
	"hotel-pms/models"
	"hotel-pms/repository"
)

// AvailabilityService answers "which rooms are free for these dates".
type AvailabilityService struct {
	Store repository.Store
	Cache cache.AvailabilityCache
	Log   *logrus.Logger
}

func NewAvailabilityService(store repository.Store, c cache.AvailabilityCache, log *logrus.Logger) *AvailabilityService {
	return &AvailabilityService{Store: store, Cache: c, Log: log}
}

// AvailableRooms returns, grouped by category, every room that no active
// Booked or Checked In booking holds for [checkIn, checkOut). The stored room
// status is ignored: a room occupied today is still offered for later dates.
func (s *AvailabilityService) AvailableRooms(ctx context.Context, checkIn, checkOut string) ([]models.AvailabilityGroup, error) {
	if checkIn == "" || checkOut == "" {
		return nil, apperror.Validation("checkInDate and checkOutDate are required")
	}
	in, err := models.ParseDate(checkIn)
	if err != nil {
		return nil, apperror.Validation("invalid checkInDate %q: %v", checkIn, err)
	}
	out, err := models.ParseDate(checkOut)
	if err != nil {
		return nil, apperror.Validation("invalid checkOutDate %q: %v", checkOut, err)
	}
	if !out.After(in) {
		return nil, apperror.Validation("checkOutDate must be after checkInDate")
	}

	groups, generation, ok := s.Cache.Get(ctx, in, out)
	if ok {
		return groups, nil
	}

	rooms, err := s.Store.Rooms().List(ctx, repository.RoomFilter{})
	if err != nil {
		return nil, classify(err, "list rooms")
	}
	claims, err := s.Store.Bookings().FindClaims(ctx, repository.ClaimQuery{CheckIn: in, CheckOut: out})
	if err != nil {
		return nil, classify(err, "find overlapping bookings")
	}
	cats, err := s.Store.Categories().List(ctx)
	if err != nil {
		return nil, classify(err, "list categories")
	}

	excluded := make(map[string]bool, len(claims))
	for _, c := range claims {
		excluded[c.RoomNumber] = true
	}
	names := make(map[uint]string, len(cats))
	for _, c := range cats {
		names[c.ID] = c.Name
	}

	groups = groupAvailable(rooms, excluded, names)
	s.Cache.Set(ctx, generation, in, out, groups)

	s.Log.WithFields(logrus.Fields{
		"checkIn":  checkIn,
		"checkOut": checkOut,
		"excluded": len(excluded),
	}).Debug("availability resolved")
	return groups, nil
}

// groupAvailable builds the category groups sorted by category name then
// room number, so equal inputs give identical output.
func groupAvailable(rooms []models.Room, excluded map[string]bool, names map[uint]string) []models.AvailabilityGroup {
	byCategory := map[uint]*models.AvailabilityGroup{}
	for _, r := range rooms {
		if excluded[r.RoomNumber] {
			continue
		}
		g, ok := byCategory[r.CategoryID]
		if !ok {
			g = &models.AvailabilityGroup{
				CategoryID:   r.CategoryID,
				CategoryName: categoryName(names, r.CategoryID, models.UncategorizedCategoryName),
			}
			byCategory[r.CategoryID] = g
		}
		g.Rooms = append(g.Rooms, models.AvailableRoom{
			ID:         r.ID,
			RoomNumber: r.RoomNumber,
			Price:      r.Price,
			ExtraBed:   r.ExtraBed,
			Floor:      r.Floor,
			Status:     models.RoomAvailable,
		})
	}

	groups := make([]models.AvailabilityGroup, 0, len(byCategory))
	for _, g := range byCategory {
		sort.Slice(g.Rooms, func(i, j int) bool { return g.Rooms[i].RoomNumber < g.Rooms[j].RoomNumber })
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].CategoryName != groups[j].CategoryName {
			return groups[i].CategoryName < groups[j].CategoryName
		}
		return groups[i].CategoryID < groups[j].CategoryID
	})
	return groups
}
