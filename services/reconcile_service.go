package services

import (
	"context"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"hotel-pms/cache"
	"hotel-pms/models"
	"hotel-pms/queue"
	"hotel-pms/repository"
)

// ReconcileService repairs room statuses that drifted from the bookings,
// e.g. after a best-effort release failed or a booking row was purged.
type ReconcileService struct {
	Store  repository.Store
	Cache  cache.AvailabilityCache
	Events queue.Publisher
	Log    *logrus.Logger
	Now    func() time.Time
}

func NewReconcileService(store repository.Store, c cache.AvailabilityCache, events queue.Publisher, log *logrus.Logger) *ReconcileService {
	return &ReconcileService{Store: store, Cache: c, Events: events, Log: log, Now: time.Now}
}

// Reconcile marks available every booked or reserved room that no active
// open booking holds, and returns their numbers.
func (s *ReconcileService) Reconcile(ctx context.Context) ([]string, error) {
	var fixed []string
	err := s.Store.Transaction(ctx, func(tx repository.Store) error {
		rooms, err := tx.Rooms().LockByFilter(ctx, repository.RoomFilter{
			Statuses: []models.RoomStatus{models.RoomBooked, models.RoomReserved},
		})
		if err != nil {
			return classify(err, "lock rooms")
		}
		if len(rooms) == 0 {
			return nil
		}
		numbers := make([]string, len(rooms))
		for i, r := range rooms {
			numbers[i] = r.RoomNumber
		}
		claims, err := tx.Bookings().FindClaims(ctx, repository.ClaimQuery{RoomNumbers: numbers})
		if err != nil {
			return classify(err, "find room bookings")
		}
		held := make(map[string]bool, len(claims))
		for _, c := range claims {
			held[c.RoomNumber] = true
		}
		for _, n := range numbers {
			if held[n] {
				continue
			}
			if err := tx.Rooms().SetStatus(ctx, n, models.RoomAvailable); err != nil {
				return classify(err, "release room")
			}
			fixed = append(fixed, n)
		}
		return nil
	})
	if err != nil {
		return nil, classify(err, "reconcile rooms")
	}
	sort.Strings(fixed)

	if len(fixed) > 0 {
		s.Log.WithField("rooms", fixed).Warn("released rooms with no open booking")
		s.Cache.Invalidate(ctx)
		ev := queue.Event{Type: queue.EventRoomsReconciled, Rooms: fixed, Actor: SystemActor.Name(), OccurredAt: s.Now().UTC()}
		if err := s.Events.Publish(ctx, ev); err != nil {
			s.Log.WithError(err).Warn("event publish failed")
		}
	}
	return fixed, nil
}
