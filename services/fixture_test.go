package services

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"hotel-pms/apperror"
	"hotel-pms/cache"
	"hotel-pms/config"
	"hotel-pms/models"
	"hotel-pms/queue"
	"hotel-pms/repository"
)

var (
	staff = Actor{UserID: "frontdesk", Role: RoleStaff}
	admin = Actor{UserID: "manager", Role: RoleAdmin}
)

// recordingPublisher keeps published events for assertions.
type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e queue.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}
func (p *recordingPublisher) Close() error { return nil }

type fixture struct {
	ctx          context.Context
	store        repository.Store
	events       *recordingPublisher
	bookings     *BookingService
	availability *AvailabilityService
	rooms        *RoomService
	categories   *CategoryService
	banquets     *BanquetService
	reconcile    *ReconcileService

	deluxe models.Category
	suite  models.Category
}

// newSQLiteStore opens a private in-memory SQLite database with the
// production schema.
func newSQLiteStore(t *testing.T, log *logrus.Logger) repository.Store {
	t.Helper()
	db, err := config.ConnectDatabase(&config.Config{
		DBDriver:   config.DriverSQLite,
		SQLitePath: ":memory:",
		GinMode:    "release",
	}, log)
	require.NoError(t, err)
	store := repository.NewGormStore(db, 0)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// newFixture seeds DELUXE rooms 101 and 102 at 2000 and SUITE room 201 at
// 5000. The clock is fixed at 2024-01-01 10:00 UTC.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	store := newSQLiteStore(t, log)
	events := &recordingPublisher{}
	f := &fixture{
		ctx:          context.Background(),
		store:        store,
		events:       events,
		bookings:     NewBookingService(store, cache.NopCache{}, events, log),
		availability: NewAvailabilityService(store, cache.NopCache{}, log),
		rooms:        NewRoomService(store, cache.NopCache{}, log),
		categories:   NewCategoryService(store, cache.NopCache{}, log),
		banquets:     NewBanquetService(store, events, log),
		reconcile:    NewReconcileService(store, cache.NopCache{}, events, log),
	}
	f.bookings.Now = clock
	f.banquets.Now = clock
	f.reconcile.Now = clock

	f.deluxe = models.Category{Name: "DELUXE", Price: decimal.NewFromInt(2000)}
	f.suite = models.Category{Name: "SUITE", Price: decimal.NewFromInt(5000)}
	require.NoError(t, store.Categories().Create(f.ctx, &f.deluxe))
	require.NoError(t, store.Categories().Create(f.ctx, &f.suite))
	f.addRoom(t, f.deluxe.ID, "101", "2000")
	f.addRoom(t, f.deluxe.ID, "102", "2000")
	f.addRoom(t, f.suite.ID, "201", "5000")
	return f
}

func (f *fixture) addRoom(t *testing.T, categoryID uint, number, price string) models.Room {
	t.Helper()
	room := models.Room{CategoryID: categoryID, RoomNumber: number, Price: dec(price), Status: models.RoomAvailable}
	require.NoError(t, f.store.Rooms().Create(f.ctx, &room))
	return room
}

func (f *fixture) roomStatus(t *testing.T, number string) models.RoomStatus {
	t.Helper()
	rooms, err := f.store.Rooms().LockByNumbers(f.ctx, []string{number})
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	return rooms[0].Status
}

func (f *fixture) book(t *testing.T, in, out string, numbers ...string) *models.Booking {
	t.Helper()
	b, err := f.bookings.CreateBooking(f.ctx, f.bookingInput(in, out, numbers...), staff)
	require.NoError(t, err)
	return b
}

func (f *fixture) bookingInput(in, out string, numbers ...string) CreateBookingInput {
	selected := make([]SelectedRoom, len(numbers))
	for i, n := range numbers {
		selected[i] = SelectedRoom{RoomNumber: n}
	}
	return CreateBookingInput{
		CategoryID:    f.deluxe.ID,
		SelectedRooms: selected,
		CheckInDate:   mustDate(in),
		CheckOutDate:  mustDate(out),
		Guest:         models.GuestDetails{GuestName: "Asha Rao", ContactNumber: "9800000000", Adults: 2},
	}
}

func requireKind(t *testing.T, kind apperror.Kind, err error) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, apperror.KindOf(err), err.Error())
}

func roomNumbersOf(groups []models.AvailabilityGroup) []string {
	var out []string
	for _, g := range groups {
		for _, r := range g.Rooms {
			out = append(out, r.RoomNumber)
		}
	}
	return out
}
