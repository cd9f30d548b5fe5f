package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore is the gorm-backed Store, over MySQL or SQLite.
type GormStore struct {
	db           *gorm.DB
	queryTimeout time.Duration
	inTx         bool
}

// NewGormStore wraps an opened connection. queryTimeout bounds read queries
// issued outside an explicit deadline; zero disables it.
func NewGormStore(db *gorm.DB, queryTimeout time.Duration) *GormStore {
	return &GormStore{db: db, queryTimeout: queryTimeout}
}

func (s *GormStore) Categories() CategoryRepository { return &gormCategoryRepo{s: s} }
func (s *GormStore) Rooms() RoomRepository          { return &gormRoomRepo{s: s} }
func (s *GormStore) Bookings() BookingRepository    { return &gormBookingRepo{s: s} }
func (s *GormStore) Banquets() BanquetRepository    { return &gormBanquetRepo{s: s} }

func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx, queryTimeout: s.queryTimeout, inTx: true})
	})
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// read returns a session for a read query with the time budget applied.
func (s *GormStore) read(ctx context.Context) (*gorm.DB, context.CancelFunc) {
	if s.queryTimeout <= 0 {
		return s.db.WithContext(ctx), func() {}
	}
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	return s.db.WithContext(ctx), cancel
}

func (s *GormStore) write(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// locking reads see the latest committed rows and, inside a transaction,
// hold them until commit.
func (s *GormStore) locking(ctx context.Context) (*gorm.DB, context.CancelFunc) {
	if !s.inTx {
		return s.read(ctx)
	}
	return s.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), func() {}
}
