package config

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"hotel-pms/models"
	"hotel-pms/repository"
)

// ConnectDatabase opens the configured SQL database through gorm and
// migrates the schema.
func ConnectDatabase(cfg *Config, log *logrus.Logger) (*gorm.DB, error) {
	logLevel := logger.Warn
	if cfg.GinMode == "debug" {
		logLevel = logger.Info
	}
	gormLogger := logger.New(log, logger.Config{
		SlowThreshold:             time.Second,
		LogLevel:                  logLevel,
		IgnoreRecordNotFoundError: true,
	})

	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case DriverSQLite:
		dialector = sqlite.Open(cfg.SQLitePath)
	default:
		dialector = mysql.Open(cfg.MySQLDSN)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.DBDriver == DriverSQLite {
		// one writer at a time; also keeps a ":memory:" database alive
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}

	if err := repository.AutoMigrate(db); err != nil {
		return nil, err
	}
	log.WithField("driver", cfg.DBDriver).Info("database connected and migrated")
	return db, nil
}

// OpenStore returns the store selected by DB_DRIVER, seeded when DB_SEED is on.
func OpenStore(cfg *Config, log *logrus.Logger) (repository.Store, error) {
	var store repository.Store
	switch cfg.DBDriver {
	case DriverMemory:
		log.Warn("using the in-memory store; data is lost on restart")
		store = repository.NewMemoryStore()
	default:
		db, err := ConnectDatabase(cfg, log)
		if err != nil {
			return nil, err
		}
		store = repository.NewGormStore(db, cfg.QueryTimeout)
	}

	if cfg.DBSeed {
		if err := SeedDatabase(context.Background(), store, log); err != nil {
			_ = store.Close()
			return nil, err
		}
	}
	return store, nil
}

type seedCategory struct {
	name  string
	price int64
	floor string
	rooms []string
}

var defaultSeed = []seedCategory{
	{name: "Standard", price: 1500, floor: "1", rooms: []string{"101", "102", "103", "104"}},
	{name: "Deluxe", price: 2000, floor: "2", rooms: []string{"201", "202", "203"}},
	{name: "Suite", price: 5000, floor: "3", rooms: []string{"301", "302"}},
}

// SeedDatabase creates the default categories and rooms on an empty store.
func SeedDatabase(ctx context.Context, store repository.Store, log *logrus.Logger) error {
	existing, err := store.Categories().List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		log.Info("categories already seeded")
		return nil
	}

	return store.Transaction(ctx, func(tx repository.Store) error {
		for _, sc := range defaultSeed {
			cat := models.Category{Name: sc.name, Price: decimal.NewFromInt(sc.price), Description: sc.name + " room"}
			if err := tx.Categories().Create(ctx, &cat); err != nil {
				return err
			}
			for _, number := range sc.rooms {
				room := models.Room{
					CategoryID: cat.ID,
					RoomNumber: number,
					Price:      cat.Price,
					Floor:      sc.floor,
					Status:     models.RoomAvailable,
				}
				if err := tx.Rooms().Create(ctx, &room); err != nil && !errors.Is(err, repository.ErrDuplicate) {
					return err
				}
			}
		}
		log.WithField("categories", len(defaultSeed)).Info("categories and rooms seeded")
		return nil
	})
}
