// Package testutil provides database fixtures for repository and service
// tests. DB returns an isolated in-memory SQLite store; PostgresDB connects to
// TEST_POSTGRES_DSN for tests that need real row locking.
package testutil

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/nurpe/salesops-contracts/internal/db"
	"github.com/nurpe/salesops-contracts/internal/model"
)

var errMissingDSN = errors.New("missing TEST_POSTGRES_DSN")

var (
	pgOnce sync.Once
	pgDB   *gorm.DB
	pgErr  error
)

func Logger(tb testing.TB) zerolog.Logger {
	tb.Helper()
	return zerolog.Nop()
}

// DB opens a fresh in-memory SQLite database migrated with the model
// structs. A single connection is shared, so concurrent transactions queue
// behind each other instead of interleaving.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", uuid.NewString())
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 gormLogger.Default.LogMode(gormLogger.Silent),
		SkipDefaultTransaction: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		tb.Fatalf("sqlite handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() {
		_ = sqlDB.Close()
	})

	if err := autoMigrateAll(database); err != nil {
		tb.Fatalf("migrate sqlite: %v", err)
	}
	return database
}

// PostgresDB returns a migrated Postgres connection or skips the test when
// TEST_POSTGRES_DSN is not set.
func PostgresDB(tb testing.TB) *gorm.DB {
	tb.Helper()

	pgOnce.Do(func() {
		dsn := os.Getenv("TEST_POSTGRES_DSN")
		if dsn == "" {
			pgErr = errMissingDSN
			return
		}
		pgDB, pgErr = gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger:                 gormLogger.Default.LogMode(gormLogger.Silent),
			SkipDefaultTransaction: true,
		})
		if pgErr != nil {
			return
		}
		pgErr = db.Migrate(pgDB)
	})

	if errors.Is(pgErr, errMissingDSN) {
		tb.Skip("set TEST_POSTGRES_DSN to run postgres integration tests")
	}
	if pgErr != nil {
		tb.Fatalf("failed to init postgres: %v", pgErr)
	}
	return pgDB
}

// Isolation is the level tests hand to repository.NewTransactor.
const Isolation = sql.LevelDefault

func autoMigrateAll(database *gorm.DB) error {
	return database.AutoMigrate(
		&model.Company{},
		&model.User{},
		&model.Service{},
		&model.Package{},
		&model.PackageService{},
		&model.Clause{},
		&model.Addon{},
		&model.Coupon{},
		&model.Contract{},
		&model.ContractAddon{},
		&model.AuditEntry{},
	)
}

func Count(tb testing.TB, database *gorm.DB, table string) int64 {
	tb.Helper()
	var n int64
	if err := database.Table(table).Count(&n).Error; err != nil {
		tb.Fatalf("count %s: %v", table, err)
	}
	return n
}

func create(tb testing.TB, database *gorm.DB, value interface{}, what string) {
	tb.Helper()
	if err := database.WithContext(context.Background()).Create(value).Error; err != nil {
		tb.Fatalf("seed %s: %v", what, err)
	}
}
