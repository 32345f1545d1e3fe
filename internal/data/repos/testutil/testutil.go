package testutil

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	dbpkg "github.com/yungbote/games-aggregator/internal/data/db"
	"github.com/yungbote/games-aggregator/internal/pkg/logger"
)

var (
	pgOnce sync.Once
	pgDB   *gorm.DB
	pgErr  error

	memSeq atomic.Int64

	logOnce sync.Once
	logg    *logger.Logger
	logErr  error
)

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	logOnce.Do(func() {
		logg, logErr = logger.New("test")
	})
	if logErr != nil {
		tb.Fatalf("failed to init logger: %v", logErr)
	}
	return logg
}

// DB returns a migrated database. With TEST_POSTGRES_DSN set every test shares one Postgres
// database (wrap work in Tx for isolation); otherwise each call gets a private in-memory SQLite.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()
	if dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN")); dsn != "" {
		pgOnce.Do(func() {
			pgDB, pgErr = open(postgres.Open(dsn))
		})
		if pgErr != nil {
			tb.Fatalf("failed to init test db: %v", pgErr)
		}
		return pgDB
	}

	name := fmt.Sprintf("file:games_%d?mode=memory&cache=shared", memSeq.Add(1))
	db, err := open(sqlite.Open(name))
	if err != nil {
		tb.Fatalf("failed to init sqlite test db: %v", err)
	}
	tb.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func open(dialector gorm.Dialector) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
		Logger:                                   gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := dbpkg.AutoMigrateAll(db); err != nil {
		return nil, err
	}
	if err := dbpkg.AutoMigrateCatalogs(db); err != nil {
		return nil, err
	}
	if err := dbpkg.EnsureGameIndexes(db); err != nil {
		return nil, err
	}
	return db, nil
}

// IsPostgres reports whether tests run against TEST_POSTGRES_DSN.
func IsPostgres() bool {
	return strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN")) != ""
}

func Tx(tb testing.TB, db *gorm.DB) *gorm.DB {
	tb.Helper()
	tx := db.Begin()
	if tx.Error != nil {
		tb.Fatalf("begin tx: %v", tx.Error)
	}
	tb.Cleanup(func() {
		_ = tx.Rollback().Error
	})
	return tx
}
