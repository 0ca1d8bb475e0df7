// Package db opens the postgres pool, migrates the gorm models and applies
// the embedded SQL migrations for indexes and reference data.
package db

import (
	"database/sql"
	"embed"
	"fmt"
	"time"

	"dymm/internal/avatar"
	"dymm/internal/banner"
	"dymm/internal/bookmark"
	"dymm/internal/jobs"
	"dymm/internal/lifelog"
	"dymm/internal/tag"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Open opens a lib/pq pool and verifies it with a ping.
func Open(dsn string) (*sql.DB, error) {
	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("database open: %w", err)
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("database ping: %w", err)
	}
	return sqlDB, nil
}

// Connect wraps an open pool in gorm, logging slow queries through logrus.
func Connect(sqlDB *sql.DB, log *logrus.Logger) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.New(log, logger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, err
	}
	return gdb, nil
}

// Models lists every table the service owns.
func Models() []any {
	return []any{
		&tag.Tag{},
		&tag.TagSet{},
		&avatar.Avatar{},
		&avatar.ProfileTag{},
		&lifelog.LogGroup{},
		&lifelog.TagLog{},
		&lifelog.LogHistory{},
		&lifelog.AvatarCond{},
		&bookmark.Bookmark{},
		&banner.Banner{},
		&jobs.Job{},
	}
}

func AutoMigrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(Models()...)
}

// Migrate runs the embedded goose migrations. Tables must exist first; see
// AutoMigrate.
func Migrate(sqlDB *sql.DB, dialect string) error {
	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(logrus.StandardLogger())

	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("goose set dialect: %w", err)
	}
	if err := goose.Up(sqlDB, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

// Setup migrates models and then applies SQL migrations on postgres.
func Setup(gdb *gorm.DB, sqlDB *sql.DB) error {
	if err := AutoMigrate(gdb); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return Migrate(sqlDB, "postgres")
}
