// Package database provides the GORM-backed database layer.
package database

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Database wraps a GORM connection with context-aware sessions.
type Database struct {
	gorm       *gorm.DB
	isPostgres bool
}

// Open connects to the database described by url.
// Supported schemes: postgres://... (also postgresql://) and sqlite://path.
func Open(url string) (Database, error) {
	var (
		dialector gorm.Dialector
		pg        bool
	)

	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		dialector = postgres.Open(url)
		pg = true
	case strings.HasPrefix(url, "sqlite://"):
		dialector = sqlite.Open(strings.TrimPrefix(url, "sqlite://"))
	default:
		return Database{}, fmt.Errorf("unsupported database URL: %q", url)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: slogGormLogger{},
	})
	if err != nil {
		return Database{}, fmt.Errorf("open database: %w", err)
	}

	return Database{gorm: db, isPostgres: pg}, nil
}

// NewDatabase wraps an existing GORM connection. Used by tests.
func NewDatabase(db *gorm.DB, isPostgres bool) Database {
	return Database{gorm: db, isPostgres: isPostgres}
}

// GORM returns the underlying GORM connection.
func (d Database) GORM() *gorm.DB {
	return d.gorm
}

// Session returns a context-bound GORM session.
func (d Database) Session(ctx context.Context) *gorm.DB {
	return d.gorm.WithContext(ctx)
}

// IsPostgres reports whether the connection targets PostgreSQL.
func (d Database) IsPostgres() bool {
	return d.isPostgres
}

// Close closes the underlying connection pool.
func (d Database) Close() error {
	sqlDB, err := d.gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
