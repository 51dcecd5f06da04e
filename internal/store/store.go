package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"awareness-game/internal/model"
)

var (
	// ErrUnavailable is returned by every call on an unconfigured gateway.
	ErrUnavailable = errors.New("database not configured")
	ErrNotFound    = errors.New("document not found")
	ErrDuplicate   = errors.New("duplicate key")
)

// Gateway is a document-style facade over a relational store. Each
// collection maps to one table; every call is atomic for a single row only.
type Gateway struct {
	db      *gorm.DB
	sqlDB   *sql.DB
	dialect string
}

// Open connects to the store named by databaseURL, selects databaseName and
// migrates the collections.
func Open(databaseURL, databaseName string) (*Gateway, error) {
	databaseURL = strings.TrimSpace(databaseURL)
	databaseName = strings.TrimSpace(databaseName)
	if databaseURL == "" || databaseName == "" {
		return nil, ErrUnavailable
	}

	conn, err := connect(databaseURL, databaseName)
	if err != nil {
		return nil, err
	}

	dbLogger := logger.New(
		log.New(os.Stdout, "", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(conn.dialector, &gorm.Config{
		Logger:         dbLogger,
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		_ = conn.sqlDB.Close()
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.AutoMigrate(model.All()...); err != nil {
		_ = conn.sqlDB.Close()
		return nil, fmt.Errorf("migrate db: %w", err)
	}

	return &Gateway{db: db, sqlDB: conn.sqlDB, dialect: conn.dialect}, nil
}

func (g *Gateway) ready() bool {
	return g != nil && g.db != nil
}

// Dialect reports which backend the gateway talks to.
func (g *Gateway) Dialect() string {
	if !g.ready() {
		return ""
	}
	return g.dialect
}

func (g *Gateway) Ping(ctx context.Context) error {
	if !g.ready() {
		return ErrUnavailable
	}
	return g.sqlDB.PingContext(ctx)
}

// CollectionNames lists the tables present in the selected database.
func (g *Gateway) CollectionNames(ctx context.Context) ([]string, error) {
	if !g.ready() {
		return nil, ErrUnavailable
	}
	return g.db.WithContext(ctx).Migrator().GetTables()
}

func (g *Gateway) Close() error {
	if !g.ready() {
		return nil
	}
	return g.sqlDB.Close()
}
