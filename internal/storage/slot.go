// Package storage persists the workout list in a single durable key-value
// slot. The slot can live in SQLite, PostgreSQL, Redis or memory.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/claude/trailmark/internal/config"
)

// ErrSlotEmpty is returned by Slot.Read when nothing has been written under the key.
var ErrSlotEmpty = errors.New("slot is empty")

// Slot is a named durable value. Write replaces the whole value.
type Slot interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// OpenSlot opens the backend selected by cfg.Driver. For postgres the
// migrations in cfg.Migrations are applied first.
func OpenSlot(ctx context.Context, cfg config.StorageConfig) (Slot, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		return OpenSQLiteSlot(ctx, cfg.SQLite.Path)
	case config.DriverPostgres:
		dsn := cfg.Postgres.DSN()
		if err := RunMigrations(dsn, cfg.Migrations); err != nil {
			return nil, err
		}
		return OpenPostgresSlot(ctx, dsn)
	case config.DriverRedis:
		return OpenRedisSlot(ctx, cfg.Redis)
	case config.DriverMemory:
		return NewMemorySlot(), nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}
