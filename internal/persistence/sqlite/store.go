// Package sqlite implements the persistence repositories on SQLite.
package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/example/booking-sessions/internal/persistence/sqlite/migration"
)

// Store bundles the repositories sharing one connection pool.
type Store struct {
	pool      *ConnectionPool
	Services  *ServiceRepository
	Resources *ResourceRepository
	Sessions  *SessionRepository
}

// Open connects to the database described by config and applies pending
// migrations.
func Open(ctx context.Context, config migration.SQLiteConfig, logger zerolog.Logger) (*Store, error) {
	pool, err := NewConnectionPool(config)
	if err != nil {
		return nil, err
	}
	if err := migration.NewManager(pool.DB(), migration.Embedded(), logger).Run(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate %s: %w", config.DSN, err)
	}
	return NewStore(pool), nil
}

// NewStore returns repositories over an already migrated pool.
func NewStore(pool *ConnectionPool) *Store {
	now := func() time.Time { return time.Now().UTC() }
	return &Store{
		pool:      pool,
		Services:  NewServiceRepository(pool, now),
		Resources: NewResourceRepository(pool, now),
		Sessions:  NewSessionRepository(pool, now),
	}
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.pool.Close()
}
