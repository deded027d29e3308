package migration

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	"github.com/rs/zerolog"
)

// Manager runs pending migrations from a file system.
type Manager struct {
	executor *Executor
	files    fs.FS
	logger   zerolog.Logger
}

// NewManager returns a manager applying the migrations in files to db.
func NewManager(db *sql.DB, files fs.FS, logger zerolog.Logger) *Manager {
	return &Manager{
		executor: NewExecutor(db),
		files:    files,
		logger:   logger.With().Str("component", "migration").Logger(),
	}
}

// Run applies every pending migration in version order. It stops at the
// first failure; migrations applied before it stay applied.
func (m *Manager) Run(ctx context.Context) error {
	status, err := m.Status(ctx)
	if err != nil {
		return err
	}

	m.logger.Info().
		Str("current_version", status.CurrentVersion).
		Int("pending", len(status.Pending)).
		Msg("schema status")

	for _, migration := range status.Pending {
		elapsed, err := m.executor.Apply(ctx, migration)
		if err != nil {
			m.logger.Error().Err(err).Str("version", migration.Version).Msg("migration failed")
			return fileError(migration.Version, migration.FilePath, "execute migration",
				fmt.Errorf("%w: %w", ErrMigrationFailed, err))
		}
		m.logger.Info().
			Str("version", migration.Version).
			Str("description", migration.Description).
			Dur("elapsed", elapsed).
			Msg("migration applied")
	}
	return nil
}

// Status compares the migration files with the recorded versions. An applied
// migration whose file changed is reported as ErrChecksumMismatch.
func (m *Manager) Status(ctx context.Context) (*Status, error) {
	if err := m.executor.InitializeVersionTable(ctx); err != nil {
		return nil, err
	}
	migrations, err := Scan(m.files)
	if err != nil {
		return nil, err
	}
	applied, err := m.executor.Applied(ctx)
	if err != nil {
		return nil, err
	}

	checksums := make(map[string]string, len(applied))
	for _, a := range applied {
		checksums[a.Version] = a.Checksum
	}

	status := &Status{Applied: applied}
	if len(applied) > 0 {
		status.CurrentVersion = applied[len(applied)-1].Version
	}
	for _, migration := range migrations {
		sum, ok := checksums[migration.Version]
		if !ok {
			status.Pending = append(status.Pending, migration)
			continue
		}
		if sum != "" && sum != migration.Checksum {
			return nil, fileError(migration.Version, migration.FilePath, "verify checksum", ErrChecksumMismatch)
		}
	}
	return status, nil
}
