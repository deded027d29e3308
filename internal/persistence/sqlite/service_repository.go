package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/example/booking-sessions/internal/persistence"
)

// ServiceRepository implements persistence.ServiceRepository using SQLite
type ServiceRepository struct {
	helper *QueryHelper
	mapper *ErrorMapper
	now    func() time.Time
}

// NewServiceRepository creates a new SQLite service repository
func NewServiceRepository(pool *ConnectionPool, now func() time.Time) *ServiceRepository {
	return &ServiceRepository{helper: NewQueryHelper(pool), mapper: NewErrorMapper(), now: now}
}

const serviceColumns = `id, name, schedule_id, session_types, updated_at`

// GetService retrieves a service by ID
func (r *ServiceRepository) GetService(ctx context.Context, id string) (persistence.Service, error) {
	if id == "" {
		return persistence.Service{}, persistence.ErrNotFound
	}
	row := r.helper.QueryRow(ctx, `SELECT `+serviceColumns+` FROM services WHERE id = ?`, id)
	service, err := scanService(row)
	if err != nil {
		return persistence.Service{}, r.mapper.MapError(err)
	}
	return service, nil
}

// ListServices returns all services ordered by ID
func (r *ServiceRepository) ListServices(ctx context.Context) ([]persistence.Service, error) {
	rows, err := r.helper.Query(ctx, `SELECT `+serviceColumns+` FROM services ORDER BY id ASC`)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var services []persistence.Service
	for rows.Next() {
		service, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		services = append(services, service)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return services, nil
}

// SaveService inserts or replaces a service. A zero UpdatedAt is stamped
// with now.
func (r *ServiceRepository) SaveService(ctx context.Context, service persistence.Service) error {
	if service.ID == "" || service.ScheduleID == "" {
		return persistence.ErrConstraintViolation
	}
	sessionTypes, err := json.Marshal(nonNil(service.SessionTypes))
	if err != nil {
		return fmt.Errorf("encode session types: %w", err)
	}

	query := `
		INSERT INTO services (id, name, schedule_id, session_types, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			schedule_id = excluded.schedule_id,
			session_types = excluded.session_types,
			updated_at = excluded.updated_at
	`
	_, err = r.helper.Exec(ctx, query,
		service.ID,
		service.Name,
		service.ScheduleID,
		string(sessionTypes),
		stamp(service.UpdatedAt, r.now),
	)
	return r.mapper.MapError(err)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanService(row scanner) (persistence.Service, error) {
	var (
		service      persistence.Service
		sessionTypes string
		updatedAt    string
	)
	if err := row.Scan(&service.ID, &service.Name, &service.ScheduleID, &sessionTypes, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Service{}, persistence.ErrNotFound
		}
		return persistence.Service{}, err
	}
	if err := json.Unmarshal([]byte(sessionTypes), &service.SessionTypes); err != nil {
		return persistence.Service{}, fmt.Errorf("decode session types of %s: %w", service.ID, err)
	}
	var err error
	if service.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return persistence.Service{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return service, nil
}

func stamp(t time.Time, now func() time.Time) string {
	if t.IsZero() {
		t = now()
	}
	return t.UTC().Format(time.RFC3339)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
