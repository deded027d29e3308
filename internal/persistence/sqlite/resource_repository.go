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

// ResourceRepository implements persistence.ResourceRepository using SQLite
type ResourceRepository struct {
	helper *QueryHelper
	mapper *ErrorMapper
	now    func() time.Time
}

// NewResourceRepository creates a new SQLite resource repository
func NewResourceRepository(pool *ConnectionPool, now func() time.Time) *ResourceRepository {
	return &ResourceRepository{helper: NewQueryHelper(pool), mapper: NewErrorMapper(), now: now}
}

// GetResource retrieves a resource and its availability rules by ID
func (r *ResourceRepository) GetResource(ctx context.Context, id string) (persistence.Resource, error) {
	if id == "" {
		return persistence.Resource{}, persistence.ErrNotFound
	}

	var (
		resource  persistence.Resource
		rules     string
		updatedAt string
	)
	err := r.helper.QueryRow(ctx, `SELECT id, name, timezone, rules, updated_at FROM resources WHERE id = ?`, id).
		Scan(&resource.ID, &resource.Name, &resource.Availability.Timezone, &rules, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Resource{}, persistence.ErrNotFound
		}
		return persistence.Resource{}, r.mapper.MapError(err)
	}

	if err := json.Unmarshal([]byte(rules), &resource.Availability.Rules); err != nil {
		return persistence.Resource{}, fmt.Errorf("decode rules of %s: %w", resource.ID, err)
	}
	if resource.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return persistence.Resource{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return resource, nil
}

// SaveResource inserts or replaces a resource
func (r *ResourceRepository) SaveResource(ctx context.Context, resource persistence.Resource) error {
	if resource.ID == "" {
		return persistence.ErrConstraintViolation
	}
	rules, err := json.Marshal(nonNil(resource.Availability.Rules))
	if err != nil {
		return fmt.Errorf("encode rules: %w", err)
	}
	timezone := resource.Availability.Timezone
	if timezone == "" {
		timezone = "UTC"
	}

	query := `
		INSERT INTO resources (id, name, timezone, rules, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			timezone = excluded.timezone,
			rules = excluded.rules,
			updated_at = excluded.updated_at
	`
	_, err = r.helper.Exec(ctx, query, resource.ID, resource.Name, timezone, string(rules), stamp(resource.UpdatedAt, r.now))
	return r.mapper.MapError(err)
}
