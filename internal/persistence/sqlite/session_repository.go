package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/example/booking-sessions/internal/persistence"
	"github.com/example/booking-sessions/internal/persistence/expr"
)

// resourceSeparator joins session resource ids into one column.
const resourceSeparator = ","

// SessionRepository implements persistence.SessionRepository using SQLite
type SessionRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
	retry  *RetryHelper
	now    func() time.Time
}

// NewSessionRepository creates a new SQLite session repository
func NewSessionRepository(pool *ConnectionPool, now func() time.Time) *SessionRepository {
	return &SessionRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
		retry:  NewRetryHelper(DefaultRetryConfig()),
		now:    now,
	}
}

// SelectSessions returns the sessions matching where, ordered by start.
func (r *SessionRepository) SelectSessions(ctx context.Context, where expr.Expr) ([]persistence.Session, error) {
	clause, args, err := expr.SQL(where, persistence.SessionColumns)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, service_id, "start", "end", resource_ids, created_at
		FROM sessions
		WHERE ` + clause + `
		ORDER BY "start" ASC, id ASC
	`
	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var sessions []persistence.Session
	for rows.Next() {
		var (
			session     persistence.Session
			resourceIDs string
			createdAt   string
		)
		if err := rows.Scan(&session.ID, &session.ServiceID, &session.Start, &session.End, &resourceIDs, &createdAt); err != nil {
			return nil, r.mapper.MapError(err)
		}
		session.ResourceIDs = splitResources(resourceIDs)
		if session.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return sessions, nil
}

// InsertSessions drains sessions into the table inside one transaction. The
// context is checked between rows. A zero CreatedAt is stamped with now.
func (r *SessionRepository) InsertSessions(ctx context.Context, sessions iter.Seq[persistence.Session]) (int, error) {
	inserted := 0

	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO sessions (id, service_id, "start", "end", resource_ids, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return r.mapper.MapError(err)
		}
		defer stmt.Close()

		for session := range sessions {
			if err := ctx.Err(); err != nil {
				return err
			}
			if session.ID == "" || session.ServiceID == "" || session.End < session.Start {
				return fmt.Errorf("%w: session %q", persistence.ErrConstraintViolation, session.ID)
			}
			if _, err := stmt.ExecContext(ctx,
				session.ID,
				session.ServiceID,
				session.Start,
				session.End,
				strings.Join(session.ResourceIDs, resourceSeparator),
				stamp(session.CreatedAt, r.now),
			); err != nil {
				return r.mapper.MapError(err)
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// DeleteSessions removes the sessions matching where and returns how many
// were deleted.
func (r *SessionRepository) DeleteSessions(ctx context.Context, where expr.Expr) (int64, error) {
	clause, args, err := expr.SQL(where, persistence.SessionColumns)
	if err != nil {
		return 0, err
	}

	var deleted int64
	err = r.retry.WithRetry(ctx, func() error {
		result, err := r.helper.Exec(ctx, `DELETE FROM sessions WHERE `+clause, args...)
		if err != nil {
			return err
		}
		deleted, err = result.RowsAffected()
		return err
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

func splitResources(column string) []string {
	if column == "" {
		return nil
	}
	return strings.Split(column, resourceSeparator)
}
