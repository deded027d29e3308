package persistence

import (
	"context"
	"iter"

	"github.com/example/booking-sessions/internal/persistence/expr"
)

// ServiceRepository stores services and their session type configuration.
type ServiceRepository interface {
	GetService(ctx context.Context, id string) (Service, error)
	ListServices(ctx context.Context) ([]Service, error)
	SaveService(ctx context.Context, service Service) error
}

// ResourceRepository stores resources and their availability rules.
type ResourceRepository interface {
	GetResource(ctx context.Context, id string) (Resource, error)
	SaveResource(ctx context.Context, resource Resource) error
}

// SessionRepository stores generated sessions. Filters are expressions over
// the session columns: id, service_id, start, end.
type SessionRepository interface {
	SelectSessions(ctx context.Context, where expr.Expr) ([]Session, error)
	// InsertSessions drains sessions into storage and returns how many were
	// written.
	InsertSessions(ctx context.Context, sessions iter.Seq[Session]) (int, error)
	DeleteSessions(ctx context.Context, where expr.Expr) (int64, error)
}

// SessionColumns lists the columns session filters may reference.
var SessionColumns = []string{"id", "service_id", "start", "end"}
