package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/mo"

	"github.com/example/booking-sessions/internal/persistence"
	"github.com/example/booking-sessions/internal/persistence/expr"
	"github.com/example/booking-sessions/internal/recurrence"
	"github.com/example/booking-sessions/internal/sessiontype"
)

// SessionWindow narrows a session listing to sessions overlapping [From, To).
type SessionWindow struct {
	From mo.Option[int64]
	To   mo.Option[int64]
}

// CatalogService validates and stores service and resource configuration and
// lists generated sessions.
type CatalogService struct {
	services     persistence.ServiceRepository
	resources    persistence.ResourceRepository
	sessions     persistence.SessionRepository
	sessionTypes *sessiontype.Factory
	now          func() time.Time
	logger       zerolog.Logger
}

// NewCatalogService wires dependencies for configuration operations.
func NewCatalogService(services persistence.ServiceRepository, resources persistence.ResourceRepository, sessions persistence.SessionRepository, sessionTypes *sessiontype.Factory, now func() time.Time, logger zerolog.Logger) *CatalogService {
	if sessionTypes == nil {
		sessionTypes = sessiontype.NewFactory()
	}
	if now == nil {
		now = time.Now
	}
	return &CatalogService{
		services:     services,
		resources:    resources,
		sessions:     sessions,
		sessionTypes: sessionTypes,
		now:          now,
		logger:       logger,
	}
}

// GetService returns the stored service.
func (c *CatalogService) GetService(ctx context.Context, id string) (persistence.Service, error) {
	service, err := c.services.GetService(ctx, id)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return persistence.Service{}, fmt.Errorf("service %s: %w", id, ErrNotFound)
		}
		return persistence.Service{}, fmt.Errorf("load service %s: %w", id, err)
	}
	return service, nil
}

// SaveService validates and stores a service configuration.
func (c *CatalogService) SaveService(ctx context.Context, service persistence.Service) (persistence.Service, error) {
	logger := serviceLogger(ctx, c.logger, "save_service", service.ID)

	service.ID = strings.TrimSpace(service.ID)
	service.Name = strings.TrimSpace(service.Name)
	service.ScheduleID = strings.TrimSpace(service.ScheduleID)

	vErr := &ValidationError{}
	if service.ID == "" {
		vErr.add("id", "must not be empty")
	}
	if service.ScheduleID == "" {
		vErr.add("schedule_id", "must not be empty")
	}
	for i, cfg := range service.SessionTypes {
		if _, err := c.sessionTypes.Make(cfg); err != nil {
			vErr.add(fmt.Sprintf("session_types[%d]", i), err.Error())
		}
	}
	if vErr.HasErrors() {
		return persistence.Service{}, vErr
	}

	service.UpdatedAt = c.now().UTC()
	if err := c.services.SaveService(ctx, service); err != nil {
		logger.Error().Err(err).Msg("failed to store service")
		return persistence.Service{}, fmt.Errorf("store service %s: %w", service.ID, err)
	}
	logger.Info().Int("session_types", len(service.SessionTypes)).Msg("service stored")
	return service, nil
}

// SaveResource validates every rule and stores the resource.
func (c *CatalogService) SaveResource(ctx context.Context, resource persistence.Resource) (persistence.Resource, error) {
	logger := serviceLogger(ctx, c.logger, "save_resource", "").With().Str("resource_id", resource.ID).Logger()

	resource.ID = strings.TrimSpace(resource.ID)
	resource.Name = strings.TrimSpace(resource.Name)
	if strings.TrimSpace(resource.Availability.Timezone) == "" {
		resource.Availability.Timezone = "UTC"
	}

	vErr := &ValidationError{}
	if resource.ID == "" {
		vErr.add("id", "must not be empty")
	}
	for i, cfg := range resource.Availability.Rules {
		if _, err := recurrence.Build(cfg); err != nil {
			vErr.add(fmt.Sprintf("availability.rules[%d]", i), err.Error())
		}
	}
	if vErr.HasErrors() {
		return persistence.Resource{}, vErr
	}

	resource.UpdatedAt = c.now().UTC()
	if err := c.resources.SaveResource(ctx, resource); err != nil {
		logger.Error().Err(err).Msg("failed to store resource")
		return persistence.Resource{}, fmt.Errorf("store resource %s: %w", resource.ID, err)
	}
	logger.Info().Int("rules", len(resource.Availability.Rules)).Msg("resource stored")
	return resource, nil
}

// ListSessions returns the sessions of an existing service overlapping the
// window, ordered by start.
func (c *CatalogService) ListSessions(ctx context.Context, serviceID string, window SessionWindow) ([]persistence.Session, error) {
	if _, err := c.GetService(ctx, serviceID); err != nil {
		return nil, err
	}

	from, hasFrom := window.From.Get()
	to, hasTo := window.To.Get()
	if hasFrom && hasTo && to < from {
		vErr := &ValidationError{}
		vErr.add("to", "must not precede from")
		return nil, vErr
	}

	terms := []expr.Expr{expr.Eq(expr.Var("service_id"), expr.Lit(serviceID))}
	if hasFrom {
		terms = append(terms, expr.Compare(expr.OpGt, expr.Var("end"), expr.Lit(from)))
	}
	if hasTo {
		terms = append(terms, expr.Compare(expr.OpLt, expr.Var("start"), expr.Lit(to)))
	}

	sessions, err := c.sessions.SelectSessions(ctx, expr.And(terms...))
	if err != nil {
		return nil, fmt.Errorf("list sessions of service %s: %w", serviceID, err)
	}
	return sessions, nil
}
