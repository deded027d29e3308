package application

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/example/booking-sessions/internal/availability"
	"github.com/example/booking-sessions/internal/metrics"
	"github.com/example/booking-sessions/internal/period"
	"github.com/example/booking-sessions/internal/persistence"
	"github.com/example/booking-sessions/internal/persistence/expr"
	"github.com/example/booking-sessions/internal/sessiontype"
)

// DefaultHorizon is how far ahead sessions are generated when no horizon is configured.
var DefaultHorizon = period.Years(5)

// Skip kinds reported to logs and metrics.
const (
	SkipResourceNotFound = "resource_not_found"
	SkipNoResourceList   = "session_type_without_resources"
)

var sessionNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("urn:booking-sessions:session"))

// Options tunes a SessionGenerationService. Zero values select defaults.
type Options struct {
	Horizon        period.Span
	Workers        int
	Logger         zerolog.Logger
	Metrics        *metrics.Metrics
	Availabilities *availability.Factory
	SessionTypes   *sessiontype.Factory
}

// SessionGenerationService keeps the persisted sessions of a service in line
// with its configuration.
type SessionGenerationService struct {
	services       persistence.ServiceRepository
	resources      persistence.ResourceRepository
	sessions       persistence.SessionRepository
	availabilities *availability.Factory
	sessionTypes   *sessiontype.Factory
	generator      sessiontype.Generator
	now            func() time.Time
	horizon        period.Span
	workers        int
	logger         zerolog.Logger
	metrics        *metrics.Metrics
}

// NewSessionGenerationService wires dependencies for session regeneration.
func NewSessionGenerationService(services persistence.ServiceRepository, resources persistence.ResourceRepository, sessions persistence.SessionRepository, now func() time.Time, opts Options) *SessionGenerationService {
	if now == nil {
		now = time.Now
	}
	if opts.Horizon.IsZero() {
		opts.Horizon = DefaultHorizon
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Availabilities == nil {
		opts.Availabilities = availability.NewFactory()
	}
	if opts.SessionTypes == nil {
		opts.SessionTypes = sessiontype.NewFactory()
	}
	return &SessionGenerationService{
		services:       services,
		resources:      resources,
		sessions:       sessions,
		availabilities: opts.Availabilities,
		sessionTypes:   opts.SessionTypes,
		now:            now,
		horizon:        opts.Horizon,
		workers:        opts.Workers,
		logger:         opts.Logger,
		metrics:        opts.Metrics,
	}
}

// plan is the resolved configuration of one service.
type plan struct {
	availability availability.Availability
	matches      []sessiontype.Match
}

// Regenerate replaces the persisted sessions of the service with the ones its
// current configuration yields over the generation horizon.
func (s *SessionGenerationService) Regenerate(ctx context.Context, serviceID string) (err error) {
	if s == nil {
		return fmt.Errorf("SessionGenerationService is nil")
	}

	started := time.Now()
	logger := serviceLogger(ctx, s.logger, "regenerate", serviceID)
	written := 0
	defer func() {
		s.metrics.ObserveRegeneration(resultLabel(err), time.Since(started), written)
		if err != nil {
			logger.Error().Err(err).Str("kind", ErrorKind(err)).Msg("session regeneration failed")
			return
		}
		logger.Info().Int("sessions", written).Dur("elapsed", time.Since(started)).Msg("sessions regenerated")
	}()

	p, err := s.resolve(ctx, serviceID, logger)
	if err != nil {
		return err
	}

	now := s.now().UTC()
	horizon := s.horizon.From(now)
	var interrupted error
	stream := s.stamp(ctx, serviceID, p, horizon, now, &interrupted)

	deleted, err := s.sessions.DeleteSessions(ctx, expr.Eq(expr.Var("service_id"), expr.Lit(serviceID)))
	if err != nil {
		return fmt.Errorf("delete sessions of service %s: %w", serviceID, err)
	}
	logger.Debug().Int64("deleted", deleted).Msg("stale sessions removed")

	written, err = s.sessions.InsertSessions(ctx, stream)
	if err != nil {
		return fmt.Errorf("insert sessions of service %s: %w", serviceID, err)
	}
	if interrupted != nil {
		return fmt.Errorf("generate sessions of service %s: %w", serviceID, interrupted)
	}
	return nil
}

// RegenerateAll regenerates every service on a bounded worker pool. Every
// service is attempted; failures are joined. Cancelling ctx stops scheduling
// further services.
func (s *SessionGenerationService) RegenerateAll(ctx context.Context) error {
	if s == nil {
		return fmt.Errorf("SessionGenerationService is nil")
	}

	logger := serviceLogger(ctx, s.logger, "regenerate_all", "")
	services, err := s.services.ListServices(ctx)
	if err != nil {
		return fmt.Errorf("list services: %w", err)
	}

	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)
	g.SetLimit(s.workers)
	for _, service := range services {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := s.Regenerate(ctx, service.ID); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		errs = append(errs, err)
	}
	logger.Info().Int("services", len(services)).Int("failed", len(errs)).Msg("regeneration pass finished")
	return errors.Join(errs...)
}

// resolve loads the service and turns its configuration into an availability
// and the session types to match against it.
func (s *SessionGenerationService) resolve(ctx context.Context, serviceID string, logger zerolog.Logger) (plan, error) {
	service, err := s.services.GetService(ctx, serviceID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return plan{}, fmt.Errorf("service %s: %w", serviceID, ErrNotFound)
		}
		return plan{}, fmt.Errorf("load service %s: %w", serviceID, err)
	}

	schedule, err := s.schedule(ctx, service)
	if err != nil {
		return plan{}, err
	}

	cache := make(map[string]availability.Availability)
	var collected []availability.Availability
	var matches []sessiontype.Match

	for i, cfg := range service.SessionTypes {
		field := fmt.Sprintf("session_types[%d]", i)
		st, err := s.sessionTypes.Make(cfg)
		if err != nil {
			return plan{}, &ConfigurationError{ServiceID: serviceID, Field: field, Err: err}
		}

		data, _ := cfg.Data.Get()
		ids, ok := data.Resources.Get()
		if !ok {
			s.skip(logger, SkipNoResourceList, "session_type", field)
			continue
		}
		if len(ids) == 0 {
			matches = append(matches, sessiontype.Match{Type: st, Index: i})
			continue
		}

		for _, id := range availability.Resources(ids...) {
			a, seen := cache[id]
			if !seen {
				resource, err := s.resources.GetResource(ctx, id)
				switch {
				case errors.Is(err, persistence.ErrNotFound):
					s.skip(logger, SkipResourceNotFound, "resource_id", id)
				case err != nil:
					return plan{}, fmt.Errorf("load resource %s: %w", id, err)
				default:
					a, err = s.availabilities.ForResource(resource)
					if err != nil {
						return plan{}, &ConfigurationError{ServiceID: serviceID, Field: field + ".resources", Err: err}
					}
					collected = append(collected, a)
				}
				cache[id] = a
			}
			if a == nil {
				continue
			}
			matches = append(matches, sessiontype.Match{Type: st, ResourceIDs: []string{id}, Index: i})
		}
	}

	effective := schedule
	if len(collected) > 0 {
		effective = availability.NewIntersection(schedule, availability.NewComposite(collected...))
	}
	return plan{availability: effective, matches: matches}, nil
}

func (s *SessionGenerationService) schedule(ctx context.Context, service persistence.Service) (availability.Availability, error) {
	if strings.TrimSpace(service.ScheduleID) == "" {
		return nil, &ConfigurationError{ServiceID: service.ID, Field: "schedule_id", Err: errors.New("service has no schedule")}
	}
	resource, err := s.resources.GetResource(ctx, service.ScheduleID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return nil, &ConfigurationError{ServiceID: service.ID, Field: "schedule_id", Err: err}
		}
		return nil, fmt.Errorf("load schedule %s: %w", service.ScheduleID, err)
	}
	a, err := s.availabilities.ForResource(resource)
	if err != nil {
		return nil, &ConfigurationError{ServiceID: service.ID, Field: "schedule", Err: err}
	}
	return a, nil
}

// stamp lazily expands the plan into the service sessions starting inside
// the horizon. Availability is queried without a lower bound so that every
// period keeps its own start and the session grid stays anchored to it;
// sessions starting before the horizon are dropped. When ctx ends the stream
// stops at the next period boundary and the context error is stored in
// interrupted.
func (s *SessionGenerationService) stamp(ctx context.Context, serviceID string, p plan, horizon period.Period, createdAt time.Time, interrupted *error) iter.Seq[persistence.Session] {
	return func(yield func(persistence.Session) bool) {
		unbounded := period.Period{Start: math.MinInt64, End: horizon.End}
		for ap := range p.availability.AvailablePeriods(unbounded) {
			if err := ctx.Err(); err != nil {
				*interrupted = err
				return
			}
			if ap.End <= horizon.Start {
				continue
			}
			for generated := range s.generator.Generate(ap, Matching(ap, p.matches)) {
				if generated.Start < horizon.Start {
					continue
				}
				session := persistence.Session{
					ID:          SessionID(serviceID, generated),
					ServiceID:   serviceID,
					Start:       generated.Start,
					End:         generated.End,
					ResourceIDs: generated.ResourceIDs,
					CreatedAt:   createdAt,
				}
				if !yield(session) {
					return
				}
			}
		}
	}
}

func (s *SessionGenerationService) skip(logger zerolog.Logger, kind, key, value string) {
	s.metrics.Skipped(kind)
	logger.Warn().Str("kind", kind).Str(key, value).Msg("configuration item skipped")
}

// Matching returns the matches whose resources are all available in p, in
// their configured order.
func Matching(p availability.Period, matches []sessiontype.Match) []sessiontype.Match {
	matched := make([]sessiontype.Match, 0, len(matches))
	for _, m := range matches {
		if p.Covers(m.ResourceIDs) {
			matched = append(matched, m)
		}
	}
	return matched
}

// SessionID derives a stable identifier so that an unchanged configuration
// persists identical rows.
func SessionID(serviceID string, s sessiontype.Session) string {
	var b strings.Builder
	b.WriteString(serviceID)
	for _, part := range []int64{int64(s.TypeIndex), s.Start, s.End} {
		b.WriteByte('|')
		b.WriteString(strconv.FormatInt(part, 10))
	}
	b.WriteByte('|')
	b.WriteString(strings.Join(s.ResourceIDs, ","))
	return uuid.NewSHA1(sessionNamespace, []byte(b.String())).String()
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return metrics.ResultSuccess
	case errors.Is(err, ErrNotFound):
		return metrics.ResultNotFound
	default:
		return metrics.ResultFailure
	}
}
