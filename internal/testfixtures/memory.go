package testfixtures

import (
	"cmp"
	"context"
	"iter"
	"slices"
	"sync"

	"github.com/example/booking-sessions/internal/persistence"
	"github.com/example/booking-sessions/internal/persistence/expr"
)

// MemoryStore bundles in-memory repositories for application tests.
type MemoryStore struct {
	Services  *MemoryServices
	Resources *MemoryResources
	Sessions  *MemorySessions
}

// NewMemoryStore returns empty in-memory repositories.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		Services:  &MemoryServices{items: make(map[string]persistence.Service)},
		Resources: &MemoryResources{items: make(map[string]persistence.Resource)},
		Sessions:  &MemorySessions{},
	}
}

// MemoryServices implements persistence.ServiceRepository.
type MemoryServices struct {
	mu    sync.Mutex
	items map[string]persistence.Service
}

// GetService implements persistence.ServiceRepository.
func (m *MemoryServices) GetService(_ context.Context, id string) (persistence.Service, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	service, ok := m.items[id]
	if !ok {
		return persistence.Service{}, persistence.ErrNotFound
	}
	return service, nil
}

// ListServices implements persistence.ServiceRepository.
func (m *MemoryServices) ListServices(_ context.Context) ([]persistence.Service, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	services := make([]persistence.Service, 0, len(m.items))
	for _, service := range m.items {
		services = append(services, service)
	}
	slices.SortFunc(services, func(a, b persistence.Service) int { return cmp.Compare(a.ID, b.ID) })
	return services, nil
}

// SaveService implements persistence.ServiceRepository.
func (m *MemoryServices) SaveService(_ context.Context, service persistence.Service) error {
	if service.ID == "" || service.ScheduleID == "" {
		return persistence.ErrConstraintViolation
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[service.ID] = service
	return nil
}

// MemoryResources implements persistence.ResourceRepository.
type MemoryResources struct {
	mu      sync.Mutex
	items   map[string]persistence.Resource
	lookups map[string]int
}

// GetResource implements persistence.ResourceRepository.
func (m *MemoryResources) GetResource(_ context.Context, id string) (persistence.Resource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lookups == nil {
		m.lookups = make(map[string]int)
	}
	m.lookups[id]++
	resource, ok := m.items[id]
	if !ok {
		return persistence.Resource{}, persistence.ErrNotFound
	}
	return resource, nil
}

// SaveResource implements persistence.ResourceRepository.
func (m *MemoryResources) SaveResource(_ context.Context, resource persistence.Resource) error {
	if resource.ID == "" {
		return persistence.ErrConstraintViolation
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[resource.ID] = resource
	return nil
}

// Lookups reports how often GetResource was called for id.
func (m *MemoryResources) Lookups(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lookups[id]
}

// MemorySessions implements persistence.SessionRepository. Calls records
// "delete" and "insert" in the order they happened.
type MemorySessions struct {
	mu    sync.Mutex
	rows  []persistence.Session
	calls []string
}

// SelectSessions implements persistence.SessionRepository.
func (m *MemorySessions) SelectSessions(_ context.Context, where expr.Expr) ([]persistence.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var selected []persistence.Session
	for _, row := range m.rows {
		ok, err := expr.Eval(where, sessionRecord(row))
		if err != nil {
			return nil, err
		}
		if ok {
			selected = append(selected, row)
		}
	}
	slices.SortFunc(selected, func(a, b persistence.Session) int {
		return cmp.Or(cmp.Compare(a.Start, b.Start), cmp.Compare(a.ID, b.ID))
	})
	return selected, nil
}

// InsertSessions implements persistence.SessionRepository. Nothing is stored
// when a row is rejected.
func (m *MemorySessions) InsertSessions(ctx context.Context, sessions iter.Seq[persistence.Session]) (int, error) {
	var batch []persistence.Session
	for session := range sessions {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if session.ID == "" || session.ServiceID == "" || session.End < session.Start {
			return 0, persistence.ErrConstraintViolation
		}
		batch = append(batch, session)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, session := range batch {
		if slices.ContainsFunc(m.rows, func(row persistence.Session) bool { return row.ID == session.ID }) {
			return 0, persistence.ErrDuplicate
		}
	}
	m.rows = append(m.rows, batch...)
	m.calls = append(m.calls, "insert")
	return len(batch), nil
}

// DeleteSessions implements persistence.SessionRepository.
func (m *MemorySessions) DeleteSessions(_ context.Context, where expr.Expr) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.rows[:0:0]
	var deleted int64
	for _, row := range m.rows {
		ok, err := expr.Eval(where, sessionRecord(row))
		if err != nil {
			return 0, err
		}
		if ok {
			deleted++
			continue
		}
		kept = append(kept, row)
	}
	m.rows = kept
	m.calls = append(m.calls, "delete")
	return deleted, nil
}

// All returns every stored session.
func (m *MemorySessions) All() []persistence.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.rows)
}

// Calls returns the mutating calls in order.
func (m *MemorySessions) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.calls)
}

func sessionRecord(s persistence.Session) expr.Record {
	return func(column string) (any, bool) {
		switch column {
		case "id":
			return s.ID, true
		case "service_id":
			return s.ServiceID, true
		case "start":
			return s.Start, true
		case "end":
			return s.End, true
		default:
			return nil, false
		}
	}
}
