package persistence

import (
	"time"

	"github.com/samber/mo"

	"github.com/example/booking-sessions/internal/recurrence"
)

// Service is a bookable offering. Its schedule is the resource whose
// availability bounds every session of the service.
type Service struct {
	ID           string
	Name         string
	ScheduleID   string
	SessionTypes []SessionTypeConfig
	UpdatedAt    time.Time
}

// SessionTypeConfig selects a session type and its parameters.
type SessionTypeConfig struct {
	Type string                     `json:"type"`
	Data mo.Option[SessionTypeData] `json:"data"`
}

// SessionTypeData holds the parameters of a session type. An absent resource
// list is distinct from an empty one: absent entries produce no sessions,
// empty ones produce sessions that need no resource.
type SessionTypeData struct {
	Duration  int64               `json:"duration"`
	Resources mo.Option[[]string] `json:"resources"`
}

// Resource is anything with an availability: a room, a person, a schedule.
type Resource struct {
	ID           string
	Name         string
	Availability ResourceAvailability
	UpdatedAt    time.Time
}

// ResourceAvailability holds the rules a resource is available by.
type ResourceAvailability struct {
	Timezone string              `json:"timezone"`
	Rules    []recurrence.Config `json:"rules"`
}

// Session is a generated, bookable slot of a service.
type Session struct {
	ID          string
	ServiceID   string
	Start       int64
	End         int64
	ResourceIDs []string
	CreatedAt   time.Time
}
