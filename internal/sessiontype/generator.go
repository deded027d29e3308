package sessiontype

import (
	"iter"

	"github.com/example/booking-sessions/internal/availability"
	"github.com/example/booking-sessions/internal/period"
)

// Match is a session type paired with the resources its sessions occupy.
// Index is the position of the session type in the service configuration.
type Match struct {
	Type        SessionType
	ResourceIDs []string
	Index       int
}

// Session is a generated session before it is bound to a service.
type Session struct {
	period.Period
	ResourceIDs []string
	TypeIndex   int
}

// Generator expands matched session types over available periods.
type Generator struct{}

// Generate yields, for each match in order, the sessions its type fits into
// p. Sessions carry the match's resources.
func (Generator) Generate(p availability.Period, matches []Match) iter.Seq[Session] {
	return func(yield func(Session) bool) {
		for _, m := range matches {
			for s := range m.Type.Sessions(p.Period) {
				if !yield(Session{Period: s, ResourceIDs: m.ResourceIDs, TypeIndex: m.Index}) {
					return
				}
			}
		}
	}
}
