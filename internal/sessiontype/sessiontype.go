// Package sessiontype turns available periods into bookable sessions.
package sessiontype

import (
	"errors"
	"fmt"
	"iter"
	"maps"
	"slices"
	"strings"

	"github.com/example/booking-sessions/internal/period"
	"github.com/example/booking-sessions/internal/persistence"
)

// FixedDurationType is the name of the built-in fixed duration session type.
const FixedDurationType = "fixed_duration"

// ErrCouldNotMake is matched by every session type construction failure.
var ErrCouldNotMake = errors.New("sessiontype: could not make session type")

// SessionType splits an available period into session periods.
type SessionType interface {
	Sessions(p period.Period) iter.Seq[period.Period]
}

// FixedDuration fills a period with back to back sessions of one length.
// A trailing remainder shorter than Duration is left unused.
type FixedDuration struct {
	Duration int64
}

// Sessions implements SessionType.
func (f FixedDuration) Sessions(p period.Period) iter.Seq[period.Period] {
	return func(yield func(period.Period) bool) {
		if f.Duration <= 0 {
			return
		}
		for start := p.Start; start+f.Duration <= p.End; start += f.Duration {
			if !yield(period.Period{Start: start, End: start + f.Duration}) {
				return
			}
		}
	}
}

// Maker builds a session type from its stored parameters.
type Maker func(data persistence.SessionTypeData) (SessionType, error)

// Factory resolves session type configurations by type name.
type Factory struct {
	makers map[string]Maker
}

// NewFactory returns a factory with the built-in types registered.
func NewFactory() *Factory {
	f := &Factory{makers: make(map[string]Maker)}
	f.Register(FixedDurationType, makeFixedDuration)
	return f
}

// Register adds or replaces the maker for a type name.
func (f *Factory) Register(name string, maker Maker) {
	f.makers[strings.ToLower(name)] = maker
}

// Types returns the registered type names, sorted.
func (f *Factory) Types() []string {
	return slices.Sorted(maps.Keys(f.makers))
}

// Make builds the session type described by cfg.
func (f *Factory) Make(cfg persistence.SessionTypeConfig) (SessionType, error) {
	if strings.TrimSpace(cfg.Type) == "" {
		return nil, fmt.Errorf("%w: a type must be specified", ErrCouldNotMake)
	}
	maker, ok := f.makers[strings.ToLower(cfg.Type)]
	if !ok {
		return nil, fmt.Errorf("%w: unknown type %q", ErrCouldNotMake, cfg.Type)
	}
	data, ok := cfg.Data.Get()
	if !ok {
		return nil, fmt.Errorf("%w: type %q has no data", ErrCouldNotMake, cfg.Type)
	}
	return maker(data)
}

func makeFixedDuration(data persistence.SessionTypeData) (SessionType, error) {
	if data.Duration <= 0 {
		return nil, fmt.Errorf("%w: a positive duration must be specified", ErrCouldNotMake)
	}
	return FixedDuration{Duration: data.Duration}, nil
}
