package http

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/emersion/go-ical"

	"github.com/example/booking-sessions/internal/persistence"
)

const calendarProductID = "-//booking-sessions//sessiongen//EN"

// encodeCalendar renders sessions as VEVENTs of one VCALENDAR.
func encodeCalendar(service persistence.Service, sessions []persistence.Session) ([]byte, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropProductID, calendarProductID)
	cal.Props.SetText(ical.PropVersion, "2.0")
	if service.Name != "" {
		cal.Props.SetText(ical.PropName, service.Name)
	}

	summary := service.Name
	if summary == "" {
		summary = service.ID
	}

	for _, s := range sessions {
		event := ical.NewComponent(ical.CompEvent)
		event.Props.SetText(ical.PropUID, s.ID)
		event.Props.SetText(ical.PropSummary, summary)
		event.Props.SetDateTime(ical.PropDateTimeStart, time.Unix(s.Start, 0).UTC())
		event.Props.SetDateTime(ical.PropDateTimeEnd, time.Unix(s.End, 0).UTC())
		stamp := s.CreatedAt
		if stamp.IsZero() {
			stamp = time.Unix(s.Start, 0)
		}
		event.Props.SetDateTime(ical.PropDateTimeStamp, stamp.UTC())
		if len(s.ResourceIDs) > 0 {
			event.Props.SetText(ical.PropLocation, strings.Join(s.ResourceIDs, " "))
		}
		cal.Children = append(cal.Children, event)
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("encode calendar: %w", err)
	}
	return buf.Bytes(), nil
}
