package util

import (
	"fmt"
	"regexp"
	"time"

	"github.com/harrisonrobin/codeclock/pkg/config"
	"github.com/harrisonrobin/codeclock/pkg/session"
	"google.golang.org/api/calendar/v3"
)

// SessionProperty is the private extended property holding the session ID.
const SessionProperty = "codeclock_session"

// localLayout is how session instants are written: wall clock time with the
// zone carried separately in EventDateTime.TimeZone.
const localLayout = "2006-01-02T15:04:05"

// date, hour:minute, optional seconds of one or two digits, optional fraction, optional zone.
var timestampRe = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2}T\d{2}:\d{2})(?::(\d{1,2}))?(\.\d+)?(Z|[+-]\d{2}:\d{2})?$`)

// NormalizeTimestamp repairs the seconds field of an event date-time so it is
// always two digits, appending ":00" when it is missing. Hours and minutes are
// left untouched; anything that does not look like a date-time is returned as is.
func NormalizeTimestamp(s string) string {
	m := timestampRe.FindStringSubmatch(s)
	if m == nil {
		return s
	}
	seconds := m[2]
	switch len(seconds) {
	case 0:
		seconds = "00"
	case 1:
		seconds = "0" + seconds
	}
	return m[1] + ":" + seconds + m[3] + m[4]
}

// ParseEventTime parses a calendar date-time after normalizing it. Values
// without a zone offset are read in loc.
func ParseEventTime(s string, loc *time.Location) (time.Time, error) {
	n := NormalizeTimestamp(s)
	if t, err := time.Parse(time.RFC3339, n); err == nil {
		return t, nil
	}
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(localLayout, n, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("unparsable event time %q: %w", s, err)
	}
	return t, nil
}

// EventOptions controls how a session is written to the calendar. A nil
// Location means config.DefaultTimeZone.
type EventOptions struct {
	Tag      string
	ColorID  string
	Location *time.Location
}

// ConvertSessionToCalendarEvent builds the event for a finished session.
// Reminders are switched off and the event carries no description or attendees.
func ConvertSessionToCalendarEvent(s session.Session, opts EventOptions) (*calendar.Event, error) {
	if s.Start.IsZero() || s.End.IsZero() {
		return nil, fmt.Errorf("could not convert unfinished session %s", s.ID)
	}
	loc := opts.Location
	if loc == nil {
		loc = config.DefaultLocation()
	}

	event := &calendar.Event{
		Summary: opts.Tag,
		ColorId: opts.ColorID,
		Start: &calendar.EventDateTime{
			DateTime: s.Start.In(loc).Format(localLayout),
			TimeZone: loc.String(),
		},
		End: &calendar.EventDateTime{
			DateTime: s.End.In(loc).Format(localLayout),
			TimeZone: loc.String(),
		},
		Reminders: &calendar.EventReminders{
			UseDefault:      false,
			Overrides:       []*calendar.EventReminder{},
			ForceSendFields: []string{"UseDefault", "Overrides"},
		},
	}
	if s.ID != "" {
		event.ExtendedProperties = &calendar.EventExtendedProperties{
			Private: map[string]string{SessionProperty: s.ID},
		}
	}
	return event, nil
}
