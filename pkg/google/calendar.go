package google

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/calendar/v3"
)

// ServiceError wraps any failure returned by the Calendar API: auth, transport,
// quota or a rejected request. The underlying *googleapi.Error, when there is
// one, stays reachable through errors.As.
type ServiceError struct {
	Op  string
	Err error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("calendar %s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// CalendarClient is a Google Calendar API client bound to one calendar.
type CalendarClient struct {
	srv        *calendar.Service
	calendarID string
}

// NewCalendarClient creates a new Google Calendar client.
func NewCalendarClient(srv *calendar.Service, calendarID string) *CalendarClient {
	return &CalendarClient{srv: srv, calendarID: calendarID}
}

// CalendarID returns the ID of the calendar events are written to.
func (c *CalendarClient) CalendarID() string {
	return c.calendarID
}

// InsertEvent creates event on the calendar.
func (c *CalendarClient) InsertEvent(ctx context.Context, event *calendar.Event) (*calendar.Event, error) {
	created, err := c.srv.Events.Insert(c.calendarID, event).Context(ctx).Do()
	if err != nil {
		return nil, &ServiceError{Op: "insert", Err: err}
	}
	return created, nil
}

// ListEvents fetches every event intersecting [timeMin, timeMax), with
// recurring events expanded and ordered by start time.
func (c *CalendarClient) ListEvents(ctx context.Context, timeMin, timeMax time.Time) ([]*calendar.Event, error) {
	var items []*calendar.Event
	err := c.srv.Events.List(c.calendarID).
		TimeMin(timeMin.Format(time.RFC3339)).
		TimeMax(timeMax.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Pages(ctx, func(page *calendar.Events) error {
			items = append(items, page.Items...)
			return nil
		})
	if err != nil {
		return nil, &ServiceError{Op: "list", Err: err}
	}
	return items, nil
}
