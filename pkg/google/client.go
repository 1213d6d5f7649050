package google

import (
	"context"
	"fmt"
	"net/http"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// PrimaryCalendar is the alias the API accepts for the user's own calendar.
const PrimaryCalendar = "primary"

// NewClient creates a Google Calendar client for the named calendar using an
// already authenticated HTTP client. "primary" is used as is; any other name is
// looked up by summary in the user's calendar list.
func NewClient(ctx context.Context, httpClient *http.Client, calendarName string, opts ...option.ClientOption) (*CalendarClient, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	srv, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve Calendar client: %w", err)
	}

	calendarID, err := resolveCalendarID(ctx, srv, calendarName)
	if err != nil {
		return nil, err
	}
	return NewCalendarClient(srv, calendarID), nil
}

func resolveCalendarID(ctx context.Context, srv *calendar.Service, calendarName string) (string, error) {
	if calendarName == "" || calendarName == PrimaryCalendar {
		return PrimaryCalendar, nil
	}

	var calendarID string
	err := srv.CalendarList.List().Pages(ctx, func(page *calendar.CalendarList) error {
		for _, item := range page.Items {
			if calendarID == "" && (item.Summary == calendarName || item.Id == calendarName) {
				calendarID = item.Id
			}
		}
		return nil
	})
	if err != nil {
		return "", &ServiceError{Op: "calendar list", Err: err}
	}

	if calendarID == "" {
		return "", fmt.Errorf("calendar '%s' not found", calendarName)
	}
	return calendarID, nil
}
