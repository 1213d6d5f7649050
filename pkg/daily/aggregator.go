package daily

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/harrisonrobin/codeclock/pkg/util"
	"google.golang.org/api/calendar/v3"
)

// EventLister returns the events intersecting [timeMin, timeMax), ordered by start.
type EventLister interface {
	ListEvents(ctx context.Context, timeMin, timeMax time.Time) ([]*calendar.Event, error)
}

// Total is the tracked time for one day.
type Total struct {
	Duration time.Duration
	Events   int
}

func (t Total) Hours() int { return int(t.Duration / time.Hour) }

func (t Total) Minutes() int { return int(t.Duration % time.Hour / time.Minute) }

// Seconds is kept for completeness; String does not show it.
func (t Total) Seconds() int { return int(t.Duration % time.Minute / time.Second) }

func (t Total) String() string {
	return fmt.Sprintf("%d hours, %d minutes", t.Hours(), t.Minutes())
}

// Aggregator sums the coding sessions recorded on a calendar day.
type Aggregator struct {
	lister   EventLister
	tag      string
	location *time.Location
	now      func() time.Time
}

// NewAggregator returns an aggregator counting events titled tag. Days are cut
// at midnight in loc (time.Local when nil); now defaults to time.Now.
func NewAggregator(lister EventLister, tag string, loc *time.Location, now func() time.Time) *Aggregator {
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	return &Aggregator{lister: lister, tag: tag, location: loc, now: now}
}

// DayWindow returns [midnight, midnight+24h) of the day containing t.
func (a *Aggregator) DayWindow(t time.Time) (time.Time, time.Time) {
	t = t.In(a.location)
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, a.location)
	return start, start.Add(24 * time.Hour)
}

// Today totals the current day.
func (a *Aggregator) Today(ctx context.Context) (Total, error) {
	return a.Day(ctx, a.now())
}

// Day totals the day containing day.
func (a *Aggregator) Day(ctx context.Context, day time.Time) (Total, error) {
	timeMin, timeMax := a.DayWindow(day)
	events, err := a.lister.ListEvents(ctx, timeMin, timeMax)
	if err != nil {
		return Total{}, fmt.Errorf("could not list events for %s: %w", timeMin.Format("2006-01-02"), err)
	}
	return a.sum(events), nil
}

func (a *Aggregator) sum(events []*calendar.Event) Total {
	var total Total
	for _, e := range events {
		if e == nil || e.Summary != a.tag {
			continue
		}
		if e.Start == nil || e.End == nil || e.Start.DateTime == "" || e.End.DateTime == "" {
			log.Printf("Skipping all-day or undated event %s", e.Id)
			continue
		}

		start, err := util.ParseEventTime(e.Start.DateTime, a.location)
		if err != nil {
			log.Printf("Skipping event %s: %v", e.Id, err)
			continue
		}
		end, err := util.ParseEventTime(e.End.DateTime, a.location)
		if err != nil {
			log.Printf("Skipping event %s: %v", e.Id, err)
			continue
		}

		total.Duration += end.Sub(start)
		total.Events++
	}
	return total
}
