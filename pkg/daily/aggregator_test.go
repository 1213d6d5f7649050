package daily

import (
	"context"
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/calendar/v3"
)

type fakeLister struct {
	events  []*calendar.Event
	err     error
	timeMin time.Time
	timeMax time.Time
}

func (f *fakeLister) ListEvents(_ context.Context, timeMin, timeMax time.Time) ([]*calendar.Event, error) {
	f.timeMin, f.timeMax = timeMin, timeMax
	return f.events, f.err
}

func event(summary, start, end string) *calendar.Event {
	return &calendar.Event{
		Summary: summary,
		Start:   &calendar.EventDateTime{DateTime: start},
		End:     &calendar.EventDateTime{DateTime: end},
	}
}

func denver(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Denver")
	require.NoError(t, err)
	return loc
}

func TestTodayQueriesLocalDay(t *testing.T) {
	loc := denver(t)
	now := func() time.Time { return time.Date(2024, 1, 1, 22, 30, 0, 0, loc) }
	lister := &fakeLister{}

	_, err := NewAggregator(lister, "Coding", loc, now).Today(context.Background())
	require.NoError(t, err)

	assert.True(t, lister.timeMin.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, loc)))
	assert.Equal(t, 24*time.Hour, lister.timeMax.Sub(lister.timeMin))
}

func TestNoEvents(t *testing.T) {
	total, err := NewAggregator(&fakeLister{}, "Coding", time.UTC, nil).Day(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, "0 hours, 0 minutes", total.String())
	assert.Zero(t, total.Events)
}

func TestSumsCodingEvents(t *testing.T) {
	lister := &fakeLister{events: []*calendar.Event{
		event("Coding", "2024-01-01T09:00:00-07:00", "2024-01-01T09:25:00-07:00"),
		event("Meeting", "2024-01-01T09:30:00-07:00", "2024-01-01T11:00:00-07:00"),
		event("Coding", "2024-01-01T13:00:00-07:00", "2024-01-01T13:40:00-07:00"),
	}}

	total, err := NewAggregator(lister, "Coding", denver(t), nil).Day(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, 65*time.Minute, total.Duration)
	assert.Equal(t, 2, total.Events)
	assert.Equal(t, 1, total.Hours())
	assert.Equal(t, 5, total.Minutes())
	assert.Equal(t, "1 hours, 5 minutes", total.String())
}

func TestTagMatchIsExact(t *testing.T) {
	lister := &fakeLister{events: []*calendar.Event{
		event("coding", "2024-01-01T09:00:00Z", "2024-01-01T10:00:00Z"),
		event("Coding session", "2024-01-01T09:00:00Z", "2024-01-01T10:00:00Z"),
		event(" Coding", "2024-01-01T09:00:00Z", "2024-01-01T10:00:00Z"),
		event("Coding", "2024-01-01T09:00:00Z", "2024-01-01T09:10:00Z"),
	}}

	total, err := NewAggregator(lister, "Coding", time.UTC, nil).Day(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, 10*time.Minute, total.Duration)
}

func TestNormalizesSecondsBeforeParsing(t *testing.T) {
	lister := &fakeLister{events: []*calendar.Event{
		event("Coding", "2024-01-01T10:05:5Z", "2024-01-01T10:35:5Z"),
		event("Coding", "2024-01-01T11:00Z", "2024-01-01T11:15Z"),
	}}

	total, err := NewAggregator(lister, "Coding", time.UTC, nil).Day(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, 45*time.Minute, total.Duration)
}

func TestSkipsUnusableEvents(t *testing.T) {
	allDay := &calendar.Event{
		Summary: "Coding",
		Start:   &calendar.EventDateTime{Date: "2024-01-01"},
		End:     &calendar.EventDateTime{Date: "2024-01-02"},
	}
	lister := &fakeLister{events: []*calendar.Event{
		allDay,
		event("Coding", "garbage", "2024-01-01T10:00:00Z"),
		nil,
		event("Coding", "2024-01-01T09:00:00Z", "2024-01-01T09:30:45Z"),
	}}

	total, err := NewAggregator(lister, "Coding", time.UTC, nil).Day(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, total.Events)
	assert.Equal(t, "0 hours, 30 minutes", total.String())
	assert.Equal(t, 45, total.Seconds())
}

func TestListErrorIsReturned(t *testing.T) {
	boom := errors.New("quota exceeded")
	_, err := NewAggregator(&fakeLister{err: boom}, "Coding", time.UTC, nil).Day(context.Background(), time.Now())
	assert.ErrorIs(t, err, boom)
}

func TestDayWindowUsesLocation(t *testing.T) {
	loc := denver(t)
	a := NewAggregator(&fakeLister{}, "Coding", loc, nil)

	// 03:00 UTC on Jan 2 is still Jan 1 in Denver.
	start, end := a.DayWindow(time.Date(2024, 1, 2, 3, 0, 0, 0, time.UTC))
	assert.True(t, start.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, loc)))
	assert.True(t, end.Equal(time.Date(2024, 1, 2, 0, 0, 0, 0, loc)))
}
