package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/teemow/calmcp/internal/calendar"
	"github.com/teemow/calmcp/internal/calerr"
	"github.com/teemow/calmcp/internal/resolver"
)

// fakeCalendar implements calendar.Directory and calendar.EventStore in
// memory and records every call in order.
type fakeCalendar struct {
	mu sync.Mutex

	calendars []resolver.CalendarOption
	events    map[string][]calendar.Event

	directoryErr error
	listErr      error
	failDelete   map[string]error
	nextID       int

	calls    []string
	filters  []calendar.ListFilter
	inserted []calendar.EventSpec
}

var (
	_ calendar.Directory  = (*fakeCalendar)(nil)
	_ calendar.EventStore = (*fakeCalendar)(nil)
)

func newFakeCalendar(calendars ...resolver.CalendarOption) *fakeCalendar {
	return &fakeCalendar{
		calendars:  calendars,
		events:     make(map[string][]calendar.Event),
		failDelete: make(map[string]error),
	}
}

func (f *fakeCalendar) add(calendarID string, events ...calendar.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events[calendarID] = append(f.events[calendarID], events...)
}

func (f *fakeCalendar) record(call string) {
	f.calls = append(f.calls, call)
}

func (f *fakeCalendar) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeCalendar) deletes() []string {
	var out []string
	for _, c := range f.Calls() {
		if id, ok := strings.CutPrefix(c, "delete "); ok {
			out = append(out, id)
		}
	}
	return out
}

func (f *fakeCalendar) ListCalendars(ctx context.Context) ([]resolver.CalendarOption, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("calendars")
	if f.directoryErr != nil {
		return nil, f.directoryErr
	}
	return append([]resolver.CalendarOption(nil), f.calendars...), nil
}

func (f *fakeCalendar) ListEvents(ctx context.Context, calendarID string, filter calendar.ListFilter) ([]calendar.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("list " + calendarID)
	f.filters = append(f.filters, filter)
	if f.listErr != nil {
		return nil, f.listErr
	}

	q := strings.ToLower(filter.Query.OrEmpty())
	var out []calendar.Event
	for _, ev := range f.events[calendarID] {
		if q == "" || strings.Contains(strings.ToLower(ev.Summary), q) {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (f *fakeCalendar) GetEvent(ctx context.Context, calendarID, eventID string) (calendar.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("get " + eventID)
	for _, ev := range f.events[calendarID] {
		if ev.ID == eventID {
			return ev, nil
		}
	}
	return calendar.Event{}, calerr.NotFoundf("event %s in calendar %s", eventID, calendarID)
}

func (f *fakeCalendar) InsertEvent(ctx context.Context, calendarID string, spec calendar.EventSpec) (calendar.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("insert " + calendarID)
	f.nextID++
	ev := calendar.Event{ID: fmt.Sprintf("new%d", f.nextID), Summary: spec.Summary}
	f.inserted = append(f.inserted, spec)
	f.events[calendarID] = append(f.events[calendarID], ev)
	return ev, nil
}

func (f *fakeCalendar) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("delete " + eventID)
	if err, ok := f.failDelete[eventID]; ok {
		return err
	}
	stored := f.events[calendarID]
	for i, ev := range stored {
		if ev.ID == eventID {
			f.events[calendarID] = append(stored[:i:i], stored[i+1:]...)
			break
		}
	}
	return nil
}
