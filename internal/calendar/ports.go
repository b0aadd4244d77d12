package calendar

import (
	"context"

	"github.com/teemow/calmcp/internal/resolver"
)

// Directory lists the calendars visible to the authenticated user, in the
// order the remote service returns them.
type Directory interface {
	ListCalendars(ctx context.Context) ([]resolver.CalendarOption, error)
}

// EventStore reads and mutates events of one calendar at a time.
//
// Implementations report failures as calerr errors: GetEvent and
// DeleteEvent return NotFound for missing events, and any remote failure
// is UpstreamUnavailable.
type EventStore interface {
	ListEvents(ctx context.Context, calendarID string, filter ListFilter) ([]Event, error)
	GetEvent(ctx context.Context, calendarID, eventID string) (Event, error)
	InsertEvent(ctx context.Context, calendarID string, spec EventSpec) (Event, error)
	DeleteEvent(ctx context.Context, calendarID, eventID string) error
}
