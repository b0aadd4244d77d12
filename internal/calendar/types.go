package calendar

import (
	"github.com/samber/mo"
	calendar "google.golang.org/api/calendar/v3"

	"github.com/teemow/calmcp/internal/resolver"
)

// EventTime is one endpoint of an event. Timed events carry DateTime,
// all-day events carry Date.
type EventTime struct {
	DateTime string
	Date     string
}

// String returns the timed instant if present, else the date.
func (t EventTime) String() string {
	if t.DateTime != "" {
		return t.DateTime
	}
	return t.Date
}

// Event is the subset of a remote event the engine works with.
type Event struct {
	ID      string
	Summary string
	Start   EventTime
	End     EventTime
}

// EventSpec describes an event to create. Start and End are ISO-8601
// timestamps interpreted in TimeZone.
type EventSpec struct {
	Summary     string
	Location    string
	Description string
	Start       string
	End         string
	TimeZone    string
}

// ListFilter narrows an event listing. Absent fields are not sent.
type ListFilter struct {
	Query   mo.Option[string]
	TimeMin mo.Option[string]
	TimeMax mo.Option[string]
}

// CalendarInfo represents an entry of the user's calendar list.
type CalendarInfo struct {
	ID          string
	Summary     string
	Description string
	TimeZone    string
	Primary     bool
	AccessRole  string // "owner", "writer", "reader", "freeBusyReader"
}

// Option converts the entry to a resolver option.
func (c CalendarInfo) Option() resolver.CalendarOption {
	return resolver.CalendarOption{ID: c.ID, Name: c.Summary}
}

func toEventTime(dt *calendar.EventDateTime) EventTime {
	if dt == nil {
		return EventTime{}
	}
	return EventTime{DateTime: dt.DateTime, Date: dt.Date}
}

func toEvent(event *calendar.Event) Event {
	if event == nil {
		return Event{}
	}
	return Event{
		ID:      event.Id,
		Summary: event.Summary,
		Start:   toEventTime(event.Start),
		End:     toEventTime(event.End),
	}
}

func toCalendarInfo(entry *calendar.CalendarListEntry) CalendarInfo {
	if entry == nil {
		return CalendarInfo{}
	}
	return CalendarInfo{
		ID:          entry.Id,
		Summary:     entry.Summary,
		Description: entry.Description,
		TimeZone:    entry.TimeZone,
		Primary:     entry.Primary,
		AccessRole:  entry.AccessRole,
	}
}

// toGoogleEvent builds the insert payload. The same time zone is applied
// to both endpoints.
func toGoogleEvent(spec EventSpec) *calendar.Event {
	return &calendar.Event{
		Summary:     spec.Summary,
		Location:    spec.Location,
		Description: spec.Description,
		Start: &calendar.EventDateTime{
			DateTime: spec.Start,
			TimeZone: spec.TimeZone,
		},
		End: &calendar.EventDateTime{
			DateTime: spec.End,
			TimeZone: spec.TimeZone,
		},
	}
}
