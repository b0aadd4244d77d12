package engine

import (
	"fmt"
	"strings"

	"github.com/samber/mo"

	"github.com/teemow/calmcp/internal/batch"
	"github.com/teemow/calmcp/internal/calendar"
	"github.com/teemow/calmcp/internal/calerr"
)

const noSummary = "No summary"

// EventResponse is returned after a successful create.
type EventResponse struct {
	Message string            `json:"message"`
	EventID mo.Option[string] `json:"eventId"`
}

func (r EventResponse) String() string {
	if id, ok := r.EventID.Get(); ok {
		return fmt.Sprintf("%s (ID: %s)", r.Message, id)
	}
	return r.Message
}

// DeletionKind identifies which bulk flow produced a DeletionOutcome.
type DeletionKind int

const (
	DeleteByQuery DeletionKind = iota
	DeleteByRange
	ClearAll
)

// Operation returns the metric label for the flow.
func (k DeletionKind) Operation() string {
	switch k {
	case DeleteByQuery:
		return "delete_by_query"
	case DeleteByRange:
		return "delete_by_range"
	default:
		return "clear_all"
	}
}

// DeletionOutcome aggregates a bulk deletion. Bulk.Total is the number of
// events matched by the listing and Bulk.Completed the number deleted.
type DeletionOutcome struct {
	Kind       DeletionKind
	CalendarID string
	Query      mo.Option[string]
	Bulk       batch.Result
}

// Message renders the outcome. A run that stopped early is rendered as the
// classified error followed by the count reached.
func (d DeletionOutcome) Message() string {
	if d.Bulk.Failed() {
		return fmt.Sprintf("%s (deleted %d of %d before failure)", FormatError(d.Bulk.Err), d.Bulk.Completed, d.Bulk.Total)
	}

	switch d.Kind {
	case DeleteByQuery:
		q := d.Query.OrEmpty()
		if d.Bulk.Total == 0 {
			return fmt.Sprintf("No events found matching the query: %s in calendar %s.", q, d.CalendarID)
		}
		return fmt.Sprintf("Successfully deleted %d event(s) matching the query: %s in calendar %s.", d.Bulk.Completed, q, d.CalendarID)
	case DeleteByRange:
		if d.Bulk.Total == 0 {
			return fmt.Sprintf("No events found in the specified date range in calendar %s.", d.CalendarID)
		}
		return fmt.Sprintf("Successfully deleted %d event(s) in the specified date range in calendar %s.", d.Bulk.Completed, d.CalendarID)
	default:
		return fmt.Sprintf("All events in calendar %s have been deleted.", d.CalendarID)
	}
}

// FormatEvents renders a listing, one line per event.
func FormatEvents(calendarID string, events []calendar.Event) string {
	if len(events) == 0 {
		return fmt.Sprintf("No events found in calendar %s matching the provided criteria.", calendarID)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Events in calendar %s:\n", calendarID)
	for _, ev := range events {
		summary := ev.Summary
		if summary == "" {
			summary = noSummary
		}
		fmt.Fprintf(&sb, "ID: %s, Summary: %s, Start: %s, End: %s\n", ev.ID, summary, ev.Start, ev.End)
	}
	return sb.String()
}

// FormatError renders err with its taxonomy prefix. Unclassified errors
// are reported as unexpected.
func FormatError(err error) string {
	if err == nil {
		return ""
	}
	return calerr.Wrap("", err).Error()
}
