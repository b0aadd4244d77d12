package engine

import (
	"context"
	"log/slog"
	"strings"

	"github.com/samber/mo"

	"github.com/teemow/calmcp/internal/batch"
	"github.com/teemow/calmcp/internal/calendar"
	"github.com/teemow/calmcp/internal/calerr"
	"github.com/teemow/calmcp/internal/instrumentation"
	"github.com/teemow/calmcp/internal/logging"
	"github.com/teemow/calmcp/internal/resolver"
)

const (
	// PrimaryCalendarID addresses the user's primary calendar.
	PrimaryCalendarID = "primary"
	// DefaultTimeZone is applied to created events without a time zone.
	DefaultTimeZone = "UTC"
)

// Argument names reported in validation errors.
const (
	FieldCalendarName  = "calendarName"
	FieldQuery         = "query"
	FieldEventID       = "eventId"
	FieldInstanceDate  = "instanceDate"
	FieldStartDateTime = "startDateTime"
	FieldEndDateTime   = "endDateTime"
)

// Operations runs calendar operations against a directory and an event
// store. Each call works on data it fetched itself; an Operations value
// holds no per-call state.
type Operations struct {
	directory       calendar.Directory
	store           calendar.EventStore
	instanceIDs     InstanceIDStrategy
	defaultTimeZone string
	logger          logging.Logger
	metrics         *instrumentation.Metrics
}

// Option configures Operations.
type Option func(*Operations)

// WithInstanceIDStrategy sets how recurring instance ids are derived.
func WithInstanceIDStrategy(s InstanceIDStrategy) Option {
	return func(o *Operations) {
		if s != nil {
			o.instanceIDs = s
		}
	}
}

// WithLogger sets the logger for mutation and abort records.
func WithLogger(l logging.Logger) Option {
	return func(o *Operations) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithDefaultTimeZone sets the time zone used when an EventSpec has none.
func WithDefaultTimeZone(tz string) Option {
	return func(o *Operations) {
		if tz != "" {
			o.defaultTimeZone = tz
		}
	}
}

// WithMetrics records resolution outcomes and deletion counts.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(o *Operations) {
		o.metrics = m
	}
}

// New creates Operations over the given ports.
func New(directory calendar.Directory, store calendar.EventStore, opts ...Option) *Operations {
	o := &Operations{
		directory:       directory,
		store:           store,
		instanceIDs:     StripNonDigitT,
		defaultTimeZone: DefaultTimeZone,
		logger:          logging.NewSlogAdapter(slog.Default()),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Select resolves name against a fresh directory listing. An unmatched
// name is not an error; the selection carries no calendar ID.
func (o *Operations) Select(ctx context.Context, name string) (resolver.Selection, error) {
	options, err := o.directory.ListCalendars(ctx)
	if err != nil {
		return resolver.Selection{}, calerr.Wrap("selecting calendar", err)
	}

	sel := resolver.Resolve(name, options)
	o.metrics.RecordResolution(ctx, resolutionOutcome(name, sel))
	return sel, nil
}

// Create inserts one event. Without a calendar name the primary calendar
// is used. Start and end are validated before any remote call.
func (o *Operations) Create(ctx context.Context, calendarName mo.Option[string], spec calendar.EventSpec) (EventResponse, error) {
	start, err := normalizeInstant(FieldStartDateTime, spec.Start)
	if err != nil {
		return EventResponse{}, err
	}
	end, err := normalizeInstant(FieldEndDateTime, spec.End)
	if err != nil {
		return EventResponse{}, err
	}
	spec.Start, spec.End = start, end
	if strings.TrimSpace(spec.TimeZone) == "" {
		spec.TimeZone = o.defaultTimeZone
	}

	calendarID := PrimaryCalendarID
	if name, ok := present(calendarName); ok {
		id, err := o.resolveCalendar(ctx, name)
		if err != nil {
			return EventResponse{}, err
		}
		calendarID = id
	}

	created, err := o.store.InsertEvent(ctx, calendarID, spec)
	if err != nil {
		return EventResponse{}, calerr.Wrap("creating event", err)
	}
	o.logger.Debug("created event", logging.Calendar(calendarID), logging.EventID(created.ID))

	return EventResponse{
		Message: "Event created successfully",
		EventID: mo.EmptyableToOption(created.ID),
	}, nil
}

// List renders the events of the named calendar matching the filters.
func (o *Operations) List(ctx context.Context, calendarName string, query, timeMin, timeMax mo.Option[string]) (string, error) {
	req, err := o.prepare(ctx, calendarName, query, timeMin, timeMax)
	if err != nil {
		return "", err
	}

	events, err := o.store.ListEvents(ctx, req.CalendarID, req.Filter)
	if err != nil {
		return "", calerr.Wrap("listing events", err)
	}
	return FormatEvents(req.CalendarID, events), nil
}

// DeleteByQuery deletes every event matching query and the optional
// bounds.
func (o *Operations) DeleteByQuery(ctx context.Context, calendarName, query string, timeMin, timeMax mo.Option[string]) (DeletionOutcome, error) {
	if strings.TrimSpace(query) == "" {
		return DeletionOutcome{Kind: DeleteByQuery}, calerr.Invalid(FieldQuery, "query cannot be empty.")
	}

	req, err := o.prepare(ctx, calendarName, mo.Some(query), timeMin, timeMax)
	if err != nil {
		return DeletionOutcome{Kind: DeleteByQuery}, err
	}
	return o.deleteAll(ctx, DeleteByQuery, req)
}

// DeleteByRange deletes every event between timeMin and timeMax. Both
// bounds are required; their order is not checked.
func (o *Operations) DeleteByRange(ctx context.Context, calendarName, timeMin, timeMax string) (DeletionOutcome, error) {
	if err := ValidateTimestamp(FieldStartDate, timeMin); err != nil {
		return DeletionOutcome{Kind: DeleteByRange}, err
	}
	if err := ValidateTimestamp(FieldEndDate, timeMax); err != nil {
		return DeletionOutcome{Kind: DeleteByRange}, err
	}

	req, err := o.prepare(ctx, calendarName, mo.None[string](), mo.Some(timeMin), mo.Some(timeMax))
	if err != nil {
		return DeletionOutcome{Kind: DeleteByRange}, err
	}
	return o.deleteAll(ctx, DeleteByRange, req)
}

// ClearAll deletes every event of the named calendar.
func (o *Operations) ClearAll(ctx context.Context, calendarName string) (DeletionOutcome, error) {
	req, err := o.prepare(ctx, calendarName, mo.None[string](), mo.None[string](), mo.None[string]())
	if err != nil {
		return DeletionOutcome{Kind: ClearAll}, err
	}
	return o.deleteAll(ctx, ClearAll, req)
}

// DeleteInstance deletes an event, or one occurrence of it when
// instanceDate is present. A missing event is reported as a message, not
// an error.
func (o *Operations) DeleteInstance(ctx context.Context, calendarName, eventID string, instanceDate mo.Option[string]) (string, error) {
	if strings.TrimSpace(eventID) == "" {
		return "", calerr.Invalid(FieldEventID, "Event ID cannot be null or empty.")
	}
	date, hasDate := present(instanceDate)
	if hasDate {
		if err := ValidateTimestamp(FieldInstanceDate, date); err != nil {
			return "", err
		}
	}

	calendarID, err := o.resolveCalendar(ctx, calendarName)
	if err != nil {
		return "", err
	}

	if _, err := o.store.GetEvent(ctx, calendarID, eventID); err != nil {
		if calerr.IsNotFound(err) {
			return noEventMessage(eventID, calendarID), nil
		}
		return "", calerr.Wrap("checking event existence", err)
	}

	if hasDate {
		instanceID := o.instanceIDs.InstanceID(eventID, date)
		if err := o.store.DeleteEvent(ctx, calendarID, instanceID); err != nil {
			return "", calerr.Wrap("deleting event", err)
		}
		o.logger.Debug("deleted event instance", logging.Calendar(calendarID), logging.EventID(instanceID))
		return "Deleted instance of recurring event with ID " + eventID + " on " + date + " from calendar " + calendarID + ".", nil
	}

	if err := o.store.DeleteEvent(ctx, calendarID, eventID); err != nil {
		return "", calerr.Wrap("deleting event", err)
	}
	o.logger.Debug("deleted event", logging.Calendar(calendarID), logging.EventID(eventID))
	return "Event with ID " + eventID + " deleted successfully (all instances) from calendar " + calendarID + ".", nil
}

// prepare validates the filters before resolving the calendar, so bad
// input never reaches the network.
func (o *Operations) prepare(ctx context.Context, calendarName string, query, timeMin, timeMax mo.Option[string]) (ListRequest, error) {
	req, err := QueryBuilder{}.Build("", query, timeMin, timeMax)
	if err != nil {
		return ListRequest{}, err
	}

	req.CalendarID, err = o.resolveCalendar(ctx, calendarName)
	if err != nil {
		return ListRequest{}, err
	}
	return req, nil
}

func (o *Operations) resolveCalendar(ctx context.Context, name string) (string, error) {
	sel, err := o.Select(ctx, name)
	if err != nil {
		return "", err
	}
	id, ok := sel.CalendarID.Get()
	if !ok {
		return "", calerr.Invalid(FieldCalendarName, sel.String())
	}
	return id, nil
}

// deleteAll lists the request and deletes each returned event in order,
// stopping at the first failure.
func (o *Operations) deleteAll(ctx context.Context, kind DeletionKind, req ListRequest) (DeletionOutcome, error) {
	outcome := DeletionOutcome{
		Kind:       kind,
		CalendarID: req.CalendarID,
		Query:      req.Filter.Query,
	}

	events, err := o.store.ListEvents(ctx, req.CalendarID, req.Filter)
	if err != nil {
		return outcome, calerr.Wrap("listing events", err)
	}

	outcome.Bulk = batch.RunSequential(ctx, events,
		func(ctx context.Context, ev calendar.Event) error {
			if err := o.store.DeleteEvent(ctx, req.CalendarID, ev.ID); err != nil {
				return err
			}
			o.logger.Debug("deleted event", logging.Calendar(req.CalendarID), logging.EventID(ev.ID))
			return nil
		})

	abortKind := ""
	if outcome.Bulk.Failed() {
		outcome.Bulk.Err = calerr.Wrap("deleting events", outcome.Bulk.Err)
		abortKind = calerr.KindOf(outcome.Bulk.Err).String()
		o.logger.Warn("bulk deletion aborted",
			logging.Calendar(req.CalendarID),
			logging.Count(outcome.Bulk.Completed),
			slog.Int(logging.KeyTotal, outcome.Bulk.Total),
			logging.Err(outcome.Bulk.Err))
	}
	o.metrics.RecordDeletions(ctx, kind.Operation(), outcome.Bulk.Completed, abortKind)

	if outcome.Bulk.Failed() {
		return outcome, outcome.Bulk.Err
	}
	return outcome, nil
}

func noEventMessage(eventID, calendarID string) string {
	return "No event found with ID " + eventID + " in calendar " + calendarID + "."
}

func resolutionOutcome(name string, sel resolver.Selection) string {
	switch {
	case sel.Matched():
		return instrumentation.ResolutionMatched
	case len(sel.Available) == 0:
		return instrumentation.ResolutionEmpty
	case strings.TrimSpace(name) == "":
		return instrumentation.ResolutionPrompt
	default:
		return instrumentation.ResolutionNoMatch
	}
}
