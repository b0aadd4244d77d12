package engine

import (
	"slices"
	"strings"
	"time"

	"github.com/samber/mo"

	"github.com/teemow/calmcp/internal/calendar"
	"github.com/teemow/calmcp/internal/calerr"
)

// Default argument names used in validation errors for listing bounds.
const (
	FieldStartDate = "startDate"
	FieldEndDate   = "endDate"
)

// Accepted timestamp layouts. Values with an explicit offset are sent
// unchanged; local forms are read as UTC.
var (
	zonedLayouts         = []string{time.RFC3339Nano}
	localDateTimeLayouts = []string{
		"2006-01-02T15:04:05.999999999",
		"2006-01-02T15:04",
	}
	localLayouts = slices.Concat(localDateTimeLayouts, []string{"2006-01-02"})
)

const localInstantLayout = "2006-01-02T15:04:05.999999999"

// ValidateTimestamp reports an InvalidInput error naming field when value
// is not an ISO 8601 date or date-time.
func ValidateTimestamp(field, value string) error {
	_, err := normalizeTimestamp(field, value)
	return err
}

func normalizeTimestamp(field, value string) (string, error) {
	v := strings.TrimSpace(value)
	for _, layout := range zonedLayouts {
		if _, err := time.Parse(layout, v); err == nil {
			return v, nil
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, v, time.UTC); err == nil {
			return t.Format(time.RFC3339Nano), nil
		}
	}
	return "", invalidTimestamp(field)
}

// normalizeInstant returns value as a full RFC 3339 date-time for an event
// start or end. Zoned values are kept, local values are padded to seconds
// and left without offset so the event time zone applies. Dates without a
// time are rejected.
func normalizeInstant(field, value string) (string, error) {
	v := strings.TrimSpace(value)
	for _, layout := range zonedLayouts {
		if _, err := time.Parse(layout, v); err == nil {
			return v, nil
		}
	}
	for _, layout := range localDateTimeLayouts {
		if t, err := time.ParseInLocation(layout, v, time.UTC); err == nil {
			return t.Format(localInstantLayout), nil
		}
	}
	return "", invalidTimestamp(field)
}

func invalidTimestamp(field string) error {
	return calerr.Invalidf(field, "%s must be in ISO 8601 format (e.g., '2025-06-04T10:00:00').", field)
}

// ListRequest is a filtered event listing for one calendar.
type ListRequest struct {
	CalendarID string
	Filter     calendar.ListFilter
}

// QueryBuilder builds listing requests. MinField and MaxField name the
// bounds in validation errors and default to startDate and endDate.
type QueryBuilder struct {
	MinField string
	MaxField string
}

// Build returns a request carrying only the filters that are present.
// Blank values count as absent. A present bound that is not ISO 8601 fails
// the whole build.
func (b QueryBuilder) Build(calendarID string, query, timeMin, timeMax mo.Option[string]) (ListRequest, error) {
	req := ListRequest{CalendarID: calendarID}

	if q, ok := present(query); ok {
		req.Filter.Query = mo.Some(q)
	}
	if v, ok := present(timeMin); ok {
		norm, err := normalizeTimestamp(fieldOr(b.MinField, FieldStartDate), v)
		if err != nil {
			return ListRequest{}, err
		}
		req.Filter.TimeMin = mo.Some(norm)
	}
	if v, ok := present(timeMax); ok {
		norm, err := normalizeTimestamp(fieldOr(b.MaxField, FieldEndDate), v)
		if err != nil {
			return ListRequest{}, err
		}
		req.Filter.TimeMax = mo.Some(norm)
	}

	return req, nil
}

func present(o mo.Option[string]) (string, bool) {
	v, ok := o.Get()
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}

func fieldOr(field, fallback string) string {
	if field == "" {
		return fallback
	}
	return field
}
