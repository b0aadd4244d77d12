package engine

import (
	"strings"

	"github.com/teemow/calmcp/internal/calendar"
	"github.com/teemow/calmcp/internal/calerr"
)

// FieldText names the free-text argument of the quick-create command.
const FieldText = "text"

const (
	quickCreatePrefix = "create event:"
	quickCreateSep    = ", "
)

// ParseQuickCreate parses "create event: summary, location, description,
// start, end" into an EventSpec in UTC. Exactly five fields separated by
// ", " are required and both timestamps must be ISO 8601 date-times.
func ParseQuickCreate(text string) (calendar.EventSpec, error) {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < len(quickCreatePrefix) || !strings.EqualFold(trimmed[:len(quickCreatePrefix)], quickCreatePrefix) {
		return calendar.EventSpec{}, invalidQuickCreate()
	}

	parts := strings.Split(trimmed[len(quickCreatePrefix):], quickCreateSep)
	if len(parts) != 5 {
		return calendar.EventSpec{}, invalidQuickCreate()
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	spec := calendar.EventSpec{
		Summary:     parts[0],
		Location:    parts[1],
		Description: parts[2],
		Start:       parts[3],
		End:         parts[4],
		TimeZone:    DefaultTimeZone,
	}
	var err error
	if spec.Start, err = normalizeInstant(FieldStartDateTime, spec.Start); err != nil {
		return calendar.EventSpec{}, err
	}
	if spec.End, err = normalizeInstant(FieldEndDateTime, spec.End); err != nil {
		return calendar.EventSpec{}, err
	}
	return spec, nil
}

func invalidQuickCreate() error {
	return calerr.Invalid(FieldText, "Invalid input format. Expected: create event: summary, location, description, start, end")
}
