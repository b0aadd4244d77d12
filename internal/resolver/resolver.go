package resolver

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/samber/mo"

	"github.com/teemow/calmcp/internal/matcher"
)

// CalendarOption is one entry of the calendar directory visible to the
// authenticated user.
type CalendarOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Selection is the outcome of resolving a calendar name.
// CalendarID is present only when a calendar matched; Available always
// carries the directory snapshot so callers can disambiguate.
type Selection struct {
	Message    string
	CalendarID mo.Option[string]
	Available  []CalendarOption

	// listed is set when Message already enumerates Available.
	listed bool
}

// Matched reports whether the selection resolved to a calendar.
func (s Selection) Matched() bool {
	return s.CalendarID.IsPresent()
}

// String renders the message followed by the available calendars.
func (s Selection) String() string {
	if len(s.Available) == 0 || s.listed {
		return s.Message
	}

	var sb strings.Builder
	sb.WriteString(s.Message)
	sb.WriteString("\nAvailable calendars:\n")
	writeOptions(&sb, s.Available)
	return strings.TrimRight(sb.String(), "\n")
}

// minFuzzyThreshold is the smallest edit distance accepted for a fuzzy
// match, regardless of the input length.
const minFuzzyThreshold = 3

// Resolve picks a calendar from directory for the given name.
//
// Resolution order, first rule that applies wins:
//  1. an empty directory yields "no calendars";
//  2. a blank name yields a prompt listing every calendar;
//  3. the first entry, in directory order, whose name equals the input,
//     whose ID equals the input (case-insensitive), or whose name
//     contains the input;
//  4. the entry with the smallest edit distance, if that distance is at
//     most max(3, len(input)/2); ties go to the earlier entry;
//  5. otherwise no match, with the full directory attached.
//
// Resolve never fails; a missing match is reported through CalendarID.
func Resolve(name string, directory []CalendarOption) Selection {
	if len(directory) == 0 {
		return Selection{
			Message:   "No calendars found for this user.",
			Available: []CalendarOption{},
		}
	}

	available := make([]CalendarOption, len(directory))
	copy(available, directory)

	if strings.TrimSpace(name) == "" {
		var sb strings.Builder
		sb.WriteString("Available calendars:\n")
		writeOptions(&sb, available)
		sb.WriteString("Please provide a calendar ID or name to select.")
		return Selection{
			Message:   sb.String(),
			Available: available,
			listed:    true,
		}
	}

	input := normalize(name)

	for _, opt := range available {
		display := normalize(opt.Name)
		if display == input || strings.EqualFold(opt.ID, strings.TrimSpace(name)) || strings.Contains(display, input) {
			return selected(opt, available)
		}
	}

	best, bestDistance := -1, 0
	for i, opt := range available {
		d := matcher.Distance(input, normalize(opt.Name))
		if best == -1 || d < bestDistance {
			best, bestDistance = i, d
		}
	}

	threshold := max(minFuzzyThreshold, utf8.RuneCountInString(input)/2)
	if best >= 0 && bestDistance <= threshold {
		return selected(available[best], available)
	}

	return Selection{
		Message:   fmt.Sprintf("No calendar found with ID or name: %s. Please try again.", name),
		Available: available,
	}
}

func selected(opt CalendarOption, available []CalendarOption) Selection {
	return Selection{
		Message:    fmt.Sprintf("Selected calendar: %s (ID: %s)", opt.Name, opt.ID),
		CalendarID: mo.Some(opt.ID),
		Available:  available,
	}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func writeOptions(sb *strings.Builder, options []CalendarOption) {
	for _, opt := range options {
		fmt.Fprintf(sb, "ID: %s, Name: %s\n", opt.ID, opt.Name)
	}
}
