package calendar_tools

import (
	"context"
	"net/http"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gcal "google.golang.org/api/calendar/v3"

	"github.com/teemow/calmcp/internal/calendar"
	"github.com/teemow/calmcp/internal/calendar/calendartest"
	"github.com/teemow/calmcp/internal/server"
	"github.com/teemow/calmcp/internal/tools/common"
)

func newTestContext(t *testing.T, srv *calendartest.Server) *server.ServerContext {
	t.Helper()

	factory := func(ctx context.Context, account string) (*calendar.Client, error) {
		return calendar.NewClient(srv.Service(t), account), nil
	}
	sc, err := server.NewServerContext(context.Background(), server.WithClientFactory(factory))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func call(t *testing.T, sc *server.ServerContext, name string, handler toolHandler, args map[string]any) (string, bool) {
	t.Helper()

	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	res, err := common.InstrumentedToolHandler(name, opGet, sc, bind(sc, handler))(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text, res.IsError
}

func seeded(t *testing.T) *calendartest.Server {
	t.Helper()

	srv := calendartest.NewServer(t)
	srv.AddCalendar("primary", "Personal")
	srv.AddCalendar("work@example.com", "Work Calendar")
	return srv
}

func timed(id, summary, start, end string) *gcal.Event {
	return &gcal.Event{
		Id:      id,
		Summary: summary,
		Start:   &gcal.EventDateTime{DateTime: start},
		End:     &gcal.EventDateTime{DateTime: end},
	}
}

func TestRegisterCalendarTools(t *testing.T) {
	readTools := []string{ToolSelect, ToolListCalendars, ToolListEvents}
	writeTools := []string{
		ToolCreateEvent, ToolQuickCreateEvent,
		ToolDeleteByQuery, ToolDeleteByDateRange, ToolDeleteRecurring, ToolClearAllEvents,
	}

	tests := []struct {
		name     string
		readOnly bool
	}{
		{name: "read only", readOnly: true},
		{name: "read write", readOnly: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := newTestContext(t, calendartest.NewServer(t))
			s := mcpserver.NewMCPServer("test", "0.0.0", mcpserver.WithToolCapabilities(true))

			require.NoError(t, RegisterCalendarTools(s, sc, tt.readOnly))

			registered := s.ListTools()
			for _, name := range readTools {
				assert.Contains(t, registered, name)
			}
			for _, name := range writeTools {
				if tt.readOnly {
					assert.NotContains(t, registered, name)
				} else {
					assert.Contains(t, registered, name)
				}
			}
		})
	}
}

func TestSelectCalendar(t *testing.T) {
	sc := newTestContext(t, seeded(t))

	tests := []struct {
		name     string
		args     map[string]any
		want     []string
		notWant  []string
		hasError bool
	}{
		{
			name: "fuzzy name",
			args: map[string]any{"calendarName": "work calender"},
			want: []string{"work@example.com"},
		},
		{
			name: "blank name lists calendars",
			args: map[string]any{},
			want: []string{"Available calendars:", "ID: primary, Name: Personal", "ID: work@example.com, Name: Work Calendar"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, isErr := call(t, sc, ToolSelect, handleSelectCalendar, tt.args)
			assert.Equal(t, tt.hasError, isErr)
			for _, w := range tt.want {
				assert.Contains(t, text, w)
			}
		})
	}
}

func TestListCalendars(t *testing.T) {
	sc := newTestContext(t, seeded(t))

	text, isErr := call(t, sc, ToolListCalendars, handleListCalendars, map[string]any{})
	assert.False(t, isErr)
	assert.Contains(t, text, "Found 2 calendar(s)")
	assert.Contains(t, text, "1. Personal")
	assert.Contains(t, text, "ID: work@example.com")
	assert.Contains(t, text, "Access Role: owner")
}

func TestListCalendars_UpstreamFailure(t *testing.T) {
	srv := seeded(t)
	srv.FailCalendarList = http.StatusInternalServerError
	sc := newTestContext(t, srv)

	text, isErr := call(t, sc, ToolListCalendars, handleListCalendars, map[string]any{})
	assert.True(t, isErr)
	assert.Contains(t, text, "Failed to connect to Google Calendar API: ")
}

func TestListEvents(t *testing.T) {
	srv := seeded(t)
	srv.AddEvent("work@example.com", timed("e1", "Team Meeting", "2025-06-04T10:00:00Z", "2025-06-04T11:00:00Z"))
	srv.AddEvent("work@example.com", timed("e2", "Lunch", "2025-06-04T12:00:00Z", "2025-06-04T13:00:00Z"))
	sc := newTestContext(t, srv)

	t.Run("query filters", func(t *testing.T) {
		text, isErr := call(t, sc, ToolListEvents, handleListEvents, map[string]any{
			"calendarName": "Work",
			"query":        "team",
			"startDate":    "2025-06-04T00:00:00",
		})
		require.False(t, isErr, text)
		assert.Contains(t, text, "Events in calendar work@example.com:")
		assert.Contains(t, text, "ID: e1, Summary: Team Meeting")
		assert.NotContains(t, text, "Lunch")

		queries := srv.ListQueries()
		require.NotEmpty(t, queries)
		assert.Equal(t, "2025-06-04T00:00:00Z", queries[len(queries)-1].Get("timeMin"))
	})

	t.Run("invalid date makes no listing", func(t *testing.T) {
		before := len(srv.ListQueries())
		text, isErr := call(t, sc, ToolListEvents, handleListEvents, map[string]any{
			"calendarName": "Work",
			"endDate":      "tomorrow",
		})
		assert.True(t, isErr)
		assert.Equal(t, "Invalid input: endDate must be in ISO 8601 format (e.g., '2025-06-04T10:00:00').", text)
		assert.Len(t, srv.ListQueries(), before)
	})

	t.Run("unknown calendar", func(t *testing.T) {
		text, isErr := call(t, sc, ToolListEvents, handleListEvents, map[string]any{
			"calendarName": "zzzzzzzzzzzzzzzzzzzz",
		})
		assert.True(t, isErr)
		assert.Contains(t, text, "Invalid input: ")
		assert.Contains(t, text, "Available calendars:")
	})
}

func TestCreateEvent(t *testing.T) {
	srv := seeded(t)
	sc := newTestContext(t, srv)

	text, isErr := call(t, sc, ToolCreateEvent, handleCreateEvent, map[string]any{
		"summary":       "Planning",
		"startDateTime": "2025-06-04T10:00:00",
		"endDateTime":   "2025-06-04T11:00:00",
	})
	require.False(t, isErr, text)
	assert.Contains(t, text, "Event created successfully (ID: ")

	inserts := srv.Inserts()
	require.Len(t, inserts, 1)
	assert.Equal(t, "Planning", inserts[0].Summary)
	assert.Equal(t, "UTC", inserts[0].Start.TimeZone)
	assert.Len(t, srv.Events("primary"), 1)
}

func TestCreateEvent_SendsFullDateTimes(t *testing.T) {
	tests := []struct {
		name      string
		start     string
		end       string
		wantStart string
		wantEnd   string
		wantErr   string
	}{
		{
			name:      "seconds precision",
			start:     "2025-06-04T10:00:00",
			end:       "2025-06-04T11:00:00",
			wantStart: "2025-06-04T10:00:00",
			wantEnd:   "2025-06-04T11:00:00",
		},
		{
			name:      "minutes padded to seconds",
			start:     "2025-06-04T10:00",
			end:       "2025-06-04T11:30",
			wantStart: "2025-06-04T10:00:00",
			wantEnd:   "2025-06-04T11:30:00",
		},
		{
			name:      "surrounding whitespace trimmed",
			start:     " 2025-06-04T10:00:00 ",
			end:       "\t2025-06-04T11:00:00\n",
			wantStart: "2025-06-04T10:00:00",
			wantEnd:   "2025-06-04T11:00:00",
		},
		{
			name:      "offset kept",
			start:     "2025-06-04T10:00:00+02:00",
			end:       "2025-06-04T11:00:00Z",
			wantStart: "2025-06-04T10:00:00+02:00",
			wantEnd:   "2025-06-04T11:00:00Z",
		},
		{
			name:    "date without time",
			start:   "2025-06-04",
			end:     "2025-06-04T11:00:00",
			wantErr: "Invalid input: startDateTime must be in ISO 8601 format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := seeded(t)
			sc := newTestContext(t, srv)

			text, isErr := call(t, sc, ToolCreateEvent, handleCreateEvent, map[string]any{
				"summary":       "Planning",
				"startDateTime": tt.start,
				"endDateTime":   tt.end,
			})
			if tt.wantErr != "" {
				assert.True(t, isErr)
				assert.Contains(t, text, tt.wantErr)
				assert.Empty(t, srv.Inserts())
				return
			}
			require.False(t, isErr, text)

			inserts := srv.Inserts()
			require.Len(t, inserts, 1)
			assert.Equal(t, tt.wantStart, inserts[0].Start.DateTime)
			assert.Equal(t, tt.wantEnd, inserts[0].End.DateTime)
		})
	}
}

func TestCreateEvent_InvalidStart(t *testing.T) {
	srv := seeded(t)
	sc := newTestContext(t, srv)

	text, isErr := call(t, sc, ToolCreateEvent, handleCreateEvent, map[string]any{
		"summary":       "Planning",
		"startDateTime": "10am",
		"endDateTime":   "2025-06-04T11:00:00",
	})
	assert.True(t, isErr)
	assert.Contains(t, text, "Invalid input: startDateTime")
	assert.Empty(t, srv.Inserts())
}

func TestQuickCreateEvent(t *testing.T) {
	srv := seeded(t)
	sc := newTestContext(t, srv)

	tests := []struct {
		name    string
		text    string
		wantErr string
	}{
		{
			name: "valid line",
			text: "create event: Sync, Room 4, Weekly sync, 2025-06-04T10:00:00Z, 2025-06-04T11:00:00Z",
		},
		{
			name: "comma inside a field",
			text: "create event: Town Hall, Hall A, 1,000 attendees, 2025-06-04T10:00, 2025-06-04T11:00",
		},
		{
			name:    "wrong field count",
			text:    "create event: Sync, Room 4",
			wantErr: "Invalid input: Invalid input format.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, isErr := call(t, sc, ToolQuickCreateEvent, handleQuickCreateEvent, map[string]any{"text": tt.text})
			if tt.wantErr != "" {
				assert.True(t, isErr)
				assert.Contains(t, text, tt.wantErr)
				return
			}
			assert.False(t, isErr, text)
			assert.Contains(t, text, "Event created successfully")
		})
	}
}

func TestDeleteByQuery(t *testing.T) {
	srv := seeded(t)
	srv.AddEvent("work@example.com", timed("e1", "Standup", "2025-06-04T09:00:00Z", "2025-06-04T09:15:00Z"))
	srv.AddEvent("work@example.com", timed("e2", "Standup", "2025-06-05T09:00:00Z", "2025-06-05T09:15:00Z"))
	srv.AddEvent("work@example.com", timed("e3", "Review", "2025-06-05T14:00:00Z", "2025-06-05T15:00:00Z"))
	sc := newTestContext(t, srv)

	text, isErr := call(t, sc, ToolDeleteByQuery, handleDeleteByQuery, map[string]any{
		"calendarName": "Work Calendar",
		"query":        "standup",
	})
	require.False(t, isErr, text)
	assert.Equal(t, "Successfully deleted 2 event(s) matching the query: standup in calendar work@example.com.", text)
	assert.Equal(t, []string{"work@example.com/e1", "work@example.com/e2"}, srv.Deletes())
}

func TestDeleteByQuery_BlankQuery(t *testing.T) {
	srv := seeded(t)
	sc := newTestContext(t, srv)

	text, isErr := call(t, sc, ToolDeleteByQuery, handleDeleteByQuery, map[string]any{
		"calendarName": "Work Calendar",
		"query":        "  ",
	})
	assert.True(t, isErr)
	assert.Equal(t, "Invalid input: query cannot be empty.", text)
	assert.Empty(t, srv.ListQueries())
}

func TestDeleteByDateRange_StopsAtFirstFailure(t *testing.T) {
	srv := seeded(t)
	for _, id := range []string{"e1", "e2", "e3", "e4", "e5"} {
		srv.AddEvent("work@example.com", timed(id, "Block", "2025-06-04T09:00:00Z", "2025-06-04T10:00:00Z"))
	}
	srv.FailDelete["e3"] = http.StatusServiceUnavailable
	sc := newTestContext(t, srv)

	text, isErr := call(t, sc, ToolDeleteByDateRange, handleDeleteByRange, map[string]any{
		"calendarName": "work",
		"startDate":    "2025-06-01T00:00:00",
		"endDate":      "2025-06-30T23:59:59",
	})
	assert.True(t, isErr)
	assert.Contains(t, text, "Failed to connect to Google Calendar API: ")
	assert.Contains(t, text, "(deleted 2 of 5 before failure)")
	assert.Len(t, srv.Deletes(), 3)
	assert.Len(t, srv.Events("work@example.com"), 3)
}

func TestDeleteByDateRange_MissingBound(t *testing.T) {
	srv := seeded(t)
	sc := newTestContext(t, srv)

	text, isErr := call(t, sc, ToolDeleteByDateRange, handleDeleteByRange, map[string]any{
		"calendarName": "work",
		"startDate":    "2025-06-01T00:00:00",
	})
	assert.True(t, isErr)
	assert.Contains(t, text, "Invalid input: endDate")
	assert.Empty(t, srv.Deletes())
}

func TestDeleteRecurring(t *testing.T) {
	srv := seeded(t)
	srv.AddEvent("work@example.com", timed("series1", "Weekly", "2025-06-04T10:00:00Z", "2025-06-04T11:00:00Z"))
	srv.AddEvent("work@example.com", timed("series1_20250611T100000", "Weekly", "2025-06-11T10:00:00Z", "2025-06-11T11:00:00Z"))
	sc := newTestContext(t, srv)

	tests := []struct {
		name        string
		args        map[string]any
		want        string
		wantDeletes []string
	}{
		{
			name:        "one instance",
			args:        map[string]any{"calendarName": "work", "eventId": "series1", "instanceDate": "2025-06-11T10:00:00"},
			want:        "Deleted instance of recurring event with ID series1 on 2025-06-11T10:00:00 from calendar work@example.com.",
			wantDeletes: []string{"work@example.com/series1_20250611T100000"},
		},
		{
			name:        "whole series",
			args:        map[string]any{"calendarName": "work", "eventId": "series1"},
			want:        "Event with ID series1 deleted successfully (all instances) from calendar work@example.com.",
			wantDeletes: []string{"work@example.com/series1_20250611T100000", "work@example.com/series1"},
		},
		{
			name:        "missing event",
			args:        map[string]any{"calendarName": "work", "eventId": "ghost"},
			want:        "No event found with ID ghost in calendar work@example.com.",
			wantDeletes: []string{"work@example.com/series1_20250611T100000", "work@example.com/series1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, isErr := call(t, sc, ToolDeleteRecurring, handleDeleteRecurring, tt.args)
			require.False(t, isErr, text)
			assert.Equal(t, tt.want, text)
			assert.Equal(t, tt.wantDeletes, srv.Deletes())
		})
	}
}

func TestClearAllEvents(t *testing.T) {
	srv := seeded(t)
	srv.AddEvent("primary", timed("p1", "Dentist", "2025-06-04T10:00:00Z", "2025-06-04T11:00:00Z"))
	srv.AddEvent("primary", timed("p2", "", "2025-06-05T10:00:00Z", "2025-06-05T11:00:00Z"))
	sc := newTestContext(t, srv)

	text, isErr := call(t, sc, ToolClearAllEvents, handleClearAll, map[string]any{"calendarName": "primary"})
	require.False(t, isErr, text)
	assert.Equal(t, "All events in calendar primary have been deleted.", text)
	assert.Empty(t, srv.Events("primary"))
}

func TestCreateEvent_MissingSummary(t *testing.T) {
	srv := seeded(t)
	sc := newTestContext(t, srv)

	text, isErr := call(t, sc, ToolCreateEvent, handleCreateEvent, map[string]any{
		"startDateTime": "2025-06-04T10:00:00",
		"endDateTime":   "2025-06-04T11:00:00",
	})
	assert.True(t, isErr)
	assert.Equal(t, "Invalid input: summary is required.", text)
	assert.Empty(t, srv.Inserts())
}
