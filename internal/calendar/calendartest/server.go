// Package calendartest provides an in-memory fake of the Google Calendar
// REST API for tests.
package calendartest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"

	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/teemow/calmcp/internal/calendar"
)

const apiPrefix = "/calendar/v3/"

// Server is a fake Calendar API. Calendars and events are kept in
// insertion order. Text queries match summary or description
// case-insensitively; time bounds are recorded but not applied.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	calendars []*gcal.CalendarListEntry
	events    map[string][]*gcal.Event
	nextID    int

	// PageSize splits event listings into pages when > 0.
	PageSize int

	// FailDelete makes DELETE of the given event ID answer with the status.
	FailDelete map[string]int
	// FailList makes every event listing answer with the status when non-zero.
	FailList int
	// FailCalendarList makes the calendar list answer with the status when non-zero.
	FailCalendarList int

	deletes     []string
	inserts     []*gcal.Event
	listQueries []url.Values
}

// NewServer starts a fake server that is closed when the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		events:     make(map[string][]*gcal.Event),
		FailDelete: make(map[string]int),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// AddCalendar appends a calendar to the directory.
func (s *Server) AddCalendar(id, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calendars = append(s.calendars, &gcal.CalendarListEntry{Id: id, Summary: name, AccessRole: "owner"})
	if _, ok := s.events[id]; !ok {
		s.events[id] = nil
	}
}

// AddEvent appends an event to a calendar. Events without an ID get one.
func (s *Server) AddEvent(calendarID string, ev *gcal.Event) *gcal.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ev.Id == "" {
		ev.Id = s.newID()
	}
	s.events[calendarID] = append(s.events[calendarID], ev)
	return ev
}

// Events returns the events currently stored in a calendar.
func (s *Server) Events(calendarID string) []*gcal.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*gcal.Event(nil), s.events[calendarID]...)
}

// Deletes returns "calendarID/eventID" for every DELETE received, in order.
func (s *Server) Deletes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.deletes...)
}

// Inserts returns every event body received by POST.
func (s *Server) Inserts() []*gcal.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*gcal.Event(nil), s.inserts...)
}

// ListQueries returns the query parameters of every event listing.
func (s *Server) ListQueries() []url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]url.Values(nil), s.listQueries...)
}

type rewriteTransport struct {
	transport http.RoundTripper
	host      string
}

func (t *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.URL.Scheme = "http"
	req.URL.Host = t.host
	return t.transport.RoundTrip(req)
}

// HTTPClient returns a client that sends googleapis.com traffic to the fake.
func (s *Server) HTTPClient() *http.Client {
	return &http.Client{Transport: &rewriteTransport{
		transport: http.DefaultTransport,
		host:      strings.TrimPrefix(s.URL, "http://"),
	}}
}

// Service returns a Calendar service talking to the fake.
func (s *Server) Service(t testing.TB) *gcal.Service {
	t.Helper()
	svc, err := gcal.NewService(context.Background(), option.WithHTTPClient(s.HTTPClient()))
	if err != nil {
		t.Fatalf("failed to create calendar service: %v", err)
	}
	return svc
}

// Client returns a calendar.Client talking to the fake.
func (s *Server) Client(t testing.TB) *calendar.Client {
	t.Helper()
	return calendar.NewClient(s.Service(t), "default")
}

func (s *Server) newID() string {
	s.nextID++
	return fmt.Sprintf("evt%03d", s.nextID)
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, apiPrefix)
	if path == r.URL.Path {
		writeError(w, http.StatusNotFound, "unknown path")
		return
	}

	if path == "users/me/calendarList" && r.Method == http.MethodGet {
		s.listCalendars(w)
		return
	}

	parts := strings.Split(path, "/")
	if len(parts) < 3 || parts[0] != "calendars" || parts[2] != "events" {
		writeError(w, http.StatusNotFound, "unknown path")
		return
	}

	calendarID, _ := url.PathUnescape(parts[1])
	switch {
	case len(parts) == 3 && r.Method == http.MethodGet:
		s.listEvents(w, r, calendarID)
	case len(parts) == 3 && r.Method == http.MethodPost:
		s.insertEvent(w, r, calendarID)
	case len(parts) == 4 && r.Method == http.MethodGet:
		eventID, _ := url.PathUnescape(parts[3])
		s.getEvent(w, calendarID, eventID)
	case len(parts) == 4 && r.Method == http.MethodDelete:
		eventID, _ := url.PathUnescape(parts[3])
		s.deleteEvent(w, calendarID, eventID)
	default:
		writeError(w, http.StatusMethodNotAllowed, "unsupported method")
	}
}

func (s *Server) listCalendars(w http.ResponseWriter) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailCalendarList != 0 {
		writeError(w, s.FailCalendarList, "calendar list unavailable")
		return
	}
	writeJSON(w, &gcal.CalendarList{Items: s.calendars})
}

func (s *Server) listEvents(w http.ResponseWriter, r *http.Request, calendarID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := r.URL.Query()
	s.listQueries = append(s.listQueries, query)

	if s.FailList != 0 {
		writeError(w, s.FailList, "listing unavailable")
		return
	}

	stored, ok := s.events[calendarID]
	if !ok {
		writeError(w, http.StatusNotFound, "calendar not found")
		return
	}

	var matched []*gcal.Event
	q := strings.ToLower(query.Get("q"))
	for _, ev := range stored {
		if q == "" || strings.Contains(strings.ToLower(ev.Summary), q) || strings.Contains(strings.ToLower(ev.Description), q) {
			matched = append(matched, ev)
		}
	}

	page := &gcal.Events{Items: matched}
	if s.PageSize > 0 {
		offset, _ := strconv.Atoi(query.Get("pageToken"))
		end := min(offset+s.PageSize, len(matched))
		page.Items = matched[offset:end]
		if end < len(matched) {
			page.NextPageToken = strconv.Itoa(end)
		}
	}
	writeJSON(w, page)
}

func (s *Server) insertEvent(w http.ResponseWriter, r *http.Request, calendarID string) {
	var ev gcal.Event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[calendarID]; !ok {
		writeError(w, http.StatusNotFound, "calendar not found")
		return
	}

	s.inserts = append(s.inserts, &ev)
	created := ev
	created.Id = s.newID()
	s.events[calendarID] = append(s.events[calendarID], &created)
	writeJSON(w, &created)
}

func (s *Server) getEvent(w http.ResponseWriter, calendarID, eventID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ev := range s.events[calendarID] {
		if ev.Id == eventID {
			writeJSON(w, ev)
			return
		}
	}
	writeError(w, http.StatusNotFound, "event not found")
}

func (s *Server) deleteEvent(w http.ResponseWriter, calendarID, eventID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.deletes = append(s.deletes, calendarID+"/"+eventID)

	if status, ok := s.FailDelete[eventID]; ok {
		writeError(w, status, "delete failed")
		return
	}

	stored := s.events[calendarID]
	for i, ev := range stored {
		if ev.Id == eventID {
			s.events[calendarID] = append(stored[:i:i], stored[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeError(w, http.StatusNotFound, "event not found")
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	})
}
