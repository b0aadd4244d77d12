package calendar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/oauth2"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/teemow/calmcp/internal/calerr"
	"github.com/teemow/calmcp/internal/google"
	"github.com/teemow/calmcp/internal/instrumentation"
	"github.com/teemow/calmcp/internal/resolver"
)

// Client wraps the Google Calendar service and implements Directory and
// EventStore.
type Client struct {
	svc     *calendar.Service
	account string
	metrics *instrumentation.Metrics
}

var (
	_ Directory  = (*Client)(nil)
	_ EventStore = (*Client)(nil)
)

// NewClient wraps an already configured Calendar service.
func NewClient(svc *calendar.Service, account string) *Client {
	return &Client{svc: svc, account: account}
}

// NewClientForAccount creates a Calendar client authenticated with the
// token the provider holds for account. Extra options are appended after
// the authenticated HTTP client.
func NewClientForAccount(ctx context.Context, account string, tokenProvider google.TokenProvider, opts ...option.ClientOption) (*Client, error) {
	if tokenProvider == nil {
		return nil, fmt.Errorf("token provider cannot be nil")
	}

	ts, err := tokenProvider.TokenSource(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("failed to get Google OAuth token for account %s: %w", account, err)
	}

	httpClient := oauth2.NewClient(ctx, ts)
	// Force HTTP/1.1 by disabling HTTP/2
	if transport, ok := httpClient.Transport.(*oauth2.Transport); ok {
		transport.Base = &http.Transport{ForceAttemptHTTP2: false}
	}

	svc, err := calendar.NewService(ctx, append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}

	return NewClient(svc, account), nil
}

// WithMetrics attaches a metrics recorder for Google API calls.
func (c *Client) WithMetrics(m *instrumentation.Metrics) *Client {
	c.metrics = m
	return c
}

// Account returns the account name this client is associated with.
func (c *Client) Account() string {
	return c.account
}

// CalendarList returns every entry of the user's calendar list, following
// pagination.
func (c *Client) CalendarList(ctx context.Context) ([]CalendarInfo, error) {
	var infos []CalendarInfo
	err := c.observe(ctx, instrumentation.OperationList, nil, func(ctx context.Context) error {
		return c.svc.CalendarList.List().Pages(ctx, func(page *calendar.CalendarList) error {
			for _, entry := range page.Items {
				infos = append(infos, toCalendarInfo(entry))
			}
			return nil
		})
	})
	if err != nil {
		return nil, classify("listing calendars", err)
	}
	return infos, nil
}

// ListCalendars returns the calendar directory as resolver options.
func (c *Client) ListCalendars(ctx context.Context) ([]resolver.CalendarOption, error) {
	infos, err := c.CalendarList(ctx)
	if err != nil {
		return nil, err
	}

	options := make([]resolver.CalendarOption, 0, len(infos))
	for _, info := range infos {
		options = append(options, info.Option())
	}
	return options, nil
}

// ListEvents returns every event of calendarID matching filter. Only the
// filters that are present are sent.
func (c *Client) ListEvents(ctx context.Context, calendarID string, filter ListFilter) ([]Event, error) {
	call := c.svc.Events.List(calendarID)
	if q, ok := filter.Query.Get(); ok {
		call = call.Q(q)
	}
	if tmin, ok := filter.TimeMin.Get(); ok {
		call = call.TimeMin(tmin)
	}
	if tmax, ok := filter.TimeMax.Get(); ok {
		call = call.TimeMax(tmax)
	}

	var events []Event
	err := c.observe(ctx, instrumentation.OperationList, calendarAttrs(calendarID, ""), func(ctx context.Context) error {
		return call.Pages(ctx, func(page *calendar.Events) error {
			for _, item := range page.Items {
				events = append(events, toEvent(item))
			}
			return nil
		})
	})
	if err != nil {
		return nil, classify("listing events", err)
	}
	return events, nil
}

// GetEvent retrieves a single event. A missing event is a NotFound error.
func (c *Client) GetEvent(ctx context.Context, calendarID, eventID string) (Event, error) {
	var event *calendar.Event
	err := c.observe(ctx, instrumentation.OperationGet, calendarAttrs(calendarID, eventID), func(ctx context.Context) error {
		var err error
		event, err = c.svc.Events.Get(calendarID, eventID).Context(ctx).Do()
		return err
	})
	if err != nil {
		if isNotFound(err) {
			return Event{}, calerr.NotFoundf("event %s in calendar %s", eventID, calendarID)
		}
		return Event{}, classify("getting event", err)
	}
	return toEvent(event), nil
}

// InsertEvent creates an event and returns it with its assigned ID.
func (c *Client) InsertEvent(ctx context.Context, calendarID string, spec EventSpec) (Event, error) {
	var created *calendar.Event
	err := c.observe(ctx, instrumentation.OperationCreate, calendarAttrs(calendarID, ""), func(ctx context.Context) error {
		var err error
		created, err = c.svc.Events.Insert(calendarID, toGoogleEvent(spec)).Context(ctx).Do()
		return err
	})
	if err != nil {
		if isNotFound(err) {
			return Event{}, calerr.NotFoundf("calendar %s", calendarID)
		}
		return Event{}, classify("creating event", err)
	}
	return toEvent(created), nil
}

// DeleteEvent deletes one event or recurring instance.
func (c *Client) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	err := c.observe(ctx, instrumentation.OperationDelete, calendarAttrs(calendarID, eventID), func(ctx context.Context) error {
		return c.svc.Events.Delete(calendarID, eventID).Context(ctx).Do()
	})
	if err != nil {
		if isNotFound(err) {
			return calerr.NotFoundf("event %s in calendar %s", eventID, calendarID)
		}
		return classify("deleting event", err)
	}
	return nil
}

// observe runs fn inside a Google API span and records its duration.
func (c *Client) observe(ctx context.Context, operation string, attrs []attribute.KeyValue, fn func(context.Context) error) error {
	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceCalendar, operation, attrs...)
	defer span.End()

	start := time.Now()
	err := fn(ctx)

	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
		instrumentation.SetSpanError(span, err)
	} else {
		instrumentation.SetSpanSuccess(span)
	}
	c.metrics.RecordGoogleAPIOperation(ctx, instrumentation.ServiceCalendar, operation, status, time.Since(start))

	return err
}

func calendarAttrs(calendarID, eventID string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{attribute.String(instrumentation.SpanAttrCalendarID, calendarID)}
	if eventID != "" {
		attrs = append(attrs, attribute.String(instrumentation.SpanAttrEventID, eventID))
	}
	return attrs
}

func isNotFound(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusNotFound || gerr.Code == http.StatusGone
	}
	return false
}

// classify maps a remote failure onto the error taxonomy. Context
// cancellation is reported as-is under Unexpected.
func classify(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return calerr.Wrap(op, err)
	}
	return calerr.Upstream(op, err)
}
