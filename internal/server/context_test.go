package server

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/teemow/calmcp/internal/calendar"
	"github.com/teemow/calmcp/internal/calendar/calendartest"
	"github.com/teemow/calmcp/internal/instrumentation"
)

// countingFactory returns clients for the fake and counts creations.
func countingFactory(t *testing.T, srv *calendartest.Server, created *atomic.Int32) ClientFactory {
	return func(ctx context.Context, account string) (*calendar.Client, error) {
		created.Add(1)
		return calendar.NewClient(srv.Service(t), account), nil
	}
}

type stubTokenProvider struct {
	accounts map[string]bool
}

func (p stubTokenProvider) TokenSource(ctx context.Context, account string) (oauth2.TokenSource, error) {
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "test"}), nil
}

func (p stubTokenProvider) HasTokenForAccount(account string) bool {
	return p.accounts[account]
}

func TestServerContext_CachesClientsPerAccount(t *testing.T) {
	srv := calendartest.NewServer(t)
	var created atomic.Int32

	sc, err := NewServerContext(context.Background(), WithClientFactory(countingFactory(t, srv, &created)))
	require.NoError(t, err)
	defer sc.Shutdown()

	first, err := sc.CalendarClientForAccount("default")
	require.NoError(t, err)
	again, err := sc.CalendarClientForAccount("default")
	require.NoError(t, err)
	assert.Same(t, first, again)

	work, err := sc.CalendarClientForAccount("work")
	require.NoError(t, err)
	assert.Equal(t, "work", work.Account())
	assert.Equal(t, int32(2), created.Load())
}

func TestServerContext_CacheExpires(t *testing.T) {
	srv := calendartest.NewServer(t)
	var created atomic.Int32

	sc, err := NewServerContext(context.Background(),
		WithClientFactory(countingFactory(t, srv, &created)),
		WithClientCacheTTL(50*time.Millisecond),
	)
	require.NoError(t, err)
	defer sc.Shutdown()

	_, err = sc.CalendarClientForAccount("default")
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		_, err := sc.CalendarClientForAccount("default")
		return err == nil && created.Load() == 2
	}, 2*time.Second, 20*time.Millisecond)
}

func TestServerContext_FactoryError(t *testing.T) {
	sc, err := NewServerContext(context.Background(), WithClientFactory(func(context.Context, string) (*calendar.Client, error) {
		return nil, errors.New("boom")
	}))
	require.NoError(t, err)
	defer sc.Shutdown()

	_, err = sc.CalendarClientForAccount("default")
	assert.EqualError(t, err, "boom")

	_, err = sc.OperationsForAccount("default")
	assert.EqualError(t, err, "boom")
}

func TestServerContext_MissingToken(t *testing.T) {
	sc, err := NewServerContext(context.Background(), WithTokenProvider(stubTokenProvider{}))
	require.NoError(t, err)
	defer sc.Shutdown()

	_, err = sc.CalendarClientForAccount("work")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "calmcp login --account work")
}

func TestServerContext_NoTokenProvider(t *testing.T) {
	sc, err := NewServerContext(context.Background())
	require.NoError(t, err)
	defer sc.Shutdown()

	_, err = sc.CalendarClientForAccount("default")
	assert.Error(t, err)
}

func TestServerContext_OperationsForAccount(t *testing.T) {
	srv := calendartest.NewServer(t)
	srv.AddCalendar("c1", "Work")
	var created atomic.Int32

	sc, err := NewServerContext(context.Background(),
		WithClientFactory(countingFactory(t, srv, &created)),
		WithDefaultTimeZone("Europe/Madrid"),
	)
	require.NoError(t, err)
	defer sc.Shutdown()

	ops, err := sc.OperationsForAccount("default")
	require.NoError(t, err)

	_, err = ops.Create(context.Background(), mo.Some("work"), calendar.EventSpec{
		Summary: "Planning",
		Start:   "2025-06-04T10:00:00",
		End:     "2025-06-04T11:00:00",
	})
	require.NoError(t, err)

	inserts := srv.Inserts()
	require.Len(t, inserts, 1)
	assert.Equal(t, "Europe/Madrid", inserts[0].Start.TimeZone)
}

func TestServerContext_Instrumentation(t *testing.T) {
	sc, err := NewServerContext(context.Background())
	require.NoError(t, err)
	assert.Nil(t, sc.Metrics())
	assert.Nil(t, sc.AuditLogger())

	sc, err = NewServerContext(context.Background(),
		WithInstrumentation(createTestProvider(t), instrumentation.AuditLoggingConfig{Enabled: true}),
	)
	require.NoError(t, err)
	assert.NotNil(t, sc.Metrics())
	assert.NotNil(t, sc.AuditLogger())
}

func TestServerContext_Shutdown(t *testing.T) {
	srv := calendartest.NewServer(t)
	var created atomic.Int32

	sc, err := NewServerContext(context.Background(), WithClientFactory(countingFactory(t, srv, &created)))
	require.NoError(t, err)

	assert.False(t, sc.IsShutdown())
	require.NoError(t, sc.Shutdown())
	require.NoError(t, sc.Shutdown())

	assert.True(t, sc.IsShutdown())

	_, err = sc.CalendarClientForAccount("default")
	assert.ErrorIs(t, err, ErrShutdown)
}
