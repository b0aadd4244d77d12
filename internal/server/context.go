package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/teemow/calmcp/internal/calendar"
	"github.com/teemow/calmcp/internal/engine"
	"github.com/teemow/calmcp/internal/google"
	"github.com/teemow/calmcp/internal/instrumentation"
	"github.com/teemow/calmcp/internal/logging"
)

const (
	// DefaultClientCacheTTL is how long a per-account Calendar client is reused.
	DefaultClientCacheTTL = 30 * time.Minute

	// maxCachedClients bounds the per-account client cache.
	maxCachedClients = 64
)

// ErrShutdown is returned for client requests after Shutdown.
var ErrShutdown = errors.New("server context is shut down")

// ClientFactory creates a Calendar client for an account.
type ClientFactory func(ctx context.Context, account string) (*calendar.Client, error)

// ServerContext holds the per-process dependencies shared by tool handlers.
type ServerContext struct {
	ctx    context.Context
	cancel context.CancelFunc

	tokenProvider   google.TokenProvider
	clientFactory   ClientFactory
	clients         *expirable.LRU[string, *calendar.Client]
	clientCacheTTL  time.Duration
	defaultTimeZone string

	logger      *slog.Logger
	provider    *instrumentation.Provider
	metrics     *instrumentation.Metrics
	auditLogger *instrumentation.AuditLogger
	auditConfig instrumentation.AuditLoggingConfig

	mu       sync.RWMutex
	shutdown bool
}

// Option configures a ServerContext.
type Option func(*ServerContext)

// WithTokenProvider sets the source of Google OAuth tokens.
func WithTokenProvider(tp google.TokenProvider) Option {
	return func(sc *ServerContext) { sc.tokenProvider = tp }
}

// WithClientFactory overrides how Calendar clients are created.
func WithClientFactory(f ClientFactory) Option {
	return func(sc *ServerContext) { sc.clientFactory = f }
}

// WithClientCacheTTL sets how long clients are cached per account.
func WithClientCacheTTL(ttl time.Duration) Option {
	return func(sc *ServerContext) {
		if ttl > 0 {
			sc.clientCacheTTL = ttl
		}
	}
}

// WithDefaultTimeZone sets the time zone for events created without one.
func WithDefaultTimeZone(tz string) Option {
	return func(sc *ServerContext) { sc.defaultTimeZone = tz }
}

// WithLogger sets the logger used by handlers and the audit log.
func WithLogger(logger *slog.Logger) Option {
	return func(sc *ServerContext) {
		if logger != nil {
			sc.logger = logger
		}
	}
}

// WithInstrumentation attaches metrics, tracing and audit logging.
func WithInstrumentation(p *instrumentation.Provider, audit instrumentation.AuditLoggingConfig) Option {
	return func(sc *ServerContext) {
		if p == nil {
			return
		}
		sc.provider = p
		sc.metrics = p.Metrics()
		sc.auditConfig = audit
	}
}

// NewServerContext creates a new server context
func NewServerContext(ctx context.Context, opts ...Option) (*ServerContext, error) {
	shutdownCtx, cancel := context.WithCancel(ctx)

	sc := &ServerContext{
		ctx:             shutdownCtx,
		cancel:          cancel,
		clientCacheTTL:  DefaultClientCacheTTL,
		defaultTimeZone: engine.DefaultTimeZone,
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		opt(sc)
	}

	if sc.provider != nil {
		sc.auditLogger = instrumentation.NewAuditLogger(sc.logger, sc.auditConfig)
	}
	if sc.clientFactory == nil {
		sc.clientFactory = sc.newClient
	}
	sc.clients = expirable.NewLRU[string, *calendar.Client](maxCachedClients, nil, sc.clientCacheTTL)

	return sc, nil
}

// Logger returns the server logger.
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.logger
}

// Metrics returns the metrics recorder, or nil when instrumentation is off.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	return sc.metrics
}

// AuditLogger returns the audit logger, or nil when instrumentation is off.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	return sc.auditLogger
}

// CalendarClientForAccount returns the cached Calendar client for account,
// creating it on first use or after the cache entry expired.
func (sc *ServerContext) CalendarClientForAccount(account string) (*calendar.Client, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil, ErrShutdown
	}
	if client, ok := sc.clients.Get(account); ok {
		return client, nil
	}

	client, err := sc.clientFactory(sc.ctx, account)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, fmt.Errorf("no Calendar client for account %s", account)
	}

	sc.clients.Add(account, client.WithMetrics(sc.metrics))
	return client, nil
}

// OperationsForAccount returns calendar operations bound to the account's
// client. The result is cheap to build and holds no per-call state.
func (sc *ServerContext) OperationsForAccount(account string) (*engine.Operations, error) {
	client, err := sc.CalendarClientForAccount(account)
	if err != nil {
		return nil, err
	}

	logger := logging.WithAccount(sc.logger, account)
	return engine.New(client, client,
		engine.WithLogger(logging.NewSlogAdapter(logger)),
		engine.WithDefaultTimeZone(sc.defaultTimeZone),
		engine.WithMetrics(sc.metrics),
	), nil
}

func (sc *ServerContext) newClient(ctx context.Context, account string) (*calendar.Client, error) {
	if sc.tokenProvider == nil || !sc.tokenProvider.HasTokenForAccount(account) {
		return nil, errors.New(google.GetAuthenticationErrorMessage(account))
	}
	return calendar.NewClientForAccount(ctx, account, sc.tokenProvider)
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.clients.Purge()
	sc.cancel()
	return nil
}
