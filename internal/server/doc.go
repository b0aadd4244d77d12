// Package server provides the MCP server context and the HTTP side of
// calmcp.
//
// ServerContext caches one Google Calendar client per account in an
// expiring LRU and builds engine.Operations for tool handlers. Clients
// are created from a google.TokenProvider or, in tests, from a
// ClientFactory.
//
// HTTPServer serves the MCP streamable HTTP transport at /mcp behind a
// per-IP token bucket limiter (proxy headers only when trusted), together with the /healthz, /readyz and
// /healthz/detailed endpoints. MetricsServer exposes Prometheus metrics on
// a separate address.
package server
