// Package instrumentation provides OpenTelemetry metrics, tracing and
// audit logging for the calmcp MCP server.
//
// # Metrics
//
//   - http_requests_total, http_request_duration_seconds
//   - google_api_operations_total, google_api_operation_duration_seconds
//   - mcp_tool_invocations_total, mcp_tool_duration_seconds
//   - calendar_resolutions_total (by outcome)
//   - calendar_events_deleted_total, calendar_bulk_delete_aborts_total
//
// # Tracing
//
// Spans are created per tool call (tool.<name>) and per Google API call
// (google.calendar.<operation>).
//
// # Configuration
//
// Configuration is read from the environment by DefaultConfig:
//   - INSTRUMENTATION_ENABLED (default: true)
//   - METRICS_EXPORTER: prometheus, otlp, stdout (default: prometheus)
//   - TRACING_EXPORTER: otlp, stdout, none (default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT, OTEL_EXPORTER_OTLP_INSECURE
//   - OTEL_TRACES_SAMPLER_ARG (default: 0.1)
//   - AUDIT_LOGGING_ENABLED, AUDIT_LOGGING_INCLUDE_ARGUMENTS
package instrumentation
