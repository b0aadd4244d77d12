// Package logging provides structured logging helpers built on log/slog.
//
// It centralizes attribute names so tool handlers, the calendar engine and
// the server log the same keys:
//
//	logger := logging.WithTool(slog.Default(), "calendar_clear_all_events")
//	logger.Info("deleted events", logging.Calendar(id), logging.Count(n))
//
// Tokens must never be logged directly; use SanitizeToken.
package logging
