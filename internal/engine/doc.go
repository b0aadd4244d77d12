// Package engine implements the calendar event operations exposed as MCP
// tools: calendar selection, event creation and listing, and the bulk
// deletion flows (by query, by date range, recurring instance, clear all).
//
// Operations talk to the remote service only through the calendar.Directory
// and calendar.EventStore ports, so the same code runs against the Google
// adapter and in-memory fakes. Every failure carries a calerr kind.
//
// Bulk deletions run strictly one event at a time and stop at the first
// failure. The count reached before the failure is reported through
// DeletionOutcome.
package engine
