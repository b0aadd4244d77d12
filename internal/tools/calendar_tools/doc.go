// Package calendar_tools exposes the calendar operations as MCP tools.
//
// Every tool accepts an optional account argument and reports failures as
// error results whose text carries the failure kind. Tools that create or
// delete events are registered only when the server runs with write access.
package calendar_tools
