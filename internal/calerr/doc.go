// Package calerr defines the failure taxonomy shared by the calendar
// adapter, the event operations and the MCP tool handlers.
//
// Every failure that reaches a caller is one of four kinds:
// InvalidInput, NotFound, UpstreamUnavailable or Unexpected. The rendered
// message always starts with the prefix for its kind followed by the
// original detail.
package calerr
