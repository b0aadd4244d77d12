// Package cmd implements the command-line interface for calmcp.
//
// This package provides the following commands:
//   - serve: Start the MCP server exposing the calendar tools
//   - calendars: List the calendars visible to an account
//   - resolve: Resolve a calendar name the way the tools do
//   - login: Authorize an account and store its token
//   - generate-docs: Generate markdown documentation for all MCP tools
//   - version: Display version information
package cmd
