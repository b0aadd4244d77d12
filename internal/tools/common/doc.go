// Package common provides helpers shared by the MCP tool packages:
// argument extraction, account selection and the instrumented handler
// wrapper that renders results and records spans, metrics and audit logs.
package common
