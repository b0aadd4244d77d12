// Package google handles OAuth2 configuration and token storage for the
// Google Calendar API.
//
// Tokens are stored per account as JSON files in a cache directory. The
// TokenProvider interface lets the server obtain refreshing token sources
// without knowing where tokens live.
package google
