// Package resolver turns a human-entered calendar name into a calendar ID.
//
// Matching prefers exact names, IDs and substrings in directory order and
// falls back to a bounded edit-distance match. When nothing qualifies the
// caller receives the full directory so the user can pick again.
package resolver
