package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"

	"github.com/teemow/calmcp/internal/batch"
	"github.com/teemow/calmcp/internal/calerr"
)

func TestEventResponse_String(t *testing.T) {
	assert.Equal(t, "Event created successfully (ID: e1)", EventResponse{Message: "Event created successfully", EventID: mo.Some("e1")}.String())
	assert.Equal(t, "Event created successfully", EventResponse{Message: "Event created successfully"}.String())
}

func TestDeletionOutcome_Message(t *testing.T) {
	tests := []struct {
		name    string
		outcome DeletionOutcome
		want    string
	}{
		{
			name:    "query with matches",
			outcome: DeletionOutcome{Kind: DeleteByQuery, CalendarID: "c1", Query: mo.Some("sync"), Bulk: batch.Result{Completed: 3, Total: 3}},
			want:    "Successfully deleted 3 event(s) matching the query: sync in calendar c1.",
		},
		{
			name:    "query without matches",
			outcome: DeletionOutcome{Kind: DeleteByQuery, CalendarID: "c1", Query: mo.Some("sync")},
			want:    "No events found matching the query: sync in calendar c1.",
		},
		{
			name:    "range without matches",
			outcome: DeletionOutcome{Kind: DeleteByRange, CalendarID: "c1"},
			want:    "No events found in the specified date range in calendar c1.",
		},
		{
			name:    "clear all",
			outcome: DeletionOutcome{Kind: ClearAll, CalendarID: "c1", Bulk: batch.Result{Completed: 4, Total: 4}},
			want:    "All events in calendar c1 have been deleted.",
		},
		{
			name: "aborted",
			outcome: DeletionOutcome{Kind: ClearAll, CalendarID: "c1", Bulk: batch.Result{
				Completed: 2, Total: 5, Err: calerr.Upstream("deleting events", errors.New("rate limited")),
			}},
			want: "Failed to connect to Google Calendar API: rate limited (deleted 2 of 5 before failure)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.outcome.Message())
		})
	}
}

func TestDeletionKind_Operation(t *testing.T) {
	assert.Equal(t, "delete_by_query", DeleteByQuery.Operation())
	assert.Equal(t, "delete_by_range", DeleteByRange.Operation())
	assert.Equal(t, "clear_all", ClearAll.Operation())
}

func TestFormatError(t *testing.T) {
	assert.Empty(t, FormatError(nil))
	assert.Equal(t, "Not found: event e1", FormatError(calerr.NotFoundf("event e1")))
	assert.Equal(t, "Unexpected error: context canceled", FormatError(context.Canceled))
}
