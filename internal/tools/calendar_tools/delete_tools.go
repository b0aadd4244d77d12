package calendar_tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/calmcp/internal/engine"
	"github.com/teemow/calmcp/internal/server"
	"github.com/teemow/calmcp/internal/tools/common"
)

func registerDeleteTools(s *mcpserver.MCPServer, sc *server.ServerContext) {
	deleteByQueryTool := mcp.NewTool(ToolDeleteByQuery,
		mcp.WithDescription("Deletes events from the named calendar matching a search query. Events are deleted one at a time; the first failure stops the run and reports how many were deleted."),
		withAccount(),
		mcp.WithString("calendarName",
			mcp.Required(),
			mcp.Description("The ID or name of the calendar to delete events from (fuzzy matched)."),
		),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("The search query to match event summaries (e.g., 'Team Meeting')."),
		),
		mcp.WithString("startDate",
			mcp.Description("Optional start date to filter events (ISO 8601 format, e.g., '2025-06-04T00:00:00')."),
		),
		mcp.WithString("endDate",
			mcp.Description("Optional end date to filter events (ISO 8601 format, e.g., '2025-06-04T23:59:59')."),
		),
	)
	addTool(s, sc, deleteByQueryTool, opDelete, handleDeleteByQuery)

	deleteByRangeTool := mcp.NewTool(ToolDeleteByDateRange,
		mcp.WithDescription("Deletes all events from the named calendar within a date range. Possible errors: invalid date format, authentication issues, or API errors."),
		withAccount(),
		mcp.WithString("calendarName",
			mcp.Required(),
			mcp.Description("The ID or name of the calendar to delete events from (fuzzy matched)."),
		),
		mcp.WithString("startDate",
			mcp.Required(),
			mcp.Description("The start date and time in ISO 8601 format (e.g., '2025-06-04T00:00:00')."),
		),
		mcp.WithString("endDate",
			mcp.Required(),
			mcp.Description("The end date and time in ISO 8601 format (e.g., '2025-06-04T23:59:59')."),
		),
	)
	addTool(s, sc, deleteByRangeTool, opDelete, handleDeleteByRange)

	deleteRecurringTool := mcp.NewTool(ToolDeleteRecurring,
		mcp.WithDescription("Deletes an event, or one instance of a recurring event, by event ID. A missing event is reported, not treated as an error."),
		withAccount(),
		mcp.WithString("calendarName",
			mcp.Required(),
			mcp.Description("The ID or name of the calendar containing the event (fuzzy matched)."),
		),
		mcp.WithString(engine.FieldEventID,
			mcp.Required(),
			mcp.Description("The unique ID of the event to delete (e.g., 'abc123xyz789')."),
		),
		mcp.WithString(engine.FieldInstanceDate,
			mcp.Description("Optional: specific instance date to delete in ISO 8601 format (e.g., '2025-06-04T10:00:00'). If not provided, deletes all instances."),
		),
	)
	addTool(s, sc, deleteRecurringTool, opDelete, handleDeleteRecurring)

	clearAllTool := mcp.NewTool(ToolClearAllEvents,
		mcp.WithDescription("Deletes ALL events from the named calendar. Use with caution."),
		withAccount(),
		mcp.WithString("calendarName",
			mcp.Required(),
			mcp.Description("The ID or name of the calendar to clear (fuzzy matched)."),
		),
	)
	addTool(s, sc, clearAllTool, opDelete, handleClearAll)
}

func handleDeleteByQuery(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (string, error) {
	args := request.GetArguments()

	ops, err := operationsFor(request, sc)
	if err != nil {
		return "", err
	}
	return deletion(ops.DeleteByQuery(ctx,
		common.StringArg(args, "calendarName"),
		common.StringArg(args, "query"),
		common.OptionalString(args, "startDate"),
		common.OptionalString(args, "endDate"),
	))
}

func handleDeleteByRange(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (string, error) {
	args := request.GetArguments()

	ops, err := operationsFor(request, sc)
	if err != nil {
		return "", err
	}
	return deletion(ops.DeleteByRange(ctx,
		common.StringArg(args, "calendarName"),
		common.StringArg(args, engine.FieldStartDate),
		common.StringArg(args, engine.FieldEndDate),
	))
}

func handleDeleteRecurring(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (string, error) {
	args := request.GetArguments()

	ops, err := operationsFor(request, sc)
	if err != nil {
		return "", err
	}
	return ops.DeleteInstance(ctx,
		common.StringArg(args, "calendarName"),
		common.StringArg(args, engine.FieldEventID),
		common.OptionalString(args, engine.FieldInstanceDate),
	)
}

func handleClearAll(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (string, error) {
	ops, err := operationsFor(request, sc)
	if err != nil {
		return "", err
	}
	return deletion(ops.ClearAll(ctx, common.StringArg(request.GetArguments(), "calendarName")))
}

// deletion renders a bulk outcome. A run that stopped early keeps its
// error kind and reports the count reached.
func deletion(outcome engine.DeletionOutcome, err error) (string, error) {
	if err == nil {
		return outcome.Message(), nil
	}
	if outcome.Bulk.Failed() {
		return "", &partialError{msg: outcome.Message(), err: err}
	}
	return "", err
}

// partialError carries the classified failure of a bulk run together with
// the rendered partial count.
type partialError struct {
	msg string
	err error
}

func (e *partialError) Error() string { return e.msg }
func (e *partialError) Unwrap() error { return e.err }
