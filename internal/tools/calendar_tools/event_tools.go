package calendar_tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/samber/mo"

	"github.com/teemow/calmcp/internal/calendar"
	"github.com/teemow/calmcp/internal/engine"
	"github.com/teemow/calmcp/internal/server"
	"github.com/teemow/calmcp/internal/tools/common"
)

func registerEventTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) {
	listEventsTool := mcp.NewTool(ToolListEvents,
		mcp.WithDescription("Lists events from a Google Calendar specified by name (fuzzy matched). Possible errors: no matching calendar, invalid date format, authentication issues, or API errors."),
		withAccount(),
		mcp.WithString("calendarName",
			mcp.Required(),
			mcp.Description("The name of the calendar to list events from (e.g., 'ai test'). Supports fuzzy matching."),
		),
		mcp.WithString("query",
			mcp.Description("Optional search query to match event summaries (e.g., 'Team Meeting')."),
		),
		mcp.WithString("startDate",
			mcp.Description("Optional start date to filter events (ISO 8601 format, e.g., '2025-06-04T00:00:00')."),
		),
		mcp.WithString("endDate",
			mcp.Description("Optional end date to filter events (ISO 8601 format, e.g., '2025-06-04T23:59:59')."),
		),
	)
	addTool(s, sc, listEventsTool, opList, handleListEvents)

	if readOnly {
		return
	}

	createEventTool := mcp.NewTool(ToolCreateEvent,
		mcp.WithDescription("Creates a new event. Without a calendar name the event goes to the primary calendar. Possible errors: invalid date format, authentication issues, or API errors."),
		withAccount(),
		mcp.WithString("calendarName",
			mcp.Description("Optional name of the calendar to create the event in (fuzzy matched). Defaults to the primary calendar."),
		),
		mcp.WithString("summary",
			mcp.Required(),
			mcp.Description("The title or name of the event (e.g., 'Team Meeting')."),
		),
		mcp.WithString("location",
			mcp.Description("The physical or virtual location of the event (e.g., 'Conference Room A' or 'Zoom')."),
		),
		mcp.WithString("description",
			mcp.Description("A detailed description of the event (e.g., agenda or notes)."),
		),
		mcp.WithString("startDateTime",
			mcp.Required(),
			mcp.Description("The start date and time in ISO 8601 format (e.g., '2025-06-04T10:00:00')."),
		),
		mcp.WithString("endDateTime",
			mcp.Required(),
			mcp.Description("The end date and time in ISO 8601 format (e.g., '2025-06-04T11:00:00')."),
		),
		mcp.WithString("timeZone",
			mcp.Description("The time zone for the event (e.g., 'Europe/Madrid'). Defaults to the server's configured time zone."),
		),
	)
	addTool(s, sc, createEventTool, opCreate, handleCreateEvent)

	quickCreateTool := mcp.NewTool(ToolQuickCreateEvent,
		mcp.WithDescription("Creates an event in the primary calendar from a single line: 'create event: summary, location, description, start, end'. Times are ISO 8601 and interpreted in UTC."),
		withAccount(),
		mcp.WithString(engine.FieldText,
			mcp.Required(),
			mcp.Description("The event line, e.g. 'create event: Sync, Room 4, Weekly sync, 2025-06-04T10:00:00Z, 2025-06-04T11:00:00Z'."),
		),
	)
	addTool(s, sc, quickCreateTool, opCreate, handleQuickCreateEvent)
}

func handleListEvents(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (string, error) {
	args := request.GetArguments()

	ops, err := operationsFor(request, sc)
	if err != nil {
		return "", err
	}
	return ops.List(ctx,
		common.StringArg(args, "calendarName"),
		common.OptionalString(args, "query"),
		common.OptionalString(args, "startDate"),
		common.OptionalString(args, "endDate"),
	)
}

func handleCreateEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (string, error) {
	args := request.GetArguments()

	summary, err := common.RequiredString(args, "summary")
	if err != nil {
		return "", err
	}

	spec := calendar.EventSpec{
		Summary:     summary,
		Location:    common.StringArg(args, "location"),
		Description: common.StringArg(args, "description"),
		Start:       common.StringArg(args, engine.FieldStartDateTime),
		End:         common.StringArg(args, engine.FieldEndDateTime),
		TimeZone:    common.StringArg(args, "timeZone"),
	}
	return create(ctx, request, sc, common.OptionalString(args, "calendarName"), spec)
}

func handleQuickCreateEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (string, error) {
	spec, err := engine.ParseQuickCreate(common.StringArg(request.GetArguments(), engine.FieldText))
	if err != nil {
		return "", err
	}
	return create(ctx, request, sc, mo.None[string](), spec)
}

func create(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext, calendarName mo.Option[string], spec calendar.EventSpec) (string, error) {
	ops, err := operationsFor(request, sc)
	if err != nil {
		return "", err
	}

	resp, err := ops.Create(ctx, calendarName, spec)
	if err != nil {
		return "", err
	}
	return resp.String(), nil
}
