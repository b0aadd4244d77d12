package calendar_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/calmcp/internal/server"
	"github.com/teemow/calmcp/internal/tools/common"
)

func registerCalendarListTools(s *mcpserver.MCPServer, sc *server.ServerContext) {
	selectTool := mcp.NewTool(ToolSelect,
		mcp.WithDescription("Resolves a calendar ID or name (fuzzy matched) to a calendar. If no name is given, lists all available calendars."),
		withAccount(),
		mcp.WithString("calendarName",
			mcp.Description("The ID or name of the calendar to select (e.g., 'primary' or 'Work Calendar'). If empty, lists all available calendars."),
		),
	)
	addTool(s, sc, selectTool, opGet, handleSelectCalendar)

	listCalendarsTool := mcp.NewTool(ToolListCalendars,
		mcp.WithDescription("List all calendars accessible to the user"),
		withAccount(),
	)
	addTool(s, sc, listCalendarsTool, opList, handleListCalendars)
}

func handleSelectCalendar(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (string, error) {
	ops, err := operationsFor(request, sc)
	if err != nil {
		return "", err
	}

	sel, err := ops.Select(ctx, common.StringArg(request.GetArguments(), "calendarName"))
	if err != nil {
		return "", err
	}
	return sel.String(), nil
}

func handleListCalendars(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (string, error) {
	client, err := clientFor(request, sc)
	if err != nil {
		return "", err
	}

	calendars, err := client.CalendarList(ctx)
	if err != nil {
		return "", err
	}
	if len(calendars) == 0 {
		return "No calendars found for this user.", nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d calendar(s):\n\n", len(calendars))
	for i, cal := range calendars {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, cal.Summary)
		fmt.Fprintf(&sb, "   ID: %s\n", cal.ID)
		fmt.Fprintf(&sb, "   Access Role: %s\n", cal.AccessRole)
		if cal.Primary {
			sb.WriteString("   [PRIMARY]\n")
		}
		if cal.Description != "" {
			fmt.Fprintf(&sb, "   Description: %s\n", cal.Description)
		}
		if cal.TimeZone != "" {
			fmt.Fprintf(&sb, "   Time Zone: %s\n", cal.TimeZone)
		}
		sb.WriteString("\n")
	}
	return sb.String(), nil
}
