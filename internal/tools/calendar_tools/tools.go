package calendar_tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/samber/mo"

	"github.com/teemow/calmcp/internal/calendar"
	"github.com/teemow/calmcp/internal/calerr"
	"github.com/teemow/calmcp/internal/engine"
	"github.com/teemow/calmcp/internal/instrumentation"
	"github.com/teemow/calmcp/internal/server"
	"github.com/teemow/calmcp/internal/tools/common"
)

// Tool names.
const (
	ToolSelect            = "calendar_select"
	ToolListCalendars     = "calendar_list_calendars"
	ToolListEvents        = "calendar_list_events"
	ToolCreateEvent       = "calendar_create_event"
	ToolQuickCreateEvent  = "calendar_quick_create_event"
	ToolDeleteByQuery     = "calendar_delete_events_by_query"
	ToolDeleteByDateRange = "calendar_delete_events_by_date_range"
	ToolDeleteRecurring   = "calendar_delete_recurring_event"
	ToolClearAllEvents    = "calendar_clear_all_events"
)

// toolHandler computes a tool's response text.
type toolHandler func(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (string, error)

// RegisterCalendarTools registers the calendar tools with the MCP server.
// Tools that create or delete events are only registered when readOnly is
// false.
func RegisterCalendarTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	registerCalendarListTools(s, sc)
	registerEventTools(s, sc, readOnly)
	if !readOnly {
		registerDeleteTools(s, sc)
	}
	return nil
}

func addTool(s *mcpserver.MCPServer, sc *server.ServerContext, tool mcp.Tool, operation string, handler toolHandler) {
	s.AddTool(tool, common.InstrumentedToolHandler(tool.Name, operation, sc, bind(sc, handler)))
}

func bind(sc *server.ServerContext, handler toolHandler) common.ResultHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) mo.Result[string] {
		return mo.TupleToResult(handler(ctx, request, sc))
	}
}

func withAccount() mcp.ToolOption {
	return mcp.WithString("account",
		mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
	)
}

// operationsFor returns engine operations for the request's account. A
// client that cannot be created is reported as an upstream failure.
func operationsFor(request mcp.CallToolRequest, sc *server.ServerContext) (*engine.Operations, error) {
	ops, err := sc.OperationsForAccount(common.GetAccountFromArgs(request.GetArguments()))
	if err != nil {
		return nil, calerr.Upstream("connecting", err)
	}
	return ops, nil
}

func clientFor(request mcp.CallToolRequest, sc *server.ServerContext) (*calendar.Client, error) {
	client, err := sc.CalendarClientForAccount(common.GetAccountFromArgs(request.GetArguments()))
	if err != nil {
		return nil, calerr.Upstream("connecting", err)
	}
	return client, nil
}

// Operation labels for audit records.
const (
	opList   = instrumentation.OperationList
	opGet    = instrumentation.OperationGet
	opCreate = instrumentation.OperationCreate
	opDelete = instrumentation.OperationDelete
)
