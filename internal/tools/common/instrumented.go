package common

import (
	"context"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/samber/mo"
	"go.opentelemetry.io/otel/attribute"

	"github.com/teemow/calmcp/internal/calerr"
	"github.com/teemow/calmcp/internal/engine"
	"github.com/teemow/calmcp/internal/instrumentation"
	"github.com/teemow/calmcp/internal/logging"
	"github.com/teemow/calmcp/internal/server"
)

// ResultHandler is a tool handler whose outcome is either response text or
// a classified error.
type ResultHandler func(ctx context.Context, request mcp.CallToolRequest) mo.Result[string]

// auditedArguments are copied into audit records when argument logging is on.
var auditedArguments = []string{"calendarName", "eventId", "instanceDate", "startDate", "endDate"}

// InstrumentedToolHandler adapts handler to mcp-go and wraps it with a
// tool span, invocation metrics and an audit record naming operation.
// Domain failures are returned as error results, never as Go errors.
//
// Usage:
//
//	s.AddTool(myTool, common.InstrumentedToolHandler("my_tool", "list", sc, handler))
func InstrumentedToolHandler(toolName, operation string, sc *server.ServerContext, handler ResultHandler) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		account := GetAccountFromArgs(args)

		ctx, span := instrumentation.StartToolSpan(ctx, toolName, attribute.String(instrumentation.SpanAttrAccount, account))
		defer span.End()

		start := time.Now()
		invocation := instrumentation.NewToolInvocation(toolName).
			WithAccount(account).
			WithOperation(operation).
			WithArguments(auditArguments(args)).
			WithSpanContext(ctx)

		res := handler(ctx, request)
		duration := time.Since(start)

		status := instrumentation.StatusSuccess
		if err := res.Error(); err != nil {
			status = instrumentation.StatusError
			kind := calerr.KindOf(err).String()
			invocation.Complete(kind, err.Error())
			callLogger(sc, toolName, operation, account).Debug("tool call failed",
				"error_kind", kind, logging.Err(err), "duration", duration)
			span.SetAttributes(attribute.String(instrumentation.SpanAttrErrorKind, kind))
			instrumentation.SetSpanError(span, err)
		} else {
			invocation.Complete("", "")
			callLogger(sc, toolName, operation, account).Debug("tool call completed", "duration", duration)
			instrumentation.SetSpanSuccess(span)
		}

		sc.Metrics().RecordToolInvocation(ctx, toolName, status, account, duration)
		sc.AuditLogger().LogToolInvocation(ctx, invocation)

		return ToolResult(res), nil
	}
}

func callLogger(sc *server.ServerContext, toolName, operation, account string) *slog.Logger {
	return logging.WithAccount(logging.WithOperation(logging.WithTool(sc.Logger(), toolName), operation), account)
}

// ToolResult renders res as text, or as an error result carrying the
// taxonomy-prefixed message.
func ToolResult(res mo.Result[string]) *mcp.CallToolResult {
	text, err := res.Get()
	if err != nil {
		return mcp.NewToolResultError(engine.FormatError(err))
	}
	return mcp.NewToolResultText(text)
}

func auditArguments(args map[string]any) map[string]string {
	out := make(map[string]string)
	for _, name := range auditedArguments {
		if v := StringArg(args, name); v != "" {
			out[name] = v
		}
	}
	return out
}
