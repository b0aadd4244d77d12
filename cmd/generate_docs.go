package cmd

import (
	"context"
	"fmt"
	"os"
	"slices"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cobra"

	"github.com/teemow/calmcp/internal/server"
	"github.com/teemow/calmcp/internal/tools/calendar_tools"
)

func newGenerateDocsCmd() *cobra.Command {
	var (
		outputFile string
	)

	cmd := &cobra.Command{
		Use:   "generate-docs",
		Short: "Generate MCP tool documentation",
		Long: `Generate markdown documentation for all available MCP tools.
This command introspects the registered tools and outputs their documentation
in markdown format, ensuring the documentation is always accurate and in sync
with the actual tool implementations.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerateDocs(outputFile)
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

func runGenerateDocs(outputFile string) error {
	// Tool definitions do not need credentials.
	serverContext, err := server.NewServerContext(context.Background())
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		_ = serverContext.Shutdown()
	}()

	// Register write tools too so every tool is documented.
	mcpSrv, err := newMCPServer(serverContext, false)
	if err != nil {
		return err
	}

	serverTools := mcpSrv.ListTools()
	tools := make([]mcp.Tool, 0, len(serverTools))
	for _, serverTool := range serverTools {
		tools = append(tools, serverTool.Tool)
	}

	markdown := generateToolsMarkdown(tools)

	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(markdown), 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Documentation written to: %s\n", outputFile)
	} else {
		fmt.Print(markdown)
	}

	return nil
}

// generateToolsMarkdown renders a reference page: read tools first, then
// write tools, each with an argument table.
func generateToolsMarkdown(tools []mcp.Tool) string {
	var sb strings.Builder

	sb.WriteString("# calmcp Tool Reference\n\n")
	sb.WriteString("Generated from the registered tool definitions by `calmcp generate-docs`.\n\n")

	sb.WriteString("Every tool takes an optional `account` argument naming the Google account ")
	sb.WriteString("(default `default`). Authorize each account once with `calmcp login --account <name>`.\n\n")

	byCategory := groupToolsByCategory(tools)
	for _, category := range toolCategories {
		categoryTools := byCategory[category]
		if len(categoryTools) == 0 {
			continue
		}
		slices.SortFunc(categoryTools, func(a, b mcp.Tool) int {
			return strings.Compare(a.Name, b.Name)
		})

		fmt.Fprintf(&sb, "## %s\n\n", category)
		if category == categoryWrite {
			sb.WriteString("Registered only when the server runs with `--yolo`.\n\n")
		}
		for _, tool := range categoryTools {
			sb.WriteString(generateToolMarkdown(tool))
		}
	}

	return sb.String()
}

const (
	categoryRead  = "Read Tools"
	categoryWrite = "Write Tools"
	categoryOther = "Other Tools"
)

var toolCategories = []string{categoryRead, categoryWrite, categoryOther}

var writeTools = map[string]bool{
	calendar_tools.ToolCreateEvent:       true,
	calendar_tools.ToolQuickCreateEvent:  true,
	calendar_tools.ToolDeleteByQuery:     true,
	calendar_tools.ToolDeleteByDateRange: true,
	calendar_tools.ToolDeleteRecurring:   true,
	calendar_tools.ToolClearAllEvents:    true,
}

func groupToolsByCategory(tools []mcp.Tool) map[string][]mcp.Tool {
	categories := make(map[string][]mcp.Tool)
	for _, tool := range tools {
		category := getCategoryFromToolName(tool.Name)
		categories[category] = append(categories[category], tool)
	}
	return categories
}

func getCategoryFromToolName(name string) string {
	switch {
	case !strings.HasPrefix(name, "calendar_"):
		return categoryOther
	case writeTools[name]:
		return categoryWrite
	default:
		return categoryRead
	}
}

func generateToolMarkdown(tool mcp.Tool) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "### `%s`\n\n", tool.Name)
	if tool.Description != "" {
		fmt.Fprintf(&sb, "%s\n\n", tool.Description)
	}

	names := make([]string, 0, len(tool.InputSchema.Properties))
	for name := range tool.InputSchema.Properties {
		names = append(names, name)
	}
	if len(names) == 0 {
		return sb.String()
	}
	sort.Strings(names)

	sb.WriteString("| argument | required | description |\n")
	sb.WriteString("|---|---|---|\n")
	for _, name := range names {
		prop, _ := tool.InputSchema.Properties[name].(map[string]any)
		required := "no"
		if slices.Contains(tool.InputSchema.Required, name) {
			required = "yes"
		}
		fmt.Fprintf(&sb, "| `%s` | %s | %s |\n", name, required, propertyDescription(prop))
	}
	sb.WriteString("\n")

	return sb.String()
}

func propertyDescription(prop map[string]any) string {
	if desc, ok := prop["description"].(string); ok && desc != "" {
		return strings.ReplaceAll(desc, "|", "\\|")
	}
	if t, ok := prop["type"].(string); ok {
		return t
	}
	return "any"
}
