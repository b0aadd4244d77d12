package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/teemow/calmcp/internal/calendar"
	"github.com/teemow/calmcp/internal/config"
	"github.com/teemow/calmcp/internal/google"
	"github.com/teemow/calmcp/internal/logging"
	"github.com/teemow/calmcp/internal/resolver"
	"github.com/teemow/calmcp/internal/server"
)

func newCalendarsCmd() *cobra.Command {
	var account string

	cmd := &cobra.Command{
		Use:   "calendars",
		Short: "List the calendars visible to an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := cliServerContext(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = sc.Shutdown() }()

			client, err := sc.CalendarClientForAccount(account)
			if err != nil {
				return err
			}
			calendars, err := client.CalendarList(cmd.Context())
			if err != nil {
				return err
			}

			printCalendars(cmd.OutOrStdout(), calendars)
			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", google.DefaultAccount, "Google account name")
	return cmd
}

func newResolveCmd() *cobra.Command {
	var account string

	cmd := &cobra.Command{
		Use:   "resolve [name]",
		Short: "Resolve a calendar name against the account's calendars",
		Long: `Resolve a calendar ID or name the same way the MCP tools do: exact name,
ID or substring first, then the closest name by edit distance. Without a
name the available calendars are listed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := cliServerContext(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = sc.Shutdown() }()

			ops, err := sc.OperationsForAccount(account)
			if err != nil {
				return err
			}

			name := strings.Join(args, " ")
			sel, err := ops.Select(cmd.Context(), name)
			if err != nil {
				return err
			}

			printSelection(cmd.OutOrStdout(), name, sel)
			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", google.DefaultAccount, "Google account name")
	return cmd
}

// cliServerContext builds a server context for one-shot commands. Logs
// go to stderr so command output stays clean.
func cliServerContext(ctx context.Context) (*server.ServerContext, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	logger := logging.New(os.Stderr, logging.Options{Debug: cfg.Server.Debug})

	return server.NewServerContext(ctx,
		server.WithLogger(logger),
		server.WithTokenProvider(newTokenProvider(cfg, logger)),
		server.WithDefaultTimeZone(cfg.Calendar.DefaultTimeZone),
	)
}

func printCalendars(w io.Writer, calendars []calendar.CalendarInfo) {
	headerColor := color.New(color.FgCyan, color.Bold).SprintFunc()
	primaryColor := color.New(color.FgGreen, color.Bold).SprintFunc()
	subtle := color.New(color.FgHiBlack).SprintFunc()

	if len(calendars) == 0 {
		fmt.Fprintln(w, "No calendars found for this user.")
		return
	}

	for _, cal := range calendars {
		line := headerColor(cal.Summary)
		if cal.Primary {
			line += " " + primaryColor("[primary]")
		}
		fmt.Fprintln(w, line)
		fmt.Fprintf(w, "  %s %s\n", subtle("id:"), cal.ID)
		fmt.Fprintf(w, "  %s %s\n", subtle("access:"), cal.AccessRole)
		if cal.TimeZone != "" {
			fmt.Fprintf(w, "  %s %s\n", subtle("time zone:"), cal.TimeZone)
		}
	}
}

// printSelection marks a match or a miss. A blank name only lists the
// calendars and gets no mark.
func printSelection(w io.Writer, name string, sel resolver.Selection) {
	matchColor := color.New(color.FgGreen, color.Bold).SprintFunc()
	warnColor := color.New(color.FgRed, color.Bold).SprintFunc()

	switch {
	case sel.Matched():
		fmt.Fprintf(w, "%s %s\n", matchColor("✓"), sel.Message)
	case strings.TrimSpace(name) == "":
		fmt.Fprintln(w, sel.String())
	default:
		fmt.Fprintf(w, "%s %s\n", warnColor("✗"), sel.String())
	}
}
