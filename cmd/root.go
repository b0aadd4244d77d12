package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/teemow/calmcp/internal/config"
	"github.com/teemow/calmcp/internal/google"
)

// configFile is the --config flag shared by all commands.
var configFile string

// rootCmd represents the base command for the calmcp application
var rootCmd = &cobra.Command{
	Use:   "calmcp",
	Short: "Google Calendar tools for AI assistants",
	Long: `calmcp resolves calendars by fuzzy name and lists, creates and deletes
Google Calendar events. It runs as an MCP (Model Context Protocol) server
and offers a few commands for checking calendar access from the shell.`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "calmcp version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default: calmcp.yaml in ., $HOME/.config/calmcp or /etc/calmcp)")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newCalendarsCmd())
	rootCmd.AddCommand(newResolveCmd())
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
	rootCmd.AddCommand(newVersionCmd())
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "calmcp version %s\n", version)
		},
	}
}

// newTokenProvider reads tokens from the configured directory. Without a
// readable credentials file tokens cannot be refreshed and every account
// reports an authentication error.
func newTokenProvider(cfg *config.Config, logger *slog.Logger) *google.FileTokenProvider {
	conf, err := google.LoadOAuthConfig(cfg.Google.CredentialsFile)
	if err != nil {
		logger.Warn("Google OAuth client configuration not loaded",
			"credentials_file", cfg.Google.CredentialsFile,
			"error", err)
	}
	return google.NewFileTokenProvider(cfg.Google.TokenDir, conf)
}
