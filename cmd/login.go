package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/teemow/calmcp/internal/config"
	"github.com/teemow/calmcp/internal/google"
	"github.com/teemow/calmcp/internal/logging"
)

func newLoginCmd() *cobra.Command {
	var account string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authorize calendar access for an account",
		Long: `Print the Google consent URL, read the authorization code from stdin and
store the resulting token in google.token_dir for the given account.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}

			conf, err := google.LoadOAuthConfig(cfg.Google.CredentialsFile)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Visit this URL to authorize account %q:\n\n%s\n\n", account, google.GetAuthURL(conf, "calmcp-"+account))
			fmt.Fprint(out, "Authorization code: ")

			code, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && strings.TrimSpace(code) == "" {
				return fmt.Errorf("failed to read authorization code: %w", err)
			}
			code = strings.TrimSpace(code)
			if code == "" {
				return fmt.Errorf("authorization code is empty")
			}

			if err := google.ExchangeAndSave(cmd.Context(), conf, cfg.Google.TokenDir, account, code); err != nil {
				return err
			}

			stored := "token"
			if tok, err := google.LoadTokenForAccount(cfg.Google.TokenDir, account); err == nil {
				stored = logging.SanitizeToken(tok.AccessToken)
			}
			fmt.Fprintf(out, "%s stored %s for account %q\n", color.New(color.FgGreen, color.Bold).Sprint("✓"), stored, account)
			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", google.DefaultAccount, "Google account name")
	return cmd
}
