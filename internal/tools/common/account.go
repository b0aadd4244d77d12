package common

import (
	"github.com/teemow/calmcp/internal/google"
)

// GetAccountFromArgs returns the "account" argument, or "default" when it
// is missing, empty or not a string.
func GetAccountFromArgs(args map[string]any) string {
	if account, ok := args["account"].(string); ok && account != "" {
		return account
	}
	return google.DefaultAccount
}
