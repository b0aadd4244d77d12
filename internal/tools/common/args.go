package common

import (
	"strings"

	"github.com/samber/mo"

	"github.com/teemow/calmcp/internal/calerr"
)

// StringArg returns the named string argument, or "" when it is absent or
// not a string.
func StringArg(args map[string]any, name string) string {
	v, _ := args[name].(string)
	return v
}

// OptionalString returns the named argument when it is a non-blank string.
func OptionalString(args map[string]any, name string) mo.Option[string] {
	v := StringArg(args, name)
	if strings.TrimSpace(v) == "" {
		return mo.None[string]()
	}
	return mo.Some(v)
}

// RequiredString returns the named argument or an InvalidInput error.
func RequiredString(args map[string]any, name string) (string, error) {
	v, ok := OptionalString(args, name).Get()
	if !ok {
		return "", calerr.Invalidf(name, "%s is required.", name)
	}
	return v, nil
}
