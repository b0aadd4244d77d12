package common

import (
	"testing"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/calmcp/internal/calerr"
)

func TestGetAccountFromArgs(t *testing.T) {
	tests := []struct {
		name     string
		args     map[string]any
		expected string
	}{
		{"no account specified returns default", map[string]any{}, "default"},
		{"account specified returns account", map[string]any{"account": "work"}, "work"},
		{"empty account returns default", map[string]any{"account": ""}, "default"},
		{"nil args returns default", nil, "default"},
		{"non-string account type returns default", map[string]any{"account": 123}, "default"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetAccountFromArgs(tt.args))
		})
	}
}

func TestOptionalString(t *testing.T) {
	args := map[string]any{"query": "standup", "blank": "  ", "number": 3}

	assert.Equal(t, mo.Some("standup"), OptionalString(args, "query"))
	assert.True(t, OptionalString(args, "blank").IsAbsent())
	assert.True(t, OptionalString(args, "number").IsAbsent())
	assert.True(t, OptionalString(args, "missing").IsAbsent())
	assert.Equal(t, "  ", StringArg(args, "blank"))
}

func TestRequiredString(t *testing.T) {
	v, err := RequiredString(map[string]any{"eventId": "abc"}, "eventId")
	require.NoError(t, err)
	assert.Equal(t, "abc", v)

	_, err = RequiredString(map[string]any{"eventId": ""}, "eventId")
	require.Error(t, err)
	assert.Equal(t, calerr.InvalidInput, calerr.KindOf(err))
	assert.Equal(t, "Invalid input: eventId is required.", err.Error())
}
