package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/6are8/Plan-Smart/internal/database"
)

func TestRootCommands(t *testing.T) {
	t.Parallel()

	root := newRootCmd()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"serve", "analyze", "sweep", "stats", "history", "profile", "delete-profile", "add-user", "link", "morning", "suggest"} {
		assert.Contains(t, names, want)
	}
}

func TestArgumentErrorsBeforeSetup(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "analyze without user", args: []string{"analyze"}, want: `required flag(s) "user" not set`},
		{name: "analyze with bad week", args: []string{"analyze", "-u", "u1", "-w", "next monday"}, want: "invalid --week"},
		{name: "link with bad chat", args: []string{"link", "-u", "u1", "abc"}, want: `invalid chat id "abc"`},
		{name: "profile without id", args: []string{"profile", "-u", "u1"}, want: "accepts 1 arg(s)"},
		{name: "history without user", args: []string{"history"}, want: `required flag(s) "user" not set`},
		{name: "delete without id", args: []string{"delete-profile", "-u", "u1"}, want: "accepts 1 arg(s)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			root := newRootCmd()
			root.SetArgs(tt.args)
			root.SetOut(&bytes.Buffer{})
			root.SetErr(&bytes.Buffer{})

			err := root.Execute()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSetupFailsOnMissingConfigFile(t *testing.T) {
	t.Parallel()

	root := newRootCmd()
	root.SetArgs([]string{"--config", t.TempDir() + "/missing.yaml", "sweep"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})

	require.Error(t, root.Execute())
}

func TestNewProfileView(t *testing.T) {
	t.Parallel()

	start, err := database.ParseDate("2024-06-03")
	require.NoError(t, err)

	view := newProfileView(&database.WeeklyProfile{
		ID: "p1", WeekStartDate: start, WeekEndDate: start.AddDays(6),
		Features: `{"stress_level":"hoch"}`, AnalyzedEntriesCount: 3, ConfidenceScore: 3.0 / 7,
	})
	assert.Equal(t, "2024-06-09", view.WeekEnd)
	assert.Equal(t, "Stress: hoch", view.Summary)
	require.NotNil(t, view.Features)

	unreadable := newProfileView(&database.WeeklyProfile{ID: "p2", Features: "kaputt"})
	assert.Nil(t, unreadable.Features)
	assert.Empty(t, unreadable.Summary)
}
