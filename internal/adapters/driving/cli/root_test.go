package cli

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/recall/internal/core/domain"
)

func TestRootCmd_Subcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{
		"ask", "search", "index", "watch", "document", "stats", "memory",
		"op", "reembed", "settings", "mcp", "tui", "version",
	} {
		assert.True(t, names[want], "missing command %s", want)
	}
}

func TestRootCmd_PersistentFlags(t *testing.T) {
	ws := rootCmd.PersistentFlags().Lookup("workspace")
	require.NotNil(t, ws)
	assert.Equal(t, "w", ws.Shorthand)
	assert.Equal(t, ".", ws.DefValue)

	v := rootCmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, v)
	assert.Equal(t, "v", v.Shorthand)
}

func TestVersionCmd(t *testing.T) {
	out, err := execute("version")
	require.NoError(t, err)
	assert.Equal(t, "recall version dev\n", out)
}

func TestSetup_Bootstrap(t *testing.T) {
	var (
		gotWorkspace string
		gotSettings  bool
		calls        int
		released     bool
	)
	SetBootstrap(func(_ context.Context, workspace string, settingsOnly bool) (*Services, func(), error) {
		calls++
		gotWorkspace, gotSettings = workspace, settingsOnly
		ts, _ := setupTestServices()
		return &Services{Settings: ts.settings}, func() { released = true }, nil
	})
	defer func() {
		SetBootstrap(nil)
		SetServices(nil)
		release()
	}()

	_, err := execute("settings", "keys", "-w", "/tmp/notes")
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "/tmp/notes", gotWorkspace)
	assert.True(t, gotSettings)

	release()
	assert.True(t, released)

	_, err = execute("version")
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "version must not bootstrap")
}

func TestSetup_BootstrapError(t *testing.T) {
	SetBootstrap(func(context.Context, string, bool) (*Services, func(), error) {
		return nil, nil, errors.New("embedding provider unreachable")
	})
	defer SetBootstrap(nil)

	_, err := execute("stats")
	assert.EqualError(t, err, "embedding provider unreachable")
}

func TestReembedCmd(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	ts.reembed.report = domain.ReembedReport{Provider: "ollama"}
	out, err := execute("reembed")
	require.NoError(t, err)
	assert.Contains(t, out, "All documents are embedded with ollama.")

	ts.reembed.report = domain.ReembedReport{Provider: "ollama", Total: 3, Done: 2, Failed: 1}
	out, err = execute("reembed")
	require.NoError(t, err)
	assert.Contains(t, out, "Re-embedded 2 of 3 documents with ollama (1 failed).")
}

func TestCommands_NotConfigured(t *testing.T) {
	SetServices(nil)

	tests := [][]string{
		{"ask", "q"},
		{"index"},
		{"watch"},
		{"stats"},
		{"memory", "prune"},
		{"op", "ls"},
		{"reembed"},
		{"settings", "keys"},
		{"mcp", "serve"},
	}
	for _, args := range tests {
		_, err := execute(args...)
		assert.ErrorContains(t, err, "not configured", args)
	}
}

func TestMCPAndTUIPorts(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	m := mcpPorts()
	assert.Equal(t, ts.retrieval, m.Retrieval)
	assert.Equal(t, ts.memory, m.Memory)
	assert.Equal(t, domain.DefaultRetrievalSettings().HybridOptions(), m.SearchOptions)
	require.NoError(t, m.Validate())

	p := tuiPorts()
	assert.Equal(t, ts.query, p.Query)
	assert.Equal(t, ts.sync, p.Sync)
	require.NoError(t, p.Validate())
}

func TestColourDisabledForBuffers(t *testing.T) {
	st := newStyler(nil)
	assert.Equal(t, "plain", st.Title("plain"))
}
