package cli

import (
	"bufio"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/recall/internal/core/domain"
)

func TestSettingsCommands_NeedOnlySettings(t *testing.T) {
	for _, c := range settingsCmd.Commands() {
		assert.Equal(t, servicesSettings, c.Annotations[annotationServices], c.Name())
	}
	assert.Equal(t, servicesSettings, settingsCmd.Annotations[annotationServices])
}

func TestSettingsShow(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("settings")
	require.NoError(t, err)
	assert.Contains(t, out, "[Retrieval]")
	assert.Contains(t, out, "Max results:        5")
	assert.Contains(t, out, "[Chunking]")
	assert.Contains(t, out, "Configuration is valid.")
}

func TestSettingsShow_Invalid(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.settings.invalid = errors.New("embedding provider not configured")

	out, err := execute("settings", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Warning: embedding provider not configured")
}

func TestSettingsSet(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("settings", "set", "retrieval.max_results", "8")
	require.NoError(t, err)
	assert.Equal(t, "8", ts.settings.set["retrieval.max_results"])
	assert.Contains(t, out, "retrieval.max_results = 8")

	ts.settings.invalid = domain.ErrInvalidInput
	_, err = execute("settings", "set", "retrieval.max_results", "-1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettingsKeys(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("settings", "keys")
	require.NoError(t, err)
	assert.Equal(t, "retrieval.max_results\nretrieval.context_format\n", out)
}

func TestSettingsEmbedding_Interactive(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	prev := settingsInput
	settingsInput = strings.NewReader("2\nnomic-embed-text\n")
	defer func() { settingsInput = prev }()

	out, err := execute("settings", "embedding")
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOllama, ts.settings.settings.Embedding.Provider)
	assert.Equal(t, "nomic-embed-text", ts.settings.settings.Embedding.Model)
	assert.Contains(t, out, "Embedding provider configured: Ollama (local)")
}

func TestSettingsLLM_DefaultChoice(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	prev := settingsInput
	settingsInput = strings.NewReader("\n\n")
	defer func() { settingsInput = prev }()

	_, err := execute("settings", "llm")
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOllama, ts.settings.settings.LLM.Provider)
	assert.Empty(t, ts.settings.settings.LLM.Model)
}

func TestSettingsLLM_Anthropic(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	prev := settingsInput
	settingsInput = strings.NewReader("3\n\nsk-ant\n")
	defer func() { settingsInput = prev }()

	out, err := execute("settings", "llm")
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderAnthropic, ts.settings.settings.LLM.Provider)
	assert.Contains(t, out, "Enter API key (empty to use ANTHROPIC_API_KEY)")
	assert.Contains(t, out, "LLM provider configured: Anthropic (cloud)")
}

func TestSettingsCheck(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("settings", "check")
	require.NoError(t, err)
	assert.Contains(t, out, "OK")

	ts.settings.invalid = errors.New("bad")
	_, err = execute("settings", "check")
	assert.EqualError(t, err, "bad")
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"", 1},
		{"2", 2},
		{"0", 1},
		{"9", 1},
		{"x", 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseChoice(tt.input, 3, 1), tt.input)
	}
}

func TestReadLine(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("  ollama  \nrest"))
	assert.Equal(t, "ollama", readLine(r))
	assert.Equal(t, "rest", readLine(r))
}

func TestMaskAPIKey(t *testing.T) {
	assert.Equal(t, "(not set)", displayAPIKey(""))
	assert.Equal(t, "****", maskAPIKey("short"))
	assert.Equal(t, "sk-a...wxyz", maskAPIKey("sk-abcdefghijklmnopqrstuvwxyz"))
}
