package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/recall/internal/core/domain"
)

func TestSearchCmd_Use(t *testing.T) {
	assert.Equal(t, "search [query]", searchCmd.Use)
	assert.Equal(t, "Search indexed documents", searchCmd.Short)
}

func TestSearchCmd_HasFlags(t *testing.T) {
	limit := searchCmd.Flags().Lookup("limit")
	require.NotNil(t, limit)
	assert.Equal(t, "n", limit.Shorthand)

	mode := searchCmd.Flags().Lookup("mode")
	require.NotNil(t, mode)
	assert.Equal(t, modeHybrid, mode.DefValue)
}

func TestSearchCmd_RequiresQuery(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute("search")
	assert.Error(t, err)
}

func TestSearchCmd_HybridUsesSettings(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("search", "running", "pods")
	require.NoError(t, err)

	assert.Equal(t, domain.SearchMethodHybrid, ts.retrieval.method)
	assert.Equal(t, "running pods", ts.retrieval.query)
	assert.Equal(t, domain.DefaultRetrievalSettings().HybridOptions(), ts.retrieval.opts)
	assert.Contains(t, out, "Results:")
	assert.Contains(t, out, "[1] Kubernetes (0.82)")
	assert.Contains(t, out, "Tags: ops")
	assert.Contains(t, out, "Pods run containers.")
}

func TestSearchCmd_FlagsOverrideSettings(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute("search", "-n", "7", "--threshold", "0.3", "pods")
	require.NoError(t, err)
	assert.Equal(t, 7, ts.retrieval.opts.Limit)
	assert.InDelta(t, 0.3, ts.retrieval.opts.Threshold, 1e-9)
}

func TestSearchCmd_Modes(t *testing.T) {
	tests := []struct {
		mode string
		want domain.SearchMethod
	}{
		{modeSemantic, domain.SearchMethodSemantic},
		{modeKeyword, domain.SearchMethodKeyword},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			ts, cleanup := setupTestServices()
			defer cleanup()

			_, err := execute("search", "--mode", tt.mode, "-n", "3", "pods")
			require.NoError(t, err)
			assert.Equal(t, tt.want, ts.retrieval.method)
			assert.Equal(t, 3, ts.retrieval.limit)
		})
	}
}

func TestSearchCmd_UnknownMode(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute("search", "--mode", "fuzzy", "pods")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSearchCmd_NoResults(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.retrieval.results = nil

	out, err := execute("search", "nothing")
	require.NoError(t, err)
	assert.Contains(t, out, "No results found.")
}

func TestSearchCmd_JSONOutput(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("search", "--json", "pods")
	require.NoError(t, err)
	assert.Contains(t, out, `"id": "doc_k8s"`)
	assert.Contains(t, out, `"semanticScore": 0.9`)
	assert.Contains(t, out, `"keywordScore": 0.6`)
}

func TestSearchCmd_NotConfigured(t *testing.T) {
	SetServices(nil)

	_, err := execute("search", "pods")
	assert.EqualError(t, err, "search service not configured")
}

func TestRetrievalOptions_FallsBackToDefaults(t *testing.T) {
	SetServices(nil)
	assert.Equal(t, domain.DefaultRetrievalSettings().HybridOptions(), retrievalOptions())
}
