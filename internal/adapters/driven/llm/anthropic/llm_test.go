package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/recall/internal/core/ports/driven"
)

type stubPromptStore map[string]string

func (s stubPromptStore) Load(name string) (string, error) { return s[name], nil }
func (s stubPromptStore) Reload()                          {}

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestNew_Defaults(t *testing.T) {
	g, err := New(Config{APIKey: "sk-ant", BaseURL: "http://example.test/"})
	require.NoError(t, err)

	assert.Equal(t, DefaultModel, g.ModelName())
	assert.Equal(t, "http://example.test", g.baseURL)
	assert.Equal(t, DefaultMaxTokens, g.maxTokens)
}

func TestGenerate(t *testing.T) {
	var got messagesRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "sk-ant", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"On the "},{"type":"tool_use"},{"type":"text","text":"mat. "}],"stop_reason":"end_turn"}`))
	}))
	defer srv.Close()

	g, err := New(Config{APIKey: "sk-ant", BaseURL: srv.URL})
	require.NoError(t, err)

	answer, err := g.Generate(context.Background(), "Where is the cat?", "The cat sat on the mat.")
	require.NoError(t, err)
	assert.Equal(t, "On the mat.", answer)
	assert.Equal(t, DefaultModel, got.Model)
	assert.Equal(t, DefaultMaxTokens, got.MaxTokens)
	assert.NotEmpty(t, got.System)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Contains(t, got.Messages[0].Content, "Where is the cat?")
	assert.Contains(t, got.Messages[0].Content, "The cat sat on the mat.")
}

func TestGenerate_UsesPromptStore(t *testing.T) {
	var got messagesRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"ok"}]}`))
	}))
	defer srv.Close()

	g, err := New(Config{APIKey: "sk-ant", BaseURL: srv.URL})
	require.NoError(t, err)
	g.SetPromptStore(stubPromptStore{driven.PromptAnswerSystem: "Answer like a pirate."})

	_, err = g.Generate(context.Background(), "q", "")
	require.NoError(t, err)
	assert.Equal(t, "Answer like a pirate.", got.System)
}

func TestGenerate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"http error", http.StatusUnauthorized, `{"error":{"type":"authentication_error","message":"bad key"}}`, "status 401"},
		{"api error", http.StatusOK, `{"error":{"type":"overloaded_error","message":"overloaded"}}`, "overloaded"},
		{"no text", http.StatusOK, `{"content":[]}`, "no text content"},
		{"bad json", http.StatusOK, `{`, "decode response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			g, err := New(Config{APIKey: "sk", BaseURL: srv.URL})
			require.NoError(t, err)
			_, err = g.Generate(context.Background(), "q", "")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestPing(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/models", r.URL.Path)
			assert.Equal(t, "sk-ant", r.Header.Get("x-api-key"))
			_, _ = w.Write([]byte(`{"data":[]}`))
		}))
		defer srv.Close()

		g, err := New(Config{APIKey: "sk-ant", BaseURL: srv.URL})
		require.NoError(t, err)
		assert.NoError(t, g.Ping(context.Background()))
	})

	t.Run("rejected key", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "invalid x-api-key", http.StatusUnauthorized)
		}))
		defer srv.Close()

		g, err := New(Config{APIKey: "sk-bad", BaseURL: srv.URL})
		require.NoError(t, err)
		err = g.Ping(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 401")
	})
}
