package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConfigStore(t *testing.T) *ConfigStore {
	t.Helper()
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(tmpDir, ConfigFile), store.Path())
}

func TestNewConfigStore_WithNestedDirectory(t *testing.T) {
	nestedPath := filepath.Join(t.TempDir(), "workspace", ".recall")

	store, err := NewConfigStore(nestedPath)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(nestedPath, ConfigFile), store.Path())

	info, err := os.Stat(nestedPath)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, os.FileMode(0700), info.Mode().Perm())
}

func TestNewConfigStore_MkdirAllError(t *testing.T) {
	store, err := NewConfigStore("/dev/null/cannot/create/dirs")

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestNewConfigStore_LoadCorruptedFile(t *testing.T) {
	tmpDir := t.TempDir()
	err := os.WriteFile(filepath.Join(tmpDir, ConfigFile), []byte("this is not valid TOML {{{[["), 0600)
	require.NoError(t, err)

	store, err := NewConfigStore(tmpDir)

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestConfigStore_GetSet(t *testing.T) {
	store := newTestConfigStore(t)

	require.NoError(t, store.Set("retrieval.context_format", "natural"))
	require.NoError(t, store.Set("retrieval.max_results", 7))

	val, ok := store.Get("retrieval.context_format")
	assert.True(t, ok)
	assert.Equal(t, "natural", val)

	val, ok = store.Get("retrieval.max_results")
	assert.True(t, ok)
	assert.Equal(t, 7, val)

	val, ok = store.Get("missing")
	assert.False(t, ok)
	assert.Nil(t, val)
}

func TestConfigStore_PersistsNestedTables(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set("retrieval.max_results", 8))
	require.NoError(t, store.Set("retrieval.semantic_weight", 0.6))
	require.NoError(t, store.Set("embedding.provider", "ollama"))

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[retrieval]")
	assert.Contains(t, string(raw), "[embedding]")

	reloaded, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assertValue(t, reloaded, "retrieval.max_results", int64(8))
	assertValue(t, reloaded, "retrieval.semantic_weight", 0.6)
	assertValue(t, reloaded, "embedding.provider", "ollama")
	assert.Equal(t, []string{"embedding.provider", "retrieval.max_results", "retrieval.semantic_weight"}, reloaded.Keys())
}

func TestConfigStore_ReadsHandWrittenFile(t *testing.T) {
	tmpDir := t.TempDir()
	content := `
[retrieval]
max_results = 3
keyword_weight = 1
context_format = "minimal"

[llm]
provider = "openai"
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ConfigFile), []byte(content), 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assertValue(t, store, "retrieval.max_results", int64(3))
	assertValue(t, store, "retrieval.keyword_weight", int64(1))
	assertValue(t, store, "retrieval.context_format", "minimal")
	assertValue(t, store, "llm.provider", "openai")
}

func TestConfigStore_KeyConflict(t *testing.T) {
	store := newTestConfigStore(t)

	require.NoError(t, store.Set("retrieval.max_results", 5))
	assert.Error(t, store.Set("retrieval", "flat"))
}

func TestConfigStore_EmptyFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ConfigFile), []byte("# Just a comment\n\n"), 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assert.Empty(t, store.Keys())
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store := newTestConfigStore(t)
	require.NoError(t, store.Set("test", "value"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_Save_WriteFileError(t *testing.T) {
	store := newTestConfigStore(t)
	require.NoError(t, store.Set("test", "value"))

	// Replace the file with a directory to cause a write error.
	require.NoError(t, os.Remove(store.Path()))
	require.NoError(t, os.Mkdir(store.Path(), 0700))

	assert.Error(t, store.Set("another", "value"))
}

func TestConfigStore_Load_InvalidTOML(t *testing.T) {
	store := newTestConfigStore(t)
	require.NoError(t, store.Set("valid", "data"))
	require.NoError(t, os.WriteFile(store.Path(), []byte("invalid toml syntax ][}{"), 0600))

	assert.Error(t, store.Load())
}

func TestConfigStore_SetWithUnmarshallableValue(t *testing.T) {
	store := newTestConfigStore(t)

	assert.Error(t, store.Set("channel", make(chan int)))
}

func TestConfigStore_Concurrency(t *testing.T) {
	store := newTestConfigStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			key := "key" + string(rune('0'+id))
			_ = store.Set(key, id)
			_, _ = store.Get(key)
		}(i)
	}
	wg.Wait()

	assert.Len(t, store.Keys(), 10)
}

func TestNestMap(t *testing.T) {
	nested, err := nestMap(map[string]any{"a.b": 1, "a.c": 2, "d": 3})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": map[string]any{"b": 1, "c": 2}, "d": 3}, nested)
	assert.Equal(t, map[string]any{"a.b": 1, "a.c": 2, "d": 3}, flattenMap(nested, ""))

	_, err = nestMap(map[string]any{"a": 1, "a.b": 2})
	assert.Error(t, err)
}

func assertValue(t *testing.T, store *ConfigStore, key string, want any) {
	t.Helper()
	got, ok := store.Get(key)
	require.True(t, ok, "key %s", key)
	assert.Equal(t, want, got)
}
