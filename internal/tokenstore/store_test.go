package tokenstore

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore(t *testing.T) {
	t.Run("starts empty", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tokens.json")

		store, err := NewFileStore(path)
		require.NoError(t, err)
		assert.Empty(t, store.Token())
		assert.Empty(t, store.RefreshToken())
	})

	t.Run("set then get returns both values", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tokens.json")
		store, err := NewFileStore(path)
		require.NoError(t, err)

		require.NoError(t, store.SetTokens("access-1", "refresh-1"))
		assert.Equal(t, "access-1", store.Token())
		assert.Equal(t, "refresh-1", store.RefreshToken())
	})

	t.Run("last write wins", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tokens.json")
		store, err := NewFileStore(path)
		require.NoError(t, err)

		require.NoError(t, store.SetTokens("access-1", "refresh-1"))
		require.NoError(t, store.SetTokens("access-2", "refresh-2"))
		assert.Equal(t, "access-2", store.Token())
		assert.Equal(t, "refresh-2", store.RefreshToken())
	})

	t.Run("persists across reopen", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tokens.json")
		store, err := NewFileStore(path)
		require.NoError(t, err)
		require.NoError(t, store.SetTokens("access-1", "refresh-1"))

		reopened, err := NewFileStore(path)
		require.NoError(t, err)
		assert.Equal(t, "access-1", reopened.Token())
		assert.Equal(t, "refresh-1", reopened.RefreshToken())
	})

	t.Run("token file has restrictive permissions", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tokens.json")
		store, err := NewFileStore(path)
		require.NoError(t, err)
		require.NoError(t, store.SetTokens("access-1", "refresh-1"))

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	})

	t.Run("clear removes both and is idempotent", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tokens.json")
		store, err := NewFileStore(path)
		require.NoError(t, err)
		require.NoError(t, store.SetTokens("access-1", "refresh-1"))

		require.NoError(t, store.Clear())
		assert.Empty(t, store.Token())
		assert.Empty(t, store.RefreshToken())

		require.NoError(t, store.Clear())
		assert.Empty(t, store.Token())
	})

	t.Run("clear survives reopen", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tokens.json")
		store, err := NewFileStore(path)
		require.NoError(t, err)
		require.NoError(t, store.SetTokens("access-1", "refresh-1"))
		require.NoError(t, store.Clear())

		reopened, err := NewFileStore(path)
		require.NoError(t, err)
		assert.Empty(t, reopened.Token())
		assert.Empty(t, reopened.RefreshToken())
	})

	t.Run("corrupt file starts empty instead of failing", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tokens.json")
		require.NoError(t, os.WriteFile(path, []byte("not json"), 0600))

		store, err := NewFileStore(path)
		require.NoError(t, err)
		assert.Empty(t, store.Token())
	})

	t.Run("no torn reads under concurrent writes", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tokens.json")
		store, err := NewFileStore(path)
		require.NoError(t, err)

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = store.SetTokens("access-x", "refresh-x")
			}()
		}
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				a, r := store.Token(), store.RefreshToken()
				// Either both empty (before first write) or both set.
				assert.Equal(t, a == "", r == "")
			}()
		}
		wg.Wait()

		assert.Equal(t, "access-x", store.Token())
		assert.Equal(t, "refresh-x", store.RefreshToken())
	})
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	assert.Empty(t, store.Token())

	require.NoError(t, store.SetTokens("a", "r"))
	assert.Equal(t, "a", store.Token())
	assert.Equal(t, "r", store.RefreshToken())

	require.NoError(t, store.Clear())
	assert.Empty(t, store.Token())
	assert.Empty(t, store.RefreshToken())
}
