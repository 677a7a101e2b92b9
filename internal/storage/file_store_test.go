// internal/storage/file_store_test.go
package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndLoad(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save("project.json", []byte(`{"ok":true}`)))

	data, err := store.Load("project.json")
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, string(data))
}

func TestSaveOverwrites(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save("a.json", []byte("one")))
	require.NoError(t, store.Save("a.json", []byte("two")))

	data, err := store.Load("a.json")
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))
}

func TestLoadMissingFile(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load("missing.json")
	assert.Error(t, err)
}

func TestExists(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	assert.False(t, store.Exists("a.json"))
	require.NoError(t, store.Save("a.json", []byte("x")))
	assert.True(t, store.Exists("a.json"))
}

func TestListFiltersBySuffix(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save("b.json", []byte("x")))
	require.NoError(t, store.Save("a.json", []byte("x")))
	require.NoError(t, store.Save("notes.txt", []byte("x")))

	names, err := store.List(".json")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.json", "b.json"}, names)
}
