package state

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilePersistsAcrossHandles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")

	first := NewFile(path)
	require.NoError(t, first.SetActiveStoreID("2"))

	second := NewFile(path)
	assert.Equal(t, "2", second.ActiveStoreID())
}

func TestEmptyIDClearsSelection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	f := NewFile(path)
	require.NoError(t, f.SetActiveStoreID("7"))
	require.NoError(t, f.SetActiveStoreID(""))

	assert.Empty(t, NewFile(path).ActiveStoreID())
}

func TestMissingFileResolvesToEmpty(t *testing.T) {
	f := NewFile(filepath.Join(t.TempDir(), "absent.json"))
	assert.Empty(t, f.ActiveStoreID())
}

func TestCorruptFileResolvesToEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))

	f := NewFile(path)
	assert.Empty(t, f.ActiveStoreID())
	// And it stays writable.
	require.NoError(t, f.SetActiveStoreID("3"))
	assert.Equal(t, "3", NewFile(path).ActiveStoreID())
}
