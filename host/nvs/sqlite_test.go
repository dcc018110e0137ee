package nvs

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStoreSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.db")
	store, err := Open(path)
	require.NoError(t, err)
	defer store.Close()

	_, ok := store.Load("0:130")
	require.False(t, ok)

	require.NoError(t, store.Save("0:130", []byte("Fixture 12")))
	value, ok := store.Load("0:130")
	require.True(t, ok)
	require.Equal(t, []byte("Fixture 12"), value)
}

func TestStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.db")
	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Save("0:130", []byte("Persisted")))
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	value, ok := reopened.Load("0:130")
	require.True(t, ok)
	require.Equal(t, []byte("Persisted"), value)
}

func TestStoreSaveOverwritesExistingKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.db")
	store, err := Open(path)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Save("0:130", []byte("first")))
	require.NoError(t, store.Save("0:130", []byte("second")))
	value, ok := store.Load("0:130")
	require.True(t, ok)
	require.Equal(t, []byte("second"), value)
}

func TestStoreDelete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.db")
	store, err := Open(path)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Save("0:130", []byte("x")))
	require.NoError(t, store.Delete("0:130"))
	_, ok := store.Load("0:130")
	require.False(t, ok)
}
