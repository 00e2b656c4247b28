package store

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeContract runs the behaviour every backend must share.
func storeContract(t *testing.T, s Store) {
	t.Helper()

	_, ok := s.Get("missing")
	assert.False(t, ok, "missing key must report absent")

	require.True(t, s.Set("alpha", []byte(`{"v":1}`)))
	got, ok := s.Get("alpha")
	require.True(t, ok)
	assert.Equal(t, []byte(`{"v":1}`), got)

	// Overwrite.
	require.True(t, s.Set("alpha", []byte(`{"v":2}`)))
	got, _ = s.Get("alpha")
	assert.Equal(t, []byte(`{"v":2}`), got)

	// Remove is idempotent.
	s.Remove("alpha")
	_, ok = s.Get("alpha")
	assert.False(t, ok)
	s.Remove("alpha")

	// Export/Import round trip.
	s.Set("one", []byte("1"))
	s.Set("two", []byte("2"))
	dump := s.Export()
	assert.Equal(t, []byte("1"), dump["one"])
	assert.Equal(t, []byte("2"), dump["two"])

	s.Remove("one")
	s.Remove("two")
	s.Import(dump)
	got, ok = s.Get("two")
	require.True(t, ok)
	assert.Equal(t, []byte("2"), got)
}

func TestMemoryStore_Contract(t *testing.T) {
	storeContract(t, NewMemoryStore())
}

func TestMemoryStore_CopiesOnReadAndWrite(t *testing.T) {
	s := NewMemoryStore()
	src := []byte("abc")
	s.Set("k", src)
	src[0] = 'X'

	got, _ := s.Get("k")
	assert.Equal(t, []byte("abc"), got, "Set must copy the caller's slice")

	got[0] = 'Y'
	again, _ := s.Get("k")
	assert.Equal(t, []byte("abc"), again, "Get must hand out a copy")
}

func TestFileStore_Contract(t *testing.T) {
	fs, err := NewFileStore(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)
	storeContract(t, fs)
}

func TestFileStore_PersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStore(dir, zerolog.Nop())
	require.NoError(t, err)
	fs.Set(KeyHighScores, []byte(`[]`))

	fs2, err := NewFileStore(dir, zerolog.Nop())
	require.NoError(t, err)
	got, ok := fs2.Get(KeyHighScores)
	require.True(t, ok)
	assert.Equal(t, []byte(`[]`), got)
}

func TestFileStore_UnsafeKeysRoundTrip(t *testing.T) {
	fs, err := NewFileStore(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)

	keys := []string{"", "with space", "path/../escape", "emoji💥", "dots.in.key"}
	for _, k := range keys {
		require.True(t, fs.Set(k, []byte(k+"-value")), "key %q", k)
		got, ok := fs.Get(k)
		require.True(t, ok, "key %q", k)
		assert.Equal(t, []byte(k+"-value"), got, "key %q", k)
	}

	// Export must decode the base32-mangled names back to the originals.
	dump := fs.Export()
	for _, k := range keys {
		assert.Equal(t, []byte(k+"-value"), dump[k], "export key %q", k)
	}
}

func TestSQLiteStore_Contract(t *testing.T) {
	s, err := NewSQLiteStore("", zerolog.Nop())
	require.NoError(t, err)
	defer s.Close()
	storeContract(t, s)
}

func TestSQLiteStore_PersistsAcrossOpens(t *testing.T) {
	path := t.TempDir() + "/scorched.db"
	s, err := NewSQLiteStore(path, zerolog.Nop())
	require.NoError(t, err)
	require.True(t, s.Set(KeyPityState, []byte(`{"dropsWithoutRare":7}`)))
	require.NoError(t, s.Close())

	s2, err := NewSQLiteStore(path, zerolog.Nop())
	require.NoError(t, err)
	defer s2.Close()
	got, ok := s2.Get(KeyPityState)
	require.True(t, ok)
	assert.Equal(t, []byte(`{"dropsWithoutRare":7}`), got)
}
