package credstore

import (
	"path/filepath"
	"testing"

	"github.com/ljosc/discuss/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Store {
	sqlite, err := Open(filepath.Join(t.TempDir(), FileName))
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	return map[string]Store{
		"memory": NewMemory(),
		"sqlite": sqlite,
	}
}

func TestStoreContract(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := store.Get(domain.RefreshToken)
			require.NoError(t, err)
			assert.False(t, ok, "fresh store has no credentials")

			require.NoError(t, Save(store, domain.Credentials{AccessToken: "a", RefreshToken: "r"}))

			v, ok, err := store.Get(domain.AccessToken)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "a", v)

			has, err := HasRefreshToken(store)
			require.NoError(t, err)
			assert.True(t, has)

			require.NoError(t, store.Set(domain.AccessToken, "a2"))
			v, _, _ = store.Get(domain.AccessToken)
			assert.Equal(t, "a2", v, "set overwrites")

			require.NoError(t, store.ClearAll())
			has, err = HasRefreshToken(store)
			require.NoError(t, err)
			assert.False(t, has)
			_, ok, _ = store.Get(domain.AccessToken)
			assert.False(t, ok)
		})
	}
}

func TestEmptyValueIsAbsent(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Set(domain.RefreshToken, "r"))
			require.NoError(t, store.Set(domain.RefreshToken, ""))
			has, err := HasRefreshToken(store)
			require.NoError(t, err)
			assert.False(t, has)
		})
	}
}

func TestSQLiteSurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	first, err := OpenProfile(dir)
	require.NoError(t, err)
	require.NoError(t, Save(first, domain.Credentials{AccessToken: "a", RefreshToken: "r"}))
	require.NoError(t, first.Close())

	second, err := OpenProfile(dir)
	require.NoError(t, err)
	defer second.Close()

	v, ok, err := second.Get(domain.RefreshToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "r", v)
}
