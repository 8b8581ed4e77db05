package config

import (
	"testing"

	"github.com/complexairport/dit/internal/repo"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *repo.Repository {
	t.Helper()
	r, err := repo.Init(t.TempDir())
	require.NoError(t, err)
	return r
}

func TestLoadEmptyConfigIsZeroValue(t *testing.T) {
	r := newTestRepo(t)
	cfg, err := Load(r)
	require.NoError(t, err)

	name, ok := cfg.Get("user.name")
	require.True(t, ok)
	require.Empty(t, name)
}

func TestSetAndSaveRoundTrip(t *testing.T) {
	r := newTestRepo(t)
	cfg, err := Load(r)
	require.NoError(t, err)

	require.NoError(t, cfg.Set("user.name", "Alice"))
	require.NoError(t, cfg.Set("user.email", "alice@example.com"))
	require.NoError(t, cfg.Save(r))

	reloaded, err := Load(r)
	require.NoError(t, err)
	name, _ := reloaded.Get("user.name")
	email, _ := reloaded.Get("user.email")
	require.Equal(t, "Alice", name)
	require.Equal(t, "alice@example.com", email)
}

func TestSetUnknownKeyErrors(t *testing.T) {
	cfg := &Config{}
	require.Error(t, cfg.Set("user.nickname", "Al"))
}

func TestGetUnknownKeyReportsNotOk(t *testing.T) {
	cfg := &Config{}
	_, ok := cfg.Get("user.nickname")
	require.False(t, ok)
}
