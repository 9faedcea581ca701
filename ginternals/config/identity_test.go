package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nullpointr/corvid/ginternals/config"
	"github.com/stretchr/testify/require"
)

func TestLoadIdentity_MissingFileYieldsZeroValue(t *testing.T) {
	t.Parallel()

	id, err := config.LoadIdentity(filepath.Join(t.TempDir(), "config"))
	require.NoError(t, err)
	require.True(t, id.IsZero())
}

func TestSaveIdentity_ThenLoad_RoundTrips(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config")
	want := config.Identity{Name: "bert2", Email: "shuairan@gmail.com"}

	err := config.SaveIdentity(path, want)
	require.NoError(t, err)

	got, err := config.LoadIdentity(path)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestSaveIdentity_PreservesOtherSections(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config")
	require.NoError(t, os.WriteFile(path, []byte("[core]\n\tbare = false\n"), 0o644))
	require.NoError(t, config.SaveIdentity(path, config.Identity{Name: "a", Email: "a@b.c"}))

	got, err := config.LoadIdentity(path)
	require.NoError(t, err)
	require.Equal(t, "a", got.Name)
	require.Equal(t, "a@b.c", got.Email)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(raw), "[core]")
	require.Contains(t, string(raw), "bare")
}
