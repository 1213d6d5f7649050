package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Setenv(HomeEnv, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestSaveThenLoad(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(HomeEnv, filepath.Join(dir, "nested"))

	want := &Config{Calendar: "Work", TimeZone: "Europe/Berlin", Tag: "Coding", Color: "tomato"}
	require.NoError(t, Save(want))

	got, err := Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)

	info, err := os.Stat(filepath.Join(dir, "nested", configFile))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestLoadFillsMissingFields(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(HomeEnv, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFile), []byte("calendar: Side Projects\n"), 0600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "Side Projects", cfg.Calendar)
	assert.Equal(t, DefaultTimeZone, cfg.TimeZone)
	assert.Equal(t, DefaultTag, cfg.Tag)
	assert.Equal(t, DefaultColor, cfg.Color)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(HomeEnv, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFile), []byte("calendar: [oops"), 0600))

	_, err := Load()
	assert.Error(t, err)
}

func TestLocation(t *testing.T) {
	cfg := Default()
	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, DefaultTimeZone, loc.String())

	cfg.TimeZone = "Not/AZone"
	_, err = cfg.Location()
	assert.Error(t, err)
}

func TestDefaultLocation(t *testing.T) {
	assert.Equal(t, DefaultTimeZone, DefaultLocation().String())
}
