package adapters

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListConfigs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "items.xml"), []byte("<root/>"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "blocks.XML"), []byte("<root/>"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "subdir"), 0755))

	configs, err := NewGameConfigAdapter().ListConfigs(dir)
	require.NoError(t, err)
	require.Len(t, configs, 2)
	assert.Equal(t, filepath.Join(dir, "items.xml"), configs["items.xml"])
	assert.Equal(t, filepath.Join(dir, "blocks.XML"), configs["blocks.XML"])
}

func TestListConfigsMissingDir(t *testing.T) {
	_, err := NewGameConfigAdapter().ListConfigs(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read game config directory")
}

func TestReadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "items.xml")
	require.NoError(t, os.WriteFile(path, []byte("<root/>"), 0644))

	data, err := NewGameConfigAdapter().ReadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "<root/>", string(data))

	_, err = NewGameConfigAdapter().ReadConfig(filepath.Join(dir, "missing.xml"))
	require.Error(t, err)
}
