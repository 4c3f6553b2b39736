package adapters

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteDocument(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	adapter := NewOutputFileAdapter(dir)

	require.NoError(t, adapter.WriteDocument("items.xml", []byte("<root/>\n")))

	data, err := os.ReadFile(filepath.Join(dir, "items.xml"))
	require.NoError(t, err)
	assert.Equal(t, "<root/>\n", string(data))

	info, err := os.Stat(filepath.Join(dir, "items.xml"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), info.Mode().Perm())
}

func TestWriteDocumentOverwrites(t *testing.T) {
	dir := t.TempDir()
	adapter := NewOutputFileAdapter(dir)

	require.NoError(t, adapter.WriteDocument("items.xml", []byte("first")))
	require.NoError(t, adapter.WriteDocument("items.xml", []byte("second")))

	data, err := os.ReadFile(filepath.Join(dir, "items.xml"))
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestWriteDocumentLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	adapter := NewOutputFileAdapter(dir)
	require.NoError(t, adapter.WriteDocument("items.xml", []byte("<root/>")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "items.xml", entries[0].Name())
}

func TestWriteDocumentEmptyDir(t *testing.T) {
	err := NewOutputFileAdapter("").WriteDocument("items.xml", []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "output directory is empty")
}
