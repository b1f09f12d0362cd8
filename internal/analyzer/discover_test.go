package analyzer

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeZip(t *testing.T, path string, members map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	for name, content := range members {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
}

func TestDiscover_FindsCSVsAndExtractsZips(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.csv"), []byte("Start Time\nx\n"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "b.csv"), []byte("Start Time\ny\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))
	writeZip(t, filepath.Join(dir, "bundle.zip"), map[string]string{
		"nested/c.csv": "Start Time\nz\n",
		"readme.md":    "ignored",
	})

	d, err := Discover(dir)
	require.NoError(t, err)
	defer d.Cleanup()

	names := make([]string, 0, len(d.Files))
	for _, f := range d.Files {
		names = append(names, filepath.Base(f))
	}
	assert.ElementsMatch(t, []string{"a.csv", "b.csv", "c.csv"}, names)
}

func TestDiscover_DeduplicatesByNameAndSize(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	content := "Start Time\n01.01.2024 10:00:00\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "events.csv"), []byte(content), 0644))
	// Same export delivered again inside an archive.
	writeZip(t, filepath.Join(dir, "delivery.zip"), map[string]string{
		"events.csv": content,
	})

	d, err := Discover(dir)
	require.NoError(t, err)
	defer d.Cleanup()

	require.Len(t, d.Files, 1)
	assert.Equal(t, "events.csv", filepath.Base(d.Files[0]))
}

func TestDiscover_CleanupRemovesExtractionDirs(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeZip(t, filepath.Join(dir, "bundle.zip"), map[string]string{"c.csv": "Start Time\nz\n"})

	d, err := Discover(dir)
	require.NoError(t, err)
	require.Len(t, d.Files, 1)
	extracted := d.Files[0]

	d.Cleanup()
	_, err = os.Stat(extracted)
	assert.True(t, os.IsNotExist(err))
}

func TestDiscover_EmptyDir(t *testing.T) {
	t.Parallel()
	d, err := Discover(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, d.Files)
}
