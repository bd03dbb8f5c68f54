package filesystem

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAferoReader_MemFs(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/inbox/sub.xlsx", 0755))
	require.NoError(t, afero.WriteFile(fs, "/inbox/report.xlsx", []byte("0123456789"), 0644))

	mtime := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, fs.Chtimes("/inbox/report.xlsx", mtime, mtime))

	reader := NewReader(fs)

	t.Run("CheckDirectory accepts a directory", func(t *testing.T) {
		assert.NoError(t, reader.CheckDirectory("/inbox"))
	})

	t.Run("CheckDirectory rejects missing paths and files", func(t *testing.T) {
		assert.Error(t, reader.CheckDirectory("/missing"))
		assert.Error(t, reader.CheckDirectory("/inbox/report.xlsx"))
	})

	t.Run("ReadDir reports size, mtime and kind", func(t *testing.T) {
		entries, err := reader.ReadDir("/inbox")
		require.NoError(t, err)
		require.Len(t, entries, 2)

		byName := map[string]bool{}
		for _, e := range entries {
			byName[e.Name] = e.IsDir
			if e.Name == "report.xlsx" {
				assert.Equal(t, filepath.Join("/inbox", "report.xlsx"), e.Path)
				assert.EqualValues(t, 10, e.Size)
				assert.True(t, e.ModTime.Equal(mtime))
			}
		}
		assert.True(t, byName["sub.xlsx"])
		assert.False(t, byName["report.xlsx"])
	})

	t.Run("Stat of a vanished file errors", func(t *testing.T) {
		_, err := reader.Stat("/inbox/gone.xlsx")
		assert.True(t, os.IsNotExist(err))
	})
}

func TestAferoReader_OS(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("abc"), 0644))

	reader := NewOSReader()
	require.NoError(t, reader.CheckDirectory(dir))

	entry, err := reader.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, "report.xlsx", entry.Name)
	assert.EqualValues(t, 3, entry.Size)

	err = reader.CheckDirectory(filepath.Join(dir, "nope"))
	assert.Error(t, err)
}
