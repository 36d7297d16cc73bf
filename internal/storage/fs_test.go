package storage

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func newTestFS(t *testing.T) *FS {
	t.Helper()

	log := logrus.New()
	log.SetOutput(os.Stderr)

	store, err := NewFS(log, t.TempDir())
	require.NoError(t, err)

	return store
}

func TestFS_CreatesKindDirectories(t *testing.T) {
	t.Parallel()

	store := newTestFS(t)

	for _, kind := range Kinds {
		info, err := os.Stat(filepath.Join(store.Root(), string(kind)))
		require.NoError(t, err)
		require.True(t, info.IsDir())
	}
}

func TestFS_WriteReadRoundtrip(t *testing.T) {
	t.Parallel()

	store := newTestFS(t)

	path, err := store.Write(KindCurrent, "button-default-chromium.png", []byte("png-bytes"))
	require.NoError(t, err)
	require.FileExists(t, path)

	data, err := store.Read(KindCurrent, "button-default-chromium.png")
	require.NoError(t, err)
	require.Equal(t, []byte("png-bytes"), data)
}

func TestFS_WriteLeavesNoTempFiles(t *testing.T) {
	t.Parallel()

	store := newTestFS(t)

	_, err := store.Write(KindBase, "a.png", []byte("x"))
	require.NoError(t, err)

	entries, err := os.ReadDir(filepath.Join(store.Root(), string(KindBase)))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.False(t, strings.Contains(entries[0].Name(), ".tmp-"))
}

func TestFS_ReadMissingArtifact(t *testing.T) {
	t.Parallel()

	store := newTestFS(t)

	_, err := store.Read(KindBase, "missing.png")
	require.ErrorIs(t, err, fs.ErrNotExist)
}

func TestFS_ListSorted(t *testing.T) {
	t.Parallel()

	store := newTestFS(t)

	for _, name := range []string{"c.png", "a.png", "b.png"} {
		_, err := store.Write(KindCurrent, name, []byte(name))
		require.NoError(t, err)
	}

	names, err := store.List(KindCurrent)
	require.NoError(t, err)
	require.Equal(t, []string{"a.png", "b.png", "c.png"}, names)
}

func TestFS_RemoveIgnoresMissing(t *testing.T) {
	t.Parallel()

	store := newTestFS(t)

	require.NoError(t, store.Remove(KindDiff, "never-written.png"))
}

func TestMemory_Store(t *testing.T) {
	t.Parallel()

	store := NewMemory()

	_, err := store.Write(KindBase, "b.png", []byte("1"))
	require.NoError(t, err)
	_, err = store.Write(KindBase, "a.png", []byte("2"))
	require.NoError(t, err)

	names, err := store.List(KindBase)
	require.NoError(t, err)
	require.Equal(t, []string{"a.png", "b.png"}, names)

	_, err = store.Read(KindCurrent, "a.png")
	require.ErrorIs(t, err, fs.ErrNotExist)

	require.NoError(t, store.Remove(KindBase, "a.png"))
	names, err = store.List(KindBase)
	require.NoError(t, err)
	require.Equal(t, []string{"b.png"}, names)
}
