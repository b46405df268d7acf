package convert

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToFile(t *testing.T) {
	img := solidImage(t, 100, 100, red)
	path := filepath.Join(t.TempDir(), "output.png")

	n, err := ToFile(context.Background(), img, path, KindAuto)
	require.NoError(t, err)
	assert.Greater(t, n, 0)

	st, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(n), st.Size())
}

func TestToFileOverwrites(t *testing.T) {
	path := writeTempFile(t, "out.bin", []byte("a much longer previous content"))

	n, err := ToFile(context.Background(), []byte("short"), path, KindBytes)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("short"), got)
}

func TestToFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "atomic.png")
	conv := New(WithAtomicWrites(true))
	data := pngBytes(t, solidImage(t, 4, 4, red))

	n, err := conv.ToFile(context.Background(), data, path, KindBytes)
	require.NoError(t, err)
	assert.Equal(t, len(data), n)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file must not be left behind")
}

func TestToFileMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "out.png")

	_, err := ToFile(context.Background(), []byte("x"), path, KindBytes)
	assert.Error(t, err)

	_, err = New(WithAtomicWrites(true)).ToFile(context.Background(), []byte("x"), path, KindBytes)
	assert.Error(t, err)
}

func TestToFileConversionErrorWritesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "never.png")

	_, err := ToFile(context.Background(), 42, path, KindAuto)
	assert.ErrorIs(t, err, ErrUnsupportedType)
	assert.NoFileExists(t, path)
}
