package scratch

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDirLifecycle(t *testing.T) {
	d, err := NewDir("scratch-test-")
	require.NoError(t, err)
	require.NotEmpty(t, d.Path())

	path, err := d.WriteFile("tokens", []byte("one\ntwo\n"))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "one\ntwo\n", string(data))

	dirPath := d.Path()
	d.Release()
	require.Empty(t, d.Path())
	_, err = os.Stat(dirPath)
	require.True(t, os.IsNotExist(err))
}

func TestReleaseIsIdempotent(t *testing.T) {
	d, err := NewDir("scratch-test-")
	require.NoError(t, err)
	d.Release()
	d.Release()

	var nilDir *Dir
	nilDir.Release()
}

func TestWriteAfterRelease(t *testing.T) {
	d, err := NewDir("scratch-test-")
	require.NoError(t, err)
	d.Release()
	_, err = d.WriteFile("tokens", []byte("x"))
	require.Error(t, err)
}
