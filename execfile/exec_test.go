package execfile_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tigrkoshka/karma/execfile"
	"github.com/tigrkoshka/karma/specs"
)

func TestWriteReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.a")

	data := execfile.Data{
		Entrypoint: 3,
		Code:       []specs.Word{0x01020304, 0xdeadbeef, 0},
		Constants:  []specs.Word{1, 2, 3},
	}

	require.NoError(t, execfile.Write(path, data))

	got, err := execfile.Read(path)
	require.NoError(t, err)

	require.Equal(t, data.Entrypoint, got.Entrypoint)
	require.Equal(t, specs.Word(specs.MemorySize-1), got.InitialSP)
	require.Equal(t, data.Code, got.Code)
	require.Equal(t, data.Constants, got.Constants)
}

func TestReadRejectsBadProcessorID(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.a")

	require.NoError(t, execfile.Write(path, execfile.Data{}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	raw[specs.OffsetProcessorID] = 240
	raw[specs.OffsetProcessorID+1] = 0
	require.NoError(t, os.WriteFile(path, raw, 0o600))

	_, err = execfile.Read(path)
	require.Error(t, err)

	var execErr *execfile.Error
	require.ErrorAs(t, err, &execErr)
	require.Equal(t, execfile.InvalidProcessorID, execErr.Kind)
}

func TestReadRejectsTruncatedHeader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "short.a")
	require.NoError(t, os.WriteFile(path, []byte("too short"), 0o600))

	_, err := execfile.Read(path)
	require.Error(t, err)

	var execErr *execfile.Error
	require.ErrorAs(t, err, &execErr)
	require.Equal(t, execfile.TooSmallForHeader, execErr.Kind)
}
