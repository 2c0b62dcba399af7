package include_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tigrkoshka/karma/include"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestResolveDFSFirstIncludeWins(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.krm", "include b.krm\ninclude c.krm\nadd r0 r1\n")
	writeFile(t, dir, "b.krm", "include c.krm\nsub r0 r1\n")
	writeFile(t, dir, "c.krm", "mul r0 r1\n")

	root := filepath.Join(dir, "a.krm")
	resolved, err := include.Resolve(root)
	require.NoError(t, err)

	require.Equal(t, []string{
		filepath.Join(dir, "a.krm"),
		filepath.Join(dir, "b.krm"),
		filepath.Join(dir, "c.krm"),
	}, paths(resolved))

	require.Nil(t, resolved[0].Parent)
	require.NotNil(t, resolved[1].Parent)
	require.Equal(t, filepath.Join(dir, "a.krm"), resolved[1].Parent.Path())
	require.NotNil(t, resolved[2].Parent)
	require.Equal(t, filepath.Join(dir, "b.krm"), resolved[2].Parent.Path())
}

func paths(resolved []include.ResolvedFile) []string {
	out := make([]string, len(resolved))
	for i, rf := range resolved {
		out[i] = rf.Path
	}
	return out
}

func TestResolveOnlyHonorsLeadingIncludes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.krm", "add r0 r1\ninclude b.krm\n")
	writeFile(t, dir, "b.krm", "sub r0 r1\n")

	resolved, err := include.Resolve(filepath.Join(dir, "a.krm"))
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "a.krm")}, paths(resolved))
}

func TestResolveMissingFilenameIsError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.krm", "include\n")

	_, err := include.Resolve(filepath.Join(dir, "a.krm"))
	require.Error(t, err)
}
