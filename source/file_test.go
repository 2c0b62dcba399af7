package source_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tigrkoshka/karma/source"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prog.krm")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestCommentStripping(t *testing.T) {
	path := writeTemp(t, "add r0 r1 # a comment\nsub r0 r1 \\# not a comment\n")
	f, err := source.Open(path, nil)
	require.NoError(t, err)

	require.True(t, f.NextLine())
	tok, ok := f.GetToken()
	require.True(t, ok)
	require.Equal(t, "add", tok)
	rest, ok := f.GetLine()
	require.True(t, ok)
	require.Equal(t, "r0 r1", rest)

	require.True(t, f.NextLine())
	rest, ok = f.GetLine()
	require.True(t, ok)
	require.Equal(t, `sub r0 r1 \# not a comment`, rest)
}

func TestWhereIncludesChain(t *testing.T) {
	root, err := source.Open(writeTemp(t, "x\n"), nil)
	require.NoError(t, err)
	child, err := source.Open(writeTemp(t, "y\n"), root)
	require.NoError(t, err)

	child.NextLine()
	where := child.Where()
	require.Contains(t, where, "at line 1")
	require.Contains(t, where, "included from")
}

func TestGetTokenExhaustsLine(t *testing.T) {
	path := writeTemp(t, "one two\n")
	f, err := source.Open(path, nil)
	require.NoError(t, err)
	require.True(t, f.NextLine())

	_, ok := f.GetToken()
	require.True(t, ok)
	_, ok = f.GetToken()
	require.True(t, ok)
	_, ok = f.GetToken()
	require.False(t, ok)
}
