package compiler_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tigrkoshka/karma/compiler"
	"github.com/tigrkoshka/karma/specs"
)

func writeProg(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prog.krm")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestCompileFactorialLoop(t *testing.T) {
	src := `
end main

main:
    lc r0 5
    lc r1 1
loop:
    cmpi r0 1
    jle done
    mul r1 r0
    subi r0 1
    jmp loop
done:
    syscall r1 102
    syscall r0 0
`
	path := writeProg(t, src)
	data, err := compiler.Compile(path)
	require.NoError(t, err)
	require.NotEmpty(t, data.Code)
	require.Equal(t, specs.Word(0), data.Entrypoint)
	require.Equal(t, specs.Word(specs.MemorySize-1), data.InitialSP)
}

func TestCompileUndefinedLabelFails(t *testing.T) {
	path := writeProg(t, "end main\nmain:\njmp nowhere\n")
	_, err := compiler.Compile(path)
	require.Error(t, err)
}

func TestCompileRejectsRedefinedLabel(t *testing.T) {
	path := writeProg(t, "end main\nmain:\nlc r0 0\nfoo:\nlc r0 1\nfoo:\nlc r0 2\n")
	_, err := compiler.Compile(path)
	require.Error(t, err)
}

func TestCompileStringConstant(t *testing.T) {
	path := writeProg(t, "end main\nmain:\nla r0 greeting\nsyscall r0 0\ngreeting: string \"hi\"\n")
	data, err := compiler.Compile(path)
	require.NoError(t, err)
	require.NotEmpty(t, data.Constants)
	require.Equal(t, specs.Word(specs.STRING), data.Constants[0])
}

func TestCompileWithWarningsFlagsUnusedLabel(t *testing.T) {
	path := writeProg(t, "end main\nmain:\nlc r0 0\nsyscall r0 0\nunused:\nlc r1 0\n")

	data, warnings, err := compiler.CompileWithWarnings(path, true, true)
	require.NoError(t, err)
	require.NotEmpty(t, data.Code)
	require.Len(t, warnings, 1)
	require.Contains(t, warnings[0].Message, "unused")
}

func TestCompileWithWarningsDisabledReturnsNone(t *testing.T) {
	path := writeProg(t, "end main\nmain:\nlc r0 0\nsyscall r0 0\nunused:\nlc r1 0\n")

	_, warnings, err := compiler.CompileWithWarnings(path, false, true)
	require.NoError(t, err)
	require.Empty(t, warnings)
}

func TestCompileErrorInIncludedFileReportsChain(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "root.krm")
	included := filepath.Join(dir, "broken.krm")

	require.NoError(t, os.WriteFile(root, []byte("include broken.krm\nend main\n"), 0o600))
	require.NoError(t, os.WriteFile(included, []byte("main:\nbogus r0\n"), 0o600))

	_, err := compiler.Compile(root)
	require.Error(t, err)
	require.Contains(t, err.Error(), "in "+included)
	require.Contains(t, err.Error(), "included from "+root)
}
