package disassembler_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tigrkoshka/karma/compiler"
	"github.com/tigrkoshka/karma/disassembler"
)

func writeProg(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prog.krm")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDisassembleFactorialLoop(t *testing.T) {
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
	data, err := compiler.Compile(writeProg(t, src))
	require.NoError(t, err)

	out, err := disassembler.Disassemble(data)
	require.NoError(t, err)

	require.Contains(t, out, "main:")
	require.Contains(t, out, "end main")
	require.Contains(t, out, "jle command_label_")
	require.Contains(t, out, "jmp command_label_")
}

func TestDisassembleConstants(t *testing.T) {
	src := "end main\nmain:\nla r0 greeting\nsyscall r0 0\ngreeting: string \"hi\"\n"
	data, err := compiler.Compile(writeProg(t, src))
	require.NoError(t, err)

	out, err := disassembler.Disassemble(data)
	require.NoError(t, err)

	require.Contains(t, out, ".constant_1: string \"hi\"")
	require.True(t, strings.Contains(out, "la r0 .constant_1"))
}

func TestDisassembleCallRet(t *testing.T) {
	src := `
end main

main:
    calli add_one
    syscall r0 0

add_one:
    addi r0 1
    ret 0
`
	data, err := compiler.Compile(writeProg(t, src))
	require.NoError(t, err)

	out, err := disassembler.Disassemble(data)
	require.NoError(t, err)
	require.Contains(t, out, "calli command_label_")
	require.Contains(t, out, "ret 0x0")

	reassembled, err := compiler.Compile(writeProg(t, out))
	require.NoError(t, err)
	require.Equal(t, data.Code, reassembled.Code)
}

func TestDisassembleRoundTrips(t *testing.T) {
	src := `
end main

main:
    lc r0 3
    addi r0 1
    syscall r0 0
`
	data, err := compiler.Compile(writeProg(t, src))
	require.NoError(t, err)

	out, err := disassembler.Disassemble(data)
	require.NoError(t, err)

	reassembled, err := compiler.Compile(writeProg(t, out))
	require.NoError(t, err)

	require.Equal(t, data.Code, reassembled.Code)
	require.Equal(t, data.Constants, reassembled.Constants)
	require.Equal(t, data.Entrypoint, reassembled.Entrypoint)
}
