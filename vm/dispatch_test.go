package vm_test

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tigrkoshka/karma/compiler"
	"github.com/tigrkoshka/karma/specs"
	"github.com/tigrkoshka/karma/vm"
)

func writeProg(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prog.krm")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func run(t *testing.T, src string, stdin string, policy vm.SandboxPolicy) (string, int32, error) {
	t.Helper()

	path := writeProg(t, src)
	data, err := compiler.Compile(path)
	require.NoError(t, err)

	var out bytes.Buffer
	m := vm.NewMachine(policy, vm.IO{In: bufio.NewReader(strings.NewReader(stdin)), Out: &out})
	m.Load(data)

	runErr := m.Run(context.Background())
	return out.String(), m.ExitCode(), runErr
}

func TestFactorialLoop(t *testing.T) {
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
	out, code, err := run(t, src, "", vm.DefaultPolicy())
	require.NoError(t, err)
	require.Equal(t, "120", out)
	require.Equal(t, int32(0), code)
}

func TestDoublePrinting(t *testing.T) {
	src := `
end main

main:
    la r0 half
    addi r0 1
    loadr2 r0 r0
    syscall r0 103
    lc r0 0
    syscall r0 0

half: double 1.5
`
	out, _, err := run(t, src, "", vm.DefaultPolicy())
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "1.5"))
}

func TestStringWalk(t *testing.T) {
	src := `
end main

main:
    la r1 greeting
    addi r1 1
loop:
    loadr r0 r1
    cmpi r0 0
    jeq done
    syscall r0 105
    addi r1 1
    jmp loop
done:
    lc r0 0
    syscall r0 0

greeting: string "ab\nc"
`
	out, _, err := run(t, src, "", vm.DefaultPolicy())
	require.NoError(t, err)
	require.Equal(t, "ab\nc", out)
}

func TestSandboxViolationBlocksCodeSegment(t *testing.T) {
	src := `
end main

main:
    store r0 0
    lc r0 0
    syscall r0 0
`
	policy := vm.DefaultPolicy()
	policy.BlockCodeSegment = true

	_, _, err := run(t, src, "", policy)
	require.Error(t, err)

	var vmErr *vm.Error
	require.ErrorAs(t, err, &vmErr)
	require.Equal(t, vm.CodeSegmentBlocked, vmErr.Kind)
	require.Equal(t, specs.Word(0), vmErr.Address)
}

func TestSandboxViolationBlocksConstantsSegment(t *testing.T) {
	src := `
end main

main:
    la r0 forbidden
    addi r0 1
    loadr r0 r0
    lc r0 0
    syscall r0 0

forbidden: uint32 9
`
	policy := vm.DefaultPolicy()
	policy.BlockConstantsSegment = true

	_, _, err := run(t, src, "", policy)
	require.Error(t, err)

	var vmErr *vm.Error
	require.ErrorAs(t, err, &vmErr)
	require.Equal(t, vm.ConstantsSegmentBlocked, vmErr.Kind)
}

func TestPushPopWithImmediateOffset(t *testing.T) {
	src := `
end main

main:
    lc r0 10
    push r0 5
    pop r1 2
    syscall r1 102
    lc r0 0
    syscall r0 0
`
	out, _, err := run(t, src, "", vm.DefaultPolicy())
	require.NoError(t, err)
	require.Equal(t, "17", out)
}

func TestDivisionByZero(t *testing.T) {
	src := `
end main

main:
    lc r0 1
    lc r1 0
    div r0 r1
    lc r0 0
    syscall r0 0
`
	_, _, err := run(t, src, "", vm.DefaultPolicy())
	require.Error(t, err)

	var vmErr *vm.Error
	require.ErrorAs(t, err, &vmErr)
	require.Equal(t, vm.DivisionByZero, vmErr.Kind)
}

func TestExecPointerOutOfMemory(t *testing.T) {
	src := `
end main

main:
    lc r0 0
    syscall r0 0
`
	path := writeProg(t, src)
	data, err := compiler.Compile(path)
	require.NoError(t, err)

	m := vm.NewMachine(vm.DefaultPolicy(), vm.DefaultIO())
	m.Load(data)
	require.NoError(t, m.Storage().WReg(specs.InstructionRegister, specs.MemorySize, true))

	_, err = m.Step(context.Background())
	require.Error(t, err)

	var vmErr *vm.Error
	require.ErrorAs(t, err, &vmErr)
	require.Equal(t, vm.ExecPointerOutOfMemory, vmErr.Kind)
	require.Equal(t, specs.Word(specs.MemorySize), vmErr.Address)
}
