package vm

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tigrkoshka/karma/specs"
)

func newIOStorage(t *testing.T, stdin string) (*Storage, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	s := NewStorage(DefaultPolicy(), IO{In: bufio.NewReader(strings.NewReader(stdin)), Out: &out})
	return s, &out
}

func TestSyscallPutCharOutOfRange(t *testing.T) {
	s, _ := newIOStorage(t, "")
	require.NoError(t, s.WReg(specs.R0, 256, false))

	_, err := callSyscall(s, specs.RIArgs{Reg: specs.R0, Imm: SyscallPutChar})
	require.Error(t, err)

	var vmErr *Error
	require.ErrorAs(t, err, &vmErr)
	require.Equal(t, InvalidPutCharValue, vmErr.Kind)
}

func TestSyscallUnknownCode(t *testing.T) {
	s, _ := newIOStorage(t, "")

	_, err := callSyscall(s, specs.RIArgs{Reg: specs.R0, Imm: 999})
	require.Error(t, err)

	var vmErr *Error
	require.ErrorAs(t, err, &vmErr)
	require.Equal(t, UnknownSyscallCode, vmErr.Kind)
}

func TestSyscallExitReturnsRegisterValue(t *testing.T) {
	s, _ := newIOStorage(t, "")
	require.NoError(t, s.WReg(specs.R0, 7, false))

	retCode, err := callSyscall(s, specs.RIArgs{Reg: specs.R0, Imm: SyscallExit})
	require.NoError(t, err)
	require.NotNil(t, retCode)
	require.Equal(t, int32(7), *retCode)
}

func TestSyscallScanIntThenPrintInt(t *testing.T) {
	s, out := newIOStorage(t, "  42 \n")

	_, err := callSyscall(s, specs.RIArgs{Reg: specs.R0, Imm: SyscallScanInt})
	require.NoError(t, err)

	_, err = callSyscall(s, specs.RIArgs{Reg: specs.R0, Imm: SyscallPrintInt})
	require.NoError(t, err)
	require.Equal(t, "42", out.String())
}

func TestSyscallGetCharPutChar(t *testing.T) {
	s, out := newIOStorage(t, "x")

	_, err := callSyscall(s, specs.RIArgs{Reg: specs.R0, Imm: SyscallGetChar})
	require.NoError(t, err)

	_, err = callSyscall(s, specs.RIArgs{Reg: specs.R0, Imm: SyscallPutChar})
	require.NoError(t, err)
	require.Equal(t, "x", out.String())
}
