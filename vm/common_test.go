package vm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tigrkoshka/karma/execfile"
	"github.com/tigrkoshka/karma/specs"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s := NewStorage(DefaultPolicy(), DefaultIO())
	s.PrepareForExecution(execfile.Data{InitialSP: specs.MemorySize - 1})
	return s
}

// TestCallReturnBalance exercises two nested calls and returns from the
// inner one, so that RET's second frame-register pop (the documented
// double-restoration quirk in ret) lands on a slot the outer CALL
// actually populated instead of on untouched memory.
func TestCallReturnBalance(t *testing.T) {
	s := newTestStorage(t)

	outerRet, err := call(s, 10)
	require.NoError(t, err)
	require.Equal(t, specs.Word(0), outerRet)
	require.Equal(t, specs.Word(10), s.Registers[specs.InstructionRegister])

	require.NoError(t, s.WReg(specs.InstructionRegister, 20, true))
	innerRet, err := call(s, 30)
	require.NoError(t, err)
	require.Equal(t, specs.Word(20), innerRet)
	require.Equal(t, specs.Word(30), s.Registers[specs.InstructionRegister])

	require.NoError(t, ret(s))
	require.Equal(t, specs.Word(20), s.Registers[specs.InstructionRegister])
}

func TestCompareTrichotomy(t *testing.T) {
	s := newTestStorage(t)

	writeComparisonToFlags(s, compareInt64(1, 1))
	require.Equal(t, specs.FlagsEqual, s.Flags())

	writeComparisonToFlags(s, compareInt64(2, 1))
	require.Equal(t, specs.FlagsGreater, s.Flags())

	writeComparisonToFlags(s, compareInt64(1, 2))
	require.Equal(t, specs.FlagsLess, s.Flags())
}

func TestDivideByZero(t *testing.T) {
	_, _, err := divide(10, 0)
	require.Error(t, err)

	var vmErr *Error
	require.ErrorAs(t, err, &vmErr)
	require.Equal(t, DivisionByZero, vmErr.Kind)
}

func TestPushPopRoundTrip(t *testing.T) {
	s := newTestStorage(t)

	require.NoError(t, push(s, 7))
	require.NoError(t, push(s, 9))

	v, err := pop(s)
	require.NoError(t, err)
	require.Equal(t, specs.Word(9), v)

	v, err = pop(s)
	require.NoError(t, err)
	require.Equal(t, specs.Word(7), v)
}
