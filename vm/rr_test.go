package vm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tigrkoshka/karma/specs"
)

func TestBitwiseRHSOutOfRange(t *testing.T) {
	s := newTestStorage(t)
	require.NoError(t, s.WReg(specs.R0, 1, false))
	require.NoError(t, s.WReg(specs.R1, 32, false))

	_, err := execSHL(s, specs.RRArgs{Recv: specs.R0, Src: specs.R1})
	require.Error(t, err)

	var vmErr *Error
	require.ErrorAs(t, err, &vmErr)
	require.Equal(t, BitwiseRHSTooBig, vmErr.Kind)
}

func TestDtoiOverflow(t *testing.T) {
	s := newTestStorage(t)
	require.NoError(t, putDouble(s, specs.R0, 1e30))

	_, err := execDTOI(s, specs.RRArgs{Recv: specs.R2, Src: specs.R0})
	require.Error(t, err)

	var vmErr *Error
	require.ErrorAs(t, err, &vmErr)
	require.Equal(t, DtoiOverflow, vmErr.Kind)
}

func TestDtoiFloorsTowardNegativeInfinity(t *testing.T) {
	s := newTestStorage(t)
	require.NoError(t, putDouble(s, specs.R0, -1.5))

	_, err := execDTOI(s, specs.RRArgs{Recv: specs.R2, Src: specs.R0})
	require.NoError(t, err)

	v, err := s.RReg(specs.R2, true)
	require.NoError(t, err)
	require.Equal(t, specs.Word(uint32(int32(-2))), v)
}

func TestDoubleDivisionByZero(t *testing.T) {
	s := newTestStorage(t)
	require.NoError(t, putDouble(s, specs.R0, 1))
	require.NoError(t, putDouble(s, specs.R2, 0))

	_, err := execDIVD(s, specs.RRArgs{Recv: specs.R0, Src: specs.R2})
	require.Error(t, err)

	var vmErr *Error
	require.ErrorAs(t, err, &vmErr)
	require.Equal(t, DivisionByZero, vmErr.Kind)
}
