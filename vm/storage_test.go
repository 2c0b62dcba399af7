package vm_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tigrkoshka/karma/execfile"
	"github.com/tigrkoshka/karma/specs"
	"github.com/tigrkoshka/karma/vm"
)

func TestStoragePrepareForExecution(t *testing.T) {
	s := vm.NewStorage(vm.DefaultPolicy(), vm.DefaultIO())
	s.PrepareForExecution(execfile.Data{
		Entrypoint: 3,
		InitialSP:  specs.MemorySize - 1,
		Code:       []specs.Word{1, 2, 3, 4},
		Constants:  []specs.Word{5, 6},
	})

	pc, err := s.RReg(specs.InstructionRegister, true)
	require.NoError(t, err)
	require.Equal(t, specs.Word(3), pc)

	sp, err := s.RReg(specs.StackRegister, true)
	require.NoError(t, err)
	require.Equal(t, specs.Word(specs.MemorySize-1), sp)

	v, err := s.RMem(4, true)
	require.NoError(t, err)
	require.Equal(t, specs.Word(5), v)
}

func TestStorageBlockedRegister(t *testing.T) {
	policy := vm.DefaultPolicy().BlockRegister(specs.R3)
	s := vm.NewStorage(policy, vm.DefaultIO())

	_, err := s.RReg(specs.R3, false)
	require.Error(t, err)

	var vmErr *vm.Error
	require.ErrorAs(t, err, &vmErr)
	require.Equal(t, vm.RegisterIsBlocked, vmErr.Kind)

	// internal accesses bypass the block
	_, err = s.RReg(specs.R3, true)
	require.NoError(t, err)
}

func TestStorageMaxStackSize(t *testing.T) {
	policy := vm.DefaultPolicy()
	policy.MaxStackSize = 4
	s := vm.NewStorage(policy, vm.DefaultIO())
	s.PrepareForExecution(execfile.Data{InitialSP: 100})

	require.NoError(t, s.WReg(specs.StackRegister, 97, true))
	require.NoError(t, s.CheckPushAllowed())

	require.NoError(t, s.WReg(specs.StackRegister, 95, true))
	err := s.CheckPushAllowed()
	require.Error(t, err)

	var vmErr *vm.Error
	require.ErrorAs(t, err, &vmErr)
	require.Equal(t, vm.StackOverflow, vmErr.Kind)
}

func TestSandboxPolicyMeet(t *testing.T) {
	base := vm.DefaultPolicy().BlockRegister(specs.R1)
	base.MaxStackSize = 100

	override := vm.DefaultPolicy().BlockRegister(specs.R2)
	override.BlockCodeSegment = true
	override.MaxStackSize = 50

	merged := base.Meet(override)
	require.True(t, merged.BlockedRegisters[specs.R1])
	require.True(t, merged.BlockedRegisters[specs.R2])
	require.True(t, merged.BlockCodeSegment)
	require.Equal(t, specs.Word(50), merged.MaxStackSize)
}
