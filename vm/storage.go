package vm

import (
	"github.com/tigrkoshka/karma/execfile"
	"github.com/tigrkoshka/karma/specs"
)

// Storage owns the machine's memory array, register file, flags, and the
// currently-effective sandbox policy. Every register and memory access
// takes an internal flag: internal (VM bookkeeping, e.g. instruction
// fetch) accesses bypass policy enforcement; user (instruction-operand)
// accesses are checked against Policy.
type Storage struct {
	Memory    [specs.MemorySize]specs.Word
	Registers [specs.NRegisters]specs.Word
	flags     specs.Word

	Policy SandboxPolicy
	io     IO

	codeSize     specs.Word
	constantsEnd specs.Word
	minStackAddr specs.Word
}

// NewStorage returns an empty Storage governed by policy, reading and
// writing through io.
func NewStorage(policy SandboxPolicy, io IO) *Storage {
	return &Storage{Policy: policy, io: io}
}

// PrepareForExecution loads data's code and constants into memory
// starting at address 0, sets R13/R14 to the initial stack pointer, R15
// to the entrypoint, and computes the stack's lower bound from the
// sandbox's MaxStackSize.
func (s *Storage) PrepareForExecution(data execfile.Data) {
	copy(s.Memory[:], data.Code)
	copy(s.Memory[len(data.Code):], data.Constants)

	s.codeSize = specs.Word(len(data.Code))
	s.constantsEnd = s.codeSize + specs.Word(len(data.Constants))

	s.Registers[specs.CallFrameRegister] = data.InitialSP
	s.Registers[specs.StackRegister] = data.InitialSP
	s.Registers[specs.InstructionRegister] = data.Entrypoint
	s.flags = 0

	if s.Policy.MaxStackSize != 0 && s.Policy.MaxStackSize <= data.InitialSP {
		s.minStackAddr = data.InitialSP - s.Policy.MaxStackSize
	} else {
		s.minStackAddr = 0
	}
}

// Flags returns the current flags register.
func (s *Storage) Flags() specs.Word {
	return s.flags
}

// SetFlags overwrites the flags register; only CMP/CMPI/CMPD call this.
func (s *Storage) SetFlags(f specs.Word) {
	s.flags = f
}

// RReg reads a register, enforcing Policy.BlockedRegisters when
// internal is false.
func (s *Storage) RReg(reg specs.Register, internal bool) (specs.Word, error) {
	if err := s.checkRegister(reg, internal); err != nil {
		return 0, err
	}
	return s.Registers[reg], nil
}

// WReg writes a register, enforcing Policy.BlockedRegisters when
// internal is false.
func (s *Storage) WReg(reg specs.Register, val specs.Word, internal bool) error {
	if err := s.checkRegister(reg, internal); err != nil {
		return err
	}
	s.Registers[reg] = val
	return nil
}

func (s *Storage) checkRegister(reg specs.Register, internal bool) error {
	if int(reg) < 0 || int(reg) >= specs.NRegisters {
		return newError(InvalidRegister, "register out of range")
	}
	if !internal && s.Policy.BlockedRegisters[reg] {
		return newError(RegisterIsBlocked, "register "+reg.String()+" is blocked")
	}
	return nil
}

// RMem reads one memory word, enforcing bounds and segment-block policy
// when internal is false.
func (s *Storage) RMem(addr specs.Word, internal bool) (specs.Word, error) {
	if err := s.checkMem(addr, internal); err != nil {
		return 0, err
	}
	return s.Memory[addr], nil
}

// WMem writes one memory word, enforcing bounds and segment-block
// policy when internal is false.
func (s *Storage) WMem(addr specs.Word, val specs.Word, internal bool) error {
	if err := s.checkMem(addr, internal); err != nil {
		return err
	}
	s.Memory[addr] = val
	return nil
}

func (s *Storage) checkMem(addr specs.Word, internal bool) error {
	if addr >= specs.MemorySize {
		return newMemError(AddressOutOfMemory, addr, "address out of memory")
	}
	if internal {
		return nil
	}
	if s.Policy.BlockCodeSegment && addr < s.codeSize {
		return newMemError(CodeSegmentBlocked, addr, "code segment is write/read blocked")
	}
	if s.Policy.BlockConstantsSegment && addr >= s.codeSize && addr < s.constantsEnd {
		// Constants-segment reads and writes are governed by
		// BlockConstantsSegment alone; BlockCodeSegment does not
		// affect them.
		return newMemError(ConstantsSegmentBlocked, addr, "constants segment is write/read blocked")
	}
	return nil
}

// CheckPushAllowed validates the stack pointer (R14) is still inside
// memory and above the configured minimum stack address.
func (s *Storage) CheckPushAllowed() error {
	sp := s.Registers[specs.StackRegister]
	if sp >= specs.MemorySize {
		return newMemError(StackPointerOutOfMemory, sp, "stack pointer out of memory")
	}
	if s.Policy.MaxStackSize != 0 && sp < s.minStackAddr {
		return newMemError(StackOverflow, sp, "stack overflow")
	}
	return nil
}
