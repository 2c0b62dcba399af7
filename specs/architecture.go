// Package specs describes the fixed Karma machine architecture: word
// sizes, registers, instruction encoding, constant types, flags, and the
// exec container layout. Nothing in this package depends on any other
// Karma package; everything else depends on it.
package specs

// Word is a single 32-bit machine word: a register value, a memory
// cell, or a raw instruction encoding.
type Word = uint32

// TwoWords is the 64-bit value produced by pairing two adjacent
// registers or memory cells (used by DIV/DIVI's dividend and LOAD2/
// STORE2's operands).
type TwoWords = uint64

// Double is the IEEE-754 double-precision type used by the real-valued
// instruction family.
type Double = float64

// Register identifies one of the 16 general-purpose registers.
type Register Word

const (
	R0 Register = iota
	R1
	R2
	R3
	R4
	R5
	R6
	R7
	R8
	R9
	R10
	R11
	R12
	R13
	R14
	R15
)

const NRegisters = 16

const (
	// CallFrameRegister holds the base of the current call frame.
	CallFrameRegister = R13
	// StackRegister is the stack pointer.
	StackRegister = R14
	// InstructionRegister is the program counter.
	InstructionRegister = R15
)

// MemorySize is the number of addressable words in Karma's flat memory.
const MemorySize = 1 << 20

var registerNames = [NRegisters]string{
	"r0", "r1", "r2", "r3", "r4", "r5", "r6", "r7",
	"r8", "r9", "r10", "r11", "r12", "r13", "r14", "r15",
}

// String returns the lowercase assembly name of the register (e.g. "r13").
func (r Register) String() string {
	if int(r) < 0 || int(r) >= NRegisters {
		return "r?"
	}
	return registerNames[r]
}

// RegisterByName looks up a register by its assembly name ("r0".."r15").
func RegisterByName(name string) (Register, bool) {
	for i, n := range registerNames {
		if n == name {
			return Register(i), true
		}
	}
	return 0, false
}
