package vm

import (
	"math"

	"github.com/tigrkoshka/karma/specs"
)

// join packs two registers (low, high) into one 64-bit value, the layout
// used by DIV's dividend and the double-precision register pairs.
func join(low, high specs.Word) specs.TwoWords {
	return specs.TwoWords(low) | specs.TwoWords(high)<<32
}

// split is the inverse of join.
func split(v specs.TwoWords) (low, high specs.Word) {
	return specs.Word(v), specs.Word(v >> 32)
}

// getTwoRegisters reads the double-word value stored at (reg, reg+1).
func getTwoRegisters(s *Storage, reg specs.Register) (specs.TwoWords, error) {
	low, err := s.RReg(reg, false)
	if err != nil {
		return 0, err
	}
	high, err := s.RReg(reg+1, false)
	if err != nil {
		return 0, err
	}
	return join(low, high), nil
}

// putTwoRegisters writes a double-word value to (reg, reg+1).
func putTwoRegisters(s *Storage, reg specs.Register, v specs.TwoWords) error {
	low, high := split(v)
	if err := s.WReg(reg, low, false); err != nil {
		return err
	}
	return s.WReg(reg+1, high, false)
}

func getDouble(s *Storage, reg specs.Register) (specs.Double, error) {
	v, err := getTwoRegisters(s, reg)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

func putDouble(s *Storage, reg specs.Register, d specs.Double) error {
	return putTwoRegisters(s, reg, math.Float64bits(d))
}

// checkBitwiseRHS validates a shift/mask amount: it must be in [0, 32).
func checkBitwiseRHS(rhs int64) error {
	if rhs < 0 || rhs >= 32 {
		return newError(BitwiseRHSTooBig, "bitwise right-hand side must be in [0, 32)")
	}
	return nil
}

// divide computes dividend/rhs and dividend%rhs, checking for division
// by zero and for a quotient too large to fit one register.
func divide(dividend int64, rhs int64) (quotient, remainder int32, err error) {
	if rhs == 0 {
		return 0, 0, newError(DivisionByZero, "division by zero")
	}
	q := dividend / rhs
	r := dividend % rhs
	if q > math.MaxInt32 || q < math.MinInt32 {
		return 0, 0, newError(QuotientOverflow, "quotient does not fit a register")
	}
	return int32(q), int32(r), nil
}

// writeComparisonToFlags stores the trichotomy pattern for a three-way
// compare of a against b.
func writeComparisonToFlags(s *Storage, cmp int) {
	switch {
	case cmp == 0:
		s.SetFlags(specs.FlagsEqual)
	case cmp > 0:
		s.SetFlags(specs.FlagsGreater)
	default:
		s.SetFlags(specs.FlagsLess)
	}
}

func compareInt64(a, b int64) int {
	switch {
	case a == b:
		return 0
	case a > b:
		return 1
	default:
		return -1
	}
}

func compareDouble(a, b specs.Double) int {
	switch {
	case a == b:
		return 0
	case a > b:
		return 1
	default:
		return -1
	}
}

// push pushes val onto the stack: decrements R14, then writes val at the
// new R14.
func push(s *Storage, val specs.Word) error {
	sp, err := s.RReg(specs.StackRegister, true)
	if err != nil {
		return err
	}
	sp--
	if err := s.WReg(specs.StackRegister, sp, true); err != nil {
		return err
	}
	if err := s.CheckPushAllowed(); err != nil {
		return err
	}
	return s.WMem(sp, val, true)
}

// pop reads the word at R14, then increments R14.
func pop(s *Storage) (specs.Word, error) {
	sp, err := s.RReg(specs.StackRegister, true)
	if err != nil {
		return 0, err
	}
	val, err := s.RMem(sp, true)
	if err != nil {
		return 0, err
	}
	if err := s.WReg(specs.StackRegister, sp+1, true); err != nil {
		return 0, err
	}
	return val, nil
}

// call performs the CALL protocol: push the fall-through return address
// (the current R15, already incremented past the call instruction by the
// dispatch loop), push the current call-frame register, point the call
// frame at the stack top, and jump to callee. It returns the return
// address, which RR-form CALL deposits into its receiver register.
func call(s *Storage, callee specs.Word) (specs.Word, error) {
	retAddr, err := s.RReg(specs.InstructionRegister, true)
	if err != nil {
		return 0, err
	}
	if err := push(s, retAddr); err != nil {
		return 0, err
	}
	frame, err := s.RReg(specs.CallFrameRegister, true)
	if err != nil {
		return 0, err
	}
	if err := push(s, frame); err != nil {
		return 0, err
	}
	sp, err := s.RReg(specs.StackRegister, true)
	if err != nil {
		return 0, err
	}
	if err := s.WReg(specs.CallFrameRegister, sp, true); err != nil {
		return 0, err
	}
	if err := s.WReg(specs.InstructionRegister, callee, true); err != nil {
		return 0, err
	}
	return retAddr, nil
}

// ret performs the RET protocol. This double-restores the call-frame
// register while shuffling the stack pointer through it; that is a
// faithfully preserved quirk of the original implementation, not a bug:
// R14 is set from R13, R13 is popped, R15 is popped, R14 is set from R13
// again, and R13 is popped a second time.
func ret(s *Storage) error {
	frame, err := s.RReg(specs.CallFrameRegister, true)
	if err != nil {
		return err
	}
	if err := s.WReg(specs.StackRegister, frame, true); err != nil {
		return err
	}

	frame, err = pop(s)
	if err != nil {
		return err
	}
	if err := s.WReg(specs.CallFrameRegister, frame, true); err != nil {
		return err
	}

	retAddr, err := pop(s)
	if err != nil {
		return err
	}
	if err := s.WReg(specs.InstructionRegister, retAddr, true); err != nil {
		return err
	}

	frame, err = s.RReg(specs.CallFrameRegister, true)
	if err != nil {
		return err
	}
	if err := s.WReg(specs.StackRegister, frame, true); err != nil {
		return err
	}

	frame, err = pop(s)
	if err != nil {
		return err
	}
	return s.WReg(specs.CallFrameRegister, frame, true)
}

// jump tests cond's condition bits against the flags register and, if
// any selected bit is set, transfers control to addr.
func jump(s *Storage, cond specs.Word, addr specs.Word) error {
	if s.Flags()&cond != 0 {
		return s.WReg(specs.InstructionRegister, addr, true)
	}
	return nil
}
