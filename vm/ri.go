package vm

import "github.com/tigrkoshka/karma/specs"

// riExecutor executes one decoded RI-format instruction. SYSCALL with
// the EXIT code is the only instruction that ever returns a non-nil
// retCode.
type riExecutor func(s *Storage, args specs.RIArgs) (retCode *int32, err error)

// HALT is handled directly by the dispatch loop (it blocks on a
// context rather than returning from one of these executors) and so
// has no entry here.
var riExecutors = map[specs.Code]riExecutor{
	specs.SYSCALL: execSYSCALL,
	specs.ADDI:    execADDI,
	specs.SUBI:    execSUBI,
	specs.MULI:    execMULI,
	specs.DIVI:    execDIVI,
	specs.NOT:     execNOT,
	specs.SHLI:    execSHLI,
	specs.SHRI:    execSHRI,
	specs.ANDI:    execANDI,
	specs.ORI:     execORI,
	specs.XORI:    execXORI,
	specs.CMPI:    execCMPI,
	specs.PUSH:    execPUSH,
	specs.POP:     execPOP,
	specs.LC:      execLC,
}

func execSYSCALL(s *Storage, a specs.RIArgs) (*int32, error) {
	return callSyscall(s, a)
}

func execADDI(s *Storage, a specs.RIArgs) (*int32, error) {
	reg, err := s.RReg(a.Reg, false)
	if err != nil {
		return nil, err
	}
	return nil, s.WReg(a.Reg, reg+specs.Word(a.Imm), false)
}

func execSUBI(s *Storage, a specs.RIArgs) (*int32, error) {
	reg, err := s.RReg(a.Reg, false)
	if err != nil {
		return nil, err
	}
	return nil, s.WReg(a.Reg, reg-specs.Word(a.Imm), false)
}

func execMULI(s *Storage, a specs.RIArgs) (*int32, error) {
	reg, err := s.RReg(a.Reg, false)
	if err != nil {
		return nil, err
	}
	product := int64(int32(reg)) * a.Imm
	return nil, putTwoRegisters(s, a.Reg, specs.TwoWords(product))
}

func execDIVI(s *Storage, a specs.RIArgs) (*int32, error) {
	dividend, err := getTwoRegisters(s, a.Reg)
	if err != nil {
		return nil, err
	}
	q, rem, err := divide(int64(dividend), a.Imm)
	if err != nil {
		return nil, err
	}
	if err := s.WReg(a.Reg, specs.Word(q), false); err != nil {
		return nil, err
	}
	return nil, s.WReg(a.Reg+1, specs.Word(rem), false)
}

func execNOT(s *Storage, a specs.RIArgs) (*int32, error) {
	reg, err := s.RReg(a.Reg, false)
	if err != nil {
		return nil, err
	}
	return nil, s.WReg(a.Reg, ^reg, false)
}

func bitwiseRI(s *Storage, a specs.RIArgs, op func(x, n specs.Word) specs.Word) (*int32, error) {
	reg, err := s.RReg(a.Reg, false)
	if err != nil {
		return nil, err
	}
	if err := checkBitwiseRHS(a.Imm); err != nil {
		return nil, err
	}
	return nil, s.WReg(a.Reg, op(reg, specs.Word(a.Imm)), false)
}

func execSHLI(s *Storage, a specs.RIArgs) (*int32, error) {
	return bitwiseRI(s, a, func(x, n specs.Word) specs.Word { return x << n })
}

func execSHRI(s *Storage, a specs.RIArgs) (*int32, error) {
	return bitwiseRI(s, a, func(x, n specs.Word) specs.Word { return x >> n })
}

func execANDI(s *Storage, a specs.RIArgs) (*int32, error) {
	return bitwiseRI(s, a, func(x, n specs.Word) specs.Word { return x & n })
}

func execORI(s *Storage, a specs.RIArgs) (*int32, error) {
	return bitwiseRI(s, a, func(x, n specs.Word) specs.Word { return x | n })
}

func execXORI(s *Storage, a specs.RIArgs) (*int32, error) {
	return bitwiseRI(s, a, func(x, n specs.Word) specs.Word { return x ^ n })
}

func execCMPI(s *Storage, a specs.RIArgs) (*int32, error) {
	reg, err := s.RReg(a.Reg, false)
	if err != nil {
		return nil, err
	}
	writeComparisonToFlags(s, compareInt64(int64(int32(reg)), a.Imm))
	return nil, nil
}

func execPUSH(s *Storage, a specs.RIArgs) (*int32, error) {
	reg, err := s.RReg(a.Reg, false)
	if err != nil {
		return nil, err
	}
	return nil, push(s, reg+specs.Word(a.Imm))
}

func execPOP(s *Storage, a specs.RIArgs) (*int32, error) {
	val, err := pop(s)
	if err != nil {
		return nil, err
	}
	return nil, s.WReg(a.Reg, val+specs.Word(a.Imm), false)
}

func execLC(s *Storage, a specs.RIArgs) (*int32, error) {
	return nil, s.WReg(a.Reg, specs.Word(a.Imm), false)
}
