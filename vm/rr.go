package vm

import "github.com/tigrkoshka/karma/specs"

type rrExecutor func(s *Storage, args specs.RRArgs) (retCode *int32, err error)

var rrExecutors = map[specs.Code]rrExecutor{
	specs.ADD:     execADD,
	specs.SUB:     execSUB,
	specs.MUL:     execMUL,
	specs.DIV:     execDIV,
	specs.SHL:     execSHL,
	specs.SHR:     execSHR,
	specs.AND:     execAND,
	specs.OR:      execOR,
	specs.XOR:     execXOR,
	specs.ITOD:    execITOD,
	specs.DTOI:    execDTOI,
	specs.ADDD:    execADDD,
	specs.SUBD:    execSUBD,
	specs.MULD:    execMULD,
	specs.DIVD:    execDIVD,
	specs.CMP:     execCMP,
	specs.CMPD:    execCMPD,
	specs.MOV:     execMOV,
	specs.LOADR:   execLOADR,
	specs.LOADR2:  execLOADR2,
	specs.STORER:  execSTORER,
	specs.STORER2: execSTORER2,
	specs.CALL:    execCALL,
}

// rhs computes Reg[src] + sign_extend(mod), the common right-hand side
// used by every RR-format arithmetic, bitwise, and comparison operation.
func rhs(s *Storage, a specs.RRArgs) (int64, error) {
	src, err := s.RReg(a.Src, false)
	if err != nil {
		return 0, err
	}
	return int64(int32(src)) + a.Mod, nil
}

func execADD(s *Storage, a specs.RRArgs) (*int32, error) {
	recv, err := s.RReg(a.Recv, false)
	if err != nil {
		return nil, err
	}
	r, err := rhs(s, a)
	if err != nil {
		return nil, err
	}
	return nil, s.WReg(a.Recv, recv+specs.Word(r), false)
}

func execSUB(s *Storage, a specs.RRArgs) (*int32, error) {
	recv, err := s.RReg(a.Recv, false)
	if err != nil {
		return nil, err
	}
	r, err := rhs(s, a)
	if err != nil {
		return nil, err
	}
	return nil, s.WReg(a.Recv, recv-specs.Word(r), false)
}

func execMUL(s *Storage, a specs.RRArgs) (*int32, error) {
	recv, err := s.RReg(a.Recv, false)
	if err != nil {
		return nil, err
	}
	r, err := rhs(s, a)
	if err != nil {
		return nil, err
	}
	product := int64(int32(recv)) * r
	return nil, putTwoRegisters(s, a.Recv, specs.TwoWords(product))
}

func execDIV(s *Storage, a specs.RRArgs) (*int32, error) {
	dividend, err := getTwoRegisters(s, a.Recv)
	if err != nil {
		return nil, err
	}
	r, err := rhs(s, a)
	if err != nil {
		return nil, err
	}
	q, rem, err := divide(int64(dividend), r)
	if err != nil {
		return nil, err
	}
	if err := s.WReg(a.Recv, specs.Word(q), false); err != nil {
		return nil, err
	}
	return nil, s.WReg(a.Recv+1, specs.Word(rem), false)
}

func bitwiseRR(s *Storage, a specs.RRArgs, op func(a, b specs.Word) specs.Word) (*int32, error) {
	recv, err := s.RReg(a.Recv, false)
	if err != nil {
		return nil, err
	}
	r, err := rhs(s, a)
	if err != nil {
		return nil, err
	}
	if err := checkBitwiseRHS(r); err != nil {
		return nil, err
	}
	return nil, s.WReg(a.Recv, op(recv, specs.Word(r)), false)
}

func execSHL(s *Storage, a specs.RRArgs) (*int32, error) {
	return bitwiseRR(s, a, func(x, n specs.Word) specs.Word { return x << n })
}

func execSHR(s *Storage, a specs.RRArgs) (*int32, error) {
	return bitwiseRR(s, a, func(x, n specs.Word) specs.Word { return x >> n })
}

func execAND(s *Storage, a specs.RRArgs) (*int32, error) {
	return bitwiseRR(s, a, func(x, n specs.Word) specs.Word { return x & n })
}

func execOR(s *Storage, a specs.RRArgs) (*int32, error) {
	return bitwiseRR(s, a, func(x, n specs.Word) specs.Word { return x | n })
}

func execXOR(s *Storage, a specs.RRArgs) (*int32, error) {
	return bitwiseRR(s, a, func(x, n specs.Word) specs.Word { return x ^ n })
}

func execITOD(s *Storage, a specs.RRArgs) (*int32, error) {
	r, err := rhs(s, a)
	if err != nil {
		return nil, err
	}
	return nil, putDouble(s, a.Recv, specs.Double(r))
}

func execDTOI(s *Storage, a specs.RRArgs) (*int32, error) {
	d, err := getDouble(s, a.Src)
	if err != nil {
		return nil, err
	}
	floored := int64(d)
	if d != float64(int64(d)) {
		floored = int64(floorFloat(d))
	}
	if floored > int64(^uint32(0)>>1) || floored < -int64(^uint32(0)>>1)-1 {
		return nil, newError(DtoiOverflow, "double does not fit a register")
	}
	return nil, s.WReg(a.Recv, specs.Word(int32(floored)), false)
}

func floorFloat(d specs.Double) specs.Double {
	i := specs.Double(int64(d))
	if d < 0 && i != d {
		return i - 1
	}
	return i
}

func execADDD(s *Storage, a specs.RRArgs) (*int32, error) {
	return doubleOp(s, a, func(x, y specs.Double) specs.Double { return x + y })
}

func execSUBD(s *Storage, a specs.RRArgs) (*int32, error) {
	return doubleOp(s, a, func(x, y specs.Double) specs.Double { return x - y })
}

func execMULD(s *Storage, a specs.RRArgs) (*int32, error) {
	return doubleOp(s, a, func(x, y specs.Double) specs.Double { return x * y })
}

func execDIVD(s *Storage, a specs.RRArgs) (*int32, error) {
	x, err := getDouble(s, a.Recv)
	if err != nil {
		return nil, err
	}
	y, err := getDouble(s, a.Src)
	if err != nil {
		return nil, err
	}
	if y == 0 {
		return nil, newError(DivisionByZero, "double division by zero")
	}
	return nil, putDouble(s, a.Recv, x/y)
}

func doubleOp(s *Storage, a specs.RRArgs, op func(x, y specs.Double) specs.Double) (*int32, error) {
	x, err := getDouble(s, a.Recv)
	if err != nil {
		return nil, err
	}
	y, err := getDouble(s, a.Src)
	if err != nil {
		return nil, err
	}
	return nil, putDouble(s, a.Recv, op(x, y))
}

func execCMP(s *Storage, a specs.RRArgs) (*int32, error) {
	recv, err := s.RReg(a.Recv, false)
	if err != nil {
		return nil, err
	}
	r, err := rhs(s, a)
	if err != nil {
		return nil, err
	}
	writeComparisonToFlags(s, compareInt64(int64(int32(recv)), r))
	return nil, nil
}

func execCMPD(s *Storage, a specs.RRArgs) (*int32, error) {
	x, err := getDouble(s, a.Recv)
	if err != nil {
		return nil, err
	}
	y, err := getDouble(s, a.Src)
	if err != nil {
		return nil, err
	}
	writeComparisonToFlags(s, compareDouble(x, y))
	return nil, nil
}

func execMOV(s *Storage, a specs.RRArgs) (*int32, error) {
	r, err := rhs(s, a)
	if err != nil {
		return nil, err
	}
	return nil, s.WReg(a.Recv, specs.Word(r), false)
}

func execLOADR(s *Storage, a specs.RRArgs) (*int32, error) {
	r, err := rhs(s, a)
	if err != nil {
		return nil, err
	}
	v, err := s.RMem(specs.Word(r), false)
	if err != nil {
		return nil, err
	}
	return nil, s.WReg(a.Recv, v, false)
}

func execLOADR2(s *Storage, a specs.RRArgs) (*int32, error) {
	r, err := rhs(s, a)
	if err != nil {
		return nil, err
	}
	lo, err := s.RMem(specs.Word(r), false)
	if err != nil {
		return nil, err
	}
	hi, err := s.RMem(specs.Word(r)+1, false)
	if err != nil {
		return nil, err
	}
	if err := s.WReg(a.Recv, lo, false); err != nil {
		return nil, err
	}
	return nil, s.WReg(a.Recv+1, hi, false)
}

func execSTORER(s *Storage, a specs.RRArgs) (*int32, error) {
	recv, err := s.RReg(a.Recv, false)
	if err != nil {
		return nil, err
	}
	r, err := rhs(s, a)
	if err != nil {
		return nil, err
	}
	return nil, s.WMem(specs.Word(r), recv, false)
}

func execSTORER2(s *Storage, a specs.RRArgs) (*int32, error) {
	lo, err := s.RReg(a.Recv, false)
	if err != nil {
		return nil, err
	}
	hi, err := s.RReg(a.Recv+1, false)
	if err != nil {
		return nil, err
	}
	r, err := rhs(s, a)
	if err != nil {
		return nil, err
	}
	if err := s.WMem(specs.Word(r), lo, false); err != nil {
		return nil, err
	}
	return nil, s.WMem(specs.Word(r)+1, hi, false)
}

func execCALL(s *Storage, a specs.RRArgs) (*int32, error) {
	r, err := rhs(s, a)
	if err != nil {
		return nil, err
	}
	retAddr, err := call(s, specs.Word(r))
	if err != nil {
		return nil, err
	}
	return nil, s.WReg(a.Recv, retAddr, false)
}
