package vm

import "github.com/tigrkoshka/karma/specs"

// rmExecutor executes one decoded RM-format instruction against s. A
// non-nil retCode halts the run with that return code.
type rmExecutor func(s *Storage, args specs.RMArgs) (retCode *int32, err error)

var rmExecutors = map[specs.Code]rmExecutor{
	specs.LA:     execLA,
	specs.LOAD:   execLOAD,
	specs.LOAD2:  execLOAD2,
	specs.STORE:  execSTORE,
	specs.STORE2: execSTORE2,
}

func execLA(s *Storage, a specs.RMArgs) (*int32, error) {
	return nil, s.WReg(a.Reg, a.Addr, false)
}

func execLOAD(s *Storage, a specs.RMArgs) (*int32, error) {
	v, err := s.RMem(a.Addr, false)
	if err != nil {
		return nil, err
	}
	return nil, s.WReg(a.Reg, v, false)
}

func execLOAD2(s *Storage, a specs.RMArgs) (*int32, error) {
	lo, err := s.RMem(a.Addr, false)
	if err != nil {
		return nil, err
	}
	hi, err := s.RMem(a.Addr+1, false)
	if err != nil {
		return nil, err
	}
	if err := s.WReg(a.Reg, lo, false); err != nil {
		return nil, err
	}
	return nil, s.WReg(a.Reg+1, hi, false)
}

func execSTORE(s *Storage, a specs.RMArgs) (*int32, error) {
	v, err := s.RReg(a.Reg, false)
	if err != nil {
		return nil, err
	}
	return nil, s.WMem(a.Addr, v, false)
}

func execSTORE2(s *Storage, a specs.RMArgs) (*int32, error) {
	lo, err := s.RReg(a.Reg, false)
	if err != nil {
		return nil, err
	}
	hi, err := s.RReg(a.Reg+1, false)
	if err != nil {
		return nil, err
	}
	if err := s.WMem(a.Addr, lo, false); err != nil {
		return nil, err
	}
	return nil, s.WMem(a.Addr+1, hi, false)
}
