package vm

import "github.com/tigrkoshka/karma/specs"

// jExecutor executes one decoded J-format instruction. code is the
// opcode that was dispatched, needed by the conditional jumps to look
// up their condition bits.
type jExecutor func(s *Storage, code specs.Code, args specs.JArgs) (retCode *int32, err error)

var jExecutors = map[specs.Code]jExecutor{
	specs.JMP:   execJMP,
	specs.JNE:   execCondJump,
	specs.JEQ:   execCondJump,
	specs.JLE:   execCondJump,
	specs.JL:    execCondJump,
	specs.JGE:   execCondJump,
	specs.JG:    execCondJump,
	specs.CALLI: execCALLI,
	specs.RET:   execRET,
}

func execJMP(s *Storage, _ specs.Code, a specs.JArgs) (*int32, error) {
	return nil, s.WReg(specs.InstructionRegister, a.Addr, true)
}

func execCondJump(s *Storage, code specs.Code, a specs.JArgs) (*int32, error) {
	cond, ok := specs.ConditionBits[code]
	if !ok {
		return nil, newError(UnknownCommand, "unknown jump condition")
	}
	return nil, jump(s, cond, a.Addr)
}

func execCALLI(s *Storage, _ specs.Code, a specs.JArgs) (*int32, error) {
	_, err := call(s, a.Addr)
	return nil, err
}

func execRET(s *Storage, _ specs.Code, _ specs.JArgs) (*int32, error) {
	return nil, ret(s)
}
