package vm

import (
	"context"

	"github.com/tigrkoshka/karma/execfile"
	"github.com/tigrkoshka/karma/specs"
)

// Machine is a self-contained executor instance: one Storage plus the
// loop that fetches, decodes and dispatches instructions against it.
// It owns no shared state and is not safe for concurrent use.
type Machine struct {
	storage *Storage
	halted  bool
	result  int32
}

// NewMachine returns a Machine governed by policy, with I/O wired to io.
func NewMachine(policy SandboxPolicy, io IO) *Machine {
	return &Machine{storage: NewStorage(policy, io)}
}

// Load prepares the machine to execute data from the start.
func (m *Machine) Load(data execfile.Data) {
	m.storage.PrepareForExecution(data)
	m.halted = false
	m.result = 0
}

// Storage exposes the underlying register/memory state, e.g. for a
// debugger frontend to inspect between steps.
func (m *Machine) Storage() *Storage {
	return m.storage
}

// Halted reports whether the last Step (or Run) ended the program via
// SYSCALL EXIT.
func (m *Machine) Halted() bool {
	return m.halted
}

// ExitCode is only meaningful once Halted reports true.
func (m *Machine) ExitCode() int32 {
	return m.result
}

// Step fetches, decodes and executes exactly one instruction. It
// blocks if the instruction is HALT, returning only when ctx is done.
// It returns (true, nil) once the program has terminated via SYSCALL
// EXIT.
func (m *Machine) Step(ctx context.Context) (done bool, err error) {
	if m.halted {
		return true, nil
	}

	s := m.storage

	pc, err := s.RReg(specs.InstructionRegister, true)
	if err != nil {
		return false, err
	}
	if pc >= specs.MemorySize {
		return false, newMemError(ExecPointerOutOfMemory, pc, "exec pointer out of memory")
	}
	word, err := s.RMem(pc, true)
	if err != nil {
		return false, err
	}
	// R15 is incremented before the instruction executes so CALL
	// records the correct fall-through return address.
	if err := s.WReg(specs.InstructionRegister, pc+1, true); err != nil {
		return false, err
	}

	code := specs.GetCode(word)

	if code == specs.HALT {
		<-ctx.Done()
		return false, nil
	}

	format, ok := specs.CodeToFormat[code]
	if !ok {
		return false, newError(UnknownCommand, "unknown command")
	}

	var retCode *int32
	switch format {
	case specs.RM:
		exec, ok := rmExecutors[code]
		if !ok {
			return false, newError(UnknownCommand, "unknown RM command")
		}
		retCode, err = exec(s, specs.ParseRM(word))

	case specs.RR:
		exec, ok := rrExecutors[code]
		if !ok {
			return false, newError(UnknownCommand, "unknown RR command")
		}
		retCode, err = exec(s, specs.ParseRR(word))

	case specs.RI:
		exec, ok := riExecutors[code]
		if !ok {
			return false, newError(UnknownCommand, "unknown RI command")
		}
		retCode, err = exec(s, specs.ParseRI(word))

	case specs.J:
		exec, ok := jExecutors[code]
		if !ok {
			return false, newError(UnknownCommand, "unknown J command")
		}
		retCode, err = exec(s, code, specs.ParseJ(word))

	default:
		return false, newError(UnknownCommand, "unknown command format")
	}

	if err != nil {
		return false, err
	}

	if retCode != nil {
		m.halted = true
		m.result = *retCode
		return true, nil
	}

	return false, nil
}

// Run steps the machine until it halts via SYSCALL EXIT, an execution
// error occurs, or ctx is cancelled while blocked on HALT.
func (m *Machine) Run(ctx context.Context) error {
	for {
		done, err := m.Step(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
}
