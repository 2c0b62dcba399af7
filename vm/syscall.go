package vm

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/tigrkoshka/karma/specs"
)

// Error Handling Philosophy:
//
// Every syscall failure here is a VM integrity failure, not an expected
// operation failure: the syscall table is EXIT/SCANINT/SCANDOUBLE/
// PRINTINT/PRINTDOUBLE/GETCHAR/PUTCHAR only, none of which has a
// meaningful "continue with an error code" outcome the way a file-I/O
// syscall would. A failed scan (bad input, EOF) therefore halts the run
// with an Error of kind Unexpected. A failed write (broken pipe) also
// halts the run, but with the writer's own error, which is not wrapped
// in an Error.

// Syscall numbers, selected by SYSCALL's immediate operand.
const (
	SyscallExit        = 0
	SyscallScanInt     = 100
	SyscallScanDouble  = 101
	SyscallPrintInt    = 102
	SyscallPrintDouble = 103
	SyscallGetChar     = 104
	SyscallPutChar     = 105
)

// IO bundles the executor's standard streams so a frontend (debugger
// TUI, test harness) can redirect them without touching global state.
type IO struct {
	In  *bufio.Reader
	Out io.Writer
}

// DefaultIO wires the executor to the process's real stdin/stdout.
func DefaultIO() IO {
	return IO{In: bufio.NewReader(os.Stdin), Out: os.Stdout}
}

func callSyscall(s *Storage, a specs.RIArgs) (*int32, error) {
	switch a.Imm {
	case SyscallExit:
		reg, err := s.RReg(a.Reg, false)
		if err != nil {
			return nil, err
		}
		ret := int32(reg)
		return &ret, nil

	case SyscallScanInt:
		return nil, scanInt(s, s.io, a.Reg)

	case SyscallScanDouble:
		return nil, scanDouble(s, s.io, a.Reg)

	case SyscallPrintInt:
		return nil, printInt(s, s.io, a.Reg)

	case SyscallPrintDouble:
		return nil, printDouble(s, s.io, a.Reg)

	case SyscallGetChar:
		return nil, getChar(s, s.io, a.Reg)

	case SyscallPutChar:
		return nil, putChar(s, s.io, a.Reg)

	default:
		return nil, newError(UnknownSyscallCode, fmt.Sprintf("unknown syscall code %d", a.Imm))
	}
}

func scanInt(s *Storage, io IO, reg specs.Register) error {
	tok, err := readToken(io.In)
	if err != nil {
		return newError(Unexpected, "failed to scan int: "+err.Error())
	}
	value, err := strconv.ParseInt(tok, 10, 32)
	if err != nil {
		return newError(Unexpected, "failed to parse int: "+err.Error())
	}
	return s.WReg(reg, specs.Word(int32(value)), false)
}

func scanDouble(s *Storage, io IO, reg specs.Register) error {
	tok, err := readToken(io.In)
	if err != nil {
		return newError(Unexpected, "failed to scan double: "+err.Error())
	}
	value, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return newError(Unexpected, "failed to parse double: "+err.Error())
	}
	return putDouble(s, reg, specs.Double(value))
}

// readToken reads one whitespace-delimited token from r, skipping any
// leading whitespace.
func readToken(r *bufio.Reader) (string, error) {
	var b strings.Builder
	for {
		c, _, err := r.ReadRune()
		if err != nil {
			if b.Len() > 0 {
				return b.String(), nil
			}
			return "", err
		}
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			if b.Len() > 0 {
				return b.String(), nil
			}
			continue
		}
		b.WriteRune(c)
	}
}

func printInt(s *Storage, io IO, reg specs.Register) error {
	v, err := s.RReg(reg, false)
	if err != nil {
		return err
	}
	_, ioErr := fmt.Fprintf(io.Out, "%d", int32(v))
	return ioErr
}

func printDouble(s *Storage, io IO, reg specs.Register) error {
	d, err := getDouble(s, reg)
	if err != nil {
		return err
	}
	_, ioErr := fmt.Fprintf(io.Out, "%g", float64(d))
	return ioErr
}

func getChar(s *Storage, io IO, reg specs.Register) error {
	b, err := io.In.ReadByte()
	if err != nil {
		return newError(Unexpected, "failed to read char: "+err.Error())
	}
	return s.WReg(reg, specs.Word(b), false)
}

func putChar(s *Storage, io IO, reg specs.Register) error {
	v, err := s.RReg(reg, false)
	if err != nil {
		return err
	}
	if v > 255 {
		return newError(InvalidPutCharValue, "putchar value must be <= 255")
	}
	_, ioErr := fmt.Fprintf(io.Out, "%c", byte(v))
	return ioErr
}
