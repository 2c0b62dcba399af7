package disassembler

import (
	"fmt"

	"github.com/tigrkoshka/karma/specs"
)

// ErrorKind classifies a disassembly failure, independent of its message.
type ErrorKind int

const (
	UnknownConstantType ErrorKind = iota
	ConstantNoValue
	NoTrailingZeroInString
	UnknownCommand
)

func (k ErrorKind) String() string {
	switch k {
	case UnknownConstantType:
		return "unknown constant type"
	case ConstantNoValue:
		return "constant has no value"
	case NoTrailingZeroInString:
		return "string constant has no trailing zero"
	case UnknownCommand:
		return "unknown command"
	default:
		return "unexpected error"
	}
}

// Error is a fatal disassembly failure. Pos is the constant-segment or
// code-segment index the failure was discovered at.
type Error struct {
	Kind ErrorKind
	Pos  int
	Code specs.Code
	Type specs.ConstType
}

func (e *Error) Error() string {
	switch e.Kind {
	case UnknownConstantType:
		return fmt.Sprintf("%s: %d at constant %d", e.Kind, e.Type, e.Pos)
	case ConstantNoValue:
		return fmt.Sprintf("%s: expected a %s value at constant %d", e.Kind, e.Type, e.Pos)
	case NoTrailingZeroInString:
		return fmt.Sprintf("%s: string starting at constant %d", e.Kind, e.Pos)
	case UnknownCommand:
		return fmt.Sprintf("%s: code %d at command %d", e.Kind, e.Code, e.Pos)
	default:
		return e.Kind.String()
	}
}

func newConstError(kind ErrorKind, pos int, ctype specs.ConstType) *Error {
	return &Error{Kind: kind, Pos: pos, Type: ctype}
}

func newCommandError(kind ErrorKind, pos int, code specs.Code) *Error {
	return &Error{Kind: kind, Pos: pos, Code: code}
}
