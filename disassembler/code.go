package disassembler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tigrkoshka/karma/specs"
)

// commandString renders one decoded instruction as assembly text,
// substituting a synthesized label for any RM/J address operand that
// resolves to one, and printing a bare hex address otherwise.
func commandString(word specs.Word, pos int, labels map[specs.Word]string) (string, error) {
	code := specs.GetCode(word)

	format, ok := specs.CodeToFormat[code]
	if !ok {
		return "", newCommandError(UnknownCommand, pos, code)
	}

	name, ok := specs.CodeToName[code]
	if !ok {
		return "", newCommandError(UnknownCommand, pos, code)
	}

	var b strings.Builder
	b.WriteString(name)

	switch format {
	case specs.RM:
		a := specs.ParseRM(word)
		b.WriteString(" " + a.Reg.String())
		b.WriteString(" " + addrOperand(a.Addr, labels))

	case specs.RR:
		a := specs.ParseRR(word)
		b.WriteString(" " + a.Recv.String())
		b.WriteString(" " + a.Src.String())
		if a.Mod != 0 {
			b.WriteString(" " + strconv.FormatInt(a.Mod, 10))
		}

	case specs.RI:
		a := specs.ParseRI(word)
		b.WriteString(" " + a.Reg.String())
		b.WriteString(" " + strconv.FormatInt(a.Imm, 10))

	case specs.J:
		// Even RET's address field, which the executor never reads,
		// must be printed: the assembler's J-format grammar always
		// requires an address operand, so omitting it here would
		// break the assemble/disassemble/assemble fixed point. Its
		// value is meaningless though, so it is never worth
		// substituting a label for.
		a := specs.ParseJ(word)
		if specs.IgnoresAddress(code) {
			b.WriteString(" " + fmt.Sprintf("0x%x", a.Addr))
		} else {
			b.WriteString(" " + addrOperand(a.Addr, labels))
		}

	default:
		return "", newCommandError(UnknownCommand, pos, code)
	}

	return b.String(), nil
}

// addrOperand prints addr as its synthesized label if one was assigned,
// falling back to a raw hexadecimal literal otherwise.
func addrOperand(addr specs.Word, labels map[specs.Word]string) string {
	if label, ok := labels[addr]; ok {
		return label
	}
	return fmt.Sprintf("0x%x", addr)
}

// disassembleCode renders the full code segment: instructions before the
// entrypoint at top level, the entrypoint's "main:" label, then the rest
// of the instructions indented, closed by "end main".
func disassembleCode(code []specs.Word, entrypoint specs.Word, labels map[specs.Word]string) ([]string, error) {
	var lines []string

	for i := specs.Word(0); i < entrypoint && int(i) < len(code); i++ {
		if label, ok := labels[i]; ok && label != mainLabel {
			lines = append(lines, label+":")
		}
		text, err := commandString(code[i], int(i), labels)
		if err != nil {
			return nil, err
		}
		lines = append(lines, text)
	}

	if entrypoint != 0 {
		lines = append(lines, "")
	}

	lines = append(lines, mainLabel+":")

	for i := int(entrypoint); i < len(code); i++ {
		if label, ok := labels[specs.Word(i)]; ok && label != mainLabel {
			lines = append(lines, label+":")
		}
		text, err := commandString(code[i], i, labels)
		if err != nil {
			return nil, err
		}
		lines = append(lines, "    "+text)
	}

	lines = append(lines, "end "+mainLabel)

	return lines, nil
}
