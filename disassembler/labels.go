package disassembler

import (
	"fmt"
	"sort"

	"github.com/tigrkoshka/karma/specs"
)

const mainLabel = "main"

// commandLabels walks code once, collecting every RM and J-format target
// address that falls inside the code segment (excluding RET and other
// opcodes whose address field is not a real jump target), and assigns
// each a "command_label_N" name in address order. The entrypoint always
// gets "main" regardless of where in that order it falls.
func commandLabels(code []specs.Word, entrypoint specs.Word) (map[specs.Word]string, error) {
	codeEnd := specs.Word(len(code))

	seen := make(map[specs.Word]struct{})
	for i, word := range code {
		c := specs.GetCode(word)

		format, ok := specs.CodeToFormat[c]
		if !ok {
			return nil, newCommandError(UnknownCommand, i, c)
		}

		var addr specs.Word
		switch format {
		case specs.RM:
			addr = specs.ParseRM(word).Addr
		case specs.J:
			if specs.IgnoresAddress(c) {
				continue
			}
			addr = specs.ParseJ(word).Addr
		default:
			continue
		}

		if addr < codeEnd {
			seen[addr] = struct{}{}
		}
	}

	addrs := make([]specs.Word, 0, len(seen))
	for addr := range seen {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })

	labels := map[specs.Word]string{entrypoint: mainLabel}
	for _, addr := range addrs {
		if addr == entrypoint {
			continue
		}
		labels[addr] = fmt.Sprintf("command_label_%d", len(labels))
	}

	return labels, nil
}
