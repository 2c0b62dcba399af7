// Package disassembler recovers textual Karma assembly from a compiled
// exec: inverse constant decoding (including null-terminated string walk
// and escape re-introduction) and label reconstruction for every
// jump/memory-reference target. Writing the result to a file is the
// caller's concern; this package only ever produces text.
package disassembler

import (
	"fmt"
	"strings"

	"github.com/tigrkoshka/karma/execfile"
	"github.com/tigrkoshka/karma/specs"
)

// Disassemble renders data as Karma assembly source.
func Disassemble(data execfile.Data) (string, error) {
	constLines, constLabels, err := disassembleConstants(data.Constants)
	if err != nil {
		return "", err
	}

	cmdLabels, err := commandLabels(data.Code, data.Entrypoint)
	if err != nil {
		return "", err
	}

	labels := make(map[specs.Word]string, len(constLabels)+len(cmdLabels))
	codeEnd := specs.Word(len(data.Code))
	for addr, label := range constLabels {
		labels[codeEnd+addr] = label
	}
	for addr, label := range cmdLabels {
		labels[addr] = label
	}

	codeLines, err := disassembleCode(data.Code, data.Entrypoint, labels)
	if err != nil {
		return "", err
	}

	var out strings.Builder
	for _, line := range constLines {
		fmt.Fprintln(&out, line)
	}
	if len(constLines) > 0 {
		fmt.Fprintln(&out)
	}
	for _, line := range codeLines {
		fmt.Fprintln(&out, line)
	}

	return out.String(), nil
}
