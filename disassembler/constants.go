package disassembler

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tigrkoshka/karma/specs"
)

func isKnownConstType(t specs.ConstType) bool {
	_, ok := specs.ConstTypeByName[t.String()]
	return ok
}

// constantValue decodes one typed value out of constants starting at pos,
// returning its printable representation and the position just past it.
func constantValue(constants []specs.Word, pos int, ctype specs.ConstType) (string, int, error) {
	switch ctype {
	case specs.UINT32:
		return uint32Value(constants, pos)
	case specs.UINT64:
		return uint64Value(constants, pos)
	case specs.DOUBLE:
		return doubleValue(constants, pos)
	case specs.CHAR:
		return charValue(constants, pos)
	case specs.STRING:
		return stringValue(constants, pos)
	default:
		return "", pos, newConstError(UnknownConstantType, pos, ctype)
	}
}

func uint32Value(constants []specs.Word, pos int) (string, int, error) {
	if pos >= len(constants) {
		return "", pos, newConstError(ConstantNoValue, pos, specs.UINT32)
	}
	return strconv.FormatUint(uint64(constants[pos]), 10), pos + 1, nil
}

func uint64Value(constants []specs.Word, pos int) (string, int, error) {
	if pos+1 >= len(constants) {
		return "", pos, newConstError(ConstantNoValue, pos, specs.UINT64)
	}
	low, high := constants[pos], constants[pos+1]
	value := uint64(low) | uint64(high)<<32
	return strconv.FormatUint(value, 10), pos + 2, nil
}

func doubleValue(constants []specs.Word, pos int) (string, int, error) {
	if pos+1 >= len(constants) {
		return "", pos, newConstError(ConstantNoValue, pos, specs.DOUBLE)
	}
	low, high := constants[pos], constants[pos+1]
	bits := uint64(low) | uint64(high)<<32
	value := math.Float64frombits(bits)
	return strconv.FormatFloat(value, 'g', specs.DoublePrec, 64), pos + 2, nil
}

func charValue(constants []specs.Word, pos int) (string, int, error) {
	if pos >= len(constants) {
		return "", pos, newConstError(ConstantNoValue, pos, specs.CHAR)
	}
	c := string(rune(byte(constants[pos])))
	return string(specs.CharQuote) + specs.Escape(c) + string(specs.CharQuote), pos + 1, nil
}

func stringValue(constants []specs.Word, pos int) (string, int, error) {
	start := pos
	if pos >= len(constants) {
		return "", pos, newConstError(ConstantNoValue, pos, specs.STRING)
	}

	var b strings.Builder
	for pos < len(constants) && constants[pos] != specs.StringEndWord {
		b.WriteByte(byte(constants[pos]))
		pos++
	}
	if pos == len(constants) {
		return "", pos, newConstError(NoTrailingZeroInString, start, specs.STRING)
	}
	pos++ // skip the terminating zero word

	return string(specs.StringQuote) + specs.Escape(b.String()) + string(specs.StringQuote), pos, nil
}

// disassembleConstants walks the constants segment start to end, returning
// its printed lines and a map from each constant's tag-word address to its
// synthesized ".constant_N" label.
func disassembleConstants(constants []specs.Word) ([]string, map[specs.Word]string, error) {
	var lines []string
	labels := make(map[specs.Word]string)

	pos := 0
	for pos < len(constants) {
		tagAddr := specs.Word(pos)
		ctype := specs.ConstType(constants[pos])
		tagPos := pos
		pos++

		if !isKnownConstType(ctype) {
			return nil, nil, newConstError(UnknownConstantType, tagPos, ctype)
		}

		value, next, err := constantValue(constants, pos, ctype)
		if err != nil {
			return nil, nil, err
		}
		pos = next

		label := fmt.Sprintf(".constant_%d", len(labels)+1)
		labels[tagAddr] = label

		lines = append(lines, fmt.Sprintf("%s: %s %s", label, ctype, value))
	}

	return lines, labels, nil
}
