package compiler

import (
	"math"
	"strconv"
	"strings"

	"github.com/tigrkoshka/karma/source"
	"github.com/tigrkoshka/karma/specs"
)

// ExecData is one file's compiled output: its own code and constant
// words, its own label table (indices relative to this file), and its
// entrypoint directive if it had one.
type ExecData struct {
	Code      []specs.Word
	Constants []specs.Word
	Labels    *Labels
}

// CompileFile assembles one source file into ExecData. It does not
// resolve includes (include.Resolve already did that) but it does skip
// the leading include directives include.Resolve consumed, since those
// lines carry no emittable content. parent is the file whose include
// directive named path (nil for the root), threaded through from
// include.Resolve so source.File.Where() can report the real include
// chain for any error raised while compiling this file.
func CompileFile(path string, parent *source.File) (*ExecData, error) {
	f, err := source.Open(path, parent)
	if err != nil {
		return nil, err
	}

	data := &ExecData{Labels: NewLabels()}
	fc := &fileCompiler{f: f, data: data}
	return data, fc.run()
}

type fileCompiler struct {
	f    *source.File
	data *ExecData

	pendingLabel      string
	pendingLabelWhere string
	skippingIncludes  bool
}

func (c *fileCompiler) run() error {
	c.skippingIncludes = true

	for c.f.NextLine() {
		tok, ok := c.f.GetToken()
		if !ok {
			continue
		}

		if c.skippingIncludes {
			if tok == specs.IncludeDirective {
				// Already resolved by include.Resolve; just consume the
				// filename token and move on.
				c.f.GetToken()
				continue
			}
			c.skippingIncludes = false
		}

		// Consume any run of label definitions prefixing real content on
		// this line, per §4.4: "name:" alone or prefixing another token
		// on the same line.
		for strings.HasSuffix(tok, string(specs.LabelEnd)) {
			name := tok[:len(tok)-1]
			if err := c.defineLabel(name); err != nil {
				return err
			}

			next, ok := c.f.GetToken()
			if !ok {
				tok = ""
				break
			}
			tok = next
		}

		if tok == "" {
			continue
		}

		if err := c.processLine(tok); err != nil {
			return err
		}
	}

	if c.pendingLabel != "" {
		return newError(FileEndsWithLabel, c.pendingLabelWhere, "file ends with a dangling label: "+c.pendingLabel)
	}

	return nil
}

func (c *fileCompiler) defineLabel(name string) error {
	where := c.f.Where()
	if name == "" {
		return newError(EmptyLabel, where, "empty label name")
	}
	if name[0] >= '0' && name[0] <= '9' {
		return newError(LabelStartsWithDigit, where, "label starts with a digit: "+name)
	}
	if !specs.IsValidLabel(name) {
		return newError(InvalidLabelChar, where, "invalid character in label: "+name)
	}
	if c.pendingLabel != "" {
		return newError(ConsecutiveLabels, where, "consecutive labels: "+c.pendingLabel+", "+name)
	}
	c.pendingLabel = name
	c.pendingLabelWhere = where
	return nil
}

func (c *fileCompiler) takePendingLabel() string {
	l := c.pendingLabel
	c.pendingLabel = ""
	return l
}

func (c *fileCompiler) processLine(tok string) error {
	where := c.f.Where()

	if tok == specs.EntrypointDirective {
		if c.pendingLabel != "" {
			return newError(LabelBeforeEntrypoint, where, "label immediately precedes entrypoint directive")
		}
		return c.processEntrypoint(where)
	}

	if ctype, ok := specs.ConstTypeByName[tok]; ok {
		return c.processConstant(ctype, where)
	}

	if code, ok := specs.NameToCode[tok]; ok {
		return c.processCommand(code, where)
	}

	return newError(UnknownCommand, where, "unknown command: "+tok)
}

func (c *fileCompiler) processEntrypoint(where string) error {
	tok, ok := c.f.GetToken()
	if !ok {
		return newError(EntrypointWithoutAddress, where, "entrypoint directive missing its target")
	}

	if extra, ok := c.f.GetToken(); ok {
		return newError(ExtraTokens, where, "extra token after entrypoint target: "+extra)
	}

	if addr, isNumeric, err := parseAddressLiteral(tok, where); err != nil {
		return err
	} else if isNumeric {
		return c.data.Labels.SetEntrypointAddr(addr, where)
	}

	// Not a numeric literal: must be a label. Label resolution happens
	// at link time; just record the symbolic entrypoint now.
	if !specs.IsValidLabel(tok) {
		return newError(InvalidLabelChar, where, "invalid entrypoint label: "+tok)
	}
	return c.data.Labels.SetEntrypointLabel(tok, where)
}

func (c *fileCompiler) processConstant(ctype specs.ConstType, where string) error {
	value, ok := c.f.GetLine()
	if !ok {
		return newError(EmptyConstantValue, where, "empty constant value")
	}

	idx := len(c.data.Constants)
	if label := c.takePendingLabel(); label != "" {
		if err := c.data.Labels.DefineConstantLabel(label, idx, where); err != nil {
			return err
		}
	}

	words, err := encodeConstant(ctype, value, where)
	if err != nil {
		return err
	}
	c.data.Constants = append(c.data.Constants, words...)
	return nil
}

func (c *fileCompiler) processCommand(code specs.Code, where string) error {
	format, ok := specs.CodeToFormat[code]
	if !ok {
		return newError(UnprocessedFormat, where, "opcode has no known format")
	}

	idx := len(c.data.Code)

	var word specs.Word
	var err error

	switch format {
	case specs.RM:
		word, err = c.buildRM(code, where, idx)
	case specs.RR:
		word, err = c.buildRR(code, where)
	case specs.RI:
		word, err = c.buildRI(code, where)
	case specs.J:
		word, err = c.buildJ(code, where, idx)
	default:
		return newError(UnprocessedFormat, where, "unknown format")
	}
	if err != nil {
		return err
	}

	if label := c.takePendingLabel(); label != "" {
		if err := c.data.Labels.DefineCommandLabel(label, idx, where); err != nil {
			return err
		}
	}

	c.data.Code = append(c.data.Code, word)

	if extra, ok := c.f.GetToken(); ok {
		return newError(ExtraTokens, where, "extra token after operands: "+extra)
	}

	return nil
}

func (c *fileCompiler) buildRM(code specs.Code, where string, idx int) (specs.Word, error) {
	reg, err := c.getRegister(where)
	if err != nil {
		return 0, err
	}
	addr, err := c.getAddressOperand(where, idx)
	if err != nil {
		return 0, err
	}
	return specs.BuildRM(code, specs.RMArgs{Reg: reg, Addr: addr}), nil
}

func (c *fileCompiler) buildRR(code specs.Code, where string) (specs.Word, error) {
	recv, err := c.getRegister(where)
	if err != nil {
		return 0, err
	}
	src, err := c.getRegister(where)
	if err != nil {
		return 0, err
	}
	mod, err := c.getOptionalImmediate(where, specs.ModSize)
	if err != nil {
		return 0, err
	}
	return specs.BuildRR(code, specs.RRArgs{Recv: recv, Src: src, Mod: mod}), nil
}

func (c *fileCompiler) buildRI(code specs.Code, where string) (specs.Word, error) {
	reg, err := c.getRegister(where)
	if err != nil {
		return 0, err
	}
	imm, err := c.getImmediate(where, specs.ImmSize)
	if err != nil {
		return 0, err
	}
	return specs.BuildRI(code, specs.RIArgs{Reg: reg, Imm: imm}), nil
}

func (c *fileCompiler) buildJ(code specs.Code, where string, idx int) (specs.Word, error) {
	addr, err := c.getAddressOperand(where, idx)
	if err != nil {
		return 0, err
	}
	return specs.BuildJ(code, specs.JArgs{Addr: addr}), nil
}

func (c *fileCompiler) getRegister(where string) (specs.Register, error) {
	tok, ok := c.f.GetToken()
	if !ok {
		return 0, newError(MissingOperand, where, "missing register operand")
	}
	reg, ok := specs.RegisterByName(tok)
	if !ok {
		return 0, newError(UnknownRegister, where, "unknown register: "+tok)
	}
	return reg, nil
}

// getImmediate parses a required signed immediate field of the given bit width.
func (c *fileCompiler) getImmediate(where string, nBits uint) (int64, error) {
	tok, ok := c.f.GetToken()
	if !ok {
		return 0, newError(MissingOperand, where, "missing immediate operand")
	}
	return parseSignedLiteral(tok, where, nBits)
}

// getOptionalImmediate parses RR's trailing signed "mod" field, which may
// be entirely absent (defaulting to 0).
func (c *fileCompiler) getOptionalImmediate(where string, nBits uint) (int64, error) {
	tok, ok := c.f.GetToken()
	if !ok {
		return 0, nil
	}
	return parseSignedLiteral(tok, where, nBits)
}

// getAddressOperand parses either a literal address or a label usage. A
// label usage is recorded against idx and the emitted bits are left
// zero; Label Substitution fills them in later.
func (c *fileCompiler) getAddressOperand(where string, idx int) (specs.Word, error) {
	tok, ok := c.f.GetToken()
	if !ok {
		return 0, newError(MissingOperand, where, "missing address operand")
	}

	if addr, isNumeric, err := parseAddressLiteral(tok, where); err != nil {
		return 0, err
	} else if isNumeric {
		return addr, nil
	}

	if !specs.IsValidLabel(tok) {
		return 0, newError(InvalidLabelChar, where, "invalid label in address operand: "+tok)
	}
	c.data.Labels.RecordUsage(tok, idx, where)
	return 0, nil
}

// parseAddressLiteral attempts to parse tok as a non-negative integer
// address. If tok starts with a digit but does not parse as a full
// number, that is reported as "label started with a digit" rather than
// "not a number", matching §4.4's parse-error recovery rule. If tok does
// not start with a digit at all, isNumeric is false and the caller
// should try it as a label.
func parseAddressLiteral(tok, where string) (addr specs.Word, isNumeric bool, err error) {
	if tok == "" || !(tok[0] >= '0' && tok[0] <= '9') {
		return 0, false, nil
	}

	n, convErr := strconv.ParseInt(tok, 0, 64)
	if convErr != nil {
		return 0, false, newError(LabelStartsWithDigit, where, "label starts with a digit: "+tok)
	}
	if n < 0 {
		return 0, false, newError(AddressNegative, where, "negative address: "+tok)
	}
	if n >= specs.MemorySize {
		return 0, false, newError(AddressOutOfMemory, where, "address out of memory: "+tok)
	}
	return specs.Word(n), true, nil
}

// parseSignedLiteral parses tok as a signed integer literal (decimal,
// hex, or octal per the standard prefixes) and checks it fits in nBits
// bits two's-complement.
func parseSignedLiteral(tok, where string, nBits uint) (int64, error) {
	n, err := strconv.ParseInt(tok, 0, 64)
	if err != nil {
		return 0, newError(ImmediateNotANumber, where, "not a number: "+tok)
	}

	min := -(int64(1) << (nBits - 1))
	max := int64(1)<<(nBits-1) - 1
	if n < min {
		return 0, newError(ImmediateLessThanMin, where, "immediate below minimum: "+tok)
	}
	if n > max {
		return 0, newError(ImmediateMoreThanMax, where, "immediate above maximum: "+tok)
	}
	return n, nil
}

// encodeConstant parses value (already trimmed, still quoted for char/
// string) as ctype and returns its constant-pool words, tag word first.
func encodeConstant(ctype specs.ConstType, value, where string) ([]specs.Word, error) {
	tag := specs.Word(ctype)

	switch ctype {
	case specs.UINT32:
		n, err := strconv.ParseUint(value, 0, 32)
		if err != nil {
			return nil, newError(InvalidConstantValue, where, "invalid uint32: "+value)
		}
		return []specs.Word{tag, specs.Word(n)}, nil

	case specs.UINT64:
		n, err := strconv.ParseUint(value, 0, 64)
		if err != nil {
			return nil, newError(InvalidConstantValue, where, "invalid uint64: "+value)
		}
		low := specs.Word(n)
		high := specs.Word(n >> 32)
		return []specs.Word{tag, low, high}, nil

	case specs.DOUBLE:
		d, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, newError(InvalidConstantValue, where, "invalid double: "+value)
		}
		bits := math.Float64bits(d)
		low := specs.Word(bits)
		high := specs.Word(bits >> 32)
		return []specs.Word{tag, low, high}, nil

	case specs.CHAR:
		r, err := parseCharLiteral(value, where)
		if err != nil {
			return nil, err
		}
		return []specs.Word{tag, specs.Word(r)}, nil

	case specs.STRING:
		s, err := parseStringLiteral(value, where)
		if err != nil {
			return nil, err
		}
		words := make([]specs.Word, 0, len(s)+2)
		words = append(words, tag)
		for _, r := range s {
			words = append(words, specs.Word(r))
		}
		words = append(words, specs.StringEndWord)
		return words, nil

	default:
		return nil, newError(UnprocessedConstantType, where, "unknown constant type")
	}
}

func parseCharLiteral(value, where string) (byte, error) {
	if len(value) < 3 || value[0] != specs.CharQuote || value[len(value)-1] != specs.CharQuote {
		return 0, newError(InvalidCharLiteral, where, "char literal must be quoted: "+value)
	}
	inner := specs.Unescape(value[1 : len(value)-1])
	if len(inner) != 1 {
		return 0, newError(InvalidCharLiteral, where, "char literal must unescape to one character: "+value)
	}
	return inner[0], nil
}

func parseStringLiteral(value, where string) (string, error) {
	if len(value) < 2 || value[0] != specs.StringQuote || value[len(value)-1] != specs.StringQuote {
		return "", newError(InvalidStringLiteral, where, "string literal must be quoted: "+value)
	}
	return specs.Unescape(value[1 : len(value)-1]), nil
}
