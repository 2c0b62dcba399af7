package compiler

// usage records one occurrence of a label name in an address operand,
// together with the code index of the instruction that names it and a
// representative source position for error reporting.
type usage struct {
	name      string
	codeIndex int
	where     string
}

// Labels is a per-file (and, after Merge, whole-program) table of label
// definitions and usages. Command-space and constant-space definitions
// are tracked separately because constant-label addresses must be
// offset by the code size once it is known (constants live immediately
// after code in the runtime image, though they are separate segments in
// the exec file).
type Labels struct {
	commandDefs  map[string]int
	constantDefs map[string]int
	usages       []usage

	hasEntrypoint   bool
	entrypointLabel string
	entrypointAddr  *uint32
	entrypointWhere string

	codeSize int
}

// NewLabels returns an empty label table.
func NewLabels() *Labels {
	return &Labels{
		commandDefs:  map[string]int{},
		constantDefs: map[string]int{},
	}
}

// DefineCommandLabel records name as bound to code index idx. It is an
// error to define the same name twice within one table.
func (l *Labels) DefineCommandLabel(name string, idx int, where string) error {
	if err := l.checkUndefined(name, where); err != nil {
		return err
	}
	l.commandDefs[name] = idx
	return nil
}

// DefineConstantLabel records name as bound to constant index idx.
func (l *Labels) DefineConstantLabel(name string, idx int, where string) error {
	if err := l.checkUndefined(name, where); err != nil {
		return err
	}
	l.constantDefs[name] = idx
	return nil
}

func (l *Labels) checkUndefined(name, where string) error {
	if _, ok := l.commandDefs[name]; ok {
		return newError(LabelRedefinition, where, "label already defined: "+name)
	}
	if _, ok := l.constantDefs[name]; ok {
		return newError(LabelRedefinition, where, "label already defined: "+name)
	}
	return nil
}

// RecordUsage notes that the instruction at codeIndex refers to name.
func (l *Labels) RecordUsage(name string, codeIndex int, where string) {
	l.usages = append(l.usages, usage{name: name, codeIndex: codeIndex, where: where})
}

// Usages returns every recorded (label name, code index, where) usage,
// in recording order.
func (l *Labels) Usages() []struct {
	Name      string
	CodeIndex int
	Where     string
} {
	out := make([]struct {
		Name      string
		CodeIndex int
		Where     string
	}, len(l.usages))
	for i, u := range l.usages {
		out[i].Name = u.name
		out[i].CodeIndex = u.codeIndex
		out[i].Where = u.where
	}
	return out
}

// SetEntrypointLabel records a symbolic entrypoint. At most one
// entrypoint (symbolic or numeric) may be set across a program.
func (l *Labels) SetEntrypointLabel(name, where string) error {
	if l.hasEntrypoint {
		return newError(SecondEntrypoint, where, "entrypoint already set")
	}
	l.hasEntrypoint = true
	l.entrypointLabel = name
	l.entrypointWhere = where
	return nil
}

// SetEntrypointAddr records a numeric entrypoint.
func (l *Labels) SetEntrypointAddr(addr uint32, where string) error {
	if l.hasEntrypoint {
		return newError(SecondEntrypoint, where, "entrypoint already set")
	}
	l.hasEntrypoint = true
	a := addr
	l.entrypointAddr = &a
	l.entrypointWhere = where
	return nil
}

// TryGetEntrypointLabel returns the symbolic entrypoint label name, if any.
func (l *Labels) TryGetEntrypointLabel() (string, bool) {
	if l.hasEntrypoint && l.entrypointAddr == nil {
		return l.entrypointLabel, true
	}
	return "", false
}

// TryGetEntrypointAddr returns the numeric entrypoint, if any.
func (l *Labels) TryGetEntrypointAddr() (uint32, bool) {
	if l.hasEntrypoint && l.entrypointAddr != nil {
		return *l.entrypointAddr, true
	}
	return 0, false
}

// HasEntrypoint reports whether any entrypoint (symbolic or numeric) was set.
func (l *Labels) HasEntrypoint() bool {
	return l.hasEntrypoint
}

// EntrypointWhere returns the position the entrypoint directive was seen at.
func (l *Labels) EntrypointWhere() string {
	return l.entrypointWhere
}

// SetCodeSize finalizes constant-label addresses as codeSize + index; it
// must be called exactly once, after all files are merged, before
// TryGetDefinition is used to resolve usages.
func (l *Labels) SetCodeSize(size int) {
	l.codeSize = size
}

// TryGetDefinition resolves name to its final address: a command label's
// address is its code index unchanged; a constant label's address is
// codeSize + its constant index (constants run immediately after code in
// the runtime memory image). SetCodeSize must have been called first.
func (l *Labels) TryGetDefinition(name string) (addr int, ok bool) {
	if idx, ok := l.commandDefs[name]; ok {
		return idx, true
	}
	if idx, ok := l.constantDefs[name]; ok {
		return l.codeSize + idx, true
	}
	return 0, false
}

// Merge folds other into l, shifting its command-label definitions by
// codeOffset and its constant-label definitions by constOffset, unioning
// usages and the entrypoint. It is an error for the same label name to
// be defined in both tables.
func (l *Labels) Merge(other *Labels, codeOffset, constOffset int) error {
	for name, idx := range other.commandDefs {
		if err := l.DefineCommandLabel(name, idx+codeOffset, ""); err != nil {
			return err
		}
	}
	for name, idx := range other.constantDefs {
		if err := l.DefineConstantLabel(name, idx+constOffset, ""); err != nil {
			return err
		}
	}
	for _, u := range other.usages {
		l.usages = append(l.usages, usage{
			name:      u.name,
			codeIndex: u.codeIndex + codeOffset,
			where:     u.where,
		})
	}
	if other.hasEntrypoint {
		// A numeric entrypoint is a final absolute address chosen by the
		// programmer (at most one file may ever supply one), not a
		// code-index relative to that file, so it is not shifted here.
		if other.entrypointAddr != nil {
			if err := l.SetEntrypointAddr(*other.entrypointAddr, other.entrypointWhere); err != nil {
				return err
			}
		} else if err := l.SetEntrypointLabel(other.entrypointLabel, other.entrypointWhere); err != nil {
			return err
		}
	}
	return nil
}
