package compiler

import (
	"github.com/tigrkoshka/karma/execfile"
	"github.com/tigrkoshka/karma/specs"
)

// MergeAll concatenates each file's code and constant segments in
// resolver order, shifting each file's label definitions by the running
// offsets, and unions their usages and entrypoint. The returned ExecData
// has one flat Code/Constants slice and a single merged Labels table
// (with un-substituted address bits still zeroed for label-based
// operands).
func MergeAll(files []*ExecData) (*ExecData, error) {
	merged := &ExecData{Labels: NewLabels()}

	codeOffset, constOffset := 0, 0
	for _, file := range files {
		if err := merged.Labels.Merge(file.Labels, codeOffset, constOffset); err != nil {
			return nil, err
		}
		merged.Code = append(merged.Code, file.Code...)
		merged.Constants = append(merged.Constants, file.Constants...)
		codeOffset += len(file.Code)
		constOffset += len(file.Constants)
	}

	merged.Labels.SetCodeSize(len(merged.Code))

	return merged, nil
}

// ToExecData resolves merged's entrypoint and every recorded label usage
// against its label table, producing the final execfile.Data ready to be
// written. It is an error if any usage or the entrypoint has no
// definition.
func ToExecData(merged *ExecData) (execfile.Data, error) {
	entrypoint, err := resolveEntrypoint(merged)
	if err != nil {
		return execfile.Data{}, err
	}

	code := make([]specs.Word, len(merged.Code))
	copy(code, merged.Code)

	for _, u := range merged.Labels.Usages() {
		addr, ok := merged.Labels.TryGetDefinition(u.Name)
		if !ok {
			return execfile.Data{}, newError(UndefinedLabel, u.Where, "undefined label: "+u.Name)
		}
		// The instruction was emitted with its address bits zeroed;
		// OR-ing the resolved address in place is safe.
		code[u.CodeIndex] |= specs.Word(addr) & 0xfffff
	}

	return execfile.Data{
		Entrypoint: entrypoint,
		InitialSP:  specs.MemorySize - 1,
		Code:       code,
		Constants:  merged.Constants,
	}, nil
}

func resolveEntrypoint(merged *ExecData) (specs.Word, error) {
	if addr, ok := merged.Labels.TryGetEntrypointAddr(); ok {
		return addr, nil
	}
	if name, ok := merged.Labels.TryGetEntrypointLabel(); ok {
		addr, ok := merged.Labels.TryGetDefinition(name)
		if !ok {
			return 0, newError(UndefinedLabel, merged.Labels.EntrypointWhere(), "undefined entrypoint label: "+name)
		}
		return specs.Word(addr), nil
	}
	return 0, newError(NoEntrypoint, "", "no entrypoint directive in any file")
}
