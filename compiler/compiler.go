package compiler

import (
	"github.com/tigrkoshka/karma/execfile"
	"github.com/tigrkoshka/karma/include"
)

// Compile assembles the program rooted at path (following its includes)
// into an execfile.Data, ready to be written with execfile.Write.
func Compile(path string) (execfile.Data, error) {
	data, _, err := CompileWithWarnings(path, false, false)
	return data, err
}

// CompileWithWarnings assembles path like Compile, additionally running
// Lint over the merged program when lint is true (config's
// [assembler].lint). warnUnusedLabel is forwarded to Lint unchanged
// (config's [assembler].warn_unused_label).
func CompileWithWarnings(path string, lint, warnUnusedLabel bool) (execfile.Data, []Warning, error) {
	resolved, err := include.Resolve(path)
	if err != nil {
		return execfile.Data{}, nil, err
	}

	files := make([]*ExecData, 0, len(resolved))
	for _, rf := range resolved {
		f, err := CompileFile(rf.Path, rf.Parent)
		if err != nil {
			return execfile.Data{}, nil, err
		}
		files = append(files, f)
	}

	merged, err := MergeAll(files)
	if err != nil {
		return execfile.Data{}, nil, err
	}

	var warnings []Warning
	if lint {
		warnings = Lint(merged, warnUnusedLabel)
	}

	data, err := ToExecData(merged)
	if err != nil {
		return execfile.Data{}, nil, err
	}

	return data, warnings, nil
}

// CompileToFile compiles path and writes the result to dst.
func CompileToFile(path, dst string) error {
	data, err := Compile(path)
	if err != nil {
		return err
	}
	return execfile.Write(dst, data)
}
