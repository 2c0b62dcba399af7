package compiler

// Lint performs a best-effort, non-fatal diagnostics pass over an
// already-merged program. warnUnusedLabel gates the one check currently
// implemented: labels that are defined but never referenced by any
// address operand (config's [assembler].warn_unused_label). It is
// purely a read-only query over the label table built by MergeAll and
// cannot change what Compile accepts or rejects.
func Lint(merged *ExecData, warnUnusedLabel bool) []Warning {
	if !warnUnusedLabel {
		return nil
	}

	used := map[string]bool{}
	for _, u := range merged.Labels.Usages() {
		used[u.Name] = true
	}

	if name, ok := merged.Labels.TryGetEntrypointLabel(); ok {
		used[name] = true
	}

	var warnings []Warning
	for name := range merged.Labels.commandDefs {
		if !used[name] {
			warnings = append(warnings, Warning{Message: "label defined but never used: " + name})
		}
	}
	for name := range merged.Labels.constantDefs {
		if !used[name] {
			warnings = append(warnings, Warning{Message: "constant label defined but never used: " + name})
		}
	}

	return warnings
}
