// Package include resolves the transitive closure of a Karma source
// file's `include` directives via depth-first search, first-include-wins.
package include

import (
	"path/filepath"

	"github.com/tigrkoshka/karma/source"
	"github.com/tigrkoshka/karma/specs"
)

// Error reports a problem discovered while resolving includes.
type Error struct {
	Where   string
	Message string
}

func (e *Error) Error() string {
	return e.Message + "\n" + e.Where
}

// ResolvedFile names one file in the include closure together with the
// file whose include directive brought it in (nil for the root). The
// parent is carried through to compilation so source.File.Where() can
// still print the real include chain for errors raised while compiling
// an included file, instead of reporting it as if it were a root file.
type ResolvedFile struct {
	Path   string
	Parent *source.File
}

// Resolve walks rootPath and every file it transitively includes,
// honoring include directives only when they appear before any other
// content in a file. It returns the files in DFS order of first
// encounter, root first; a file included more than once appears only at
// its first occurrence. Callers compile each returned file independently
// with a fresh source.File opened against its recorded Parent
// (fileCompiler itself skips the leading include directives this scan
// already accounted for).
func Resolve(rootPath string) ([]ResolvedFile, error) {
	visited := map[string]bool{}
	var order []ResolvedFile

	var visit func(path string, parent *source.File) error
	visit = func(path string, parent *source.File) error {
		canon, err := filepath.Abs(path)
		if err != nil {
			canon = path
		}
		if visited[canon] {
			return nil
		}
		visited[canon] = true
		order = append(order, ResolvedFile{Path: path, Parent: parent})

		f, err := source.Open(path, parent)
		if err != nil {
			return err
		}

		dir := filepath.Dir(path)

		for f.NextLine() {
			tok, ok := f.GetToken()
			if !ok {
				continue
			}
			if tok != specs.IncludeDirective {
				// First non-include content: no more includes are
				// honored in this file.
				return nil
			}

			name, ok := f.GetToken()
			if !ok {
				return &Error{Where: f.Where(), Message: "include directive missing a filename"}
			}
			if _, extra := f.GetToken(); extra {
				return &Error{Where: f.Where(), Message: "unexpected extra token after include filename"}
			}

			includedPath := filepath.Join(dir, name)
			if err := visit(includedPath, f); err != nil {
				return err
			}
		}

		return nil
	}

	if err := visit(rootPath, nil); err != nil {
		return nil, err
	}

	return order, nil
}
