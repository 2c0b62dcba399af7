// Package source streams a Karma assembly file as cleaned logical lines:
// comments stripped, whitespace-tokenized, with a human-readable "where"
// string that includes the include chain for error reporting.
package source

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/tigrkoshka/karma/specs"
)

// File is a cursor over one source file's logical lines. It does not
// resolve include directives itself (that is include.Resolve's job); it
// only remembers its Parent for Where()'s include-chain breadcrumbs.
type File struct {
	path   string
	parent *File

	scanner *bufio.Scanner
	lineNum int

	curr    string // current logical line, comment-stripped
	currPos int    // byte offset of unconsumed remainder of curr
}

// Open reads path and returns a cursor positioned before its first line.
// parent is the file whose include directive named path, or nil for a
// root file.
func Open(path string, parent *File) (*File, error) {
	raw, err := os.ReadFile(path) // #nosec G304 -- path is resolved by include.Resolve, not attacker data
	if err != nil {
		return nil, &Error{Path: path, Message: "failed to open", Wrapped: err}
	}

	return &File{
		path:    path,
		parent:  parent,
		scanner: bufio.NewScanner(strings.NewReader(string(raw))),
	}, nil
}

// Path returns the file's own path, as given to Open.
func (f *File) Path() string {
	return f.path
}

// LineNum returns the 1-based number of the current logical line.
func (f *File) LineNum() int {
	return f.lineNum
}

// Parent returns the file whose include directive named f, or nil for a root file.
func (f *File) Parent() *File {
	return f.parent
}

// NextLine advances to the next logical line, stripping any trailing
// comment. It returns false at end of file.
func (f *File) NextLine() bool {
	if !f.scanner.Scan() {
		return false
	}
	f.lineNum++
	f.curr = trimComment(f.scanner.Text())
	f.currPos = 0
	return true
}

// trimComment removes a trailing comment: a '#' extends to end of line
// unless immediately preceded by '\', in which case the backslash and
// '#' are both retained verbatim for later escape processing.
func trimComment(line string) string {
	start := 0
	for {
		idx := strings.IndexByte(line[start:], specs.CommentSep)
		if idx == -1 {
			return line
		}
		pos := start + idx
		if pos > 0 && line[pos-1] == specs.DisableCommentSep {
			start = pos + 1
			continue
		}
		return line[:pos]
	}
}

// GetToken extracts the next whitespace-delimited token from the current
// line. ok is false once the line is exhausted.
func (f *File) GetToken() (token string, ok bool) {
	rest := f.curr[f.currPos:]
	trimmed := strings.TrimLeft(rest, " \t")
	skipped := len(rest) - len(trimmed)
	f.currPos += skipped

	if trimmed == "" {
		return "", false
	}

	end := strings.IndexAny(trimmed, " \t")
	if end == -1 {
		end = len(trimmed)
	}
	f.currPos += end

	return trimmed[:end], true
}

// GetLine returns the trimmed remainder of the current line, consuming
// it entirely. Used for constant values that may contain embedded
// spaces. ok is false if the remainder is empty.
func (f *File) GetLine() (line string, ok bool) {
	rest := strings.TrimSpace(f.curr[f.currPos:])
	f.currPos = len(f.curr)
	return rest, rest != ""
}

// Where renders a human-readable position reference: the current line
// number in this file, followed by the include chain up to the root.
func (f *File) Where() string {
	var b strings.Builder
	b.WriteString("at line ")
	b.WriteString(strconv.Itoa(f.lineNum))
	b.WriteString("\n   in ")

	for curr, first := f, true; curr != nil; curr, first = curr.parent, false {
		if !first {
			b.WriteString("\n included from ")
		}
		b.WriteString(curr.path)
	}

	return b.String()
}
