package specs

import "strings"

const (
	CommentSep        = '#'
	DisableCommentSep  = '\\'
	LabelEnd           = ':'
)

const (
	IncludeDirective   = "include"
	EntrypointDirective = "end"
)

// IsAllowedLabelChar reports whether r may appear anywhere in a label
// name: lowercase letters, digits, underscore, and dot.
func IsAllowedLabelChar(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == '_' || r == '.':
		return true
	default:
		return false
	}
}

// IsValidLabel reports whether name is a syntactically valid label: a
// non-empty identifier not starting with a digit, composed entirely of
// allowed characters.
func IsValidLabel(name string) bool {
	if name == "" {
		return false
	}
	if name[0] >= '0' && name[0] <= '9' {
		return false
	}
	for _, r := range name {
		if !IsAllowedLabelChar(r) {
			return false
		}
	}
	return true
}

// EscapeSequences maps a single character following a backslash to its
// unescaped rune.
var EscapeSequences = map[rune]rune{
	'\'': '\'',
	'"':  '"',
	'?':  '?',
	'\\': '\\',
	'a':  '\a',
	'b':  '\b',
	'f':  '\f',
	'n':  '\n',
	'r':  '\r',
	't':  '\t',
	'v':  '\v',
	'#':  '#',
}

// UnescapeSequences is the inverse of EscapeSequences, used by the
// disassembler to re-introduce escapes when printing CHAR/STRING values.
var UnescapeSequences = func() map[rune]string {
	m := make(map[rune]string, len(EscapeSequences))
	for esc, lit := range EscapeSequences {
		m[lit] = "\\" + string(esc)
	}
	return m
}()

// Unescape replaces every recognized backslash escape in s with its
// literal character.
func Unescape(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		if runes[i] == '\\' && i+1 < len(runes) {
			if lit, ok := EscapeSequences[runes[i+1]]; ok {
				b.WriteRune(lit)
				i++
				continue
			}
		}
		b.WriteRune(runes[i])
	}
	return b.String()
}

// Escape re-introduces backslash escapes for any character in s that has
// one, used when printing disassembled CHAR/STRING constants.
func Escape(s string) string {
	var b strings.Builder
	for _, r := range s {
		if esc, ok := UnescapeSequences[r]; ok {
			b.WriteString(esc)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
