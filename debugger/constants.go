package debugger

import "github.com/tigrkoshka/karma/specs"

// CLI progress cadence.
const (
	// DisplayUpdateFrequency controls how often RunCLI prints a progress
	// line during continuous execution: every N executed instructions.
	// The TUI does not use it.
	DisplayUpdateFrequency = 100
)

// Source listing context, in lines either side of the current ip.
const (
	ListContextLinesBefore        = 5
	ListContextLinesAfter         = 10
	ListContextLinesBeforeCompact = 2
	ListContextLinesAfterCompact  = 5
)

// Memory view layout. Karma's address space is word-addressed
// (specs.Word per cell), unlike a byte-addressed machine, so the
// dump is sized in words per row/column rather than bytes.
const (
	// MemoryViewWordsPerRow is the number of words printed per row of
	// the memory panel.
	MemoryViewWordsPerRow = 4

	// MemoryViewRows is the number of rows shown in the memory panel.
	MemoryViewRows = 12
)

// StackViewWords is the number of words shown in the TUI's stack
// panel, starting at the current stack register (specs.StackRegister).
const StackViewWords = 16

// StackInspectWords is the number of words the CLI's "info stack"
// prints, a shorter window than the TUI's since it scrolls the
// terminal rather than redrawing a fixed panel.
const StackInspectWords = 8

// Register view layout: Karma has specs.NRegisters (16) general
// registers, shown as a 4x4 grid with the cf/sp/ip aliases rendered
// inline rather than as the separate status line an ARM CPSR implies.
const (
	RegisterViewColumns = 4
	RegisterViewRows    = specs.NRegisters / RegisterViewColumns
)
