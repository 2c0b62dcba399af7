package debugger

import (
	"context"
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/tigrkoshka/karma/specs"
)

// TUI represents the text user interface for the debugger
type TUI struct {
	// Core components
	Debugger *Debugger
	App      *tview.Application
	Pages    *tview.Pages

	// Layout containers
	MainLayout *tview.Flex
	LeftPanel  *tview.Flex
	RightPanel *tview.Flex

	// View panels
	SourceView      *tview.TextView
	RegisterView    *tview.TextView
	MemoryView      *tview.TextView
	StackView       *tview.TextView
	DisassemblyView *tview.TextView
	BreakpointsView *tview.TextView
	OutputView      *tview.TextView
	CommandInput    *tview.InputField

	// State
	CurrentAddress specs.Word
	MemoryAddress  specs.Word
	StackAddress   specs.Word
	Running        bool

	// Source code cache
	SourceLines []string
	SourceFile  string
}

// NewTUI creates a new text user interface
func NewTUI(debugger *Debugger) *TUI {
	tui := &TUI{
		Debugger:       debugger,
		App:            tview.NewApplication(),
		CurrentAddress: 0,
		MemoryAddress:  0,
		StackAddress:   0,
		Running:        false,
	}

	tui.initializeViews()
	tui.buildLayout()
	tui.setupKeyBindings()

	return tui
}

// NewTUIWithScreen creates a TUI bound to an explicit tcell.Screen,
// letting tests drive it against a simulation screen instead of a
// real terminal.
func NewTUIWithScreen(debugger *Debugger, screen tcell.Screen) *TUI {
	tui := NewTUI(debugger)
	tui.App.SetScreen(screen)
	return tui
}

// initializeViews creates all the view panels
func (t *TUI) initializeViews() {
	t.SourceView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	t.SourceView.SetBorder(true).SetTitle(" Source ")

	t.RegisterView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false)
	t.RegisterView.SetBorder(true).SetTitle(" Registers ")

	t.MemoryView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	t.MemoryView.SetBorder(true).SetTitle(" Memory ")

	t.StackView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	t.StackView.SetBorder(true).SetTitle(" Stack ")

	t.DisassemblyView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	t.DisassemblyView.SetBorder(true).SetTitle(" Disassembly ")

	t.BreakpointsView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	t.BreakpointsView.SetBorder(true).SetTitle(" Breakpoints/Watchpoints ")

	t.OutputView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(true)
	t.OutputView.SetBorder(true).SetTitle(" Output ")

	t.CommandInput = tview.NewInputField().
		SetLabel("> ").
		SetFieldWidth(0)
	t.CommandInput.SetBorder(true).SetTitle(" Command ")
	t.CommandInput.SetDoneFunc(t.handleCommand)
	t.CommandInput.SetInputCapture(t.handleHistoryKeys)
}

// handleHistoryKeys lets Up/Down recall previous commands from
// t.Debugger.History, the way a shell's line editor does.
func (t *TUI) handleHistoryKeys(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyUp:
		if cmd := t.Debugger.History.Previous(); cmd != "" {
			t.CommandInput.SetText(cmd)
		}
		return nil
	case tcell.KeyDown:
		t.CommandInput.SetText(t.Debugger.History.Next())
		return nil
	default:
		return event
	}
}

// buildLayout constructs the TUI layout
func (t *TUI) buildLayout() {
	t.LeftPanel = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(t.SourceView, 0, 3, false).
		AddItem(t.DisassemblyView, 0, 2, false)

	rightTop := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(t.RegisterView, 10, 0, false).
		AddItem(t.MemoryView, 0, 1, false).
		AddItem(t.StackView, 0, 1, false)

	t.RightPanel = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(rightTop, 0, 3, false).
		AddItem(t.BreakpointsView, 8, 0, false)

	mainContent := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(t.LeftPanel, 0, 2, false).
		AddItem(t.RightPanel, 0, 1, false)

	t.MainLayout = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(mainContent, 0, 4, false).
		AddItem(t.OutputView, 8, 0, false).
		AddItem(t.CommandInput, 3, 0, true)

	t.Pages = tview.NewPages().
		AddPage("main", t.MainLayout, true, true)
}

// setupKeyBindings sets up keyboard shortcuts
func (t *TUI) setupKeyBindings() {
	t.App.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyF1:
			t.executeCommand("help")
			return nil
		case tcell.KeyF5:
			t.executeCommand("continue")
			return nil
		case tcell.KeyF9:
			t.executeCommand("break")
			return nil
		case tcell.KeyF10:
			t.executeCommand("next")
			return nil
		case tcell.KeyF11:
			t.executeCommand("step")
			return nil
		case tcell.KeyCtrlC:
			t.App.Stop()
			return nil
		case tcell.KeyCtrlL:
			t.RefreshAll()
			return nil
		}
		return event
	})
}

// handleCommand processes command input
func (t *TUI) handleCommand(key tcell.Key) {
	if key == tcell.KeyEnter {
		cmd := t.CommandInput.GetText()
		if cmd != "" {
			t.executeCommand(cmd)
			t.CommandInput.SetText("")
		}
	}
}

// executeCommand executes a debugger command
func (t *TUI) executeCommand(cmd string) {
	t.Debugger.Output.Reset()

	err := t.Debugger.ExecuteCommand(cmd)

	for err == nil && t.Debugger.Running {
		if stop, reason := t.Debugger.ShouldBreak(); stop {
			t.Debugger.Running = false
			t.Debugger.Printf("Stopped: %s\n", reason)
		} else if done, stepErr := t.Debugger.Machine.Step(context.Background()); stepErr != nil {
			t.Debugger.Running = false
			err = stepErr
		} else if done {
			t.Debugger.Running = false
			t.Debugger.Printf("Program exited with code %d\n", t.Debugger.Machine.ExitCode())
		}
	}

	output := t.Debugger.GetOutput()

	if err != nil {
		t.WriteOutput(fmt.Sprintf("[red]Error:[white] %v\n", err))
	}
	if output != "" {
		t.WriteOutput(output)
	}

	t.RefreshAll()
}

// WriteOutput writes to the output view
func (t *TUI) WriteOutput(text string) {
	_, _ = t.OutputView.Write([]byte(text))
	t.OutputView.ScrollToEnd()
}

// RefreshAll refreshes all view panels
func (t *TUI) RefreshAll() {
	t.UpdateSourceView()
	t.UpdateRegisterView()
	t.UpdateMemoryView()
	t.UpdateStackView()
	t.UpdateDisassemblyView()
	t.UpdateBreakpointsView()
	t.App.Draw()
}

// UpdateSourceView updates the source code view
func (t *TUI) UpdateSourceView() {
	t.SourceView.Clear()

	if len(t.Debugger.SourceMap) == 0 {
		t.SourceView.SetText("[yellow]No source code available[white]")
		return
	}

	ip, err := t.Debugger.Machine.Storage().RReg(specs.InstructionRegister, true)
	if err != nil {
		t.SourceView.SetText("[red]Unable to read instruction pointer[white]")
		return
	}

	var lines []string
	var startAddr specs.Word
	if ip > 5 {
		startAddr = ip - 5
	}

	for addr := startAddr; addr < ip+10; addr++ {
		sourceLine, exists := t.Debugger.SourceMap[addr]
		if !exists {
			continue
		}

		marker := "  "
		color := "white"
		if addr == ip {
			marker = "->"
			color = "yellow"
		}

		if t.Debugger.Breakpoints.GetBreakpoint(addr) != nil {
			marker = "* "
		}

		line := fmt.Sprintf("[%s]%s 0x%08X: %s[white]", color, marker, addr, sourceLine)
		lines = append(lines, line)
	}

	t.SourceView.SetText(strings.Join(lines, "\n"))
}

// UpdateRegisterView updates the register view
func (t *TUI) UpdateRegisterView() {
	t.RegisterView.Clear()

	storage := t.Debugger.Machine.Storage()
	var lines []string

	for i := 0; i < RegisterViewRows; i++ {
		var cols []string
		for j := 0; j < RegisterViewColumns; j++ {
			reg := specs.Register(i*RegisterViewColumns + j)
			name := reg.String()
			switch reg {
			case specs.CallFrameRegister:
				name = "cf "
			case specs.StackRegister:
				name = "sp "
			case specs.InstructionRegister:
				name = "ip "
			}

			value, err := storage.RReg(reg, true)
			if err != nil {
				value = 0
			}
			cols = append(cols, fmt.Sprintf("%-3s: 0x%08X", name, value))
		}
		lines = append(lines, strings.Join(cols, "  "))
	}

	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("flags: %s (0x%X)", flagsString(storage.Flags()), storage.Flags()))

	t.RegisterView.SetText(strings.Join(lines, "\n"))
}

// UpdateMemoryView updates the memory view
func (t *TUI) UpdateMemoryView() {
	t.MemoryView.Clear()

	addr := t.MemoryAddress
	if addr == 0 {
		ip, err := t.Debugger.Machine.Storage().RReg(specs.InstructionRegister, true)
		if err == nil {
			addr = ip
		}
	}

	var lines []string
	lines = append(lines, fmt.Sprintf("[yellow]Address: 0x%08X[white]", addr))

	for row := 0; row < MemoryViewRows; row++ {
		rowAddr := addr + specs.Word(row*MemoryViewWordsPerRow)

		line := fmt.Sprintf("0x%08X: ", rowAddr)

		var words []string
		for col := 0; col < MemoryViewWordsPerRow; col++ {
			wordAddr := rowAddr + specs.Word(col)
			value, err := t.Debugger.Machine.Storage().RMem(wordAddr, true)
			if err != nil {
				words = append(words, "????????")
			} else {
				words = append(words, fmt.Sprintf("%08X", value))
			}
		}

		line += strings.Join(words, " ")
		lines = append(lines, line)
	}

	t.MemoryView.SetText(strings.Join(lines, "\n"))
}

// UpdateStackView updates the stack view
func (t *TUI) UpdateStackView() {
	t.StackView.Clear()

	sp, err := t.Debugger.Machine.Storage().RReg(specs.StackRegister, true)
	if err != nil {
		t.StackView.SetText("[red]Unable to read stack register[white]")
		return
	}

	var lines []string
	lines = append(lines, fmt.Sprintf("[yellow]Stack register (sp): 0x%08X[white]", sp))

	for i := specs.Word(0); i < StackViewWords; i++ {
		addr := sp + i

		word, err := t.Debugger.Machine.Storage().RMem(addr, true)
		if err != nil {
			lines = append(lines, fmt.Sprintf("0x%08X: ????????", addr))
			continue
		}

		marker := "  "
		if addr == sp {
			marker = "->"
		}

		line := fmt.Sprintf("%s 0x%08X: 0x%08X", marker, addr, word)

		if sym := t.findSymbolForAddress(word); sym != "" {
			line += fmt.Sprintf(" <%s>", sym)
		}

		lines = append(lines, line)
	}

	t.StackView.SetText(strings.Join(lines, "\n"))
}

// UpdateDisassemblyView updates the disassembly view
func (t *TUI) UpdateDisassemblyView() {
	t.DisassemblyView.Clear()

	ip, err := t.Debugger.Machine.Storage().RReg(specs.InstructionRegister, true)
	if err != nil {
		t.DisassemblyView.SetText("[red]Unable to read instruction pointer[white]")
		return
	}

	var lines []string

	var startAddr specs.Word
	if ip > 8 {
		startAddr = ip - 8
	}

	for i := specs.Word(0); i < 16; i++ {
		addr := startAddr + i

		instr, err := t.Debugger.Machine.Storage().RMem(addr, true)
		if err != nil {
			continue
		}

		marker := "  "
		color := "white"
		if addr == ip {
			marker = "->"
			color = "yellow"
		}

		if t.Debugger.Breakpoints.GetBreakpoint(addr) != nil {
			marker = "* "
		}

		mnemonic := specs.CodeToName[specs.GetCode(instr)]

		line := fmt.Sprintf("[%s]%s 0x%08X: 0x%08X (%s)[white]", color, marker, addr, instr, mnemonic)

		if sym := t.findSymbolForAddress(addr); sym != "" {
			line = fmt.Sprintf("[%s]%s 0x%08X: 0x%08X (%s)  <%s>[white]", color, marker, addr, instr, mnemonic, sym)
		}

		lines = append(lines, line)
	}

	t.DisassemblyView.SetText(strings.Join(lines, "\n"))
}

// UpdateBreakpointsView updates the breakpoints and watchpoints view
func (t *TUI) UpdateBreakpointsView() {
	t.BreakpointsView.Clear()

	var lines []string

	bps := t.Debugger.Breakpoints.GetAllBreakpoints()
	if len(bps) > 0 {
		lines = append(lines, "[yellow]Breakpoints:[white]")
		for _, bp := range bps {
			status := "enabled"
			color := "green"
			if !bp.Enabled {
				status = "disabled"
				color = "red"
			}

			line := fmt.Sprintf("  %d: [%s]%s[white] 0x%08X", bp.ID, color, status, bp.Address)

			if sym := t.findSymbolForAddress(bp.Address); sym != "" {
				line += fmt.Sprintf(" <%s>", sym)
			}

			if bp.Condition != "" {
				line += fmt.Sprintf(" if %s", bp.Condition)
			}

			line += fmt.Sprintf(" (hits: %d)", bp.HitCount)

			lines = append(lines, line)
		}
	} else {
		lines = append(lines, "[yellow]No breakpoints set[white]")
	}

	lines = append(lines, "")

	wps := t.Debugger.Watchpoints.GetAllWatchpoints()
	if len(wps) > 0 {
		lines = append(lines, "[yellow]Watchpoints:[white]")
		for _, wp := range wps {
			typeStr := "watch"
			if wp.Type == WatchRead {
				typeStr = "rwatch"
			} else if wp.Type == WatchReadWrite {
				typeStr = "awatch"
			}

			line := fmt.Sprintf("  %d: %s %s = 0x%08X", wp.ID, typeStr, wp.Expression, wp.LastValue)
			lines = append(lines, line)
		}
	}

	t.BreakpointsView.SetText(strings.Join(lines, "\n"))
}

// findSymbolForAddress finds a symbol name for an address
func (t *TUI) findSymbolForAddress(addr specs.Word) string {
	for sym, symAddr := range t.Debugger.Symbols {
		if symAddr == addr {
			return sym
		}
	}
	return ""
}

// Run starts the TUI application
func (t *TUI) Run() error {
	t.RefreshAll()

	t.WriteOutput("[green]Karma Debugger TUI[white]\n")
	t.WriteOutput("Press F1 for help, F5 to continue, F10 to step over, F11 to step\n")
	t.WriteOutput("Type 'help' for command list\n\n")

	return t.App.SetRoot(t.Pages, true).SetFocus(t.CommandInput).Run()
}

// Stop stops the TUI application
func (t *TUI) Stop() {
	t.App.Stop()
}

// LoadSource loads source code for display
func (t *TUI) LoadSource(filename string, lines []string) {
	t.SourceFile = filename
	t.SourceLines = lines
	t.UpdateSourceView()
}
