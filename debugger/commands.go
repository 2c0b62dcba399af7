package debugger

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tigrkoshka/karma/specs"
)

// Command handler implementations

// cmdRun starts or restarts program execution from the current state.
func (d *Debugger) cmdRun(args []string) error {
	d.Running = true
	d.StepMode = StepNone

	d.Println("Starting program execution...")
	return nil
}

// cmdContinue continues execution from current point
func (d *Debugger) cmdContinue(args []string) error {
	if d.Machine.Halted() {
		return fmt.Errorf("program is not running")
	}

	d.Running = true
	d.StepMode = StepNone

	d.Println("Continuing...")
	return nil
}

// cmdStep executes a single instruction
func (d *Debugger) cmdStep(args []string) error {
	d.StepMode = StepSingle
	d.Running = true
	return nil
}

// cmdNext steps over CALL/CALLI (step to next instruction at same level)
func (d *Debugger) cmdNext(args []string) error {
	d.SetStepOver()
	return nil
}

// cmdFinish steps out of the current call
func (d *Debugger) cmdFinish(args []string) error {
	cf, err := d.Machine.Storage().RReg(specs.CallFrameRegister, true)
	if err != nil {
		return err
	}
	// CALL pushes the return address, then the caller's R13, and points
	// R13 at that second slot, so the return address sits at cf+1.
	retAddr, err := d.Machine.Storage().RMem(cf+1, true)
	if err != nil {
		return err
	}
	d.SetStepOut(retAddr)
	return nil
}

// cmdBreak sets a breakpoint
func (d *Debugger) cmdBreak(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: break <address|label> [if <condition>]")
	}

	address, err := d.ResolveAddress(args[0])
	if err != nil {
		return err
	}

	var condition string
	if len(args) > 1 && strings.ToLower(args[1]) == "if" {
		condition = strings.Join(args[2:], " ")
	}

	bp := d.Breakpoints.AddBreakpoint(address, false, condition)

	if condition != "" {
		d.Printf("Breakpoint %d at 0x%08x (condition: %s)\n", bp.ID, address, condition)
	} else {
		d.Printf("Breakpoint %d at 0x%08x\n", bp.ID, address)
	}

	return nil
}

// cmdTBreak sets a temporary breakpoint (auto-delete after hit)
func (d *Debugger) cmdTBreak(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: tbreak <address|label>")
	}

	address, err := d.ResolveAddress(args[0])
	if err != nil {
		return err
	}

	bp := d.Breakpoints.AddBreakpoint(address, true, "")
	d.Printf("Temporary breakpoint %d at 0x%08x\n", bp.ID, address)

	return nil
}

// cmdDelete deletes breakpoint(s)
func (d *Debugger) cmdDelete(args []string) error {
	if len(args) == 0 {
		d.Breakpoints.Clear()
		d.Println("All breakpoints deleted")
		return nil
	}

	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid breakpoint ID: %s", args[0])
	}

	if err := d.Breakpoints.DeleteBreakpoint(id); err != nil {
		return err
	}

	d.Printf("Breakpoint %d deleted\n", id)
	return nil
}

// cmdEnable enables a breakpoint
func (d *Debugger) cmdEnable(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: enable <breakpoint-id>")
	}

	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid breakpoint ID: %s", args[0])
	}

	if err := d.Breakpoints.EnableBreakpoint(id); err != nil {
		return err
	}

	d.Printf("Breakpoint %d enabled\n", id)
	return nil
}

// cmdDisable disables a breakpoint
func (d *Debugger) cmdDisable(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: disable <breakpoint-id>")
	}

	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid breakpoint ID: %s", args[0])
	}

	if err := d.Breakpoints.DisableBreakpoint(id); err != nil {
		return err
	}

	d.Printf("Breakpoint %d disabled\n", id)
	return nil
}

// cmdIgnore sets a breakpoint's ignore count: the next n hits are
// counted but do not stop execution.
func (d *Debugger) cmdIgnore(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: ignore <breakpoint-id> <count>")
	}

	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid breakpoint ID: %s", args[0])
	}

	count, err := strconv.Atoi(args[1])
	if err != nil || count < 0 {
		return fmt.Errorf("invalid ignore count: %s", args[1])
	}

	if err := d.Breakpoints.SetIgnoreCount(id, count); err != nil {
		return err
	}

	if count == 0 {
		d.Printf("Will stop next time breakpoint %d is reached\n", id)
	} else {
		d.Printf("Will ignore next %d crossings of breakpoint %d\n", count, id)
	}

	return nil
}

// cmdWatch sets a write watchpoint
func (d *Debugger) cmdWatch(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: watch <expression>")
	}

	expression := strings.Join(args, " ")

	isRegister, register, address, err := d.parseWatchExpression(expression)
	if err != nil {
		return err
	}

	wp := d.Watchpoints.AddWatchpoint(WatchWrite, expression, address, isRegister, register)

	if err := d.Watchpoints.InitializeWatchpoint(wp.ID, d.Machine); err != nil {
		_ = d.Watchpoints.DeleteWatchpoint(wp.ID)
		return err
	}

	d.Printf("Watchpoint %d: %s\n", wp.ID, expression)
	return nil
}

// cmdRWatch sets a read watchpoint
func (d *Debugger) cmdRWatch(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: rwatch <expression>")
	}

	expression := strings.Join(args, " ")
	isRegister, register, address, err := d.parseWatchExpression(expression)
	if err != nil {
		return err
	}

	wp := d.Watchpoints.AddWatchpoint(WatchRead, expression, address, isRegister, register)

	if err := d.Watchpoints.InitializeWatchpoint(wp.ID, d.Machine); err != nil {
		_ = d.Watchpoints.DeleteWatchpoint(wp.ID)
		return err
	}

	d.Printf("Read watchpoint %d: %s\n", wp.ID, expression)
	return nil
}

// cmdAWatch sets a read/write watchpoint
func (d *Debugger) cmdAWatch(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: awatch <expression>")
	}

	expression := strings.Join(args, " ")
	isRegister, register, address, err := d.parseWatchExpression(expression)
	if err != nil {
		return err
	}

	wp := d.Watchpoints.AddWatchpoint(WatchReadWrite, expression, address, isRegister, register)

	if err := d.Watchpoints.InitializeWatchpoint(wp.ID, d.Machine); err != nil {
		_ = d.Watchpoints.DeleteWatchpoint(wp.ID)
		return err
	}

	d.Printf("Access watchpoint %d: %s\n", wp.ID, expression)
	return nil
}

// parseWatchExpression parses a watch expression (register or memory address)
func (d *Debugger) parseWatchExpression(expr string) (isRegister bool, register specs.Register, address specs.Word, err error) {
	expr = strings.ToLower(strings.TrimSpace(expr))

	switch expr {
	case "cf":
		return true, specs.CallFrameRegister, 0, nil
	case "sp":
		return true, specs.StackRegister, 0, nil
	case "ip":
		return true, specs.InstructionRegister, 0, nil
	}

	if reg, ok := specs.RegisterByName(expr); ok {
		return true, reg, 0, nil
	}

	if strings.HasPrefix(expr, "[") && strings.HasSuffix(expr, "]") {
		addrStr := strings.TrimSuffix(strings.TrimPrefix(expr, "["), "]")
		addr, err := d.ResolveAddress(addrStr)
		if err != nil {
			return false, 0, 0, err
		}
		return false, 0, addr, nil
	}

	addr, err := d.ResolveAddress(expr)
	if err != nil {
		return false, 0, 0, fmt.Errorf("invalid watch expression: %s", expr)
	}

	return false, 0, addr, nil
}

// cmdPrint evaluates and prints an expression
func (d *Debugger) cmdPrint(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: print <expression>")
	}

	expression := strings.Join(args, " ")
	result, err := d.Evaluator.EvaluateExpression(expression, d.Machine, d.Symbols)
	if err != nil {
		return err
	}

	if result > uint32(math.MaxInt32) {
		d.Printf("$%d = 0x%08x (out of int32 range: %d)\n", d.Evaluator.GetValueNumber(), result, result)
	} else {
		d.Printf("$%d = 0x%08x (%d)\n", d.Evaluator.GetValueNumber(), result, int32(result))
	}
	return nil
}

// cmdExamine examines memory at an address
func (d *Debugger) cmdExamine(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: x[/nf] <address>\n  n: count, f: format (x/d/u/o/t)")
	}

	count := 1
	format := 'x'
	addrArg := args[0]

	if strings.HasPrefix(args[0], "/") {
		formatStr := args[0][1:]
		if len(args) < 2 {
			return fmt.Errorf("missing address")
		}
		addrArg = args[1]

		i := 0
		for i < len(formatStr) && formatStr[i] >= '0' && formatStr[i] <= '9' {
			i++
		}
		if i > 0 {
			if n, err := strconv.Atoi(formatStr[:i]); err == nil {
				count = n
			}
			formatStr = formatStr[i:]
		}

		if len(formatStr) > 0 {
			format = rune(formatStr[0])
		}
	}

	address, err := d.ResolveAddress(addrArg)
	if err != nil {
		return err
	}

	d.Printf("0x%08x:", address)
	for i := 0; i < count; i++ {
		value, readErr := d.Machine.Storage().RMem(address, true)
		address++
		if readErr != nil {
			return readErr
		}

		switch format {
		case 'x':
			d.Printf(" 0x%08x", value)
		case 'd':
			d.Printf(" %d", int32(value))
		case 'u':
			d.Printf(" %d", value)
		case 'o':
			d.Printf(" %o", value)
		case 't':
			d.Printf(" %b", value)
		default:
			d.Printf(" 0x%08x", value)
		}
	}
	d.Println()

	return nil
}

// cmdInfo displays information about program state
func (d *Debugger) cmdInfo(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: info <registers|breakpoints|watchpoints|stack>")
	}

	switch strings.ToLower(args[0]) {
	case "registers", "reg", "r":
		return d.showRegisters()
	case "breakpoints", "break", "b":
		return d.showBreakpoints()
	case "watchpoints", "watch", "w":
		return d.showWatchpoints()
	case "stack", "s":
		return d.showStack()
	default:
		return fmt.Errorf("unknown info command: %s", args[0])
	}
}

// showRegisters displays all register values and the current flags.
func (d *Debugger) showRegisters() error {
	d.Println("Registers:")
	for i := specs.Register(0); i < specs.NRegisters; i++ {
		name := i.String()
		switch i {
		case specs.CallFrameRegister:
			name = "cf (r13)"
		case specs.StackRegister:
			name = "sp (r14)"
		case specs.InstructionRegister:
			name = "ip (r15)"
		}
		val, err := d.Machine.Storage().RReg(i, true)
		if err != nil {
			return err
		}
		d.Printf("  %-9s = 0x%08x (%d)\n", name, val, int32(val))
	}

	d.Printf("  flags    = %s\n", flagsString(d.Machine.Storage().Flags()))

	return nil
}

// flagsString renders the currently-set test flags, e.g. "[eq ge le]".
func flagsString(f specs.Word) string {
	names := []struct {
		bit  specs.Word
		name string
	}{
		{specs.FlagEqual, "eq"},
		{specs.FlagNotEqual, "ne"},
		{specs.FlagGreater, "gt"},
		{specs.FlagLess, "lt"},
		{specs.FlagGreaterOrEqual, "ge"},
		{specs.FlagLessOrEqual, "le"},
	}

	var set []string
	for _, n := range names {
		if f&n.bit != 0 {
			set = append(set, n.name)
		}
	}

	if len(set) == 0 {
		return "[]"
	}
	return "[" + strings.Join(set, " ") + "]"
}

// showBreakpoints displays all breakpoints
func (d *Debugger) showBreakpoints() error {
	breakpoints := d.Breakpoints.GetAllBreakpoints()
	if len(breakpoints) == 0 {
		d.Println("No breakpoints")
		return nil
	}

	d.Println("Breakpoints:")
	for _, bp := range breakpoints {
		status := "enabled"
		if !bp.Enabled {
			status = "disabled"
		}

		temp := ""
		if bp.Temporary {
			temp = " (temporary)"
		}

		condition := ""
		if bp.Condition != "" {
			condition = fmt.Sprintf(" if %s", bp.Condition)
		}

		ignore := ""
		if bp.IgnoreCount > 0 {
			ignore = fmt.Sprintf(" (ignore next %d)", bp.IgnoreCount)
		}

		d.Printf("  %d: 0x%08x %s%s%s%s (hit %d times)\n",
			bp.ID, bp.Address, status, temp, condition, ignore, bp.HitCount)
	}

	return nil
}

// showWatchpoints displays all watchpoints
func (d *Debugger) showWatchpoints() error {
	watchpoints := d.Watchpoints.GetAllWatchpoints()
	if len(watchpoints) == 0 {
		d.Println("No watchpoints")
		return nil
	}

	d.Println("Watchpoints:")
	for _, wp := range watchpoints {
		status := "enabled"
		if !wp.Enabled {
			status = "disabled"
		}

		wpType := "write"
		if wp.Type == WatchRead {
			wpType = "read"
		} else if wp.Type == WatchReadWrite {
			wpType = "access"
		}

		d.Printf("  %d: %s %s %s (hit %d times, last value: 0x%08x)\n",
			wp.ID, wp.Expression, wpType, status, wp.HitCount, wp.LastValue)
	}

	return nil
}

// showStack displays words around the current stack pointer.
func (d *Debugger) showStack() error {
	sp, err := d.Machine.Storage().RReg(specs.StackRegister, true)
	if err != nil {
		return err
	}
	d.Printf("Stack (sp = 0x%08x):\n", sp)

	for i := specs.Word(0); i < StackInspectWords; i++ {
		addr := sp + i
		value, err := d.Machine.Storage().RMem(addr, true)
		if err != nil {
			break
		}
		d.Printf("  0x%08x: 0x%08x (%d)\n", addr, value, int32(value))
	}

	return nil
}

// cmdBacktrace shows a minimal call "stack": the current instruction
// pointer and the current call-frame register (R13). The frame chain is
// not walked.
func (d *Debugger) cmdBacktrace(args []string) error {
	ip, err := d.Machine.Storage().RReg(specs.InstructionRegister, true)
	if err != nil {
		return err
	}
	d.Println("Call stack:")
	d.Printf("  #0  ip=0x%08x\n", ip)

	cf, err := d.Machine.Storage().RReg(specs.CallFrameRegister, true)
	if err == nil {
		d.Printf("  #1  cf=0x%08x\n", cf)
	}

	return nil
}

// cmdList shows source code around the current instruction pointer: by
// default ListContextLinesBeforeCompact/AfterCompact lines of context,
// or the wider ListContextLinesBefore/After window with "list full".
func (d *Debugger) cmdList(args []string) error {
	ip, err := d.Machine.Storage().RReg(specs.InstructionRegister, true)
	if err != nil {
		return err
	}

	before, after := ListContextLinesBeforeCompact, ListContextLinesAfterCompact
	if len(args) > 0 && args[0] == "full" {
		before, after = ListContextLinesBefore, ListContextLinesAfter
	}

	for offset := before; offset >= 1; offset-- {
		addr := ip - specs.Word(offset)
		if addr > ip {
			// Underflowed past address 0.
			continue
		}
		if source, exists := d.SourceMap[addr]; exists {
			d.Printf("   0x%08x: %s\n", addr, source)
		}
	}

	if source, exists := d.SourceMap[ip]; exists {
		d.Printf("=> 0x%08x: %s\n", ip, source)
	} else {
		d.Printf("=> 0x%08x: <no source>\n", ip)
	}

	for offset := 1; offset <= after; offset++ {
		addr := ip + specs.Word(offset)
		if source, exists := d.SourceMap[addr]; exists {
			d.Printf("   0x%08x: %s\n", addr, source)
		}
	}

	return nil
}

// cmdSet modifies register or memory values
func (d *Debugger) cmdSet(args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: set <register|*address> = <value>")
	}

	if args[1] != "=" {
		return fmt.Errorf("usage: set <register|*address> = <value>")
	}

	target := strings.ToLower(args[0])
	valueStr := args[2]

	value, err := d.Evaluator.EvaluateExpression(valueStr, d.Machine, d.Symbols)
	if err != nil {
		return err
	}

	if strings.HasPrefix(target, "*") {
		addrStr := target[1:]
		address, err := d.ResolveAddress(addrStr)
		if err != nil {
			return err
		}

		if err := d.Machine.Storage().WMem(address, value, true); err != nil {
			return err
		}

		d.Printf("Memory 0x%08x set to 0x%08x\n", address, value)
		return nil
	}

	var register specs.Register
	switch target {
	case "ip":
		register = specs.InstructionRegister
	case "sp":
		register = specs.StackRegister
	case "cf":
		register = specs.CallFrameRegister
	default:
		reg, ok := specs.RegisterByName(target)
		if !ok {
			return fmt.Errorf("invalid target: %s", target)
		}
		register = reg
	}

	if err := d.Machine.Storage().WReg(register, value, true); err != nil {
		return err
	}
	d.Printf("Register %s set to 0x%08x\n", target, value)

	return nil
}

// cmdReset leaves the machine untouched: the debugger does not retain
// the execfile.Data it was loaded from, so it prints how to restart the
// session instead.
func (d *Debugger) cmdReset(args []string) error {
	d.Println("Reset requires reloading the program; quit and restart with 'karma debug <file>'")
	return nil
}

// cmdHistory shows, searches, or clears the command history. With no
// arguments it lists every command in order; "history clear" empties
// it; any other argument is used as a prefix filter.
func (d *Debugger) cmdHistory(args []string) error {
	if len(args) > 0 && args[0] == "clear" {
		d.History.Clear()
		d.Println("History cleared")
		return nil
	}

	if len(args) > 0 {
		matches := d.History.Search(args[0])
		if len(matches) == 0 {
			d.Println("No matching history")
			return nil
		}
		for _, cmd := range matches {
			d.Println(cmd)
		}
		return nil
	}

	all := d.History.GetAll()
	for i, cmd := range all {
		d.Printf("%4d  %s\n", i+1, cmd)
	}

	return nil
}

// cmdHelp displays help information
func (d *Debugger) cmdHelp(args []string) error {
	if len(args) > 0 {
		return d.showCommandHelp(args[0])
	}

	d.Println("Karma Debugger Commands:")
	d.Println()
	d.Println("Execution Control:")
	d.Println("  run (r)           - Start program execution")
	d.Println("  continue (c)      - Continue execution")
	d.Println("  step (s, si)      - Execute single instruction")
	d.Println("  next (n)          - Step over CALL/CALLI")
	d.Println("  finish (fin)      - Step out of current call")
	d.Println()
	d.Println("Breakpoints:")
	d.Println("  break (b) <addr>  - Set breakpoint")
	d.Println("  tbreak (tb) <addr>- Set temporary breakpoint")
	d.Println("  delete (d) [id]   - Delete breakpoint(s)")
	d.Println("  enable <id>       - Enable breakpoint")
	d.Println("  disable <id>      - Disable breakpoint")
	d.Println("  ignore <id> <n>   - Ignore next n crossings of breakpoint")
	d.Println()
	d.Println("Watchpoints:")
	d.Println("  watch (w) <expr>  - Watch for writes")
	d.Println("  rwatch <expr>     - Watch for reads")
	d.Println("  awatch <expr>     - Watch for access")
	d.Println()
	d.Println("Inspection:")
	d.Println("  print (p) <expr>  - Evaluate expression")
	d.Println("  x[/nf] <addr>     - Examine memory")
	d.Println("  info (i) <what>   - Show information")
	d.Println("  backtrace (bt)    - Show call stack")
	d.Println("  list (l) [full]   - List source code (wider window with 'full')")
	d.Println()
	d.Println("Modification:")
	d.Println("  set <var> = <val> - Modify register/memory")
	d.Println()
	d.Println("Control:")
	d.Println("  reset             - Show how to restart the program")
	d.Println("  history [prefix|clear] - Show or search command history")
	d.Println("  help (h, ?)       - Show this help")
	d.Println()
	d.Println("Type 'help <command>' for detailed help on a specific command.")

	return nil
}

// showCommandHelp shows detailed help for a specific command
func (d *Debugger) showCommandHelp(cmd string) error {
	helpText := map[string]string{
		"break": "break <address|label> [if <condition>]\n  Set a breakpoint at the specified address or label.\n  Optional condition will be evaluated each time.",
		"step":  "step\n  Execute a single instruction.",
		"next":  "next\n  Step over CALL/CALLI (execute until the next instruction at the same level).",
		"print": "print <expression>\n  Evaluate and print an expression.\n  Expressions can include registers, memory, symbols, and arithmetic.",
		"x":     "x[/nf] <address>\n  Examine memory.\n  n: count, f: format (x/d/u/o/t)",
		"info":  "info <registers|breakpoints|watchpoints|stack>\n  Display information about program state.",
	}

	if help, exists := helpText[cmd]; exists {
		d.Println(help)
		return nil
	}

	return fmt.Errorf("no help available for command: %s", cmd)
}
