package debugger

import (
	"strings"
	"testing"
)

func TestDebugger_CmdHistory_ListsInOrder(t *testing.T) {
	d := NewDebugger(newTestMachine())

	_ = d.ExecuteCommand("break 0x10")
	_ = d.ExecuteCommand("step")
	d.GetOutput()

	if err := d.cmdHistory(nil); err != nil {
		t.Fatalf("cmdHistory failed: %v", err)
	}

	out := d.GetOutput()
	if !strings.Contains(out, "break 0x10") || !strings.Contains(out, "step") {
		t.Errorf("history output missing entries: %q", out)
	}
}

func TestDebugger_CmdHistory_SearchPrefix(t *testing.T) {
	d := NewDebugger(newTestMachine())

	_ = d.ExecuteCommand("break 0x10")
	_ = d.ExecuteCommand("break 0x20")
	_ = d.ExecuteCommand("step")
	d.GetOutput()

	if err := d.cmdHistory([]string{"break"}); err != nil {
		t.Fatalf("cmdHistory failed: %v", err)
	}

	out := d.GetOutput()
	if !strings.Contains(out, "break 0x10") || !strings.Contains(out, "break 0x20") {
		t.Errorf("search output missing matches: %q", out)
	}
	if strings.Contains(out, "step") {
		t.Errorf("search output should not contain non-matching entries: %q", out)
	}
}

func TestDebugger_CmdHistory_SearchNoMatches(t *testing.T) {
	d := NewDebugger(newTestMachine())

	_ = d.ExecuteCommand("step")
	d.GetOutput()

	if err := d.cmdHistory([]string{"break"}); err != nil {
		t.Fatalf("cmdHistory failed: %v", err)
	}

	out := d.GetOutput()
	if !strings.Contains(out, "No matching history") {
		t.Errorf("expected no-match message, got %q", out)
	}
}

func TestDebugger_CmdHistory_Clear(t *testing.T) {
	d := NewDebugger(newTestMachine())

	_ = d.ExecuteCommand("step")
	d.GetOutput()

	if err := d.cmdHistory([]string{"clear"}); err != nil {
		t.Fatalf("cmdHistory failed: %v", err)
	}
	d.GetOutput()

	if d.History.Size() != 0 {
		t.Errorf("History.Size() = %d, want 0 after clear", d.History.Size())
	}
}

func TestDebugger_CmdIgnore(t *testing.T) {
	d := NewDebugger(newTestMachine())

	bp := d.Breakpoints.AddBreakpoint(0x10, false, "")

	if err := d.cmdIgnore([]string{"1", "2"}); err != nil {
		t.Fatalf("cmdIgnore failed: %v", err)
	}
	d.GetOutput()

	if bp.IgnoreCount != 2 {
		t.Errorf("IgnoreCount = %d, want 2", bp.IgnoreCount)
	}

	if _, stop := d.Breakpoints.ProcessHit(0x10); stop {
		t.Error("first hit after ignore 2 should not stop")
	}
	if _, stop := d.Breakpoints.ProcessHit(0x10); stop {
		t.Error("second hit after ignore 2 should not stop")
	}
	if _, stop := d.Breakpoints.ProcessHit(0x10); !stop {
		t.Error("third hit should stop")
	}
}

func TestDebugger_CmdIgnore_UnknownBreakpoint(t *testing.T) {
	d := NewDebugger(newTestMachine())

	if err := d.cmdIgnore([]string{"99", "1"}); err == nil {
		t.Error("expected error ignoring an unknown breakpoint")
	}
}

func TestDebugger_CmdIgnore_BadArgs(t *testing.T) {
	d := NewDebugger(newTestMachine())

	if err := d.cmdIgnore([]string{"1"}); err == nil {
		t.Error("expected error with missing count argument")
	}
	if err := d.cmdIgnore([]string{"1", "-1"}); err == nil {
		t.Error("expected error with negative count")
	}
}
