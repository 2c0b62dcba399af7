package debugger

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/tigrkoshka/karma/specs"
)

// RunCLI runs the line-oriented command-line debugger interface.
func RunCLI(dbg *Debugger) error {
	scanner := bufio.NewScanner(os.Stdin)
	ctx := context.Background()

	for {
		fmt.Print("(karma-dbg) ")

		if !scanner.Scan() {
			break
		}

		cmdLine := strings.TrimSpace(scanner.Text())

		if cmdLine == "quit" || cmdLine == "q" || cmdLine == "exit" {
			fmt.Println("Exiting debugger...")
			break
		}

		if err := dbg.ExecuteCommand(cmdLine); err != nil {
			fmt.Printf("Error: %v\n", err)
		}

		if output := dbg.GetOutput(); output != "" {
			fmt.Print(output)
		}

		if dbg.Running {
			var executed uint64

			for dbg.Running {
				if shouldBreak, reason := dbg.ShouldBreak(); shouldBreak {
					dbg.Running = false
					ip, _ := dbg.Machine.Storage().RReg(specs.InstructionRegister, true)
					fmt.Printf("Stopped: %s at ip=0x%08X\n", reason, ip)
					break
				}

				done, err := dbg.Machine.Step(ctx)
				if err != nil {
					fmt.Printf("Runtime error: %v\n", err)
					dbg.Running = false
					break
				}
				executed++
				if executed%DisplayUpdateFrequency == 0 {
					ip, _ := dbg.Machine.Storage().RReg(specs.InstructionRegister, true)
					fmt.Printf("... %d instructions executed, ip=0x%08X\n", executed, ip)
				}

				if done || dbg.Machine.Halted() {
					dbg.Running = false
					fmt.Printf("Program exited with code %d\n", dbg.Machine.ExitCode())
					break
				}
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("input error: %w", err)
	}

	return nil
}

// RunTUI runs the tcell/tview terminal debugger interface.
func RunTUI(dbg *Debugger) error {
	tui := NewTUI(dbg)
	return tui.Run()
}
