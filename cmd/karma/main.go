// Command karma is the Karma toolchain entry point: it compiles .krm
// assembly into the fixed-header exec container, runs that container
// against the register VM, disassembles it back to text, or drives it
// from the interactive debugger.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tigrkoshka/karma/compiler"
	"github.com/tigrkoshka/karma/config"
	"github.com/tigrkoshka/karma/debugger"
	"github.com/tigrkoshka/karma/disassembler"
	"github.com/tigrkoshka/karma/execfile"
	"github.com/tigrkoshka/karma/specs"
	"github.com/tigrkoshka/karma/vm"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "karma",
		Short: "Compile, run, disassemble and debug Karma register-VM programs",
	}

	rootCmd.AddCommand(
		newCompileCmd(),
		newExecuteCmd(),
		newDisassembleCmd(),
		newDebugCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newCompileCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "compile <source.krm>",
		Short: "Assemble a Karma source file into an exec container",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := args[0]
			if output == "" {
				output = strings.TrimSuffix(src, ".krm") + ".kexec"
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			data, warnings, err := compiler.CompileWithWarnings(src, cfg.Assembler.Lint, cfg.Assembler.WarnUnusedLabel)
			if err != nil {
				return fmt.Errorf("compile %s: %w", src, err)
			}
			for _, w := range warnings {
				fmt.Fprintf(os.Stderr, "warning: %s\n", w.Message)
			}

			if err := execfile.Write(output, data); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}

			fmt.Printf("Wrote %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output exec file (default: <source>.kexec)")
	return cmd
}

func newExecuteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "execute <program.kexec>",
		Short: "Run a compiled exec container to completion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			data, err := execfile.Read(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			policy, err := sandboxPolicyFromConfig(cfg)
			if err != nil {
				return err
			}

			machine := vm.NewMachine(policy, vm.DefaultIO())
			machine.Load(data)

			ctx, cancel := signalContext()
			defer cancel()

			if cfg.Execution.MaxCycles == 0 {
				if err := machine.Run(ctx); err != nil {
					return fmt.Errorf("runtime error: %w", err)
				}
			} else {
				if err := runBounded(ctx, machine, cfg.Execution.MaxCycles); err != nil {
					return err
				}
			}

			os.Exit(int(machine.ExitCode()))
			return nil
		},
	}

	return cmd
}

// runBounded steps machine until it halts or maxCycles instructions
// have executed, whichever comes first.
func runBounded(ctx context.Context, machine *vm.Machine, maxCycles uint64) error {
	for cycle := uint64(0); cycle < maxCycles; cycle++ {
		done, err := machine.Step(ctx)
		if err != nil {
			return fmt.Errorf("runtime error: %w", err)
		}
		if done {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return fmt.Errorf("execution aborted: exceeded %d cycle limit", maxCycles)
}

func newDisassembleCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "disassemble <program.kexec>",
		Short: "Recover Karma assembly text from a compiled exec container",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := execfile.Read(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			text, err := disassembler.Disassemble(data)
			if err != nil {
				return fmt.Errorf("disassemble %s: %w", args[0], err)
			}

			if output == "" {
				fmt.Print(text)
				return nil
			}

			if err := os.WriteFile(output, []byte(text), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			fmt.Printf("Wrote %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write disassembly to a file instead of stdout")
	return cmd
}

func newDebugCmd() *cobra.Command {
	var useTUI bool

	cmd := &cobra.Command{
		Use:   "debug <program.kexec>",
		Short: "Step through a compiled exec container under the interactive debugger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			data, err := execfile.Read(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			policy, err := sandboxPolicyFromConfig(cfg)
			if err != nil {
				return err
			}

			machine := vm.NewMachine(policy, vm.DefaultIO())
			machine.Load(data)

			dbg := debugger.NewDebugger(machine)

			if useTUI {
				return debugger.RunTUI(dbg)
			}
			return debugger.RunCLI(dbg)
		},
	}

	cmd.Flags().BoolVar(&useTUI, "tui", false, "use the full-screen terminal UI instead of the line-oriented CLI")
	return cmd
}

// sandboxPolicyFromConfig translates the configuration's [sandbox]
// section into the vm.SandboxPolicy the executor enforces.
func sandboxPolicyFromConfig(cfg *config.Config) (vm.SandboxPolicy, error) {
	policy := vm.DefaultPolicy()

	for _, name := range cfg.Sandbox.BlockedRegisters {
		reg, ok := specs.RegisterByName(strings.ToLower(name))
		if !ok {
			return vm.SandboxPolicy{}, fmt.Errorf("unknown register in sandbox config: %s", name)
		}
		policy = policy.BlockRegister(reg)
	}

	policy.BlockCodeSegment = cfg.Sandbox.BlockCodeSegment
	policy.BlockConstantsSegment = cfg.Sandbox.BlockConstantsSegment
	policy.MaxStackSize = specs.Word(cfg.Sandbox.MaxStackSize)

	return policy, nil
}

// signalContext returns a context cancelled on SIGINT/SIGTERM, so a
// HALT-blocked machine or a bounded run can be interrupted cleanly.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
