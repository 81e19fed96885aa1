// Command oooarm simulates programs on the out-of-order core: run a single
// program cycle by cycle, bench many programs concurrently, or inspect a
// saved architectural snapshot.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/eberaud/oooarm/pkg/asm"
	"github.com/eberaud/oooarm/pkg/bench"
	"github.com/eberaud/oooarm/pkg/config"
	"github.com/eberaud/oooarm/pkg/core"
	"github.com/eberaud/oooarm/pkg/isa"
	"github.com/eberaud/oooarm/pkg/snapshot"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "oooarm",
		Short: "Cycle-driven simulator for a superscalar out-of-order ARM-like core",
	}

	rootCmd.AddCommand(newRunCmd(), newBenchCmd(), newSnapshotCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.LoadTOML(path)
}

func loadProgram(path string) (isa.Program, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return isa.Program{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return asm.Parse(string(src))
}

func newRunCmd() *cobra.Command {
	var (
		configPath      string
		maxCycles       uint64
		snapshotOutPath string
		snapshotInPath  string
		dump            bool
		traceCycle      bool
		traceRetire     bool
		traceDecode     bool
		traceDisp       bool
		traceExec       bool
		traceIssue      bool
	)

	cmd := &cobra.Command{
		Use:   "run <program.s>",
		Short: "Simulate a single program to completion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			cfg.Trace.Cycle = cfg.Trace.Cycle || traceCycle
			cfg.Trace.Retire = cfg.Trace.Retire || traceRetire
			cfg.Trace.Decode = cfg.Trace.Decode || traceDecode
			cfg.Trace.Dispatch = cfg.Trace.Dispatch || traceDisp
			cfg.Trace.Execute = cfg.Trace.Execute || traceExec
			cfg.Trace.Issue = cfg.Trace.Issue || traceIssue

			program, err := loadProgram(args[0])
			if err != nil {
				return err
			}
			if dump {
				fmt.Print(program.String())
			}
			cpu, err := core.New(cfg, os.Stdout)
			if err != nil {
				return err
			}
			if snapshotInPath != "" {
				snap, err := snapshot.Load(snapshotInPath)
				if err != nil {
					return err
				}
				cpu.Resume(program, snap.Resume())
				fmt.Printf("resumed from %s at cycle %d\n", snapshotInPath, snap.Cycle)
			} else {
				cpu.Init(program)
			}
			if err := cpu.Run(maxCycles); err != nil {
				return err
			}

			fmt.Printf("retired %d instructions in %d cycles\n", cpu.Retired(), cpu.Cycle())
			for _, p := range cpu.PrintEvents() {
				fmt.Printf("[cycle %d] %s = %d\n", p.Cycle, p.Reg, p.Value)
			}

			if snapshotOutPath != "" {
				snap := snapshot.Capture(cpu, args[0])
				if err := snapshot.Save(snapshotOutPath, snap); err != nil {
					return err
				}
				fmt.Printf("snapshot written to %s\n", snapshotOutPath)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "TOML config file (default built-in config)")
	cmd.Flags().Uint64Var(&maxCycles, "max-cycles", 100000, "Abort if the simulation has not drained by this cycle")
	cmd.Flags().StringVar(&snapshotOutPath, "snapshot-out", "", "Write an architectural snapshot here after the run")
	cmd.Flags().StringVar(&snapshotInPath, "snapshot-in", "", "Resume from an architectural snapshot instead of starting fresh")
	cmd.Flags().BoolVar(&dump, "dump", false, "Print the disassembled program before running it")
	cmd.Flags().BoolVar(&traceCycle, "trace-cycle", false, "Trace cycle boundaries")
	cmd.Flags().BoolVar(&traceRetire, "trace-retire", false, "Trace retirement")
	cmd.Flags().BoolVar(&traceDecode, "trace-decode", false, "Trace fetch/decode")
	cmd.Flags().BoolVar(&traceDisp, "trace-dispatch", false, "Trace dispatch")
	cmd.Flags().BoolVar(&traceExec, "trace-execute", false, "Trace execution completion")
	cmd.Flags().BoolVar(&traceIssue, "trace-issue", false, "Trace rename/issue")
	return cmd
}

func newBenchCmd() *cobra.Command {
	var (
		configPath string
		workers    int
		maxCycles  uint64
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "bench <dir>",
		Short: "Simulate every *.asm program in a directory concurrently, sorted by IPC",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			paths, err := bench.DiscoverPrograms(args[0])
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				return fmt.Errorf("no *.asm programs found in %s", args[0])
			}

			jobs := make([]bench.Job, 0, len(paths))
			for _, path := range paths {
				program, err := loadProgram(path)
				if err != nil {
					return err
				}
				jobs = append(jobs, bench.Job{Name: path, Program: program, Config: cfg, MaxCycles: maxCycles})
			}

			pool := bench.NewPool(workers)
			outcomes := pool.Run(context.Background(), jobs, verbose)
			for _, o := range outcomes {
				if o.Err != nil {
					fmt.Printf("%s: ERROR %v\n", o.Name, o.Err)
					continue
				}
				fmt.Printf("%s: %d cycles, %d retired, %.3f ipc\n", o.Name, o.Cycles, o.Retired, o.IPC)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "TOML config file (default built-in config)")
	cmd.Flags().IntVar(&workers, "workers", 0, "Number of workers (0 = NumCPU)")
	cmd.Flags().Uint64Var(&maxCycles, "max-cycles", 100000, "Abort a job if it has not drained by this cycle")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print periodic progress")
	return cmd
}

func newSnapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Inspect saved architectural snapshots",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show <snapshot-file>",
		Short: "Print a snapshot's committed state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := snapshot.Load(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("program: %s\n", snap.ProgramPath)
			fmt.Printf("pc: %d, cycle: %d, retired: %d\n", snap.PC, snap.Cycle, snap.Retired)
			fmt.Printf("registers: %v\n", snap.ARF)
			fmt.Printf("memory: %v\n", snap.Memory)
			for _, p := range snap.Prints {
				fmt.Printf("[cycle %d] %s = %d\n", p.Cycle, p.Reg, p.Value)
			}
			return nil
		},
	})
	return cmd
}
