package main

import (
	"fmt"
	"net"
	"os"
	"runtime"
	"strconv"
	"sync/atomic"

	"github.com/cascade-hdl/cascade/internal/cio"
	"github.com/cascade-hdl/cascade/internal/engine"
	"github.com/cascade-hdl/cascade/internal/interp"
	"github.com/cascade-hdl/cascade/internal/remote"
	"github.com/spf13/cobra"
)

// Package-level option vars bound by cobra flags, the same shape the
// teacher's cmd/z80opt/main.go uses for --max-target/--workers/--dead-flags.
var (
	includePath    string
	slavePort      int
	slavePath      string
	enableInlining bool
	openLoopTarget int
	quartusHost    string
	quartusPort    int
	verbose        bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cascade",
		Short: "Cascade HDL JIT compilation and execution engine",
	}
	rootCmd.PersistentFlags().StringVar(&includePath, "include_path", "", "HDL search path")
	rootCmd.PersistentFlags().BoolVar(&enableInlining, "enable_inlining", false, "enable module-instantiation inlining during elaboration")
	rootCmd.PersistentFlags().IntVar(&openLoopTarget, "open_loop_target", 1, "per-step open-loop iteration budget")
	rootCmd.PersistentFlags().StringVar(&quartusHost, "quartus_host", "", "address of an external synthesis server")
	rootCmd.PersistentFlags().IntVar(&quartusPort, "quartus_port", 0, "port of an external synthesis server")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose diagnostics")

	rootCmd.AddCommand(newRunCmd(), newSlaveCmd(), newCacheInspectCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "cascade: %v\n", err)
		os.Exit(1)
	}
}

// haltingReporter wraps a cio.Reporter, latching done once the simulation
// calls $finish — the run loop below polls it to know when to stop
// stepping the Scheduler, since nothing else observes engine-side
// termination from outside the engine ABI.
type haltingReporter struct {
	cio.Reporter
	done atomic.Bool
}

func (r *haltingReporter) Finish(code int) {
	r.Reporter.Finish(code)
	r.done.Store(true)
}

func newRunCmd() *cobra.Command {
	var maxSteps int
	cmd := &cobra.Command{
		Use:   "run [module]",
		Short: "Compile and run a built-in fixture module to completion",
		Long: "run resolves [module] against this binary's built-in fixture " +
			"registry (spec.md's HDL lexer/parser is an out-of-scope external " +
			"collaborator, so run never reads HDL source text itself) and " +
			"drives it through the in-process backend until it finishes or " +
			"the step budget is exhausted.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, mod, err := lookupFixture(args[0])
			if err != nil {
				return err
			}

			reporter := &haltingReporter{Reporter: cio.StdReporter{Verbose: verbose}}
			eng, err := interp.Compile(source, mod, reporter, interp.Options{
				EnableInlining:   enableInlining,
				OpenLoopFriendly: true,
			})
			if err != nil {
				return fmt.Errorf("compile %s: %w", mod.Name, err)
			}

			sched := engine.NewScheduler(reporter, 1)
			sched.Add(mod.Name, eng)
			sched.SetOpenLoop(mod.Name, 0, uint32(openLoopTarget))

			for i := 0; i < maxSteps && !reporter.done.Load(); i++ {
				if err := sched.Step(); err != nil {
					return fmt.Errorf("step %d: %w", i, err)
				}
			}
			if err := sched.Finalize(); err != nil {
				return fmt.Errorf("finalize: %w", err)
			}
			if err := sched.DoneSimulation(); err != nil {
				return fmt.Errorf("done simulation: %w", err)
			}
			if !reporter.done.Load() {
				return fmt.Errorf("%s did not reach $finish within %d steps", mod.Name, maxSteps)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&maxSteps, "max_steps", 1000, "scheduler step budget before giving up")
	return cmd
}

func newSlaveCmd() *cobra.Command {
	var poolSize int
	cmd := &cobra.Command{
		Use:   "slave",
		Short: "Run as a remote backend, serving COMPILE and engine ABI RPCs",
		RunE: func(cmd *cobra.Command, args []string) error {
			if slavePort == 0 {
				return fmt.Errorf("--slave_port is required in slave mode")
			}
			if slavePath == "" {
				return fmt.Errorf("--slave_path is required in slave mode")
			}
			if poolSize <= 0 {
				poolSize = runtime.NumCPU()
			}

			cache, err := remote.NewSynthesisCache(slavePath)
			if err != nil {
				return fmt.Errorf("open synthesis cache: %w", err)
			}
			defer cache.Close()

			pool := engine.NewThreadPool(poolSize)
			defer pool.Stop()

			reporter := cio.StdReporter{Verbose: verbose}
			srv := remote.NewCompileServer(pool, cache, reporter, slavePath)
			if quartusHost != "" || quartusPort != 0 {
				srv.SetToolchainArgs("--quartus_host", quartusHost, "--quartus_port", strconv.Itoa(quartusPort))
			}

			ln, err := net.Listen("tcp", fmt.Sprintf(":%d", slavePort))
			if err != nil {
				return fmt.Errorf("listen :%d: %w", slavePort, err)
			}
			defer ln.Close()
			reporter.Info("cascade: slave listening on :%d, cache at %s", slavePort, slavePath)
			return srv.Serve(ln)
		},
	}
	cmd.Flags().IntVar(&slavePort, "slave_port", 0, "TCP port to serve the remote protocol on")
	cmd.Flags().StringVar(&slavePath, "slave_path", "", "synthesis cache/bitstream directory")
	cmd.Flags().IntVar(&poolSize, "workers", 0, "thread pool size for host jobs (0 = NumCPU)")
	return cmd
}

func newCacheInspectCmd() *cobra.Command {
	var cacheDir string
	cmd := &cobra.Command{
		Use:   "cache-inspect",
		Short: "List the (source text, bitstream file) pairs a synthesis cache holds",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cacheDir == "" {
				return fmt.Errorf("--slave_path is required")
			}
			cache, err := remote.NewSynthesisCache(cacheDir)
			if err != nil {
				return fmt.Errorf("open synthesis cache: %w", err)
			}
			defer cache.Close()

			entries := cache.Entries()
			fmt.Printf("%d cache entries in %s\n", len(entries), cacheDir)
			for source, bitstream := range entries {
				key := source
				if len(key) > 60 {
					key = key[:57] + "..."
				}
				fmt.Printf("  %-20s <- %q\n", bitstream, key)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&cacheDir, "slave_path", "", "synthesis cache/bitstream directory")
	return cmd
}
