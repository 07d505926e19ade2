package main

import (
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/theapemachine/errnie"
	"github.com/theapemachine/qsim"
)

var (
	rootCmd = &cobra.Command{
		Use:   "qsim",
		Short: "A state-vector quantum circuit simulator",
		Long: `qsim applies quantum gates to a full state vector and prints the
resulting probabilities. It runs instruction files and Grover's search.`,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
		PersistentPostRun: report,
	}

	runCmd = &cobra.Command{
		Use:   "run [file]",
		Short: "Runs an instruction file, one gate per line (\"-\" reads stdin)",
		Long: `Runs a circuit written one instruction per line, for example:

  qubits 2
  h q[0]
  cnot q[0],q[1]
  rz(pi/4) q[1]

Prints the final probability of every basis state.`,
		Args: cobra.ExactArgs(1),
		RunE: runCircuit,
	}

	groverCmd = &cobra.Command{
		Use:   "grover",
		Short: "Runs Grover's search for the given marked states",
		RunE:  runGrover,
	}

	configPath  string
	workers     int
	showMetrics bool

	numQubits      int
	shots          int
	seed           uint64
	showAmplitudes bool
	stepMode       bool
	dump           bool

	marked     []int
	iterations int

	config   *qsim.Config
	registry = prometheus.NewRegistry()
	metrics  *qsim.Metrics
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML configuration file")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 0, "worker goroutines per gate (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&showMetrics, "metrics", false, "print engine metrics when done")

	for _, cmd := range []*cobra.Command{runCmd, groverCmd} {
		cmd.Flags().IntVar(&numQubits, "qubits", 0, "register size")
		cmd.Flags().IntVar(&shots, "shots", 0, "sample the final state this many times")
		cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed for sampling (default: time based)")
	}

	runCmd.Flags().BoolVar(&showAmplitudes, "amplitudes", false, "print the amplitude table")
	runCmd.Flags().BoolVar(&stepMode, "step", false, "print the state after every gate")
	runCmd.Flags().BoolVar(&dump, "dump", false, "dump the final amplitudes with spew")

	groverCmd.Flags().IntSliceVar(&marked, "marked", nil, "marked basis indices")
	groverCmd.Flags().IntVar(&iterations, "iterations", 0, "override the number of iterations")
	_ = groverCmd.MarkFlagRequired("qubits")
	_ = groverCmd.MarkFlagRequired("marked")

	rootCmd.AddCommand(runCmd, groverCmd)
}

func setup(cmd *cobra.Command, _ []string) error {
	var err error

	if configPath != "" {
		if config, err = qsim.LoadConfig(configPath); err != nil {
			return err
		}
	} else {
		config = qsim.DefaultConfig()
	}

	if cmd.Flags().Changed("workers") {
		config.Workers = workers
	}

	if err := config.Validate(); err != nil {
		return err
	}

	if metrics == nil {
		metrics = qsim.NewMetrics(registry)
	}

	return nil
}

func report(cmd *cobra.Command, _ []string) {
	if showMetrics && metrics != nil {
		printMetrics(cmd.OutOrStdout(), metrics.ExportMetrics())
	}
}

func newEngine() *qsim.Engine {
	return qsim.NewEngine(
		qsim.WithConfig(config),
		qsim.WithMetrics(metrics),
		qsim.WithFallbackHook(func(err error) {
			errnie.Info("cpu fallback: %v", err)
		}),
	)
}

func newRand(cmd *cobra.Command) *rand.Rand {
	s := seed
	if !cmd.Flags().Changed("seed") {
		s = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(s, s^0x9e3779b97f4a7c15))
}

func openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

func runCircuit(cmd *cobra.Command, args []string) error {
	in, err := openInput(args[0])
	if err != nil {
		return err
	}
	defer in.Close()

	prog, err := parseProgram(in, numQubits)
	if err != nil {
		return err
	}

	circuit, err := qsim.NewCircuit(prog.numQubits, prog.gates...)
	if err != nil {
		return err
	}

	engine := newEngine()
	defer engine.Close()

	initial, err := engine.NewState(prog.numQubits)
	if err != nil {
		return err
	}

	errnie.Info("running %s: %d gates on %d qubits", args[0], circuit.Len(), circuit.NumQubits())

	out := cmd.OutOrStdout()
	ex := qsim.NewExecutor(engine)

	stepper, err := ex.Stepper(circuit, initial)
	if err != nil {
		return err
	}

	for !stepper.Done() {
		if err := stepper.Step(); err != nil {
			return err
		}

		if stepMode {
			printStep(out, stepper.Position(), prog.lines[stepper.Position()-1], stepper.Last())
			printProbabilities(out, "", stepper.State())
		}
	}

	final := stepper.State()

	printProbabilities(out, "Final probabilities:", final)

	if showAmplitudes {
		printAmplitudes(out, final)
		printQubits(out, final)
	}

	if dump {
		spew.Fdump(out, final.Amplitudes())
	}

	return sample(cmd, final)
}

func runGrover(cmd *cobra.Command, _ []string) error {
	engine := newEngine()
	defer engine.Close()

	opts := []qsim.GroverOption{}
	if cmd.Flags().Changed("iterations") {
		opts = append(opts, qsim.WithIterations(iterations))
	}

	if numQubits < 1 {
		return fmt.Errorf("--qubits must be at least 1, got %d", numQubits)
	}

	if numQubits > config.MaxQubits {
		return fmt.Errorf("%w: %d qubits (max %d)", qsim.ErrRegisterTooLarge, numQubits, config.MaxQubits)
	}

	for _, m := range marked {
		if m < 0 || m >= 1<<numQubits {
			return fmt.Errorf("%w: marked index %d outside a %d-qubit register", qsim.ErrInvalidQubitIndex, m, numQubits)
		}
	}

	result, err := qsim.NewGrover(engine, opts...).Search(numQubits, qsim.MarkIndices(marked...))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf(
		"Grover: %d iterations, %d marked, P(marked) = %.5f",
		result.Iterations, result.MarkedCount, result.SuccessProbability,
	)))
	fmt.Fprintf(out, "Most likely: %s (%.5f)\n", result.Best.Bitstring(numQubits), result.Best.Probability)

	printProbabilities(out, "Final probabilities:", result.State)

	return sample(cmd, result.State)
}

func sample(cmd *cobra.Command, v *qsim.AmplitudeVector) error {
	if shots < 1 {
		return nil
	}

	counts, err := qsim.SampleCounts(v, newRand(cmd), shots)
	if err != nil {
		return err
	}

	printCounts(cmd.OutOrStdout(), counts, v.NumQubits(), shots)

	return nil
}
