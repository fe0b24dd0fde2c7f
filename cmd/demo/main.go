package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	mr "github.com/user/multirow"
)

var (
	configPath  string
	showMetrics bool
	replayTo    int
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "demo",
		Short:        "Replay scripted edits against a multi-row field",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML or JSON config file")

	run := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Apply every step and print each view and the final submission",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	run.Flags().BoolVar(&showMetrics, "metrics", false, "print collected counters after the run")

	check := &cobra.Command{
		Use:   "check <scenario.yaml>",
		Short: "Apply every step and report tracked-state issues",
		Args:  cobra.ExactArgs(1),
		RunE:  checkScenario,
	}

	replay := &cobra.Command{
		Use:   "replay <scenario.yaml>",
		Short: "Print the view as of a given log offset",
		Args:  cobra.ExactArgs(1),
		RunE:  replayScenario,
	}
	replay.Flags().IntVar(&replayTo, "to", 0, "log offset to replay up to (inclusive)")

	root.AddCommand(run, check, replay)
	return root
}

// openSession loads the config and scenario and primes a store with the baseline.
func openSession(path string, logOut io.Writer) (*Scenario, *mr.Store, *prometheus.Registry, error) {
	cfg, err := mr.LoadConfig(configPath)
	if err != nil {
		return nil, nil, nil, err
	}
	sc, err := LoadScenario(path)
	if err != nil {
		return nil, nil, nil, err
	}
	reg := prometheus.NewRegistry()
	store := mr.NewStore(cfg,
		mr.WithLogger(mr.NewLogger(cfg, logOut)),
		mr.WithMetrics(mr.NewMetrics(cfg.MetricsNamespace, reg)),
	)
	baseline, err := sc.BaselineValue()
	if err != nil {
		return nil, nil, nil, err
	}
	if err := store.Init(sc.Field, baseline); err != nil {
		return nil, nil, nil, err
	}
	return sc, store, reg, nil
}

type stepOutput struct {
	Step     int         `json:"step"`
	Op       string      `json:"op"`
	Revision int         `json:"revision"`
	Shape    string      `json:"shape"`
	View     []mr.Record `json:"view"`
}

type runOutput struct {
	Field      string        `json:"field"`
	Steps      []stepOutput  `json:"steps"`
	Submission mr.Submission `json:"submission"`
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, store, reg, err := openSession(args[0], cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	out := runOutput{Field: sc.Field, Steps: make([]stepOutput, 0, len(sc.Steps))}
	for i, st := range sc.Steps {
		v, err := st.Apply(store, sc.Field)
		if err != nil {
			return fmt.Errorf("step %d (%s): %w", i, st.Op, err)
		}
		view, err := store.View(sc.Field)
		if err != nil {
			return err
		}
		out.Steps = append(out.Steps, stepOutput{
			Step:     i,
			Op:       st.Op,
			Revision: store.Revision(sc.Field),
			Shape:    v.Shape().String(),
			View:     view,
		})
	}
	if out.Submission, err = store.Diff(sc.Field); err != nil {
		return err
	}
	if err := writeJSON(cmd.OutOrStdout(), out); err != nil {
		return err
	}
	if showMetrics {
		return printMetrics(cmd.OutOrStdout(), reg)
	}
	return nil
}

type checkOutput struct {
	Field  string     `json:"field"`
	Valid  bool       `json:"valid"`
	Dirty  bool       `json:"dirty"`
	Issues []mr.Issue `json:"issues"`
}

func checkScenario(cmd *cobra.Command, args []string) error {
	sc, store, _, err := openSession(args[0], cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	for i, st := range sc.Steps {
		if _, err := st.Apply(store, sc.Field); err != nil {
			return fmt.Errorf("step %d (%s): %w", i, st.Op, err)
		}
	}
	v, err := store.Value(sc.Field)
	if err != nil {
		return err
	}
	state := mr.Track(v)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	result := mr.Inspect(ctx, state)
	if err := writeJSON(cmd.OutOrStdout(), checkOutput{
		Field:  sc.Field,
		Valid:  result.Valid,
		Dirty:  state.Dirty(),
		Issues: result.Issues,
	}); err != nil {
		return err
	}
	if !result.Valid {
		return fmt.Errorf("%d issue(s) found", len(result.Issues))
	}
	return nil
}

type replayOutput struct {
	Field   string      `json:"field"`
	Offset  int         `json:"offset"`
	LogLen  int         `json:"log_len"`
	Shape   string      `json:"shape"`
	View    []mr.Record `json:"view"`
	Pending bool        `json:"pending"`
}

func replayScenario(cmd *cobra.Command, args []string) error {
	sc, store, _, err := openSession(args[0], cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	for i, st := range sc.Steps {
		if _, err := st.Apply(store, sc.Field); err != nil {
			return fmt.Errorf("step %d (%s): %w", i, st.Op, err)
		}
	}
	log := store.Log()
	if replayTo < 0 || replayTo >= log.Len() {
		return fmt.Errorf("--to %d out of range [0, %d)", replayTo, log.Len())
	}

	// The initial intent is always offset 0; replay the rest from there.
	cp := mr.CheckpointFromLog(log, 0)
	fields := mr.ReplayFromCheckpoint(cp, log, replayTo)
	v := fields[sc.Field]
	return writeJSON(cmd.OutOrStdout(), replayOutput{
		Field:   sc.Field,
		Offset:  replayTo,
		LogLen:  log.Len(),
		Shape:   v.Shape().String(),
		View:    mr.Materialize(v),
		Pending: v.Shape() == mr.ShapeTracked && mr.Track(v).Dirty(),
	})
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printMetrics writes the gathered families in the Prometheus text format.
func printMetrics(w io.Writer, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
