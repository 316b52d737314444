package main

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/joshuapare/galkit/galaxy"
	"github.com/joshuapare/galkit/galaxy/pool"
)

var (
	churnOps     int
	churnLive    int
	churnSeed    uint64
	churnDirect  bool
	churnCatalog string
)

func init() {
	cmd := newChurnCmd()
	cmd.Flags().IntVar(&churnOps, "ops", 100000, "Number of alloc/release operations")
	cmd.Flags().IntVar(&churnLive, "live", 1000, "Upper bound on simultaneously live galaxies")
	cmd.Flags().Uint64Var(&churnSeed, "seed", 1, "Random seed")
	cmd.Flags().BoolVar(&churnDirect, "direct", false, "Bypass the pool and allocate directly")
	cmd.Flags().StringVar(&churnCatalog, "catalog", "", "Property catalog (YAML)")
	rootCmd.AddCommand(cmd)
}

func newChurnCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "churn",
		Short: "Run a random alloc/release workload against the galaxy pool",
		Long: `The churn command performs --ops random allocations and releases through
the global pool, keeping at most --live galaxies alive, and reports pool
statistics, the exported metrics and peak resident memory. With --direct the
pool is disabled so the two modes can be compared.

Example:
  galctl churn --ops 1000000 --live 5000
  galctl churn --direct --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChurn(args)
		},
	}
	return cmd
}

type churnReport struct {
	Mode     string             `json:"mode"`
	Ops      int                `json:"ops"`
	Allocs   int                `json:"allocs"`
	Releases int                `json:"releases"`
	Elapsed  string             `json:"elapsed"`
	PeakRSS  uint64             `json:"peak_rss_bytes,omitempty"`
	Pool     *pool.Stats        `json:"pool,omitempty"`
	Metrics  map[string]float64 `json:"metrics,omitempty"`
}

func runChurn(args []string) error {
	if churnOps < 0 || churnLive <= 0 {
		return fmt.Errorf("--ops must be non-negative and --live positive")
	}
	env, closeEnv, err := openEnv(churnCatalog)
	if err != nil {
		return err
	}
	defer closeEnv()

	gcfg := cfg.GlobalPool()
	gcfg.Enabled = !churnDirect
	if err := pool.InitGlobal(env, gcfg); err != nil {
		return err
	}
	defer pool.CleanupGlobal()

	report := churnReport{Mode: "pool", Ops: churnOps}
	if churnDirect {
		report.Mode = "direct"
	}

	rng := rand.New(rand.NewPCG(churnSeed, churnSeed^0x9e3779b97f4a7c15))
	live := make([]*galaxy.Galaxy, 0, churnLive)
	start := time.Now()
	for i := range churnOps {
		if len(live) < churnLive && (len(live) == 0 || rng.IntN(2) == 0) {
			g, err := pool.Alloc(env)
			if err != nil {
				return fmt.Errorf("op %d: %w", i, err)
			}
			if err := populate(env, g, i); err != nil {
				return fmt.Errorf("op %d: %w", i, err)
			}
			live = append(live, g)
			report.Allocs++
			continue
		}
		j := rng.IntN(len(live))
		if err := pool.Free(env, live[j]); err != nil {
			return fmt.Errorf("op %d: %w", i, err)
		}
		live[j] = live[len(live)-1]
		live = live[:len(live)-1]
		report.Releases++
	}
	for _, g := range live {
		if err := pool.Free(env, g); err != nil {
			return err
		}
		report.Releases++
	}
	report.Elapsed = time.Since(start).Round(time.Microsecond).String()
	report.PeakRSS = peakRSS()

	if p := pool.Global(); p != nil {
		st := p.Stats()
		report.Pool = &st
		m, err := gatherMetrics(p, env)
		if err != nil {
			return err
		}
		report.Metrics = m
	}

	if jsonOut {
		return printJSON(report)
	}
	printInfo("mode %s: %d ops (%d allocs, %d releases) in %s\n",
		report.Mode, report.Ops, report.Allocs, report.Releases, report.Elapsed)
	if report.PeakRSS > 0 {
		printInfo("peak RSS: %d KiB\n", report.PeakRSS/1024)
	}
	if report.Pool != nil {
		st := report.Pool
		printInfo("pool: capacity %d in %d blocks, peak %d, reuses %d\n",
			st.Capacity, st.Blocks, st.Peak, st.Reuses)
	}
	names := make([]string, 0, len(report.Metrics))
	for n := range report.Metrics {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		printInfo("  %-40s %v\n", n, report.Metrics[n])
	}
	return nil
}

// gatherMetrics scrapes the pool collector through a private registry.
func gatherMetrics(p *pool.Pool, env *galaxy.Env) (map[string]float64, error) {
	ns := cfg.Metrics.Namespace
	reg := prometheus.NewRegistry()
	if err := reg.Register(pool.NewCollector(ns, p, env.Registry)); err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}
	families, err := reg.Gather()
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}
	out := make(map[string]float64, len(families))
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				out[mf.GetName()] = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				out[mf.GetName()] = m.GetGauge().GetValue()
			}
		}
	}
	return out, nil
}
