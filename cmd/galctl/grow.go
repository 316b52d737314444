package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/galkit/galaxy"
	"github.com/joshuapare/galkit/galaxy/array"
)

var (
	growCount   int
	growCatalog string
)

func init() {
	cmd := newGrowCmd()
	cmd.Flags().IntVarP(&growCount, "count", "n", 1000, "Number of galaxies to append")
	cmd.Flags().StringVar(&growCatalog, "catalog", "", "Property catalog (YAML)")
	rootCmd.AddCommand(cmd)
}

func newGrowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grow",
		Short: "Append galaxies to a record array and report capacity changes",
		Long: `The grow command appends --count galaxies to a record array using the
configured growth policy and prints every capacity transition, then checks
that each element still resolves to its own property store.

Example:
  galctl grow --count 5000
  GALKIT_ARRAY_GROWTH_FACTOR=2 galctl grow --count 5000 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGrow(args)
		},
	}
	return cmd
}

type growStep struct {
	Len int `json:"len"`
	Cap int `json:"cap"`
}

type growReport struct {
	Count      int        `json:"count"`
	Steps      []growStep `json:"steps"`
	FinalCap   int        `json:"final_cap"`
	Grows      int        `json:"grows"`
	LiveStores int        `json:"live_stores"`
}

func runGrow(args []string) error {
	if growCount < 0 {
		return fmt.Errorf("--count must be non-negative, got %d", growCount)
	}
	env, closeEnv, err := openEnv(growCatalog)
	if err != nil {
		return err
	}
	defer closeEnv()

	arr, err := array.New(env, array.WithPolicy(cfg.ArrayPolicy()))
	if err != nil {
		return err
	}
	defer arr.Free()

	report := growReport{Count: growCount}
	for i := range growCount {
		g, err := galaxy.New(env)
		if err != nil {
			return err
		}
		if err := populate(env, g, i); err != nil {
			galaxy.Free(env, g)
			return err
		}
		before := arr.Cap()
		_, err = arr.Append(g)
		galaxy.Free(env, g)
		if err != nil {
			return fmt.Errorf("append %d: %w", i, err)
		}
		if arr.Cap() != before {
			report.Steps = append(report.Steps, growStep{Len: arr.Len(), Cap: arr.Cap()})
			printVerbose("len %d: capacity %d -> %d\n", arr.Len(), before, arr.Cap())
		}
	}

	// Each element must still own a distinct, valid store after the moves.
	seen := make(map[string]struct{}, arr.Len())
	for i, g := range arr.RawView() {
		if !env.Stores.Valid(g.Props) {
			return fmt.Errorf("element %d lost its property store", i)
		}
		key := g.Props.String()
		if _, dup := seen[key]; dup {
			return fmt.Errorf("element %d shares store %s", i, key)
		}
		seen[key] = struct{}{}
	}

	report.FinalCap = arr.Cap()
	report.Grows = arr.Grows()
	report.LiveStores = env.Stores.Live()

	if jsonOut {
		return printJSON(report)
	}
	for _, s := range report.Steps {
		printInfo("len %8d  cap %8d\n", s.Len, s.Cap)
	}
	printInfo("\n%d galaxies, capacity %d after %d reallocations (%d live stores)\n",
		report.Count, report.FinalCap, report.Grows, report.LiveStores)
	return nil
}
