package cli

import (
	"context"

	"github.com/noman2111ni/Retail-Managment-System/internal/application/seed"
)

func runSeed(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("seed", e.app.Stderr)
	var plan seed.Plan
	fs.IntVar(&plan.Branches, "branches", 2, "Branches to create")
	fs.IntVar(&plan.Vendors, "vendors", 3, "Vendors to create")
	fs.IntVar(&plan.Products, "products", 20, "Products to create")
	seedValue := fs.Uint64("seed", 0, "Random seed (0 picks one)")
	qps := fs.Float64("qps", 0, "Override the create rate (creates per second)")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}

	cfg := e.cfg.Seed
	if *qps > 0 {
		cfg.QPS = *qps
	}

	s := e.store
	runner := seed.NewRunner(cfg, seed.NewGenerator(*seedValue), s.Branches, s.Vendors, s.Products, e.log)
	result, err := runner.Run(ctx, plan)
	if err != nil {
		return err
	}
	return e.out.Print(result)
}
