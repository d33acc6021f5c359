package cli

import (
	"context"
	"time"

	"github.com/noman2111ni/Retail-Managment-System/internal/application/report"
)

func runReport(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("report", e.app.Stderr)
	tz := fs.String("tz", "Local", "Time zone weekdays are counted in (IANA name)")
	lowStock := fs.Int64("low-stock", report.DefaultLowStock, "Quantity below which products are listed in the summary")
	positional, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if len(positional) != 1 {
		return usageErrorf("report needs one of weekly, categories or summary")
	}

	loc, err := time.LoadLocation(*tz)
	if err != nil {
		return usageErrorf("unknown time zone %q", *tz)
	}

	s := e.store
	svc := report.NewService(s.Products, s.Sales, s.Purchases, loc).WithLowStock(*lowStock)

	switch positional[0] {
	case "weekly":
		points, err := svc.Weekly(ctx)
		if err != nil {
			return err
		}
		return e.out.Print(points)
	case "categories", "category":
		points, err := svc.Categories(ctx)
		if err != nil {
			return err
		}
		return e.out.Print(points)
	case "summary":
		summary, err := svc.Summary(ctx)
		if err != nil {
			return err
		}
		return e.out.Print(summary)
	default:
		return usageErrorf("unknown report %q", positional[0])
	}
}
