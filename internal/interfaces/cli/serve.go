package cli

import (
	"context"

	"github.com/noman2111ni/Retail-Managment-System/internal/application/report"
	"github.com/noman2111ni/Retail-Managment-System/internal/interfaces/http/server"
)

func runServe(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("serve", e.app.Stderr)
	addr := fs.String("addr", e.cfg.HTTP.Addr, "Listen address")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}

	cfg := *e.cfg
	cfg.HTTP.Addr = *addr

	s := e.store
	srv := server.New(&cfg, server.Dependencies{
		Sessions:    s.Users,
		Collections: s,
		Resetter:    s,
		Reports:     report.NewService(s.Products, s.Sales, s.Purchases, nil),
		Metrics:     e.metrics,
		Upstream:    cfg.API.BaseURL,
	}, e.log)

	return srv.Run(ctx)
}
