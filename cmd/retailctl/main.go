// Command retailctl is a client for the Retail Management API: it keeps the
// login session, manages records, prints dashboard reports and can serve
// them as a JSON gateway.
//
// Build-time version:
//
//	go build -ldflags "-X github.com/noman2111ni/Retail-Managment-System/internal/interfaces/cli.Version=1.2.0" ./cmd/retailctl
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/noman2111ni/Retail-Managment-System/internal/interfaces/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := cli.New(os.Stdin, os.Stdout, os.Stderr).Run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}
