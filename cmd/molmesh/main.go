// Command molmesh builds meshes from structure documents: it prints build
// statistics, exports STL, SVG, msgpack or JSON, re-exports on change, and
// serves an interactive viewer.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
