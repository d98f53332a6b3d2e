package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/arose/molstar/pkg/server"
	"github.com/arose/molstar/pkg/watch"
)

type serveOptions struct {
	addr  string
	open  bool
	watch bool
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	var so serveOptions
	cmd := &cobra.Command{
		Use:   "serve [FILE]",
		Short: "Serve the interactive viewer over HTTP",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := opts.newSession(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer s.Close()
			if len(args) == 1 && !so.watch {
				if err := opts.load(ctx, s, args[0]); err != nil {
					return err
				}
			}
			srv := server.New(s)

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error { return srv.Start(so.addr) })
			g.Go(func() error {
				<-ctx.Done()
				shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return srv.Shutdown(shutdown)
			})
			if len(args) == 1 && so.watch {
				path := args[0]
				g.Go(func() error {
					return watch.File(ctx, path, watch.DefaultDelay, func() error {
						if err := opts.load(ctx, s, path); err != nil {
							return err
						}
						srv.Broadcast()
						return nil
					}, func(err error) { slog.Error("reload failed", "err", err) })
				})
			}
			if so.open {
				url := browserURL(so.addr)
				if err := browser.OpenURL(url); err != nil {
					slog.Warn("cannot open browser", "url", url, "err", err)
				}
			}
			return g.Wait()
		},
	}
	cmd.Flags().StringVar(&so.addr, "addr", "localhost:8080", "listen address")
	cmd.Flags().BoolVar(&so.open, "open", false, "open the viewer in a browser")
	cmd.Flags().BoolVarP(&so.watch, "watch", "w", false, "reload FILE when it changes")
	return cmd
}

// browserURL turns a listen address into a URL a browser can open.
func browserURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s", net.JoinHostPort(host, port))
}
