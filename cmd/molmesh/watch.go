package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/arose/molstar/pkg/watch"
)

func newWatchCmd(opts *rootOptions) *cobra.Command {
	var eo exportOptions
	cmd := &cobra.Command{
		Use:   "watch FILE",
		Short: "Export FILE and export again whenever it changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := eo.resolveFormat(); err != nil {
				return err
			}
			ctx := cmd.Context()
			s, err := opts.newSession(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer s.Close()
			return watch.File(ctx, args[0], watch.DefaultDelay, func() error {
				if err := opts.load(ctx, s, args[0]); err != nil {
					return err
				}
				if err := exportSession(s, eo); err != nil {
					return err
				}
				slog.Info("exported", "input", args[0], "output", eo.output)
				return nil
			}, func(err error) {
				slog.Error("rebuild failed", "err", err)
			})
		},
	}
	addExportFlags(cmd, &eo)
	return cmd
}
