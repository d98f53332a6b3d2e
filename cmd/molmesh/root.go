package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/arose/molstar/pkg/config"
	"github.com/arose/molstar/pkg/task"
	"github.com/arose/molstar/pkg/viewer"
)

type rootOptions struct {
	presetPath string
	presets    []string
	selection  string
	verbose    bool
	quiet      bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:          "molmesh",
		Short:        "Build meshes from molecular structures",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := slog.LevelInfo
			switch {
			case opts.verbose:
				level = slog.LevelDebug
			case opts.quiet:
				level = slog.LevelWarn
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
		},
	}
	f := cmd.PersistentFlags()
	f.StringVar(&opts.presetPath, "presets", "", "preset file, TOML or YAML (default "+config.DefaultPath+")")
	f.StringSliceVarP(&opts.presets, "repr", "r", []string{"ball-and-stick"}, "presets to build, in order")
	f.StringVarP(&opts.selection, "select", "s", "", "selection query to mark before output")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")
	f.BoolVarP(&opts.quiet, "quiet", "q", false, "warnings and errors only")

	cmd.AddCommand(
		newStatsCmd(opts),
		newExportCmd(opts),
		newWatchCmd(opts),
		newServeCmd(opts),
		newPresetsCmd(opts),
	)
	return cmd
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

// progressObserver prints build progress on one rewritten line when tty is
// set, and nothing otherwise.
func progressObserver(w io.Writer, tty bool) task.Observer {
	if !tty {
		return nil
	}
	return func(_ uuid.UUID, p task.Progress) {
		if p.IsIndeterminate {
			fmt.Fprintf(w, "\r\033[K%s...", p.Message)
			return
		}
		fmt.Fprintf(w, "\r\033[K%s %3.0f%%", p.Message, 100*p.Fraction())
	}
}

// newSession creates a session with the configured presets added, before
// any structure is loaded.
func (o *rootOptions) newSession(ctx context.Context, errOut io.Writer) (*viewer.Session, error) {
	presets, err := config.LoadOrBuiltin(o.presetPath)
	if err != nil {
		return nil, err
	}
	opts := []viewer.Option{viewer.WithPresets(presets)}
	if obs := progressObserver(errOut, isTerminal(errOut) && !o.quiet); obs != nil {
		opts = append(opts, viewer.WithObserver(obs))
	}
	s := viewer.NewSession(opts...)
	for _, name := range o.presets {
		if err := s.AddPreset(ctx, name, name); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// load reads the structure at path into s and applies the selection.
func (o *rootOptions) load(ctx context.Context, s *viewer.Session, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := s.Load(ctx, f); err != nil {
		return err
	}
	if o.selection == "" {
		return nil
	}
	_, evalErrs, err := s.Select(o.selection)
	if err != nil {
		return err
	}
	if len(evalErrs) > 0 {
		return errors.Errorf("select: %s", evalErrs[0].Error())
	}
	return nil
}
