package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/arose/molstar/pkg/config"
	"github.com/arose/molstar/pkg/repr"
)

func newPresetsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List the available presets and representation kinds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := config.LoadOrBuiltin(opts.presetPath)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "PRESET\tREPRESENTATION")
			for _, name := range f.Names() {
				p, _ := f.Preset(name)
				fmt.Fprintf(tw, "%s\t%s\n", name, p.Representation)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nkinds: %v\n", repr.Names())
			return nil
		},
	}
}
