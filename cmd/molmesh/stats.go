package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/arose/molstar/pkg/marker"
)

func newStatsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats FILE",
		Short: "Build every representation and print what was published",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := opts.newSession(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer s.Close()
			if err := opts.load(ctx, s, args[0]); err != nil {
				return err
			}
			st := s.Structure()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %d units, %d symmetry groups, %d elements, %d carbohydrates\n",
				st.Model.Label, len(st.Units), len(st.Groups), st.ElementCount(), len(st.Carbohydrates))

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tOBJECT\tINSTANCES\tGROUPS\tVERTICES\tTRIANGLES\tSELECTED")
			for _, obj := range s.RenderObjects() {
				fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\t%d\t%d\n", obj.ID, obj.Label, obj.InstanceCount, obj.GroupCount,
					obj.VertexCount(), obj.TriangleCount(), marker.Count(obj.Markers, marker.Selected))
			}
			return tw.Flush()
		},
	}
}
