package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/arose/molstar/pkg/export"
	"github.com/arose/molstar/pkg/render"
	"github.com/arose/molstar/pkg/viewer"
)

var formats = []string{"stl", "svg", "msgpack", "json"}

type exportOptions struct {
	output string
	format string
}

// resolveFormat returns the explicit format, or the one named by the
// output extension.
func (o exportOptions) resolveFormat() (string, error) {
	format := o.format
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(o.output)), ".")
	}
	for _, f := range formats {
		if f == format {
			return f, nil
		}
	}
	return "", errors.Errorf("unknown format %q (valid: %s)", format, strings.Join(formats, ", "))
}

func writeObjects(path, format string, objs []*render.Object) error {
	if format == "stl" {
		return export.WriteSTL(path, objs)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	switch format {
	case "svg":
		err = export.WriteSVG(f, objs, export.DefaultSVGOptions)
	case "msgpack":
		err = export.WriteMsgpack(f, objs)
	default:
		err = json.NewEncoder(f).Encode(export.MeshDataList(objs))
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return errors.Wrapf(err, "write %s", path)
}

func exportSession(s *viewer.Session, o exportOptions) error {
	format, err := o.resolveFormat()
	if err != nil {
		return err
	}
	return writeObjects(o.output, format, s.RenderObjects())
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	var eo exportOptions
	cmd := &cobra.Command{
		Use:   "export FILE",
		Short: "Build the representations of FILE and write them out",
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
			if err := opts.load(ctx, s, args[0]); err != nil {
				return err
			}
			return exportSession(s, eo)
		},
	}
	addExportFlags(cmd, &eo)
	return cmd
}

func addExportFlags(cmd *cobra.Command, eo *exportOptions) {
	cmd.Flags().StringVarP(&eo.output, "output", "o", "", "output file")
	cmd.Flags().StringVarP(&eo.format, "format", "f", "", "output format: "+strings.Join(formats, ", ")+" (default from the output extension)")
	_ = cmd.MarkFlagRequired("output")
}
