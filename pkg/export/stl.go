package export

import (
	"github.com/samber/lo"

	"github.com/arose/molstar/pkg/kernel/sdfx"
	"github.com/arose/molstar/pkg/mesh"
	"github.com/arose/molstar/pkg/render"
)

// WriteSTL writes every visible object, flattened and merged, to a binary
// STL file at path.
func WriteSTL(path string, objs []*render.Object) error {
	visible := lo.Filter(objs, func(o *render.Object, _ int) bool { return o.Visible })
	return sdfx.SaveSTL(path, Merge(lo.Map(visible, func(o *render.Object, _ int) *mesh.Mesh { return Flatten(o) })...))
}
