package repr

import (
	"sort"

	"github.com/samber/lo"

	"github.com/arose/molstar/pkg/names"
	"github.com/arose/molstar/pkg/props"
	"github.com/arose/molstar/pkg/visual"
)

type factory func(p props.Props) Representation

var registry = map[string]factory{
	"ball-and-stick": func(p props.Props) Representation {
		return NewComposite("ball-and-stick", p,
			NewUnits("element-sphere", p, visual.ElementSphere),
			NewUnits("intra-unit-link", p, visual.IntraUnitLink),
			NewComplex("inter-unit-link", p, visual.InterUnitLink()),
		)
	},
	"spacefill": func(p props.Props) Representation {
		return NewUnits("spacefill", p, visual.ElementSphere)
	},
	"carbohydrate": func(p props.Props) Representation {
		return NewComplex("carbohydrate", p, visual.CarbohydrateSymbol())
	},
	"molecular-surface": func(p props.Props) Representation {
		return NewUnits("molecular-surface", p, visual.MolecularSurface)
	},
}

// Names returns the registered representation names, sorted.
func Names() []string {
	n := lo.Keys(registry)
	sort.Strings(n)
	return n
}

// New returns the named representation with the default properties
// overridden by o. Unknown names and invalid properties fail here, before
// anything is built.
func New(name string, o props.Override) (Representation, error) {
	f, ok := registry[names.Normalize(name)]
	if !ok {
		return nil, names.Unknown(ErrUnknownRepresentation, name, Names())
	}
	p := props.Default().Merge(o)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return f(p), nil
}
