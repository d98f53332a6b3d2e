package query

import (
	"fmt"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"
	"github.com/gobwas/glob"
	"github.com/samber/lo"

	"github.com/arose/molstar/pkg/location"
	"github.com/arose/molstar/pkg/loci"
	"github.com/arose/molstar/pkg/structure"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource rewrites query source before zygomys sees it:
//
//  1. :keyword -> "__kw_keyword" (string literal), so keywords need no
//     global symbols.
//  2. kebab-case identifiers -> underscore form, since zygomys reads a
//     hyphen between identifiers as subtraction.
//  3. ; line comments -> // comments.
//
// String literals are left alone.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		if b[i] == ':' && i+1 < len(b) && isLetter(b[i+1]) {
			j := i + 1
			for j < len(b) && isKWChar(b[j]) {
				j++
			}
			result = append(result, '"')
			result = append(result, kwPrefix...)
			result = append(result, b[i+1:j]...)
			result = append(result, '"')
			i = j
			continue
		}
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isLetter(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

// ---------------------------------------------------------------------------
// Selection values
// ---------------------------------------------------------------------------

// sexpLoci carries a selection between builtins.
type sexpLoci struct {
	loci loci.Loci
}

func (l *sexpLoci) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(selection %q)", loci.Describe(l.loci))
}
func (l *sexpLoci) Type() *zygo.RegisteredType { return nil }

func toLoci(s zygo.Sexp) (loci.Loci, error) {
	if l, ok := s.(*sexpLoci); ok {
		return l.loci, nil
	}
	return nil, fmt.Errorf("expected selection, got %T (%s)", s, s.SexpString(nil))
}

func toLociSlice(args []zygo.Sexp) ([]loci.Loci, error) {
	out := make([]loci.Loci, len(args))
	for i, a := range args {
		l, err := toLoci(a)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		out[i] = l
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Keyword arguments
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok || !strings.HasPrefix(str.S, kwPrefix) {
		return "", false
	}
	return str.S[len(kwPrefix):], true
}

// kwArgs holds a mixed positional and keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			continue
		}
		if i+1 < len(args) {
			result.kw[name] = args[i+1]
			i++
		} else {
			result.kw[name] = zygo.SexpNull
		}
	}
	return result
}

// unknownKeyword returns an error for the first keyword not in known.
func (a kwArgs) unknownKeyword(known ...string) error {
	for k := range a.kw {
		if !lo.Contains(known, k) {
			return fmt.Errorf("unknown keyword :%s (valid: :%s)", k, strings.Join(known, ", :"))
		}
	}
	return nil
}

func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

func toInt(s zygo.Sexp) (int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toPattern compiles a string argument as a glob. Matching is case
// sensitive except for element symbols, which are upper-cased first.
func toPattern(s zygo.Sexp, upper bool) (glob.Glob, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return nil, fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
	}
	p := str.S
	if upper {
		p = strings.ToUpper(p)
	}
	g, err := glob.Compile(p)
	if err != nil {
		return nil, fmt.Errorf("pattern %q: %w", str.S, err)
	}
	return g, nil
}

// ---------------------------------------------------------------------------
// Atom filters
// ---------------------------------------------------------------------------

// atomFilter is the conjunction of the keyword arguments of (atoms ...).
// Nil patterns match anything.
type atomFilter struct {
	chain, element, residue, name glob.Glob
	seqFrom, seqTo                *int
	unit                          *int
}

var atomKeywords = []string{"chain", "element", "residue", "name", "seq-from", "seq-to", "unit"}

func parseAtomFilter(pa kwArgs) (atomFilter, error) {
	var f atomFilter
	if err := pa.unknownKeyword(atomKeywords...); err != nil {
		return f, err
	}
	patterns := []struct {
		key   string
		dst   *glob.Glob
		upper bool
	}{
		{"chain", &f.chain, false},
		{"element", &f.element, true},
		{"residue", &f.residue, false},
		{"name", &f.name, false},
	}
	for _, p := range patterns {
		if v, ok := pa.kw[p.key]; ok {
			g, err := toPattern(v, p.upper)
			if err != nil {
				return f, fmt.Errorf("%s: %w", p.key, err)
			}
			*p.dst = g
		}
	}
	ints := []struct {
		key string
		dst **int
	}{
		{"seq-from", &f.seqFrom},
		{"seq-to", &f.seqTo},
		{"unit", &f.unit},
	}
	for _, p := range ints {
		if v, ok := pa.kw[p.key]; ok {
			n, err := toInt(v)
			if err != nil {
				return f, fmt.Errorf("%s: %w", p.key, err)
			}
			*p.dst = &n
		}
	}
	return f, nil
}

func (f atomFilter) matchUnit(u *structure.Unit) bool {
	return (f.unit == nil || u.ID == *f.unit) && (f.chain == nil || f.chain.Match(u.Chain))
}

func (f atomFilter) matchAtom(a structure.Atom) bool {
	switch {
	case f.element != nil && !f.element.Match(strings.ToUpper(a.Element)):
		return false
	case f.residue != nil && !f.residue.Match(a.Residue):
		return false
	case f.name != nil && !f.name.Match(a.Name):
		return false
	case f.seqFrom != nil && a.SeqID < *f.seqFrom:
		return false
	case f.seqTo != nil && a.SeqID > *f.seqTo:
		return false
	}
	return true
}

func selectAtoms(s *structure.Structure, f atomFilter) loci.Loci {
	var elements []loci.Element
	for _, u := range s.Units {
		if !f.matchUnit(u) {
			continue
		}
		var idx []int
		for i := 0; i < u.ElementCount(); i++ {
			if f.matchAtom(u.Atom(i)) {
				idx = append(idx, i)
			}
		}
		elements = append(elements, loci.Element{Unit: u, Indices: idx})
	}
	return loci.NewElementLoci(s, elements)
}

// within selects every element within radius of an element or link end
// of l.
func within(s *structure.Structure, l loci.Loci, radius float32) loci.Loci {
	var centers []location.Element
	for _, loc := range loci.Locations(l) {
		switch loc := loc.(type) {
		case location.Element:
			centers = append(centers, loc)
		case location.Link:
			a, b := loc.Ends()
			centers = append(centers, a, b)
		}
	}
	var elements []loci.Element
	for _, u := range s.Units {
		if u.ElementCount() == 0 {
			continue
		}
		center, r := u.Boundary()
		var idx []int
		for _, c := range centers {
			p := c.Unit.Position(c.Element)
			if p.Sub(center).Len() > r+radius {
				continue
			}
			idx = append(idx, u.Lookup().Find(p, radius)...)
		}
		elements = append(elements, loci.Element{Unit: u, Indices: idx})
	}
	return loci.NewElementLoci(s, elements)
}

func carbohydrateRings(s *structure.Structure) loci.Loci {
	elements := make([]loci.Element, len(s.Carbohydrates))
	for i, c := range s.Carbohydrates {
		elements[i] = loci.Element{Unit: c.Unit, Indices: c.Ring}
	}
	return loci.NewElementLoci(s, elements)
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the selection builtins for s. Source must be
// preprocessed with preprocessSource.
func registerBuiltins(env *zygo.Zlisp, s *structure.Structure) {
	wrap := func(l loci.Loci) zygo.Sexp { return &sexpLoci{loci: l} }

	// (atoms :chain "A" :element "C" :residue "GL?" :name "C*"
	//        :seq-from 1 :seq-to 20 :unit 0)
	env.AddFunction("atoms", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) > 0 {
			return zygo.SexpNull, fmt.Errorf("atoms: unexpected positional argument %s", pa.positional[0].SexpString(nil))
		}
		f, err := parseAtomFilter(pa)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("atoms: %w", err)
		}
		return wrap(selectAtoms(s, f)), nil
	})

	// (everything) and (nothing)
	env.AddFunction("everything", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		return wrap(loci.Everything(s)), nil
	})
	env.AddFunction("nothing", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		return wrap(loci.EmptyLoci), nil
	})

	// (carbohydrates) selects the ring atoms of every monosaccharide.
	env.AddFunction("carbohydrates", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		return wrap(carbohydrateRings(s)), nil
	})

	// (union q...) and (intersect q...)
	env.AddFunction("union", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		ls, err := toLociSlice(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("union: %w", err)
		}
		return wrap(loci.Union(s, ls...)), nil
	})
	env.AddFunction("intersect", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		ls, err := toLociSlice(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("intersect: %w", err)
		}
		return wrap(loci.Intersect(s, ls...)), nil
	})

	// (subtract a b)
	env.AddFunction("subtract", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("subtract: expected 2 arguments, got %d", len(args))
		}
		ls, err := toLociSlice(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("subtract: %w", err)
		}
		return wrap(loci.Subtract(s, ls[0], ls[1])), nil
	})

	// (complement q)
	env.AddFunction("complement", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("complement: expected 1 argument, got %d", len(args))
		}
		l, err := toLoci(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("complement: %w", err)
		}
		return wrap(loci.Complement(s, l)), nil
	})

	// (within q :radius 5)
	env.AddFunction("within", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("within: expected 1 selection, got %d", len(pa.positional))
		}
		if err := pa.unknownKeyword("radius"); err != nil {
			return zygo.SexpNull, fmt.Errorf("within: %w", err)
		}
		l, err := toLoci(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("within: %w", err)
		}
		v, ok := pa.kw["radius"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("within: :radius is required")
		}
		r, err := toFloat64(v)
		if err != nil || r < 0 {
			return zygo.SexpNull, fmt.Errorf("within: radius must be a non-negative number")
		}
		return wrap(within(s, l, float32(r))), nil
	})
}
