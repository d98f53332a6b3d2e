package location_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arose/molstar/pkg/location"
	"github.com/arose/molstar/pkg/structure"
	"github.com/arose/molstar/pkg/structure/structuretest"
)

func unitsIterator(g *structure.SymmetryGroup) *location.Iterator {
	return location.New(g.Primary().ElementCount(), len(g.Units), func(group, instance int) location.Location {
		return location.Element{Unit: g.Units[instance], Element: group}
	})
}

func TestEnumerationOrder(t *testing.T) {
	s := structuretest.TwoChains(t, 3)
	it := unitsIterator(s.Groups[0])
	require.Equal(t, 4, it.GroupCount)
	require.Equal(t, 3, it.InstanceCount)

	var seen []location.Value
	for it.HasNext() {
		seen = append(seen, it.Move())
	}
	require.Len(t, seen, it.Count())
	for k, v := range seen {
		assert.Equal(t, k, v.Index)
		assert.Equal(t, k/4, v.InstanceIndex)
		assert.Equal(t, k%4, v.GroupIndex)
		assert.Equal(t, location.Element{Unit: s.Groups[0].Units[k/4], Element: k % 4}, v.Location)
	}

	// a second pass, cursor based or not, sees identical pairs
	it.Reset()
	var again []location.Value
	require.NoError(t, it.ForEach(func(v location.Value) error {
		again = append(again, v)
		return nil
	}))
	assert.Equal(t, seen, again)
	assert.True(t, it.HasNext(), "ForEach must not move the cursor")
}

func TestNestedTraversal(t *testing.T) {
	s := structuretest.TwoChains(t, 2)
	it := unitsIterator(s.Groups[1])
	count := 0
	for it.HasNext() {
		outer := it.Move()
		require.NoError(t, it.ForEach(func(inner location.Value) error {
			if inner.Index == outer.Index {
				assert.Equal(t, outer.Location, inner.Location)
			}
			count++
			return nil
		}))
	}
	assert.Equal(t, it.Count()*it.Count(), count)
}

func TestForEachStopsOnError(t *testing.T) {
	it := location.New(3, 2, func(g, i int) location.Location { return location.Null{} })
	boom := errors.New("boom")
	calls := 0
	err := it.ForEach(func(v location.Value) error {
		calls++
		if v.Index == 4 {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 5, calls)
}

func TestSkipInstance(t *testing.T) {
	it := location.New(3, 2, func(g, i int) location.Location { return location.Null{} })
	v := it.Move()
	assert.Equal(t, 0, v.InstanceIndex)
	it.SkipInstance()
	v = it.Move()
	assert.Equal(t, 1, v.InstanceIndex)
	assert.Equal(t, 0, v.GroupIndex)
}

func TestSecondaryAndInvariant(t *testing.T) {
	s := structuretest.Glycan(t, "GLC", "MAN")
	calls := map[int]int{}
	it := location.New(2*len(s.Carbohydrates), 2, func(group, instance int) location.Location {
		calls[instance]++
		c := s.Carbohydrates[group/2]
		return location.Element{Unit: c.Unit, Element: c.AnomericCarbon}
	},
		location.WithSecondary(func(group, _ int) bool { return group%2 == 1 }),
		location.WithInstanceInvariant(),
	)

	assert.False(t, it.IsSecondary(0, 0))
	assert.True(t, it.IsSecondary(3, 0))
	assert.Equal(t, it.Location(2, 0), it.Location(3, 1))
	assert.Zero(t, calls[1], "invariant iterators only ask for instance 0")

	// primary and secondary groups of carbohydrate 1 in both instances
	assert.Equal(t, []int{2, 3, 6, 7}, it.Lookup(it.Location(2, 0)))
}

func TestOutOfRange(t *testing.T) {
	it := location.New(2, 1, func(g, i int) location.Location { return location.Element{Element: g} })
	assert.Equal(t, location.Null{}, it.Location(2, 0))
	assert.Equal(t, location.Null{}, it.Location(0, -1))
	assert.Empty(t, it.Lookup(location.Null{}))
	assert.Empty(t, it.Lookup(location.Element{Element: 9}))

	e := location.Empty()
	assert.False(t, e.HasNext())
	assert.Zero(t, e.Count())
}

func TestNewLinkIsOrdered(t *testing.T) {
	s := structuretest.TwoChains(t, 1)
	a, b := s.Units[0], s.Units[1]
	assert.Equal(t, location.NewLink(a, 3, b, 0), location.NewLink(b, 0, a, 3))
	assert.Equal(t, location.NewLink(a, 1, a, 2), location.NewLink(a, 2, a, 1))

	anchor, ok := location.Anchor(location.NewLink(b, 0, a, 3))
	require.True(t, ok)
	assert.Equal(t, location.Element{Unit: a, Element: 3}, anchor)
	_, ok = location.Anchor(location.Null{})
	assert.False(t, ok)
}
