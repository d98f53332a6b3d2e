package location

import (
	"sync"
)

// Value is one step of an Iterator.
type Value struct {
	Location      Location
	Index         int // InstanceIndex*GroupCount + GroupIndex
	GroupIndex    int
	InstanceIndex int
	IsSecondary   bool
}

// LocationFunc maps a (group, instance) pair to its location.
type LocationFunc func(group, instance int) Location

// SecondaryFunc reports whether a group is the second half of an entity
// that renders as two groups.
type SecondaryFunc func(group, instance int) bool

// Option configures an Iterator.
type Option func(*Iterator)

// WithSecondary sets the secondary group predicate.
func WithSecondary(f SecondaryFunc) Option {
	return func(it *Iterator) { it.isSecondary = f }
}

// WithInstanceInvariant declares that the location of a group does not
// depend on the instance. The location function is then only called with
// instance 0.
func WithInstanceInvariant() Option {
	return func(it *Iterator) { it.invariant = true }
}

// Iterator enumerates (instance, group) pairs, instance outer and group
// inner. Enumeration is deterministic: every traversal yields the same
// pairs with the same locations. The same Iterator also answers the reverse
// question of which pairs belong to a location.
type Iterator struct {
	GroupCount    int
	InstanceCount int

	getLocation LocationFunc
	isSecondary SecondaryFunc
	invariant   bool

	group, instance int
	last            int

	lookupOnce sync.Once
	lookup     map[Location][]int
}

// New returns an iterator over groupCount groups in each of instanceCount
// instances. Negative counts are treated as zero.
func New(groupCount, instanceCount int, getLocation LocationFunc, opts ...Option) *Iterator {
	it := &Iterator{
		GroupCount:    max(groupCount, 0),
		InstanceCount: max(instanceCount, 0),
		getLocation:   getLocation,
	}
	for _, opt := range opts {
		opt(it)
	}
	it.Reset()
	return it
}

// Empty returns an iterator without groups.
func Empty() *Iterator {
	return New(0, 0, nil)
}

// Count returns GroupCount*InstanceCount.
func (it *Iterator) Count() int {
	return it.GroupCount * it.InstanceCount
}

// Reset rewinds the cursor used by HasNext and Move.
func (it *Iterator) Reset() {
	it.group, it.instance, it.last = 0, 0, -1
}

// HasNext reports whether Move will return another value.
func (it *Iterator) HasNext() bool {
	return it.GroupCount > 0 && it.instance < it.InstanceCount
}

// Move returns the value at the cursor and advances it.
func (it *Iterator) Move() Value {
	v := it.value(it.group, it.instance)
	it.last = it.instance
	it.group++
	if it.group >= it.GroupCount {
		it.group = 0
		it.instance++
	}
	return v
}

// SkipInstance skips the remaining groups of the instance of the last
// value returned by Move.
func (it *Iterator) SkipInstance() {
	if it.HasNext() && it.instance == it.last {
		it.group = 0
		it.instance++
	}
}

// Location returns the location of a (group, instance) pair, or Null when
// the pair is out of range.
func (it *Iterator) Location(group, instance int) Location {
	if group < 0 || group >= it.GroupCount || instance < 0 || instance >= it.InstanceCount || it.getLocation == nil {
		return Null{}
	}
	if it.invariant {
		instance = 0
	}
	return it.getLocation(group, instance)
}

// IsSecondary reports whether the group of the pair is a secondary group.
func (it *Iterator) IsSecondary(group, instance int) bool {
	return it.isSecondary != nil && it.isSecondary(group, instance)
}

// ForEach calls fn for every pair in order and stops at the first error.
// It does not touch the cursor, so traversals may be nested or interleaved.
func (it *Iterator) ForEach(fn func(Value) error) error {
	for instance := 0; instance < it.InstanceCount; instance++ {
		for group := 0; group < it.GroupCount; group++ {
			if err := fn(it.value(group, instance)); err != nil {
				return err
			}
		}
	}
	return nil
}

// Lookup returns the flat indices (instance*GroupCount + group) of all
// pairs whose location equals loc, in ascending order. The reverse index
// is built on first use from a full traversal of this iterator.
func (it *Iterator) Lookup(loc Location) []int {
	it.lookupOnce.Do(func() {
		it.lookup = make(map[Location][]int, it.Count())
		_ = it.ForEach(func(v Value) error {
			if _, ok := v.Location.(Null); !ok {
				it.lookup[v.Location] = append(it.lookup[v.Location], v.Index)
			}
			return nil
		})
	})
	return it.lookup[loc]
}

func (it *Iterator) value(group, instance int) Value {
	return Value{
		Location:      it.Location(group, instance),
		Index:         instance*it.GroupCount + group,
		GroupIndex:    group,
		InstanceIndex: instance,
		IsSecondary:   it.IsSecondary(group, instance),
	}
}
