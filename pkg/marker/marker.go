// Package marker implements the per-(instance, group) highlight and
// selection flags of a render object.
package marker

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Flag values stored in a marker buffer. Highlighted and Selected combine.
const (
	None        byte = 0
	Highlighted byte = 1
	Selected    byte = 2
)

// Action is a change applied to marker flags.
type Action int

const (
	Highlight Action = iota
	RemoveHighlight
	Select
	Deselect
	Toggle
	Clear
)

var actionNames = []string{"highlight", "remove-highlight", "select", "deselect", "toggle", "clear"}

func (a Action) String() string {
	if a >= 0 && int(a) < len(actionNames) {
		return actionNames[a]
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// ErrUnknownAction is returned by ParseAction.
var ErrUnknownAction = errors.New("marker: unknown action")

// ParseAction returns the action with the given name.
func ParseAction(name string) (Action, error) {
	for i, n := range actionNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return Action(i), nil
		}
	}
	return 0, errors.Wrapf(ErrUnknownAction, "%q", name)
}

// Actions lists all action names.
func Actions() []string {
	return append([]string(nil), actionNames...)
}

// applyOne returns the new flag for v.
func applyOne(v byte, action Action) byte {
	switch action {
	case Highlight:
		return v | Highlighted
	case RemoveHighlight:
		return v &^ Highlighted
	case Select:
		return v | Selected
	case Deselect:
		return v &^ Selected
	case Toggle:
		return v ^ Selected
	case Clear:
		return None
	}
	return v
}

// Apply applies action to buf[start:end] (clamped to buf) and reports
// whether any byte changed.
func Apply(buf []byte, start, end int, action Action) bool {
	start = max(start, 0)
	end = min(end, len(buf))
	changed := false
	for i := start; i < end; i++ {
		if v := applyOne(buf[i], action); v != buf[i] {
			buf[i] = v
			changed = true
		}
	}
	return changed
}

// ApplyIndices applies action to the listed positions of buf. Out of range
// indices are ignored.
func ApplyIndices(buf []byte, indices []int, action Action) bool {
	changed := false
	for _, i := range indices {
		if Apply(buf, i, i+1, action) {
			changed = true
		}
	}
	return changed
}

// Count returns how many entries of buf have all bits of flag set. Count
// with None counts unmarked entries.
func Count(buf []byte, flag byte) int {
	n := 0
	for _, v := range buf {
		if flag == None {
			if v == None {
				n++
			}
		} else if v&flag == flag {
			n++
		}
	}
	return n
}

// Resize returns buf when it already has length n, keeping its flags, and
// a new zeroed buffer otherwise.
func Resize(buf []byte, n int) []byte {
	if buf != nil && len(buf) == n {
		return buf
	}
	return make([]byte, n)
}
