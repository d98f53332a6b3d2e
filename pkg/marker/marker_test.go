package marker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionTable(t *testing.T) {
	tests := []struct {
		action Action
		in     byte
		want   byte
	}{
		{Highlight, None, Highlighted},
		{Highlight, Selected, Selected | Highlighted},
		{RemoveHighlight, Highlighted | Selected, Selected},
		{RemoveHighlight, None, None},
		{Select, Highlighted, Highlighted | Selected},
		{Deselect, Selected, None},
		{Toggle, None, Selected},
		{Toggle, Selected | Highlighted, Highlighted},
		{Clear, Selected | Highlighted, None},
	}
	for _, tt := range tests {
		t.Run(tt.action.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, applyOne(tt.in, tt.action))
		})
	}
}

func TestHighlightIsIdempotent(t *testing.T) {
	buf := make([]byte, 6)
	assert.True(t, Apply(buf, 1, 3, Highlight))
	once := append([]byte(nil), buf...)
	assert.False(t, Apply(buf, 1, 3, Highlight))
	assert.Equal(t, once, buf)

	assert.True(t, Apply(buf, 1, 3, RemoveHighlight))
	assert.Equal(t, make([]byte, 6), buf)
}

func TestApplyClamps(t *testing.T) {
	buf := make([]byte, 3)
	assert.True(t, Apply(buf, -4, 100, Select))
	assert.Equal(t, 3, Count(buf, Selected))
	assert.False(t, Apply(buf, 5, 9, Deselect))
	assert.True(t, ApplyIndices(buf, []int{0, 7, -1}, Deselect))
	assert.Equal(t, 1, Count(buf, None))
}

func TestParseAction(t *testing.T) {
	a, err := ParseAction(" Remove-Highlight ")
	require.NoError(t, err)
	assert.Equal(t, RemoveHighlight, a)
	_, err = ParseAction("blink")
	assert.ErrorIs(t, err, ErrUnknownAction)
	assert.Len(t, Actions(), 6)
}

func TestResize(t *testing.T) {
	buf := []byte{1, 2}
	assert.Same(t, &buf[0], &Resize(buf, 2)[0])
	assert.Equal(t, []byte{0, 0, 0}, Resize(buf, 3))
	assert.Empty(t, Resize(nil, 0))
}
