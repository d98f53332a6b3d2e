package names

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "ball-and-stick", Normalize(" Ball_and Stick "))
}

func TestClosest(t *testing.T) {
	candidates := []string{"uniform", "chain-id", "element-symbol"}
	s, ok := Closest("element-symbl", candidates)
	assert.True(t, ok)
	assert.Equal(t, "element-symbol", s)

	_, ok = Closest("zzzz", candidates)
	assert.False(t, ok)
}

func TestUnknown(t *testing.T) {
	sentinel := errors.New("unknown thing")
	err := Unknown(sentinel, "chian-id", []string{"uniform", "chain-id"})
	assert.ErrorIs(t, err, sentinel)
	assert.Contains(t, err.Error(), `did you mean "chain-id"`)

	err = Unknown(sentinel, "qqq", []string{"uniform", "chain-id"})
	assert.Contains(t, err.Error(), "valid: chain-id, uniform")
}
