package props

import (
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arose/molstar/pkg/theme"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestMergeDoesNotMutate(t *testing.T) {
	base := Default()
	merged := base.Merge(Override{
		Alpha:      lo.ToPtr[float32](0.5),
		ColorTheme: lo.ToPtr("chain-id"),
		Detail:     lo.ToPtr(0),
	})
	assert.Equal(t, float32(1), base.Alpha)
	assert.Equal(t, "element-symbol", base.ColorTheme)
	assert.Equal(t, float32(0.5), merged.Alpha)
	assert.Equal(t, "chain-id", merged.ColorTheme)
	assert.Equal(t, 0, merged.Detail)
	assert.Equal(t, base.SizeTheme, merged.SizeTheme)
	assert.Equal(t, base, base.Merge(Override{}))
}

func TestOverrideThen(t *testing.T) {
	a := Override{Alpha: lo.ToPtr[float32](0.2), SizeTheme: lo.ToPtr("uniform")}
	b := Override{Alpha: lo.ToPtr[float32](0.7)}
	p := Default().Merge(a.Then(b))
	assert.Equal(t, float32(0.7), p.Alpha)
	assert.Equal(t, "uniform", p.SizeTheme)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		o    Override
		want error
	}{
		{"alpha", Override{Alpha: lo.ToPtr[float32](2)}, ErrInvalid},
		{"detail", Override{Detail: lo.ToPtr(9)}, ErrInvalid},
		{"segments", Override{RadialSegments: lo.ToPtr(2)}, ErrInvalid},
		{"quality", Override{Quality: lo.ToPtr(Quality("ultra"))}, ErrInvalid},
		{"color value", Override{ColorValue: lo.ToPtr("green")}, ErrInvalid},
		{"color theme", Override{ColorTheme: lo.ToPtr("rainbow")}, theme.ErrUnknownTheme},
		{"size theme", Override{SizeTheme: lo.ToPtr("vdw")}, theme.ErrUnknownTheme},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, Default().Merge(tt.o).Validate(), tt.want)
		})
	}
}

func TestResolve(t *testing.T) {
	p := Default()
	assert.Equal(t, 2, p.Resolve(10).Detail)
	assert.Equal(t, 0, p.Resolve(200_000).Detail)
	assert.Equal(t, 4, p.Resolve(1_000_000).RadialSegments)

	custom := p.Merge(Override{Quality: lo.ToPtr(QualityCustom), Detail: lo.ToPtr(5)})
	assert.Equal(t, 5, custom.Resolve(1_000_000).Detail)
	assert.Equal(t, QualityMedium, AutoQuality(50_000))
}

func TestTheme(t *testing.T) {
	th, err := Default().Merge(Override{ColorTheme: lo.ToPtr("uniform"), ColorValue: lo.ToPtr("#00ff00")}).Theme(theme.Context{})
	require.NoError(t, err)
	assert.Equal(t, "uniform", th.Color.Name)
	assert.Equal(t, "physical", th.Size.Name)
	assert.Equal(t, theme.Color(0x00ff00), th.Color.Color(nil, false))
}
