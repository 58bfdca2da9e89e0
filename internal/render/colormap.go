package render

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/brewer"
	"gonum.org/v1/plot/palette/moreland"
)

// scalarColorMap returns the sequential scale used for single-period maps.
func scalarColorMap(lo, hi float64) palette.ColorMap {
	cm := moreland.ExtendedKindlmann()
	cm.SetMin(lo)
	cm.SetMax(hi)
	return cm
}

// diffColorMap returns a grey-white-red diverging scale spanning
// [-limit, limit], red for increases.
func diffColorMap(limit float64) (palette.ColorMap, error) {
	p, err := brewer.GetPalette(brewer.TypeDiverging, "RdGy", 11)
	if err != nil {
		return nil, fmt.Errorf("diverging palette: %w", err)
	}
	src := p.Colors()
	colors := make([]color.Color, len(src))
	for i, c := range src {
		colors[len(src)-1-i] = c
	}
	return &steppedMap{colors: colors, min: -limit, max: limit, alpha: 1}, nil
}

// clip pins v into the color map range.
func clip(cm palette.ColorMap, v float64) float64 {
	return math.Max(cm.Min(), math.Min(cm.Max(), v))
}

// steppedMap is a palette.ColorMap over a fixed list of evenly spaced colors.
type steppedMap struct {
	colors   []color.Color
	min, max float64
	alpha    float64
}

func (m *steppedMap) At(v float64) (color.Color, error) {
	switch {
	case math.IsNaN(v):
		return nil, palette.ErrNaN
	case v < m.min:
		return nil, palette.ErrUnderflow
	case v > m.max:
		return nil, palette.ErrOverflow
	}
	i := int((v - m.min) / (m.max - m.min) * float64(len(m.colors)))
	if i >= len(m.colors) {
		i = len(m.colors) - 1
	}
	return m.withAlpha(m.colors[i]), nil
}

func (m *steppedMap) withAlpha(c color.Color) color.Color {
	if m.alpha == 1 {
		return c
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = uint8(float64(n.A) * m.alpha)
	return n
}

func (m *steppedMap) Max() float64     { return m.max }
func (m *steppedMap) SetMax(v float64) { m.max = v }
func (m *steppedMap) Min() float64     { return m.min }
func (m *steppedMap) SetMin(v float64) { m.min = v }
func (m *steppedMap) Alpha() float64   { return m.alpha }

func (m *steppedMap) SetAlpha(a float64) {
	if a < 0 || a > 1 {
		panic(fmt.Sprintf("render: invalid alpha %g", a))
	}
	m.alpha = a
}

func (m *steppedMap) Palette(n int) palette.Palette {
	out := make(colorList, n)
	for i := range out {
		v := m.min
		if n > 1 {
			v += float64(i) / float64(n-1) * (m.max - m.min)
		}
		out[i], _ = m.At(v)
	}
	return out
}

type colorList []color.Color

func (c colorList) Colors() []color.Color { return c }
