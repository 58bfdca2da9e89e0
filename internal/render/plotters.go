package render

import (
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

var (
	oceanColor = color.RGBA{R: 173, G: 216, B: 230, A: 255} // lightblue
	gridColor  = color.RGBA{R: 128, G: 128, B: 128, A: 96}
)

// ocean fills the whole globe before anything else is drawn.
type ocean struct {
	color color.Color
}

func (o ocean) Plot(c draw.Canvas, p *plot.Plot) {
	trX, trY := p.Transforms(&c)
	pts := []vg.Point{
		{X: trX(-180), Y: trY(-90)},
		{X: trX(180), Y: trY(-90)},
		{X: trX(180), Y: trY(90)},
		{X: trX(-180), Y: trY(90)},
	}
	c.FillPolygon(o.color, c.ClipPolygonXY(pts))
}

func (ocean) DataRange() (xmin, xmax, ymin, ymax float64) {
	return -180, 180, -90, 90
}

// arrow is one wind vector anchored at a projected cell.
type arrow struct {
	x, y float64
	u, v float64
}

// quiver draws wind vectors as arrows. The longest arrow is maxLen long.
type quiver struct {
	arrows []arrow
	maxLen vg.Length
	style  draw.LineStyle
}

func newQuiver(arrows []arrow) *quiver {
	return &quiver{
		arrows: arrows,
		maxLen: 10 * vg.Millimeter,
		style:  draw.LineStyle{Color: color.Black, Width: vg.Points(0.6)},
	}
}

func (q *quiver) Plot(c draw.Canvas, p *plot.Plot) {
	var longest float64
	for _, a := range q.arrows {
		longest = math.Max(longest, math.Hypot(a.u, a.v))
	}
	if longest == 0 {
		return
	}
	scale := float64(q.maxLen) / longest

	trX, trY := p.Transforms(&c)
	for _, a := range q.arrows {
		tail := vg.Point{X: trX(a.x), Y: trY(a.y)}
		if !c.Contains(tail) {
			continue
		}
		dx := vg.Length(a.u * scale)
		dy := vg.Length(a.v * scale)
		tip := vg.Point{X: tail.X + dx, Y: tail.Y + dy}
		c.StrokeLines(q.style, c.ClipLinesXY([]vg.Point{tail, tip})...)

		head := vg.Length(math.Hypot(float64(dx), float64(dy))) * 0.3
		if head == 0 {
			continue
		}
		angle := math.Atan2(float64(dy), float64(dx))
		for _, side := range []float64{-1, 1} {
			theta := angle + math.Pi - side*math.Pi/7
			barb := vg.Point{
				X: tip.X + head*vg.Length(math.Cos(theta)),
				Y: tip.Y + head*vg.Length(math.Sin(theta)),
			}
			c.StrokeLines(q.style, c.ClipLinesXY([]vg.Point{tip, barb})...)
		}
	}
}

func (q *quiver) DataRange() (xmin, xmax, ymin, ymax float64) {
	return -180, 180, -90, 90
}
