package render

import (
	"errors"
	"fmt"
	"image/color"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/couchcryptid/marine-obs-maps/internal/domain"
	"github.com/couchcryptid/marine-obs-maps/internal/observability"
)

// ErrNoCells is returned when there is nothing to draw.
var ErrNoCells = errors.New("no grid cells to render")

// MetaSource resolves the display settings of a field.
type MetaSource interface {
	Meta(f domain.Field) (domain.FieldMeta, error)
}

// Size is a figure size. Zero values keep the per-kind default.
type Size struct {
	Width  vg.Length
	Height vg.Length
}

var (
	scalarSize = Size{Width: 6.4 * vg.Inch, Height: 4.8 * vg.Inch}
	wideSize   = Size{Width: 10 * vg.Inch, Height: 5 * vg.Inch}
)

// Renderer draws grid products. It holds no figure state between calls.
type Renderer struct {
	meta    MetaSource
	size    Size
	basemap *Basemap
	metrics *observability.Metrics
}

// NewRenderer creates a Renderer. size overrides the default figure sizes
// when non-zero.
func NewRenderer(meta MetaSource, size Size, metrics *observability.Metrics) *Renderer {
	return &Renderer{meta: meta, size: size, metrics: metrics}
}

// WithBasemap draws land and coastlines from b beneath every map.
// A nil b leaves the ocean bare.
func (r *Renderer) WithBasemap(b *Basemap) *Renderer {
	r.basemap = b
	return r
}

// Scalar draws one field's cell means as a colored scatter.
func (r *Renderer) Scalar(cells []domain.GridCell, field domain.Field, date string) (*Canvas, error) {
	meta, err := r.meta.Meta(field)
	if err != nil {
		return nil, err
	}
	if len(cells) == 0 {
		return nil, ErrNoCells
	}

	pts := make([]point, len(cells))
	for i, c := range cells {
		pts[i] = point{lat: c.Lat, lon: c.Lon, value: c.Mean}
	}
	title := fmt.Sprintf("%s: %s", meta.Title, date)
	return r.colorMap(domain.KindScalar, title, pts, scalarColorMap(meta.Min, meta.Max), r.sized(scalarSize))
}

// Diff draws the signed per-cell change between two periods.
func (r *Renderer) Diff(cells []domain.DiffCell, field domain.Field, before, after string) (*Canvas, error) {
	meta, err := r.meta.Meta(field)
	if err != nil {
		return nil, err
	}
	if len(cells) == 0 {
		return nil, ErrNoCells
	}

	cm, err := diffColorMap(meta.DiffMax)
	if err != nil {
		return nil, err
	}
	pts := make([]point, len(cells))
	for i, c := range cells {
		pts[i] = point{lat: c.Lat, lon: c.Lon, value: c.Delta}
	}
	title := fmt.Sprintf("%s difference:%s-%s", meta.Title, before, after)
	return r.colorMap(domain.KindDiff, title, pts, cm, r.sized(wideSize))
}

// Wind draws per-cell mean wind vectors as arrows.
func (r *Renderer) Wind(cells []domain.WindCell, period string) (*Canvas, error) {
	if len(cells) == 0 {
		return nil, ErrNoCells
	}
	start := time.Now()

	arrows := make([]arrow, len(cells))
	for i, c := range cells {
		arrows[i] = arrow{x: project(float64(c.Lon), WindCentralLon), y: float64(c.Lat), u: c.U, v: c.V}
	}

	p := r.newMapPlot("Wind map: "+period, WindCentralLon)
	p.Add(newQuiver(arrows))
	fixGlobe(p)

	size := r.sized(wideSize)
	canvas := NewCanvas(size.Width, size.Height)
	p.Draw(canvas.Draw())

	r.observe(domain.KindWind, start)
	return canvas, nil
}

type point struct {
	lat, lon int
	value    float64
}

// colorMap draws pts on a map centered on ScalarCentralLon with a
// horizontal color bar underneath.
func (r *Renderer) colorMap(kind, title string, pts []point, cm palette.ColorMap, size Size) (*Canvas, error) {
	start := time.Now()

	xys := make(plotter.XYs, len(pts))
	colors := make([]color.Color, len(pts))
	for i, pt := range pts {
		xys[i].X = project(float64(pt.lon), ScalarCentralLon)
		xys[i].Y = float64(pt.lat)
		c, err := cm.At(clip(cm, pt.value))
		if err != nil {
			return nil, fmt.Errorf("color for cell (%d, %d): %w", pt.lat, pt.lon, err)
		}
		colors[i] = c
	}

	sc, err := plotter.NewScatter(xys)
	if err != nil {
		return nil, fmt.Errorf("scatter: %w", err)
	}
	sc.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		return draw.GlyphStyle{Color: colors[i], Radius: vg.Points(1.5), Shape: draw.CircleGlyph{}}
	}

	p := r.newMapPlot(title, ScalarCentralLon)
	p.Add(sc)
	fixGlobe(p)

	bar := plot.New()
	bar.HideY()
	bar.X.Padding = 0
	bar.Add(&plotter.ColorBar{ColorMap: cm, Colors: 256})

	canvas := NewCanvas(size.Width, size.Height)
	dc := canvas.Draw()
	barH := size.Height * 0.15
	p.Draw(draw.Crop(dc, 0, 0, barH, 0))
	bar.Draw(draw.Crop(dc, size.Width*0.1, -size.Width*0.1, 0, barH-size.Height))

	r.observe(kind, start)
	return canvas, nil
}

// newMapPlot creates a plate carrée world plot with ocean, land when a
// basemap is set, and graticule.
func (r *Renderer) newMapPlot(title string, central float64) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Tick.Marker = lonTicks{central: central}
	p.Y.Tick.Marker = latTicks{}
	p.X.Padding = 0
	p.Y.Padding = 0

	grid := plotter.NewGrid()
	grid.Vertical.Color = gridColor
	grid.Horizontal.Color = gridColor
	p.Add(ocean{color: oceanColor})
	if r.basemap != nil {
		p.Add(basemapLayer{b: r.basemap, central: central})
	}
	p.Add(grid)
	return p
}

// fixGlobe pins the axes to the whole globe after all plotters are added.
func fixGlobe(p *plot.Plot) {
	p.X.Min, p.X.Max = -180, 180
	p.Y.Min, p.Y.Max = -90, 90
}

func (r *Renderer) sized(def Size) Size {
	s := def
	if r.size.Width > 0 {
		s.Width = r.size.Width
	}
	if r.size.Height > 0 {
		s.Height = r.size.Height
	}
	return s
}

func (r *Renderer) observe(kind string, start time.Time) {
	r.metrics.RenderDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}
