package render

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// ErrEmptyBasemap is returned when a GeoJSON file holds no land or coastline geometry.
var ErrEmptyBasemap = errors.New("basemap has no polygons or lines")

var (
	landColor  = color.RGBA{R: 255, G: 165, B: 0, A: 255} // orange
	coastColor = color.Black
)

// Basemap is land and coastline geometry in longitude/latitude degrees,
// typically a Natural Earth land or coastline GeoJSON export.
type Basemap struct {
	land  []orb.Ring
	coast []orb.LineString
}

// LoadBasemapFile reads a GeoJSON feature collection from path.
func LoadBasemapFile(path string) (*Basemap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open basemap: %w", err)
	}
	defer f.Close()

	b, err := LoadBasemap(f)
	if err != nil {
		return nil, fmt.Errorf("basemap %s: %w", path, err)
	}
	return b, nil
}

// LoadBasemap decodes a GeoJSON feature collection. Polygon outer rings
// are filled as land; every ring and line is stroked as coastline. Other
// geometry types are skipped.
func LoadBasemap(r io.Reader) (*Basemap, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read geojson: %w", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decode geojson: %w", err)
	}

	b := &Basemap{}
	for _, f := range fc.Features {
		b.add(f.Geometry)
	}
	if len(b.land) == 0 && len(b.coast) == 0 {
		return nil, ErrEmptyBasemap
	}
	return b, nil
}

func (b *Basemap) add(g orb.Geometry) {
	switch g := g.(type) {
	case orb.Polygon:
		b.addPolygon(g)
	case orb.MultiPolygon:
		for _, p := range g {
			b.addPolygon(p)
		}
	case orb.LineString:
		b.coast = append(b.coast, g)
	case orb.MultiLineString:
		b.coast = append(b.coast, g...)
	case orb.Collection:
		for _, sub := range g {
			b.add(sub)
		}
	}
}

func (b *Basemap) addPolygon(p orb.Polygon) {
	if len(p) == 0 {
		return
	}
	b.land = append(b.land, p[0])
	for _, ring := range p {
		b.coast = append(b.coast, orb.LineString(ring))
	}
}

// basemapLayer draws a Basemap on a map centered on central.
type basemapLayer struct {
	b       *Basemap
	central float64
}

func (l basemapLayer) Plot(c draw.Canvas, p *plot.Plot) {
	trX, trY := p.Transforms(&c)
	toCanvas := func(xs, ys []float64, shift float64) []vg.Point {
		pts := make([]vg.Point, len(xs))
		for i := range xs {
			pts[i] = vg.Point{X: trX(xs[i] + shift), Y: trY(ys[i])}
		}
		return pts
	}

	for _, ring := range l.b.land {
		xs, ys := closeAtPole(unwrap(orb.LineString(ring), l.central))
		for _, shift := range []float64{-360, 0, 360} {
			if pts := c.ClipPolygonXY(toCanvas(xs, ys, shift)); len(pts) > 0 {
				c.FillPolygon(landColor, pts)
			}
		}
	}

	style := draw.LineStyle{Color: coastColor, Width: vg.Points(0.4)}
	for _, line := range l.b.coast {
		xs, ys := unwrap(line, l.central)
		for _, shift := range []float64{-360, 0, 360} {
			c.StrokeLines(style, c.ClipLinesXY(toCanvas(xs, ys, shift))...)
		}
	}
}

func (basemapLayer) DataRange() (xmin, xmax, ymin, ymax float64) {
	return -180, 180, -90, 90
}

// unwrap projects line onto the map centered on central and removes the
// jumps where it crosses the map edge, so consecutive x values never differ
// by more than half the globe. The result may extend past [-180, 180].
func unwrap(line orb.LineString, central float64) (xs, ys []float64) {
	xs = make([]float64, len(line))
	ys = make([]float64, len(line))
	for i, pt := range line {
		x := project(pt.Lon(), central)
		if i > 0 {
			prev := xs[i-1]
			x += 360 * math.Round((prev-x)/360)
		}
		xs[i], ys[i] = x, pt.Lat()
	}
	return xs, ys
}

// closeAtPole completes a ring that circles a pole. Once unwrapped such a
// ring ends a full turn away from where it started; it is closed along the
// nearer pole so the fill covers the polar cap.
func closeAtPole(xs, ys []float64) ([]float64, []float64) {
	n := len(xs)
	if n < 2 || math.Abs(xs[n-1]-xs[0]) < 180 {
		return xs, ys
	}
	var sum float64
	for _, y := range ys {
		sum += y
	}
	pole := 90.0
	if sum < 0 {
		pole = -90
	}
	xs = append(xs, xs[n-1], xs[0])
	ys = append(ys, pole, pole)
	return xs, ys
}
