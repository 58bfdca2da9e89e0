package render

import (
	"fmt"
	"math"

	"gonum.org/v1/plot"
)

// Central longitudes of the two map layouts.
const (
	ScalarCentralLon = 160
	WindCentralLon   = 50
)

// wrapLon maps any longitude into [-180, 180).
func wrapLon(lon float64) float64 {
	r := math.Mod(lon+180, 360)
	if r < 0 {
		r += 360
	}
	return r - 180
}

// project converts a longitude to the x coordinate of a plate carrée map
// centered on central.
func project(lon, central float64) float64 {
	return wrapLon(lon - central)
}

// lonTicks labels the projected x axis with real longitudes.
type lonTicks struct {
	central float64
}

func (t lonTicks) Ticks(_, _ float64) []plot.Tick {
	var ticks []plot.Tick
	for x := -180.0; x <= 180; x += 30 {
		tick := plot.Tick{Value: x}
		if int(x)%60 == 0 {
			tick.Label = lonLabel(x + t.central)
		}
		ticks = append(ticks, tick)
	}
	return ticks
}

func lonLabel(lon float64) string {
	lon = wrapLon(lon)
	switch {
	case lon == -180:
		return "180°"
	case lon == 0:
		return "0°"
	case lon > 0:
		return fmt.Sprintf("%g°E", lon)
	}
	return fmt.Sprintf("%g°W", -lon)
}

type latTicks struct{}

func (latTicks) Ticks(_, _ float64) []plot.Tick {
	var ticks []plot.Tick
	for y := -90.0; y <= 90; y += 30 {
		ticks = append(ticks, plot.Tick{Value: y, Label: latLabel(y)})
	}
	return ticks
}

func latLabel(lat float64) string {
	switch {
	case lat == 0:
		return "0°"
	case lat > 0:
		return fmt.Sprintf("%g°N", lat)
	}
	return fmt.Sprintf("%g°S", -lat)
}
