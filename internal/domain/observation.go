package domain

import (
	"math"
	"time"
)

// Observation is one reduced marine report. Measured fields hold NaN when
// the source cell was empty.
type Observation struct {
	Lat         int
	Lon         int
	AirTemp     float64 // °C
	WindDir     float64 // degrees
	WindSpeed   float64
	SeaSurfTemp float64 // °C
	SeaLvlPres  float64 // hPa
}

// Value returns the observation's value for a scalar field.
func (o Observation) Value(f Field) (float64, error) {
	switch f {
	case FieldAirTemp:
		return o.AirTemp, nil
	case FieldSeaSurfTemp:
		return o.SeaSurfTemp, nil
	case FieldSeaLvlPres:
		return o.SeaLvlPres, nil
	}
	return 0, unknownField(string(f))
}

// Missing reports whether v marks an absent measurement.
func Missing(v float64) bool {
	return math.IsNaN(v)
}

// Cell is a whole-degree grid key.
type Cell struct {
	Lat int `json:"lat"`
	Lon int `json:"lon"`
}

func (c Cell) less(o Cell) bool {
	if c.Lat != o.Lat {
		return c.Lat < o.Lat
	}
	return c.Lon < o.Lon
}

// GridCell holds the mean of one field over the observations in a cell.
type GridCell struct {
	Cell
	Mean  float64 `json:"mean"`
	Count int     `json:"count"`
}

// DiffCell holds the signed change of a field between two periods.
type DiffCell struct {
	Cell
	Before float64 `json:"before"`
	After  float64 `json:"after"`
	Delta  float64 `json:"delta"` // After - Before
}

// WindCell holds the mean wind components of a cell.
type WindCell struct {
	Cell
	U     float64 `json:"u"`
	V     float64 `json:"v"`
	Count int     `json:"count"`
}

// Artifact kinds.
const (
	KindScalar = "scalar"
	KindDiff   = "diff"
	KindWind   = "wind"
)

// Artifact describes a rendered map image.
type Artifact struct {
	Kind       string    `json:"kind"`
	Field      string    `json:"field,omitempty"`
	Labels     []string  `json:"labels"`
	Path       string    `json:"path"`
	Cells      int       `json:"cells"`
	RenderedAt time.Time `json:"rendered_at"`
}

// NewArtifact stamps an artifact with the current time.
func NewArtifact(kind, field, path string, cells int, labels ...string) Artifact {
	return Artifact{
		Kind:       kind,
		Field:      field,
		Labels:     labels,
		Path:       path,
		Cells:      cells,
		RenderedAt: clock.Now().UTC(),
	}
}
