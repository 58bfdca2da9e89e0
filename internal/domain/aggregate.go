package domain

import (
	"slices"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Aggregate groups observations by cell and returns the mean of f per
// occupied cell, sorted by latitude then longitude. Observations missing f
// are skipped; other missing fields do not matter.
func Aggregate(obs []Observation, f Field) ([]GridCell, error) {
	if _, err := f.Meta(); err != nil {
		return nil, err
	}

	groups := make(map[Cell][]float64)
	for _, o := range obs {
		v, err := o.Value(f)
		if err != nil {
			return nil, err
		}
		if Missing(v) {
			continue
		}
		c := Cell{Lat: o.Lat, Lon: o.Lon}
		groups[c] = append(groups[c], v)
	}

	out := make([]GridCell, 0, len(groups))
	for c, vals := range groups {
		out = append(out, GridCell{Cell: c, Mean: mean(vals), Count: len(vals)})
	}
	sortCells(out, func(g GridCell) Cell { return g.Cell })
	return out, nil
}

// AggregateWind derives (u, v) for every observation with both direction
// and speed present, then averages the components per cell.
func AggregateWind(obs []Observation, unit AngleUnit) ([]WindCell, error) {
	type uv struct{ u, v []float64 }
	groups := make(map[Cell]*uv)
	for _, o := range obs {
		if Missing(o.WindDir) || Missing(o.WindSpeed) {
			continue
		}
		u, v, err := ToUV(o.WindDir, o.WindSpeed, unit)
		if err != nil {
			return nil, err
		}
		c := Cell{Lat: o.Lat, Lon: o.Lon}
		g, ok := groups[c]
		if !ok {
			g = &uv{}
			groups[c] = g
		}
		g.u = append(g.u, u)
		g.v = append(g.v, v)
	}

	out := make([]WindCell, 0, len(groups))
	for c, g := range groups {
		out = append(out, WindCell{Cell: c, U: mean(g.u), V: mean(g.v), Count: len(g.u)})
	}
	sortCells(out, func(w WindCell) Cell { return w.Cell })
	return out, nil
}

// Difference joins two grids on cells present in both and returns
// after - before per cell. Cells occupied in only one grid are dropped.
func Difference(before, after []GridCell) []DiffCell {
	prior := make(map[Cell]float64, len(before))
	for _, g := range before {
		prior[g.Cell] = g.Mean
	}

	out := make([]DiffCell, 0, min(len(before), len(after)))
	for _, g := range after {
		b, ok := prior[g.Cell]
		if !ok {
			continue
		}
		out = append(out, DiffCell{Cell: g.Cell, Before: b, After: g.Mean, Delta: g.Mean - b})
	}
	sortCells(out, func(d DiffCell) Cell { return d.Cell })
	return out
}

// mean sorts vals in place so the sum does not depend on input order.
func mean(vals []float64) float64 {
	sort.Float64s(vals)
	return stat.Mean(vals, nil)
}

func sortCells[T any](s []T, key func(T) Cell) {
	slices.SortFunc(s, func(a, b T) int {
		ka, kb := key(a), key(b)
		switch {
		case ka.less(kb):
			return -1
		case kb.less(ka):
			return 1
		}
		return 0
	})
}
