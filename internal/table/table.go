// Package table reduces NCEI global-marine CSV files to observations.
package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/couchcryptid/marine-obs-maps/internal/domain"
)

// Source column names.
const (
	ColLatitude    = "LATITUDE"
	ColLongitude   = "LONGITUDE"
	ColAirTemp     = "AIR_TEMP"
	ColWindDir     = "WIND_DIR"
	ColWindSpeed   = "WIND_SPEED"
	ColSeaSurfTemp = "SEA_SURF_TEMP"
	ColSeaLvlPres  = "SEA_LVL_PRES"
)

// Columns lists the kept columns in output order.
var Columns = []string{ColLatitude, ColLongitude, ColAirTemp, ColWindDir, ColWindSpeed, ColSeaSurfTemp, ColSeaLvlPres}

// tenthsScale converts wire values in tenths to natural units.
const tenthsScale = 10

var (
	ErrMissingColumn = errors.New("missing column")
	ErrBadValue      = errors.New("bad value")
)

var nanValues = []string{"", "NA", "NaN"}

// Load reads a CSV with a header row and returns one observation per data
// row. Columns other than Columns are ignored; an absent column is an error.
func Load(r io.Reader) ([]domain.Observation, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("read csv: %w: no header row", ErrMissingColumn)
	}

	records, err = project(normalize(records))
	if err != nil {
		return nil, err
	}
	if len(records) == 1 {
		return []domain.Observation{}, nil
	}

	types := make(map[string]series.Type, len(Columns))
	for _, c := range Columns {
		types[c] = series.Float
	}
	df := dataframe.LoadRecords(records,
		dataframe.DetectTypes(false),
		dataframe.WithTypes(types),
		dataframe.NaNValues(nanValues),
	).Select(Columns)
	if df.Err != nil {
		return nil, fmt.Errorf("load dataframe: %w", df.Err)
	}
	return toObservations(df)
}

// normalize trims every cell and pads or cuts rows to the header width.
func normalize(records [][]string) [][]string {
	records[0][0] = strings.TrimPrefix(records[0][0], "\ufeff")
	width := len(records[0])
	for i, row := range records {
		for j := range row {
			row[j] = strings.TrimSpace(row[j])
		}
		switch {
		case len(row) < width:
			records[i] = append(row, make([]string, width-len(row))...)
		case len(row) > width:
			records[i] = row[:width]
		}
	}
	return records
}

// project keeps only Columns, in order, and verifies every kept cell is
// numeric or empty. A repeated header name resolves to its first occurrence.
func project(records [][]string) ([][]string, error) {
	header := records[0]
	idx := make([]int, len(Columns))
	for j, name := range Columns {
		idx[j] = slices.Index(header, name)
		if idx[j] < 0 {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}

	out := make([][]string, len(records))
	out[0] = slices.Clone(Columns)
	for i, row := range records[1:] {
		kept := make([]string, len(Columns))
		for j, col := range idx {
			v := row[col]
			if !slices.Contains(nanValues, v) {
				if _, err := strconv.ParseFloat(v, 64); err != nil {
					return nil, fmt.Errorf("%w: row %d column %s: %q", ErrBadValue, i+1, Columns[j], v)
				}
			}
			kept[j] = v
		}
		out[i+1] = kept
	}
	return out, nil
}

func toObservations(df dataframe.DataFrame) ([]domain.Observation, error) {
	lat := df.Col(ColLatitude).Float()
	lon := df.Col(ColLongitude).Float()
	air := df.Col(ColAirTemp).Float()
	dir := df.Col(ColWindDir).Float()
	speed := df.Col(ColWindSpeed).Float()
	sst := df.Col(ColSeaSurfTemp).Float()
	pres := df.Col(ColSeaLvlPres).Float()

	out := make([]domain.Observation, df.Nrow())
	for i := range out {
		if math.IsNaN(lat[i]) || math.IsNaN(lon[i]) {
			return nil, fmt.Errorf("%w: row %d has no coordinates", ErrBadValue, i+1)
		}
		if !onGlobe(lat[i], lon[i]) {
			return nil, fmt.Errorf("%w: row %d coordinates (%v, %v) off the globe", ErrBadValue, i+1, lat[i], lon[i])
		}
		out[i] = domain.Observation{
			Lat:         int(math.Trunc(lat[i])),
			Lon:         int(math.Trunc(lon[i])),
			AirTemp:     air[i] / tenthsScale,
			WindDir:     dir[i],
			WindSpeed:   speed[i],
			SeaSurfTemp: sst[i] / tenthsScale,
			SeaLvlPres:  pres[i] / tenthsScale,
		}
	}
	return out, nil
}

// onGlobe rejects infinities along with anything outside the coordinate ranges.
func onGlobe(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// Save writes observations back in the source encoding, so loading the
// output yields the same observations.
func Save(w io.Writer, obs []domain.Observation) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, o := range obs {
		row := []string{
			strconv.Itoa(o.Lat),
			strconv.Itoa(o.Lon),
			formatScaled(o.AirTemp),
			formatPlain(o.WindDir),
			formatPlain(o.WindSpeed),
			formatScaled(o.SeaSurfTemp),
			formatScaled(o.SeaLvlPres),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatPlain(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// formatScaled renders v in tenths using the shortest decimal that loads
// back to exactly v.
func formatScaled(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	wire := v * tenthsScale
	for prec := 1; prec <= 17; prec++ {
		s := strconv.FormatFloat(wire, 'g', prec, 64)
		if f, err := strconv.ParseFloat(s, 64); err == nil && f/tenthsScale == v {
			return s
		}
	}
	return strconv.FormatFloat(wire, 'g', -1, 64)
}
