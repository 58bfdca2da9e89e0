package render

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/vg"

	"github.com/couchcryptid/marine-obs-maps/internal/domain"
	"github.com/couchcryptid/marine-obs-maps/internal/observability"
)

type builtinMeta struct{}

func (builtinMeta) Meta(f domain.Field) (domain.FieldMeta, error) { return f.Meta() }

func testRenderer(t *testing.T) (*Renderer, *observability.Metrics) {
	t.Helper()
	m := observability.NewMetricsForTesting()
	// Small figures keep the tests fast.
	return NewRenderer(builtinMeta{}, Size{Width: 3 * vg.Inch, Height: 2 * vg.Inch}, m), m
}

func gridCells() []domain.GridCell {
	return []domain.GridCell{
		{Cell: domain.Cell{Lat: 10, Lon: 20}, Mean: 11, Count: 2},
		{Cell: domain.Cell{Lat: -40, Lon: -170}, Mean: 80, Count: 1}, // above range, clipped
		{Cell: domain.Cell{Lat: 60, Lon: 160}, Mean: -50, Count: 1},  // below range, clipped
	}
}

func decodePNG(t *testing.T, c *Canvas) (w, h int) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.WritePNG(&buf))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	b := img.Bounds()
	return b.Dx(), b.Dy()
}

func TestRenderer_Scalar(t *testing.T) {
	r, m := testRenderer(t)

	c, err := r.Scalar(gridCells(), domain.FieldAirTemp, "2021-01-01")
	require.NoError(t, err)

	w, h := decodePNG(t, c)
	assert.Equal(t, 300, w)
	assert.Equal(t, 200, h)
	assert.Equal(t, 1, testutil.CollectAndCount(m.RenderDuration))
}

func TestRenderer_Scalar_UnknownField(t *testing.T) {
	r, _ := testRenderer(t)
	_, err := r.Scalar(gridCells(), domain.Field("WIND_DIR"), "2021-01-01")
	require.ErrorIs(t, err, domain.ErrUnknownField)
}

func TestRenderer_Scalar_NoCells(t *testing.T) {
	r, _ := testRenderer(t)
	_, err := r.Scalar(nil, domain.FieldSeaLvlPres, "2021-01-01")
	require.ErrorIs(t, err, ErrNoCells)
}

func TestRenderer_EachCallGetsFreshCanvas(t *testing.T) {
	r, _ := testRenderer(t)

	a, err := r.Scalar(gridCells(), domain.FieldSeaSurfTemp, "2021-01-01")
	require.NoError(t, err)
	b, err := r.Scalar(gridCells(), domain.FieldSeaSurfTemp, "2021-01-01")
	require.NoError(t, err)

	assert.NotSame(t, a, b)
	var pa, pb bytes.Buffer
	require.NoError(t, a.WritePNG(&pa))
	require.NoError(t, b.WritePNG(&pb))
	assert.Equal(t, pa.Bytes(), pb.Bytes(), "identical inputs must draw identical images")
}

func TestRenderer_Diff(t *testing.T) {
	r, _ := testRenderer(t)
	cells := []domain.DiffCell{
		{Cell: domain.Cell{Lat: 0, Lon: 0}, Delta: 2.5},
		{Cell: domain.Cell{Lat: 1, Lon: 1}, Delta: -30},
	}

	c, err := r.Diff(cells, domain.FieldSeaLvlPres, "2021-01", "2021-07")
	require.NoError(t, err)
	decodePNG(t, c)

	_, err = r.Diff(cells, domain.Field(""), "2021-01", "2021-07")
	require.ErrorIs(t, err, domain.ErrUnknownField)
}

func TestRenderer_Wind(t *testing.T) {
	r, _ := testRenderer(t)
	cells := []domain.WindCell{
		{Cell: domain.Cell{Lat: 0, Lon: 0}, U: 3, V: 4},
		{Cell: domain.Cell{Lat: 45, Lon: -120}, U: 0, V: 0},
	}

	c, err := r.Wind(cells, "2021-01")
	require.NoError(t, err)
	decodePNG(t, c)

	_, err = r.Wind(nil, "2021-01")
	require.ErrorIs(t, err, ErrNoCells)
}

func TestRenderer_DefaultSizes(t *testing.T) {
	r := NewRenderer(builtinMeta{}, Size{}, observability.NewMetricsForTesting())
	assert.Equal(t, scalarSize, r.sized(scalarSize))
	assert.Equal(t, wideSize, r.sized(wideSize))

	r = NewRenderer(builtinMeta{}, Size{Width: 8 * vg.Inch}, observability.NewMetricsForTesting())
	assert.Equal(t, Size{Width: 8 * vg.Inch, Height: wideSize.Height}, r.sized(wideSize))
}

func TestCanvas_SaveCreatesFolders(t *testing.T) {
	c := NewCanvas(vg.Inch, vg.Inch)
	path := filepath.Join(t.TempDir(), "AIR_TEMP", "nested", "map.png")

	require.NoError(t, c.Save(path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	_, err = png.Decode(f)
	require.NoError(t, err)
}

func TestDiffColorMap(t *testing.T) {
	cm, err := diffColorMap(3)
	require.NoError(t, err)
	assert.Equal(t, -3.0, cm.Min())
	assert.Equal(t, 3.0, cm.Max())

	low, err := cm.At(-3)
	require.NoError(t, err)
	high, err := cm.At(3)
	require.NoError(t, err)
	mid, err := cm.At(0)
	require.NoError(t, err)

	lr, lg, lb, _ := low.RGBA()
	hr, hg, hb, _ := high.RGBA()
	assert.True(t, hr > hg && hr > hb, "positive end is red")
	assert.True(t, lr == lg && lg == lb, "negative end is grey")
	mr, mg, mb, _ := mid.RGBA()
	assert.True(t, mr > 0xe000 && mg > 0xe000 && mb > 0xe000, "midpoint is near white")

	_, err = cm.At(3.5)
	assert.ErrorIs(t, err, palette.ErrOverflow)
	_, err = cm.At(-3.5)
	assert.ErrorIs(t, err, palette.ErrUnderflow)
	assert.Equal(t, 3.0, clip(cm, 10))
	assert.Equal(t, -3.0, clip(cm, -10))

	assert.Len(t, cm.Palette(5).Colors(), 5)
}

func TestProjection(t *testing.T) {
	tests := []struct {
		lon, central, want float64
	}{
		{160, 160, 0},
		{-20, 160, -180},
		{-180, 160, 20},
		{0, 160, -160},
		{50, 50, 0},
		{-130, 50, -180},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, project(tt.lon, tt.central), 1e-12, "lon %v central %v", tt.lon, tt.central)
	}
}

func TestTickLabels(t *testing.T) {
	ticks := lonTicks{central: 160}.Ticks(-180, 180)
	labels := map[float64]string{}
	for _, tk := range ticks {
		if tk.Label != "" {
			labels[tk.Value] = tk.Label
		}
	}
	assert.Equal(t, map[float64]string{
		-180: "20°W",
		-120: "40°E",
		-60:  "100°E",
		0:    "160°E",
		60:   "140°W",
		120:  "80°W",
		180:  "20°W",
	}, labels)

	assert.Equal(t, "180°", lonLabel(180))
	assert.Equal(t, "0°", lonLabel(360))
	assert.Equal(t, "30°S", latLabel(-30))
	assert.Equal(t, "60°N", latLabel(60))
}

func TestPaths(t *testing.T) {
	assert.Equal(t,
		filepath.Join("out", "AIR_TEMP", "Air Temperature (C)_2021-01-01.png"),
		ScalarPath("out", domain.FieldAirTemp, "Air Temperature (C)", "2021-01-01"))
	assert.Equal(t,
		filepath.Join("out", "SEA_LVL_PRES", "Pressure (hPa_millibars)_diff_2021-01_2021-07.png"),
		DiffPath("out", domain.FieldSeaLvlPres, "Pressure (hPa_millibars)", "2021-01", "2021-07"))
	assert.Equal(t,
		filepath.Join("out", "Wind", "2021-01_degrees.png"),
		WindPath("out", "2021-01", domain.Degrees))
	assert.Equal(t,
		filepath.Join("out", "AIR_TEMP", "Air Temperature (C)_01-02-2021.png"),
		ScalarPath("out", domain.FieldAirTemp, "Air Temperature (C)", "01/02/2021"))

	// Different before periods with the same after month must not collide.
	assert.NotEqual(t,
		DiffPath("out", domain.FieldAirTemp, "t", "2020-07", "2021-07"),
		DiffPath("out", domain.FieldAirTemp, "t", "2021-01", "2021-07"))
}
