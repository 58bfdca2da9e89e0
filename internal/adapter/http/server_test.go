package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/vg"

	httpadapter "github.com/couchcryptid/marine-obs-maps/internal/adapter/http"
	"github.com/couchcryptid/marine-obs-maps/internal/domain"
	"github.com/couchcryptid/marine-obs-maps/internal/render"
	"github.com/couchcryptid/marine-obs-maps/internal/table"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

type mapCall struct {
	file, date string
	field      domain.Field
	periods    []domain.Period
}

type mockMaps struct {
	calls []mapCall
	err   error
}

func (m *mockMaps) canvas() (*render.Canvas, int, error) {
	if m.err != nil {
		return nil, 0, m.err
	}
	return render.NewCanvas(2*vg.Inch, vg.Inch), 7, nil
}

func (m *mockMaps) ScalarCanvas(file, date string, field domain.Field) (*render.Canvas, int, error) {
	m.calls = append(m.calls, mapCall{file: file, date: date, field: field})
	return m.canvas()
}

func (m *mockMaps) DiffCanvas(before, after domain.Period, field domain.Field) (*render.Canvas, int, error) {
	m.calls = append(m.calls, mapCall{field: field, periods: []domain.Period{before, after}})
	return m.canvas()
}

func (m *mockMaps) WindCanvas(period domain.Period) (*render.Canvas, int, error) {
	m.calls = append(m.calls, mapCall{periods: []domain.Period{period}})
	return m.canvas()
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(readyErr error, maps *mockMaps) *httpadapter.Server {
	return httpadapter.NewServer(":0", &mockReadiness{err: readyErr}, maps, "data", discardLogger())
}

func get(srv *httpadapter.Server, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHealthzReturns200(t *testing.T) {
	rec := get(newTestServer(nil, &mockMaps{}), "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	rec := get(newTestServer(nil, &mockMaps{}), "/readyz")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ready", body["status"])
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	rec := get(newTestServer(fmt.Errorf("data folder not readable"), &mockMaps{}), "/readyz")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not ready", body["status"])
	assert.Equal(t, "data folder not readable", body["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	rec := get(newTestServer(nil, &mockMaps{}), "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestScalarMapReturnsPNG(t *testing.T) {
	maps := &mockMaps{}
	rec := get(newTestServer(nil, maps), "/maps/scalar?file=2021-01-01.csv&field=air_temp")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "7", rec.Header().Get("X-Map-Cells"))
	img, err := png.Decode(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 200, img.Bounds().Dx())

	require.Len(t, maps.calls, 1)
	assert.Equal(t, mapCall{
		file:  filepath.Join("data", "2021-01-01.csv"),
		date:  "2021-01-01",
		field: domain.FieldAirTemp,
	}, maps.calls[0])
}

func TestDiffAndWindMaps(t *testing.T) {
	maps := &mockMaps{}
	srv := newTestServer(nil, maps)

	rec := get(srv, "/maps/diff?before=2021-01&after=2021-07&field=SEA_SURF_TEMP")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = get(srv, "/maps/wind?period=2021-01")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	require.Len(t, maps.calls, 2)
	assert.Equal(t, []domain.Period{"2021-01", "2021-07"}, maps.calls[0].periods)
	assert.Equal(t, domain.FieldSeaSurfTemp, maps.calls[0].field)
	assert.Equal(t, []domain.Period{"2021-01"}, maps.calls[1].periods)
}

func TestMapErrors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		err    error
		want   int
	}{
		{"unknown field", "/maps/scalar?file=a.csv&field=WIND_DIR", nil, http.StatusBadRequest},
		{"missing field", "/maps/diff?before=2021-01&after=2021-07", nil, http.StatusBadRequest},
		{"path escape", "/maps/scalar?file=../secret.csv&field=AIR_TEMP", nil, http.StatusBadRequest},
		{"short period", "/maps/wind?period=2021-1", nil, http.StatusBadRequest},
		{"period with separator", "/maps/wind?period=2021%2F01", nil, http.StatusBadRequest},
		{"no files", "/maps/wind?period=1999-01", table.ErrNoFiles, http.StatusNotFound},
		{"no cells", "/maps/wind?period=2021-01", render.ErrNoCells, http.StatusNotFound},
		{"bad csv", "/maps/scalar?file=a.csv&field=AIR_TEMP", fmt.Errorf("load a.csv: %w", table.ErrMissingColumn), http.StatusUnprocessableEntity},
		{"other", "/maps/wind?period=2021-01", fmt.Errorf("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(newTestServer(nil, &mockMaps{err: tt.err}), tt.target)

			assert.Equal(t, tt.want, rec.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}
