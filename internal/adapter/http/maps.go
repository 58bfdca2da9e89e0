package http

import (
	"bytes"
	"errors"
	"io/fs"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	"github.com/couchcryptid/marine-obs-maps/internal/domain"
	"github.com/couchcryptid/marine-obs-maps/internal/render"
	"github.com/couchcryptid/marine-obs-maps/internal/table"
)

// MapSource draws maps without saving them.
type MapSource interface {
	ScalarCanvas(file, date string, field domain.Field) (*render.Canvas, int, error)
	DiffCanvas(before, after domain.Period, field domain.Field) (*render.Canvas, int, error)
	WindCanvas(period domain.Period) (*render.Canvas, int, error)
}

var errBadFile = errors.New("file must be a plain file name inside the data folder")

// GET /maps/scalar?file=2021-01-01.csv&date=2021-01-01&field=AIR_TEMP
// date defaults to the file name without its extension.
func (s *Server) handleScalar(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	field, err := domain.ParseField(q.Get("field"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	name := q.Get("file")
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		s.writeError(w, errBadFile)
		return
	}
	date := q.Get("date")
	if date == "" {
		date = strings.TrimSuffix(name, filepath.Ext(name))
	}

	c, n, err := s.maps.ScalarCanvas(filepath.Join(s.dataDir, name), date, field)
	s.writeMap(w, c, n, err)
}

// GET /maps/diff?before=2021-01&after=2021-07&field=SEA_LVL_PRES
func (s *Server) handleDiff(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	field, err := domain.ParseField(q.Get("field"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	before, err := domain.ParsePeriod(q.Get("before"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	after, err := domain.ParsePeriod(q.Get("after"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	c, n, err := s.maps.DiffCanvas(before, after, field)
	s.writeMap(w, c, n, err)
}

// GET /maps/wind?period=2021-01
func (s *Server) handleWind(w http.ResponseWriter, r *http.Request) {
	period, err := domain.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	c, n, err := s.maps.WindCanvas(period)
	s.writeMap(w, c, n, err)
}

func (s *Server) writeMap(w http.ResponseWriter, c *render.Canvas, cells int, err error) {
	if err != nil {
		s.writeError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := c.WritePNG(&buf); err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("X-Map-Cells", strconv.Itoa(cells))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("map request failed", "error", err)
	}
	sharedobs.WriteJSON(w, status, map[string]string{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnknownField),
		errors.Is(err, domain.ErrInvalidPeriod),
		errors.Is(err, errBadFile):
		return http.StatusBadRequest
	case errors.Is(err, table.ErrNoFiles),
		errors.Is(err, fs.ErrNotExist),
		errors.Is(err, render.ErrNoCells):
		return http.StatusNotFound
	case errors.Is(err, table.ErrMissingColumn),
		errors.Is(err, table.ErrBadValue):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
