package ncei

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/marine-obs-maps/internal/domain"
	"github.com/couchcryptid/marine-obs-maps/internal/observability"
)

// DataPath is the Access Data Service endpoint below the base URL.
const DataPath = "/access/services/data/v1"

// GlobalBoundingBox covers the whole globe as north,west,south,east.
const GlobalBoundingBox = "90,-180,-90,180"

// Client downloads daily global-marine CSVs from the NCEI Access Data Service.
type Client struct {
	httpClient *http.Client
	baseURL    string
	clock      clockwork.Clock
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a data service client. A zero timeout means no timeout.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		clock:   clockwork.NewRealClock(),
		metrics: metrics,
		logger:  logger,
	}
}

// DayURL builds the request URL for a single-day global window.
func (c *Client) DayURL(day time.Time) string {
	d := day.Format(domain.DateLayout)
	params := url.Values{
		"dataset":     {"global-marine"},
		"dataType":    {"AIR_TEMP"},
		"startDate":   {d},
		"endDate":     {d},
		"boundingBox": {GlobalBoundingBox},
		"format":      {"csv"},
	}
	return c.baseURL + DataPath + "?" + params.Encode()
}

// FetchDay streams one day of observations into w. The body is copied
// verbatim whatever the status code; the status is returned for the caller
// to report.
func (c *Client) FetchDay(ctx context.Context, day time.Time, w io.Writer) (status int, n int64, err error) {
	start := c.clock.Now()
	defer func() {
		c.metrics.FetchDuration.Observe(c.clock.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.DayURL(day), nil)
	if err != nil {
		return 0, 0, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.FetchRequests.WithLabelValues("error").Inc()
		return 0, 0, fmt.Errorf("fetch %s: %w", day.Format(domain.DateLayout), err)
	}
	defer resp.Body.Close()

	c.metrics.FetchRequests.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()

	n, err = io.Copy(w, resp.Body)
	c.metrics.FetchBytes.Add(float64(n))
	if err != nil {
		return resp.StatusCode, n, fmt.Errorf("read body for %s: %w", day.Format(domain.DateLayout), err)
	}

	c.logger.Debug("day fetched",
		"date", day.Format(domain.DateLayout),
		"status", resp.StatusCode,
		"bytes", n,
		"duration", c.clock.Since(start),
	)
	return resp.StatusCode, n, nil
}
