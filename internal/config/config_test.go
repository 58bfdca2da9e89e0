package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/marine-obs-maps/internal/domain"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://www.ncei.noaa.gov", cfg.NCEIBaseURL)
	assert.Equal(t, time.Duration(0), cfg.NCEITimeout)
	assert.Equal(t, ".", cfg.DownloadDir)
	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, ".", cfg.OutputDir)
	assert.Equal(t, domain.Radians, cfg.WindAngleUnit)
	assert.Empty(t, cfg.RenderProfile)
	assert.Empty(t, cfg.MetricsFile)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.False(t, cfg.KafkaEnabled())
	assert.Equal(t, "marine-map-artifacts", cfg.KafkaArtifactTopic)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("NCEI_BASE_URL", "http://localhost:9000")
	t.Setenv("NCEI_TIMEOUT", "45s")
	t.Setenv("DOWNLOAD_DIR", "/tmp/raw")
	t.Setenv("DATA_DIR", "/tmp/data")
	t.Setenv("OUTPUT_DIR", "/tmp/maps")
	t.Setenv("WIND_ANGLE_UNIT", "degrees")
	t.Setenv("RENDER_PROFILE", "profile.yaml")
	t.Setenv("METRICS_FILE", "/tmp/marinemap.prom")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("KAFKA_BROKERS", "broker1:9092, broker2:9092")
	t.Setenv("KAFKA_ARTIFACT_TOPIC", "maps")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9000", cfg.NCEIBaseURL)
	assert.Equal(t, 45*time.Second, cfg.NCEITimeout)
	assert.Equal(t, "/tmp/raw", cfg.DownloadDir)
	assert.Equal(t, "/tmp/data", cfg.DataDir)
	assert.Equal(t, "/tmp/maps", cfg.OutputDir)
	assert.Equal(t, domain.Degrees, cfg.WindAngleUnit)
	assert.Equal(t, "profile.yaml", cfg.RenderProfile)
	assert.Equal(t, "/tmp/marinemap.prom", cfg.MetricsFile)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.KafkaEnabled())
	assert.Equal(t, "maps", cfg.KafkaArtifactTopic)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{"bad timeout", "NCEI_TIMEOUT", "soon", "NCEI_TIMEOUT"},
		{"negative timeout", "NCEI_TIMEOUT", "-1s", "NCEI_TIMEOUT"},
		{"bad angle unit", "WIND_ANGLE_UNIT", "gradians", "WIND_ANGLE_UNIT"},
		{"relative base url", "NCEI_BASE_URL", "ncei.noaa.gov", "NCEI_BASE_URL"},
		{"bad shutdown timeout", "SHUTDOWN_TIMEOUT", "0s", "SHUTDOWN_TIMEOUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func writeProfile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadProfile_Empty(t *testing.T) {
	p, err := LoadProfile("")
	require.NoError(t, err)

	m, err := p.Meta(domain.FieldAirTemp)
	require.NoError(t, err)
	assert.Equal(t, -10.0, m.Min)
	assert.Equal(t, 35.0, m.Max)
}

func TestLoadProfile_Overrides(t *testing.T) {
	path := writeProfile(t, `
width: 12
height: 6
fields:
  SEA_LVL_PRES:
    range: [980, 1030]
    diff_range: 15
  air_temp:
    diff_range: 5
`)
	p, err := LoadProfile(path)
	require.NoError(t, err)
	assert.Equal(t, 12.0, p.Width)
	assert.Equal(t, 6.0, p.Height)

	pres, err := p.Meta(domain.FieldSeaLvlPres)
	require.NoError(t, err)
	assert.Equal(t, 980.0, pres.Min)
	assert.Equal(t, 1030.0, pres.Max)
	assert.Equal(t, 15.0, pres.DiffMax)
	assert.Equal(t, "Pressure (hPa_millibars)", pres.Title)

	air, err := p.Meta(domain.FieldAirTemp)
	require.NoError(t, err)
	assert.Equal(t, -10.0, air.Min)
	assert.Equal(t, 5.0, air.DiffMax)

	sst, err := p.Meta(domain.FieldSeaSurfTemp)
	require.NoError(t, err)
	assert.Equal(t, 3.0, sst.DiffMax)
}

func TestLoadProfile_Rejects(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown field", "fields:\n  WIND_SPEED:\n    diff_range: 1\n"},
		{"unknown key", "dpi: 300\n"},
		{"inverted range", "fields:\n  AIR_TEMP:\n    range: [10, 0]\n"},
		{"short range", "fields:\n  AIR_TEMP:\n    range: [10]\n"},
		{"negative size", "width: -1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadProfile(writeProfile(t, tt.body))
			require.Error(t, err)
		})
	}
}

func TestLoadProfile_BasemapRelativeToProfile(t *testing.T) {
	path := writeProfile(t, "basemap: land.geojson\n")
	p, err := LoadProfile(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "land.geojson"), p.Basemap)

	abs := filepath.Join(t.TempDir(), "coast.geojson")
	p, err = LoadProfile(writeProfile(t, "basemap: "+abs+"\n"))
	require.NoError(t, err)
	assert.Equal(t, abs, p.Basemap)
}

func TestLoadProfile_MissingFile(t *testing.T) {
	_, err := LoadProfile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
