package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/marine-obs-maps/internal/domain"
)

// Profile overrides rendering defaults. It is loaded from the YAML file
// named by RENDER_PROFILE:
//
//	width: 10   # inches
//	height: 5
//	basemap: ne_110m_land.geojson
//	fields:
//	  AIR_TEMP:
//	    range: [-5, 30]
//	    diff_range: 2
type Profile struct {
	Width   float64                  `yaml:"width"`
	Height  float64                  `yaml:"height"`
	Basemap string                   `yaml:"basemap"` // GeoJSON land/coastline file; relative to the profile
	Fields  map[string]FieldOverride `yaml:"fields"`

	fields map[domain.Field]FieldOverride
}

// FieldOverride replaces the color scale bounds of one field.
type FieldOverride struct {
	Range     []float64 `yaml:"range"`
	DiffRange float64   `yaml:"diff_range"`
}

// LoadProfile reads a render profile. An empty path yields an empty profile.
func LoadProfile(path string) (*Profile, error) {
	p := &Profile{}
	if path == "" {
		return p, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open render profile: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(p); err != nil {
		return nil, fmt.Errorf("decode render profile %s: %w", path, err)
	}
	if err := p.validate(); err != nil {
		return nil, fmt.Errorf("render profile %s: %w", path, err)
	}
	if p.Basemap != "" && !filepath.IsAbs(p.Basemap) {
		p.Basemap = filepath.Join(filepath.Dir(path), p.Basemap)
	}
	return p, nil
}

func (p *Profile) validate() error {
	if p.Width < 0 || p.Height < 0 {
		return errors.New("width and height must not be negative")
	}
	p.fields = make(map[domain.Field]FieldOverride, len(p.Fields))
	for name, o := range p.Fields {
		f, err := domain.ParseField(name)
		if err != nil {
			return err
		}
		if o.Range != nil && (len(o.Range) != 2 || o.Range[0] >= o.Range[1]) {
			return fmt.Errorf("%s: range must be [min, max] with min < max", f)
		}
		if o.DiffRange < 0 {
			return fmt.Errorf("%s: diff_range must not be negative", f)
		}
		p.fields[f] = o
	}
	return nil
}

// Meta returns the display settings of f with any overrides applied.
func (p *Profile) Meta(f domain.Field) (domain.FieldMeta, error) {
	m, err := f.Meta()
	if err != nil {
		return domain.FieldMeta{}, err
	}
	o, ok := p.fields[f]
	if !ok {
		return m, nil
	}
	if len(o.Range) == 2 {
		m.Min, m.Max = o.Range[0], o.Range[1]
	}
	if o.DiffRange > 0 {
		m.DiffMax = o.DiffRange
	}
	return m, nil
}
