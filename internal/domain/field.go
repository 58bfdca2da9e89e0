package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownField is returned for any field name outside the scalar set.
var ErrUnknownField = errors.New("unknown field")

// Field selects one of the scalar measurements that can be mapped.
type Field string

const (
	FieldAirTemp     Field = "AIR_TEMP"
	FieldSeaSurfTemp Field = "SEA_SURF_TEMP"
	FieldSeaLvlPres  Field = "SEA_LVL_PRES"
)

// Fields lists every mappable field in display order.
func Fields() []Field {
	return []Field{FieldAirTemp, FieldSeaSurfTemp, FieldSeaLvlPres}
}

// FieldMeta holds the display settings of a field.
type FieldMeta struct {
	Title   string
	Min     float64 // color scale lower bound
	Max     float64 // color scale upper bound
	DiffMax float64 // difference maps span [-DiffMax, DiffMax]
}

// ParseField converts a column name into a Field.
func ParseField(s string) (Field, error) {
	f := Field(strings.ToUpper(strings.TrimSpace(s)))
	if _, err := f.Meta(); err != nil {
		return "", unknownField(s)
	}
	return f, nil
}

// Meta returns the fixed display settings of f.
func (f Field) Meta() (FieldMeta, error) {
	switch f {
	case FieldAirTemp:
		return FieldMeta{Title: "Air Temperature (C)", Min: -10, Max: 35, DiffMax: 3}, nil
	case FieldSeaSurfTemp:
		return FieldMeta{Title: "Sea Surface Temperature (C)", Min: 3, Max: 33, DiffMax: 3}, nil
	case FieldSeaLvlPres:
		return FieldMeta{Title: "Pressure (hPa_millibars)", Min: 960, Max: 1040, DiffMax: 20}, nil
	}
	return FieldMeta{}, unknownField(string(f))
}

func (f Field) String() string { return string(f) }

func unknownField(s string) error {
	return fmt.Errorf("%w: %q (want one of AIR_TEMP, SEA_SURF_TEMP, SEA_LVL_PRES)", ErrUnknownField, s)
}
