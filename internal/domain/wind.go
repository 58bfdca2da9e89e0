package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrUnknownAngleUnit is returned for angle units other than Radians and Degrees.
var ErrUnknownAngleUnit = errors.New("unknown angle unit")

// AngleUnit states how WIND_DIR values are handed to the trig functions.
type AngleUnit string

const (
	// Radians passes the raw direction value to cos/sin unchanged. This
	// reproduces the historical maps, which never converted degrees.
	Radians AngleUnit = "radians"
	// Degrees converts the direction from degrees before cos/sin.
	Degrees AngleUnit = "degrees"
)

// ParseAngleUnit converts a configuration value into an AngleUnit.
func ParseAngleUnit(s string) (AngleUnit, error) {
	switch u := AngleUnit(strings.ToLower(strings.TrimSpace(s))); u {
	case Radians, Degrees:
		return u, nil
	}
	return "", fmt.Errorf("%w: %q (want radians or degrees)", ErrUnknownAngleUnit, s)
}

// ToUV derives planar wind components from direction and speed:
// u = cos(90 - dir) * speed, v = sin(90 - dir) * speed.
func ToUV(dir, speed float64, unit AngleUnit) (u, v float64, err error) {
	theta := 90 - dir
	switch unit {
	case Radians:
	case Degrees:
		theta *= math.Pi / 180
	default:
		return 0, 0, fmt.Errorf("%w: %q", ErrUnknownAngleUnit, unit)
	}
	return math.Cos(theta) * speed, math.Sin(theta) * speed, nil
}
