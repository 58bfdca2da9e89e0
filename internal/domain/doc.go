// Package domain models NOAA NCEI global-marine surface observations and the
// grid products derived from them.
//
// # Data Source
//
// Observations come from the NCEI Access Data Service, dataset "global-marine"
// (ship, buoy, and platform reports). The acquisition step downloads one
// global CSV per sampled day; see [SampleDates] for which days are requested.
//
// # Wire Conventions
//
// Columns kept from the CSV:
//
//	LATITUDE, LONGITUDE   decimal degrees, truncated toward zero to whole degrees
//	AIR_TEMP              tenths of °C on the wire, divided by 10 on load
//	SEA_SURF_TEMP         tenths of °C on the wire, divided by 10 on load
//	SEA_LVL_PRES          tenths of hPa on the wire, divided by 10 on load
//	WIND_DIR              degrees
//	WIND_SPEED            instrument units, used as-is
//
// Empty cells are missing values and are represented as NaN. Missing values
// are only dropped when a field is aggregated, and only for that field.
//
// # Grid Cells
//
// A [Cell] is a whole-degree (latitude, longitude) pair. [Aggregate] groups
// observations by cell and takes the unweighted mean of one [Field].
// [Difference] joins two grids on cells present in both.
//
// # Wind Components
//
// [ToUV] derives planar components as
//
//	u = cos(90 - dir) * speed
//	v = sin(90 - dir) * speed
//
// with the angle unit stated explicitly through [AngleUnit]. Components are
// derived per observation before they are averaged per cell.
package domain
