package forecast

import (
	"slices"
	"time"
)

// Value is an optional number on a merged axis. Valid is false where a region
// has no point at that timestamp.
type Value struct {
	V     float64
	Valid bool
}

// AxisRow holds, for one timestamp, every region's historical and forecast
// value. Slices are indexed like Axis.Regions.
type AxisRow struct {
	At         time.Time
	Historical []Value
	Forecast   []Value
}

// Axis is a set of region series aligned on the union of their timestamps.
type Axis struct {
	Regions []string
	Rows    []AxisRow
}

// MergeAxis aligns several region series on one ascending time axis. The
// historical and forecast value of each region are looked up independently.
func MergeAxis(series []RegionSeries) Axis {
	axis := Axis{Regions: make([]string, len(series))}

	type cell struct {
		hist, fc Value
	}
	byRegion := make([]map[int64]cell, len(series))
	seen := make(map[int64]time.Time)

	for i, rs := range series {
		axis.Regions[i] = rs.Region
		m := make(map[int64]cell, len(rs.Series))
		for _, p := range rs.Series {
			key := p.At.UnixNano()
			seen[key] = p.At
			c := m[key]
			if p.IsForecast() {
				c.fc = Value{V: p.Value, Valid: true}
			} else {
				c.hist = Value{V: p.Value, Valid: true}
			}
			m[key] = c
		}
		byRegion[i] = m
	}

	keys := make([]int64, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	axis.Rows = make([]AxisRow, len(keys))
	for r, key := range keys {
		row := AxisRow{
			At:         seen[key],
			Historical: make([]Value, len(series)),
			Forecast:   make([]Value, len(series)),
		}
		for i := range series {
			c := byRegion[i][key]
			row.Historical[i] = c.hist
			row.Forecast[i] = c.fc
		}
		axis.Rows[r] = row
	}
	return axis
}

// Column returns one region's values along the axis, preferring the forecast
// value where both exist. ok is false if the region is not on the axis.
func (a Axis) Column(region string) (vals []Value, ok bool) {
	idx := slices.Index(a.Regions, region)
	if idx < 0 {
		return nil, false
	}
	vals = make([]Value, len(a.Rows))
	for i, row := range a.Rows {
		if row.Forecast[idx].Valid {
			vals[i] = row.Forecast[idx]
		} else {
			vals[i] = row.Historical[idx]
		}
	}
	return vals, true
}
