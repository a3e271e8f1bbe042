// Package schema has payload models, network definitions and shared constants
// for all parts of gridtable.
package schema

import (
	"encoding/json"
	"fmt"
)

// TimeSeries is one metric's complete time-series payload as returned by the
// market data API. Each series carries its own unit and one result block per
// distinct combination of grouping-key values.
type TimeSeries struct {
	MetricName  string         `json:"metric_name"`  // e.g. "energy", "price", "demand"
	Unit        string         `json:"unit"`         // e.g. "MWh", "$/MWh"
	NetworkCode string         `json:"network_code"` // e.g. "NEM", "WEM"
	Interval    string         `json:"interval"`     // e.g. "5m", "1h", "1d"
	UTCOffset   string         `json:"utc_offset"`   // e.g. "+10:00"
	Results     []SeriesResult `json:"results"`
}

// Offset returns the UTC offset to interpret this series' timestamps with.
// An explicit utc_offset on the payload wins; otherwise the network's fixed
// offset is used.
func (s TimeSeries) Offset() string {
	if s.UTCOffset != "" {
		return s.UTCOffset
	}
	return NetworkCode(s.NetworkCode).UTCOffset()
}

// SeriesResult is the data for one fixed combination of grouping-key values
// within a series, e.g. {network_region: "NSW1", renewable: false}.
type SeriesResult struct {
	Name    string         `json:"name"`
	Columns map[string]any `json:"columns"`
	Data    []DataPoint    `json:"data"`
}

// DataPoint is a single (timestamp, value) pair. The API emits these as
// two-element JSON arrays, with null standing in for a missing value.
type DataPoint struct {
	Timestamp string
	Value     *float64
}

// UnmarshalJSON decodes a data point from its wire form, a two-element
// [timestamp, value] array.
func (p *DataPoint) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("data point is not a JSON array: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("data point must be a [timestamp, value] pair, got %d elements", len(pair))
	}
	if err := json.Unmarshal(pair[0], &p.Timestamp); err != nil {
		return fmt.Errorf("data point timestamp is not a string: %w", err)
	}
	if err := json.Unmarshal(pair[1], &p.Value); err != nil {
		return fmt.Errorf("data point value is not a number or null: %w", err)
	}
	return nil
}

// MarshalJSON encodes a data point back to its two-element array wire form.
func (p DataPoint) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{p.Timestamp, p.Value})
}
