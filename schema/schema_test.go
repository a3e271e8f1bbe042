package schema

import (
	_ "embed"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//go:embed testdata/energy_series.json
var energySeriesFixture []byte

func TestTimeSeriesDecoding(t *testing.T) {
	var series TimeSeries
	require.NoError(t, json.Unmarshal(energySeriesFixture, &series))

	assert.Equal(t, "energy", series.MetricName)
	assert.Equal(t, "MWh", series.Unit)
	assert.Equal(t, "NEM", series.NetworkCode)
	assert.Equal(t, "1d", series.Interval)
	assert.Equal(t, "+10:00", series.UTCOffset)
	require.Len(t, series.Results, 2)

	first := series.Results[0]
	assert.Equal(t, "nsw1.non_renewable", first.Name)
	assert.Equal(t, "NSW1", first.Columns["network_region"])
	assert.Equal(t, false, first.Columns["renewable"])
	require.Len(t, first.Data, 3)

	assert.Equal(t, "2024-01-01T00:00:00", first.Data[0].Timestamp)
	require.NotNil(t, first.Data[0].Value)
	assert.InDelta(t, 152436.55, *first.Data[0].Value, 1e-9)

	assert.Nil(t, first.Data[2].Value, "null data points decode to nil values")
}

func TestDataPointRoundTrip(t *testing.T) {
	value := 85.5
	point := DataPoint{Timestamp: "2024-01-01T00:00:00", Value: &value}

	encoded, err := json.Marshal(point)
	require.NoError(t, err)
	assert.JSONEq(t, `["2024-01-01T00:00:00", 85.5]`, string(encoded))

	var decoded DataPoint
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	assert.Equal(t, point.Timestamp, decoded.Timestamp)
	require.NotNil(t, decoded.Value)
	assert.InDelta(t, value, *decoded.Value, 1e-9)
}

func TestDataPointDecodingErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "not an array", raw: `{"time": 1}`},
		{name: "wrong length", raw: `["2024-01-01T00:00:00"]`},
		{name: "non-string timestamp", raw: `[42, 1.5]`},
		{name: "non-numeric value", raw: `["2024-01-01T00:00:00", "high"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var point DataPoint
			assert.Error(t, json.Unmarshal([]byte(tt.raw), &point))
		})
	}
}

func TestTimeSeriesOffset(t *testing.T) {
	explicit := TimeSeries{NetworkCode: "WEM", UTCOffset: "+10:00"}
	assert.Equal(t, "+10:00", explicit.Offset(), "explicit payload offset wins")

	derived := TimeSeries{NetworkCode: "WEM"}
	assert.Equal(t, "+08:00", derived.Offset())

	unknown := TimeSeries{NetworkCode: "XX"}
	assert.Equal(t, DefaultUTCOffset, unknown.Offset())
}
