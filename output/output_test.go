package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridtable/gridtable/core"
	"github.com/gridtable/gridtable/schema"
)

func sampleTable() *core.Table {
	interval := time.Date(2024, 1, 1, 0, 0, 0, 0, time.FixedZone("", 10*3600))
	rows := []core.Row{
		{
			schema.IntervalColumn: core.Time(interval),
			"network_region":      core.String("NSW1"),
			"price":               core.Number(85.5),
		},
		{
			schema.IntervalColumn: core.Time(interval.Add(5 * time.Minute)),
			"network_region":      core.String("QLD1"),
			"price":               core.Null(),
		},
	}
	return core.NewTable(rows, []string{"network_region"}, map[string]string{"price": "$/MWh"})
}

func TestWriteCSVTable(t *testing.T) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	require.NoError(t, writeCSVTable(w, sampleTable(), Options{Precision: 2}))
	w.Flush()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "interval,network_region,price", lines[0])
	assert.Contains(t, lines[1], "NSW1")
	assert.Contains(t, lines[1], "85.50")
	assert.Contains(t, lines[2], ",-", "null cells render as a dash")
}

func TestWriteJSONTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSONTable(&buf, sampleTable()))

	var decoded struct {
		Groupings []string          `json:"groupings"`
		Metrics   map[string]string `json:"metrics"`
		Rows      []map[string]any  `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	assert.Equal(t, []string{"network_region"}, decoded.Groupings)
	assert.Equal(t, map[string]string{"price": "$/MWh"}, decoded.Metrics)
	require.Len(t, decoded.Rows, 2)
	assert.Equal(t, "NSW1", decoded.Rows[0]["network_region"])
	assert.InDelta(t, 85.5, decoded.Rows[0]["price"].(float64), 1e-9)
	assert.Nil(t, decoded.Rows[1]["price"], "null cells stay JSON null")
}

func TestFormatCell(t *testing.T) {
	assert.Equal(t, "-", formatCell(core.Null(), 2))
	assert.Equal(t, "85.50", formatCell(core.Number(85.5), 2))
	assert.Equal(t, "86", formatCell(core.Number(85.5), 0))
	assert.Equal(t, "NSW1", formatCell(core.String("NSW1"), 2))
	assert.Equal(t, "true", formatCell(core.Bool(true), 2))
}

func TestHeaderFor(t *testing.T) {
	table := sampleTable()
	assert.Equal(t, "price ($/MWh)", headerFor(table, "price"))
	assert.Equal(t, "network_region", headerFor(table, "network_region"))
	assert.Equal(t, "interval", headerFor(table, "interval"))
}

func TestTruncateCell(t *testing.T) {
	assert.Equal(t, "short", truncateCell("short", 10))
	assert.Equal(t, "exactly10!", truncateCell("exactly10!", 10))
	assert.Equal(t, "this is...", truncateCell("this is too long", 10))
}

func TestMaxCellWidth(t *testing.T) {
	assert.Equal(t, schema.MaxCellWidth, maxCellWidth(Options{Width: 400}, 4))
	assert.Equal(t, minCellWidth, maxCellWidth(Options{Width: 20}, 4))
}
