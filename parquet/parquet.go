// Package parquet exports materialized tables to Parquet files using
// github.com/parquet-go/parquet-go, in a long (tidy) layout with one record
// per metric cell so arbitrary grouping schemas need no fixed file schema.
package parquet

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/gridtable/gridtable/core"
)

// MetricRecord is one metric cell of a table in long form.
type MetricRecord struct {
	// Interval is the row's timestamp (stored as TIMESTAMP with nanosecond precision)
	Interval time.Time `parquet:"interval,snappy"`

	// Groupings is the row's grouping-key tuple as a JSON object
	Groupings string `parquet:"groupings,snappy"`

	// Metric is the metric column name
	Metric string `parquet:"metric,snappy"`

	// Unit is the metric's unit
	Unit string `parquet:"unit,snappy"`

	// Value is the metric value; nil preserves nulls (nullable)
	Value *float64 `parquet:"value,optional,snappy"`
}

// ConvertTable flattens a table into long-form metric records.
func ConvertTable(t *core.Table) ([]MetricRecord, error) {
	groupings := t.Groupings()
	metrics := t.Metrics()

	records := make([]MetricRecord, 0, t.Len()*len(metrics))
	for _, row := range t.Rows() {
		interval, _ := row.Interval()

		groupValues := make(map[string]any, len(groupings))
		for _, column := range groupings {
			groupValues[column] = row.Value(column).AsAny()
		}
		encoded, err := json.Marshal(groupValues)
		if err != nil {
			return nil, fmt.Errorf("failed to encode grouping values: %w", err)
		}

		for _, metric := range t.MetricNames() {
			record := MetricRecord{
				Interval:  interval,
				Groupings: string(encoded),
				Metric:    metric,
				Unit:      metrics[metric],
			}
			if value, ok := row.Value(metric).AsNumber(); ok {
				v := value
				record.Value = &v
			}
			records = append(records, record)
		}
	}
	return records, nil
}

// WriteTableParquet writes a table to a Parquet file at outputPath.
func WriteTableParquet(t *core.Table, outputPath string) error {
	records, err := ConvertTable(t)
	if err != nil {
		return err
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// Schema is inferred from the MetricRecord struct tags.
	writer := parquet.NewGenericWriter[MetricRecord](file)
	if _, err := writer.Write(records); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	return writer.Close()
}
