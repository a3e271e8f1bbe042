package core

import (
	"fmt"
	"math"

	"github.com/gridtable/gridtable/schema"
)

// partition accumulates one group-by bucket: the first-seen member row plus
// running sums and valid-value counts per metric.
type partition struct {
	first  Row
	sums   map[string]float64
	counts map[string]int
}

// GroupBy partitions rows by the tuple of values at the given columns and
// folds every metric with the requested aggregation. Each partition emits one
// row carrying the partition's key-column values, the interval of its
// first-seen member, and per metric the sum or arithmetic mean over the
// partition's non-null, non-NaN values; a partition with zero valid values
// for a metric yields null for that metric, never NaN or zero. The resulting
// table's groupings become exactly the given columns.
func (t *Table) GroupBy(columns []string, aggregation schema.Aggregation) (*Table, error) {
	if !aggregation.IsValid() {
		return nil, fmt.Errorf("unsupported aggregation %q", aggregation)
	}

	partitions := make(map[string]*partition)
	var order []string

	for _, row := range t.rows {
		key := row.keyFor(columns)
		p, ok := partitions[key]
		if !ok {
			p = &partition{
				first:  row,
				sums:   make(map[string]float64, len(t.metricOrder)),
				counts: make(map[string]int, len(t.metricOrder)),
			}
			partitions[key] = p
			order = append(order, key)
		}
		for _, metric := range t.metricOrder {
			if value, ok := row.Value(metric).AsNumber(); ok && !math.IsNaN(value) {
				p.sums[metric] += value
				p.counts[metric]++
			}
		}
	}

	rows := make([]Row, 0, len(order))
	for _, key := range order {
		p := partitions[key]
		row := make(Row, len(columns)+len(t.metricOrder)+1)
		row[schema.IntervalColumn] = p.first.Value(schema.IntervalColumn)
		for _, column := range columns {
			row[column] = p.first.Value(column)
		}
		for _, metric := range t.metricOrder {
			row[metric] = foldMetric(aggregation, p.sums[metric], p.counts[metric])
		}
		rows = append(rows, row)
	}

	groupings := make([]string, len(columns))
	copy(groupings, columns)
	return newTable(rows, groupings, t.metrics, t.metricOrder), nil
}

// foldMetric finalizes one metric for one partition. A zero valid-value count
// means the statistic does not exist, which must surface as null.
func foldMetric(aggregation schema.Aggregation, sum float64, count int) Value {
	if count == 0 {
		return Null()
	}
	if aggregation == schema.AggregationMean {
		return Number(sum / float64(count))
	}
	return Number(sum)
}
