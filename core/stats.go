package core

import (
	"math"
	"sort"
)

// Stats summarizes the non-null, non-NaN values of one numeric column.
// Std is the population standard deviation (divide by count, not count-1);
// quantiles use the nearest-rank method, values[floor(count*q)] over the
// ascending-sorted values.
type Stats struct {
	Count  int
	Mean   float64
	Std    float64
	Min    float64
	Q25    float64
	Median float64
	Q75    float64
	Max    float64
}

// Describe computes summary statistics for every column that is numeric on
// the first row. Columns with zero valid values are omitted entirely, so an
// empty table yields an empty result map.
func (t *Table) Describe() map[string]Stats {
	result := make(map[string]Stats)
	if len(t.rows) == 0 {
		return result
	}

	for _, column := range t.Columns() {
		if t.rows[0].Value(column).Kind() != KindNumber {
			continue
		}
		values := t.validNumbers(column)
		if len(values) == 0 {
			continue
		}
		result[column] = describeValues(values)
	}
	return result
}

// validNumbers collects a column's numeric values, excluding nulls and NaNs.
func (t *Table) validNumbers(column string) []float64 {
	values := make([]float64, 0, len(t.rows))
	for _, row := range t.rows {
		if v, ok := row.Value(column).AsNumber(); ok && !math.IsNaN(v) {
			values = append(values, v)
		}
	}
	return values
}

// describeValues computes Stats over a non-empty value slice.
func describeValues(values []float64) Stats {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	count := len(sorted)
	var sum float64
	for _, v := range sorted {
		sum += v
	}
	mean := sum / float64(count)

	var sqDiff float64
	for _, v := range sorted {
		d := v - mean
		sqDiff += d * d
	}

	return Stats{
		Count:  count,
		Mean:   mean,
		Std:    math.Sqrt(sqDiff / float64(count)),
		Min:    sorted[0],
		Q25:    nearestRank(sorted, 0.25),
		Median: nearestRank(sorted, 0.5),
		Q75:    nearestRank(sorted, 0.75),
		Max:    sorted[count-1],
	}
}

// nearestRank returns the value at index floor(count*q) of the sorted slice.
func nearestRank(sorted []float64, q float64) float64 {
	idx := int(math.Floor(float64(len(sorted)) * q))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
