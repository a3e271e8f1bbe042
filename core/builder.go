package core

import (
	"sort"

	"github.com/gridtable/gridtable/schema"
)

// rowKey identifies a row during materialization: the reconstructed instant
// plus the encoded grouping-value tuple.
type rowKey struct {
	unixNanos int64
	group     string
}

// BuildTable flattens one or more parallel time series into a single table of
// rows keyed by (timestamp, grouping-key tuple). Series sharing a key at the
// same instant land in the same row, so a price series and a demand series
// for one region merge into one record per interval.
//
// The grouping schema is taken from the first series; all series passed
// together are trusted to share it. Every row in the result carries an entry
// for every metric, with null where a series had no value, and rows come back
// sorted ascending by interval with ties keeping insertion order.
func BuildTable(series []schema.TimeSeries) (*Table, error) {
	if len(series) == 0 {
		return newTable(nil, nil, map[string]string{}, nil), nil
	}

	groupings := groupingColumns(series[0])

	metrics := make(map[string]string, len(series))
	metricOrder := make([]string, 0, len(series))
	for _, s := range series {
		if _, ok := metrics[s.MetricName]; !ok {
			metricOrder = append(metricOrder, s.MetricName)
		}
		metrics[s.MetricName] = s.Unit
	}

	var rows []Row
	rowIndex := make(map[rowKey]int)

	for _, s := range series {
		offset := s.Offset()
		for _, result := range s.Results {
			groupValues := make([]Value, len(groupings))
			for i, column := range groupings {
				groupValues[i] = FromAny(result.Columns[column])
			}
			groupKey := EncodeKey(groupValues)

			for _, point := range result.Data {
				interval, err := ReconstructTime(point.Timestamp, offset)
				if err != nil {
					return nil, err
				}

				key := rowKey{unixNanos: interval.UnixNano(), group: groupKey}
				idx, ok := rowIndex[key]
				if !ok {
					row := make(Row, len(groupings)+len(metricOrder)+1)
					row[schema.IntervalColumn] = Time(interval)
					for i, column := range groupings {
						row[column] = groupValues[i]
					}
					idx = len(rows)
					rows = append(rows, row)
					rowIndex[key] = idx
				}

				if point.Value != nil {
					rows[idx][s.MetricName] = Number(*point.Value)
				} else {
					rows[idx][s.MetricName] = Null()
				}
			}
		}
	}

	// A series that never visited a key leaves that row's metric unset; make
	// the null explicit so every row carries every metric field.
	for _, row := range rows {
		for _, metric := range metricOrder {
			if _, ok := row[metric]; !ok {
				row[metric] = Null()
			}
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, _ := rows[i].Interval()
		b, _ := rows[j].Interval()
		return a.Before(b)
	})

	return newTable(rows, groupings, metrics, metricOrder), nil
}

// groupingColumns derives the grouping-column list from a series: the union
// of column names across its result blocks, sorted for a deterministic table
// schema regardless of JSON map iteration order.
func groupingColumns(s schema.TimeSeries) []string {
	seen := make(map[string]struct{})
	for _, result := range s.Results {
		for column := range result.Columns {
			seen[column] = struct{}{}
		}
	}
	columns := make([]string, 0, len(seen))
	for column := range seen {
		columns = append(columns, column)
	}
	sort.Strings(columns)
	return columns
}
