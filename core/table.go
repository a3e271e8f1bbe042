package core

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"

	"github.com/gridtable/gridtable/schema"
)

// ErrEmptyTable is returned by operations that are undefined on a table with
// no rows, such as LatestTimestamp.
var ErrEmptyTable = errors.New("table has no rows")

// colIndexCacheSize bounds the per-column value index memo.
const colIndexCacheSize = 16

// Table is the queryable container for materialized rows. It is an immutable
// value object: every operation returns a new Table and never mutates the
// receiver, so concurrent reads of one Table are safe. Derived lookup indexes
// are private memos and never observable; two tables with the same rows,
// groupings and metrics are equivalent regardless of memo state.
type Table struct {
	rows        []Row
	groupings   []string
	metrics     map[string]string // metric name -> unit
	metricOrder []string

	mu       sync.Mutex
	latest   *time.Time
	colIndex *lru.Cache // column name -> map[encoded value][]row index
}

// NewTable assembles a table from already materialized rows. Metric columns
// are ordered alphabetically; use BuildTable for series payloads, which keeps
// series order.
func NewTable(rows []Row, groupings []string, metrics map[string]string) *Table {
	order := make([]string, 0, len(metrics))
	for name := range metrics {
		order = append(order, name)
	}
	sort.Strings(order)
	return newTable(rows, groupings, metrics, order)
}

func newTable(rows []Row, groupings []string, metrics map[string]string, metricOrder []string) *Table {
	cache, _ := lru.New(colIndexCacheSize)
	return &Table{
		rows:        rows,
		groupings:   groupings,
		metrics:     metrics,
		metricOrder: metricOrder,
		colIndex:    cache,
	}
}

// derive builds a new table around different rows, keeping the receiver's
// groupings and metrics. Memos are never carried over.
func (t *Table) derive(rows []Row) *Table {
	return newTable(rows, t.groupings, t.metrics, t.metricOrder)
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Rows returns the underlying rows. The slice and its rows are shared with
// the table and must be treated as read-only.
func (t *Table) Rows() []Row { return t.rows }

// Row returns the row at index i.
func (t *Table) Row(i int) Row { return t.rows[i] }

// Groupings returns the active grouping-column list, ordered by the last
// group-by (or the original series grouping set).
func (t *Table) Groupings() []string {
	out := make([]string, len(t.groupings))
	copy(out, t.groupings)
	return out
}

// Metrics returns the metric name to unit map.
func (t *Table) Metrics() map[string]string {
	out := make(map[string]string, len(t.metrics))
	for name, unit := range t.metrics {
		out[name] = unit
	}
	return out
}

// MetricNames returns the metric columns in table order.
func (t *Table) MetricNames() []string {
	out := make([]string, len(t.metricOrder))
	copy(out, t.metricOrder)
	return out
}

// Columns returns all column names in table order: interval first, then
// grouping columns, then metrics.
func (t *Table) Columns() []string {
	out := make([]string, 0, 1+len(t.groupings)+len(t.metricOrder))
	out = append(out, schema.IntervalColumn)
	out = append(out, t.groupings...)
	out = append(out, t.metricOrder...)
	return out
}

// Filter returns a new table holding the rows for which the predicate holds.
func (t *Table) Filter(predicate func(Row) bool) *Table {
	filtered := make([]Row, 0, len(t.rows))
	for _, row := range t.rows {
		if predicate(row) {
			filtered = append(filtered, row)
		}
	}
	return t.derive(filtered)
}

// FilterEqual returns a new table holding the rows whose cell in the given
// column equals value. Repeated calls on the same column reuse a memoized
// value index, which makes interactive drill-downs on tens of thousands of
// rows cheap.
func (t *Table) FilterEqual(column string, value Value) *Table {
	index := t.indexForColumn(column)
	matches := index[value.Encode()]
	filtered := make([]Row, 0, len(matches))
	for _, i := range matches {
		filtered = append(filtered, t.rows[i])
	}
	return t.derive(filtered)
}

// indexForColumn returns the encoded-value index for a column, building and
// memoizing it on first use.
func (t *Table) indexForColumn(column string) map[string][]int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if cached, ok := t.colIndex.Get(column); ok {
		return cached.(map[string][]int)
	}
	index := make(map[string][]int)
	for i, row := range t.rows {
		key := row.Value(column).Encode()
		index[key] = append(index[key], i)
	}
	t.colIndex.Add(column, index)
	return index
}

// Select projects each row to interval plus only the named columns. The new
// table's groupings are the intersection of the requested columns with the
// prior groupings, in the prior groupings' order; the metric map is pruned to
// the requested metric names. Unknown columns are ignored.
func (t *Table) Select(columns []string) *Table {
	requested := make(map[string]bool, len(columns))
	for _, column := range columns {
		requested[column] = true
	}

	newGroupings := make([]string, 0, len(t.groupings))
	for _, g := range t.groupings {
		if requested[g] {
			newGroupings = append(newGroupings, g)
		}
	}

	newMetrics := make(map[string]string)
	newOrder := make([]string, 0, len(t.metricOrder))
	for _, name := range t.metricOrder {
		if requested[name] {
			newMetrics[name] = t.metrics[name]
			newOrder = append(newOrder, name)
		}
	}

	kept := make([]string, 0, len(newGroupings)+len(newOrder))
	kept = append(kept, newGroupings...)
	kept = append(kept, newOrder...)

	rows := make([]Row, len(t.rows))
	for i, row := range t.rows {
		projected := make(Row, len(kept)+1)
		projected[schema.IntervalColumn] = row.Value(schema.IntervalColumn)
		for _, column := range kept {
			projected[column] = row.Value(column)
		}
		rows[i] = projected
	}

	return newTable(rows, newGroupings, newMetrics, newOrder)
}

// SortBy returns a new table with rows ordered by the given columns. Columns
// are compared in order and the first non-equal comparison decides; null
// sorts first ascending and last descending. Rows that compare equal on all
// columns keep no particular relative order.
func (t *Table) SortBy(columns []string, ascending bool) *Table {
	rows := make([]Row, len(t.rows))
	copy(rows, t.rows)

	sort.Slice(rows, func(i, j int) bool {
		for _, column := range columns {
			cmp := rows[i].Value(column).Compare(rows[j].Value(column))
			if cmp == 0 {
				continue
			}
			if ascending {
				return cmp < 0
			}
			return cmp > 0
		}
		return false
	})

	return t.derive(rows)
}

// LatestTimestamp returns the maximum interval across all rows. Calling it on
// an empty table is a precondition violation and yields ErrEmptyTable.
func (t *Table) LatestTimestamp() (time.Time, error) {
	if len(t.rows) == 0 {
		return time.Time{}, ErrEmptyTable
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.latest != nil {
		return *t.latest, nil
	}

	var latest time.Time
	for _, row := range t.rows {
		if interval, ok := row.Interval(); ok && interval.After(latest) {
			latest = interval
		}
	}
	t.latest = &latest
	return latest, nil
}

// Unit returns the unit for a metric column, or an error for unknown metrics.
func (t *Table) Unit(metric string) (string, error) {
	unit, ok := t.metrics[metric]
	if !ok {
		return "", fmt.Errorf("unknown metric %q", metric)
	}
	return unit, nil
}
