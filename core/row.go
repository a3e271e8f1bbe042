package core

import (
	"time"

	"github.com/gridtable/gridtable/schema"
)

// Row is one (timestamp, grouping-key tuple) record in the unified table. It
// always carries the interval column, every grouping column of its table, and
// an entry (possibly null) for every metric of its table.
type Row map[string]Value

// Value returns the cell for a column, or null when the row has no such
// column.
func (r Row) Value(column string) Value {
	if v, ok := r[column]; ok {
		return v
	}
	return Null()
}

// Interval returns the row's timestamp, with ok false if the interval cell is
// missing or not a timestamp.
func (r Row) Interval() (time.Time, bool) {
	return r.Value(schema.IntervalColumn).AsTime()
}

// keyFor builds the row's composite key over the given columns. Missing
// columns contribute null, keeping keys aligned across sparse rows.
func (r Row) keyFor(columns []string) string {
	values := make([]Value, len(columns))
	for i, column := range columns {
		values[i] = r.Value(column)
	}
	return EncodeKey(values)
}
