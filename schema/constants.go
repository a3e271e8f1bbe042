package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of rendered output.
	OutputMode string

	// Aggregation represents how metric values are folded in a group-by.
	Aggregation string

	// StoreBackend represents the database backend for the table store.
	StoreBackend string
)

// All output modes supported.
const (
	TextOut OutputMode = "text" // default
	CSVOut  OutputMode = "csv"
	JSONOut OutputMode = "json"
)

// All group-by aggregations supported.
const (
	AggregationSum  Aggregation = "sum"
	AggregationMean Aggregation = "mean"
)

// IsValid reports whether the aggregation is one of the supported ones.
func (a Aggregation) IsValid() bool {
	return a == AggregationSum || a == AggregationMean
}

// All table store backends supported.
const (
	SQLiteBackend     StoreBackend = "sqlite" // default
	MySQLBackend      StoreBackend = "mysql"
	PostgreSQLBackend StoreBackend = "postgresql"
	NoneBackend       StoreBackend = "none"
)

// Default values for configuration.
const (
	DefaultPrecision = 2
	MaxCellWidth     = 40
)

// IntervalColumn is the reserved column name carrying each row's timestamp.
const IntervalColumn = "interval"
