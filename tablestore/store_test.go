package tablestore

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridtable/gridtable/core"
	"github.com/gridtable/gridtable/schema"
)

func storedTable() *core.Table {
	interval := time.Date(2024, 1, 1, 0, 0, 0, 0, time.FixedZone("", 10*3600))
	rows := []core.Row{
		{
			schema.IntervalColumn: core.Time(interval),
			"network_region":      core.String("NSW1"),
			"renewable":           core.Bool(false),
			"energy":              core.Number(152436.55),
		},
		{
			schema.IntervalColumn: core.Time(interval.Add(5 * time.Minute)),
			"network_region":      core.String("QLD1"),
			"renewable":           core.Bool(true),
			"energy":              core.Null(),
		},
	}
	return core.NewTable(rows, []string{"network_region", "renewable"},
		map[string]string{"energy": "MWh"})
}

func TestStore_SQLiteRoundTrip(t *testing.T) {
	// Use in-memory SQLite for testing
	store, err := New(schema.SQLiteBackend, ":memory:", nil)
	require.NoError(t, err)
	require.NotNil(t, store)
	defer func() { _ = store.Close() }()

	original := storedTable()
	require.NoError(t, store.Save("energy", original))

	loaded, err := store.Load("energy")
	require.NoError(t, err)

	assert.Equal(t, original.Len(), loaded.Len())
	assert.Equal(t, original.Groupings(), loaded.Groupings())
	assert.Equal(t, original.Metrics(), loaded.Metrics())

	for i, want := range original.Rows() {
		got := loaded.Row(i)
		for _, column := range original.Columns() {
			assert.Zero(t, want.Value(column).Compare(got.Value(column)),
				"cell %q of row %d should round trip", column, i)
		}
	}

	// Null cells survive the round trip as nulls
	assert.True(t, loaded.Row(1).Value("energy").IsNull())
}

func TestStore_SaveReplacesExisting(t *testing.T) {
	store, err := New(schema.SQLiteBackend, ":memory:", nil)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	original := storedTable()
	require.NoError(t, store.Save("energy", original))

	// Saving a smaller table under the same name replaces the old rows.
	smaller := original.Filter(func(r core.Row) bool {
		region, _ := r.Value("network_region").AsString()
		return region == "NSW1"
	})
	require.NoError(t, store.Save("energy", smaller))

	loaded, err := store.Load("energy")
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Len())
}

func TestStore_ListAndDelete(t *testing.T) {
	store, err := New(schema.SQLiteBackend, ":memory:", nil)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	table := storedTable()
	require.NoError(t, store.Save("energy", table))
	require.NoError(t, store.Save("demand", table))

	names, err := store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"demand", "energy"}, names, "names should come back sorted")

	require.NoError(t, store.Delete("demand"))

	names, err = store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"energy"}, names)

	_, err = store.Load("demand")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no saved table")
}

func TestStore_LoadUnknownTable(t *testing.T) {
	store, err := New(schema.SQLiteBackend, ":memory:", nil)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	_, err = store.Load("missing")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no saved table")
}

func TestStore_EmptyTable(t *testing.T) {
	store, err := New(schema.SQLiteBackend, ":memory:", nil)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	require.NoError(t, store.Save("empty", core.NewTable(nil, nil, nil)))

	loaded, err := store.Load("empty")
	require.NoError(t, err)
	assert.Equal(t, 0, loaded.Len())
	assert.Empty(t, loaded.Groupings())
	assert.Empty(t, loaded.Metrics())
}

func TestStore_FilePersistence(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "gridtable.db")

	store, err := New(schema.SQLiteBackend, dbPath, nil)
	require.NoError(t, err)
	require.NoError(t, store.Save("energy", storedTable()))
	require.NoError(t, store.Close())

	// Reopening the same file sees the saved table.
	reopened, err := New(schema.SQLiteBackend, dbPath, nil)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	loaded, err := reopened.Load("energy")
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Len())
}

func TestStore_UnsupportedBackend(t *testing.T) {
	_, err := New(schema.NoneBackend, "", nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported store backend")
}

func TestStore_SQLiteRequiresPath(t *testing.T) {
	_, err := New(schema.SQLiteBackend, "", nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "requires a database file path")
}

func TestRebind(t *testing.T) {
	pg := &Store{backend: schema.PostgreSQLBackend}
	assert.Equal(t,
		"INSERT INTO gridtable_tables (name) VALUES ($1, $2)",
		pg.rebind("INSERT INTO gridtable_tables (name) VALUES (?, ?)"))

	lite := &Store{backend: schema.SQLiteBackend}
	assert.Equal(t, "SELECT 1 WHERE a = ?", lite.rebind("SELECT 1 WHERE a = ?"))
}
