// Package tablestore persists materialized tables to a local or shared SQL
// database, so interactive sessions can reload query results without going
// back to the API. Cells are stored in long form using the core value
// encoding, which keeps arbitrary grouping schemas out of the SQL schema.
package tablestore

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"   // MySQL driver
	_ "github.com/jackc/pgx/v5/stdlib"   // PostgreSQL driver
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/gridtable/gridtable/core"
	"github.com/gridtable/gridtable/schema"
)

// Store handles durable table storage over one of the supported database
// backends: SQLite (default, file-based), MySQL or PostgreSQL.
type Store struct {
	db      *sql.DB
	backend schema.StoreBackend
	logger  *logrus.Logger
}

// New opens a store on the given backend and migrates its schema to the
// latest version. For SQLite the connection string is the database file path;
// for MySQL use "user:password@tcp(host:port)/dbname?multiStatements=true"
// (migrations run multiple statements per version) and for PostgreSQL
// "host=... port=... user=... dbname=...". A nil logger falls back to the
// standard logger.
func New(backend schema.StoreBackend, connStr string, logger *logrus.Logger) (*Store, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	db, err := openDatabase(backend, connStr)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s store: %w", backend, err)
	}
	if err := ensureSchema(db, backend); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db, backend: backend, logger: logger}, nil
}

// openDatabase opens a database handle for the backend without touching the
// schema.
func openDatabase(backend schema.StoreBackend, connStr string) (*sql.DB, error) {
	switch backend {
	case schema.SQLiteBackend:
		if connStr == "" {
			return nil, fmt.Errorf("sqlite store requires a database file path")
		}
		db, err := sql.Open("sqlite", connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite store at %q: %w", connStr, err)
		}
		// A single open connection avoids "database is locked" errors.
		db.SetMaxOpenConns(1)
		return db, nil

	case schema.MySQLBackend:
		db, err := sql.Open("mysql", connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open MySQL store: %w", err)
		}
		return db, nil

	case schema.PostgreSQLBackend:
		db, err := sql.Open("pgx", connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open PostgreSQL store: %w", err)
		}
		return db, nil

	default:
		return nil, fmt.Errorf("unsupported store backend: %s. Must be sqlite, mysql or postgresql", backend)
	}
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save persists a table under the given name, replacing any previous table
// with that name.
func (s *Store) Save(name string, t *core.Table) error {
	groupings, err := json.Marshal(t.Groupings())
	if err != nil {
		return fmt.Errorf("failed to encode groupings: %w", err)
	}
	metrics, err := json.Marshal(t.Metrics())
	if err != nil {
		return fmt.Errorf("failed to encode metrics: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin save transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.deleteTable(tx, name); err != nil {
		return err
	}

	if _, err := tx.Exec(
		s.rebind("INSERT INTO gridtable_tables (name, groupings, metrics, row_count, saved_at) VALUES (?, ?, ?, ?, ?)"),
		name, string(groupings), string(metrics), t.Len(), time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("failed to save table %q: %w", name, err)
	}

	insertCell := s.rebind("INSERT INTO gridtable_cells (table_name, row_idx, column_name, cell) VALUES (?, ?, ?, ?)")
	columns := t.Columns()
	for i, row := range t.Rows() {
		for _, column := range columns {
			if _, err := tx.Exec(insertCell, name, i, column, row.Value(column).Encode()); err != nil {
				return fmt.Errorf("failed to save row %d of table %q: %w", i, name, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit table %q: %w", name, err)
	}

	s.logger.WithFields(logrus.Fields{
		"table":   name,
		"rows":    t.Len(),
		"backend": s.backend,
	}).Debug("saved table")
	return nil
}

// Load reads a previously saved table back. Metric columns come back in
// alphabetical order.
func (s *Store) Load(name string) (*core.Table, error) {
	var groupingsRaw, metricsRaw string
	var rowCount int
	err := s.db.QueryRow(
		s.rebind("SELECT groupings, metrics, row_count FROM gridtable_tables WHERE name = ?"), name,
	).Scan(&groupingsRaw, &metricsRaw, &rowCount)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no saved table named %q", name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load table %q: %w", name, err)
	}

	var groupings []string
	if err := json.Unmarshal([]byte(groupingsRaw), &groupings); err != nil {
		return nil, fmt.Errorf("corrupt groupings for table %q: %w", name, err)
	}
	metrics := make(map[string]string)
	if err := json.Unmarshal([]byte(metricsRaw), &metrics); err != nil {
		return nil, fmt.Errorf("corrupt metrics for table %q: %w", name, err)
	}

	rows := make([]core.Row, rowCount)
	for i := range rows {
		rows[i] = make(core.Row)
	}

	cells, err := s.db.Query(
		s.rebind("SELECT row_idx, column_name, cell FROM gridtable_cells WHERE table_name = ? ORDER BY row_idx"), name,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load rows of table %q: %w", name, err)
	}
	defer func() { _ = cells.Close() }()

	for cells.Next() {
		var idx int
		var column, encoded string
		if err := cells.Scan(&idx, &column, &encoded); err != nil {
			return nil, fmt.Errorf("failed to scan row of table %q: %w", name, err)
		}
		if idx < 0 || idx >= rowCount {
			return nil, fmt.Errorf("corrupt row index %d for table %q", idx, name)
		}
		value, err := core.DecodeValue(encoded)
		if err != nil {
			return nil, fmt.Errorf("corrupt cell in table %q: %w", name, err)
		}
		rows[idx][column] = value
	}
	if err := cells.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rows of table %q: %w", name, err)
	}

	s.logger.WithFields(logrus.Fields{
		"table":   name,
		"rows":    rowCount,
		"backend": s.backend,
	}).Debug("loaded table")
	return core.NewTable(rows, groupings, metrics), nil
}

// List returns the names of all saved tables.
func (s *Store) List() ([]string, error) {
	rows, err := s.db.Query("SELECT name FROM gridtable_tables ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Delete removes a saved table and its rows.
func (s *Store) Delete(name string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin delete transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.deleteTable(tx, name); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) deleteTable(tx *sql.Tx, name string) error {
	if _, err := tx.Exec(s.rebind("DELETE FROM gridtable_cells WHERE table_name = ?"), name); err != nil {
		return fmt.Errorf("failed to delete rows of table %q: %w", name, err)
	}
	if _, err := tx.Exec(s.rebind("DELETE FROM gridtable_tables WHERE name = ?"), name); err != nil {
		return fmt.Errorf("failed to delete table %q: %w", name, err)
	}
	return nil
}

// rebind rewrites "?" placeholders to "$n" for PostgreSQL.
func (s *Store) rebind(query string) string {
	if s.backend != schema.PostgreSQLBackend {
		return query
	}
	var out []byte
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			out = append(out, fmt.Sprintf("$%d", n)...)
		} else {
			out = append(out, query[i])
		}
	}
	return string(out)
}
