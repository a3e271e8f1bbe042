package output

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/gridtable/gridtable/core"
)

// jsonTable is the JSON wire shape of a rendered table.
type jsonTable struct {
	Groupings []string          `json:"groupings"`
	Metrics   map[string]string `json:"metrics"`
	Rows      []map[string]any  `json:"rows"`
}

// printCSVTable opens the output target and writes the table as CSV.
func printCSVTable(t *core.Table, opts Options) error {
	file := selectOutputFile(opts.File)
	defer closeOutputFile(file)

	w := csv.NewWriter(file)
	if err := writeCSVTable(w, t, opts); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

// writeCSVTable writes the header row followed by every data row.
func writeCSVTable(w *csv.Writer, t *core.Table, opts Options) error {
	columns := t.Columns()
	if err := w.Write(columns); err != nil {
		return err
	}
	for _, row := range t.Rows() {
		record := make([]string, len(columns))
		for i, column := range columns {
			record[i] = formatCell(row.Value(column), opts.Precision)
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return nil
}

// printJSONTable opens the output target and writes the table as JSON.
func printJSONTable(t *core.Table, opts Options) error {
	file := selectOutputFile(opts.File)
	defer closeOutputFile(file)
	return writeJSONTable(file, t)
}

// writeJSONTable marshals the table with native scalar cells; null cells
// become JSON null.
func writeJSONTable(w io.Writer, t *core.Table) error {
	columns := t.Columns()
	rows := make([]map[string]any, 0, t.Len())
	for _, row := range t.Rows() {
		record := make(map[string]any, len(columns))
		for _, column := range columns {
			record[column] = row.Value(column).AsAny()
		}
		rows = append(rows, record)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(jsonTable{
		Groupings: t.Groupings(),
		Metrics:   t.Metrics(),
		Rows:      rows,
	})
}

// closeOutputFile closes file targets but never stdout.
func closeOutputFile(file *os.File) {
	if file == os.Stdout {
		return
	}
	if err := file.Close(); err != nil {
		logrus.WithError(err).Warn("failed to close output file")
	}
}
