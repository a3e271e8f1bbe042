// Package output renders tables for terminal consumption: human-readable
// text tables plus CSV and JSON writers.
package output

import (
	"fmt"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/gridtable/gridtable/core"
	"github.com/gridtable/gridtable/schema"
)

// Options controls how a table is rendered.
type Options struct {
	Mode      schema.OutputMode // text, csv or json
	File      string            // output path; stdout when empty
	Precision int               // decimal places for metric values
	Width     int               // terminal width override; autodetect when 0
}

// DefaultOptions returns text output to stdout with the default precision.
func DefaultOptions() Options {
	return Options{Mode: schema.TextOut, Precision: schema.DefaultPrecision}
}

// PrintTable outputs the table, dispatching on the configured output mode.
func PrintTable(t *core.Table, opts Options) error {
	switch opts.Mode {
	case schema.JSONOut:
		if err := printJSONTable(t, opts); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := printCSVTable(t, opts); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		if err := renderTextTable(t, opts); err != nil {
			return fmt.Errorf("error writing table output: %w", err)
		}
	}
	return nil
}

// selectOutputFile returns the write target for the configured path, falling
// back to stdout when the file cannot be created.
func selectOutputFile(path string) *os.File {
	if path != "" {
		if file, err := os.Create(path); err == nil {
			return file
		}
		logrus.WithField("file", path).Warn("cannot open output file, falling back to stdout")
	}
	return os.Stdout
}

// formatCell renders a single cell for text and CSV output. Numbers honor the
// configured precision; nulls render as a dash.
func formatCell(v core.Value, precision int) string {
	if v.IsNull() {
		return "-"
	}
	if n, ok := v.AsNumber(); ok {
		return strconv.FormatFloat(n, 'f', precision, 64)
	}
	return v.String()
}

// headerFor labels a column, attaching the unit for metric columns.
func headerFor(t *core.Table, column string) string {
	if unit, err := t.Unit(column); err == nil && unit != "" {
		return fmt.Sprintf("%s (%s)", column, unit)
	}
	return column
}
