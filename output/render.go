package output

import (
	"os"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"golang.org/x/term"

	"github.com/gridtable/gridtable/core"
	"github.com/gridtable/gridtable/schema"
)

const minCellWidth = 8

var nullColor = color.New(color.FgHiBlack)

// renderTextTable prints the table as a human-readable text table with the
// interval first, then grouping columns, then metrics with their units.
func renderTextTable(t *core.Table, opts Options) error {
	columns := t.Columns()

	headers := make([]string, len(columns))
	for i, column := range columns {
		headers[i] = headerFor(t, column)
	}

	file := selectOutputFile(opts.File)
	defer closeOutputFile(file)

	table := tablewriter.NewWriter(file)
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	cellWidth := maxCellWidth(opts, len(columns))

	data := make([][]string, 0, t.Len())
	for _, row := range t.Rows() {
		cells := make([]string, len(columns))
		for i, column := range columns {
			value := row.Value(column)
			cell := truncateCell(formatCell(value, opts.Precision), cellWidth)
			if value.IsNull() {
				cell = nullColor.Sprint(cell)
			}
			cells[i] = cell
		}
		data = append(data, cells)
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// maxCellWidth calculates the width budget per cell from the terminal width
// and the column count, clamped to a readable range.
func maxCellWidth(opts Options, columns int) int {
	termWidth := opts.Width
	if termWidth == 0 {
		detected, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detected <= 0 {
			termWidth = 80 // conservative default for narrow terminals and CI
		} else {
			termWidth = detected
		}
	}

	if columns == 0 {
		columns = 1
	}
	// Reserve space for borders, separators and padding around every column.
	available := (termWidth - 3*columns - 1) / columns
	if available < minCellWidth {
		return minCellWidth
	}
	if available > schema.MaxCellWidth {
		return schema.MaxCellWidth
	}
	return available
}

// truncateCell shortens a cell to the width budget, marking the cut with an
// ellipsis.
func truncateCell(cell string, width int) string {
	if len(cell) <= width {
		return cell
	}
	if width <= 3 {
		return cell[:width]
	}
	return cell[:width-3] + "..."
}
