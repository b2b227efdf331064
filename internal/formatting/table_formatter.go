package formatting

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/pineunity/apmec-horizon/internal/apmec"
	"github.com/pineunity/apmec-horizon/internal/reconciler"
	pkgstrings "github.com/pineunity/apmec-horizon/pkg/strings"
)

// TableFormatter provides rich table output formatting. With FormatWide it
// adds the columns hidden by default.
type TableFormatter struct {
	options Options
}

// NewTableFormatter creates a new table formatter
func NewTableFormatter(options Options) Formatter {
	return &TableFormatter{options: options}
}

type column struct {
	header string
	value  func(r reconciler.Row) string
	wide   bool
}

func columnsFor(kind apmec.Kind) []column {
	if kind == apmec.KindEvent {
		return []column{
			{header: "ID", value: func(r reconciler.Row) string { return r.ID }},
			{header: "TYPE", value: func(r reconciler.Row) string { return r.EventType }},
			{header: "STATE", value: func(r reconciler.Row) string { return r.ResourceState }},
			{header: "TIMESTAMP", value: func(r reconciler.Row) string { return r.Timestamp }},
			{header: "DETAILS", value: func(r reconciler.Row) string { return pkgstrings.Truncate(r.Details, pkgstrings.DefaultCellMaxLen) }, wide: true},
		}
	}

	cols := []column{
		{header: "ID", value: func(r reconciler.Row) string { return r.ID }},
		{header: "NAME", value: func(r reconciler.Row) string { return r.Name }},
		{header: "DESCRIPTION", value: func(r reconciler.Row) string { return pkgstrings.Truncate(r.Description, pkgstrings.DefaultCellMaxLen) }, wide: true},
	}
	if kind.Deployable() {
		cols = append(cols,
			column{header: "CATALOG", value: func(r reconciler.Row) string { return r.CatalogID }, wide: true},
			column{header: "VIM", value: func(r reconciler.Row) string { return r.VIM }},
		)
	}
	return append(cols,
		column{header: "STATUS", value: func(r reconciler.Row) string { return r.Status }},
		column{header: "ERROR REASON", value: func(r reconciler.Row) string { return pkgstrings.Truncate(r.ErrorReason, pkgstrings.DefaultCellMaxLen) }, wide: true},
	)
}

// FormatRows renders one line per row.
func (f *TableFormatter) FormatRows(kind apmec.Kind, rows []reconciler.Row) error {
	if len(rows) == 0 {
		fmt.Fprint(f.options.writer(), f.formatEmptyMessage(fmt.Sprintf("No %s found", kind.Plural())))
		return nil
	}

	wide := f.options.Format == FormatWide
	var cols []column
	for _, c := range columnsFor(kind) {
		if wide || !c.wide {
			cols = append(cols, c)
		}
	}

	t := f.createTable()
	header := make(table.Row, len(cols))
	for i, c := range cols {
		header[i] = f.header(c.header)
	}
	t.AppendHeader(header)

	for _, r := range rows {
		line := make(table.Row, len(cols))
		for i, c := range cols {
			v := c.value(r)
			if c.header == "STATUS" {
				v = f.status(r)
			}
			line[i] = v
		}
		t.AppendRow(line)
	}
	t.Render()

	if !f.options.Quiet {
		fmt.Fprintf(f.options.writer(), "\n%s %d %s\n", f.paint(text.FgHiBlue, "Total:"), len(rows), kind.Plural())
	}
	return nil
}

// FormatRecord renders the attributes of rec as a key/value table.
func (f *TableFormatter) FormatRecord(kind apmec.Kind, rec apmec.Record) error {
	if len(rec) == 0 {
		fmt.Fprint(f.options.writer(), f.formatEmptyMessage(fmt.Sprintf("Empty %s", kind.Title())))
		return nil
	}
	return f.formatObjectData(map[string]interface{}(rec))
}

// FormatData formats generic data using table logic
func (f *TableFormatter) FormatData(data interface{}) error {
	switch d := data.(type) {
	case string:
		fmt.Fprintln(f.options.writer(), d)
		return nil
	case map[string]interface{}:
		return f.formatObjectData(d)
	}

	generic, err := toGeneric(data)
	if err != nil {
		return err
	}
	switch d := generic.(type) {
	case map[string]interface{}:
		return f.formatObjectData(d)
	case []interface{}:
		return f.formatArrayData(d)
	default:
		fmt.Fprintf(f.options.writer(), "%v\n", d)
	}
	return nil
}

// SetOptions updates the formatter options
func (f *TableFormatter) SetOptions(options Options) {
	f.options = options
}

// GetOptions returns the current formatter options
func (f *TableFormatter) GetOptions() Options {
	return f.options
}

// createTable creates a new table with standard styling
func (f *TableFormatter) createTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(f.options.writer())
	if f.options.Quiet {
		t.SetStyle(table.StyleLight)
		t.Style().Options.DrawBorder = false
		t.Style().Options.SeparateColumns = false
		t.Style().Options.SeparateHeader = false
	} else {
		t.SetStyle(table.StyleRounded)
	}
	return t
}

func (f *TableFormatter) paint(c text.Color, s string) string {
	if !f.options.Color {
		return s
	}
	return c.Sprint(s)
}

func (f *TableFormatter) header(s string) string {
	return f.paint(text.FgHiCyan, s)
}

// status colours the status by its class: ok green, error red, pending yellow.
func (f *TableFormatter) status(r reconciler.Row) string {
	if r.Status == "" {
		return ""
	}
	switch r.StatusClass() {
	case "ok":
		return f.paint(text.FgGreen, r.Status)
	case "error":
		return f.paint(text.FgRed, r.Status)
	default:
		return f.paint(text.FgYellow, r.Status)
	}
}

// formatEmptyMessage formats empty result messages
func (f *TableFormatter) formatEmptyMessage(message string) string {
	return f.paint(text.FgYellow, message) + "\n"
}

// formatObjectData formats object data as key-value pairs
func (f *TableFormatter) formatObjectData(data map[string]interface{}) error {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	t := f.createTable()
	t.AppendHeader(table.Row{f.header("KEY"), f.header("VALUE")})
	for _, key := range keys {
		t.AppendRow(table.Row{key, pkgstrings.Truncate(cellString(data[key]), pkgstrings.MaxCellLen)})
	}
	t.Render()
	return nil
}

// formatArrayData renders a list of objects with the union of their keys as
// columns.
func (f *TableFormatter) formatArrayData(data []interface{}) error {
	if len(data) == 0 {
		fmt.Fprint(f.options.writer(), f.formatEmptyMessage("No items found"))
		return nil
	}

	keySet := map[string]struct{}{}
	for _, item := range data {
		obj, ok := item.(map[string]interface{})
		if !ok {
			// Not a list of objects.
			for i, item := range data {
				fmt.Fprintf(f.options.writer(), "  %d. %v\n", i+1, item)
			}
			return nil
		}
		for k := range obj {
			keySet[k] = struct{}{}
		}
	}
	keys := make([]string, 0, len(keySet))
	for k := range keySet {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	t := f.createTable()
	header := make(table.Row, len(keys))
	for i, k := range keys {
		header[i] = f.header(strings.ToUpper(strings.ReplaceAll(k, "_", " ")))
	}
	t.AppendHeader(header)
	for _, item := range data {
		obj := item.(map[string]interface{})
		line := make(table.Row, len(keys))
		for i, k := range keys {
			line[i] = pkgstrings.Truncate(cellString(obj[k]), pkgstrings.MaxCellLen)
		}
		t.AppendRow(line)
	}
	t.Render()

	if !f.options.Quiet {
		fmt.Fprintf(f.options.writer(), "\n%s %d items\n", f.paint(text.FgHiBlue, "Total:"), len(data))
	}
	return nil
}
