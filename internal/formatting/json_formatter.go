package formatting

import (
	"encoding/json"
	"fmt"

	"github.com/pineunity/apmec-horizon/internal/apmec"
	"github.com/pineunity/apmec-horizon/internal/reconciler"
)

// JSONFormatter provides structured JSON output formatting
type JSONFormatter struct {
	options Options
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter(options Options) Formatter {
	return &JSONFormatter{options: options}
}

// FormatRows writes the rows as a JSON array.
func (f *JSONFormatter) FormatRows(kind apmec.Kind, rows []reconciler.Row) error {
	if rows == nil {
		rows = []reconciler.Row{}
	}
	return f.FormatData(rows)
}

// FormatRecord writes the record as a JSON object.
func (f *JSONFormatter) FormatRecord(kind apmec.Kind, rec apmec.Record) error {
	return f.FormatData(rec)
}

// FormatData formats generic data as JSON
func (f *JSONFormatter) FormatData(data interface{}) error {
	out, err := f.marshal(data)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(f.options.writer(), out)
	return err
}

// SetOptions updates the formatter options
func (f *JSONFormatter) SetOptions(options Options) {
	f.options = options
}

// GetOptions returns the current formatter options
func (f *JSONFormatter) GetOptions() Options {
	return f.options
}

// marshal converts data to JSON, compact in quiet mode.
func (f *JSONFormatter) marshal(data interface{}) (string, error) {
	if !f.options.Quiet {
		b, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to format JSON: %w", err)
		}
		return string(b), nil
	}

	b, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to format JSON: %w", err)
	}
	return string(b), nil
}
