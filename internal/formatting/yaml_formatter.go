package formatting

import (
	"fmt"

	"sigs.k8s.io/yaml"

	"github.com/pineunity/apmec-horizon/internal/apmec"
	"github.com/pineunity/apmec-horizon/internal/reconciler"
)

// YAMLFormatter provides YAML output formatting. Field names follow the JSON
// tags of the rendered types.
type YAMLFormatter struct {
	options Options
}

// NewYAMLFormatter creates a new YAML formatter
func NewYAMLFormatter(options Options) Formatter {
	return &YAMLFormatter{options: options}
}

// FormatRows writes the rows as a YAML sequence.
func (f *YAMLFormatter) FormatRows(kind apmec.Kind, rows []reconciler.Row) error {
	if rows == nil {
		rows = []reconciler.Row{}
	}
	return f.FormatData(rows)
}

// FormatRecord writes the record as a YAML mapping.
func (f *YAMLFormatter) FormatRecord(kind apmec.Kind, rec apmec.Record) error {
	return f.FormatData(rec)
}

// FormatData formats generic data as YAML
func (f *YAMLFormatter) FormatData(data interface{}) error {
	b, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to format YAML: %w", err)
	}
	_, err = f.options.writer().Write(b)
	return err
}

// SetOptions updates the formatter options
func (f *YAMLFormatter) SetOptions(options Options) {
	f.options = options
}

// GetOptions returns the current formatter options
func (f *YAMLFormatter) GetOptions() Options {
	return f.options
}
