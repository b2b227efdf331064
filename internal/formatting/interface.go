// Package formatting renders resource lists and records for the mecpanel CLI.
//
// Supported formats are a coloured table, a wide table with extra columns,
// JSON, YAML and Go templates with sprig functions.
package formatting

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pineunity/apmec-horizon/internal/apmec"
	"github.com/pineunity/apmec-horizon/internal/reconciler"
)

// OutputFormat represents the desired output format
type OutputFormat string

const (
	FormatTable    OutputFormat = "table"    // Rich table output
	FormatWide     OutputFormat = "wide"     // Table with all columns
	FormatJSON     OutputFormat = "json"     // JSON output
	FormatYAML     OutputFormat = "yaml"     // YAML output
	FormatTemplate OutputFormat = "template" // Go template output
)

// Formats lists the accepted output formats.
func Formats() []OutputFormat {
	return []OutputFormat{FormatTable, FormatWide, FormatJSON, FormatYAML, FormatTemplate}
}

// ParseFormat validates s as an output format.
func ParseFormat(s string) (OutputFormat, error) {
	f := OutputFormat(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats() {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported output format %q (expected table, wide, json, yaml or template)", s)
}

// Options configures the formatter behavior
type Options struct {
	Format OutputFormat
	Quiet  bool // Suppress decorative elements
	Color  bool // Enable colored output
	// Template is the Go template used by FormatTemplate.
	Template string
	// Out defaults to os.Stdout.
	Out io.Writer
}

func (o Options) writer() io.Writer {
	if o.Out == nil {
		return os.Stdout
	}
	return o.Out
}

// Formatter renders panel data.
type Formatter interface {
	// FormatRows renders a display list of kind.
	FormatRows(kind apmec.Kind, rows []reconciler.Row) error
	// FormatRecord renders a single raw resource.
	FormatRecord(kind apmec.Kind, rec apmec.Record) error
	// FormatData renders any other value, such as metrics or operations.
	FormatData(data interface{}) error

	SetOptions(options Options)
	GetOptions() Options
}

// Factory creates formatters for different output formats
type Factory interface {
	CreateFormatter(options Options) (Formatter, error)
}

// NewFactory creates a new formatter factory
func NewFactory() Factory {
	return &factory{}
}

type factory struct{}

// CreateFormatter creates the appropriate formatter based on options
func (f *factory) CreateFormatter(options Options) (Formatter, error) {
	switch options.Format {
	case FormatJSON:
		return NewJSONFormatter(options), nil
	case FormatYAML:
		return NewYAMLFormatter(options), nil
	case FormatTemplate:
		return NewTemplateFormatter(options)
	case FormatWide:
		return NewTableFormatter(options), nil
	case FormatTable, "":
		options.Format = FormatTable
		return NewTableFormatter(options), nil
	default:
		return nil, fmt.Errorf("unsupported output format %q", options.Format)
	}
}
