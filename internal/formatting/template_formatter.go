package formatting

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/pineunity/apmec-horizon/internal/apmec"
	"github.com/pineunity/apmec-horizon/internal/reconciler"
)

// TemplateFormatter executes a Go template against the data. Data is passed
// in its JSON shape, so templates use the JSON field names:
//
//	{{range .}}{{.id}} {{.status | lower}}{{"\n"}}{{end}}
type TemplateFormatter struct {
	options Options
	tmpl    *template.Template
}

// NewTemplateFormatter parses options.Template.
func NewTemplateFormatter(options Options) (Formatter, error) {
	f := &TemplateFormatter{}
	if err := f.setTemplate(options); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *TemplateFormatter) setTemplate(options Options) error {
	if strings.TrimSpace(options.Template) == "" {
		return fmt.Errorf("template output requires --template")
	}
	tmpl, err := template.New("output").Funcs(sprig.TxtFuncMap()).Parse(options.Template)
	if err != nil {
		return fmt.Errorf("invalid template: %w", err)
	}
	f.options = options
	f.tmpl = tmpl
	return nil
}

// FormatRows executes the template with the list of rows.
func (f *TemplateFormatter) FormatRows(kind apmec.Kind, rows []reconciler.Row) error {
	if rows == nil {
		rows = []reconciler.Row{}
	}
	return f.FormatData(rows)
}

// FormatRecord executes the template with the record.
func (f *TemplateFormatter) FormatRecord(kind apmec.Kind, rec apmec.Record) error {
	return f.FormatData(rec)
}

// FormatData executes the template with data in its JSON shape.
func (f *TemplateFormatter) FormatData(data interface{}) error {
	generic, err := toGeneric(data)
	if err != nil {
		return err
	}
	if err := f.tmpl.Execute(f.options.writer(), generic); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}
	return nil
}

// SetOptions updates the options. An invalid template keeps the previous one.
func (f *TemplateFormatter) SetOptions(options Options) {
	if options.Template == f.options.Template {
		f.options = options
		return
	}
	_ = f.setTemplate(options)
}

// GetOptions returns the current formatter options
func (f *TemplateFormatter) GetOptions() Options {
	return f.options
}

func toGeneric(data interface{}) (interface{}, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare template data: %w", err)
	}
	var generic interface{}
	if err := json.Unmarshal(b, &generic); err != nil {
		return nil, fmt.Errorf("failed to prepare template data: %w", err)
	}
	return generic, nil
}
