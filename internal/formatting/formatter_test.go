package formatting

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pineunity/apmec-horizon/internal/apmec"
	"github.com/pineunity/apmec-horizon/internal/reconciler"
)

var testRows = []reconciler.Row{
	{ID: "m1", Name: "edge-a", Description: "first", Status: "ACTIVE", VIM: "vim-1", CatalogID: "d1"},
	{ID: "m2", Name: "edge-b", Status: "ERROR", ErrorReason: "quota exceeded", VIM: "vim-1", CatalogID: "d1"},
}

func newFormatter(t *testing.T, opts Options) (Formatter, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	opts.Out = buf
	f, err := NewFactory().CreateFormatter(opts)
	require.NoError(t, err)
	return f, buf
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"table", "WIDE", " json ", "yaml", "template"} {
		_, err := ParseFormat(s)
		assert.NoError(t, err, s)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestFactory(t *testing.T) {
	f, err := NewFactory().CreateFormatter(Options{})
	require.NoError(t, err)
	assert.IsType(t, &TableFormatter{}, f)
	assert.Equal(t, FormatTable, f.GetOptions().Format)

	_, err = NewFactory().CreateFormatter(Options{Format: "xml"})
	assert.Error(t, err)

	_, err = NewFactory().CreateFormatter(Options{Format: FormatTemplate})
	assert.Error(t, err, "template format needs a template")

	_, err = NewFactory().CreateFormatter(Options{Format: FormatTemplate, Template: "{{.id"})
	assert.Error(t, err)
}

func TestTableFormatter_Rows(t *testing.T) {
	f, buf := newFormatter(t, Options{Format: FormatTable})
	require.NoError(t, f.FormatRows(apmec.KindMECA, testRows))

	out := buf.String()
	for _, want := range []string{"ID", "NAME", "VIM", "STATUS", "edge-a", "ACTIVE", "ERROR", "Total: 2 mecas"} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "ERROR REASON")
	assert.NotContains(t, out, "quota exceeded")
	assert.NotContains(t, out, "\x1b[", "no colour unless enabled")
}

func TestTableFormatter_WideRows(t *testing.T) {
	f, buf := newFormatter(t, Options{Format: FormatWide})
	require.NoError(t, f.FormatRows(apmec.KindMECA, testRows))

	out := buf.String()
	for _, want := range []string{"DESCRIPTION", "CATALOG", "ERROR REASON", "quota exceeded", "first"} {
		assert.Contains(t, out, want)
	}
}

func TestTableFormatter_EventRows(t *testing.T) {
	f, buf := newFormatter(t, Options{Format: FormatTable})
	rows := []reconciler.Row{{ID: "e1", EventType: "CREATE", ResourceState: "ACTIVE", Timestamp: "2026-01-01T00:00:00"}}
	require.NoError(t, f.FormatRows(apmec.KindEvent, rows))

	out := buf.String()
	for _, want := range []string{"TYPE", "STATE", "TIMESTAMP", "CREATE", "2026-01-01T00:00:00"} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "NAME")
}

func TestTableFormatter_Empty(t *testing.T) {
	f, buf := newFormatter(t, Options{Format: FormatTable})
	require.NoError(t, f.FormatRows(apmec.KindVIM, nil))
	assert.Equal(t, "No vims found\n", buf.String())
}

func TestTableFormatter_Record(t *testing.T) {
	f, buf := newFormatter(t, Options{Format: FormatTable})
	rec := apmec.Record{
		"id":         "m1",
		"name":       "edge-a",
		"attributes": map[string]interface{}{"config": "x"},
		"long":       strings.Repeat("y", 150),
	}
	require.NoError(t, f.FormatRecord(apmec.KindMECA, rec))

	out := buf.String()
	assert.Contains(t, out, "KEY")
	assert.Contains(t, out, `{"config":"x"}`)
	assert.Contains(t, out, strings.Repeat("y", 97)+"...")
	assert.NotContains(t, out, strings.Repeat("y", 98))
	assert.Less(t, strings.Index(out, "attributes"), strings.Index(out, "name"), "keys are sorted")
}

func TestTableFormatter_DataList(t *testing.T) {
	f, buf := newFormatter(t, Options{Format: FormatTable, Quiet: true})
	data := []struct {
		Kind   string `json:"kind"`
		Status string `json:"status"`
	}{{"meca", "succeeded"}, {"mea", "failed"}}
	require.NoError(t, f.FormatData(data))

	out := buf.String()
	assert.Contains(t, out, "KIND")
	assert.Contains(t, out, "succeeded")
	assert.NotContains(t, out, "Total:")
}

func TestJSONFormatter(t *testing.T) {
	f, buf := newFormatter(t, Options{Format: FormatJSON, Quiet: true})
	require.NoError(t, f.FormatRows(apmec.KindMECA, testRows[:1]))
	assert.JSONEq(t,
		`[{"id":"m1","name":"edge-a","description":"first","status":"ACTIVE","error_reason":"","vim":"vim-1","catalog_id":"d1","status_class":"ok","can_be_selected":true}]`,
		buf.String())
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"), "quiet JSON is compact")

	f, buf = newFormatter(t, Options{Format: FormatJSON})
	require.NoError(t, f.FormatRows(apmec.KindMECA, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestYAMLFormatter(t *testing.T) {
	f, buf := newFormatter(t, Options{Format: FormatYAML})
	require.NoError(t, f.FormatRows(apmec.KindMECA, testRows[:1]))

	out := buf.String()
	assert.Contains(t, out, "- catalog_id: d1\n")
	assert.Contains(t, out, "  error_reason: \"\"\n")
	assert.Contains(t, out, "  vim: vim-1\n")
}

func TestTemplateFormatter(t *testing.T) {
	f, buf := newFormatter(t, Options{
		Format:   FormatTemplate,
		Template: `{{range .}}{{.id}}={{.status | lower}};{{end}}`,
	})
	require.NoError(t, f.FormatRows(apmec.KindMECA, testRows))
	assert.Equal(t, "m1=active;m2=error;", buf.String())

	buf.Reset()
	f.SetOptions(Options{Format: FormatTemplate, Template: `{{.name | upper}}`, Out: buf})
	require.NoError(t, f.FormatRecord(apmec.KindMECA, apmec.Record{"name": "edge"}))
	assert.Equal(t, "EDGE", buf.String())
}
