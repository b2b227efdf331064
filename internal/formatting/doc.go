// Package formatting renders resource rows, single records and operation
// logs for the mecpanel CLI.
//
// Formatters are created through a Factory from Options. Table and wide
// output use go-pretty; wide adds the free-text columns (description, error
// reason, event details) that are hidden by default. JSON and YAML emit the
// rows as the panel API does, and template output runs a Go template with
// the sprig function map over the same data.
package formatting
