package cli

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pineunity/apmec-horizon/internal/formatting"
)

func TestCommandFlags_ToExecutorOptions_ValidatesFormat(t *testing.T) {
	tests := []struct {
		name         string
		outputFormat string
		template     string
		wantErr      bool
		errMsg       string
	}{
		{name: "valid table format", outputFormat: "table"},
		{name: "valid wide format", outputFormat: "wide"},
		{name: "valid json format", outputFormat: "json"},
		{name: "valid yaml format", outputFormat: "yaml"},
		{name: "valid template format", outputFormat: "template", template: "{{.}}"},
		{
			name:         "template format without template",
			outputFormat: "template",
			wantErr:      true,
			errMsg:       "--template is required",
		},
		{
			name:         "invalid format returns error",
			outputFormat: "invalid",
			wantErr:      true,
			errMsg:       "unsupported output format",
		},
		{
			name:         "empty format returns error",
			outputFormat: "",
			wantErr:      true,
			errMsg:       "unsupported output format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flags := &CommandFlags{OutputFormat: tt.outputFormat, Template: tt.template}
			opts, err := flags.ToExecutorOptions()
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, formatting.OutputFormat(tt.outputFormat), opts.Format)
			}
		})
	}
}

func TestRegisterCommonFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
	flags := &CommandFlags{}
	RegisterCommonFlags(cmd, flags)

	cmd.SetArgs([]string{"-o", "json", "--endpoint", "http://c:9896", "-q", "--config-path", "/tmp/x"})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, "json", flags.OutputFormat)
	assert.Equal(t, "http://c:9896", flags.Endpoint)
	assert.True(t, flags.Quiet)
	assert.Equal(t, "/tmp/x", flags.ConfigPath)
}
