package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCmd(t *testing.T) {
	original := rootCmd.Version
	t.Cleanup(func() { rootCmd.Version = original })

	tests := []struct {
		version string
		want    string
	}{
		{version: "1.4.0", want: "mecpanel version 1.4.0\n"},
		{version: "", want: "mecpanel version \n"},
	}
	for _, tt := range tests {
		SetVersion(tt.version)

		var out bytes.Buffer
		cmd := newVersionCmd()
		cmd.SetOut(&out)
		cmd.SetArgs([]string{})
		require.NoError(t, cmd.Execute())
		assert.Equal(t, tt.want, out.String())
	}
}
