package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunSelfUpdate_RefusesDevelopmentBuilds(t *testing.T) {
	original := rootCmd.Version
	t.Cleanup(func() { rootCmd.Version = original })

	for _, version := range []string{"", "dev"} {
		rootCmd.Version = version
		err := runSelfUpdate(nil, nil)
		assert.EqualError(t, err, "cannot self-update a development version", "version %q", version)
	}
}

func TestSelfUpdateCmd(t *testing.T) {
	cmd := newSelfUpdateCmd()
	assert.Equal(t, "self-update", cmd.Use)
	assert.NotNil(t, cmd.RunE)
	assert.Contains(t, cmd.Long, "mecpanel")
	assert.Equal(t, "pineunity/apmec-horizon", githubRepoSlug)
}
