package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRootCommandHasRunAndVersionSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["run"])
	assert.True(t, names["version"])
}

func TestVersionCommandPrintsVersion(t *testing.T) {
	versionCmd.SetArgs(nil)
	out := &captureWriter{}
	versionCmd.SetOut(out)
	require := assert.New(t)
	require.NoError(versionCmd.RunE(versionCmd, nil))
	require.Contains(out.String(), Version)
}

type captureWriter struct{ buf []byte }

func (w *captureWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	return len(p), nil
}

func (w *captureWriter) String() string { return string(w.buf) }
