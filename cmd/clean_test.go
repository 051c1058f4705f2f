// File: cmd/clean_test.go
package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs a fresh command tree with args and captured output. The
// global viper is reset first so executions cannot leak state into each
// other.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	viper.Reset()
	root := newRootCmd()

	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCleanSaveConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "template.json")

	out, err := execute(t, "", "clean", "--save-config", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"credentials"`)
}

func TestCleanRejectsMissingEmail(t *testing.T) {
	_, err := execute(t, "", "clean", "--whatif")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "credentials.email")
}

func TestCleanLiveModeRequiresConfirmation(t *testing.T) {
	t.Setenv("TIMELINE_CLEANUP_LOGGER_LOG_FILE", filepath.Join(t.TempDir(), "run.log"))

	out, err := execute(t, "nope\n",
		"clean",
		"--email", "user@example.com",
		"--password", "hunter2",
	)

	// Declining the prompt is an orderly exit, not an error.
	require.NoError(t, err)
	assert.Contains(t, out, "WARNING")
	assert.Contains(t, out, "Aborted. Nothing was deleted.")
}

func TestExecutionsDoNotLeakFlagState(t *testing.T) {
	t.Setenv("TIMELINE_CLEANUP_LOGGER_LOG_FILE", filepath.Join(t.TempDir(), "run.log"))

	_, err := execute(t, "nope\n",
		"clean",
		"--email", "user@example.com",
		"--password", "hunter2",
	)
	require.NoError(t, err)

	// The email from the previous execution must not survive into this one.
	_, err = execute(t, "", "clean", "--whatif")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "credentials.email")
}

func TestCooldownPrinter(t *testing.T) {
	t.Run("quiet runs get no countdown", func(t *testing.T) {
		var shown bool
		assert.Nil(t, newCooldownPrinter(&bytes.Buffer{}, false, &shown))
		assert.False(t, shown)
	})

	t.Run("verbose runs render a countdown", func(t *testing.T) {
		out := &bytes.Buffer{}
		var shown bool

		tick := newCooldownPrinter(out, true, &shown)
		require.NotNil(t, tick)
		tick(90 * time.Second)

		assert.True(t, shown)
		assert.Contains(t, out.String(), "Next session in 01:30")
	})
}

func TestVersionFlag(t *testing.T) {
	out, err := execute(t, "", "--version")
	require.NoError(t, err)
	assert.Contains(t, out, Version)
}
