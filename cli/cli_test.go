package cli

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grovetools/searchcore/errors"
)

func TestWrapText(t *testing.T) {
	assert.Equal(t, "short", wrapText("short", 20))
	assert.Equal(t, "one two\nthree", wrapText("one two three", 8))
	assert.Equal(t, "a\nb", wrapText("a\nb", 8))
}

func TestParseDescription(t *testing.T) {
	desc, ex := parseDescription("Does things.\n\nExamples:\n  searchcore query tea")
	assert.Equal(t, "Does things.", desc)
	assert.Equal(t, "searchcore query tea", ex)

	desc, ex = parseDescription("No examples.")
	assert.Equal(t, "No examples.", desc)
	assert.Empty(t, ex)
}

func TestErrorHandler(t *testing.T) {
	var buf bytes.Buffer
	err := errors.ConfigNotFound("searchcore.yml")

	assert.Same(t, err, NewErrorHandler(true, &buf).Handle(err))
	assert.Contains(t, buf.String(), "Error:")
	assert.Contains(t, buf.String(), "--config")
	assert.Contains(t, buf.String(), "CONFIG_NOT_FOUND")

	assert.NoError(t, NewErrorHandler(false, &buf).Handle(nil))
}

func TestStandardCommandFlags(t *testing.T) {
	cmd := NewStandardCommand("searchcore", "test")
	cmd.RunE = func(*cobra.Command, []string) error { return nil }
	cmd.SetArgs([]string{"--json", "-v", "-c", "x.yml"})
	require.NoError(t, cmd.Execute())

	opts := GetOptions(cmd)
	assert.True(t, opts.JSONOutput)
	assert.True(t, opts.Verbose)
	assert.Equal(t, "x.yml", opts.ConfigFile)

	path, err := InitConfig(opts.ConfigFile)
	require.NoError(t, err)
	assert.Equal(t, "x.yml", path)
}

func TestStyledHelp(t *testing.T) {
	root := NewStandardCommand("searchcore", "Widget state engine")
	root.AddCommand(&cobra.Command{Use: "query", Short: "Run a query", Run: func(*cobra.Command, []string) {}})
	ApplyStyledHelpRecursive(root)

	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs([]string{"--help"})
	require.NoError(t, root.Execute())
	assert.Contains(t, buf.String(), "SEARCHCORE")
	assert.Contains(t, buf.String(), "query")
}
