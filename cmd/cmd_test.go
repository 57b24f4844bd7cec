package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grovetools/searchcore/errors"
)

const testConfig = `index: products
settings:
  dataset: products.yml
widgets:
  - type: searchBox
  - type: hits
  - type: refinementList
    props:
      attribute: brand
`

const testDataset = `products:
  - objectID: "1"
    name: Espresso
    brand: Apple
  - objectID: "2"
    name: Green tea
    brand: Samsung
  - objectID: "3"
    name: Croissant
    brand: Sony
`

func project(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "searchcore.yml"), []byte(testConfig), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "products.yml"), []byte(testDataset), 0o644))
	return filepath.Join(dir, "searchcore.yml")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func decode(t *testing.T, out string) map[string]interface{} {
	t.Helper()
	var v map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &v), out)
	return v
}

func TestQueryCommand(t *testing.T) {
	path := project(t)

	out, err := run(t, "--config", path, "--json", "query", "green", "tea")
	require.NoError(t, err)
	results := decode(t, out)["results"].(map[string]interface{})
	assert.Equal(t, 1.0, results["nbHits"])

	// The query persisted.
	out, err = run(t, "--config", path, "--json", "search")
	require.NoError(t, err)
	st := decode(t, out)["state"].(map[string]interface{})
	assert.Equal(t, "green tea", st["query"])
}

func TestQueryCommandText(t *testing.T) {
	path := project(t)

	out, err := run(t, "--config", path, "query", "croissant")
	require.NoError(t, err)
	assert.Contains(t, out, "products")
	assert.Contains(t, out, "1 hits")
	assert.Contains(t, out, "Croissant")
}

func TestRefineAndRefinementsCommands(t *testing.T) {
	path := project(t)

	_, err := run(t, "--config", path, "refine", "brand", "Apple")
	require.NoError(t, err)
	_, err = run(t, "--config", path, "refine", "brand", "Sony")
	require.NoError(t, err)

	out, err := run(t, "--config", path, "--json", "search")
	require.NoError(t, err)
	assert.Equal(t, 2.0, decode(t, out)["results"].(map[string]interface{})["nbHits"])

	out, err = run(t, "--config", path, "refinements")
	require.NoError(t, err)
	assert.Contains(t, out, "Apple")
	assert.Contains(t, out, "Sony")

	out, err = run(t, "--config", path, "refinements", "--clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Refinements cleared")

	out, err = run(t, "--config", path, "--json", "search")
	require.NoError(t, err)
	assert.Equal(t, 3.0, decode(t, out)["results"].(map[string]interface{})["nbHits"])

	_, err = run(t, "--config", path, "refine", "nope", "x")
	assert.True(t, errors.Is(err, errors.ErrCodeUnknownWidget))
}

func TestStateCommands(t *testing.T) {
	path := project(t)
	_, err := run(t, "--config", path, "query", "tea")
	require.NoError(t, err)
	_, err = run(t, "--config", path, "refine", "brand", "Samsung")
	require.NoError(t, err)

	out, err := run(t, "--config", path, "state", "show", "--paths")
	require.NoError(t, err)
	assert.Contains(t, out, "query")
	assert.Contains(t, out, "refinementList/brand")

	out, err = run(t, "--config", path, "--json", "state", "show", "--only", "refinementList")
	require.NoError(t, err)
	st := decode(t, out)
	assert.NotContains(t, st, "query")
	assert.Contains(t, st, "refinementList")

	_, err = run(t, "--config", path, "state", "reset")
	require.NoError(t, err)
	out, err = run(t, "--config", path, "--json", "state", "show")
	require.NoError(t, err)
	assert.Empty(t, decode(t, out))
}

func TestConfigCommand(t *testing.T) {
	path := project(t)
	override := filepath.Join(filepath.Dir(path), "searchcore.override.yml")
	require.NoError(t, os.WriteFile(override, []byte("settings:\n  max_facet_hits: 5\n"), 0o644))

	out, err := run(t, "--config", path, "config")
	require.NoError(t, err)
	assert.Contains(t, out, "PROJECT CONFIG")
	assert.Contains(t, out, "OVERRIDE CONFIG")
	assert.Contains(t, out, "max_facet_hits: 5")
}

func TestInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "searchcore.yml")
	require.NoError(t, os.WriteFile(path, []byte("index: products\nbogus: 1\n"), 0o644))

	_, err := run(t, "--config", path, "search")
	assert.True(t, errors.Is(err, errors.ErrCodeConfigValidation))
}

func TestSchemaAndVersionCommands(t *testing.T) {
	out, err := run(t, "schema")
	require.NoError(t, err)
	assert.Contains(t, decode(t, out), "$defs")

	out, err = run(t, "--json", "version")
	require.NoError(t, err)
	assert.Equal(t, "dev", decode(t, out)["version"])
}

func TestLogsCommand(t *testing.T) {
	path := project(t)
	logFile := filepath.Join(filepath.Dir(path), "searchcore.log")
	cfg := testConfig + "logging:\n  file:\n    enabled: true\n    path: " + logFile + "\n"
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))
	lines := `{"level":"info","msg":"Configuration reloaded","component":"app","time":"2026-01-02T10:11:12Z","widgets":3}
{"level":"error","msg":"search failed","component":"instantsearch","time":"2026-01-02T10:11:13Z"}
plain line
`
	require.NoError(t, os.WriteFile(logFile, []byte(lines), 0o644))

	out, err := run(t, "--config", path, "logs")
	require.NoError(t, err)
	assert.Contains(t, out, "10:11:12")
	assert.Contains(t, out, "Configuration reloaded")
	assert.Contains(t, out, "widgets=3")
	assert.Contains(t, out, "plain line")

	out, err = run(t, "--config", path, "--json", "logs", "--tail", "1")
	require.NoError(t, err)
	assert.Equal(t, "plain line", decode(t, out)["raw_line"])
	assert.NotContains(t, out, "Configuration reloaded")
}

func TestLogsCommandRequiresFileSink(t *testing.T) {
	path := project(t)
	_, err := run(t, "--config", path, "logs")
	assert.True(t, errors.Is(err, errors.ErrCodeConfigInvalid))
}
