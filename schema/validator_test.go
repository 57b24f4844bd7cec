package schema

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grovetools/searchcore/errors"
)

func TestGenerate(t *testing.T) {
	data, err := Generate()
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &doc))

	props, ok := doc["properties"].(map[string]interface{})
	require.True(t, ok)
	for _, key := range []string{"version", "index", "settings", "widgets", "logging"} {
		assert.Contains(t, props, key)
	}
	assert.Equal(t, false, doc["additionalProperties"])

	defs := doc["$defs"].(map[string]interface{})
	widget := defs["widget"].(map[string]interface{})
	typeProp := widget["properties"].(map[string]interface{})["type"].(map[string]interface{})
	assert.Contains(t, typeProp["enum"], "menu")
	assert.Contains(t, typeProp["enum"], "index")
}

func TestValidatorAcceptsValidConfig(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	doc := map[string]interface{}{
		"version": "1.0",
		"index":   "products",
		"settings": map[string]interface{}{
			"stalled_search_delay": "300ms",
			"max_facet_hits":       20,
			"server":               map[string]interface{}{"addr": ":7700"},
		},
		"logging": map[string]interface{}{"level": "debug"},
		"widgets": []interface{}{
			map[string]interface{}{"type": "searchBox"},
			map[string]interface{}{"type": "menu", "props": map[string]interface{}{"attribute": "brand", "limit": 5}},
			map[string]interface{}{"type": "configure", "props": map[string]interface{}{"hitsPerPage": 3, "anything": true}},
			map[string]interface{}{"type": "numericMenu", "props": map[string]interface{}{
				"attribute": "price",
				"items": []interface{}{
					map[string]interface{}{"label": "cheap", "end": 10},
					map[string]interface{}{"label": "pricey", "start": 10},
				},
			}},
			map[string]interface{}{"type": "index", "index": "articles", "widgets": []interface{}{
				map[string]interface{}{"type": "hits", "props": map[string]interface{}{"hits_per_page": 4}},
			}},
		},
	}
	assert.NoError(t, v.Validate(doc))
}

func TestValidatorRejects(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	widget := func(w map[string]interface{}) map[string]interface{} {
		return map[string]interface{}{"index": "products", "widgets": []interface{}{w}}
	}

	tests := []struct {
		name string
		doc  map[string]interface{}
	}{
		{"unknown top-level key", map[string]interface{}{"indexes": "x"}},
		{"unknown widget type", widget(map[string]interface{}{"type": "carousel"})},
		{"unknown widget field", widget(map[string]interface{}{"type": "menu", "props": map[string]interface{}{"attribute": "brand", "colour": "red"}})},
		{"missing required prop", widget(map[string]interface{}{"type": "menu", "props": map[string]interface{}{"limit": 3}})},
		{"bad operator", widget(map[string]interface{}{"type": "refinementList", "props": map[string]interface{}{"attribute": "brand", "operator": "xor"}})},
		{"children on a leaf widget", widget(map[string]interface{}{"type": "hits", "widgets": []interface{}{}})},
		{"index without name", widget(map[string]interface{}{"type": "index"})},
		{"bad nested widget", widget(map[string]interface{}{"type": "index", "index": "a", "widgets": []interface{}{
			map[string]interface{}{"type": "pagination", "props": map[string]interface{}{"pages": 3}},
		}})},
		{"bad logging preset", map[string]interface{}{"logging": map[string]interface{}{"format": map[string]interface{}{"preset": "fancy"}}}},
		{"wrong settings type", map[string]interface{}{"settings": map[string]interface{}{"max_facet_hits": "many"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.doc)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeConfigValidation))
		})
	}
}

func TestValidateFile(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	dir := t.TempDir()
	good := filepath.Join(dir, "searchcore.yml")
	require.NoError(t, os.WriteFile(good, []byte(`
index: ${SEARCHCORE_SCHEMA_TEST_INDEX:-products}
widgets:
  - type: refinementList
    props:
      attribute: brand
      operator: and
`), 0o644))
	assert.NoError(t, v.ValidateFile(good))

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("index = \"p\"\n[[widgets]]\ntype = \"menu\"\n[widgets.props]\nattr = \"brand\"\n"), 0o644))
	err = v.ValidateFile(bad)
	require.Error(t, err)
	se, ok := err.(*errors.SearchError)
	require.True(t, ok)
	assert.Equal(t, bad, se.Details["path"])

	assert.True(t, errors.Is(v.ValidateFile(filepath.Join(dir, "missing.yml")), errors.ErrCodeConfigNotFound))
}
