package state

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grovetools/searchcore/errors"
)

func TestCloneIsDeep(t *testing.T) {
	st := State{
		"menu":    map[string]interface{}{"brand": "Apple"},
		"indices": map[string]interface{}{"second": map[string]interface{}{"page": 2}},
		"list":    []interface{}{"a", "b"},
	}

	cp := st.Clone()
	cp.Branch("menu")["brand"] = "Samsung"
	cp["list"].([]interface{})[0] = "z"

	assert.Equal(t, "Apple", st.Branch("menu")["brand"])
	assert.Equal(t, "a", st["list"].([]interface{})[0])
	assert.True(t, Equal(st.Clone(), st))
}

func TestGetAndIndex(t *testing.T) {
	st := State{
		"indices": map[string]interface{}{
			"second": map[string]interface{}{"menu": map[string]interface{}{"ok": "wat"}},
		},
	}

	v, ok := st.Get("indices.second.menu.ok")
	require.True(t, ok)
	assert.Equal(t, "wat", v)

	_, ok = st.Get("indices.third.menu")
	assert.False(t, ok)

	idx, ok := st.Index("second")
	require.True(t, ok)
	assert.True(t, idx.Has("menu.ok"))

	_, ok = st.Index("missing")
	assert.False(t, ok)
}

func TestMergeAndOmitDoNotMutate(t *testing.T) {
	st := State{"page": 3, "query": "phone"}

	merged := st.Merge(map[string]interface{}{"page": 1})
	omitted := st.Omit("query")

	assert.Equal(t, 3, st["page"])
	assert.Equal(t, 1, merged["page"])
	assert.Equal(t, []string{"page"}, omitted.Keys())
	assert.Equal(t, []string{"page", "query"}, st.Keys())
}

func TestRemoveEmptyKey(t *testing.T) {
	st := State{
		"query": "",
		"menu":  map[string]interface{}{},
		"refinementList": map[string]interface{}{
			"brand": []interface{}{"Apple"},
			"color": map[string]interface{}{},
		},
		"indices": map[string]interface{}{
			"second": map[string]interface{}{"menu": map[string]interface{}{}},
		},
	}

	got := RemoveEmptyKey(st)

	assert.Equal(t, State{
		"query":          "",
		"refinementList": map[string]interface{}{"brand": []interface{}{"Apple"}},
		"indices":        map[string]interface{}{"second": map[string]interface{}{}},
	}, got)
	assert.Contains(t, st, "menu")
}

func TestCoercion(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want int
		ok   bool
	}{
		{"int", 3, 3, true},
		{"float", float64(4), 4, true},
		{"string", "5", 5, true},
		{"garbage", "five", 0, false},
		{"nil", nil, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Int(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, []string{"a"}, Strings("a"))
	assert.Equal(t, []string{}, Strings(""))
	assert.Equal(t, []string{"a", "b"}, Strings([]interface{}{"a", "b"}))
	assert.Equal(t, []string{}, Strings(nil))

	s, ok := String(12.5)
	assert.True(t, ok)
	assert.Equal(t, "12.5", s)
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".searchcore", "state.yml")

	t.Run("load missing file", func(t *testing.T) {
		st, err := Load(path)
		require.NoError(t, err)
		assert.Empty(t, st)
	})

	t.Run("round trip", func(t *testing.T) {
		st := State{
			"page": 2,
			"menu": map[string]interface{}{"brand": "Apple"},
		}
		require.NoError(t, Save(path, st))

		loaded, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 2, loaded["page"])
		assert.Equal(t, "Apple", loaded.Branch("menu")["brand"])
	})

	t.Run("invalid yaml", func(t *testing.T) {
		require.NoError(t, os.WriteFile(path, []byte("page: [unterminated"), 0o644))
		_, err := Load(path)
		assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
	})
}

func TestSaveWhileLocked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.yml")

	held := flock.New(path + ".lock")
	locked, err := held.TryLock()
	require.NoError(t, err)
	require.True(t, locked)
	defer func() { _ = held.Unlock() }()

	prev := LockTimeout
	LockTimeout = 100 * time.Millisecond
	defer func() { LockTimeout = prev }()

	err = Save(path, State{"page": 1})
	assert.True(t, errors.Is(err, errors.ErrCodeStateLocked))
}

func TestJSON(t *testing.T) {
	data, err := MarshalJSON(State{"query": "tv", "page": 1})
	require.NoError(t, err)
	assert.JSONEq(t, `{"page":1,"query":"tv"}`, string(data))

	st, err := UnmarshalJSON([]byte(`{"menu":{"brand":"Apple"}}`))
	require.NoError(t, err)
	assert.Equal(t, "Apple", st.Branch("menu")["brand"])

	_, err = UnmarshalJSON([]byte(`[1,2]`))
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
}
