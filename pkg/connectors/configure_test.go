package connectors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grovetools/searchcore/errors"
	"github.com/grovetools/searchcore/pkg/scope"
	"github.com/grovetools/searchcore/pkg/search"
	"github.com/grovetools/searchcore/state"
)

func TestConfigureSearchParameters(t *testing.T) {
	p := Configure.GetSearchParameters(root, search.NewParameters("index"), ConfigureProps{"distinct": 1, "whatever": "please"}, state.New())

	v, err := p.GetQueryParameter("distinct")
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	v, err = p.GetQueryParameter("whatever")
	require.NoError(t, err)
	assert.Equal(t, "please", v)

	_, err = p.GetQueryParameter("children")
	assert.True(t, errors.Is(err, errors.ErrCodeParameterNotFound))
}

func TestConfigureTransitionState(t *testing.T) {
	first := ConfigureProps{"distinct": 1, "whatever": "please"}
	st := Configure.TransitionState(root, nil, first, state.New(), state.New())
	assert.Equal(t, state.State{"configure": map[string]interface{}{"distinct": 1, "whatever": "please"}}, st)

	st = Configure.TransitionState(root, first, ConfigureProps{"whatever": "other"}, st, st)
	assert.Equal(t, state.State{"configure": map[string]interface{}{"whatever": "other"}}, st)

	st = Configure.TransitionState(multi, nil, ConfigureProps{"distinct": 1}, state.New(), state.New())
	assert.Equal(t, state.State{"indices": map[string]interface{}{
		"second": map[string]interface{}{"configure": map[string]interface{}{"distinct": 1}},
	}}, st)
}

func TestConfigureTransitionKeepsForeignKeys(t *testing.T) {
	stored := state.State{"configure": map[string]interface{}{"another": "parameters"}}
	st := Configure.TransitionState(root, nil, ConfigureProps{"distinct": 1}, stored, stored)
	assert.Equal(t, state.State{"configure": map[string]interface{}{"distinct": 1, "another": "parameters"}}, st)

	st = Configure.TransitionState(root, ConfigureProps{"distinct": 1}, ConfigureProps{"hitsPerPage": 5}, st, st)
	assert.Equal(t, state.State{"configure": map[string]interface{}{"hitsPerPage": 5, "another": "parameters"}}, st)
	assert.Equal(t, map[string]interface{}{"another": "parameters"}, stored.Branch("configure"))
}

func TestConfigureCleanUp(t *testing.T) {
	props := ConfigureProps{"distinct": 1, "whatever": "please"}
	st := Configure.CleanUp(root, props, state.State{"configure": map[string]interface{}{
		"distinct": 1, "whatever": "please", "another": "parameters",
	}})
	assert.Equal(t, state.State{"configure": map[string]interface{}{"another": "parameters"}}, st)

	st = Configure.CleanUp(root, props, state.State{"configure": map[string]interface{}{"distinct": 1, "whatever": "please"}})
	assert.Equal(t, state.State{"configure": map[string]interface{}{}}, st)

	st = Configure.CleanUp(multi, props, state.State{"indices": map[string]interface{}{
		"second": map[string]interface{}{"configure": map[string]interface{}{"whatever": "other"}},
		"other":  map[string]interface{}{"configure": map[string]interface{}{"distinct": 1}},
	}})
	assert.Equal(t, state.State{"indices": map[string]interface{}{
		"second": map[string]interface{}{"configure": map[string]interface{}{}},
		"other":  map[string]interface{}{"configure": map[string]interface{}{"distinct": 1}},
	}}, st)

	third := scope.Root("first").Nested("third")
	st = Configure.CleanUp(third, props, state.State{"indices": map[string]interface{}{}})
	assert.Equal(t, state.State{"indices": map[string]interface{}{
		"third": map[string]interface{}{"configure": map[string]interface{}{}},
	}}, st)
}
