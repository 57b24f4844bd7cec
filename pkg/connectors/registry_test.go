package connectors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grovetools/searchcore/errors"
)

func TestDecodeProps(t *testing.T) {
	props, err := DecodeProps[NumericMenuProps](map[string]interface{}{
		"attribute": "price",
		"items": []interface{}{
			map[string]interface{}{"label": "cheap", "end": 10},
			map[string]interface{}{"label": "mid", "start": "10", "end": 100},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "price", props.Attribute)
	require.Len(t, props.Items, 2)
	assert.Nil(t, props.Items[0].Start)
	assert.Equal(t, 10.0, *props.Items[0].End)
	assert.Equal(t, "10:100", props.Items[1].Value())

	rl, err := DecodeProps[RefinementListProps](map[string]interface{}{
		"attribute":       "brand",
		"operator":        "and",
		"show_more_limit": "30",
	})
	require.NoError(t, err)
	assert.Equal(t, 30, rl.ShowMoreLimit)

	cfg, err := DecodeProps[ConfigureProps](map[string]interface{}{"hitsPerPage": 4})
	require.NoError(t, err)
	assert.Equal(t, 4, cfg["hitsPerPage"])

	_, err = DecodeProps[MenuProps](map[string]interface{}{"attribute": "brand", "colour": "red"})
	assert.True(t, errors.Is(err, errors.ErrCodeConfigInvalid))
}

func TestMountUnknownType(t *testing.T) {
	_, err := Mount(nil, "carousel", nil, root)
	assert.True(t, errors.Is(err, errors.ErrCodeUnknownWidget))
}

func TestMountValidation(t *testing.T) {
	tests := []struct {
		typ string
		raw map[string]interface{}
	}{
		{TypeMenu, map[string]interface{}{}},
		{TypeRefinementList, map[string]interface{}{"attribute": "brand", "operator": "xor"}},
		{TypeNumericMenu, map[string]interface{}{}},
		{TypeHierarchicalMenu, map[string]interface{}{"attributes": []interface{}{}}},
		{TypeBreadcrumb, map[string]interface{}{}},
	}
	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			_, err := Mount(nil, tt.typ, tt.raw, root)
			require.Error(t, err)
			assert.Equal(t, errors.ErrCodeConfigInvalid, errors.GetCode(err))
		})
	}
}

func TestTypes(t *testing.T) {
	types := Types()
	assert.Len(t, types, 11)
	assert.Contains(t, types, TypeNumericMenu)

	props, ok := PropsOf(TypeMenu)
	require.True(t, ok)
	assert.IsType(t, MenuProps{}, props)

	_, ok = PropsOf("carousel")
	assert.False(t, ok)
}
