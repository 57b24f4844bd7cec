package app

import (
	"encoding/json"
)

// item is the common shape of the selectable values widgets provide.
type item struct {
	Label string          `json:"label"`
	Value json.RawMessage `json:"value"`
	Items []item          `json:"items,omitempty"`
}

// Items returns the selectable items a widget currently provides, as labels
// mapped to the values its Refine expects. Nested items are flattened.
func (m Mounted) Items() map[string]interface{} {
	raw, ok := m.Widget.Props()["items"]
	if !ok {
		return nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil
	}
	var items []item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil
	}
	out := map[string]interface{}{}
	flatten(items, out)
	return out
}

func flatten(items []item, out map[string]interface{}) {
	for _, it := range items {
		var v interface{}
		if len(it.Value) > 0 && json.Unmarshal(it.Value, &v) == nil {
			if _, seen := out[it.Label]; !seen {
				out[it.Label] = v
			}
		}
		flatten(it.Items, out)
	}
}

// Select refines a widget with the value of the item labelled label, so
// list widgets toggle that entry. Widgets without such an item are refined
// with label itself.
func (a *App) Select(name, label string) error {
	m, err := a.Find(name)
	if err != nil {
		return err
	}
	if v, ok := m.Items()[label]; ok {
		return a.Refine(m.Key, v)
	}
	return a.Refine(m.Key, label)
}
