package config

import (
	"fmt"

	"github.com/grovetools/searchcore/errors"
)

// Validate checks if the configuration is valid. Widget props are checked
// against their connector when mounted and by the JSON schema.
func (c *Config) Validate() error {
	if _, err := c.Settings.StalledSearchDelayDuration(); err != nil {
		return errors.Wrap(err, errors.ErrCodeConfigValidation, "invalid settings configuration")
	}
	if _, err := c.Settings.SchedulerDelayDuration(); err != nil {
		return errors.Wrap(err, errors.ErrCodeConfigValidation, "invalid settings configuration")
	}
	if c.Settings.MaxFacetHits < 0 || c.Settings.MaxFacetHits > 100 {
		return errors.New(errors.ErrCodeConfigValidation, "settings.max_facet_hits must be between 1 and 100").
			WithDetail("max_facet_hits", c.Settings.MaxFacetHits)
	}
	if c.Settings.ConfigDebounceMs < 0 {
		return errors.New(errors.ErrCodeConfigValidation, "settings.config_debounce_ms must not be negative")
	}
	if len(c.Widgets) > 0 && c.Index == "" {
		return errors.New(errors.ErrCodeConfigValidation, "index is required when widgets are declared")
	}

	seen := map[string]bool{}
	return validateWidgets(c.Widgets, "widgets", false, seen)
}

func validateWidgets(widgets []WidgetConfig, path string, nested bool, seen map[string]bool) error {
	for i, w := range widgets {
		at := fmt.Sprintf("%s[%d]", path, i)
		if w.Type == "" {
			return errors.New(errors.ErrCodeConfigValidation, fmt.Sprintf("%s.type is required", at)).
				WithDetail("widget", at)
		}
		if w.Type != WidgetTypeIndex {
			if len(w.Widgets) > 0 || w.Index != "" || w.ID != "" {
				return errors.New(errors.ErrCodeConfigValidation,
					fmt.Sprintf("%s: only index widgets take index, id or widgets", at)).
					WithDetail("widget", at)
			}
			continue
		}

		if nested {
			return errors.New(errors.ErrCodeConfigValidation, fmt.Sprintf("%s: index widgets cannot be nested", at)).
				WithDetail("widget", at)
		}
		if w.Index == "" {
			return errors.New(errors.ErrCodeConfigValidation, fmt.Sprintf("%s.index is required", at)).
				WithDetail("widget", at)
		}
		id := w.ID
		if id == "" {
			id = w.Index
		}
		if seen[id] {
			return errors.New(errors.ErrCodeConfigValidation, fmt.Sprintf("%s: duplicate index id '%s'", at, id)).
				WithDetail("widget", at)
		}
		seen[id] = true
		if err := validateWidgets(w.Widgets, at+".widgets", true, seen); err != nil {
			return err
		}
	}
	return nil
}
