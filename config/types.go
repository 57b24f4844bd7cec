package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/mitchellh/mapstructure"
)

// WidgetTypeIndex is the widget type that opens a nested index scope. Its
// children are mounted inside that scope.
const WidgetTypeIndex = "index"

// Defaults applied by SetDefaults and the accessors below.
const (
	DefaultVersion          = "1.0"
	DefaultServerAddr       = "127.0.0.1:7700"
	DefaultStateFile        = ".searchcore/state.yml"
	DefaultConfigDebounceMs = 100
)

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr           string   `yaml:"addr,omitempty" toml:"addr,omitempty" jsonschema:"description=Listen address of the HTTP server (default: 127.0.0.1:7700)"`
	AllowedOrigins []string `yaml:"allowed_origins,omitempty" toml:"allowed_origins,omitempty" jsonschema:"description=Origins allowed to open the WebSocket endpoint (default: same origin)"`
}

// Settings holds runtime knobs of the search engine.
type Settings struct {
	StalledSearchDelay string        `yaml:"stalled_search_delay,omitempty" toml:"stalled_search_delay,omitempty" jsonschema:"description=Delay before a pending search is flagged as stalled (default: 200ms)"`
	SchedulerDelay     string        `yaml:"scheduler_delay,omitempty" toml:"scheduler_delay,omitempty" jsonschema:"description=Delay used to batch widget updates into one recomputation (default: next tick)"`
	MaxFacetHits       int           `yaml:"max_facet_hits,omitempty" toml:"max_facet_hits,omitempty" jsonschema:"description=Default number of facet hits returned by a facet value search (1-100),minimum=0,maximum=100"`
	StateFile          string        `yaml:"state_file,omitempty" toml:"state_file,omitempty" jsonschema:"description=File holding the persisted search state (relative to the config file)"`
	Dataset            string        `yaml:"dataset,omitempty" toml:"dataset,omitempty" jsonschema:"description=JSON or YAML dataset served by the in-memory engine (relative to the config file)"`
	ConfigDebounceMs   int           `yaml:"config_debounce_ms,omitempty" toml:"config_debounce_ms,omitempty" jsonschema:"description=Debounce window for config reloads in milliseconds (default: 100),minimum=0"`
	Server             *ServerConfig `yaml:"server,omitempty" toml:"server,omitempty" jsonschema:"description=HTTP server settings"`
}

// WidgetConfig declares a widget to mount. Index widgets carry an index
// name, an optional index id and their own widgets.
type WidgetConfig struct {
	Type    string                 `yaml:"type" toml:"type" json:"type"`
	Index   string                 `yaml:"index,omitempty" toml:"index,omitempty" json:"index,omitempty"`
	ID      string                 `yaml:"id,omitempty" toml:"id,omitempty" json:"id,omitempty"`
	Props   map[string]interface{} `yaml:"props,omitempty" toml:"props,omitempty" json:"props,omitempty"`
	Widgets []WidgetConfig         `yaml:"widgets,omitempty" toml:"widgets,omitempty" json:"widgets,omitempty"`
}

// Config represents the searchcore.yml configuration
type Config struct {
	Version  string         `yaml:"version" toml:"version" jsonschema:"description=Configuration version (e.g. 1.0)"`
	Index    string         `yaml:"index" toml:"index" jsonschema:"description=Main index every widget targets unless nested in an index widget"`
	Settings Settings       `yaml:"settings,omitempty" toml:"settings,omitempty" jsonschema:"description=Engine settings"`
	Widgets  []WidgetConfig `yaml:"widgets,omitempty" toml:"widgets,omitempty" jsonschema:"description=Widgets mounted at startup"`

	// Extensions captures all other top-level keys, such as logging.
	Extensions map[string]interface{} `yaml:",inline" toml:"-" jsonschema:"-"`

	// Path is the file the configuration was loaded from.
	Path string `yaml:"-" toml:"-" jsonschema:"-"`
}

// SetDefaults sets default values for configuration
func (c *Config) SetDefaults() {
	if c.Version == "" {
		c.Version = DefaultVersion
	}
	if c.Settings.Server == nil {
		c.Settings.Server = &ServerConfig{}
	}
	if c.Settings.Server.Addr == "" {
		c.Settings.Server.Addr = DefaultServerAddr
	}
	if c.Settings.StateFile == "" {
		c.Settings.StateFile = DefaultStateFile
	}
	if c.Settings.ConfigDebounceMs == 0 {
		c.Settings.ConfigDebounceMs = DefaultConfigDebounceMs
	}
}

// Dir is the directory relative paths resolve against.
func (c *Config) Dir() string {
	if c.Path == "" {
		return "."
	}
	return filepath.Dir(c.Path)
}

// Resolve makes p absolute against the configuration directory.
func (c *Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Dir(), p)
}

// StatePath is the resolved state file.
func (c *Config) StatePath() string {
	if c.Settings.StateFile == "" {
		return c.Resolve(DefaultStateFile)
	}
	return c.Resolve(c.Settings.StateFile)
}

// DatasetPath is the resolved dataset file, empty when none is set.
func (c *Config) DatasetPath() string {
	return c.Resolve(c.Settings.Dataset)
}

// StalledSearchDelayDuration parses settings.stalled_search_delay. Zero means the
// engine default.
func (s Settings) StalledSearchDelayDuration() (time.Duration, error) {
	return parseDuration("stalled_search_delay", s.StalledSearchDelay)
}

// SchedulerDelayDuration parses settings.scheduler_delay.
func (s Settings) SchedulerDelayDuration() (time.Duration, error) {
	return parseDuration("scheduler_delay", s.SchedulerDelay)
}

// ConfigDebounce is the config watcher debounce window.
func (s Settings) ConfigDebounce() time.Duration {
	if s.ConfigDebounceMs <= 0 {
		return DefaultConfigDebounceMs * time.Millisecond
	}
	return time.Duration(s.ConfigDebounceMs) * time.Millisecond
}

func parseDuration(field, v string) (time.Duration, error) {
	if v == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", field, v, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s %q: must not be negative", field, v)
	}
	return d, nil
}

// UnmarshalExtension decodes a specific extension's configuration from the
// loaded searchcore.yml into the provided target struct. The target must be
// a pointer.
//
// Example:
//
//	var logCfg logging.Config
//	err := cfg.UnmarshalExtension("logging", &logCfg)
func (c *Config) UnmarshalExtension(key string, target interface{}) error {
	extensionConfig, ok := c.Extensions[key]
	if !ok {
		// A missing key leaves the target zero-valued.
		return nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  target,
		TagName: "yaml",
	})
	if err != nil {
		return fmt.Errorf("failed to create mapstructure decoder: %w", err)
	}

	if err := decoder.Decode(extensionConfig); err != nil {
		return fmt.Errorf("failed to decode extension config for '%s': %w", key, err)
	}

	return nil
}
