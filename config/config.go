package config

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/grovetools/searchcore/errors"
)

// EnvConfigPath names an explicit configuration file, bypassing discovery.
const EnvConfigPath = "SEARCHCORE_CONFIG"

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// ConfigNames are the file names FindConfigFile looks for, in order.
var ConfigNames = []string{
	"searchcore.yml",
	"searchcore.yaml",
	"searchcore.toml",
	".searchcore.yml",
	".searchcore.yaml",
}

// OverrideNames are merged on top of the project file when present next to it.
var OverrideNames = []string{
	"searchcore.override.yml",
	"searchcore.override.yaml",
	"searchcore.override.toml",
}

// Format identifies the syntax of a configuration file.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatOf picks the format from a file extension. Unknown extensions are
// read as YAML.
func FormatOf(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FormatTOML
	}
	return FormatYAML
}

// Load reads and parses a configuration file, without overrides or
// validation beyond parsing.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigNotFound(path)
		}
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to read config file").
			WithDetail("path", path)
	}

	cfg, err := LoadFromBytes(data, FormatOf(path))
	if err != nil {
		if se, ok := err.(*errors.SearchError); ok {
			return nil, se.WithDetail("path", path)
		}
		return nil, err
	}
	cfg.Path = path
	return cfg, nil
}

// LoadFromBytes parses configuration from byte array
func LoadFromBytes(data []byte, format Format) (*Config, error) {
	normalized, err := normalize(data, format)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(normalized, &cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse configuration")
	}
	return &cfg, nil
}

// ReadDocument returns the environment-expanded file as a generic tree, the
// form schema validation works on.
func ReadDocument(path string) (map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigNotFound(path)
		}
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to read config file").
			WithDetail("path", path)
	}
	normalized, err := normalize(data, FormatOf(path))
	if err != nil {
		return nil, err
	}
	doc := map[string]interface{}{}
	if err := yaml.Unmarshal(normalized, &doc); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse configuration").
			WithDetail("path", path)
	}
	return doc, nil
}

// normalize expands environment variables and converts TOML to YAML so a
// single decoder handles inline extensions for both formats.
func normalize(data []byte, format Format) ([]byte, error) {
	expanded := []byte(expandEnvVars(string(data)))
	if format != FormatTOML {
		return expanded, nil
	}
	var raw map[string]interface{}
	if err := toml.Unmarshal(expanded, &raw); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse TOML configuration")
	}
	out, err := yaml.Marshal(raw)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to convert TOML configuration")
	}
	return out, nil
}

// LoadDefault loads the configuration named by SEARCHCORE_CONFIG, or the one
// discovered from the current directory.
func LoadDefault() (*Config, error) {
	if path := os.Getenv(EnvConfigPath); path != "" {
		return LoadFile(path)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to get current directory")
	}
	return LoadFrom(cwd)
}

// LoadFrom discovers the configuration file upward from startDir and loads it.
func LoadFrom(startDir string) (*Config, error) {
	path, err := FindConfigFile(startDir)
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile loads path, merges its override files, sets defaults and
// validates the result.
func LoadFile(path string) (*Config, error) {
	return LoadFileWithLogger(path, logrus.New())
}

// LoadFileWithLogger is LoadFile with loading steps logged to logger.
func LoadFileWithLogger(path string, logger *logrus.Logger) (*Config, error) {
	logger.WithField("path", path).Debug("Loading project configuration")
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(path)
	for _, name := range OverrideNames {
		overridePath := filepath.Join(dir, name)
		if _, err := os.Stat(overridePath); err != nil {
			continue
		}
		logger.WithField("path", overridePath).Debug("Loading local override configuration")
		override, err := Load(overridePath)
		if err != nil {
			logger.WithError(err).Warn("Failed to parse override file, skipping")
			continue
		}
		cfg = mergeConfigs(cfg, override)
	}
	cfg.Path = path

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if logger.IsLevelEnabled(logrus.DebugLevel) {
		if data, err := yaml.Marshal(cfg); err == nil {
			logger.Debugf("Merged configuration:\n%s", string(data))
		}
	}
	return cfg, nil
}

// FindConfigFile searches for a configuration file from startDir up to the
// filesystem root, then in the XDG config directory.
func FindConfigFile(startDir string) (string, error) {
	dir := startDir
	for {
		for _, name := range ConfigNames {
			path := filepath.Join(dir, name)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	if xdgConfigPath := getXDGConfigPath(); xdgConfigPath != "" {
		if info, err := os.Stat(xdgConfigPath); err == nil && !info.IsDir() {
			return xdgConfigPath, nil
		}
	}

	return "", errors.ConfigNotFound(startDir).WithDetail("searchPath", startDir)
}

// expandEnvVars replaces ${VAR} with environment variable values
func expandEnvVars(content string) string {
	return envVarRegex.ReplaceAllStringFunc(content, func(match string) string {
		varName := envVarRegex.FindStringSubmatch(match)[1]

		// Handle default values: ${VAR:-default}
		parts := strings.SplitN(varName, ":-", 2)
		varName = parts[0]
		defaultValue := ""
		if len(parts) > 1 {
			defaultValue = parts[1]
		}

		if value := os.Getenv(varName); value != "" {
			return value
		}

		return defaultValue
	})
}

// getXDGConfigPath returns the user-level configuration file.
func getXDGConfigPath() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "searchcore", "searchcore.yml")
	}

	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".config", "searchcore", "searchcore.yml")
	}

	return ""
}
