package logging

import (
	"bytes"
	"runtime"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestNewLogger(t *testing.T) {
	t.Cleanup(Reset)

	logger := NewLogger("test-component")
	if logger == nil {
		t.Fatal("Expected logger to be created")
	}
	if logger.Data["component"] != "test-component" {
		t.Errorf("Expected component to be 'test-component', got %v", logger.Data["component"])
	}
	if NewLogger("test-component") != logger {
		t.Error("Expected the logger to be cached per component")
	}
}

func TestTextFormatter(t *testing.T) {
	tests := []struct {
		name    string
		config  FormatConfig
		entry   *logrus.Entry
		want    []string
		notWant []string
	}{
		{
			name:   "default format",
			config: FormatConfig{},
			entry: &logrus.Entry{
				Level:   logrus.InfoLevel,
				Message: "search dispatched",
				Data: logrus.Fields{
					"component": "instantsearch",
					"queries":   2,
					"index":     "products",
				},
			},
			want: []string{"[INFO]", "[instantsearch]", "search dispatched", "index=products queries=2"},
		},
		{
			name: "simple format",
			config: FormatConfig{
				DisableTimestamp: true,
				DisableComponent: true,
			},
			entry: &logrus.Entry{
				Level:   logrus.WarnLevel,
				Message: "stale results dropped",
				Data:    logrus.Fields{"component": "instantsearch"},
			},
			want:    []string{"[WARN]", "stale results dropped"},
			notWant: []string{"[instantsearch]"},
		},
		{
			name:   "caller information",
			config: FormatConfig{},
			entry: func() *logrus.Entry {
				logger := logrus.New()
				logger.SetReportCaller(true)
				return &logrus.Entry{
					Logger:  logger,
					Level:   logrus.InfoLevel,
					Message: "with caller",
					Data:    logrus.Fields{"component": "widgets"},
					Caller: &runtime.Frame{
						File:     "/path/to/manager.go",
						Line:     42,
						Function: "github.com/grovetools/searchcore/pkg/widgets.(*Manager).run",
					},
				}
			}(),
			want: []string{"[manager.go:42 widgets.(*Manager).run]"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			formatter := &TextFormatter{Config: tt.config}
			output, err := formatter.Format(tt.entry)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			outputStr := string(output)
			for _, want := range tt.want {
				if !strings.Contains(outputStr, want) {
					t.Errorf("Expected output to contain '%s', got: %s", want, outputStr)
				}
			}
			for _, notWant := range tt.notWant {
				if strings.Contains(outputStr, notWant) {
					t.Errorf("Expected output NOT to contain '%s', got: %s", notWant, outputStr)
				}
			}
		})
	}
}

func TestEnvironmentVariables(t *testing.T) {
	t.Setenv("SEARCHCORE_LOG_LEVEL", "debug")
	t.Setenv("SEARCHCORE_LOG_CALLER", "true")

	logger := newEntry("env-test", Config{})

	assert.Equal(t, logrus.DebugLevel, logger.Logger.Level)
	assert.True(t, logger.Logger.ReportCaller)
}

func TestConfigLevelAndPreset(t *testing.T) {
	t.Setenv("SEARCHCORE_LOG_LEVEL", "")

	logger := newEntry("cfg-test", Config{Level: "warn", Format: FormatConfig{Preset: "json"}})

	assert.Equal(t, logrus.WarnLevel, logger.Logger.Level)
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Logger.Formatter)
}

func TestStderrModes(t *testing.T) {
	assert.True(t, shouldLogToStderr("always", logrus.InfoLevel))
	assert.False(t, shouldLogToStderr("never", logrus.DebugLevel))
	assert.True(t, shouldLogToStderr("auto", logrus.DebugLevel))
}


func TestPrettyLogger(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrettyLogger().WithWriter(&buf)

	p.Success("saved")
	p.Field("query", "tv")
	p.Item(1, "brand: Apple")

	out := buf.String()
	assert.Contains(t, out, "saved")
	assert.Contains(t, out, "tv")
	assert.Contains(t, out, "  • brand: Apple")
}
