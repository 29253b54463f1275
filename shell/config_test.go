package shell

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
)

func writeConfig(t *testing.T, data string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.toml")
	err := os.WriteFile(path, []byte(data), 0644)
	if err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
[popup]
retry_attempts = 8
retry_delay = "50ms"

[log]
level = "debug"
development = true
`)

	c, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	want := DefaultConfig()
	want.Popup.RetryAttempts = 8
	want.Popup.RetryDelay = Duration{50 * time.Millisecond}
	want.Log = LogConfig{Level: "debug", Development: true}
	if diff := cmp.Diff(want, c); diff != "" {
		t.Errorf("config (-want +got):\n%s", diff)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	for _, path := range []string{"", filepath.Join(t.TempDir(), "missing.toml")} {
		c, err := LoadConfig(path)
		if err != nil {
			t.Errorf("load %q: %v", path, err)
		}
		if diff := cmp.Diff(DefaultConfig(), c); diff != "" {
			t.Errorf("load %q (-want +got):\n%s", path, diff)
		}
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "Syntax", data: "[popup\n"},
		{name: "Attempts", data: "[popup]\nretry_attempts = 0\n"},
		{name: "Delay", data: "[popup]\nretry_delay = \"-1s\"\n"},
		{name: "Duration", data: "[popup]\nretry_delay = \"soon\"\n"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c, err := LoadConfig(writeConfig(t, test.data))
			if err == nil {
				t.Fatalf("loaded %#v", c)
			}
			if diff := cmp.Diff(DefaultConfig(), c); diff != "" {
				t.Errorf("config after error (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDefaultConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/config")
	if path := DefaultConfigPath(); path != "/tmp/config/wlshell/config.toml" {
		t.Errorf("path: %q", path)
	}
}

func TestLogConfigLogger(t *testing.T) {
	log, err := LogConfig{Level: "warn"}.Logger()
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	if log.Core().Enabled(zap.InfoLevel) || !log.Core().Enabled(zap.ErrorLevel) {
		t.Error("logger does not use the configured level")
	}

	_, err = LogConfig{Level: "loud"}.Logger()
	if err == nil {
		t.Error("bad level was accepted")
	}
}
