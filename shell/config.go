package shell

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	Popup PopupConfig `toml:"popup"`
	Log   LogConfig   `toml:"log"`
	Layer LayerConfig `toml:"layer"`
}

type PopupConfig struct {
	// RetryAttempts bounds how many times a deferred popup is retried
	// before it fails.
	RetryAttempts int      `toml:"retry_attempts"`
	RetryDelay    Duration `toml:"retry_delay"`
}

type LogConfig struct {
	Level       string `toml:"level"`
	Development bool   `toml:"development"`
}

type LayerConfig struct {
	// Namespace is used for layer surfaces that do not set one.
	Namespace string `toml:"namespace"`
}

// Duration is a time.Duration that is written in TOML as a string,
// such as "30ms".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func DefaultConfig() Config {
	return Config{
		Popup: PopupConfig{
			RetryAttempts: 5,
			RetryDelay:    Duration{30 * time.Millisecond},
		},
		Log: LogConfig{
			Level: "info",
		},
		Layer: LayerConfig{
			Namespace: "wlshell",
		},
	}
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/wlshell/config.toml.
func DefaultConfigPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "wlshell", "config.toml")
}

// LoadConfig reads the config file at path over the defaults. A
// missing file is not an error.
func LoadConfig(path string) (Config, error) {
	c := DefaultConfig()
	if path == "" {
		return c, nil
	}

	_, err := toml.DecodeFile(path, &c)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return DefaultConfig(), fmt.Errorf("load config %q: %w", path, err)
	}

	err = c.Validate()
	if err != nil {
		return DefaultConfig(), fmt.Errorf("load config %q: %w", path, err)
	}
	return c, nil
}

func (c Config) Validate() error {
	if c.Popup.RetryAttempts < 1 {
		return fmt.Errorf("popup.retry_attempts must be at least 1, not %v", c.Popup.RetryAttempts)
	}
	if c.Popup.RetryDelay.Duration <= 0 {
		return fmt.Errorf("popup.retry_delay must be positive, not %v", c.Popup.RetryDelay)
	}
	return nil
}

// Logger builds a logger as described by the config.
func (c LogConfig) Logger() (*zap.Logger, error) {
	var level zapcore.Level
	if c.Level != "" {
		err := level.UnmarshalText([]byte(c.Level))
		if err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
	}

	cfg := zap.NewProductionConfig()
	if c.Development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	return cfg.Build()
}
