// Package config loads the daemon's TOML configuration surface: the
// serial port parameters, the per-read timeout and the frame bound.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	Port           string `toml:"port"`
	Baud           int    `toml:"baud"`
	ReadTimeoutMS  int    `toml:"read_timeout_ms"`
	PollIntervalMS int    `toml:"poll_interval_ms"`
	MaxFrameLen    int    `toml:"max_frame_len"`
	TraceFrames    bool   `toml:"trace_frames"`
}

func (c Config) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutMS) * time.Millisecond
}

func (c Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Port:           "/dev/ttyUSB0",
		Baud:           115200,
		ReadTimeoutMS:  5000,
		PollIntervalMS: 10,
		MaxFrameLen:    4096,
	}
}

// Load reads a TOML file, fills unset fields with defaults and
// validates the result.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	def := Default()
	if c.Port == "" {
		c.Port = def.Port
	}
	if c.Baud == 0 {
		c.Baud = def.Baud
	}
	if c.ReadTimeoutMS == 0 {
		c.ReadTimeoutMS = def.ReadTimeoutMS
	}
	if c.PollIntervalMS == 0 {
		c.PollIntervalMS = def.PollIntervalMS
	}
	if c.MaxFrameLen == 0 {
		c.MaxFrameLen = def.MaxFrameLen
	}
}

func (c Config) validate() error {
	if c.Baud <= 0 {
		return fmt.Errorf("config: baud %d must be positive", c.Baud)
	}
	if c.ReadTimeoutMS <= 0 {
		return fmt.Errorf("config: read_timeout_ms %d must be positive", c.ReadTimeoutMS)
	}
	if c.PollIntervalMS <= 0 {
		return fmt.Errorf("config: poll_interval_ms %d must be positive", c.PollIntervalMS)
	}
	if c.MaxFrameLen <= 0 {
		return fmt.Errorf("config: max_frame_len %d must be positive", c.MaxFrameLen)
	}
	return nil
}
