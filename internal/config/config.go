package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Mavwarf/alerttone/internal/audio"
	"github.com/Mavwarf/alerttone/internal/paths"
)

// DefaultVolume is the default playback volume (0-100).
const DefaultVolume = 100

// DefaultLowSource is the raw PCM file played by the low-priority mode,
// relative to the working directory.
const DefaultLowSource = "test.raw"

// DefaultLowIntervalMS is the low-priority re-trigger period.
const DefaultLowIntervalMS = 500

// DefaultLogLevel is the zap level used when none is configured.
const DefaultLogLevel = "info"

// MQTT holds broker settings for alert event publication. An empty Broker
// disables publishing.
type MQTT struct {
	Broker   string `json:"broker,omitempty"`
	Topic    string `json:"topic,omitempty"`
	ClientID string `json:"client_id,omitempty"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
	QoS      byte   `json:"qos,omitempty"`
	Retain   bool   `json:"retain,omitempty"`
}

// Webhook holds the HTTP endpoint alert events are posted to. An empty URL
// disables posting. Header values may reference $ENV variables.
type Webhook struct {
	URL     string            `json:"url,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
}

// Options holds global settings parsed from the "config" key.
type Options struct {
	Volume        int     `json:"volume,omitempty"`
	Backend       string  `json:"backend,omitempty"`
	LowSource     string  `json:"low_source,omitempty"`
	LowIntervalMS int     `json:"low_interval_ms,omitempty"`
	Repeat        bool    `json:"repeat,omitempty"`
	LogLevel      string  `json:"log_level,omitempty"`
	Log           bool    `json:"log,omitempty"`
	Storage       string  `json:"storage,omitempty"`
	MetricsAddr   string  `json:"metrics_addr,omitempty"`
	MQTT          MQTT    `json:"mqtt,omitempty"`
	Webhook       Webhook `json:"webhook,omitempty"`
}

// Config holds the top-level configuration.
type Config struct {
	Options Options `json:"config"`
}

// Default returns the configuration used when no file is found.
func Default() Config {
	var c Config
	c.setDefaults()
	return c
}

func (c *Config) setDefaults() {
	c.Options.Volume = DefaultVolume
	c.Options.Backend = audio.BackendOto
	c.Options.LowSource = DefaultLowSource
	c.Options.LowIntervalMS = DefaultLowIntervalMS
	c.Options.LogLevel = DefaultLogLevel
	c.Options.MQTT.Topic = "alerttone/events"
	c.Options.MQTT.ClientID = "alerttone"
}

// UnmarshalJSON sets defaults then decodes the JSON structure.
// Go's json.Unmarshal merges into existing struct fields, so only
// values present in JSON override the defaults.
func (c *Config) UnmarshalJSON(data []byte) error {
	c.setDefaults()
	type Alias Config
	return json.Unmarshal(data, (*Alias)(c))
}

// LowInterval is LowIntervalMS as a time.Duration.
func (o Options) LowInterval() time.Duration {
	return time.Duration(o.LowIntervalMS) * time.Millisecond
}

// DBPath is the configured event log location, or the default one.
func (o Options) DBPath() string {
	if o.Storage != "" {
		return o.Storage
	}
	return paths.DBPath()
}

// Validate checks option ranges.
func Validate(cfg Config) error {
	o := cfg.Options
	if o.Volume < 0 || o.Volume > 100 {
		return fmt.Errorf("config: volume must be between 0 and 100, got %d", o.Volume)
	}
	if !slices.Contains(audio.Backends, o.Backend) {
		return fmt.Errorf("config: unknown backend %q (want one of %v)", o.Backend, audio.Backends)
	}
	if o.LowIntervalMS <= 0 {
		return fmt.Errorf("config: low_interval_ms must be positive, got %d", o.LowIntervalMS)
	}
	if o.LowSource == "" {
		return fmt.Errorf("config: low_source must not be empty")
	}
	if _, err := zap.ParseAtomicLevel(o.LogLevel); err != nil {
		return fmt.Errorf("config: log_level: %w", err)
	}
	if o.MQTT.Broker != "" && o.MQTT.Topic == "" {
		return fmt.Errorf("config: mqtt.topic is required when mqtt.broker is set")
	}
	if u := o.Webhook.URL; u != "" && !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		return fmt.Errorf("config: webhook.url must be an http(s) URL, got %q", u)
	}
	if o.MQTT.QoS > 2 {
		return fmt.Errorf("config: mqtt.qos must be 0, 1 or 2, got %d", o.MQTT.QoS)
	}
	return nil
}

// FindPath returns the config file that Load would read, or "" and false
// when none exists. It tries, in order:
//  1. explicitPath (if non-empty)
//  2. alerttone-config.json next to the running binary
//  3. the user config directory
func FindPath(explicitPath string) (string, bool) {
	if explicitPath != "" {
		return explicitPath, true
	}

	// Next to binary
	exe, err := os.Executable()
	if err == nil {
		p := filepath.Join(filepath.Dir(exe), paths.ConfigFileName)
		if _, err := os.Stat(p); err == nil {
			return p, true
		}
	}

	// User config directory
	home, err := os.UserHomeDir()
	if err == nil {
		var p string
		if runtime.GOOS == "windows" {
			p = filepath.Join(home, "AppData", "Roaming", paths.AppDirName, paths.ConfigFileName)
		} else {
			p = filepath.Join(home, ".config", paths.AppDirName, paths.ConfigFileName)
		}
		if _, err := os.Stat(p); err == nil {
			return p, true
		}
	}

	return "", false
}

// Load reads and parses the config file located by FindPath. An explicit
// path must exist; otherwise a missing file yields Default().
func Load(explicitPath string) (Config, error) {
	p, ok := FindPath(explicitPath)
	if !ok {
		return Default(), nil
	}
	return readConfig(p)
}

func readConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}
