// Package config loads stagehand settings from a YAML or JSON file and the environment.
package config

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/stagehand/internal/logging"
	"github.com/aretw0/stagehand/internal/runtime"
	"github.com/aretw0/stagehand/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. STAGEHAND_LOG_LEVEL.
const EnvPrefix = "STAGEHAND_"

// Config is the full set of runtime settings.
type Config struct {
	Host    runtime.HostInfo `mapstructure:"host" yaml:"host" json:"host"`
	Log     LogConfig        `mapstructure:"log" yaml:"log" json:"log"`
	HTTP    HTTPConfig       `mapstructure:"http" yaml:"http" json:"http"`
	Redis   RedisConfig      `mapstructure:"redis" yaml:"redis" json:"redis"`
	Store   StoreConfig      `mapstructure:"store" yaml:"store" json:"store"`
	Engines []string         `mapstructure:"engines" yaml:"engines" json:"engines"`
}

type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level" json:"level"`
	// JSON switches the handler from text to JSON.
	JSON bool `mapstructure:"json" yaml:"json" json:"json"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr" json:"addr"`
}

// RedisConfig enables the Redis descriptor store when Addr is set.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr" yaml:"addr" json:"addr"`
	Password string        `mapstructure:"password" yaml:"password" json:"password"`
	DB       int           `mapstructure:"db" yaml:"db" json:"db"`
	Prefix   string        `mapstructure:"prefix" yaml:"prefix" json:"prefix"`
	TTL      time.Duration `mapstructure:"ttl" yaml:"ttl" json:"ttl"`
}

// StoreConfig wraps the descriptor store with persistence middleware.
type StoreConfig struct {
	// EncryptionKey is a base64 AES-256 key. Empty disables encryption.
	EncryptionKey string   `mapstructure:"encryption_key" yaml:"encryption_key" json:"encryption_key"`
	FallbackKeys  []string `mapstructure:"fallback_keys" yaml:"fallback_keys" json:"fallback_keys"`
	// RedactParams are regular expressions; matching URL parameters are masked before storage.
	RedactParams []string `mapstructure:"redact_params" yaml:"redact_params" json:"redact_params"`
}

// Keys decodes the active and fallback encryption keys. It returns nil keys
// when encryption is disabled.
func (s StoreConfig) Keys() (active []byte, fallback [][]byte, err error) {
	if s.EncryptionKey == "" {
		return nil, nil, nil
	}
	if active, err = base64.StdEncoding.DecodeString(s.EncryptionKey); err != nil {
		return nil, nil, fmt.Errorf("config: store encryption key: %w", err)
	}
	for i, k := range s.FallbackKeys {
		key, err := base64.StdEncoding.DecodeString(k)
		if err != nil {
			return nil, nil, fmt.Errorf("config: store fallback key %d: %w", i, err)
		}
		fallback = append(fallback, key)
	}
	return active, fallback, nil
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Log:     LogConfig{Level: "info"},
		HTTP:    HTTPConfig{Addr: ":8080"},
		Engines: []string{domain.DefaultEngineID},
	}
}

// Load reads path (if non-empty) over the defaults, then applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := readFile(path)
		if err != nil {
			return Config{}, err
		}
		if err := decode(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to decode %s: %w", path, err)
		}
	}

	if err := decode(envOverrides(os.Environ()), &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that cannot be defaulted.
func (c Config) Validate() error {
	if len(c.Engines) == 0 {
		return fmt.Errorf("config: at least one engine is required")
	}
	for _, id := range c.Engines {
		if strings.TrimSpace(id) == "" {
			return fmt.Errorf("config: engine id must not be empty")
		}
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil && c.Log.Level != "off" {
		return fmt.Errorf("config: %w", err)
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("config: redis db must not be negative")
	}
	active, _, err := c.Store.Keys()
	if err != nil {
		return err
	}
	if active != nil && len(active) != 32 {
		return fmt.Errorf("config: store encryption key must decode to 32 bytes, got %d", len(active))
	}
	return nil
}

// SuppressionRule returns the quirk rule implied by the host settings.
func (c Config) SuppressionRule() runtime.SuppressionRule {
	return runtime.RuleForHost(c.Host)
}

func readFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	raw := make(map[string]any)
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		return raw, nil
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return raw, nil
}

func decode(raw map[string]any, out *Config) error {
	if len(raw) == 0 {
		return nil
	}
	if _, ok := raw["engines"]; ok {
		out.Engines = nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}

// envOverrides maps STAGEHAND_SECTION_KEY=value pairs onto the config tree.
// STAGEHAND_ENGINES is a comma separated list.
func envOverrides(environ []string) map[string]any {
	raw := make(map[string]any)
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, EnvPrefix) {
			continue
		}
		path := strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
		if path == "engines" {
			raw["engines"] = value
			continue
		}
		section, field, ok := strings.Cut(path, "_")
		if !ok {
			continue
		}
		m, _ := raw[section].(map[string]any)
		if m == nil {
			m = make(map[string]any)
			raw[section] = m
		}
		m[field] = value
	}
	return raw
}
