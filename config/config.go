// Package config loads the controller's YAML configuration.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/BenvolioDAT/BeeHiveMind-sub002/intel"
	"github.com/BenvolioDAT/BeeHiveMind-sub002/metrics"
	"github.com/BenvolioDAT/BeeHiveMind-sub002/movement"
	"github.com/BenvolioDAT/BeeHiveMind-sub002/rules"
	"github.com/BenvolioDAT/BeeHiveMind-sub002/squad"
	"github.com/BenvolioDAT/BeeHiveMind-sub002/store"
)

// Config is the whole controller configuration. Every section has working
// defaults; a file only needs to name what it changes.
type Config struct {
	Log      LogConfig       `yaml:"log"`
	Socket   string          `yaml:"socket"`
	Movement movement.Config `yaml:"movement"`
	Intel    intel.Config    `yaml:"intel"`
	Squad    squad.Config    `yaml:"squad"`
	Posture  rules.Doctrine  `yaml:"posture"`
	Store    store.Config    `yaml:"store"`
	Metrics  metrics.Config  `yaml:"metrics"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

func Default() *Config {
	return &Config{
		Log:      LogConfig{Level: "info", Format: "text"},
		Socket:   "/tmp/beehive.sock",
		Movement: movement.DefaultConfig(),
		Intel:    intel.DefaultConfig(),
		Squad:    squad.DefaultConfig(),
		Posture:  rules.DefaultDoctrine(),
		Store:    store.DefaultConfig(),
		Metrics:  metrics.DefaultConfig(),
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %q: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %q: %w", path, err)
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q: want text or json", c.Log.Format))
	}
	if c.Socket == "" {
		errs = append(errs, errors.New("socket: empty path"))
	}

	if c.Movement.DefaultRange < 0 {
		errs = append(errs, fmt.Errorf("movement.default_range %d: must not be negative", c.Movement.DefaultRange))
	}

	in := c.Intel
	if in.FreshTTL <= 0 {
		errs = append(errs, fmt.Errorf("intel.fresh_ttl %d: must be positive", in.FreshTTL))
	}
	if in.RetainTTL < in.FreshTTL {
		errs = append(errs, fmt.Errorf("intel.retain_ttl %d: shorter than fresh_ttl %d", in.RetainTTL, in.FreshTTL))
	}
	if in.NearRange < 0 || in.FarRange <= in.NearRange {
		errs = append(errs, fmt.Errorf("intel ranges %d..%d: want 0 <= near < far", in.NearRange, in.FarRange))
	}
	if in.MinDamage < 0 || in.MaxDamage < in.MinDamage {
		errs = append(errs, fmt.Errorf("intel damage %.0f..%.0f: want 0 <= min <= max", in.MinDamage, in.MaxDamage))
	}
	if in.SafetyMargin < 1 {
		errs = append(errs, fmt.Errorf("intel.safety_margin %.2f: must be at least 1", in.SafetyMargin))
	}

	sq := c.Squad
	if sq.StandoffRange < 1 {
		errs = append(errs, fmt.Errorf("squad.standoff_range %d: must be at least 1", sq.StandoffRange))
	}
	if sq.GapThreshold < 0 {
		errs = append(errs, fmt.Errorf("squad.gap_threshold %d: must not be negative", sq.GapThreshold))
	}
	if sq.AttackSuffix == "" {
		errs = append(errs, errors.New("squad.attack_suffix: empty"))
	}

	switch c.Store.Backend {
	case "", "memory":
	case "sqlite":
		if c.Store.Path == "" {
			errs = append(errs, errors.New("store.path: required for sqlite"))
		}
	case "redis":
		if c.Store.RedisAddr == "" {
			errs = append(errs, errors.New("store.redis_addr: required for redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("store.backend %q: want memory, sqlite or redis", c.Store.Backend))
	}
	return errors.Join(errs...)
}

func (l LogConfig) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if l.Level == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("log.level %q: %w", l.Level, err)
	}
	return lvl, nil
}

// Handler builds the slog handler the config asks for.
func (l LogConfig) Handler(w io.Writer) slog.Handler {
	lvl, err := l.SlogLevel()
	if err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if l.Format == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}
