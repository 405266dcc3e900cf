// Package config loads process configuration for the harbor command.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no --config flag is given. A missing default file is not an error.
const DefaultPath = "harbor.yaml"

// Checkpointer kinds.
const (
	KindNone   = "none"
	KindMemory = "memory"
	KindRedis  = "redis"
	KindFile   = "file"
)

// Config is the process configuration.
type Config struct {
	LogLevel     string       `yaml:"log_level" json:"log_level" validate:"oneof=debug info warn error"`
	LogFormat    string       `yaml:"log_format" json:"log_format" validate:"oneof=text json"`
	MaxSteps     int          `yaml:"max_steps" json:"max_steps" validate:"min=1"`
	Checkpointer Checkpointer `yaml:"checkpointer" json:"checkpointer"`
	HTTP         HTTP         `yaml:"http" json:"http"`
	Metrics      Metrics      `yaml:"metrics" json:"metrics"`
}

// Checkpointer selects where thread checkpoints live.
type Checkpointer struct {
	Kind     string        `yaml:"kind" json:"kind" validate:"oneof=none memory redis file"`
	Addr     string        `yaml:"addr" json:"addr" validate:"required_if=Kind redis"`
	Password string        `yaml:"password" json:"password"`
	DB       int           `yaml:"db" json:"db" validate:"min=0"`
	Prefix   string        `yaml:"prefix" json:"prefix"`
	TTL      time.Duration `yaml:"ttl" json:"ttl" validate:"min=0"`
	Dir      string        `yaml:"dir" json:"dir"`
}

// HTTP configures the serve command.
type HTTP struct {
	Addr string `yaml:"addr" json:"addr" validate:"required,hostname_port"`
}

// Metrics configures the Prometheus endpoint. An empty Addr serves /metrics on the HTTP listener.
type Metrics struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Addr    string `yaml:"addr" json:"addr" validate:"omitempty,hostname_port"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		LogLevel:     "info",
		LogFormat:    "text",
		MaxSteps:     25,
		Checkpointer: Checkpointer{Kind: KindMemory},
		HTTP:         HTTP{Addr: "localhost:8080"},
		Metrics:      Metrics{Enabled: true},
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads path (YAML, or JSON for a .json extension) over the defaults.
// When path is the default and the file does not exist, the defaults are returned.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	if err := Parse(data, filepath.Ext(path), &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse decodes data into cfg by extension and validates the result.
func Parse(data []byte, ext string, cfg *Config) error {
	switch strings.ToLower(ext) {
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse json config: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse yaml config: %w", err)
		}
	}
	return Validate(*cfg)
}

// Validate checks the struct tags of cfg.
func Validate(cfg Config) error {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %q rule", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
