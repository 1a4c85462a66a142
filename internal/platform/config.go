package platform

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/lattice/pkg/core"
	"github.com/aretw0/lattice/pkg/server"
	"github.com/aretw0/lattice/pkg/wire"
)

// ConfigFile is the default configuration file name.
const ConfigFile = "lattice.yaml"

// Config is the on-disk server configuration. JSON is accepted too,
// being a subset of YAML.
type Config struct {
	StoragePath  string      `yaml:"storage_path" validate:"required"`
	LogFormat    core.Format `yaml:"log_format" validate:"oneof=bin text badger"`
	Host         string      `yaml:"host" validate:"required"`
	Port         int         `yaml:"port" validate:"min=1,max=65535"`
	Workers      int         `yaml:"workers" validate:"min=1"`
	Sync         bool        `yaml:"sync"`
	MaxFrameSize uint64      `yaml:"max_frame_size"`
	MetricsAddr  string      `yaml:"metrics_addr,omitempty" validate:"omitempty,hostname_port"`
}

// DefaultConfig returns the configuration written on first start.
func DefaultConfig() Config {
	return Config{
		StoragePath:  "./db.bin",
		LogFormat:    core.FormatBinary,
		Host:         "0.0.0.0",
		Port:         4000,
		Workers:      server.DefaultWorkers,
		Sync:         true,
		MaxFrameSize: wire.DefaultMaxFrameSize,
	}
}

// Addr is the listen address built from Host and Port.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

var validate = validator.New()

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// LoadConfig reads the configuration at path. Missing fields keep their
// defaults. When the file does not exist it is created from DefaultConfig.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg := DefaultConfig()
		out, err := yaml.Marshal(cfg)
		if err != nil {
			return cfg, err
		}
		if err := writeFileAtomic(path, out, 0644); err != nil {
			return cfg, fmt.Errorf("failed to write default config: %w", err)
		}
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return parseConfig(path, data)
}

// readConfig loads path without creating it.
func readConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return parseConfig(path, data)
}

func parseConfig(path string, data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}
