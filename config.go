package claimflow

import (
	"fmt"
	"os"

	"github.com/viant/claimflow/service/messaging"
	"github.com/viant/claimflow/service/orchestrator"
	"gopkg.in/yaml.v3"
)

// Config is a serialisable representation of the service configuration. It
// can be populated from JSON or YAML. The zero-value is useful; all nested
// fields inherit their package defaults.
type Config struct {
	Queue   QueueConfig          `json:"queue" yaml:"queue"`
	Routing orchestrator.Routing `json:"routing" yaml:"routing"`
}

// QueueConfig selects and tunes the notification queue vendor.
type QueueConfig struct {
	Vendor   string `json:"vendor" yaml:"vendor"`
	BasePath string `json:"basePath" yaml:"basePath"`
	Buffer   int    `json:"buffer" yaml:"buffer"`
}

// DefaultConfig returns a Config populated with the package defaults.
func DefaultConfig() *Config {
	return &Config{
		Queue: QueueConfig{
			Vendor: string(messaging.VendorMemory),
			Buffer: 100,
		},
		Routing: orchestrator.DefaultRouting(),
	}
}

// LoadConfig reads a YAML configuration file, layering it over the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %v: %w", path, err)
	}
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config %v: %w", path, err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate returns an error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	switch messaging.Vendor(c.Queue.Vendor) {
	case messaging.VendorMemory:
	case messaging.VendorFS:
		if c.Queue.BasePath == "" {
			return fmt.Errorf("queue.basePath is required for the fs vendor")
		}
	default:
		return fmt.Errorf("unsupported queue.vendor: %q", c.Queue.Vendor)
	}
	if c.Queue.Buffer < 0 {
		return fmt.Errorf("queue.buffer must be >= 0")
	}
	return nil
}
