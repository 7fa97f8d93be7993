package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root of the YAML configuration document.
type Config struct {
	Log        LogConfig        `yaml:"log"`
	Listen     ListenConfig     `yaml:"listen"`
	Scheduler  SchedulerConfig  `yaml:"scheduler"`
	Reconciler ReconcilerConfig `yaml:"reconciler"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

type ListenConfig struct {
	Admin string `yaml:"admin"`
}

type SchedulerConfig struct {
	Tick time.Duration `yaml:"tick"`
}

type ReconcilerConfig struct {
	Interval time.Duration `yaml:"interval"`
}

// Default returns the configuration used when no file is supplied, or to
// fill in fields a partial file leaves zero.
func Default() Config {
	return Config{
		Log: LogConfig{
			Level: "info",
			JSON:  false,
		},
		Listen: ListenConfig{
			Admin: "127.0.0.1:8090",
		},
		Scheduler: SchedulerConfig{
			Tick: 100 * time.Millisecond,
		},
		Reconciler: ReconcilerConfig{
			Interval: 30 * time.Second,
		},
	}
}

// Load reads and parses the YAML file at path, applying Default for any
// field the file leaves unset.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}
