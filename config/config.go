// Package config loads the settings of an arbor World from YAML.
package config

import (
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	BroadPhaseNaive = "naive"
	BroadPhaseGrid  = "grid"
)

type Config struct {
	LogLevel string `yaml:"log_level"`

	// Workers is the number of goroutines running the narrow phase of a sweep.
	Workers int `yaml:"workers"`

	BroadPhase       BroadPhase       `yaml:"broad_phase"`
	ColliderDefaults ColliderDefaults `yaml:"collider_defaults"`
	Inspector        Inspector        `yaml:"inspector"`
}

// BroadPhase selects how candidate pairs are found before the exact tests.
// The grid only pays off with many colliders spread over a large area.
type BroadPhase struct {
	Kind     string  `yaml:"kind"`
	CellSize float64 `yaml:"cell_size"`
	Cells    int     `yaml:"cells"`
}

// ColliderDefaults are the flags every new collider starts with
type ColliderDefaults struct {
	BlockScreencasts bool `yaml:"block_screencasts"`
	BlockRaycasts    bool `yaml:"block_raycasts"`
	ReceiveRaycasts  bool `yaml:"receive_raycasts"`
}

type Inspector struct {
	Addr string `yaml:"addr"`
	// SnapshotEvery publishes a scene snapshot every N steps; 0 disables publishing.
	SnapshotEvery int `yaml:"snapshot_every"`
}

func Default() Config {
	return Config{
		LogLevel: "info",
		Workers:  1,
		BroadPhase: BroadPhase{
			Kind:     BroadPhaseNaive,
			CellSize: 4,
			Cells:    1024,
		},
		ColliderDefaults: ColliderDefaults{
			BlockScreencasts: true,
		},
		Inspector: Inspector{
			Addr:          "127.0.0.1:8042",
			SnapshotEvery: 1,
		},
	}
}

// Parse reads YAML on top of Default, so missing keys keep their default value.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(err, "Failed to decode config")
	}

	return cfg, cfg.Validate()
}

func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Default(), errors.Wrapf(err, "Failed to read config %q", path)
	}

	cfg, err := Parse(data)
	if err != nil {
		return cfg, errors.Wrapf(err, "Invalid config %q", path)
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if _, err := c.Level(); err != nil {
		return err
	}

	if c.Workers < 1 {
		return errors.Errorf("workers must be at least 1, got %v", c.Workers)
	}

	switch c.BroadPhase.Kind {
	case BroadPhaseNaive:
	case BroadPhaseGrid:
		if c.BroadPhase.CellSize <= 0 {
			return errors.Errorf("broad_phase.cell_size must be positive, got %v", c.BroadPhase.CellSize)
		}
		if c.BroadPhase.Cells <= 0 {
			return errors.Errorf("broad_phase.cells must be positive, got %v", c.BroadPhase.Cells)
		}
	default:
		return errors.Errorf("unknown broad_phase.kind %q", c.BroadPhase.Kind)
	}

	if c.Inspector.SnapshotEvery < 0 {
		return errors.Errorf("inspector.snapshot_every must not be negative, got %v", c.Inspector.SnapshotEvery)
	}

	return nil
}

// Level parses LogLevel
func (c Config) Level() (logrus.Level, error) {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel, errors.Wrap(err, "Invalid log_level")
	}

	return level, nil
}
