package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the root engine configuration. All values have working defaults;
// a config file only needs to override what it cares about.
type Config struct {
	World   WorldConfig   `yaml:"world"`
	Stream  StreamConfig  `yaml:"stream"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// WorldConfig controls generation of new chunks.
type WorldConfig struct {
	Seed int64 `yaml:"seed"` // 0 picks a random seed
	// GenerateFeatures toggles the post-terrain feature pass (trees, cacti,
	// snow layers). The world must behave correctly with this off.
	GenerateFeatures bool `yaml:"generate_features"`
}

// StreamConfig controls chunk loading, eviction and priority scoring.
// The priority weights and frame-time thresholds are playtested heuristics,
// not derived values; they are exposed here rather than hardcoded.
type StreamConfig struct {
	LoadRadius   int `yaml:"load_radius"`   // chunks, Chebyshev
	UnloadRadius int `yaml:"unload_radius"` // must exceed LoadRadius to avoid thrash
	Workers      int `yaml:"workers"`       // 0 = max(1, min(NumCPU-1, 4))
	MaxPending   int `yaml:"max_pending"`

	Weights PriorityWeights `yaml:"weights"`

	// BudgetThresholdsMs and Budgets form the frame-time step function:
	// frame times below thresholds[i] allow budgets[i] loads per tick, and
	// anything slower falls through to the final budget entry.
	BudgetThresholdsMs []float64 `yaml:"budget_thresholds_ms"`
	Budgets            []int     `yaml:"budgets"`
}

// PriorityWeights are the scoring coefficients for chunk load candidates.
type PriorityWeights struct {
	Distance float64 `yaml:"distance"`
	View     float64 `yaml:"view"`
	Frustum  float64 `yaml:"frustum"`
	Neighbor float64 `yaml:"neighbor"`
	Height   float64 `yaml:"height"`
}

// MetricsConfig controls the Prometheus endpoint of the cmd harness.
type MetricsConfig struct {
	Addr string `yaml:"addr"` // empty disables the endpoint
}

// Default returns the engine defaults.
func Default() *Config {
	return &Config{
		World: WorldConfig{
			Seed:             0,
			GenerateFeatures: true,
		},
		Stream: StreamConfig{
			LoadRadius:   8,
			UnloadRadius: 12,
			Workers:      0,
			MaxPending:   256,
			Weights: PriorityWeights{
				Distance: 0.35,
				View:     0.30,
				Frustum:  0.20,
				Neighbor: 0.10,
				Height:   0.05,
			},
			BudgetThresholdsMs: []float64{14, 20, 26, 33},
			Budgets:            []int{8, 6, 4, 2, 1},
		},
		Metrics: MetricsConfig{
			Addr: "",
		},
	}
}

// Load reads a YAML config file on top of the defaults. An empty path
// returns the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	s := &c.Stream
	if s.LoadRadius < 1 {
		return fmt.Errorf("stream.load_radius must be >= 1, got %d", s.LoadRadius)
	}
	if s.UnloadRadius <= s.LoadRadius {
		return fmt.Errorf("stream.unload_radius (%d) must exceed load_radius (%d)",
			s.UnloadRadius, s.LoadRadius)
	}
	if len(s.Budgets) != len(s.BudgetThresholdsMs)+1 {
		return fmt.Errorf("stream.budgets needs exactly one more entry than budget_thresholds_ms")
	}
	for i := 1; i < len(s.BudgetThresholdsMs); i++ {
		if s.BudgetThresholdsMs[i] <= s.BudgetThresholdsMs[i-1] {
			return fmt.Errorf("stream.budget_thresholds_ms must be strictly increasing")
		}
	}
	return nil
}
