// Package config holds the tunable numeric tables for the auto-labeling
// pipeline: HSV acceptance ranges per target color, morphological cleanup
// kernels, and connected-component area bounds. The tables are loaded once
// at startup and treated as read-only for the rest of the run.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// HSVRange is one inclusive acceptance region in OpenCV's HSV convention
// (H in 0-180, S and V in 0-255). Channel order is [hue, sat, val].
type HSVRange struct {
	Lo [3]float64 `json:"lo"`
	Hi [3]float64 `json:"hi"`
}

// ColorsConfig holds the per-color threshold bands. Red needs two bands
// because its hue wraps across 0; green uses two overlapping bands to
// cover both deep and yellowish greens under varying light.
type ColorsConfig struct {
	Red   []HSVRange `json:"red"`
	Green []HSVRange `json:"green"`
	Blue  []HSVRange `json:"blue"`
}

// CleanupConfig holds mask post-processing parameters.
type CleanupConfig struct {
	OpenKernel  int     `json:"open_kernel"`   // square SE for speck removal
	CloseKernel int     `json:"close_kernel"`  // square SE for gap filling
	MinAreaFrac float64 `json:"min_area_frac"` // components below this fraction of H*W are noise
	MaxAreaFrac float64 `json:"max_area_frac"` // above this, a full-frame lighting accident
}

// OutputConfig holds output directory layout and rendering parameters.
type OutputConfig struct {
	MaskDir          string `json:"mask_dir"`
	OverlayDir       string `json:"overlay_dir"`
	GrayDir          string `json:"gray_dir"`
	ReportName       string `json:"report_name"`
	OverlayThickness int    `json:"overlay_thickness"`
}

// BatchConfig holds directory-scan and scheduling parameters.
type BatchConfig struct {
	Extensions []string `json:"extensions"` // matched case-insensitively
	Workers    int      `json:"workers"`
}

// Config is the full pipeline configuration.
type Config struct {
	Colors  ColorsConfig  `json:"colors"`
	Cleanup CleanupConfig `json:"cleanup"`
	Output  OutputConfig  `json:"output"`
	Batch   BatchConfig   `json:"batch"`
}

// Default returns the stock configuration. The HSV bands are tuned for
// saturated PLA colors photographed under indoor light.
func Default() *Config {
	return &Config{
		Colors: ColorsConfig{
			Red: []HSVRange{
				{Lo: [3]float64{0, 80, 70}, Hi: [3]float64{10, 255, 255}},    // low band
				{Lo: [3]float64{170, 80, 70}, Hi: [3]float64{180, 255, 255}}, // high band (hue wrap)
			},
			Green: []HSVRange{
				{Lo: [3]float64{40, 70, 60}, Hi: [3]float64{85, 255, 255}}, // true greens
				{Lo: [3]float64{35, 70, 60}, Hi: [3]float64{55, 255, 255}}, // yellowish greens
			},
			Blue: []HSVRange{
				{Lo: [3]float64{95, 80, 60}, Hi: [3]float64{135, 255, 255}},
			},
		},
		Cleanup: CleanupConfig{
			OpenKernel:  5,
			CloseKernel: 7,
			MinAreaFrac: 0.001,
			MaxAreaFrac: 0.7,
		},
		Output: OutputConfig{
			MaskDir:          "masks_shape",
			OverlayDir:       "overlays",
			GrayDir:          "grayscale",
			ReportName:       "report.json",
			OverlayThickness: 3,
		},
		Batch: BatchConfig{
			Extensions: []string{".jpg", ".jpeg", ".png", ".heic"},
			Workers:    1,
		},
	}
}

// Load reads a configuration from a JSON file and validates it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration to a JSON file.
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks that every numeric table is internally consistent.
func (c *Config) Validate() error {
	for name, bands := range map[string][]HSVRange{
		"red":   c.Colors.Red,
		"green": c.Colors.Green,
		"blue":  c.Colors.Blue,
	} {
		if len(bands) == 0 {
			return fmt.Errorf("color %q has no threshold bands", name)
		}
		for i, b := range bands {
			if err := b.validate(); err != nil {
				return fmt.Errorf("color %q band %d: %w", name, i, err)
			}
		}
	}

	if c.Cleanup.OpenKernel < 1 || c.Cleanup.OpenKernel%2 == 0 {
		return fmt.Errorf("open_kernel must be a positive odd size, got %d", c.Cleanup.OpenKernel)
	}
	if c.Cleanup.CloseKernel < 1 || c.Cleanup.CloseKernel%2 == 0 {
		return fmt.Errorf("close_kernel must be a positive odd size, got %d", c.Cleanup.CloseKernel)
	}
	if c.Cleanup.MinAreaFrac < 0 || c.Cleanup.MaxAreaFrac > 1 ||
		c.Cleanup.MinAreaFrac >= c.Cleanup.MaxAreaFrac {
		return fmt.Errorf("area fractions must satisfy 0 <= min < max <= 1, got [%g, %g]",
			c.Cleanup.MinAreaFrac, c.Cleanup.MaxAreaFrac)
	}

	if c.Output.MaskDir == "" || c.Output.OverlayDir == "" || c.Output.GrayDir == "" {
		return fmt.Errorf("output subdirectory names must not be empty")
	}
	if c.Output.ReportName == "" {
		return fmt.Errorf("report_name must not be empty")
	}
	if c.Output.OverlayThickness < 1 {
		return fmt.Errorf("overlay_thickness must be >= 1, got %d", c.Output.OverlayThickness)
	}

	if len(c.Batch.Extensions) == 0 {
		return fmt.Errorf("extension allow-list must not be empty")
	}
	for _, ext := range c.Batch.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("extension %q must start with a dot", ext)
		}
	}
	if c.Batch.Workers < 1 {
		return fmt.Errorf("workers must be >= 1, got %d", c.Batch.Workers)
	}

	return nil
}

func (r HSVRange) validate() error {
	for ch := 0; ch < 3; ch++ {
		if r.Lo[ch] > r.Hi[ch] {
			return fmt.Errorf("lower bound %g above upper bound %g in channel %d",
				r.Lo[ch], r.Hi[ch], ch)
		}
	}
	if r.Lo[0] < 0 || r.Hi[0] > 180 {
		return fmt.Errorf("hue bounds [%g, %g] outside 0-180", r.Lo[0], r.Hi[0])
	}
	for ch := 1; ch < 3; ch++ {
		if r.Lo[ch] < 0 || r.Hi[ch] > 255 {
			return fmt.Errorf("bounds [%g, %g] outside 0-255 in channel %d",
				r.Lo[ch], r.Hi[ch], ch)
		}
	}
	return nil
}
