package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config failed validation: %v", err)
	}
}

func TestDefaultBands(t *testing.T) {
	cfg := Default()

	if len(cfg.Colors.Red) != 2 {
		t.Errorf("expected 2 red bands for the hue wraparound, got %d", len(cfg.Colors.Red))
	}
	if len(cfg.Colors.Green) != 2 {
		t.Errorf("expected 2 green bands, got %d", len(cfg.Colors.Green))
	}
	if len(cfg.Colors.Blue) != 1 {
		t.Errorf("expected 1 blue band, got %d", len(cfg.Colors.Blue))
	}

	// The red high band must reach the top of the hue scale so that
	// wrapped reds are still accepted.
	high := cfg.Colors.Red[1]
	if high.Hi[0] != 180 {
		t.Errorf("red high band ends at hue %g, want 180", high.Hi[0])
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"inverted hue band", func(c *Config) {
			c.Colors.Blue[0].Lo[0] = 140
		}},
		{"hue above 180", func(c *Config) {
			c.Colors.Blue[0].Hi[0] = 200
		}},
		{"no bands", func(c *Config) {
			c.Colors.Green = nil
		}},
		{"even kernel", func(c *Config) {
			c.Cleanup.OpenKernel = 4
		}},
		{"min above max area", func(c *Config) {
			c.Cleanup.MinAreaFrac = 0.8
		}},
		{"area fraction above 1", func(c *Config) {
			c.Cleanup.MaxAreaFrac = 1.5
		}},
		{"empty subdir", func(c *Config) {
			c.Output.MaskDir = ""
		}},
		{"extension without dot", func(c *Config) {
			c.Batch.Extensions = []string{"png"}
		}},
		{"zero workers", func(c *Config) {
			c.Batch.Workers = 0
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestLoadRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Cleanup.MinAreaFrac = 0.002
	cfg.Batch.Workers = 4

	path := filepath.Join(t.TempDir(), "autolabel.json")
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Cleanup.MinAreaFrac != 0.002 {
		t.Errorf("min_area_frac = %g, want 0.002", loaded.Cleanup.MinAreaFrac)
	}
	if loaded.Batch.Workers != 4 {
		t.Errorf("workers = %d, want 4", loaded.Batch.Workers)
	}
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`{"cleanup":{"open_kernel":2}}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for even kernel size, got nil")
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file, got nil")
	}
}
