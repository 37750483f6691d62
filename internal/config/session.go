package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/banshee-data/thermal.report/internal/thermal"
)

// DefaultConfigPath is the checked-in defaults file.
const DefaultConfigPath = "config/thermal.defaults.json"

// SessionConfig holds the viewer settings. Every field is optional; the Get*
// accessors supply the defaults for anything left unset.
type SessionConfig struct {
	// Battery geometry
	ModulesPerLayer []int `json:"modules_per_layer,omitempty" yaml:"modules_per_layer,omitempty"`

	// Colour scale bounds in degrees Celsius
	VMin *float64 `json:"vmin,omitempty" yaml:"vmin,omitempty"`
	VMax *float64 `json:"vmax,omitempty" yaml:"vmax,omitempty"`

	// Layouts
	LayoutsDir    *string `json:"layouts_dir,omitempty" yaml:"layouts_dir,omitempty"`
	DefaultLayout *string `json:"default_layout,omitempty" yaml:"default_layout,omitempty"`

	// Playback
	AutoplayInterval *string `json:"autoplay_interval,omitempty" yaml:"autoplay_interval,omitempty"` // duration string like "200ms"
	StepSize         *int    `json:"step_size,omitempty" yaml:"step_size,omitempty"`
}

func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// DefaultSessionConfig returns a config with every field set to its default.
func DefaultSessionConfig() *SessionConfig {
	return &SessionConfig{
		ModulesPerLayer:  thermal.DefaultModuleConfig().ModulesPerLayer,
		VMin:             ptrFloat64(15),
		VMax:             ptrFloat64(40),
		LayoutsDir:       ptrString("layouts"),
		DefaultLayout:    ptrString("HVB_340_800_L"),
		AutoplayInterval: ptrString(thermal.DefaultAutoplayInterval.String()),
		StepSize:         ptrInt(thermal.DefaultStepSize),
	}
}

// LoadSessionConfig loads a SessionConfig from a .json, .yaml or .yml file
// of at most 1MB. Fields omitted from the file fall back to defaults.
func LoadSessionConfig(path string) (*SessionConfig, error) {
	cleanPath := filepath.Clean(path)
	ext := strings.ToLower(filepath.Ext(cleanPath))
	if ext != ".json" && ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("config file must have .json, .yaml or .yml extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &SessionConfig{}
	if ext == ".json" {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configured values are usable.
func (c *SessionConfig) Validate() error {
	if c.ModulesPerLayer != nil {
		if err := c.ModuleConfig().Validate(); err != nil {
			return fmt.Errorf("modules_per_layer: %w", err)
		}
	}

	if c.GetVMin() >= c.GetVMax() {
		return fmt.Errorf("vmin (%g) must be below vmax (%g)", c.GetVMin(), c.GetVMax())
	}

	if c.AutoplayInterval != nil && *c.AutoplayInterval != "" {
		d, err := time.ParseDuration(*c.AutoplayInterval)
		if err != nil {
			return fmt.Errorf("invalid autoplay_interval '%s': %w", *c.AutoplayInterval, err)
		}
		if d <= 0 {
			return fmt.Errorf("autoplay_interval must be positive, got %s", d)
		}
	}

	if c.StepSize != nil && *c.StepSize <= 0 {
		return fmt.Errorf("step_size must be positive, got %d", *c.StepSize)
	}

	if c.DefaultLayout != nil && *c.DefaultLayout == "" {
		return fmt.Errorf("default_layout must not be empty")
	}

	return nil
}

// ModuleConfig returns the battery geometry.
func (c *SessionConfig) ModuleConfig() thermal.ModuleConfig {
	if c.ModulesPerLayer == nil {
		return thermal.DefaultModuleConfig()
	}
	return thermal.ModuleConfig{ModulesPerLayer: append([]int(nil), c.ModulesPerLayer...)}
}

// GetVMin returns the colour scale minimum or the default.
func (c *SessionConfig) GetVMin() float64 {
	if c.VMin == nil {
		return 15
	}
	return *c.VMin
}

// GetVMax returns the colour scale maximum or the default.
func (c *SessionConfig) GetVMax() float64 {
	if c.VMax == nil {
		return 40
	}
	return *c.VMax
}

// GetLayoutsDir returns the layout directory or the default.
func (c *SessionConfig) GetLayoutsDir() string {
	if c.LayoutsDir == nil || *c.LayoutsDir == "" {
		return "layouts"
	}
	return *c.LayoutsDir
}

// GetDefaultLayout returns the layout loaded at startup or the default.
func (c *SessionConfig) GetDefaultLayout() string {
	if c.DefaultLayout == nil || *c.DefaultLayout == "" {
		return "HVB_340_800_L"
	}
	return *c.DefaultLayout
}

// GetAutoplayInterval parses and returns the autoplay cadence.
func (c *SessionConfig) GetAutoplayInterval() time.Duration {
	if c.AutoplayInterval == nil || *c.AutoplayInterval == "" {
		return thermal.DefaultAutoplayInterval
	}
	d, err := time.ParseDuration(*c.AutoplayInterval)
	if err != nil || d <= 0 {
		return thermal.DefaultAutoplayInterval // default on parse error
	}
	return d
}

// GetStepSize returns the manual step size or the default.
func (c *SessionConfig) GetStepSize() int {
	if c.StepSize == nil || *c.StepSize <= 0 {
		return thermal.DefaultStepSize
	}
	return *c.StepSize
}
