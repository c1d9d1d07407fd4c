// Package config handles converter configuration loading and management.
package config

import (
	"errors"
	"fmt"

	"github.com/Faultbox/objrom/internal/logger"
	"github.com/Faultbox/objrom/internal/uvatlas"
)

// Validation errors.
var (
	ErrNoProfiles       = errors.New("no output profiles configured")
	ErrEmptySuffix      = errors.New("profile suffix is empty")
	ErrDuplicateSuffix  = errors.New("duplicate profile suffix")
	ErrInvalidScale     = errors.New("vertex scale must be positive")
	ErrInvalidWorkers   = errors.New("worker count must be at least 1")
	ErrInvalidExtension = errors.New("output extension must start with a dot")
)

// Config holds all converter settings.
type Config struct {
	Paths    PathsConfig   `yaml:"paths"`
	Batch    BatchConfig   `yaml:"batch"`
	Source   SourceConfig  `yaml:"source"`
	Profiles []Profile     `yaml:"profiles"`
	Logging  LoggingConfig `yaml:"logging"`
}

// PathsConfig holds input and output locations.
type PathsConfig struct {
	InputDir  string `yaml:"input_dir"`
	OutputDir string `yaml:"output_dir"`
	File      string `yaml:"file"`      // Convert only this file name from InputDir
	Extension string `yaml:"extension"` // Output file extension
}

// BatchConfig holds batch processing settings.
type BatchConfig struct {
	Workers int `yaml:"workers"` // Files converted concurrently
}

// SourceConfig describes how input files are read.
type SourceConfig struct {
	Encoding string `yaml:"encoding"` // IANA charset of OBJ text, empty for UTF-8
	Texture  bool   `yaml:"texture"`  // Look for a same-stem texture beside each OBJ
}

// Profile is one output variant. Every input file is converted once per profile.
type Profile struct {
	Suffix            string        `yaml:"suffix"`
	CenterVertices    bool          `yaml:"center_vertices"`
	Winding           WindingConfig `yaml:"winding"`
	EmitVertexNormals bool          `yaml:"emit_vertex_normals"`
	EmitFaceNormals   bool          `yaml:"emit_face_normals"`
	EmitUV            bool          `yaml:"emit_uv"`
	EmitUVMips        bool          `yaml:"emit_uv_mips"`
	UV                UVConfig      `yaml:"uv"`
	VertexScale       float64       `yaml:"vertex_scale"`
	UnitMacro         bool          `yaml:"unit_macro"` // Print VERTEX16_UNIT for ±8192 normal components
}

// WindingConfig holds triangle orientation settings.
type WindingConfig struct {
	Normalize bool `yaml:"normalize"`
	Invert    bool `yaml:"invert"`
}

// UVConfig holds texture coordinate grid settings.
type UVConfig struct {
	ForcePow2  bool   `yaml:"force_pow2"`
	VFlip      bool   `yaml:"v_flip"`
	WrapMode   string `yaml:"wrap_mode"` // auto, clamp or wrap
	MipMinSize int    `yaml:"mip_min_size"`
}

// LoggingConfig holds logging settings. The rotation fields apply only with LogFile.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	LogFile    string `yaml:"log_file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// FileConfig returns the rotating file settings for the logger.
func (l LoggingConfig) FileConfig() logger.FileConfig {
	return logger.FileConfig{
		Path:       l.LogFile,
		MaxSizeMB:  l.MaxSizeMB,
		MaxBackups: l.MaxBackups,
		MaxAgeDays: l.MaxAgeDays,
		Compress:   l.Compress,
	}
}

// DefaultProfile returns a profile with every output section enabled.
func DefaultProfile(suffix string, center bool) Profile {
	return Profile{
		Suffix:            suffix,
		CenterVertices:    center,
		Winding:           WindingConfig{Normalize: true},
		EmitVertexNormals: true,
		EmitFaceNormals:   true,
		EmitUV:            true,
		EmitUVMips:        true,
		UV: UVConfig{
			ForcePow2:  false,
			WrapMode:   uvatlas.AddressAuto.String(),
			MipMinSize: 4,
		},
		VertexScale: 128,
		UnitMacro:   true,
	}
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			InputDir:  "Input",
			OutputDir: "Output",
			Extension: ".txt",
		},
		Batch: BatchConfig{
			Workers: 1,
		},
		Source: SourceConfig{
			Texture: true,
		},
		Profiles: []Profile{
			DefaultProfile("_raw", false),
			DefaultProfile("_centered", true),
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 7,
			Compress:   true,
		},
	}
}

// AddressMode parses the profile's wrap mode.
func (p Profile) AddressMode() (uvatlas.AddressMode, error) {
	return uvatlas.ParseAddressMode(p.UV.WrapMode)
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if len(c.Profiles) == 0 {
		return ErrNoProfiles
	}
	if c.Batch.Workers < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidWorkers, c.Batch.Workers)
	}
	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if c.Paths.Extension != "" && c.Paths.Extension[0] != '.' {
		return fmt.Errorf("%w: %q", ErrInvalidExtension, c.Paths.Extension)
	}

	seen := make(map[string]bool, len(c.Profiles))
	for i, p := range c.Profiles {
		if p.Suffix == "" {
			return fmt.Errorf("profile %d: %w", i, ErrEmptySuffix)
		}
		if seen[p.Suffix] {
			return fmt.Errorf("profile %d: %w: %q", i, ErrDuplicateSuffix, p.Suffix)
		}
		seen[p.Suffix] = true

		if p.VertexScale <= 0 {
			return fmt.Errorf("profile %q: %w: got %g", p.Suffix, ErrInvalidScale, p.VertexScale)
		}
		if _, err := p.AddressMode(); err != nil {
			return fmt.Errorf("profile %q: %w", p.Suffix, err)
		}
	}
	return nil
}
