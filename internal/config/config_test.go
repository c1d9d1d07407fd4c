package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Faultbox/objrom/internal/logger"
	"github.com/Faultbox/objrom/internal/uvatlas"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Test path defaults
	if cfg.Paths.InputDir != "Input" {
		t.Errorf("expected input dir 'Input', got %s", cfg.Paths.InputDir)
	}
	if cfg.Paths.OutputDir != "Output" {
		t.Errorf("expected output dir 'Output', got %s", cfg.Paths.OutputDir)
	}
	if cfg.Paths.Extension != ".txt" {
		t.Errorf("expected extension '.txt', got %s", cfg.Paths.Extension)
	}
	if cfg.Batch.Workers != 1 {
		t.Errorf("expected 1 worker, got %d", cfg.Batch.Workers)
	}

	// Test profile defaults
	if len(cfg.Profiles) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(cfg.Profiles))
	}
	raw, centered := cfg.Profiles[0], cfg.Profiles[1]
	if raw.Suffix != "_raw" || raw.CenterVertices {
		t.Errorf("unexpected first profile: %+v", raw)
	}
	if centered.Suffix != "_centered" || !centered.CenterVertices {
		t.Errorf("unexpected second profile: %+v", centered)
	}
	for _, p := range cfg.Profiles {
		if !p.EmitVertexNormals || !p.EmitFaceNormals || !p.EmitUV || !p.EmitUVMips {
			t.Errorf("profile %s should emit every section", p.Suffix)
		}
		if !p.Winding.Normalize {
			t.Errorf("profile %s should normalize winding", p.Suffix)
		}
		if p.VertexScale != 128 {
			t.Errorf("profile %s: expected vertex scale 128, got %g", p.Suffix, p.VertexScale)
		}
	}

	// Test logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}
	file := cfg.Logging.FileConfig()
	if file.Path != "" || file.MaxSizeMB != 50 || file.MaxBackups != 3 || file.MaxAgeDays != 7 || !file.Compress {
		t.Errorf("unexpected rotation defaults %+v", file)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"no profiles", func(c *Config) { c.Profiles = nil }, ErrNoProfiles},
		{"empty suffix", func(c *Config) { c.Profiles[0].Suffix = "" }, ErrEmptySuffix},
		{"duplicate suffix", func(c *Config) { c.Profiles[1].Suffix = "_raw" }, ErrDuplicateSuffix},
		{"zero scale", func(c *Config) { c.Profiles[0].VertexScale = 0 }, ErrInvalidScale},
		{"bad wrap mode", func(c *Config) { c.Profiles[1].UV.WrapMode = "mirror" }, uvatlas.ErrUnknownAddressMode},
		{"zero workers", func(c *Config) { c.Batch.Workers = 0 }, ErrInvalidWorkers},
		{"extension without dot", func(c *Config) { c.Paths.Extension = "h" }, ErrInvalidExtension},
		{"unknown log level", func(c *Config) { c.Logging.Level = "chatty" }, logger.ErrUnknownLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, FileName)

	yamlContent := `
paths:
  input_dir: "models"
  output_dir: "generated"
  extension: ".h"

batch:
  workers: 4

source:
  encoding: "windows-1252"
  texture: false

profiles:
  - suffix: "_flat"
    emit_vertex_normals: false
    uv:
      force_pow2: true
      wrap_mode: "clamp"
  - suffix: "_inv"
    winding:
      invert: true
    vertex_scale: 64

logging:
  level: "debug"
  log_file: "objconv.log"
  max_size_mb: 5
  compress: false
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Load config
	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Verify values were loaded
	if cfg.Paths.InputDir != "models" || cfg.Paths.OutputDir != "generated" {
		t.Errorf("unexpected paths: %+v", cfg.Paths)
	}
	if cfg.Paths.Extension != ".h" {
		t.Errorf("expected extension '.h', got %s", cfg.Paths.Extension)
	}
	if cfg.Batch.Workers != 4 {
		t.Errorf("expected 4 workers, got %d", cfg.Batch.Workers)
	}
	if cfg.Source.Encoding != "windows-1252" || cfg.Source.Texture {
		t.Errorf("unexpected source config: %+v", cfg.Source)
	}

	if len(cfg.Profiles) != 2 {
		t.Fatalf("profiles in file should replace defaults, got %d", len(cfg.Profiles))
	}
	flat, inv := cfg.Profiles[0], cfg.Profiles[1]
	if flat.Suffix != "_flat" || flat.EmitVertexNormals {
		t.Errorf("unexpected first profile: %+v", flat)
	}
	if !flat.EmitFaceNormals || !flat.Winding.Normalize || flat.VertexScale != 128 {
		t.Errorf("omitted fields should keep profile defaults: %+v", flat)
	}
	if !flat.UV.ForcePow2 || flat.UV.WrapMode != "clamp" || flat.UV.MipMinSize != 4 {
		t.Errorf("unexpected uv config: %+v", flat.UV)
	}
	if !inv.Winding.Invert || !inv.Winding.Normalize {
		t.Errorf("unexpected winding: %+v", inv.Winding)
	}
	if inv.VertexScale != 64 {
		t.Errorf("expected vertex scale 64, got %g", inv.VertexScale)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "objconv.log" {
		t.Errorf("expected log file 'objconv.log', got %s", cfg.Logging.LogFile)
	}
	file := cfg.Logging.FileConfig()
	if file.Path != "objconv.log" || file.MaxSizeMB != 5 || file.Compress || file.MaxBackups != 3 {
		t.Errorf("rotation settings should merge over defaults, got %+v", file)
	}
}

func TestLoadFromFileKeepsDefaultProfiles(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, FileName)
	if err := os.WriteFile(configPath, []byte("batch:\n  workers: 2\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if len(cfg.Profiles) != 2 || cfg.Profiles[0].Suffix != "_raw" {
		t.Errorf("default profiles should survive a file without profiles, got %+v", cfg.Profiles)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	// Create temporary config file with invalid YAML
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
batch:
  workers: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Try to load - should error
	cfg := Default()
	err := loadFromFile(cfg, configPath)
	if err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	err := loadFromFile(cfg, "/nonexistent/path/objconv.yaml")
	if err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	// Just verify it returns a non-empty path
	// Actual path depends on OS
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}

	// Verify path is absolute
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	// Save current directory
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	// Keep the user config dir out of the search
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	// Create temp directory and change to it
	tmpDir := t.TempDir()
	os.Chdir(tmpDir)

	// No config file exists - should return empty
	path := findConfigFile()
	if path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	// Create objconv.yaml in current directory
	configPath := filepath.Join(tmpDir, FileName)
	if err := os.WriteFile(configPath, []byte("batch:\n  workers: 2\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	// Should find it now
	path = findConfigFile()
	if path == "" {
		t.Error("expected to find objconv.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*Config)
		teardown func()
	}{
		{
			name: "debug flag",
			setup: func() {
				*flagDebug = true
			},
			verify: func(cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() {
				*flagDebug = false
			},
		},
		{
			name: "path flags",
			setup: func() {
				*flagInput = "in"
				*flagOutput = "out"
				*flagFile = "cube.obj"
			},
			verify: func(cfg *Config) {
				if cfg.Paths.InputDir != "in" || cfg.Paths.OutputDir != "out" || cfg.Paths.File != "cube.obj" {
					t.Errorf("unexpected paths: %+v", cfg.Paths)
				}
			},
			teardown: func() {
				*flagInput = ""
				*flagOutput = ""
				*flagFile = ""
			},
		},
		{
			name: "workers flag",
			setup: func() {
				*flagWorkers = 8
			},
			verify: func(cfg *Config) {
				if cfg.Batch.Workers != 8 {
					t.Errorf("expected 8 workers, got %d", cfg.Batch.Workers)
				}
			},
			teardown: func() {
				*flagWorkers = 0
			},
		},
		{
			name: "encoding and log file flags",
			setup: func() {
				*flagEncoding = "euc-kr"
				*flagLogFile = "run.log"
			},
			verify: func(cfg *Config) {
				if cfg.Source.Encoding != "euc-kr" {
					t.Errorf("expected encoding euc-kr, got %s", cfg.Source.Encoding)
				}
				if cfg.Logging.LogFile != "run.log" {
					t.Errorf("expected log file run.log, got %s", cfg.Logging.LogFile)
				}
			},
			teardown: func() {
				*flagEncoding = ""
				*flagLogFile = ""
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup
			tt.setup()
			defer tt.teardown()

			// Apply flags to default config
			cfg := Default()
			applyFlags(cfg)

			// Verify
			tt.verify(cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, FileName)

	yamlContent := `
paths:
  input_dir: "from-file"
  output_dir: "out-from-file"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Set flag to override config file
	*flagConfig = configPath
	*flagInput = "from-flag"
	defer func() {
		*flagConfig = ""
		*flagInput = ""
	}()

	// Load config
	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Input should be from flag, not file
	if cfg.Paths.InputDir != "from-flag" {
		t.Errorf("expected input dir from flag, got %s", cfg.Paths.InputDir)
	}

	// Output should be from file since no flag override
	if cfg.Paths.OutputDir != "out-from-file" {
		t.Errorf("expected output dir from file, got %s", cfg.Paths.OutputDir)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, FileName)
	yamlContent := "profiles:\n  - suffix: \"_a\"\n  - suffix: \"_a\"\n"
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	defer func() { *flagConfig = "" }()

	if _, err := Load(); !errors.Is(err, ErrDuplicateSuffix) {
		t.Errorf("expected ErrDuplicateSuffix, got %v", err)
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", FileName)

	cfg := Default()
	cfg.Batch.Workers = 3
	cfg.Profiles[0].UV.VFlip = true
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("failed to reload saved config: %v", err)
	}
	if loaded.Batch.Workers != 3 {
		t.Errorf("expected 3 workers after reload, got %d", loaded.Batch.Workers)
	}
	if !loaded.Profiles[0].UV.VFlip || loaded.Profiles[1].UV.VFlip {
		t.Errorf("v_flip did not round trip: %+v", loaded.Profiles)
	}
}

func TestSave(t *testing.T) {
	// Point the user config dir at a temp dir on every OS.
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)
	t.Setenv("HOME", home)
	t.Setenv("APPDATA", home)

	cfg := Default()
	cfg.Paths.InputDir = "saved-input"
	path, err := cfg.Save()
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if path != filepath.Join(ConfigDir(), FileName) {
		t.Errorf("Save wrote %s, want the user config dir", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read saved config: %v", err)
	}
	if !strings.HasPrefix(string(data), "#") {
		t.Error("saved config should start with a comment header")
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("failed to reload saved config: %v", err)
	}
	if loaded.Paths.InputDir != "saved-input" {
		t.Errorf("expected saved input dir, got %s", loaded.Paths.InputDir)
	}
}
