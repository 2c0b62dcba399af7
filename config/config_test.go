package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Execution.MaxCycles != 0 {
		t.Errorf("Expected MaxCycles=0, got %d", cfg.Execution.MaxCycles)
	}
	if cfg.Execution.DefaultSrc != "main.krm" {
		t.Errorf("Expected DefaultSrc=main.krm, got %s", cfg.Execution.DefaultSrc)
	}

	if !cfg.Assembler.Lint {
		t.Error("Expected Lint=true")
	}
	if !cfg.Assembler.WarnUnusedLabel {
		t.Error("Expected WarnUnusedLabel=true")
	}

	if cfg.Disassembler.CommandLabelPrefix != "command_label_" {
		t.Errorf("Expected CommandLabelPrefix=command_label_, got %s", cfg.Disassembler.CommandLabelPrefix)
	}
	if cfg.Disassembler.ConstantLabelPrefix != ".constant_" {
		t.Errorf("Expected ConstantLabelPrefix=.constant_, got %s", cfg.Disassembler.ConstantLabelPrefix)
	}

	if cfg.Sandbox.BlockCodeSegment {
		t.Error("Expected BlockCodeSegment=false")
	}
	if cfg.Sandbox.MaxStackSize != 0 {
		t.Errorf("Expected MaxStackSize=0, got %d", cfg.Sandbox.MaxStackSize)
	}
}

func TestGetConfigPath(t *testing.T) {
	path := GetConfigPath()

	if path == "" {
		t.Error("GetConfigPath returned empty string")
	}

	if filepath.Base(path) != "config.toml" {
		t.Errorf("Expected path to end with config.toml, got %s", path)
	}

	switch runtime.GOOS {
	case "windows":
		if !filepath.IsAbs(path) && path != "config.toml" {
			t.Errorf("Expected absolute path on Windows, got %s", path)
		}

	case "darwin", "linux":
		dir := filepath.Dir(path)
		if filepath.Base(dir) != "karma" && path != "config.toml" {
			t.Errorf("Expected path in karma directory or fallback, got %s", path)
		}
	}
}

func TestSaveAndLoad(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "test_config.toml")

	cfg := DefaultConfig()
	cfg.Execution.MaxCycles = 5000000
	cfg.Execution.EnableTrace = true
	cfg.Assembler.Lint = false
	cfg.Sandbox.BlockedRegisters = []string{"r13", "r14"}
	cfg.Sandbox.MaxStackSize = 4096

	if err := cfg.SaveTo(configPath); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Fatal("Config file was not created")
	}

	loaded, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if loaded.Execution.MaxCycles != 5000000 {
		t.Errorf("Expected MaxCycles=5000000, got %d", loaded.Execution.MaxCycles)
	}
	if !loaded.Execution.EnableTrace {
		t.Error("Expected EnableTrace=true")
	}
	if loaded.Assembler.Lint {
		t.Error("Expected Lint=false")
	}
	if len(loaded.Sandbox.BlockedRegisters) != 2 || loaded.Sandbox.BlockedRegisters[0] != "r13" {
		t.Errorf("Expected BlockedRegisters=[r13 r14], got %v", loaded.Sandbox.BlockedRegisters)
	}
	if loaded.Sandbox.MaxStackSize != 4096 {
		t.Errorf("Expected MaxStackSize=4096, got %d", loaded.Sandbox.MaxStackSize)
	}
}

func TestLoadNonExistent(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "nonexistent.toml")

	cfg, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("LoadFrom should not error on non-existent file: %v", err)
	}

	if cfg.Execution.DefaultSrc != "main.krm" {
		t.Error("Expected default config when file doesn't exist")
	}
}

func TestLoadInvalidTOML(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "invalid.toml")

	invalidTOML := `
[execution]
max_cycles = "not a number"  # Invalid: should be uint64
`
	if err := os.WriteFile(configPath, []byte(invalidTOML), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	_, err := LoadFrom(configPath)
	if err == nil {
		t.Error("Expected error when loading invalid TOML")
	}
}

func TestSaveCreatesDirectory(t *testing.T) {
	tempDir := t.TempDir()

	configPath := filepath.Join(tempDir, "subdir1", "subdir2", "config.toml")

	cfg := DefaultConfig()
	if err := cfg.SaveTo(configPath); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Error("Config file was not created")
	}

	dir := filepath.Dir(configPath)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		t.Error("Parent directories were not created")
	}
}
