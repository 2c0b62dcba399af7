// Package config loads and saves the toolchain's persistent TOML
// configuration: execution limits, assembler/disassembler defaults,
// and the default sandbox policy applied to every run unless a caller
// overrides it.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config is the toolchain's persistent configuration.
type Config struct {
	// Execution settings
	Execution struct {
		MaxCycles   uint64 `toml:"max_cycles"`
		DefaultSrc  string `toml:"default_src"`
		EnableTrace bool   `toml:"enable_trace"`
	} `toml:"execution"`

	// Assembler settings
	Assembler struct {
		Lint            bool `toml:"lint"`
		WarnUnusedLabel bool `toml:"warn_unused_label"`
	} `toml:"assembler"`

	// Disassembler settings
	Disassembler struct {
		CommandLabelPrefix string `toml:"command_label_prefix"`
		ConstantLabelPrefix string `toml:"constant_label_prefix"`
	} `toml:"disassembler"`

	// Sandbox settings: the base SandboxPolicy every vm.Machine starts
	// from before a caller's per-run override is met against it.
	Sandbox struct {
		BlockedRegisters      []string `toml:"blocked_registers"`
		BlockCodeSegment      bool     `toml:"block_code_segment"`
		BlockConstantsSegment bool     `toml:"block_constants_segment"`
		MaxStackSize          uint32   `toml:"max_stack_size"`
	} `toml:"sandbox"`
}

// DefaultConfig returns a Config with the toolchain's built-in defaults:
// unbounded execution, no sandbox restrictions, and a lint pass enabled.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Execution.MaxCycles = 0 // 0 means unbounded
	cfg.Execution.DefaultSrc = "main.krm"
	cfg.Execution.EnableTrace = false

	cfg.Assembler.Lint = true
	cfg.Assembler.WarnUnusedLabel = true

	cfg.Disassembler.CommandLabelPrefix = "command_label_"
	cfg.Disassembler.ConstantLabelPrefix = ".constant_"

	cfg.Sandbox.BlockedRegisters = nil
	cfg.Sandbox.BlockCodeSegment = false
	cfg.Sandbox.BlockConstantsSegment = false
	cfg.Sandbox.MaxStackSize = 0 // 0 means unbounded

	return cfg
}

// GetConfigPath returns the platform-specific config file path.
func GetConfigPath() string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		configDir = filepath.Join(configDir, "karma")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.toml"
		}
		configDir = filepath.Join(homeDir, ".config", "karma")

	default:
		return "config.toml"
	}

	if err := os.MkdirAll(configDir, 0750); err != nil {
		return "config.toml"
	}

	return filepath.Join(configDir, "config.toml")
}

// Load loads configuration from the default config file.
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom loads configuration from path, falling back to
// DefaultConfig if the file does not exist.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Save saves configuration to the default config file.
func (c *Config) Save() error {
	return c.SaveTo(GetConfigPath())
}

// SaveTo saves configuration to path.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path) // #nosec G304 -- user config file path
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}
