// Package config loads the server's two configuration layers (§3.2,
// §6): a static startup file and a hot-reloadable balance table.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// ServerConfig is the static startup configuration, parsed once and never
// hot-reloaded, grounded on the teacher's flat toml Config shape.
type ServerConfig struct {
	MapName         string        `toml:"map_name"`
	StartX          float32       `toml:"start_pos_x"`
	StartY          float32       `toml:"start_pos_y"`
	LogLevel        string        `toml:"log_level"`
	ServerPort      int           `toml:"server_port"`
	DiagnosticsPort int           `toml:"diagnostics_port"`
	GRFPaths        []string      `toml:"grf_paths"`
	TickRate        int           `toml:"tick_rate"`
	InitScript      string        `toml:"init_script"`
	DialTimeout     time.Duration `toml:"dial_timeout"`
}

// LoadServerConfig reads and parses path, filling unset fields from
// defaultServerConfig.
func LoadServerConfig(path string) (*ServerConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaultServerConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func defaultServerConfig() *ServerConfig {
	return &ServerConfig{
		MapName:         "arena",
		StartX:          0,
		StartY:          0,
		LogLevel:        "info",
		ServerPort:      7350,
		DiagnosticsPort: 9090,
		TickRate:        30,
		InitScript:      "init.cmd",
		DialTimeout:     10 * time.Second,
	}
}
