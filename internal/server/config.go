package server

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/kaartspel/toepen/internal/game"
)

// Config represents the complete server configuration
type Config struct {
	Server ServerSettings `hcl:"server,block"`
	Game   GameSettings   `hcl:"game,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
}

// GameSettings tunes the rule set every room is created with. Windows
// and pacing delays are in seconds.
type GameSettings struct {
	EliminationScore int `hcl:"elimination_score,optional"`
	MaxStake         int `hcl:"max_stake,optional"`
	ResponseWindow   int `hcl:"response_window,optional"`
	LaundryWindow    int `hcl:"laundry_window,optional"`
	InspectWindow    int `hcl:"inspect_window,optional"`
	TrickDelay       int `hcl:"trick_delay,optional"`
	RoundDelay       int `hcl:"round_delay,optional"`
}

// DefaultConfig returns default server configuration
func DefaultConfig() *Config {
	rules := game.DefaultRules()
	return &Config{
		Server: ServerSettings{
			Address:  "localhost",
			Port:     8080,
			LogLevel: "info",
		},
		Game: GameSettings{
			EliminationScore: rules.EliminationScore,
			MaxStake:         rules.MaxStake,
			ResponseWindow:   int(rules.ResponseWindow / time.Second),
			LaundryWindow:    int(rules.LaundryWindow / time.Second),
			InspectWindow:    int(rules.InspectWindow / time.Second),
			TrickDelay:       int(rules.TrickDelay / time.Second),
			RoundDelay:       int(rules.RoundDelay / time.Second),
		},
	}
}

// LoadConfig loads server configuration from an HCL file. A missing
// file yields the defaults.
func LoadConfig(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	// Apply defaults for missing values
	defaults := DefaultConfig()
	if config.Server.Address == "" {
		config.Server.Address = defaults.Server.Address
	}
	if config.Server.Port == 0 {
		config.Server.Port = defaults.Server.Port
	}
	if config.Server.LogLevel == "" {
		config.Server.LogLevel = defaults.Server.LogLevel
	}
	if config.Game.EliminationScore == 0 {
		config.Game.EliminationScore = defaults.Game.EliminationScore
	}
	if config.Game.MaxStake == 0 {
		config.Game.MaxStake = defaults.Game.MaxStake
	}
	if config.Game.ResponseWindow == 0 {
		config.Game.ResponseWindow = defaults.Game.ResponseWindow
	}
	if config.Game.LaundryWindow == 0 {
		config.Game.LaundryWindow = defaults.Game.LaundryWindow
	}
	if config.Game.InspectWindow == 0 {
		config.Game.InspectWindow = defaults.Game.InspectWindow
	}
	if config.Game.TrickDelay == 0 {
		config.Game.TrickDelay = defaults.Game.TrickDelay
	}
	if config.Game.RoundDelay == 0 {
		config.Game.RoundDelay = defaults.Game.RoundDelay
	}

	return &config, nil
}

// Validate validates the server configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}

	if c.Game.EliminationScore < 2 {
		return fmt.Errorf("elimination score must be at least 2, got %d", c.Game.EliminationScore)
	}
	if c.Game.MaxStake < 1 {
		return fmt.Errorf("max stake must be positive, got %d", c.Game.MaxStake)
	}
	if c.Game.ResponseWindow < 1 || c.Game.LaundryWindow < 1 || c.Game.InspectWindow < 1 {
		return fmt.Errorf("timing windows must be at least 1 second")
	}
	if c.Game.TrickDelay < 1 || c.Game.RoundDelay < 1 {
		return fmt.Errorf("pacing delays must be at least 1 second")
	}

	return nil
}

// Rules materializes the game rule set from the configuration.
func (c *Config) Rules() game.Rules {
	rules := game.DefaultRules()
	rules.EliminationScore = c.Game.EliminationScore
	rules.MaxStake = c.Game.MaxStake
	rules.ResponseWindow = time.Duration(c.Game.ResponseWindow) * time.Second
	rules.LaundryWindow = time.Duration(c.Game.LaundryWindow) * time.Second
	rules.InspectWindow = time.Duration(c.Game.InspectWindow) * time.Second
	rules.TrickDelay = time.Duration(c.Game.TrickDelay) * time.Second
	rules.RoundDelay = time.Duration(c.Game.RoundDelay) * time.Second
	return rules
}

// GetServerAddress returns the full server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}
