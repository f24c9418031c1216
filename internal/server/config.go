package server

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/quintet-games/quintet/internal/game"
)

// ServerConfig represents the complete server configuration file.
type ServerConfig struct {
	Server ServerSettings `hcl:"server,block"`
	Cards  *CardWeights   `hcl:"cards,block"`
}

// ServerSettings contains server-level configuration.
type ServerSettings struct {
	Address        string `hcl:"address,optional"`
	Port           int    `hcl:"port,optional"`
	LogLevel       string `hcl:"log_level,optional"`
	IdleTTLMinutes int    `hcl:"idle_ttl_minutes,optional"`
}

// CardWeights is the draw distribution block. Unset kinds fall back to
// the stock weights.
type CardWeights struct {
	Convert  *int `hcl:"convert,optional"`
	Obstacle *int `hcl:"obstacle,optional"`
	Storm    *int `hcl:"storm,optional"`
	Undo     *int `hcl:"undo,optional"`
	Trap     *int `hcl:"trap,optional"`
	Hint     *int `hcl:"hint,optional"`
	Peek     *int `hcl:"peek,optional"`
}

// DefaultServerConfig returns the default server configuration.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Server: ServerSettings{
			Address:        "localhost",
			Port:           8080,
			LogLevel:       "info",
			IdleTTLMinutes: 30,
		},
	}
}

// LoadServerConfig loads configuration from an HCL file, applying
// defaults for anything the file leaves unset.
func LoadServerConfig(path string) (*ServerConfig, error) {
	config := DefaultServerConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse config file: %s", diags.Error())
	}

	if diags := gohcl.DecodeBody(file.Body, nil, config); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode config file: %s", diags.Error())
	}

	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return nil, fmt.Errorf("invalid port: %d", config.Server.Port)
	}

	return config, nil
}

// GameWeights converts the cards block into a draw table, validating it.
func (c *ServerConfig) GameWeights() (game.Weights, error) {
	weights := game.DefaultWeights()
	if c.Cards == nil {
		return weights, nil
	}
	apply := func(kind game.CardKind, v *int) {
		if v != nil {
			weights[kind] = *v
		}
	}
	apply(game.CardConvert, c.Cards.Convert)
	apply(game.CardObstacle, c.Cards.Obstacle)
	apply(game.CardStorm, c.Cards.Storm)
	apply(game.CardUndo, c.Cards.Undo)
	apply(game.CardTrap, c.Cards.Trap)
	apply(game.CardHint, c.Cards.Hint)
	apply(game.CardPeek, c.Cards.Peek)

	if err := weights.Validate(); err != nil {
		return nil, err
	}
	return weights, nil
}

// ListenAddr returns the address:port string to bind.
func (c *ServerConfig) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}
