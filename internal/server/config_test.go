package server

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quintet-games/quintet/internal/game"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "quintet.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadServerConfig(t *testing.T) {
	path := writeConfig(t, `
server {
  address          = "0.0.0.0"
  port             = 9090
  log_level        = "debug"
  idle_ttl_minutes = 10
}
`)

	config, err := LoadServerConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0", config.Server.Address)
	assert.Equal(t, 9090, config.Server.Port)
	assert.Equal(t, "debug", config.Server.LogLevel)
	assert.Equal(t, 10, config.Server.IdleTTLMinutes)
	assert.Equal(t, "0.0.0.0:9090", config.ListenAddr())
}

func TestLoadServerConfig_DefaultsApply(t *testing.T) {
	path := writeConfig(t, `
server {
  port = 3000
}
`)

	config, err := LoadServerConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "localhost", config.Server.Address)
	assert.Equal(t, 3000, config.Server.Port)
	assert.Equal(t, "info", config.Server.LogLevel)
	assert.Equal(t, 30, config.Server.IdleTTLMinutes)
}

func TestLoadServerConfig_MissingFile(t *testing.T) {
	_, err := LoadServerConfig(filepath.Join(t.TempDir(), "nope.hcl"))
	assert.Error(t, err)
}

func TestLoadServerConfig_InvalidSyntax(t *testing.T) {
	path := writeConfig(t, `server { port = `)
	_, err := LoadServerConfig(path)
	assert.Error(t, err)
}

func TestLoadServerConfig_InvalidPort(t *testing.T) {
	for _, port := range []int{-1, 70000} {
		path := writeConfig(t, `
server {
  port = `+strconv.Itoa(port)+`
}
`)
		_, err := LoadServerConfig(path)
		assert.Error(t, err, "port %d should be rejected", port)
	}
}

func TestGameWeights_DefaultsWithoutCardsBlock(t *testing.T) {
	config := DefaultServerConfig()
	weights, err := config.GameWeights()
	require.NoError(t, err)
	assert.Equal(t, game.DefaultWeights(), weights)
}

func TestGameWeights_MergesOverDefaults(t *testing.T) {
	path := writeConfig(t, `
server {
  port = 8080
}

cards {
  storm = 50
  peek  = 0
}
`)

	config, err := LoadServerConfig(path)
	require.NoError(t, err)

	weights, err := config.GameWeights()
	require.NoError(t, err)
	assert.Equal(t, 50, weights[game.CardStorm])
	assert.Equal(t, 0, weights[game.CardPeek])
	// Unset kinds keep the stock weights.
	assert.Equal(t, 20, weights[game.CardConvert])
	assert.Equal(t, 10, weights[game.CardUndo])
}

func TestGameWeights_RejectsInvalidTable(t *testing.T) {
	path := writeConfig(t, `
server {
  port = 8080
}

cards {
  convert = 200
}
`)

	config, err := LoadServerConfig(path)
	require.NoError(t, err)

	_, err = config.GameWeights()
	assert.Error(t, err)
}
