package main

import (
	"context"
	"errors"
	rand "math/rand/v2"
	"net/http"
	"time"

	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/quintet-games/quintet/cmd/quintet/shared"
	"github.com/quintet-games/quintet/internal/randutil"
	"github.com/quintet-games/quintet/internal/registry"
	"github.com/quintet-games/quintet/internal/server"
)

// ServerCmd contains core server configuration.
type ServerCmd struct {
	Addr            string        `kong:"help='Server address, overrides the config file'"`
	Debug           bool          `kong:"help='Enable debug logging'"`
	JSONLogs        bool          `kong:"name='json-logs',help='Emit structured JSON logs instead of console output'"`
	Config          string        `kong:"help='Path to HCL config file'"`
	Seed            *int64        `kong:"help='Deterministic RNG seed for the server (optional)'"`
	IdleTTL         time.Duration `kong:"default='30m',help='Idle room lifetime before cleanup'"`
	JanitorInterval time.Duration `kong:"default='1m',help='How often to sweep idle rooms'"`
}

func (c *ServerCmd) Run() error {
	logger := shared.SetupLogger(c.Debug)
	if c.JSONLogs {
		logger = shared.SetupStructuredLogger(c.Debug)
	}

	// Setup RNG and seed
	var rng *rand.Rand
	var seed int64
	if c.Seed != nil {
		seed = *c.Seed
		logger.Info().Int64("seed", seed).Msg("Using deterministic seed")
	} else {
		seed = time.Now().UnixNano()
		logger.Info().Int64("seed", seed).Msg("Using random seed")
	}
	rng = randutil.New(seed)

	cfg := server.DefaultServerConfig()
	if c.Config != "" {
		loaded, err := server.LoadServerConfig(c.Config)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	weights, err := cfg.GameWeights()
	if err != nil {
		return err
	}

	addr := cfg.ListenAddr()
	if c.Addr != "" {
		addr = c.Addr
	}
	idleTTL := c.IdleTTL
	if cfg.Server.IdleTTLMinutes > 0 && c.IdleTTL == 30*time.Minute {
		idleTTL = time.Duration(cfg.Server.IdleTTLMinutes) * time.Minute
	}

	reg := registry.New(logger, rng, quartz.NewReal(), registry.Config{
		Weights: weights,
		IdleTTL: idleTTL,
	})
	srv := server.NewServer(logger, reg)

	logger.Info().
		Str("address", addr).
		Dur("idle_ttl", idleTTL).
		Interface("card_weights", weights).
		Msg("Starting quintet server")

	ctx := shared.SetupSignalHandler(logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		reg.RunJanitor(gctx, c.JanitorInterval)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Stop(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info().Msg("Server shutdown complete")
	return nil
}
