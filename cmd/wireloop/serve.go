package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/wireloop/internal/config"
	"github.com/verte-zerg/wireloop/internal/levels"
	"github.com/verte-zerg/wireloop/internal/log"
	"github.com/verte-zerg/wireloop/internal/server"
	"github.com/verte-zerg/wireloop/internal/store"
)

const (
	defaultAddr     = ":8080"
	defaultTickRate = server.DefaultTickRate
	defaultEnvFile  = ".env"
)

var (
	serveAddr     string
	serveTickRate int
	serveEnvFile  string
	serveOrigins  []string
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the game to browser clients over websockets",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
	cmd.Flags().StringVar(&serveAddr, "addr", defaultAddr, "listen address")
	cmd.Flags().IntVar(&serveTickRate, "tick-rate", defaultTickRate, "frames per second per session")
	cmd.Flags().StringVar(&serveEnvFile, "env-file", defaultEnvFile, "optional dotenv file")
	cmd.Flags().StringSliceVar(&serveOrigins, "allowed-origin", nil, "accepted Origin header (repeatable)")
	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	envCfg, err := config.LoadEnv(serveEnvFile)
	if err != nil {
		return err
	}
	// Flags win, then the environment, then the config file.
	applyStringConfig(cmd, "log-level", &logLevel, fileCfg.LogLevel)
	applyStringConfig(cmd, "log-level", &logLevel, envCfg.LogLevel)
	applyStringConfig(cmd, "levels-dir", &levelsDir, fileCfg.Play.LevelsDir)
	applyStringConfig(cmd, "addr", &serveAddr, fileCfg.Serve.Addr)
	applyStringConfig(cmd, "addr", &serveAddr, envCfg.Addr)
	applyIntConfig(cmd, "tick-rate", &serveTickRate, fileCfg.Serve.TickRate)
	applyIntConfig(cmd, "tick-rate", &serveTickRate, envCfg.TickRate)
	applyStringsConfig(cmd, "allowed-origin", &serveOrigins, fileCfg.Serve.AllowedOrigins)

	if serveTickRate <= 0 {
		return fmt.Errorf("--tick-rate must be > 0")
	}

	logger := log.New(os.Stderr, log.LevelFromString(logLevel))
	catalog := levels.Load(levelsDir, logger)

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(server.Options{
		Catalog:        catalog,
		Store:          st,
		Logger:         logger,
		TickRate:       serveTickRate,
		AllowedOrigins: serveOrigins,
	})
	logErrln("wireloop serving websocket clients on", serveAddr+"/ws")
	return srv.ListenAndServe(ctx, serveAddr)
}
