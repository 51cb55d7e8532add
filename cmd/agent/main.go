package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/cartridge/pacman/internal/actor"
	"github.com/cartridge/pacman/internal/config"
	"github.com/cartridge/pacman/internal/events"
	adminhttp "github.com/cartridge/pacman/internal/http"
	"github.com/cartridge/pacman/internal/policy"
	"github.com/cartridge/pacman/internal/server"
	"github.com/cartridge/pacman/internal/storage"
)

var (
	cfgFile string
	v       = viper.New()
)

var rootCmd = &cobra.Command{
	Use:   "pacman-agent",
	Short: "Pacman decision agents",
	Long: `Hosts Pacman agents for an external game simulation.

The simulation starts an episode, sends one observation per turn over gRPC
and receives a single legal move back. Decisions are traced and can be
inspected through the admin HTTP API.`,
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the agent gRPC and admin HTTP APIs",
	RunE:  runServe,
}

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "List the available agents",
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range policy.Names() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
	},
}

func init() {
	defaults := config.Default()
	flags := serveCmd.Flags()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (yaml, json or toml)")

	// Listen addresses
	flags.String("grpc-addr", defaults.GRPCAddr, "gRPC listen address")
	flags.String("http-addr", defaults.HTTPAddr, "Admin HTTP listen address (empty disables)")

	// Agent settings
	flags.String("actor-id", defaults.ActorID, "Unique actor identifier")
	flags.String("default-agent", defaults.DefaultAgent, "Agent used when an episode does not name one")
	flags.Int("threat-threshold", defaults.ThreatThreshold, "Ghost distance at or below which the forage agent flees")
	flags.Int64("seed", defaults.Seed, "Random seed (0 for time based)")

	// Episode settings
	flags.Int("max-episodes", defaults.MaxEpisodes, "Maximum concurrently hosted episodes")
	flags.Duration("episode-timeout", defaults.EpisodeTimeout, "Idle time after which an episode is dropped")

	// Trace settings
	flags.Int("batch-size", defaults.BatchSize, "Transitions buffered before a trace flush")
	flags.Duration("flush-interval", defaults.FlushInterval, "Interval to flush partial batches")
	flags.Uint64("max-transitions", defaults.MaxTransitions, "Maximum transitions kept in the trace store")

	// Events
	flags.String("nats-url", defaults.NATSURL, "NATS server for episode events (empty disables)")
	flags.String("nats-subject", defaults.NATSSubject, "NATS subject prefix")

	// Logging
	flags.String("log-level", defaults.LogLevel, "Log level (debug, info, warn, error)")

	// Flag names use dashes, config keys use underscores.
	flags.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f)
	})
	v.SetEnvPrefix("PACMAN")
	v.AutomaticEnv()

	rootCmd.AddCommand(serveCmd, agentsCmd)
}

func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", cfgFile, err)
		}
	}
	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := zerolog.New(os.Stdout).Level(cfg.Level()).With().Timestamp().Str("actor_id", cfg.ActorID).Logger()

	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.NATSURL != "" {
		natsPublisher, err := events.NewNATSPublisher(cfg.NATSURL, cfg.NATSSubject, logger)
		if err != nil {
			return fmt.Errorf("failed to connect to NATS at %s: %w", cfg.NATSURL, err)
		}
		defer natsPublisher.Close()
		publisher = natsPublisher
	}

	backend := storage.NewMemoryBackend(cfg.MaxTransitions)
	defer backend.Close()

	actorInstance, err := actor.New(cfg, backend, publisher, logger)
	if err != nil {
		return fmt.Errorf("failed to create actor: %w", err)
	}
	defer actorInstance.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.GRPCAddr, err)
	}
	grpcServer := server.NewServer(logger)
	server.Register(grpcServer, server.NewService(actorInstance))

	errCh := make(chan error, 2)
	go func() {
		logger.Info().Str("addr", lis.Addr().String()).Msg("Agent gRPC server listening")
		errCh <- grpcServer.Serve(lis)
	}()

	var httpServer *http.Server
	if cfg.HTTPAddr != "" {
		httpServer = &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           adminhttp.NewServer(actorInstance, logger).Routes(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			logger.Info().Str("addr", cfg.HTTPAddr).Msg("Admin HTTP server listening")
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()
	}

	go func() {
		if err := actorInstance.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info().Msg("Shutdown signal received, stopping agent service")
	case err := <-errCh:
		logger.Error().Err(err).Msg("Server failed")
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if httpServer != nil {
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("Admin HTTP shutdown failed")
		}
	}

	stopped := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(stopped)
	}()
	select {
	case <-shutdownCtx.Done():
		logger.Warn().Msg("Shutdown timeout exceeded, forcing stop")
		grpcServer.Stop()
	case <-stopped:
	}

	logger.Info().Msg("Agent service stopped gracefully")
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
