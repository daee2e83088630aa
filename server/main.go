package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Slm0nB/play-together-api-sub000/api"
)

var (
	cfgFile         string
	maintenanceMode bool
)

var rootCmd = &cobra.Command{
	Use:          "playtogether-server",
	Short:        "Event coordination backend for groups of friends",
	SilenceUsage: true,
	RunE:         runServer,
}

func init() {
	rootCmd.Flags().StringVar(&cfgFile, "config", "config.yaml", "config file")
	rootCmd.Flags().BoolVar(&maintenanceMode, "maintenance", false, "only serve the admin shell")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, args []string) error {

	config, err := loadConfigFromFile(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if maintenanceMode {
		config.data.MaintenanceMode = true
	}

	setupLogging(config)

	log.Info().
		Str("db_driver", string(config.DbDriver())).
		Bool("maintenance", config.MaintenanceMode()).
		Uint16("server_id", config.ServerID()).
		Msg("starting server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
		cancel()
	}()

	store, err := openStore(ctx, config)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}

	server, err := NewServer(config, store)
	if err != nil {
		store.Close()
		return err
	}
	defer server.Close()

	if err := server.Run(ctx); err != nil {
		return err
	}

	log.Info().Msg("server stopped")
	return nil
}

func setupLogging(config api.Config) {

	level, err := zerolog.ParseLevel(config.LogLevel())
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if config.LogFormat() == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}
