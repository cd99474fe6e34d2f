// Package main is the entry point for Emberfall.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/samdwyer/emberfall/internal/game"
	"github.com/samdwyer/emberfall/internal/telemetry"
)

var (
	flagSeed    int64
	flagSaveDir string
	flagLogFile string
)

func main() {
	root := &cobra.Command{
		Use:   "emberfall",
		Short: "A party-based terminal RPG",
		Long: "Emberfall is a turn-based party RPG played in the terminal:\n" +
			"explore the overworld, fight what finds you, and keep the band alive.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
	}
	root.Flags().Int64Var(&flagSeed, "seed", 0, "world seed (0 picks one from the clock)")
	root.Flags().StringVar(&flagSaveDir, "save-dir", defaultSaveDir(), "directory for save slot files")
	root.Flags().StringVar(&flagLogFile, "log-file", "", "append structured logs to this file")

	if err := root.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Local development may carry exporter credentials in a .env file; env
	// vars set directly still win.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "note: .env not loaded: %v\n", err)
	}

	logger, closeLog, err := setupLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	shutdown, err := telemetry.Setup(ctx)
	if err != nil {
		// The game runs fine without observability.
		logger.WithError(err).Warn("telemetry setup failed")
	} else {
		defer func() {
			if err := shutdown(ctx); err != nil {
				logger.WithError(err).Warn("telemetry shutdown failed")
			}
		}()
	}

	g, err := game.New(game.Config{
		Seed:    flagSeed,
		SaveDir: flagSaveDir,
		Log:     logger,
	})
	if err != nil {
		return fmt.Errorf("initialize game: %w", err)
	}
	defer g.Close()

	return g.Run(ctx)
}

// setupLogger writes structured logs to the configured file. The terminal
// belongs to the game, so without a file the logs are discarded.
func setupLogger() (*logrus.Logger, func(), error) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if flagLogFile == "" {
		logger.SetOutput(io.Discard)
		return logger, func() {}, nil
	}
	f, err := os.OpenFile(flagLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger.SetOutput(f)
	return logger, func() { f.Close() }, nil
}

func defaultSaveDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return dir + "/emberfall/saves"
	}
	return "saves"
}
