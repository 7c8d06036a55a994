package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"inkpost/internal/config"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "inkpost",
	Short: "inkpost blogging backend",
	Long: `inkpost serves posts, threaded comments and moderation over a JSON API.

	inkpost serve        start the HTTP server
	inkpost migrate      create or update the database schema
	inkpost seed-admin   create the admin account from ADMIN_* settings
`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setupLogger installs the process-wide slog handler: text in development,
// JSON everywhere else.
func setupLogger(cfg *config.Config) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler = slog.NewJSONHandler(os.Stdout, opts)
	if cfg.IsDev() {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	setupLogger(cfg)
	return cfg, nil
}
