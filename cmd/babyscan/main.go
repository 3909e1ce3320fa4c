// Command babyscan tracks infant growth from photos: it registers babies,
// measures height from images, scores stunting and reports trends.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/babyscan/babyscan/internal/config"
	"github.com/babyscan/babyscan/internal/storage"
)

// skipStoreAnnotation marks commands that run without an open database.
const skipStoreAnnotation = "babyscan/skip-store"

var (
	dbPath     string
	configPath string
	verbose    bool

	store    storage.Storage
	settings config.Settings
	logger   *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "babyscan",
	Short: "Infant growth tracking from photos",
	Long: `babyscan measures a baby's length from a photo, scores it against the
growth reference (height-for-age z-score) and tracks stunting over time.

Data lives in .babyscan/<project>.db in the current directory unless --db or
BABYSCAN_DB_PATH points elsewhere (a file, ":memory:" or a postgres:// URL).`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)

		if cmd.Annotations[skipStoreAnnotation] == "true" {
			return nil
		}

		if dbPath == "" {
			discovered, err := storage.DiscoverDatabase()
			if err != nil {
				return fmt.Errorf("%w\nRun 'babyscan init' to create a database", err)
			}
			dbPath = discovered
		}

		var err error
		settings, err = config.Load(resolveConfigPath())
		if err != nil {
			return err
		}
		logger.Debug("Loaded settings", "settings", settings.String())

		store, err = storage.NewStorage(cmd.Context(), &storage.Config{Path: dbPath})
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if store != nil {
			_ = store.Close()
		}
	},
}

// resolveConfigPath returns --config, else config.yaml next to a file database.
func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	if dbPath == ":memory:" || storage.IsPostgresURL(dbPath) {
		return ""
	}
	return filepath.Join(filepath.Dir(dbPath), "config.yaml")
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database path or postgres:// URL (default: discover .babyscan/*.db)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Settings file (default: config.yaml next to the database)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
