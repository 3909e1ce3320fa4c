package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/babyscan/babyscan/internal/config"
	"github.com/babyscan/babyscan/internal/storage"
)

var initCmd = &cobra.Command{
	Use:   "init [project-name]",
	Short: "Initialize a babyscan database in the current directory",
	Long: `Initialize babyscan by creating a .babyscan/ directory with a database.

This creates:
  - .babyscan/ directory
  - .babyscan/<project-name>.db (SQLite database)
  - .babyscan/config.yaml (default settings, edit to taste)

If no project name is provided, the current directory name is used.

Example:
  cd ~/clinic
  babyscan init              # Creates .babyscan/clinic.db
  babyscan init ward-b       # Creates .babyscan/ward-b.db`,
	Args:        cobra.MaximumNArgs(1),
	Annotations: map[string]string{skipStoreAnnotation: "true"},
	Run: func(cmd *cobra.Command, args []string) {
		projectName := ""
		if len(args) > 0 {
			projectName = args[0]
		}

		cwd, err := os.Getwd()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to get current directory: %v\n", err)
			os.Exit(1)
		}

		path, err := storage.InitProject(cwd, projectName)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		// Creating the storage initializes the schema
		db, err := storage.NewStorage(cmd.Context(), &storage.Config{Path: path})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to initialize database: %v\n", err)
			os.Exit(1)
		}
		_ = db.Close()

		cfgPath := filepath.Join(filepath.Dir(path), "config.yaml")
		wroteConfig, err := writeDefaultConfig(cfgPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to write %s: %v\n", cfgPath, err)
		}

		fmt.Printf("\n%s Initialized babyscan\n\n", green("✓"))
		fmt.Printf("  Database: %s\n", cyan(path))
		if wroteConfig {
			fmt.Printf("  Settings: %s\n", cyan(cfgPath))
		}
		fmt.Println()
		fmt.Printf("%s Next steps:\n", gray("→"))
		fmt.Printf("  %s\n", gray("babyscan baby add"))
		fmt.Printf("  %s\n", gray("babyscan scan <baby-id> photo.jpg"))
		fmt.Println()
	},
}

// defaultConfigFile is the YAML written by init.
type defaultConfigFile struct {
	DefaultScaleCmPerPx float64 `yaml:"default_scale_cm_per_px"`
	MeasureTimeout      string  `yaml:"measure_timeout"`
	SimulatedDelay      string  `yaml:"simulated_delay"`
	MaxConcurrent       int     `yaml:"max_concurrent"`
	Detector            string  `yaml:"detector"`
	ListenAddr          string  `yaml:"listen_addr"`
	InboxPattern        string  `yaml:"inbox_pattern"`
}

// writeDefaultConfig writes the default settings unless a file already exists.
func writeDefaultConfig(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	d := config.DefaultSettings()
	data, err := yaml.Marshal(defaultConfigFile{
		DefaultScaleCmPerPx: d.DefaultScaleCmPerPx,
		MeasureTimeout:      d.MeasureTimeout.String(),
		SimulatedDelay:      d.SimulatedDelay.String(),
		MaxConcurrent:       d.MaxConcurrent,
		Detector:            d.Detector,
		ListenAddr:          d.ListenAddr,
		InboxPattern:        d.InboxPattern,
	})
	if err != nil {
		return false, err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return false, err
	}
	return true, nil
}

func init() {
	rootCmd.AddCommand(initCmd)
}
