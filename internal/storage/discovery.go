package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DataDirName is the per-project directory holding the database and config.
const DataDirName = ".babyscan"

// DiscoverDatabase looks for .babyscan/*.db in the current directory only.
// Returns the absolute path to the database file, or an error if not found.
//
// BABYSCAN_DB_PATH is checked first so tests and deployments can point at an
// explicit file, ":memory:", or a postgres:// URL without discovery.
func DiscoverDatabase() (string, error) {
	if dbPath := os.Getenv("BABYSCAN_DB_PATH"); dbPath != "" {
		return dbPath, nil
	}

	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}

	return discoverDatabaseInDir(dir)
}

// discoverDatabaseInDir checks for .babyscan/*.db in the specified directory only.
func discoverDatabaseInDir(dir string) (string, error) {
	dataDir := filepath.Join(dir, DataDirName)

	if info, err := os.Stat(dataDir); err == nil && info.IsDir() {
		entries, err := os.ReadDir(dataDir)
		if err == nil {
			for _, entry := range entries {
				if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".db") {
					absPath, err := filepath.Abs(filepath.Join(dataDir, entry.Name()))
					if err != nil {
						return "", fmt.Errorf("failed to get absolute path: %w", err)
					}
					return absPath, nil
				}
			}
		}
	}

	return "", fmt.Errorf(
		"no %s/*.db found in %s\n"+
			"  Run 'babyscan init' to create a database in this directory\n"+
			"  Or use --db flag to specify database path explicitly",
		DataDirName, dir)
}

// GetProjectRoot returns the directory containing the .babyscan/ directory that
// holds dbPath.
//
// Example:
//
//	dbPath: /home/user/family/.babyscan/family.db
//	returns: /home/user/family
func GetProjectRoot(dbPath string) (string, error) {
	absPath, err := filepath.Abs(dbPath)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	dbDir := filepath.Dir(absPath)
	if filepath.Base(dbDir) != DataDirName {
		return "", fmt.Errorf("database must be in a %s/ directory, got: %s", DataDirName, dbPath)
	}

	return filepath.Dir(dbDir), nil
}

// InitProject creates a new .babyscan directory for an empty database.
// Returns the path the database should be opened at.
func InitProject(projectDir, projectName string) (string, error) {
	if _, err := os.Stat(projectDir); os.IsNotExist(err) {
		return "", fmt.Errorf("project directory does not exist: %s", projectDir)
	}

	dataDir := filepath.Join(projectDir, DataDirName)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s directory: %w", DataDirName, err)
	}

	dbName := projectName
	if dbName == "" {
		dbName = filepath.Base(projectDir)
	}
	if !strings.HasSuffix(dbName, ".db") {
		dbName += ".db"
	}

	dbPath := filepath.Join(dataDir, dbName)
	if _, err := os.Stat(dbPath); err == nil {
		return "", fmt.Errorf("database already exists: %s", dbPath)
	}

	// Database file is created on first connection.
	return dbPath, nil
}
