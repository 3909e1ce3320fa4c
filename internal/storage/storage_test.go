package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsPostgresURL(t *testing.T) {
	assert.True(t, IsPostgresURL("postgres://localhost/babyscan"))
	assert.True(t, IsPostgresURL("postgresql://u:p@host:5432/db"))
	assert.False(t, IsPostgresURL(".babyscan/babyscan.db"))
	assert.False(t, IsPostgresURL(":memory:"))
}

func TestNewStorageSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "babyscan.db")
	store, err := NewStorage(context.Background(), &Config{Path: path})
	require.NoError(t, err)
	defer store.Close()

	babies, err := store.ListBabies(context.Background())
	require.NoError(t, err)
	assert.Empty(t, babies)
}

func TestNewStorageRejectsBadPostgresURL(t *testing.T) {
	_, err := NewStorage(context.Background(), &Config{Path: "postgres://host:bad/db"})
	assert.Error(t, err)
}

func TestDefaultConfig(t *testing.T) {
	assert.Equal(t, filepath.Join(DataDirName, "babyscan.db"), filepath.FromSlash(DefaultConfig().Path))
}
