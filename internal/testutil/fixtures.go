package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/sqlwhere/internal/store"
)

// WriteFiles writes files into a fresh temporary directory and returns it.
// Keys are file names relative to the directory.
func WriteFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return dir
}

// SeedDB creates a SQLite database file in a temporary directory, runs
// the setup statements against it and returns its path.
func SeedDB(t *testing.T, setup []string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := store.Open(path)
	require.NoError(t, err)
	require.NoError(t, db.ExecAll(context.Background(), setup))
	require.NoError(t, db.Close())
	return path
}
