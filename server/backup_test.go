package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBackupAndRestore tests the snapshot round trip through the server
func TestBackupAndRestore(t *testing.T) {
	s := newTestServer(t, nil)
	s.db.Collection("users").Add([]map[string]any{
		{"name": "alice"},
		{"name": "bob"},
	}, "id")

	require.NoError(t, s.BackupNow())

	paths, err := s.backups.List()
	require.NoError(t, err)
	require.Len(t, paths, 1)

	// a second server over the same backup folder restores the state
	restored := newTestServer(t, func(cfg *Config) { cfg.BackupDir = s.cfg.BackupDir })
	require.NoError(t, restored.restoreLatest())

	assert.Equal(t, 2, restored.db.Collection("users").Length())

	// the serial counter survives the round trip
	added := restored.db.Collection("users").Add([]map[string]any{{"name": "carol"}}, "id")
	assert.Equal(t, int64(3), added[0]["id"])
}

// TestRestoreWithoutBackups tests that a missing backup folder is not an error
func TestRestoreWithoutBackups(t *testing.T) {
	s := newTestServer(t, nil)

	require.NoError(t, s.restoreLatest())
	assert.Equal(t, 0, s.db.Length())
}

// TestBackupRetention tests that old backups are pruned
func TestBackupRetention(t *testing.T) {
	s := newTestServer(t, func(cfg *Config) { cfg.BackupKeep = 2 })

	for i := 0; i < 4; i++ {
		require.NoError(t, s.BackupNow())
	}

	paths, err := s.backups.List()
	require.NoError(t, err)
	assert.Len(t, paths, 2)
}
