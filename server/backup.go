package server

import (
	"fmt"
	"os"
)

// --------------------------------------------------------------------------
// Backup and Restore
// --------------------------------------------------------------------------

// BackupNow writes a snapshot of the database to the backup folder and
// prunes backups beyond the retention limit.
func (s *Server) BackupNow() error {
	path, err := s.backups.Write(s.db.ToMap())
	if err != nil {
		backupsFailed.Inc()
		return fmt.Errorf("backup failed: %w", err)
	}
	backupsTotal.Inc()
	s.log.WithField("file", path).Info("backup written")
	return nil
}

// scheduledBackup is the cron callback. Failures are logged, the scheduler
// keeps running.
func (s *Server) scheduledBackup() {
	if err := s.BackupNow(); err != nil {
		s.log.WithError(err).Error("scheduled backup failed")
	}
}

// restoreLatest loads the newest backup file into the database. A missing
// backup folder is not an error, the server just starts empty.
func (s *Server) restoreLatest() error {
	path, found, err := s.backups.Latest()
	if err != nil {
		return fmt.Errorf("failed to look up backups: %w", err)
	}
	if !found {
		s.log.Info("no backup found, starting with an empty database")
		return nil
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open backup %s: %w", path, err)
	}
	defer file.Close()

	if err := s.db.Load(file); err != nil {
		return fmt.Errorf("failed to restore backup %s: %w", path, err)
	}
	s.log.WithField("file", path).Info("database restored from backup")
	return nil
}
