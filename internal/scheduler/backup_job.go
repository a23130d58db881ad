package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/stockboard/internal/events"
)

// backupTimeout bounds a single upload
const backupTimeout = 10 * time.Minute

// BackupJob uploads a snapshot of the state database
type BackupJob struct {
	backup       BackupServiceInterface
	eventManager EventManagerInterface
	log          zerolog.Logger
}

// NewBackupJob creates a new BackupJob
func NewBackupJob(backup BackupServiceInterface, eventManager EventManagerInterface, log zerolog.Logger) *BackupJob {
	return &BackupJob{
		backup:       backup,
		eventManager: eventManager,
		log:          log.With().Str("job", "backup").Logger(),
	}
}

// Name returns the job name
func (j *BackupJob) Name() string {
	return "backup"
}

// Run executes the backup
func (j *BackupJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), backupTimeout)
	defer cancel()

	key, size, err := j.backup.Backup(ctx)
	if err != nil {
		if j.eventManager != nil {
			j.eventManager.EmitError("backup", err, map[string]interface{}{"bucket": j.backup.Bucket()})
		}
		return err
	}

	if j.eventManager != nil {
		j.eventManager.EmitTyped("backup", &events.BackupCompletedData{
			Bucket:    j.backup.Bucket(),
			ObjectKey: key,
			SizeBytes: size,
		})
	}
	j.log.Info().Str("object_key", key).Int64("size_bytes", size).Msg("Backup uploaded")
	return nil
}
