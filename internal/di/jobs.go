package di

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/stockboard/internal/config"
	"github.com/aristath/stockboard/internal/scheduler"
)

// Maintenance schedules (seconds field included)
const (
	checkDatabaseSchedule = "0 0 4 * * *"    // 04:00 daily
	checkWALSchedule      = "0 */15 * * * *" // every 15 minutes
)

// RegisterJobs creates the background jobs and registers them with a new scheduler.
// The scheduler is stored on the container but not started.
func RegisterJobs(container *Container, cfg *config.Config, log zerolog.Logger) (*JobInstances, error) {
	sched := scheduler.New(log)
	instances := &JobInstances{}

	dataSync := scheduler.NewDataSyncJob(container.Settings, container.Ledger, container.EventManager, log)
	if err := sched.AddJob(cfg.SyncSchedule, dataSync); err != nil {
		return nil, fmt.Errorf("failed to register data_sync job: %w", err)
	}
	instances.DataSync = dataSync

	checkDB := scheduler.NewCheckDatabaseJob(container.StateDB)
	checkDB.SetLogger(log.With().Str("job", "check_database").Logger())
	if err := sched.AddJob(checkDatabaseSchedule, checkDB); err != nil {
		return nil, fmt.Errorf("failed to register check_database job: %w", err)
	}
	instances.CheckDatabase = checkDB

	checkWAL := scheduler.NewCheckWALCheckpointsJob(container.StateDB)
	checkWAL.SetLogger(log.With().Str("job", "check_wal_checkpoints").Logger())
	if err := sched.AddJob(checkWALSchedule, checkWAL); err != nil {
		return nil, fmt.Errorf("failed to register check_wal_checkpoints job: %w", err)
	}
	instances.CheckWAL = checkWAL

	if container.Backup != nil {
		backup := scheduler.NewBackupJob(container.Backup, container.EventManager, log)
		if err := sched.AddJob(cfg.Backup.Schedule, backup); err != nil {
			return nil, fmt.Errorf("failed to register backup job: %w", err)
		}
		instances.Backup = backup
	}

	container.Scheduler = sched
	return instances, nil
}
