/**
 * Package di provides dependency injection type definitions.
 *
 * This package defines the Container type which holds all application dependencies.
 * The Container is the single source of truth for all service instances and is
 * passed to the HTTP server and the scheduler.
 */
package di

import (
	"github.com/aristath/stockboard/internal/config"
	"github.com/aristath/stockboard/internal/database"
	"github.com/aristath/stockboard/internal/events"
	"github.com/aristath/stockboard/internal/modules/menu"
	"github.com/aristath/stockboard/internal/modules/portfolio"
	"github.com/aristath/stockboard/internal/modules/session"
	"github.com/aristath/stockboard/internal/modules/settings"
	"github.com/aristath/stockboard/internal/modules/watchlist"
	"github.com/aristath/stockboard/internal/reliability"
	"github.com/aristath/stockboard/internal/scheduler"
	"github.com/aristath/stockboard/internal/storage"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config

	// Persistence
	StateDB *database.DB
	Storage *storage.Repository

	// Events
	EventBus     *events.Bus
	EventManager *events.Manager

	// Domain
	Menu      *menu.Tree
	Ledger    *portfolio.Ledger
	Settings  *settings.Service
	Session   *session.Service
	Watchlist *watchlist.Service

	// Optional; nil when backups are not configured
	Backup *reliability.BackupService

	Scheduler *scheduler.Scheduler
}

// JobInstances holds references to all registered jobs for manual triggering
type JobInstances struct {
	DataSync      scheduler.Job
	CheckDatabase scheduler.Job
	CheckWAL      scheduler.Job
	Backup        scheduler.Job // nil when backups are disabled
}

// All returns the registered jobs keyed by name
func (j *JobInstances) All() map[string]scheduler.Job {
	out := make(map[string]scheduler.Job)
	for _, job := range []scheduler.Job{j.DataSync, j.CheckDatabase, j.CheckWAL, j.Backup} {
		if job != nil {
			out[job.Name()] = job
		}
	}
	return out
}
