package scheduler

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/stockboard/internal/events"
)

// DataSyncJob is the periodic sync heartbeat: it stamps the system status
// with the sync time and announces the ledger size.
type DataSyncJob struct {
	status       SyncStatusInterface
	ledger       PortfolioLedgerInterface
	eventManager EventManagerInterface
	now          func() time.Time
	log          zerolog.Logger
}

// NewDataSyncJob creates a new DataSyncJob
func NewDataSyncJob(status SyncStatusInterface, ledger PortfolioLedgerInterface, eventManager EventManagerInterface, log zerolog.Logger) *DataSyncJob {
	return &DataSyncJob{
		status:       status,
		ledger:       ledger,
		eventManager: eventManager,
		now:          func() time.Time { return time.Now().UTC() },
		log:          log.With().Str("job", "data_sync").Logger(),
	}
}

// Name returns the job name
func (j *DataSyncJob) Name() string {
	return "data_sync"
}

// Run executes the sync heartbeat
func (j *DataSyncJob) Run() error {
	st := j.status.MarkSynced(j.now())

	count := 0
	if j.ledger != nil {
		count = len(j.ledger.Portfolios())
	}

	if j.eventManager != nil {
		j.eventManager.EmitTyped("scheduler", &events.DataSyncedData{
			LastSync:   st.LastSyncTime.Format(time.RFC3339),
			Portfolios: count,
		})
	}

	j.log.Debug().Int("portfolios", count).Msg("Data sync completed")
	return nil
}
