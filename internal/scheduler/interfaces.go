package scheduler

import (
	"context"
	"time"

	"github.com/aristath/stockboard/internal/events"
	"github.com/aristath/stockboard/internal/modules/portfolio"
	"github.com/aristath/stockboard/internal/modules/settings"
)

// EventManagerInterface defines the contract for event emission
type EventManagerInterface interface {
	EmitTyped(module string, data events.EventData)
	EmitError(module string, err error, context map[string]interface{})
}

// SyncStatusInterface records completed sync cycles
// Used by scheduler to enable testing with mocks
type SyncStatusInterface interface {
	MarkSynced(t time.Time) settings.SystemStatus
}

// PortfolioLedgerInterface exposes the ledger reads the sync job needs
type PortfolioLedgerInterface interface {
	Portfolios() []portfolio.Portfolio
}

// BackupServiceInterface defines the contract for remote backups
type BackupServiceInterface interface {
	Backup(ctx context.Context) (string, int64, error)
	Bucket() string
}
