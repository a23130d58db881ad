// Package events provides event management functionality.
package events

import "time"

// EventType represents different event types
type EventType string

const (
	// Portfolio ledger
	PortfolioCreated     EventType = "PORTFOLIO_CREATED"
	PortfolioUpdated     EventType = "PORTFOLIO_UPDATED"
	PortfolioDeleted     EventType = "PORTFOLIO_DELETED"
	PortfolioSelected    EventType = "PORTFOLIO_SELECTED"
	StockAdded           EventType = "STOCK_ADDED"
	StockRemoved         EventType = "STOCK_REMOVED"
	StockQuantityUpdated EventType = "STOCK_QUANTITY_UPDATED"

	// Client state
	SettingsChanged  EventType = "SETTINGS_CHANGED"
	SessionChanged   EventType = "SESSION_CHANGED"
	WatchlistChanged EventType = "WATCHLIST_CHANGED"

	// System
	DataSynced          EventType = "DATA_SYNCED"
	BackupCompleted     EventType = "BACKUP_COMPLETED"
	SystemStatusChanged EventType = "SYSTEM_STATUS_CHANGED"
	ErrorOccurred       EventType = "ERROR_OCCURRED"
)

// Event represents a system event
type Event struct {
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Module    string                 `json:"module"`
	Data      map[string]interface{} `json:"data,omitempty"`
}
