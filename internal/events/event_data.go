package events

// EventData is implemented by every typed event payload
type EventData interface {
	EventType() EventType
}

// PortfolioEventData describes a change to a whole portfolio
type PortfolioEventData struct {
	Type        EventType `json:"-"`
	PortfolioID string    `json:"portfolio_id"`
	Name        string    `json:"name,omitempty"`
}

func (d *PortfolioEventData) EventType() EventType { return d.Type }

// StockEventData describes a change to one position inside a portfolio
type StockEventData struct {
	Type        EventType `json:"-"`
	PortfolioID string    `json:"portfolio_id"`
	StockID     string    `json:"stock_id"`
	Quantity    int64     `json:"quantity"`
}

func (d *StockEventData) EventType() EventType { return d.Type }

// SettingsChangedData names the storage key whose contents changed
type SettingsChangedData struct {
	Key     string `json:"key"`
	Section string `json:"section,omitempty"`
}

func (d *SettingsChangedData) EventType() EventType { return SettingsChanged }

// SessionChangedData reports authentication state transitions
type SessionChangedData struct {
	Authenticated bool   `json:"authenticated"`
	UserID        string `json:"user_id,omitempty"`
	Action        string `json:"action"`
}

func (d *SessionChangedData) EventType() EventType { return SessionChanged }

// WatchlistChangedData reports a watchlist add or remove
type WatchlistChangedData struct {
	Symbol string `json:"symbol"`
	Action string `json:"action"`
}

func (d *WatchlistChangedData) EventType() EventType { return WatchlistChanged }

// DataSyncedData is emitted by the periodic sync job
type DataSyncedData struct {
	LastSync   string `json:"last_sync"`
	Portfolios int    `json:"portfolios"`
}

func (d *DataSyncedData) EventType() EventType { return DataSynced }

// BackupCompletedData is emitted after a successful remote backup
type BackupCompletedData struct {
	Bucket    string `json:"bucket"`
	ObjectKey string `json:"object_key"`
	SizeBytes int64  `json:"size_bytes"`
}

func (d *BackupCompletedData) EventType() EventType { return BackupCompleted }

// ErrorEventData carries a failure surfaced by a background component
type ErrorEventData struct {
	Error   string                 `json:"error"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (d *ErrorEventData) EventType() EventType { return ErrorOccurred }

// Decode converts the event's map payload into the typed data registered for its type.
// Returns nil for types without a typed payload.
func (e *Event) Decode() EventData {
	if e.Data == nil {
		return nil
	}

	var data EventData
	switch e.Type {
	case PortfolioCreated, PortfolioUpdated, PortfolioDeleted, PortfolioSelected:
		data = &PortfolioEventData{Type: e.Type}
	case StockAdded, StockRemoved, StockQuantityUpdated:
		data = &StockEventData{Type: e.Type}
	case SettingsChanged:
		data = &SettingsChangedData{}
	case SessionChanged:
		data = &SessionChangedData{}
	case WatchlistChanged:
		data = &WatchlistChangedData{}
	case DataSynced:
		data = &DataSyncedData{}
	case BackupCompleted:
		data = &BackupCompletedData{}
	case ErrorOccurred:
		data = &ErrorEventData{}
	default:
		return nil
	}

	if err := convertMapToStruct(e.Data, data); err != nil {
		return nil
	}
	return data
}
