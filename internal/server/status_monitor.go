package server

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/stockboard/internal/events"
)

// StatusEmitter publishes untyped events
type StatusEmitter interface {
	Emit(eventType events.EventType, module string, data map[string]interface{})
}

// OnlineRecorder stores the connectivity flag
type OnlineRecorder interface {
	SetOnline(online bool)
}

// Pinger probes a backing store
type Pinger interface {
	QuickCheck(ctx context.Context) error
}

// StatusMonitor probes the state database and flips the online flag,
// emitting SYSTEM_STATUS_CHANGED only when it changes.
type StatusMonitor struct {
	emitter StatusEmitter
	status  OnlineRecorder
	db      Pinger
	log     zerolog.Logger

	online bool
}

// NewStatusMonitor creates a new status monitor. The system starts online.
func NewStatusMonitor(emitter StatusEmitter, status OnlineRecorder, db Pinger, log zerolog.Logger) *StatusMonitor {
	return &StatusMonitor{
		emitter: emitter,
		status:  status,
		db:      db,
		online:  true,
		log:     log.With().Str("component", "status_monitor").Logger(),
	}
}

// Run checks immediately, then every interval until ctx is done
func (m *StatusMonitor) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	m.Check(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Check(ctx)
		}
	}
}

// Check probes once and reports whether the status changed
func (m *StatusMonitor) Check(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := m.db.QuickCheck(probeCtx)
	online := err == nil
	if online == m.online {
		return false
	}

	m.online = online
	m.status.SetOnline(online)

	data := map[string]interface{}{
		"isOnline":  online,
		"timestamp": time.Now().Format(time.RFC3339),
	}
	if err != nil {
		data["error"] = err.Error()
		m.log.Warn().Err(err).Msg("State database unreachable")
	} else {
		m.log.Info().Msg("State database reachable again")
	}
	if m.emitter != nil {
		m.emitter.Emit(events.SystemStatusChanged, "status_monitor", data)
	}
	return true
}
