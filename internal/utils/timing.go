// Package utils holds small helpers shared across packages.
package utils

import (
	"time"

	"github.com/rs/zerolog"
)

// Slow-operation thresholds
const (
	SlowQuery     = 500 * time.Millisecond
	SlowOperation = 30 * time.Second
)

// OperationTimer provides a defer-friendly way to measure operation duration.
// Durations above SlowOperation are logged at warn level.
//
// Usage:
//
//	func (s *Service) Backup(ctx context.Context) error {
//	    defer utils.OperationTimer("backup", s.log)()
//	}
func OperationTimer(operation string, log zerolog.Logger) func() {
	return timer(log, "operation", operation, SlowOperation)
}

// MeasureDBQuery is OperationTimer for statements, with the SlowQuery threshold
func MeasureDBQuery(queryName string, log zerolog.Logger) func() {
	return timer(log, "query", queryName, SlowQuery)
}

func timer(log zerolog.Logger, field, name string, slow time.Duration) func() {
	start := time.Now()

	return func() {
		duration := time.Since(start)
		if duration > slow {
			log.Warn().
				Str(field, name).
				Dur("duration", duration).
				Msg("Slow " + field + " detected")
			return
		}
		log.Debug().
			Str(field, name).
			Dur("duration_ms", duration).
			Msg("Completed " + field)
	}
}
