// Package watchlist tracks the symbols the operator follows. State is held in memory only.
package watchlist

import (
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/aristath/stockboard/internal/domain"
	"github.com/aristath/stockboard/internal/events"
)

// Emitter publishes watchlist events
type Emitter interface {
	EmitTyped(module string, data events.EventData)
}

// Service is an ordered set of symbols
type Service struct {
	mu      sync.RWMutex
	symbols []string
	emitter Emitter
	log     zerolog.Logger
}

// NewService creates an empty watchlist
func NewService(emitter Emitter, log zerolog.Logger) *Service {
	return &Service{
		symbols: []string{},
		emitter: emitter,
		log:     log.With().Str("service", "watchlist").Logger(),
	}
}

// Normalize upper-cases and trims a symbol
func Normalize(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// List returns the symbols in insertion order
func (s *Service) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.symbols))
	copy(out, s.symbols)
	return out
}

// Contains reports whether symbol is watched
func (s *Service) Contains(symbol string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexLocked(Normalize(symbol)) >= 0
}

// Add appends symbol unless already present. It reports whether the list changed.
func (s *Service) Add(symbol string) (bool, error) {
	symbol = Normalize(symbol)
	if symbol == "" {
		return false, domain.NewValidationError("symbol", "must not be empty")
	}

	s.mu.Lock()
	if s.indexLocked(symbol) >= 0 {
		s.mu.Unlock()
		return false, nil
	}
	s.symbols = append(s.symbols, symbol)
	s.mu.Unlock()

	s.emit(symbol, "add")
	return true, nil
}

// Remove drops symbol. It reports whether the list changed.
func (s *Service) Remove(symbol string) bool {
	symbol = Normalize(symbol)

	s.mu.Lock()
	i := s.indexLocked(symbol)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.symbols = append(s.symbols[:i:i], s.symbols[i+1:]...)
	s.mu.Unlock()

	s.emit(symbol, "remove")
	return true
}

func (s *Service) indexLocked(symbol string) int {
	for i, v := range s.symbols {
		if v == symbol {
			return i
		}
	}
	return -1
}

func (s *Service) emit(symbol, action string) {
	s.log.Debug().Str("symbol", symbol).Str("action", action).Msg("Watchlist changed")
	if s.emitter != nil {
		s.emitter.EmitTyped("watchlist", &events.WatchlistChangedData{Symbol: symbol, Action: action})
	}
}
