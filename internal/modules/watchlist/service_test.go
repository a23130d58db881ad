package watchlist

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/stockboard/internal/domain"
	"github.com/aristath/stockboard/internal/events"
)

type countingEmitter struct{ n int }

func (c *countingEmitter) EmitTyped(string, events.EventData) { c.n++ }

func TestWatchlist_AddIsIdempotent(t *testing.T) {
	emitter := &countingEmitter{}
	svc := NewService(emitter, zerolog.Nop())

	added, err := svc.Add("aapl")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = svc.Add(" AAPL ")
	require.NoError(t, err)
	assert.False(t, added)

	_, err = svc.Add("msft")
	require.NoError(t, err)

	assert.Equal(t, []string{"AAPL", "MSFT"}, svc.List())
	assert.True(t, svc.Contains("Msft"))
	assert.Equal(t, 2, emitter.n)
}

func TestWatchlist_Remove(t *testing.T) {
	svc := NewService(nil, zerolog.Nop())
	_, _ = svc.Add("AAPL")
	_, _ = svc.Add("MSFT")
	_, _ = svc.Add("TSLA")

	assert.True(t, svc.Remove("msft"))
	assert.False(t, svc.Remove("msft"))
	assert.Equal(t, []string{"AAPL", "TSLA"}, svc.List())
}

func TestWatchlist_EmptySymbol(t *testing.T) {
	svc := NewService(nil, zerolog.Nop())

	_, err := svc.Add("   ")
	assert.True(t, domain.IsValidation(err))
	assert.Empty(t, svc.List())
}
