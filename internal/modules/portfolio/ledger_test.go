package portfolio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/aristath/stockboard/internal/domain"
	"github.com/aristath/stockboard/internal/events"
	"github.com/aristath/stockboard/internal/storage"
)

// memoryStore keeps JSON documents in a map.
type memoryStore struct {
	mu   sync.Mutex
	docs map[string][]byte
}

func newMemoryStore() *memoryStore {
	return &memoryStore{docs: map[string][]byte{}}
}

func (m *memoryStore) Load(key string, v interface{}) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.docs[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, v)
}

func (m *memoryStore) Save(key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[key] = data
	return nil
}

// MockStore is a testify mock of Store.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Load(key string, v interface{}) (bool, error) {
	args := m.Called(key, v)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) Save(key string, v interface{}) error {
	args := m.Called(key, v)
	return args.Error(0)
}

type recordingEmitter struct {
	mu     sync.Mutex
	events []events.EventData
}

func (r *recordingEmitter) EmitTyped(module string, data events.EventData) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, data)
}

func (r *recordingEmitter) types() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.EventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.EventType()
	}
	return out
}

func newTestLedger(t *testing.T) (*Ledger, *memoryStore, *recordingEmitter) {
	t.Helper()
	store := newMemoryStore()
	emitter := &recordingEmitter{}
	seq := 0
	ledger := NewLedger(store, emitter, Options{
		Now:   func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) },
		NewID: func() string { seq++; return fmt.Sprintf("p%d", seq) },
	}, zerolog.Nop())
	return ledger, store, emitter
}

func aapl(qty int64, avg, current float64) Stock {
	return Stock{StockID: "AAPL", Symbol: "AAPL", Name: "Apple Inc.", Quantity: qty, AvgPrice: avg, CurrentPrice: current}
}

func TestCreatePortfolio(t *testing.T) {
	ledger, _, emitter := newTestLedger(t)
	ctx := context.Background()

	p, err := ledger.CreatePortfolio(ctx, "Growth", "long term")
	require.NoError(t, err)
	assert.Equal(t, "p1", p.ID)
	assert.Equal(t, "Growth", p.Name)
	assert.Empty(t, p.Stocks)

	total, err := ledger.TotalValue(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, total)

	current, ok := ledger.Current()
	require.True(t, ok)
	assert.Equal(t, p.ID, current.ID)
	assert.Equal(t, []events.EventType{events.PortfolioCreated}, emitter.types())
}

func TestCreatePortfolio_EmptyName(t *testing.T) {
	ledger, _, emitter := newTestLedger(t)

	for _, name := range []string{"", "   "} {
		_, err := ledger.CreatePortfolio(context.Background(), name, "")
		require.Error(t, err)
		assert.True(t, domain.IsValidation(err))
	}
	assert.Empty(t, ledger.Portfolios())
	assert.Empty(t, emitter.types())
}

func TestAddStock_MergeKeepsAvgPrice(t *testing.T) {
	ledger, _, _ := newTestLedger(t)
	ctx := context.Background()
	p, err := ledger.CreatePortfolio(ctx, "Growth", "")
	require.NoError(t, err)

	_, err = ledger.AddStock(ctx, p.ID, aapl(10, 100, 110))
	require.NoError(t, err)
	merged, err := ledger.AddStock(ctx, p.ID, aapl(5, 120, 110))
	require.NoError(t, err)

	assert.Equal(t, int64(15), merged.Quantity)
	assert.Equal(t, 100.0, merged.AvgPrice)

	got, err := ledger.Portfolio(p.ID)
	require.NoError(t, err)
	require.Len(t, got.Stocks, 1)

	v := got.Stocks[0].Valuation()
	assert.Equal(t, 1650.0, v.TotalValue)
	assert.Equal(t, 1500.0, v.TotalCost)
	assert.Equal(t, 150.0, v.TotalReturn)
	assert.Equal(t, 10.0, v.ReturnPercent)

	total, err := ledger.TotalValue(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1650.0, total)
	ret, err := ledger.TotalReturn(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 150.0, ret)
	pct, err := ledger.ReturnPercent(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 10.0, pct)
}

func TestAddStock_MergeRefreshesCurrentPrice(t *testing.T) {
	ledger, _, _ := newTestLedger(t)
	ctx := context.Background()
	p, _ := ledger.CreatePortfolio(ctx, "Growth", "")

	_, err := ledger.AddStock(ctx, p.ID, aapl(10, 100, 110))
	require.NoError(t, err)
	merged, err := ledger.AddStock(ctx, p.ID, Stock{StockID: "AAPL", Quantity: 1, CurrentPrice: 130})
	require.NoError(t, err)

	assert.Equal(t, int64(11), merged.Quantity)
	assert.Equal(t, 130.0, merged.CurrentPrice)
	assert.Equal(t, "Apple Inc.", merged.Name)
}

func TestAddStock_Validation(t *testing.T) {
	ledger, _, _ := newTestLedger(t)
	ctx := context.Background()
	p, _ := ledger.CreatePortfolio(ctx, "Growth", "")

	tests := []struct {
		name  string
		stock Stock
	}{
		{"empty id", Stock{StockID: " ", Quantity: 1, AvgPrice: 1}},
		{"zero quantity", aapl(0, 100, 100)},
		{"negative quantity", aapl(-1, 100, 100)},
		{"zero avg price", aapl(1, 0, 100)},
		{"negative current price", aapl(1, 100, -1)},
		{"infinite avg price", aapl(1, math.Inf(1), 100)},
		{"NaN avg price", aapl(1, math.NaN(), 100)},
		{"infinite current price", aapl(1, 100, math.Inf(1))},
		{"NaN current price", aapl(1, 100, math.NaN())},
		{"value overflows", aapl(10, 100, 1e308)},
		{"cost overflows", aapl(10, 1e308, 100)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ledger.AddStock(ctx, p.ID, tt.stock)
			require.Error(t, err)
			assert.True(t, domain.IsValidation(err))
		})
	}

	got, _ := ledger.Portfolio(p.ID)
	assert.Empty(t, got.Stocks)
}

func TestAddStock_OverflowLeavesPositionUnchanged(t *testing.T) {
	ledger, store, emitter := newTestLedger(t)
	ctx := context.Background()
	p, _ := ledger.CreatePortfolio(ctx, "Growth", "")
	_, err := ledger.AddStock(ctx, p.ID, aapl(10, 100, 110))
	require.NoError(t, err)
	_, err = ledger.AddStock(ctx, p.ID, Stock{StockID: "MSFT", Quantity: 1, AvgPrice: 1, CurrentPrice: 1.5e308})
	require.NoError(t, err)

	// Each position fits, the portfolio total does not
	_, err = ledger.AddStock(ctx, p.ID, Stock{StockID: "GOOG", Quantity: 1, AvgPrice: 1, CurrentPrice: 1.5e308})
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))

	got, _ := ledger.Portfolio(p.ID)
	require.Len(t, got.Stocks, 2)
	assert.Equal(t, int64(10), got.Stocks[0].Quantity)
	assert.Equal(t, 110.0, got.Stocks[0].CurrentPrice)

	v, err := ledger.Valuation(p.ID)
	require.NoError(t, err)
	assert.False(t, math.IsInf(v.TotalValue, 0))

	var persisted State
	ok, err := store.Load(storage.KeyPortfolio, &persisted)
	require.NoError(t, err)
	require.True(t, ok)
	_, err = json.Marshal(NewView(persisted.Portfolios[0]))
	require.NoError(t, err)

	assert.Equal(t, []events.EventType{
		events.PortfolioCreated, events.StockAdded, events.StockAdded,
	}, emitter.types())
}

func TestUpdateStockQuantity_Overflow(t *testing.T) {
	ledger, _, _ := newTestLedger(t)
	ctx := context.Background()
	p, _ := ledger.CreatePortfolio(ctx, "Growth", "")
	_, err := ledger.AddStock(ctx, p.ID, aapl(1, 100, 1e306))
	require.NoError(t, err)

	_, err = ledger.UpdateStockQuantity(ctx, p.ID, "AAPL", 1000)
	assert.True(t, domain.IsValidation(err))

	got, _ := ledger.Portfolio(p.ID)
	assert.Equal(t, int64(1), got.Stocks[0].Quantity)
}

func TestRemoveStock(t *testing.T) {
	ledger, _, emitter := newTestLedger(t)
	ctx := context.Background()
	p, _ := ledger.CreatePortfolio(ctx, "Growth", "")
	_, err := ledger.AddStock(ctx, p.ID, aapl(10, 100, 110))
	require.NoError(t, err)

	require.NoError(t, ledger.RemoveStock(ctx, p.ID, "MSFT"), "absent stock is a no-op")
	got, _ := ledger.Portfolio(p.ID)
	assert.Len(t, got.Stocks, 1)

	require.NoError(t, ledger.RemoveStock(ctx, p.ID, "AAPL"))
	got, _ = ledger.Portfolio(p.ID)
	assert.Empty(t, got.Stocks)

	assert.Equal(t, []events.EventType{
		events.PortfolioCreated, events.StockAdded, events.StockRemoved,
	}, emitter.types())
}

func TestUpdateStockQuantity(t *testing.T) {
	ledger, _, _ := newTestLedger(t)
	ctx := context.Background()
	p, _ := ledger.CreatePortfolio(ctx, "Growth", "")
	_, err := ledger.AddStock(ctx, p.ID, aapl(10, 100, 110))
	require.NoError(t, err)

	s, err := ledger.UpdateStockQuantity(ctx, p.ID, "AAPL", 3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), s.Quantity)

	_, err = ledger.UpdateStockQuantity(ctx, p.ID, "AAPL", -1)
	assert.True(t, domain.IsValidation(err))

	_, err = ledger.UpdateStockQuantity(ctx, p.ID, "MSFT", 1)
	assert.True(t, domain.IsNotFound(err))
}

func TestUpdateStockQuantity_ZeroKeepsPosition(t *testing.T) {
	ledger, _, _ := newTestLedger(t)
	ctx := context.Background()
	p, _ := ledger.CreatePortfolio(ctx, "Growth", "")
	_, err := ledger.AddStock(ctx, p.ID, aapl(10, 100, 110))
	require.NoError(t, err)

	_, err = ledger.UpdateStockQuantity(ctx, p.ID, "AAPL", 0)
	require.NoError(t, err)

	got, _ := ledger.Portfolio(p.ID)
	require.Len(t, got.Stocks, 1)
	assert.Equal(t, int64(0), got.Stocks[0].Quantity)
	v := got.Stocks[0].Valuation()
	assert.Equal(t, 0.0, v.TotalValue)
	assert.Equal(t, 0.0, v.TotalCost)

	pct, err := ledger.ReturnPercent(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, pct, "zero cost must not divide")
}

func TestReturnPercent_ZeroCost(t *testing.T) {
	ledger, _, _ := newTestLedger(t)
	p, _ := ledger.CreatePortfolio(context.Background(), "Empty", "")

	pct, err := ledger.ReturnPercent(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, pct)
}

func TestUnknownPortfolio_NotFound(t *testing.T) {
	ledger, _, emitter := newTestLedger(t)
	ctx := context.Background()
	const id = "missing"

	_, err := ledger.AddStock(ctx, id, aapl(1, 1, 1))
	assert.True(t, domain.IsNotFound(err), "AddStock")
	err = ledger.RemoveStock(ctx, id, "AAPL")
	assert.True(t, domain.IsNotFound(err), "RemoveStock")
	_, err = ledger.UpdateStockQuantity(ctx, id, "AAPL", 1)
	assert.True(t, domain.IsNotFound(err), "UpdateStockQuantity")
	_, err = ledger.TotalValue(id)
	assert.True(t, domain.IsNotFound(err), "TotalValue")
	_, err = ledger.TotalReturn(id)
	assert.True(t, domain.IsNotFound(err), "TotalReturn")
	_, err = ledger.ReturnPercent(id)
	assert.True(t, domain.IsNotFound(err), "ReturnPercent")
	_, err = ledger.UpdatePortfolio(ctx, id, PortfolioUpdate{})
	assert.True(t, domain.IsNotFound(err), "UpdatePortfolio")
	err = ledger.DeletePortfolio(ctx, id)
	assert.True(t, domain.IsNotFound(err), "DeletePortfolio")
	_, err = ledger.SelectPortfolio(ctx, id)
	assert.True(t, domain.IsNotFound(err), "SelectPortfolio")
	_, err = ledger.Allocation(id)
	assert.True(t, domain.IsNotFound(err), "Allocation")

	assert.Empty(t, emitter.types())
}

func TestUpdatePortfolio(t *testing.T) {
	ledger, _, _ := newTestLedger(t)
	ctx := context.Background()
	p, _ := ledger.CreatePortfolio(ctx, "Growth", "old")

	name := "Income"
	updated, err := ledger.UpdatePortfolio(ctx, p.ID, PortfolioUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Income", updated.Name)
	assert.Equal(t, "old", updated.Description)

	desc := ""
	updated, err = ledger.UpdatePortfolio(ctx, p.ID, PortfolioUpdate{Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, "Income", updated.Name)
	assert.Equal(t, "", updated.Description)

	blank := "  "
	_, err = ledger.UpdatePortfolio(ctx, p.ID, PortfolioUpdate{Name: &blank})
	assert.True(t, domain.IsValidation(err))
}

func TestDeletePortfolio_ClearsSelection(t *testing.T) {
	ledger, _, _ := newTestLedger(t)
	ctx := context.Background()
	a, _ := ledger.CreatePortfolio(ctx, "A", "")
	b, _ := ledger.CreatePortfolio(ctx, "B", "")

	require.NoError(t, ledger.DeletePortfolio(ctx, a.ID))
	current, ok := ledger.Current()
	require.True(t, ok, "deleting a non-current portfolio keeps the selection")
	assert.Equal(t, b.ID, current.ID)

	require.NoError(t, ledger.DeletePortfolio(ctx, b.ID))
	_, ok = ledger.Current()
	assert.False(t, ok)
	assert.Empty(t, ledger.Portfolios())
}

func TestSelectPortfolio(t *testing.T) {
	ledger, _, _ := newTestLedger(t)
	ctx := context.Background()
	a, _ := ledger.CreatePortfolio(ctx, "A", "")
	_, _ = ledger.CreatePortfolio(ctx, "B", "")

	selected, err := ledger.SelectPortfolio(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", selected.Name)

	current, ok := ledger.Current()
	require.True(t, ok)
	assert.Equal(t, a.ID, current.ID)
}

func TestLedger_ReadsReturnCopies(t *testing.T) {
	ledger, _, _ := newTestLedger(t)
	ctx := context.Background()
	p, _ := ledger.CreatePortfolio(ctx, "Growth", "")
	_, err := ledger.AddStock(ctx, p.ID, aapl(10, 100, 110))
	require.NoError(t, err)

	got, _ := ledger.Portfolio(p.ID)
	got.Stocks[0].Quantity = 999

	again, _ := ledger.Portfolio(p.ID)
	assert.Equal(t, int64(10), again.Stocks[0].Quantity)
}

func TestLedger_PersistsAndLoads(t *testing.T) {
	ledger, store, _ := newTestLedger(t)
	ctx := context.Background()
	p, _ := ledger.CreatePortfolio(ctx, "Growth", "")
	_, err := ledger.AddStock(ctx, p.ID, aapl(10, 100, 110))
	require.NoError(t, err)

	var persisted State
	found, err := store.Load(storage.KeyPortfolio, &persisted)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, p.ID, persisted.CurrentPortfolio)
	require.Len(t, persisted.Portfolios, 1)
	assert.Len(t, persisted.Portfolios[0].Stocks, 1)

	restored := NewLedger(store, nil, Options{}, zerolog.Nop())
	require.NoError(t, restored.Load(ctx))
	assert.Equal(t, ledger.Snapshot(), restored.Snapshot())

	total, err := restored.TotalValue(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1100.0, total)
}

func TestLedger_LoadWithoutState(t *testing.T) {
	ledger := NewLedger(newMemoryStore(), nil, Options{}, zerolog.Nop())
	require.NoError(t, ledger.Load(context.Background()))
	assert.Empty(t, ledger.Portfolios())

	inMemory := NewLedger(nil, nil, Options{}, zerolog.Nop())
	require.NoError(t, inMemory.Load(context.Background()))
	_, err := inMemory.CreatePortfolio(context.Background(), "Scratch", "")
	require.NoError(t, err)
}

func TestLedger_PersistFailureRollsBack(t *testing.T) {
	store := new(MockStore)
	store.On("Save", storage.KeyPortfolio, mock.Anything).Return(errors.New("disk full"))
	emitter := &recordingEmitter{}
	ledger := NewLedger(store, emitter, Options{}, zerolog.Nop())

	_, err := ledger.CreatePortfolio(context.Background(), "Growth", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Empty(t, ledger.Portfolios())
	_, ok := ledger.Current()
	assert.False(t, ok)
	assert.Empty(t, emitter.types())
	store.AssertExpectations(t)
}

func TestRestore_Validation(t *testing.T) {
	ledger, _, _ := newTestLedger(t)

	err := ledger.Restore(State{Portfolios: []Portfolio{{ID: "a"}, {ID: "a"}}})
	assert.True(t, domain.IsValidation(err))

	err = ledger.Restore(State{Portfolios: []Portfolio{{ID: "a", Stocks: []Stock{aapl(1, 1, 1), aapl(2, 1, 1)}}}})
	assert.True(t, domain.IsValidation(err))

	err = ledger.Restore(State{Portfolios: []Portfolio{{ID: "a", Stocks: []Stock{aapl(1, math.Inf(1), 1)}}}})
	assert.True(t, domain.IsValidation(err))

	err = ledger.Restore(State{Portfolios: []Portfolio{{ID: "a", Stocks: []Stock{aapl(10, 1, 1e308)}}}})
	assert.True(t, domain.IsValidation(err))

	require.NoError(t, ledger.Restore(State{
		Portfolios:       []Portfolio{{ID: "a", Name: "A"}},
		CurrentPortfolio: "gone",
	}))
	_, ok := ledger.Current()
	assert.False(t, ok, "dangling selection is dropped")

	p, err := ledger.Portfolio("a")
	require.NoError(t, err)
	assert.NotNil(t, p.Stocks)
}

func TestLedger_LatencyHonoursContext(t *testing.T) {
	ledger := NewLedger(nil, nil, Options{Latency: time.Second}, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := ledger.CreatePortfolio(ctx, "Slow", "")
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Empty(t, ledger.Portfolios(), "cancelled mutation is not applied")
}

func TestLedger_ConcurrentAdds(t *testing.T) {
	ledger := NewLedger(newMemoryStore(), nil, Options{Latency: time.Millisecond}, zerolog.Nop())
	ctx := context.Background()
	p, err := ledger.CreatePortfolio(ctx, "Busy", "")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ledger.AddStock(ctx, p.ID, aapl(1, 100, 100))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, _ := ledger.Portfolio(p.ID)
	require.Len(t, got.Stocks, 1)
	assert.Equal(t, int64(20), got.Stocks[0].Quantity)
}
