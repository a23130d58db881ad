// Package portfolio implements the portfolio ledger: named portfolios of stock positions,
// their mutations, and the totals derived from them.
package portfolio

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aristath/stockboard/internal/domain"
	"github.com/aristath/stockboard/internal/events"
	"github.com/aristath/stockboard/internal/storage"
)

const moduleName = "portfolio"

// Store persists whole documents under fixed keys.
type Store interface {
	Load(key string, v interface{}) (bool, error)
	Save(key string, v interface{}) error
}

// Emitter publishes ledger events.
type Emitter interface {
	EmitTyped(module string, data events.EventData)
}

// Options tunes a Ledger.
type Options struct {
	// Latency is the pause between accepting a mutation and applying it.
	Latency time.Duration
	Now     func() time.Time
	NewID   func() string
}

// Ledger owns the set of portfolios and the current selection.
//
// Responsibilities:
//   - Create, rename and delete portfolios
//   - Add, remove and resize positions
//   - Derive totals on demand from current positions
//   - Persist the whole state under storage.KeyPortfolio after each mutation
//
// Dependencies:
//   - Store: state persistence (nil keeps the ledger in memory)
//   - Emitter: mutation events (nil disables them)
type Ledger struct {
	mu         sync.Mutex
	portfolios []Portfolio
	current    string

	store   Store
	emitter Emitter
	opts    Options
	log     zerolog.Logger
}

// NewLedger creates an empty ledger. Call Load to restore persisted state.
func NewLedger(store Store, emitter Emitter, opts Options, log zerolog.Logger) *Ledger {
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	if opts.NewID == nil {
		opts.NewID = func() string { return uuid.New().String() }
	}
	return &Ledger{
		portfolios: []Portfolio{},
		store:      store,
		emitter:    emitter,
		opts:       opts,
		log:        log.With().Str("service", "portfolio_ledger").Logger(),
	}
}

// wait is the single suspension point of every mutation.
// A context that ends during the wait cancels the mutation.
func wait(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// mutate runs fn under the lock after the suspension point, persists the result and
// emits the event fn returns. When fn or persistence fails the previous state is restored.
func (l *Ledger) mutate(ctx context.Context, fn func() (events.EventData, error)) error {
	if err := wait(ctx, l.opts.Latency); err != nil {
		return err
	}

	l.mu.Lock()
	prev := l.snapshotLocked()
	evt, err := fn()
	if err != nil {
		l.restoreLocked(prev)
		l.mu.Unlock()
		return err
	}
	if evt == nil {
		l.mu.Unlock()
		return nil
	}
	if err := l.persistLocked(); err != nil {
		l.restoreLocked(prev)
		l.mu.Unlock()
		return err
	}
	l.mu.Unlock()

	if l.emitter != nil {
		l.emitter.EmitTyped(moduleName, evt)
	}
	return nil
}

func (l *Ledger) indexLocked(id string) (int, error) {
	for i, p := range l.portfolios {
		if p.ID == id {
			return i, nil
		}
	}
	return -1, domain.NewNotFoundError("portfolio", id)
}

// CreatePortfolio adds an empty portfolio and selects it.
func (l *Ledger) CreatePortfolio(ctx context.Context, name, description string) (Portfolio, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Portfolio{}, domain.NewValidationError("name", "must not be empty")
	}

	var created Portfolio
	err := l.mutate(ctx, func() (events.EventData, error) {
		now := l.opts.Now()
		created = Portfolio{
			ID:          l.opts.NewID(),
			Name:        name,
			Description: description,
			Stocks:      []Stock{},
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		l.portfolios = append(l.portfolios, created)
		l.current = created.ID
		return &events.PortfolioEventData{Type: events.PortfolioCreated, PortfolioID: created.ID, Name: name}, nil
	})
	if err != nil {
		return Portfolio{}, err
	}

	l.log.Info().Str("portfolio_id", created.ID).Str("name", name).Msg("Portfolio created")
	return created.clone(), nil
}

// UpdatePortfolio changes the name and/or description of a portfolio.
func (l *Ledger) UpdatePortfolio(ctx context.Context, id string, upd PortfolioUpdate) (Portfolio, error) {
	if upd.Name != nil && strings.TrimSpace(*upd.Name) == "" {
		return Portfolio{}, domain.NewValidationError("name", "must not be empty")
	}

	var updated Portfolio
	err := l.mutate(ctx, func() (events.EventData, error) {
		i, err := l.indexLocked(id)
		if err != nil {
			return nil, err
		}
		p := &l.portfolios[i]
		if upd.Name != nil {
			p.Name = strings.TrimSpace(*upd.Name)
		}
		if upd.Description != nil {
			p.Description = *upd.Description
		}
		p.UpdatedAt = l.opts.Now()
		updated = p.clone()
		return &events.PortfolioEventData{Type: events.PortfolioUpdated, PortfolioID: id, Name: p.Name}, nil
	})
	if err != nil {
		return Portfolio{}, err
	}
	return updated, nil
}

// DeletePortfolio removes a portfolio, clearing the selection if it was current.
func (l *Ledger) DeletePortfolio(ctx context.Context, id string) error {
	err := l.mutate(ctx, func() (events.EventData, error) {
		i, err := l.indexLocked(id)
		if err != nil {
			return nil, err
		}
		name := l.portfolios[i].Name
		l.portfolios = append(l.portfolios[:i:i], l.portfolios[i+1:]...)
		if l.current == id {
			l.current = ""
		}
		return &events.PortfolioEventData{Type: events.PortfolioDeleted, PortfolioID: id, Name: name}, nil
	})
	if err != nil {
		return err
	}

	l.log.Info().Str("portfolio_id", id).Msg("Portfolio deleted")
	return nil
}

// SelectPortfolio makes id the current portfolio.
func (l *Ledger) SelectPortfolio(ctx context.Context, id string) (Portfolio, error) {
	var selected Portfolio
	err := l.mutate(ctx, func() (events.EventData, error) {
		i, err := l.indexLocked(id)
		if err != nil {
			return nil, err
		}
		l.current = id
		selected = l.portfolios[i].clone()
		return &events.PortfolioEventData{Type: events.PortfolioSelected, PortfolioID: id, Name: selected.Name}, nil
	})
	if err != nil {
		return Portfolio{}, err
	}
	return selected, nil
}

// AddStock adds a position, or merges it into an existing one with the same StockID.
// A merge sums the quantities, keeps the existing AvgPrice and takes the incoming
// CurrentPrice.
func (l *Ledger) AddStock(ctx context.Context, portfolioID string, stock Stock) (Stock, error) {
	stock.StockID = strings.TrimSpace(stock.StockID)
	switch {
	case stock.StockID == "":
		return Stock{}, domain.NewValidationError("stockId", "must not be empty")
	case stock.Quantity <= 0:
		return Stock{}, domain.NewValidationError("quantity", "must be positive")
	case stock.CurrentPrice < 0:
		return Stock{}, domain.NewValidationError("currentPrice", "must not be negative")
	}
	if err := finitePrice("currentPrice", stock.CurrentPrice); err != nil {
		return Stock{}, err
	}
	if err := finitePrice("avgPrice", stock.AvgPrice); err != nil {
		return Stock{}, err
	}

	var result Stock
	err := l.mutate(ctx, func() (events.EventData, error) {
		i, err := l.indexLocked(portfolioID)
		if err != nil {
			return nil, err
		}
		p := &l.portfolios[i]

		if j := p.stockIndex(stock.StockID); j >= 0 {
			existing := &p.Stocks[j]
			existing.Quantity += stock.Quantity
			existing.CurrentPrice = stock.CurrentPrice
			result = *existing
		} else {
			if stock.AvgPrice <= 0 {
				return nil, domain.NewValidationError("avgPrice", "must be positive")
			}
			if stock.Symbol == "" {
				stock.Symbol = stock.StockID
			}
			p.Stocks = append(p.Stocks, stock)
			result = stock
		}
		if err := p.checkTotals(); err != nil {
			return nil, err
		}
		p.UpdatedAt = l.opts.Now()

		return &events.StockEventData{
			Type:        events.StockAdded,
			PortfolioID: portfolioID,
			StockID:     stock.StockID,
			Quantity:    result.Quantity,
		}, nil
	})
	if err != nil {
		return Stock{}, err
	}

	l.log.Debug().
		Str("portfolio_id", portfolioID).
		Str("stock_id", stock.StockID).
		Int64("quantity", result.Quantity).
		Msg("Stock added")
	return result, nil
}

// RemoveStock drops a position. Removing an absent stock succeeds without change.
func (l *Ledger) RemoveStock(ctx context.Context, portfolioID, stockID string) error {
	return l.mutate(ctx, func() (events.EventData, error) {
		i, err := l.indexLocked(portfolioID)
		if err != nil {
			return nil, err
		}
		p := &l.portfolios[i]

		j := p.stockIndex(stockID)
		if j < 0 {
			return nil, nil
		}
		p.Stocks = append(p.Stocks[:j:j], p.Stocks[j+1:]...)
		p.UpdatedAt = l.opts.Now()

		return &events.StockEventData{Type: events.StockRemoved, PortfolioID: portfolioID, StockID: stockID}, nil
	})
}

// UpdateStockQuantity sets the quantity of a position. Zero keeps the position.
func (l *Ledger) UpdateStockQuantity(ctx context.Context, portfolioID, stockID string, quantity int64) (Stock, error) {
	if quantity < 0 {
		return Stock{}, domain.NewValidationError("quantity", "must not be negative")
	}

	var result Stock
	err := l.mutate(ctx, func() (events.EventData, error) {
		i, err := l.indexLocked(portfolioID)
		if err != nil {
			return nil, err
		}
		p := &l.portfolios[i]

		j := p.stockIndex(stockID)
		if j < 0 {
			return nil, domain.NewNotFoundError("stock", stockID)
		}
		p.Stocks[j].Quantity = quantity
		if err := p.checkTotals(); err != nil {
			return nil, err
		}
		p.UpdatedAt = l.opts.Now()
		result = p.Stocks[j]

		return &events.StockEventData{
			Type:        events.StockQuantityUpdated,
			PortfolioID: portfolioID,
			StockID:     stockID,
			Quantity:    quantity,
		}, nil
	})
	if err != nil {
		return Stock{}, err
	}
	return result, nil
}

// Portfolios returns every portfolio in creation order.
func (l *Ledger) Portfolios() []Portfolio {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Portfolio, len(l.portfolios))
	for i, p := range l.portfolios {
		out[i] = p.clone()
	}
	return out
}

// Portfolio returns the portfolio with id.
func (l *Ledger) Portfolio(id string) (Portfolio, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i, err := l.indexLocked(id)
	if err != nil {
		return Portfolio{}, err
	}
	return l.portfolios[i].clone(), nil
}

// Current returns the selected portfolio, if any.
func (l *Ledger) Current() (Portfolio, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.current == "" {
		return Portfolio{}, false
	}
	i, err := l.indexLocked(l.current)
	if err != nil {
		return Portfolio{}, false
	}
	return l.portfolios[i].clone(), true
}

// Valuation returns all totals of a portfolio.
func (l *Ledger) Valuation(id string) (Valuation, error) {
	p, err := l.Portfolio(id)
	if err != nil {
		return Valuation{}, err
	}
	return p.Valuation(), nil
}

// TotalValue is the sum of currentPrice*quantity over the positions of a portfolio.
func (l *Ledger) TotalValue(id string) (float64, error) {
	v, err := l.Valuation(id)
	return v.TotalValue, err
}

// TotalReturn is TotalValue minus the total cost basis.
func (l *Ledger) TotalReturn(id string) (float64, error) {
	v, err := l.Valuation(id)
	return v.TotalReturn, err
}

// ReturnPercent is TotalReturn as a percentage of cost, or 0 when the cost is 0.
func (l *Ledger) ReturnPercent(id string) (float64, error) {
	v, err := l.Valuation(id)
	return v.ReturnPercent, err
}

// Allocation returns each position's share of the portfolio value.
func (l *Ledger) Allocation(id string) (Allocation, error) {
	p, err := l.Portfolio(id)
	if err != nil {
		return Allocation{}, err
	}
	return computeAllocation(p), nil
}

// Snapshot returns a copy of the ledger state.
func (l *Ledger) Snapshot() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotLocked()
}

func (l *Ledger) snapshotLocked() State {
	s := State{
		Portfolios:       make([]Portfolio, len(l.portfolios)),
		CurrentPortfolio: l.current,
	}
	for i, p := range l.portfolios {
		s.Portfolios[i] = p.clone()
	}
	return s
}

// Restore replaces the ledger state with s after validating it.
// It does not persist or emit events.
func (l *Ledger) Restore(s State) error {
	if err := validateState(s); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.restoreLocked(s)
	return nil
}

func (l *Ledger) restoreLocked(s State) {
	l.portfolios = make([]Portfolio, len(s.Portfolios))
	for i, p := range s.Portfolios {
		if p.Stocks == nil {
			p.Stocks = []Stock{}
		}
		l.portfolios[i] = p.clone()
	}
	l.current = s.CurrentPortfolio
	if l.current != "" {
		if _, err := l.indexLocked(l.current); err != nil {
			l.current = ""
		}
	}
}

func validateState(s State) error {
	seen := make(map[string]bool, len(s.Portfolios))
	for _, p := range s.Portfolios {
		if p.ID == "" {
			return domain.NewValidationError("portfolios", "portfolio without id")
		}
		if seen[p.ID] {
			return domain.NewValidationError("portfolios", "duplicate portfolio id "+p.ID)
		}
		seen[p.ID] = true

		stocks := make(map[string]bool, len(p.Stocks))
		for _, st := range p.Stocks {
			if stocks[st.StockID] {
				return domain.NewValidationError("stocks", fmt.Sprintf("duplicate stock %s in portfolio %s", st.StockID, p.ID))
			}
			stocks[st.StockID] = true
			if st.Quantity < 0 {
				return domain.NewValidationError("quantity", fmt.Sprintf("negative quantity for %s in portfolio %s", st.StockID, p.ID))
			}
		}
		if err := p.checkTotals(); err != nil {
			return err
		}
	}
	return nil
}

// Load restores the persisted state, if any.
func (l *Ledger) Load(ctx context.Context) error {
	if l.store == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var s State
	found, err := l.store.Load(storage.KeyPortfolio, &s)
	if err != nil {
		return fmt.Errorf("failed to load portfolio state: %w", err)
	}
	if !found {
		l.log.Debug().Msg("No persisted portfolio state")
		return nil
	}
	if err := l.Restore(s); err != nil {
		return fmt.Errorf("persisted portfolio state is invalid: %w", err)
	}

	l.log.Info().Int("portfolios", len(s.Portfolios)).Msg("Portfolio state loaded")
	return nil
}

func (l *Ledger) persistLocked() error {
	if l.store == nil {
		return nil
	}
	if err := l.store.Save(storage.KeyPortfolio, l.snapshotLocked()); err != nil {
		l.log.Error().Err(err).Msg("Failed to persist portfolio state")
		return fmt.Errorf("failed to persist portfolio state: %w", err)
	}
	return nil
}
