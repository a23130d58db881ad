package portfolio

import "time"

// Stock is one position inside a portfolio.
type Stock struct {
	StockID      string  `json:"stockId"`
	Symbol       string  `json:"symbol"`
	Name         string  `json:"name"`
	Quantity     int64   `json:"quantity"`
	AvgPrice     float64 `json:"avgPrice"`
	CurrentPrice float64 `json:"currentPrice"`
}

// Portfolio is a named, ordered collection of positions.
// Totals are never stored; see Valuation.
type Portfolio struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Stocks      []Stock   `json:"stocks"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (p Portfolio) clone() Portfolio {
	out := p
	out.Stocks = make([]Stock, len(p.Stocks))
	copy(out.Stocks, p.Stocks)
	return out
}

func (p Portfolio) stockIndex(stockID string) int {
	for i, s := range p.Stocks {
		if s.StockID == stockID {
			return i
		}
	}
	return -1
}

// PortfolioUpdate carries the editable fields; nil leaves a field unchanged.
type PortfolioUpdate struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// State is the persisted form of the ledger.
type State struct {
	Portfolios       []Portfolio `json:"portfolios"`
	CurrentPortfolio string      `json:"currentPortfolio,omitempty"`
}

// StockView is a position with its derived totals.
type StockView struct {
	Stock
	Valuation
}

// View is a portfolio with derived totals, as served over HTTP.
type View struct {
	Portfolio
	Stocks []StockView `json:"stocks"`
	Valuation
}

// NewView derives the totals of p.
func NewView(p Portfolio) View {
	v := View{
		Portfolio: p,
		Stocks:    make([]StockView, len(p.Stocks)),
		Valuation: p.Valuation(),
	}
	for i, s := range p.Stocks {
		v.Stocks[i] = StockView{Stock: s, Valuation: s.Valuation()}
	}
	return v
}
