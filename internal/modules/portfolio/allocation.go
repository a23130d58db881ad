package portfolio

import (
	"gonum.org/v1/gonum/floats"
)

// Weight is one position's share of the portfolio value.
type Weight struct {
	StockID string  `json:"stockId"`
	Symbol  string  `json:"symbol"`
	Value   float64 `json:"value"`
	Weight  float64 `json:"weight"`
}

// Allocation breaks a portfolio's value down by position.
type Allocation struct {
	PortfolioID string   `json:"portfolioId"`
	TotalValue  float64  `json:"totalValue"`
	Weights     []Weight `json:"weights"`
	// Herfindahl index of the weights: 1 for a single position, 1/n for n equal ones.
	Concentration float64 `json:"concentration"`
}

func computeAllocation(p Portfolio) Allocation {
	values := make([]float64, len(p.Stocks))
	for i, s := range p.Stocks {
		values[i] = s.Valuation().TotalValue
	}

	alloc := Allocation{
		PortfolioID: p.ID,
		TotalValue:  floats.Sum(values),
		Weights:     make([]Weight, len(p.Stocks)),
	}

	weights := make([]float64, len(values))
	if alloc.TotalValue > 0 {
		copy(weights, values)
		floats.Scale(1/alloc.TotalValue, weights)
		alloc.Concentration = floats.Dot(weights, weights)
	}

	for i, s := range p.Stocks {
		alloc.Weights[i] = Weight{
			StockID: s.StockID,
			Symbol:  s.Symbol,
			Value:   values[i],
			Weight:  weights[i],
		}
	}
	return alloc
}
