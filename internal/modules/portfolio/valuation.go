package portfolio

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/aristath/stockboard/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// Valuation holds the derived totals of a position or a portfolio.
type Valuation struct {
	TotalValue    float64 `json:"totalValue"`
	TotalCost     float64 `json:"totalCost"`
	TotalReturn   float64 `json:"totalReturn"`
	ReturnPercent float64 `json:"returnPercent"`
}

type amounts struct {
	value decimal.Decimal
	cost  decimal.Decimal
}

func (s Stock) amounts() amounts {
	qty := decimal.NewFromInt(s.Quantity)
	return amounts{
		value: decimal.NewFromFloat(s.CurrentPrice).Mul(qty),
		cost:  decimal.NewFromFloat(s.AvgPrice).Mul(qty),
	}
}

func (a amounts) valuation() Valuation {
	ret := a.value.Sub(a.cost)
	pct := decimal.Zero
	if !a.cost.IsZero() {
		pct = ret.Div(a.cost).Mul(hundred)
	}
	return Valuation{
		TotalValue:    a.value.InexactFloat64(),
		TotalCost:     a.cost.InexactFloat64(),
		TotalReturn:   ret.InexactFloat64(),
		ReturnPercent: pct.InexactFloat64(),
	}
}

func (v Valuation) finite() bool {
	for _, f := range []float64{v.TotalValue, v.TotalCost, v.TotalReturn, v.ReturnPercent} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

func finitePrice(field string, price float64) error {
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return domain.NewValidationError(field, "must be a finite number")
	}
	return nil
}

// checkTotals rejects a portfolio whose position or portfolio totals do not fit a float64.
func (p Portfolio) checkTotals() error {
	for _, s := range p.Stocks {
		if err := finitePrice("avgPrice", s.AvgPrice); err != nil {
			return err
		}
		if err := finitePrice("currentPrice", s.CurrentPrice); err != nil {
			return err
		}
		if !s.Valuation().finite() {
			return domain.NewValidationError("stocks", "value of "+s.StockID+" is out of range")
		}
	}
	if !p.Valuation().finite() {
		return domain.NewValidationError("stocks", "portfolio value is out of range")
	}
	return nil
}

// Valuation computes the totals of one position.
func (s Stock) Valuation() Valuation {
	return s.amounts().valuation()
}

// Valuation computes the totals of the portfolio from its current positions.
// ReturnPercent is 0 when the total cost is 0.
func (p Portfolio) Valuation() Valuation {
	total := amounts{value: decimal.Zero, cost: decimal.Zero}
	for _, s := range p.Stocks {
		a := s.amounts()
		total.value = total.value.Add(a.value)
		total.cost = total.cost.Add(a.cost)
	}
	return total.valuation()
}
