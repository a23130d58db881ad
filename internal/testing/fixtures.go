package testing

import (
	"context"
	"testing"

	"github.com/aristath/stockboard/internal/modules/portfolio"
)

// SeedPortfolio creates a portfolio named name on ledger and adds stocks to it.
func SeedPortfolio(t *testing.T, ledger *portfolio.Ledger, name string, stocks ...portfolio.Stock) portfolio.Portfolio {
	t.Helper()
	ctx := context.Background()

	p, err := ledger.CreatePortfolio(ctx, name, "")
	if err != nil {
		t.Fatalf("Failed to create portfolio %s: %v", name, err)
	}
	for _, s := range stocks {
		if _, err := ledger.AddStock(ctx, p.ID, s); err != nil {
			t.Fatalf("Failed to add %s to %s: %v", s.StockID, name, err)
		}
	}

	p, err = ledger.Portfolio(p.ID)
	if err != nil {
		t.Fatalf("Failed to read back portfolio %s: %v", name, err)
	}
	return p
}

// SampleStocks returns a small, fixed set of positions.
func SampleStocks() []portfolio.Stock {
	return []portfolio.Stock{
		{StockID: "AAPL", Symbol: "AAPL", Name: "Apple Inc.", Quantity: 10, AvgPrice: 150, CurrentPrice: 175},
		{StockID: "MSFT", Symbol: "MSFT", Name: "Microsoft", Quantity: 5, AvgPrice: 300, CurrentPrice: 280},
		{StockID: "600519", Symbol: "600519.SS", Name: "Kweichow Moutai", Quantity: 2, AvgPrice: 1700, CurrentPrice: 1650},
	}
}
