package portfolio_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/stockboard/internal/modules/portfolio"
	"github.com/aristath/stockboard/internal/storage"
	testingpkg "github.com/aristath/stockboard/internal/testing"
)

func TestLedger_SQLiteRoundTrip(t *testing.T) {
	for _, codec := range []storage.Codec{storage.JSONCodec{}, storage.MsgpackCodec{}} {
		t.Run(codec.Name(), func(t *testing.T) {
			repo, _ := testingpkg.NewTestRepository(t, codec)

			ledger := portfolio.NewLedger(repo, nil, portfolio.Options{}, zerolog.Nop())
			p := testingpkg.SeedPortfolio(t, ledger, "Core", testingpkg.SampleStocks()...)
			_, err := ledger.UpdateStockQuantity(context.Background(), p.ID, "MSFT", 0)
			require.NoError(t, err)

			restored := portfolio.NewLedger(repo, nil, portfolio.Options{}, zerolog.Nop())
			require.NoError(t, restored.Load(context.Background()))

			got, err := restored.Portfolio(p.ID)
			require.NoError(t, err)
			require.Len(t, got.Stocks, 3)
			assert.Equal(t, int64(0), got.Stocks[1].Quantity)
			assert.True(t, got.CreatedAt.Equal(p.CreatedAt))

			current, ok := restored.Current()
			require.True(t, ok)
			assert.Equal(t, p.ID, current.ID)

			want, err := ledger.Valuation(p.ID)
			require.NoError(t, err)
			have, err := restored.Valuation(p.ID)
			require.NoError(t, err)
			assert.Equal(t, want, have)
		})
	}
}
