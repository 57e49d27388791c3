package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionBuyThenSellScenario(t *testing.T) {
	p := NewPortfolio("Growth")
	require.NoError(t, p.AddStock(NewStock("AAPL", StockNameFetched, 150), 10))
	assert.InDelta(t, 1500.0, p.Value(), 1e-9)

	sell := NewTransaction("AAPL", ActionSell, 4, 160)
	require.NoError(t, sell.Execute(p))

	assert.Equal(t, int64(6), p.StockQuantity("AAPL"))
	assert.InDelta(t, 960.0, p.Value(), 1e-9)
}

func TestTransactionBuyCreatesHoldingWithPlaceholderName(t *testing.T) {
	p := NewPortfolio("Growth")

	buy := NewTransaction("nvda", ActionBuy, 3, 500)
	require.NoError(t, buy.Execute(p))

	holdings := p.Holdings()
	require.Len(t, holdings, 1)
	assert.Equal(t, "NVDA", holdings[0].Stock.Symbol)
	assert.Equal(t, StockNameDummy, holdings[0].Stock.Name)
	assert.Equal(t, int64(3), holdings[0].Quantity)
}

func TestTransactionSellMoreThanHeld(t *testing.T) {
	p := NewPortfolio("Growth")
	require.NoError(t, p.AddStock(NewStock("AAPL", StockNameFetched, 150), 2))

	sell := NewTransaction("AAPL", ActionSell, 3, 150)
	err := sell.Execute(p)

	var insufficient *InsufficientHoldingError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, int64(2), p.StockQuantity("AAPL"))
}

func TestTransactionSellAbsentSymbol(t *testing.T) {
	p := NewPortfolio("Growth")

	sell := NewTransaction("AAPL", ActionSell, 1, 150)
	err := sell.Execute(p)

	var insufficient *InsufficientHoldingError
	require.True(t, errors.As(err, &insufficient))
}

func TestTransactionValidate(t *testing.T) {
	cases := []struct {
		name string
		tx   Transaction
		ok   bool
	}{
		{"valid buy", NewTransaction("AAPL", "buy", 1, 10), true},
		{"valid sell", NewTransaction("AAPL", "SELL", 1, 10), true},
		{"blank symbol", NewTransaction("  ", "buy", 1, 10), false},
		{"unknown action", NewTransaction("AAPL", "short", 1, 10), false},
		{"zero quantity", NewTransaction("AAPL", "buy", 0, 10), false},
		{"negative quantity", NewTransaction("AAPL", "buy", -2, 10), false},
		{"negative price", NewTransaction("AAPL", "buy", 1, -1), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.tx.Validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
