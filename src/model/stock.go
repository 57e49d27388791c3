package model

import (
	"fmt"
	"strings"
)

// Placeholder display names. The display name is not persisted, so stocks
// reconstructed outside of a real quote lookup carry one of these.
const (
	StockNameFetched = "Fetched Stock"
	StockNameDummy   = "Dummy Stock"
	StockNameSaved   = "Saved Stock"
)

// Stock identifies one tradable instrument and its last-known price.
// It is a value type: not persisted with identity of its own, only embedded
// in a holding.
type Stock struct {
	Symbol string  `json:"symbol"`
	Name   string  `json:"name"`
	Price  float64 `json:"price"`
}

// NewStock normalizes the symbol to its canonical uppercase form.
func NewStock(symbol, name string, price float64) Stock {
	return Stock{
		Symbol: strings.ToUpper(strings.TrimSpace(symbol)),
		Name:   name,
		Price:  price,
	}
}

func (s Stock) String() string {
	return fmt.Sprintf("%s: %s - $%v", s.Symbol, s.Name, s.Price)
}
