package model

import (
	"fmt"
	"strings"
)

const (
	ActionBuy  = "buy"
	ActionSell = "sell"
)

// Transaction is a one-shot buy or sell instruction applied to a single
// portfolio. It is ephemeral: once executed only the resulting holdings
// survive, no transaction log is kept.
type Transaction struct {
	Symbol   string  `json:"symbol"`
	Action   string  `json:"action"`
	Quantity int64   `json:"quantity"`
	Price    float64 `json:"price"`
}

func NewTransaction(symbol, action string, quantity int64, price float64) Transaction {
	return Transaction{
		Symbol:   strings.ToUpper(strings.TrimSpace(symbol)),
		Action:   strings.ToLower(strings.TrimSpace(action)),
		Quantity: quantity,
		Price:    price,
	}
}

// Validate rejects transactions the domain cannot express.
func (t Transaction) Validate() error {
	if t.Symbol == "" {
		return fmt.Errorf("transaction symbol is required")
	}
	if t.Action != ActionBuy && t.Action != ActionSell {
		return fmt.Errorf("unknown transaction action %q", t.Action)
	}
	if t.Quantity <= 0 {
		return fmt.Errorf("transaction quantity must be positive, got %d", t.Quantity)
	}
	if t.Price < 0 {
		return fmt.Errorf("transaction price must not be negative, got %v", t.Price)
	}
	return nil
}

// Execute applies the transaction to the portfolio. Buys always succeed.
// Sells propagate the aggregate's InsufficientHoldingError unchanged.
func (t Transaction) Execute(portfolio *Portfolio) error {
	if err := t.Validate(); err != nil {
		return err
	}
	stock := NewStock(t.Symbol, StockNameDummy, t.Price)
	switch t.Action {
	case ActionBuy:
		return portfolio.AddStock(stock, t.Quantity)
	case ActionSell:
		return portfolio.RemoveStock(stock, t.Quantity)
	}
	return fmt.Errorf("unknown transaction action %q", t.Action)
}

func (t Transaction) String() string {
	return fmt.Sprintf("Transaction: %s %d shares of %s at $%v per share",
		t.Action, t.Quantity, t.Symbol, t.Price)
}
