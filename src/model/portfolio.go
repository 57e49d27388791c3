package model

import (
	"fmt"
)

// Holding pairs a stock with the quantity a portfolio currently owns of it.
type Holding struct {
	Stock    Stock `json:"stock"`
	Quantity int64 `json:"quantity"`
}

// Value is the holding's contribution to the portfolio total.
func (h Holding) Value() float64 {
	return h.Stock.Price * float64(h.Quantity)
}

// Portfolio is a named collection of holdings, at most one per symbol.
// Iteration follows insertion order so reports stay reproducible.
type Portfolio struct {
	Name     string
	holdings map[string]*Holding
	order    []string
}

func NewPortfolio(name string) *Portfolio {
	return &Portfolio{
		Name:     name,
		holdings: make(map[string]*Holding),
	}
}

// AddStock merges the stock into the portfolio. An existing holding for the
// same symbol gets its quantity incremented and its stored stock replaced, so
// the holding always carries the price of the most recent add.
func (p *Portfolio) AddStock(stock Stock, quantity int64) error {
	if stock.Symbol == "" {
		return fmt.Errorf("cannot add stock with blank symbol to portfolio '%s'", p.Name)
	}
	if h, ok := p.holdings[stock.Symbol]; ok {
		h.Quantity += quantity
		h.Stock = stock
		return nil
	}
	p.holdings[stock.Symbol] = &Holding{Stock: stock, Quantity: quantity}
	p.order = append(p.order, stock.Symbol)
	return nil
}

// RemoveStock decrements the holding for stock.Symbol. The aggregate is the
// enforcement point for the sell invariant: removing more than is held fails
// with InsufficientHoldingError and leaves the holding untouched. Removing the
// exact quantity deletes the holding; a partial removal keeps it and refreshes
// the stored stock with the caller's price.
func (p *Portfolio) RemoveStock(stock Stock, quantity int64) error {
	h, ok := p.holdings[stock.Symbol]
	if !ok {
		return &InsufficientHoldingError{Symbol: stock.Symbol, Requested: quantity}
	}
	if h.Quantity < quantity {
		return &InsufficientHoldingError{
			Symbol:    stock.Symbol,
			Available: h.Quantity,
			Requested: quantity,
		}
	}
	h.Quantity -= quantity
	if h.Quantity == 0 {
		delete(p.holdings, stock.Symbol)
		p.dropFromOrder(stock.Symbol)
		return nil
	}
	h.Stock = stock
	return nil
}

func (p *Portfolio) dropFromOrder(symbol string) {
	for i, s := range p.order {
		if s == symbol {
			p.order = append(p.order[:i], p.order[i+1:]...)
			return
		}
	}
}

// Clone returns a deep copy detached from this aggregate. Mutating the clone
// or the original leaves the other untouched.
func (p *Portfolio) Clone() *Portfolio {
	out := NewPortfolio(p.Name)
	for _, symbol := range p.order {
		holding := *p.holdings[symbol]
		out.holdings[symbol] = &holding
		out.order = append(out.order, symbol)
	}
	return out
}

// Value sums price*quantity across all holdings. Empty portfolio values at 0.
func (p *Portfolio) Value() float64 {
	total := 0.0
	for _, h := range p.holdings {
		total += h.Value()
	}
	return total
}

func (p *Portfolio) HasStock(symbol string) bool {
	_, ok := p.holdings[symbol]
	return ok
}

// StockQuantity returns 0 for symbols the portfolio does not hold.
func (p *Portfolio) StockQuantity(symbol string) int64 {
	if h, ok := p.holdings[symbol]; ok {
		return h.Quantity
	}
	return 0
}

// Holdings returns the holdings in insertion order.
func (p *Portfolio) Holdings() []Holding {
	out := make([]Holding, 0, len(p.order))
	for _, symbol := range p.order {
		out = append(out, *p.holdings[symbol])
	}
	return out
}

func (p *Portfolio) Len() int {
	return len(p.holdings)
}

func (p *Portfolio) String() string {
	return fmt.Sprintf("Portfolio: %s, Total Value: $%v", p.Name, p.Value())
}
