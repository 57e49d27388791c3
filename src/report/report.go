package report

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"portfoliotracker/src/model"
)

// PortfolioGetter resolves one portfolio by profile and name.
type PortfolioGetter interface {
	Get(ctx context.Context, username, name string) (*model.Portfolio, error)
}

// Generator renders deterministic plain-text portfolio summaries, suitable to
// hand straight to a display layer. Holdings appear in insertion order.
type Generator struct {
	registry PortfolioGetter
}

func NewGenerator(registry PortfolioGetter) *Generator {
	return &Generator{registry: registry}
}

// Render produces the report for one portfolio. An absent portfolio comes back
// as a NotFoundError; callers wanting the human-readable message can print the
// error text directly.
func (g *Generator) Render(ctx context.Context, username, portfolioName string) (string, error) {
	portfolio, err := g.registry.Get(ctx, username, portfolioName)
	if err != nil {
		return "", err
	}
	return RenderPortfolio(portfolio), nil
}

// RenderPortfolio formats the report for an already-resolved portfolio.
// Monetary amounts are rendered with exactly two decimals; values are summed
// in decimal so the printed total always equals the sum of the printed lines.
func RenderPortfolio(portfolio *model.Portfolio) string {
	var lines []string
	lines = append(lines, fmt.Sprintf("Report for Portfolio: %s", portfolio.Name))
	lines = append(lines, "-")

	total := decimal.Zero
	holdings := portfolio.Holdings()
	if len(holdings) == 0 {
		lines = append(lines, "No stocks in this portfolio.")
	} else {
		for _, holding := range holdings {
			price := decimal.NewFromFloat(holding.Stock.Price)
			value := price.Mul(decimal.NewFromInt(holding.Quantity))
			total = total.Add(value)
			lines = append(lines, fmt.Sprintf("%s | %s | Qty: %d | Price: $%s | Value: $%s",
				holding.Stock.Symbol,
				holding.Stock.Name,
				holding.Quantity,
				price.StringFixed(2),
				value.StringFixed(2),
			))
		}
	}

	lines = append(lines, "-")
	lines = append(lines, fmt.Sprintf("Total Portfolio Value: $%s", total.StringFixed(2)))

	return strings.Join(lines, "\n")
}
