package registry

import (
	"context"
	"fmt"
	"strings"
	"sync"

	logger "github.com/sirupsen/logrus"

	"portfoliotracker/src/model"
	"portfoliotracker/src/quotes"
)

// PortfolioStore is the persistence collaborator the registry delegates
// load/save to.
type PortfolioStore interface {
	SavePortfolio(ctx context.Context, portfolio *model.Portfolio, username string) error
	LoadPortfolios(ctx context.Context, username string) ([]*model.Portfolio, error)
	ListProfiles(ctx context.Context) ([]string, error)
}

// Registry mediates portfolio creation, lookup, stock addition and transaction
// execution. There is no ambient "current profile": every operation names its
// profile explicitly, and a single mutex serializes each load-mutate-save
// cycle so two callers cannot race a full-replace write for the same
// portfolio.
type Registry struct {
	store  PortfolioStore
	quotes quotes.PriceSource

	mu       sync.Mutex
	profiles map[string]*workingSet
}

// workingSet is the in-memory portfolio set for one profile, insertion ordered.
type workingSet struct {
	portfolios map[string]*model.Portfolio
	order      []string
}

func NewRegistry(store PortfolioStore, priceSource quotes.PriceSource) *Registry {
	return &Registry{
		store:    store,
		quotes:   priceSource,
		profiles: make(map[string]*workingSet),
	}
}

// Load replaces the profile's in-memory portfolio set with what persistence
// returns. Unsaved in-memory changes are overwritten, there is no merge.
func (r *Registry) Load(ctx context.Context, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.reload(ctx, normalizeUsername(username))
	return err
}

func (r *Registry) reload(ctx context.Context, username string) (*workingSet, error) {
	portfolios, err := r.store.LoadPortfolios(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("load portfolios for %q: %w", username, err)
	}

	set := &workingSet{portfolios: make(map[string]*model.Portfolio, len(portfolios))}
	for _, p := range portfolios {
		set.portfolios[p.Name] = p
		set.order = append(set.order, p.Name)
	}
	r.profiles[username] = set

	logger.WithFields(map[string]interface{}{
		"component":  "Registry",
		"username":   username,
		"portfolios": len(portfolios),
	}).Debug("Profile portfolios loaded")

	return set, nil
}

func (r *Registry) workingSetLocked(ctx context.Context, username string) (*workingSet, error) {
	if set, ok := r.profiles[username]; ok {
		return set, nil
	}
	return r.reload(ctx, username)
}

// ListProfiles returns all known usernames.
func (r *Registry) ListProfiles(ctx context.Context) ([]string, error) {
	return r.store.ListProfiles(ctx)
}

// Portfolios returns the profile's portfolios in insertion order. Like Get,
// the returned portfolios are point-in-time snapshots.
func (r *Registry) Portfolios(ctx context.Context, username string) ([]*model.Portfolio, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, err := r.workingSetLocked(ctx, normalizeUsername(username))
	if err != nil {
		return nil, err
	}

	out := make([]*model.Portfolio, 0, len(set.order))
	for _, name := range set.order {
		out = append(out, set.portfolios[name].Clone())
	}
	return out, nil
}

// CreatePortfolio inserts an empty portfolio and immediately persists it as an
// empty shell. A name already taken within the profile fails with
// DuplicateNameError and leaves the existing portfolio untouched.
func (r *Registry) CreatePortfolio(ctx context.Context, username, name string) (*model.Portfolio, error) {
	username = normalizeUsername(username)
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("portfolio name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	set, err := r.workingSetLocked(ctx, username)
	if err != nil {
		return nil, err
	}

	if _, exists := set.portfolios[name]; exists {
		return nil, &model.DuplicateNameError{Name: name}
	}

	portfolio := model.NewPortfolio(name)
	if err := r.store.SavePortfolio(ctx, portfolio, username); err != nil {
		return nil, fmt.Errorf("persist new portfolio %q: %w", name, err)
	}

	set.portfolios[name] = portfolio
	set.order = append(set.order, name)

	logger.WithFields(map[string]interface{}{
		"component": "Registry",
		"username":  username,
		"portfolio": name,
	}).Info("Portfolio created")

	return portfolio.Clone(), nil
}

// Get looks up one portfolio by name. The result is a point-in-time snapshot
// detached from the registry's working set: callers can read it without
// holding any lock while transactions keep mutating the live aggregate.
func (r *Registry) Get(ctx context.Context, username, name string) (*model.Portfolio, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	portfolio, err := r.getLocked(ctx, normalizeUsername(username), name)
	if err != nil {
		return nil, err
	}
	return portfolio.Clone(), nil
}

func (r *Registry) getLocked(ctx context.Context, username, name string) (*model.Portfolio, error) {
	set, err := r.workingSetLocked(ctx, username)
	if err != nil {
		return nil, err
	}
	portfolio, ok := set.portfolios[name]
	if !ok {
		return nil, &model.NotFoundError{Kind: "Portfolio", Name: name}
	}
	return portfolio, nil
}

// QuickAddStock fetches the current price for symbol from the quote source,
// then adds the stock to the named portfolio and persists the result. A failed
// lookup fails the whole operation; nothing is mutated.
func (r *Registry) QuickAddStock(ctx context.Context, username, portfolioName, symbol string, quantity int64) error {
	username = normalizeUsername(username)
	if quantity <= 0 {
		return fmt.Errorf("quantity must be positive, got %d", quantity)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	portfolio, err := r.getLocked(ctx, username, portfolioName)
	if err != nil {
		return err
	}

	price, err := r.quotes.GetPrice(ctx, symbol)
	if err != nil {
		return err
	}

	stock := model.NewStock(symbol, model.StockNameFetched, price)
	if err := portfolio.AddStock(stock, quantity); err != nil {
		return err
	}

	if err := r.store.SavePortfolio(ctx, portfolio, username); err != nil {
		return fmt.Errorf("persist portfolio %q: %w", portfolioName, err)
	}

	logger.WithFields(map[string]interface{}{
		"component": "Registry",
		"username":  username,
		"portfolio": portfolioName,
		"symbol":    stock.Symbol,
		"quantity":  quantity,
		"price":     price,
	}).Info("Stock added to portfolio")

	return nil
}

// ExecuteTransaction applies a buy/sell to the named portfolio and persists
// the result. Domain errors from the sell invariant propagate unchanged and
// nothing is persisted when execution fails.
func (r *Registry) ExecuteTransaction(ctx context.Context, username, portfolioName string, tx model.Transaction) error {
	username = normalizeUsername(username)

	r.mu.Lock()
	defer r.mu.Unlock()

	portfolio, err := r.getLocked(ctx, username, portfolioName)
	if err != nil {
		return err
	}

	if err := tx.Execute(portfolio); err != nil {
		logger.WithFields(map[string]interface{}{
			"component": "Registry",
			"username":  username,
			"portfolio": portfolioName,
			"action":    tx.Action,
			"symbol":    tx.Symbol,
		}).WithError(err).Warn("Transaction rejected")

		return err
	}

	if err := r.store.SavePortfolio(ctx, portfolio, username); err != nil {
		return fmt.Errorf("persist portfolio %q: %w", portfolioName, err)
	}

	logger.WithFields(map[string]interface{}{
		"component": "Registry",
		"username":  username,
		"portfolio": portfolioName,
		"action":    tx.Action,
		"symbol":    tx.Symbol,
		"quantity":  tx.Quantity,
	}).Info("Transaction executed")

	return nil
}

// Summary aggregates a profile's portfolio statistics for dashboards.
type Summary struct {
	Username   string  `json:"username"`
	Portfolios int     `json:"portfolios"`
	Positions  int     `json:"positions"`
	TotalValue float64 `json:"total_value"`
}

func (r *Registry) Summary(ctx context.Context, username string) (Summary, error) {
	username = normalizeUsername(username)

	r.mu.Lock()
	defer r.mu.Unlock()

	set, err := r.workingSetLocked(ctx, username)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{Username: username, Portfolios: len(set.order)}
	for _, name := range set.order {
		p := set.portfolios[name]
		summary.Positions += p.Len()
		summary.TotalValue += p.Value()
	}
	return summary, nil
}

func normalizeUsername(username string) string {
	username = strings.TrimSpace(username)
	if username == "" {
		return "default"
	}
	return username
}
