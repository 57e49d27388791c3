package repository

import (
	"context"
	"fmt"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"portfoliotracker/src/database"
	"portfoliotracker/src/model"
)

// PortfolioRepository maps the in-memory portfolio model onto the three
// relational tables (profiles, portfolios, holdings). Saves are full-replace:
// the stored holding rows are deleted and reinserted from the in-memory set
// inside a single transaction.
type PortfolioRepository struct {
	db *gorm.DB
}

// NewPortfolioRepository creates a repository instance using the main
// read/write database.
func NewPortfolioRepository() *PortfolioRepository {
	logger.WithField("component", "PortfolioRepository").
		Info("Creating new PortfolioRepository with MainDB")

	return &PortfolioRepository{
		db: database.MainDB,
	}
}

// WithDB allows overriding the underlying *gorm.DB instance.
// Useful for tests or when using a specific session/transaction.
func (r *PortfolioRepository) WithDB(db *gorm.DB) *PortfolioRepository {
	return &PortfolioRepository{db: db}
}

// GetOrCreateProfileID resolves the numeric id for a username, creating the
// profile row on first reference. Safe to call repeatedly with the same
// username.
func (r *PortfolioRepository) GetOrCreateProfileID(
	ctx context.Context,
	username string,
) (uint, error) {

	profile := model.Profile{Username: username}
	err := r.db.WithContext(ctx).
		Where("username = ?", username).
		FirstOrCreate(&profile).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":     "PortfolioRepository",
			"op":       "GetOrCreateProfileID",
			"username": username,
		}).WithError(err).Error("Failed to resolve profile")

		return 0, err
	}

	return profile.ID, nil
}

// SavePortfolio persists one portfolio for the given profile. The portfolio
// row is upserted by (profile_id, name) and its holding rows are fully
// replaced with the current in-memory set, all inside one commit.
func (r *PortfolioRepository) SavePortfolio(
	ctx context.Context,
	portfolio *model.Portfolio,
	username string,
) error {

	logger.WithFields(map[string]interface{}{
		"repo":      "PortfolioRepository",
		"op":        "SavePortfolio",
		"portfolio": portfolio.Name,
		"username":  username,
		"holdings":  portfolio.Len(),
	}).Debug("Saving portfolio")

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		profile := model.Profile{Username: username}
		if err := tx.Where("username = ?", username).FirstOrCreate(&profile).Error; err != nil {
			return fmt.Errorf("resolve profile %q: %w", username, err)
		}

		record := model.PortfolioRecord{ProfileID: profile.ID, Name: portfolio.Name}
		if err := tx.Where("profile_id = ? AND name = ?", profile.ID, portfolio.Name).
			FirstOrCreate(&record).Error; err != nil {
			return fmt.Errorf("upsert portfolio %q: %w", portfolio.Name, err)
		}

		if err := tx.Where("portfolio_id = ?", record.ID).
			Delete(&model.HoldingRecord{}).Error; err != nil {
			return fmt.Errorf("clear holdings for %q: %w", portfolio.Name, err)
		}

		for _, holding := range portfolio.Holdings() {
			row := model.HoldingRecord{
				PortfolioID: record.ID,
				Symbol:      holding.Stock.Symbol,
				Quantity:    holding.Quantity,
				Price:       holding.Stock.Price,
			}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("insert holding %s for %q: %w", row.Symbol, portfolio.Name, err)
			}
		}

		return nil
	})

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":      "PortfolioRepository",
			"op":        "SavePortfolio",
			"portfolio": portfolio.Name,
		}).WithError(err).Error("Failed to save portfolio")

		return err
	}

	logger.WithFields(map[string]interface{}{
		"repo":      "PortfolioRepository",
		"op":        "SavePortfolio",
		"portfolio": portfolio.Name,
	}).Info("Portfolio saved successfully")

	return nil
}

// LoadPortfolios reconstructs all portfolios owned by the profile. Display
// names are not stored, so loaded stocks carry the "Saved Stock" placeholder.
func (r *PortfolioRepository) LoadPortfolios(
	ctx context.Context,
	username string,
) ([]*model.Portfolio, error) {

	profileID, err := r.GetOrCreateProfileID(ctx, username)
	if err != nil {
		return nil, err
	}

	var records []model.PortfolioRecord
	if err := r.db.WithContext(ctx).
		Where("profile_id = ?", profileID).
		Order("id").
		Find(&records).Error; err != nil {

		logger.WithFields(map[string]interface{}{
			"repo":     "PortfolioRepository",
			"op":       "LoadPortfolios",
			"username": username,
		}).WithError(err).Error("Failed to fetch portfolio rows")

		return nil, err
	}

	portfolios := make([]*model.Portfolio, 0, len(records))
	for _, record := range records {
		portfolio := model.NewPortfolio(record.Name)

		var rows []model.HoldingRecord
		if err := r.db.WithContext(ctx).
			Where("portfolio_id = ?", record.ID).
			Order("id").
			Find(&rows).Error; err != nil {

			logger.WithFields(map[string]interface{}{
				"repo":      "PortfolioRepository",
				"op":        "LoadPortfolios",
				"portfolio": record.Name,
			}).WithError(err).Error("Failed to fetch holding rows")

			return nil, err
		}

		for _, row := range rows {
			stock := model.NewStock(row.Symbol, model.StockNameSaved, row.Price)
			if err := portfolio.AddStock(stock, row.Quantity); err != nil {
				logger.WithFields(map[string]interface{}{
					"repo":      "PortfolioRepository",
					"op":        "LoadPortfolios",
					"portfolio": record.Name,
					"symbol":    row.Symbol,
				}).WithError(err).Warn("Skipping unloadable holding row")
			}
		}

		portfolios = append(portfolios, portfolio)
	}

	logger.WithFields(map[string]interface{}{
		"repo":       "PortfolioRepository",
		"op":         "LoadPortfolios",
		"username":   username,
		"portfolios": len(portfolios),
	}).Debug("Portfolios loaded")

	return portfolios, nil
}

// ListProfiles returns all known usernames in alphabetical order, defaulting
// to ["default"] while the store is still empty.
func (r *PortfolioRepository) ListProfiles(ctx context.Context) ([]string, error) {
	var usernames []string
	err := r.db.WithContext(ctx).
		Model(&model.Profile{}).
		Order("username").
		Pluck("username", &usernames).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "PortfolioRepository",
			"op":   "ListProfiles",
		}).WithError(err).Error("Failed to list profiles")

		return nil, err
	}

	if len(usernames) == 0 {
		return []string{"default"}, nil
	}

	return usernames, nil
}
