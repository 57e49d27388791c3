package migrations

import (
	"fmt"

	"portfoliotracker/src/model"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	legacyTableName      = "portfolios_legacy"
	legacyDefaultProfile = "default"
)

// PrepareLegacyPortfoliosTable detects the old single-column portfolios table
// (one "name" column, no profile scoping) and renames it aside so AutoMigrate
// can create the current schema. The renamed table is imported and dropped by
// importLegacyPortfolios afterwards.
func PrepareLegacyPortfoliosTable(db *gorm.DB) error {
	migrator := db.Migrator()

	if !migrator.HasTable("portfolios") || migrator.HasTable(legacyTableName) {
		return nil
	}

	columns, err := migrator.ColumnTypes("portfolios")
	if err != nil {
		return fmt.Errorf("inspect portfolios columns: %w", err)
	}
	if len(columns) != 1 || columns[0].Name() != "name" {
		return nil
	}

	logrus.Info("[migrations] legacy portfolios table detected, renaming aside")

	if err := migrator.RenameTable("portfolios", legacyTableName); err != nil {
		return fmt.Errorf("rename legacy portfolios table: %w", err)
	}

	return nil
}

// importLegacyPortfolios re-homes rows from the renamed legacy table as empty
// portfolios owned by the default profile, then drops the legacy table.
func importLegacyPortfolios(db *gorm.DB) error {
	if !db.Migrator().HasTable(legacyTableName) {
		return nil
	}

	profile := model.Profile{Username: legacyDefaultProfile}
	if err := db.Where("username = ?", legacyDefaultProfile).FirstOrCreate(&profile).Error; err != nil {
		return fmt.Errorf("ensure default profile: %w", err)
	}

	var names []string
	if err := db.Table(legacyTableName).Pluck("name", &names).Error; err != nil {
		return fmt.Errorf("read legacy portfolio names: %w", err)
	}

	for _, name := range names {
		record := model.PortfolioRecord{ProfileID: profile.ID, Name: name}
		if err := db.Where("profile_id = ? AND name = ?", profile.ID, name).
			FirstOrCreate(&record).Error; err != nil {
			return fmt.Errorf("import legacy portfolio %q: %w", name, err)
		}
	}

	if err := db.Migrator().DropTable(legacyTableName); err != nil {
		return fmt.Errorf("drop legacy portfolios table: %w", err)
	}

	logrus.WithField("count", len(names)).Info("[migrations] legacy portfolios imported under default profile")

	return nil
}
