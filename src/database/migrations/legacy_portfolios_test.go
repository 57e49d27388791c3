package migrations

import (
	"testing"

	"portfoliotracker/src/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db
}

func autoMigrate(t *testing.T, db *gorm.DB) {
	t.Helper()
	require.NoError(t, db.AutoMigrate(
		&model.Profile{},
		&model.PortfolioRecord{},
		&model.HoldingRecord{},
		&DataMigration{},
	))
}

func TestLegacyPortfoliosMigration(t *testing.T) {
	db := newTestDB(t)

	// Old schema: a portfolios table with nothing but a name column.
	require.NoError(t, db.Exec(`CREATE TABLE portfolios (name TEXT)`).Error)
	require.NoError(t, db.Exec(`INSERT INTO portfolios (name) VALUES ('Retirement'), ('Growth')`).Error)

	require.NoError(t, PrepareLegacyPortfoliosTable(db))
	autoMigrate(t, db)
	require.NoError(t, Run(db))

	assert.False(t, db.Migrator().HasTable("portfolios_legacy"))

	var profile model.Profile
	require.NoError(t, db.Where("username = ?", "default").First(&profile).Error)

	var records []model.PortfolioRecord
	require.NoError(t, db.Where("profile_id = ?", profile.ID).Order("name").Find(&records).Error)
	require.Len(t, records, 2)
	assert.Equal(t, "Growth", records[0].Name)
	assert.Equal(t, "Retirement", records[1].Name)

	var holdings int64
	require.NoError(t, db.Model(&model.HoldingRecord{}).Count(&holdings).Error)
	assert.Zero(t, holdings, "legacy portfolios import as empty shells")
}

func TestLegacyMigrationSkipsCurrentSchema(t *testing.T) {
	db := newTestDB(t)
	autoMigrate(t, db)

	// The current multi-column table must not be mistaken for the legacy one.
	require.NoError(t, PrepareLegacyPortfoliosTable(db))
	assert.False(t, db.Migrator().HasTable("portfolios_legacy"))
	assert.True(t, db.Migrator().HasTable("portfolios"))

	require.NoError(t, Run(db))
}

func TestRunOnceAppliesExactlyOnce(t *testing.T) {
	db := newTestDB(t)
	autoMigrate(t, db)

	calls := 0
	fn := func(*gorm.DB) error {
		calls++
		return nil
	}

	require.NoError(t, RunOnce(db, "test_migration", fn))
	require.NoError(t, RunOnce(db, "test_migration", fn))

	assert.Equal(t, 1, calls)
}

func TestRunOnceDoesNotRecordFailures(t *testing.T) {
	db := newTestDB(t)
	autoMigrate(t, db)

	boom := assert.AnError
	err := RunOnce(db, "failing_migration", func(*gorm.DB) error { return boom })
	require.Error(t, err)

	var count int64
	require.NoError(t, db.Model(&DataMigration{}).Where("id = ?", "failing_migration").Count(&count).Error)
	assert.Zero(t, count)
}
