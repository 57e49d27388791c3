package model

// Profile owns zero or more portfolios. Usernames are unique; portfolio names
// are unique per profile, not globally.
type Profile struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Username string `gorm:"size:100;uniqueIndex;not null" json:"username"`
}

func (Profile) TableName() string { return "profiles" }

// PortfolioRecord is the stored shell of a portfolio.
type PortfolioRecord struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	ProfileID uint   `gorm:"not null;uniqueIndex:idx_profile_name" json:"profile_id"`
	Name      string `gorm:"size:200;not null;uniqueIndex:idx_profile_name" json:"name"`
}

func (PortfolioRecord) TableName() string { return "portfolios" }

// HoldingRecord stores one holding row. Display names are not persisted, only
// symbol, quantity and last-known price.
type HoldingRecord struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	PortfolioID uint    `gorm:"index;not null" json:"portfolio_id"`
	Symbol      string  `gorm:"size:20;not null" json:"symbol"`
	Quantity    int64   `gorm:"not null" json:"quantity"`
	Price       float64 `gorm:"not null" json:"price"`
}

func (HoldingRecord) TableName() string { return "holdings" }
