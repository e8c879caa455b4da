package migrations

import (
	"github.com/ksred/fantaleague-api/internal/types"
	"gorm.io/gorm"
)

func AddTradeTables(db *gorm.DB) error {
	if err := db.AutoMigrate(&types.Trade{}); err != nil {
		return err
	}

	if err := db.AutoMigrate(&types.TradePlayer{}); err != nil {
		return err
	}

	return db.AutoMigrate(&types.TradeLog{})
}
