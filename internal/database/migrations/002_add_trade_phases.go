package migrations

import (
	"github.com/ksred/fantaleague-api/internal/types"
	"gorm.io/gorm"
)

func AddTradePhases(db *gorm.DB) error {
	return db.AutoMigrate(&types.TradePhase{})
}
