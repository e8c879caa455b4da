package trade

import (
	"errors"
	"fmt"
	"time"

	"github.com/ksred/fantaleague-api/internal/types"
	"gorm.io/gorm"
)

type Database struct {
	db *gorm.DB
}

func NewDatabase(db *gorm.DB) *Database {
	return &Database{db: db}
}

// Transaction runs fn inside a single database transaction. Every trade
// transition that touches more than one row goes through here so the
// re-validation and the mutation commit or roll back together.
func (d *Database) Transaction(fn func(tx *gorm.DB) error) error {
	return d.db.Transaction(fn)
}

// CreateTradeWithRelations persists a new trade, its player entries and
// the proposal log entry in one transaction.
func (d *Database) CreateTradeWithRelations(trade *types.Trade, players []types.TradePlayer, logAction string) error {
	tx := d.db.Begin()
	if err := tx.Error; err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Create(trade).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to create trade: %w", err)
	}

	for i := range players {
		players[i].TradeID = trade.TradeID
	}
	if err := tx.Create(&players).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to create trade players: %w", err)
	}

	entry := types.TradeLog{
		TradeID:   trade.TradeID,
		Action:    logAction,
		CreatedAt: time.Now(),
	}
	if err := tx.Create(&entry).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to create trade log: %w", err)
	}

	return tx.Commit().Error
}

// GetTrade retrieves a trade aggregate with players and logs loaded,
// logs newest first.
func (d *Database) GetTrade(tradeID string) (*types.Trade, error) {
	var trade types.Trade
	err := d.db.
		Preload("Players").
		Preload("Logs", func(db *gorm.DB) *gorm.DB {
			return db.Order("id DESC")
		}).
		Where("trade_id = ?", tradeID).
		First(&trade).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTradeNotFound
		}
		return nil, fmt.Errorf("failed to fetch trade: %w", err)
	}
	return &trade, nil
}

// GetTradeTx loads a trade with its player entries inside the caller's
// transaction, for re-validation before a state change.
func (d *Database) GetTradeTx(tx *gorm.DB, tradeID string) (*types.Trade, error) {
	var trade types.Trade
	err := tx.Preload("Players").Where("trade_id = ?", tradeID).First(&trade).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTradeNotFound
		}
		return nil, fmt.Errorf("failed to fetch trade: %w", err)
	}
	return &trade, nil
}

// ListTradesForTeam returns the trades a team participates in, newest
// first. status filters by trade status; tradeType is "incoming",
// "outgoing" or anything else for both directions.
func (d *Database) ListTradesForTeam(teamID, status, tradeType string) ([]types.Trade, error) {
	query := d.db.
		Preload("Players").
		Preload("Logs", func(db *gorm.DB) *gorm.DB {
			return db.Order("id DESC")
		})

	switch tradeType {
	case "incoming":
		query = query.Where("to_team_id = ?", teamID)
	case "outgoing":
		query = query.Where("from_team_id = ?", teamID)
	default:
		query = query.Where("from_team_id = ? OR to_team_id = ?", teamID, teamID)
	}

	if status != "" {
		query = query.Where("status = ?", status)
	}

	var trades []types.Trade
	if err := query.Order("created_at DESC").Find(&trades).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch trades: %w", err)
	}
	return trades, nil
}

// ListAllTrades returns every trade, optionally filtered by status,
// newest first. Administrator view.
func (d *Database) ListAllTrades(status string) ([]types.Trade, error) {
	query := d.db.
		Preload("Players").
		Preload("Logs", func(db *gorm.DB) *gorm.DB {
			return db.Order("id DESC")
		})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var trades []types.Trade
	if err := query.Order("created_at DESC").Find(&trades).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch trades: %w", err)
	}
	return trades, nil
}

// StatusCounts returns the number of trades per status.
func (d *Database) StatusCounts() (map[string]int64, error) {
	type row struct {
		Status string
		Total  int64
	}
	var rows []row
	if err := d.db.Model(&types.Trade{}).
		Select("status, COUNT(*) as total").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count trades: %w", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Total
	}
	return counts, nil
}

// UpdateStatusGuarded moves a trade from one status to another inside
// the caller's transaction. The WHERE clause carries the expected
// current status so two resolvers racing on the same trade cannot both
// win: the loser sees zero affected rows and gets ErrAlreadyProcessed.
func (d *Database) UpdateStatusGuarded(tx *gorm.DB, tradeID, fromStatus, toStatus string) error {
	result := tx.Model(&types.Trade{}).
		Where("trade_id = ? AND status = ?", tradeID, fromStatus).
		Updates(map[string]interface{}{
			"status":     toStatus,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update trade status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrAlreadyProcessed
	}
	return nil
}

// AppendLog adds an audit entry for a trade inside the caller's transaction.
func (d *Database) AppendLog(tx *gorm.DB, tradeID, action string) error {
	entry := types.TradeLog{
		TradeID:   tradeID,
		Action:    action,
		CreatedAt: time.Now(),
	}
	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to append trade log: %w", err)
	}
	return nil
}

// DeleteTradeCascade removes a trade and its player and log rows inside
// the caller's transaction. The status guard makes a cancel racing an
// admin approval lose cleanly instead of deleting an applied trade.
func (d *Database) DeleteTradeCascade(tx *gorm.DB, tradeID string, allowedStatuses []string) error {
	result := tx.Unscoped().
		Where("trade_id = ? AND status IN ?", tradeID, allowedStatuses).
		Delete(&types.Trade{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete trade: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrAlreadyProcessed
	}

	if err := tx.Where("trade_id = ?", tradeID).Delete(&types.TradePlayer{}).Error; err != nil {
		return fmt.Errorf("failed to delete trade players: %w", err)
	}
	if err := tx.Where("trade_id = ?", tradeID).Delete(&types.TradeLog{}).Error; err != nil {
		return fmt.Errorf("failed to delete trade logs: %w", err)
	}
	return nil
}
