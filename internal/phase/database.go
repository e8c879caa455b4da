package phase

import (
	"errors"

	"github.com/ksred/fantaleague-api/internal/types"
	"gorm.io/gorm"
)

type Database struct {
	db *gorm.DB
}

func NewDatabase(db *gorm.DB) *Database {
	return &Database{db: db}
}

// CreatePhase appends a new phase row. Existing rows are never updated:
// the newest row wins and older rows remain as history.
func (d *Database) CreatePhase(phase *types.TradePhase) error {
	return d.db.Create(phase).Error
}

// GetLatestPhase returns the most recently created phase row, or nil
// when no phase has ever been configured.
func (d *Database) GetLatestPhase() (*types.TradePhase, error) {
	var phase types.TradePhase
	if err := d.db.Order("id DESC").First(&phase).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &phase, nil
}

// ListPhases returns the phase history, newest first.
func (d *Database) ListPhases() ([]types.TradePhase, error) {
	var phases []types.TradePhase
	if err := d.db.Order("id DESC").Find(&phases).Error; err != nil {
		return nil, err
	}
	return phases, nil
}
