package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/optionsmith/chainview/src/models"
)

// PostgresCandleStore owns the durable daily candle history, keyed by
// (symbol, date).
type PostgresCandleStore struct {
	db *gorm.DB
}

func NewPostgresCandleStore(db *gorm.DB) *PostgresCandleStore {
	return &PostgresCandleStore{db: db}
}

func (s *PostgresCandleStore) Exists(ctx context.Context, symbol models.StockSymbol) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Candle{}).Where("symbol = ?", string(symbol)).Count(&count).Error; err != nil {
		return false, fmt.Errorf("Exists: failed to count candles for %v: %w", symbol, err)
	}

	return count > 0, nil
}

// LatestDate returns nil without error when the symbol has no rows.
func (s *PostgresCandleStore) LatestDate(ctx context.Context, symbol models.StockSymbol) (*time.Time, error) {
	var candle models.Candle
	result := s.db.WithContext(ctx).Where("symbol = ?", string(symbol)).Order("date desc").Limit(1).Find(&candle)
	if result.Error != nil {
		return nil, fmt.Errorf("LatestDate: failed to query latest candle for %v: %w", symbol, result.Error)
	}

	if result.RowsAffected == 0 {
		return nil, nil
	}

	date := models.NormalizeDate(candle.Date)

	return &date, nil
}

func (s *PostgresCandleStore) ReadAll(ctx context.Context, symbol models.StockSymbol) ([]models.Candle, error) {
	var candles []models.Candle
	if err := s.db.WithContext(ctx).Where("symbol = ?", string(symbol)).Order("date asc").Find(&candles).Error; err != nil {
		return nil, fmt.Errorf("ReadAll: failed to read candles for %v: %w", symbol, err)
	}

	return candles, nil
}

// UpsertBatch writes the batch inside a single transaction: either every row lands
// or none do, so a failure leaves prior data intact. Rows whose (symbol, date) key
// already exists are updated in place.
func (s *PostgresCandleStore) UpsertBatch(ctx context.Context, symbol models.StockSymbol, candles []models.Candle) (int, error) {
	if len(candles) == 0 {
		return 0, nil
	}

	rows := make([]models.Candle, 0, len(candles))
	for _, c := range candles {
		if err := c.Validate(); err != nil {
			return 0, fmt.Errorf("UpsertBatch: %w", err)
		}

		c.ID = 0
		c.Symbol = symbol
		c.Date = models.NormalizeDate(c.Date)
		rows = append(rows, c)
	}

	var affected int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "symbol"}, {Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{"open", "high", "low", "close", "volume"}),
		}).Create(&rows)

		if result.Error != nil {
			return result.Error
		}

		affected = result.RowsAffected

		return nil
	})

	if err != nil {
		return 0, fmt.Errorf("UpsertBatch: failed to upsert %d candles for %v: %w", len(rows), symbol, err)
	}

	return int(affected), nil
}
