package models

import (
	"fmt"
	"time"
)

type StockSymbol string

// Candle is one daily OHLCV bar. Date is normalized to midnight UTC; (symbol, date)
// is the natural key.
type Candle struct {
	ID     uint        `gorm:"primaryKey" json:"-"`
	Symbol StockSymbol `gorm:"column:symbol;type:text;not null;uniqueIndex:idx_candles_symbol_date" json:"-"`
	Date   time.Time   `gorm:"column:date;type:date;not null;uniqueIndex:idx_candles_symbol_date" json:"date"`
	Open   float64     `gorm:"column:open;type:numeric;not null" json:"open"`
	High   float64     `gorm:"column:high;type:numeric;not null" json:"high"`
	Low    float64     `gorm:"column:low;type:numeric;not null" json:"low"`
	Close  float64     `gorm:"column:close;type:numeric;not null" json:"close"`
	Volume int64       `gorm:"column:volume;type:bigint;not null" json:"volume"`
}

func (Candle) TableName() string {
	return "candles"
}

func (c *Candle) Validate() error {
	if c.Date.IsZero() {
		return fmt.Errorf("candle validate: date is not set")
	}

	if c.Open < 0 || c.High < 0 || c.Low < 0 || c.Close < 0 {
		return fmt.Errorf("candle validate: negative price on %v", c.Date.Format("2006-01-02"))
	}

	if c.Volume < 0 {
		return fmt.Errorf("candle validate: negative volume on %v", c.Date.Format("2006-01-02"))
	}

	return nil
}

// NormalizeDate strips the time-of-day component so two bars on the same calendar
// day always collide on the (symbol, date) key.
func NormalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
