package eventpubsub

import "github.com/optionsmith/chainview/src/models"

// RefreshEvent announces the lifecycle of a candle backfill for one symbol.
type RefreshEvent struct {
	Symbol   models.StockSymbol
	Inserted int
	Err      error
}
