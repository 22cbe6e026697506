package eventpubsub

const (
	CandlesRefreshStarted   = "candles:refresh:started"
	CandlesRefreshCompleted = "candles:refresh:completed"
	CandlesRefreshFailed    = "candles:refresh:failed"
)
