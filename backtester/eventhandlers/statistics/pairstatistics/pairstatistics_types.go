package pairstatistics

import "github.com/shopspring/decimal"

// PairStatistic summarises the closed trades of one pair
type PairStatistic struct {
	Pair            string          `json:"pair"`
	Trades          int             `json:"trades"`
	LongTrades      int             `json:"long-trades"`
	ShortTrades     int             `json:"short-trades"`
	Wins            int             `json:"wins"`
	Losses          int             `json:"losses"`
	WinRate         float64         `json:"win-rate"`
	GrossPnL        decimal.Decimal `json:"gross-pnl"`
	NetPnL          decimal.Decimal `json:"net-pnl"`
	Fees            decimal.Decimal `json:"fees"`
	Slippage        decimal.Decimal `json:"slippage"`
	BestTrade       decimal.Decimal `json:"best-trade"`
	WorstTrade      decimal.Decimal `json:"worst-trade"`
	AverageBarsHeld float64         `json:"average-bars-held"`
	ExitReasons     map[string]int  `json:"exit-reasons"`
}
