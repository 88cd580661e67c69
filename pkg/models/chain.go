package models

import "time"

// ChainMetric holds aggregated per-network economic figures. The chain name
// is the unique display key; there is no stable upstream ID for chains.
// Optional figures are nil when a given query did not produce them.
type ChainMetric struct {
	Name       string   `json:"name"`
	TVL        *float64 `json:"tvl,omitempty"`
	Volume24h  *float64 `json:"volume_24h,omitempty"`
	Revenue24h *float64 `json:"revenue_24h,omitempty"`
	Revenue7d  *float64 `json:"revenue_7d,omitempty"`
	Revenue30d *float64 `json:"revenue_30d,omitempty"`
	Change1d   *float64 `json:"change_1d,omitempty"`
	Change7d   *float64 `json:"change_7d,omitempty"`
}

// Protocol is one DeFi protocol record.
type Protocol struct {
	Name     string   `json:"name"`
	Category string   `json:"category"`
	TVL      float64  `json:"tvl"`
	Change1d *float64 `json:"change_1d,omitempty"`
	Change7d *float64 `json:"change_7d,omitempty"`
}

// Stablecoin is one pegged asset with its circulating USD value.
type Stablecoin struct {
	Name        string   `json:"name"`
	Symbol      string   `json:"symbol"`
	Circulating float64  `json:"circulating"`
	Change1d    *float64 `json:"change_1d,omitempty"`
	Change7d    *float64 `json:"change_7d,omitempty"`
}

// Headline is one editorial feed item shown in the news strip.
type Headline struct {
	Title     string    `json:"title"`
	Summary   string    `json:"summary"`
	Link      string    `json:"link"`
	Source    string    `json:"source"`
	Published time.Time `json:"published"`
}

// TickerPrice is one live price observation from the streaming feed.
type TickerPrice struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	ChangePct float64 `json:"change_pct"`
}
