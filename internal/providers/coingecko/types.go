package coingecko

// Raw response shapes for the CoinGecko REST API. Only the consumed fields
// are declared; percentage-change windows are pointers because the API
// omits them for thin markets.

type geckoCoin struct {
	ID            string  `json:"id"`
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Image         string  `json:"image"`
	CurrentPrice  float64 `json:"current_price"`
	MarketCap     float64 `json:"market_cap"`
	MarketCapRank int     `json:"market_cap_rank"`
	TotalVolume   float64 `json:"total_volume"`

	Change1h  *float64 `json:"price_change_percentage_1h_in_currency"`
	Change24h *float64 `json:"price_change_percentage_24h_in_currency"`
	Change7d  *float64 `json:"price_change_percentage_7d_in_currency"`
	Change30d *float64 `json:"price_change_percentage_30d_in_currency"`
	Change1y  *float64 `json:"price_change_percentage_1y_in_currency"`
}

type geckoCategory struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	MarketCap float64 `json:"market_cap"`
	Volume24h float64 `json:"volume_24h"`
	Content   string  `json:"content"`
}
