// Package models defines the core data structures shared across the terminal.
package models

// Timeframe is a percentage-change lookback window.
type Timeframe string

const (
	Timeframe1h  Timeframe = "1h"
	Timeframe24h Timeframe = "24h"
	Timeframe7d  Timeframe = "7d"
	Timeframe30d Timeframe = "30d"
	Timeframe1y  Timeframe = "1y"
)

// Timeframes lists all supported lookback windows in display order.
var Timeframes = []Timeframe{Timeframe1h, Timeframe24h, Timeframe7d, Timeframe30d, Timeframe1y}

// SizeMetric selects which magnitude drives bubble sizing.
type SizeMetric string

const (
	SizeByMarketCap SizeMetric = "market_cap"
	SizeByVolume    SizeMetric = "total_volume"
)

// MarketEntity is one tradable asset within a market snapshot.
// Percentage-change fields are nil when the provider lacks that window.
type MarketEntity struct {
	ID        string  `json:"id"`
	Symbol    string  `json:"symbol"`
	Name      string  `json:"name"`
	Image     string  `json:"image"`
	Price     float64 `json:"price"`
	MarketCap float64 `json:"market_cap"`
	Rank      int     `json:"rank"`
	Volume    float64 `json:"volume"`

	Change1h  *float64 `json:"change_1h,omitempty"`
	Change24h *float64 `json:"change_24h,omitempty"`
	Change7d  *float64 `json:"change_7d,omitempty"`
	Change30d *float64 `json:"change_30d,omitempty"`
	Change1y  *float64 `json:"change_1y,omitempty"`
}

// Change returns the percentage change for the given timeframe, or 0 and
// false when the provider did not supply that window.
func (m *MarketEntity) Change(tf Timeframe) (float64, bool) {
	var p *float64
	switch tf {
	case Timeframe1h:
		p = m.Change1h
	case Timeframe7d:
		p = m.Change7d
	case Timeframe30d:
		p = m.Change30d
	case Timeframe1y:
		p = m.Change1y
	default:
		p = m.Change24h
	}
	if p == nil {
		return 0, false
	}
	return *p, true
}

// Magnitude returns the sizing value for the given metric.
func (m *MarketEntity) Magnitude(metric SizeMetric) float64 {
	if metric == SizeByVolume {
		return m.Volume
	}
	return m.MarketCap
}

// CategoryStat is the aggregate figure for one asset category.
type CategoryStat struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	MarketCap float64 `json:"market_cap"`
	Volume24h float64 `json:"volume_24h"`
	Content   string  `json:"content,omitempty"`
}
