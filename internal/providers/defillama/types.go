package defillama

// Raw response shapes for the DeFiLlama APIs. Only consumed fields are
// declared.

type llamaChain struct {
	Name     string   `json:"name"`
	TVL      float64  `json:"tvl"`
	Change1d *float64 `json:"change_1d"`
	Change7d *float64 `json:"change_7d"`
}

type llamaProtocol struct {
	Name           string   `json:"name"`
	Category       string   `json:"category"`
	TVL            float64  `json:"tvl"`
	Chains         []string `json:"chains"`
	ParentProtocol string   `json:"parentProtocol"`
	Change1d       *float64 `json:"change_1d"`
	Change7d       *float64 `json:"change_7d"`
}

// llamaOverview is the shape of the /overview/dexs and /overview/fees
// endpoints: per-protocol totals plus the chains each protocol runs on.
type llamaOverview struct {
	Protocols []llamaOverviewProtocol `json:"protocols"`
}

type llamaOverviewProtocol struct {
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Chains   []string `json:"chains"`
	Total24h float64  `json:"total24h"`
	Total7d  float64  `json:"total7d"`
	Total30d float64  `json:"total30d"`
}

type llamaStablecoins struct {
	PeggedAssets []llamaPeggedAsset `json:"peggedAssets"`
}

type llamaPeggedAsset struct {
	Name        string   `json:"name"`
	Symbol      string   `json:"symbol"`
	Circulating struct {
		PeggedUSD float64 `json:"peggedUSD"`
	} `json:"circulating"`
	Change1d *float64 `json:"change_1d"`
	Change7d *float64 `json:"change_7d"`
}
