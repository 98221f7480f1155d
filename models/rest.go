package models

// OHLCVItem is one historical bar returned by the /defi/ohlcv endpoint.
type OHLCVItem struct {
	Address  string  `json:"address"`
	Close    float64 `json:"c"`
	High     float64 `json:"h"`
	Low      float64 `json:"l"`
	Open     float64 `json:"o"`
	Type     string  `json:"type"`
	UnixTime int64   `json:"unixTime"`
	Volume   float64 `json:"v"`
}

type OHLCVResponseData struct {
	Items []OHLCVItem `json:"items"`
}

type OHLCVResponse struct {
	Success bool              `json:"success"`
	Data    OHLCVResponseData `json:"data"`
}

// TokenExtensions holds the optional project links of a token overview.
type TokenExtensions struct {
	CoingeckoID *string `json:"coingeckoId,omitempty"`
	SerumV3USDC *string `json:"serumV3Usdc,omitempty"`
	SerumV3USDT *string `json:"serumV3Usdt,omitempty"`
	Website     *string `json:"website,omitempty"`
	Telegram    *string `json:"telegram,omitempty"`
	Twitter     *string `json:"twitter,omitempty"`
	Description *string `json:"description,omitempty"`
	Discord     *string `json:"discord,omitempty"`
	Medium      *string `json:"medium,omitempty"`
}

type TokenOverview struct {
	Address            string          `json:"address"`
	Decimals           uint8           `json:"decimals"`
	Symbol             string          `json:"symbol"`
	Name               string          `json:"name"`
	Extensions         TokenExtensions `json:"extensions"`
	LogoURI            *string         `json:"logoURI,omitempty"`
	Liquidity          float64         `json:"liquidity"`
	Price              float64         `json:"price"`
	Supply             float64         `json:"supply"`
	MarketCap          float64         `json:"mc"`
	LastTradeUnixTime  int64           `json:"lastTradeUnixTime"`
	LastTradeHumanTime string          `json:"lastTradeHumanTime"`
}

type TokenOverviewResponse struct {
	Success bool          `json:"success"`
	Data    TokenOverview `json:"data"`
}
