package models

import "encoding/json"

// PriceData is one OHLCV bar pushed on the PRICE_DATA feed.
type PriceData struct {
	Open      float64 `json:"o"`
	High      float64 `json:"h"`
	Low       float64 `json:"l"`
	Close     float64 `json:"c"`
	Volume    float64 `json:"v"`
	EventType string  `json:"eventType"`
	ChartType string  `json:"type"`
	UnixTime  int64   `json:"unixTime"`
	Symbol    string  `json:"symbol"`
	Address   string  `json:"address"`
}

var priceDataRequired = []string{"o", "h", "l", "c", "v", "eventType", "type", "unixTime", "symbol", "address"}

func (p *PriceData) UnmarshalJSON(data []byte) error {
	type wire PriceData
	_, err := decodeRecord("PriceData", data, (*wire)(p), priceDataRequired...)
	return err
}

// ParsePriceData decodes a PRICE_DATA payload.
func ParsePriceData(data json.RawMessage) (PriceData, error) {
	var p PriceData
	err := json.Unmarshal(data, &p)
	return p, err
}
