package models

import "encoding/json"

// BaseQuotePriceData is an OHLCV bar for a base/quote token pair.
type BaseQuotePriceData struct {
	Open         float64 `json:"o"`
	High         float64 `json:"h"`
	Low          float64 `json:"l"`
	Close        float64 `json:"c"`
	Volume       float64 `json:"v"`
	EventType    string  `json:"eventType"`
	ChartType    string  `json:"type"`
	UnixTime     int64   `json:"unixTime"`
	BaseAddress  string  `json:"baseAddress"`
	QuoteAddress string  `json:"quoteAddress"`
}

var baseQuoteRequired = []string{"o", "h", "l", "c", "v", "eventType", "type", "unixTime", "baseAddress", "quoteAddress"}

func (b *BaseQuotePriceData) UnmarshalJSON(data []byte) error {
	type wire BaseQuotePriceData
	_, err := decodeRecord("BaseQuotePriceData", data, (*wire)(b), baseQuoteRequired...)
	return err
}

// ParseBaseQuotePriceData decodes a BASE_QUOTE_PRICE_DATA payload.
func ParseBaseQuotePriceData(data json.RawMessage) (BaseQuotePriceData, error) {
	var b BaseQuotePriceData
	err := json.Unmarshal(data, &b)
	return b, err
}
