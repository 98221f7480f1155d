package models

import "encoding/json"

// TradeTokenInfo describes one side of a large trade.
type TradeTokenInfo struct {
	Symbol         string   `json:"symbol"`
	Decimals       uint8    `json:"decimals"`
	Address        string   `json:"address"`
	UIAmount       float64  `json:"uiAmount"`
	Price          *float64 `json:"price,omitempty"`
	NearestPrice   *float64 `json:"nearestPrice,omitempty"`
	UIChangeAmount float64  `json:"uiChangeAmount"`
}

func (t *TradeTokenInfo) UnmarshalJSON(data []byte) error {
	type wire TradeTokenInfo
	_, err := decodeRecord("TradeTokenInfo", data, (*wire)(t), "symbol", "decimals", "address", "uiAmount", "uiChangeAmount")
	return err
}

// LargeTradeData is a trade whose USD volume passed the subscription's minimum.
type LargeTradeData struct {
	BlockUnixTime  int64          `json:"blockUnixTime"`
	BlockHumanTime string         `json:"blockHumanTime"`
	Owner          string         `json:"owner"`
	Source         string         `json:"source"`
	PoolAddress    string         `json:"poolAddress"`
	TxHash         string         `json:"txHash"`
	VolumeUSD      float64        `json:"volumeUSD"`
	Network        string         `json:"network"`
	From           TradeTokenInfo `json:"from"`
	To             TradeTokenInfo `json:"to"`
}

var largeTradeRequired = []string{
	"blockUnixTime", "blockHumanTime", "owner", "source", "poolAddress",
	"txHash", "volumeUSD", "network", "from", "to",
}

func (l *LargeTradeData) UnmarshalJSON(data []byte) error {
	type wire LargeTradeData
	_, err := decodeRecord("LargeTradeData", data, (*wire)(l), largeTradeRequired...)
	return err
}

// ParseLargeTradeData decodes a TXS_LARGE_TRADE_DATA payload.
func ParseLargeTradeData(data json.RawMessage) (LargeTradeData, error) {
	var l LargeTradeData
	err := json.Unmarshal(data, &l)
	return l, err
}
