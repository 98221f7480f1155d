package models

import "encoding/json"

// TokenTransferInfo describes one side of a swap on the TXS_DATA feed.
type TokenTransferInfo struct {
	Symbol         string   `json:"symbol"`
	Decimals       uint8    `json:"decimals"`
	Address        string   `json:"address"`
	Amount         int64    `json:"amount"`
	Type           string   `json:"type"`
	TypeSwap       string   `json:"typeSwap"`
	UIAmount       float64  `json:"uiAmount"`
	Price          *float64 `json:"price,omitempty"`
	NearestPrice   *float64 `json:"nearestPrice,omitempty"`
	ChangeAmount   int64    `json:"changeAmount"`
	UIChangeAmount float64  `json:"uiChangeAmount"`
	Icon           *string  `json:"icon,omitempty"`
}

var tokenTransferRequired = []string{
	"symbol", "decimals", "address", "amount", "type", "typeSwap",
	"uiAmount", "changeAmount", "uiChangeAmount",
}

func (t *TokenTransferInfo) UnmarshalJSON(data []byte) error {
	type wire TokenTransferInfo
	_, err := decodeRecord("TokenTransferInfo", data, (*wire)(t), tokenTransferRequired...)
	return err
}

// TransactionData is a token or pair swap pushed on the TXS_DATA feed.
type TransactionData struct {
	BlockUnixTime int64             `json:"blockUnixTime"`
	Owner         string            `json:"owner"`
	Source        string            `json:"source"`
	TxHash        string            `json:"txHash"`
	Alias         *string           `json:"alias,omitempty"`
	IsTradeOnBe   bool              `json:"isTradeOnBe"`
	Platform      string            `json:"platform"`
	VolumeUSD     float64           `json:"volumeUSD"`
	From          TokenTransferInfo `json:"from"`
	To            TokenTransferInfo `json:"to"`
}

var transactionRequired = []string{
	"blockUnixTime", "owner", "source", "txHash", "isTradeOnBe",
	"platform", "volumeUSD", "from", "to",
}

func (t *TransactionData) UnmarshalJSON(data []byte) error {
	type wire TransactionData
	_, err := decodeRecord("TransactionData", data, (*wire)(t), transactionRequired...)
	return err
}

// ParseTransactionData decodes a TXS_DATA payload.
func ParseTransactionData(data json.RawMessage) (TransactionData, error) {
	var t TransactionData
	err := json.Unmarshal(data, &t)
	return t, err
}
