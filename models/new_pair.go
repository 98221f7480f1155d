package models

import "encoding/json"

// TokenInfo is the token metadata attached to a new pair.
type TokenInfo struct {
	Address  string `json:"address"`
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
}

func (t *TokenInfo) UnmarshalJSON(data []byte) error {
	type wire TokenInfo
	_, err := decodeRecord("TokenInfo", data, (*wire)(t), "address", "name", "symbol", "decimals")
	return err
}

// NewPairData announces a newly created trading pair.
// Openbook pairs are never reported by the peer.
type NewPairData struct {
	Address   string    `json:"address"`
	Name      string    `json:"name"`
	Source    string    `json:"source"`
	Base      TokenInfo `json:"base"`
	Quote     TokenInfo `json:"quote"`
	TxHash    string    `json:"txHash"`
	BlockTime int64     `json:"blockTime"`
}

var newPairRequired = []string{"address", "name", "source", "base", "quote", "txHash", "blockTime"}

func (n *NewPairData) UnmarshalJSON(data []byte) error {
	type wire NewPairData
	_, err := decodeRecord("NewPairData", data, (*wire)(n), newPairRequired...)
	return err
}

// ParseNewPairData decodes a NEW_PAIR payload.
func ParseNewPairData(data json.RawMessage) (NewPairData, error) {
	var n NewPairData
	err := json.Unmarshal(data, &n)
	return n, err
}
