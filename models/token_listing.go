package models

import "encoding/json"

// TokenListingData announces a token whose first liquidity was just added.
// Liquidity is sent by the peer as a decimal string.
type TokenListingData struct {
	Address          string `json:"address"`
	Decimals         uint8  `json:"decimals"`
	Name             string `json:"name"`
	Symbol           string `json:"symbol"`
	Liquidity        string `json:"liquidity"`
	LiquidityAddedAt int64  `json:"liquidityAddedAt"`
}

var tokenListingRequired = []string{"address", "decimals", "name", "symbol", "liquidity", "liquidityAddedAt"}

func (t *TokenListingData) UnmarshalJSON(data []byte) error {
	type wire TokenListingData
	_, err := decodeRecord("TokenListingData", data, (*wire)(t), tokenListingRequired...)
	return err
}

// ParseTokenListingData decodes a TOKEN_NEW_LISTING payload.
func ParseTokenListingData(data json.RawMessage) (TokenListingData, error) {
	var t TokenListingData
	err := json.Unmarshal(data, &t)
	return t, err
}
