package models

import (
	"encoding/json"
	"sort"
)

// WalletTokenInfo describes one side of a wallet transaction. Amount keeps the
// peer's raw representation, which is a string on some chains and a number on
// others.
type WalletTokenInfo struct {
	Symbol         string   `json:"symbol"`
	Decimals       uint8    `json:"decimals"`
	Address        string   `json:"address"`
	UIAmount       float64  `json:"uiAmount"`
	Amount         Amount   `json:"amount"`
	Price          *float64 `json:"price,omitempty"`
	NearestPrice   *float64 `json:"nearestPrice,omitempty"`
	UIChangeAmount float64  `json:"uiChangeAmount"`
}

var walletTokenRequired = []string{"symbol", "decimals", "address", "uiAmount", "amount", "uiChangeAmount"}

func (w *WalletTokenInfo) UnmarshalJSON(data []byte) error {
	type wire WalletTokenInfo
	_, err := decodeRecord("WalletTokenInfo", data, (*wire)(w), walletTokenRequired...)
	return err
}

// WalletTxData is a transaction made by a watched wallet. From and To are
// absent for transaction types that do not move two tokens. Wire fields
// without a mapping are kept in Extra.
type WalletTxData struct {
	Type           string           `json:"type"`
	BlockUnixTime  int64            `json:"blockUnixTime"`
	BlockHumanTime string           `json:"blockHumanTime"`
	Owner          string           `json:"owner"`
	Source         string           `json:"source"`
	PoolAddress    *string          `json:"poolAddress,omitempty"`
	TxHash         string           `json:"txHash"`
	VolumeUSD      float64          `json:"volumeUSD"`
	Network        string           `json:"network"`
	From           *WalletTokenInfo `json:"from,omitempty"`
	To             *WalletTokenInfo `json:"to,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

var walletTxRequired = []string{
	"type", "blockUnixTime", "blockHumanTime", "owner", "source",
	"txHash", "volumeUSD", "network",
}

var walletTxMapped = map[string]struct{}{
	"type": {}, "blockUnixTime": {}, "blockHumanTime": {}, "owner": {}, "source": {},
	"poolAddress": {}, "txHash": {}, "volumeUSD": {}, "network": {}, "from": {}, "to": {},
}

func (w *WalletTxData) UnmarshalJSON(data []byte) error {
	type wire WalletTxData
	var out wire
	fields, err := decodeRecord("WalletTxData", data, &out, walletTxRequired...)
	if err != nil {
		return err
	}
	for name, raw := range fields {
		if _, ok := walletTxMapped[name]; ok {
			continue
		}
		if out.Extra == nil {
			out.Extra = make(map[string]json.RawMessage)
		}
		out.Extra[name] = raw
	}
	*w = WalletTxData(out)
	return nil
}

func (w WalletTxData) MarshalJSON() ([]byte, error) {
	type wire WalletTxData
	base, err := json.Marshal(wire(w))
	if err != nil || len(w.Extra) == 0 {
		return base, err
	}
	var merged map[string]json.RawMessage
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, err
	}
	for name, raw := range w.Extra {
		if _, ok := walletTxMapped[name]; ok {
			continue
		}
		merged[name] = raw
	}
	return json.Marshal(merged)
}

// ExtraFields lists the names of unmapped wire fields in sorted order.
func (w WalletTxData) ExtraFields() []string {
	names := make([]string, 0, len(w.Extra))
	for name := range w.Extra {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseWalletTxData decodes a WALLET_TXS_DATA payload.
func ParseWalletTxData(data json.RawMessage) (WalletTxData, error) {
	var w WalletTxData
	err := json.Unmarshal(data, &w)
	return w, err
}
