package models

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceDataDecode(t *testing.T) {
	raw := []byte(`{"o":0.1234567890123,"h":1.5,"l":0.0001,"c":1.25,"v":98765.4321,
		"eventType":"ohlcv","type":"1m","unixTime":1700000000,"symbol":"SOL",
		"address":"So11111111111111111111111111111111111111112"}`)

	p, err := ParsePriceData(raw)
	require.NoError(t, err)
	assert.Equal(t, 0.1234567890123, p.Open)
	assert.Equal(t, 1.5, p.High)
	assert.Equal(t, 0.0001, p.Low)
	assert.Equal(t, 1.25, p.Close)
	assert.Equal(t, 98765.4321, p.Volume)
	assert.Equal(t, "ohlcv", p.EventType)
	assert.Equal(t, "1m", p.ChartType)
	assert.Equal(t, int64(1700000000), p.UnixTime)
	assert.Equal(t, "SOL", p.Symbol)
}

func TestPriceDataMissingField(t *testing.T) {
	_, err := ParsePriceData([]byte(`{"o":1,"h":1,"l":1,"c":1,"eventType":"ohlcv","type":"1m","unixTime":1,"symbol":"S","address":"A"}`))
	var missing *MissingFieldError
	require.True(t, errors.As(err, &missing), "got %v", err)
	assert.Equal(t, "v", missing.Field)
	assert.Equal(t, "PriceData", missing.Record)
}

func TestPriceDataNullRequiredField(t *testing.T) {
	_, err := ParsePriceData([]byte(`{"o":null,"h":1,"l":1,"c":1,"v":1,"eventType":"ohlcv","type":"1m","unixTime":1,"symbol":"S","address":"A"}`))
	var missing *MissingFieldError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "o", missing.Field)
}

func TestPriceDataWrongType(t *testing.T) {
	_, err := ParsePriceData([]byte(`{"o":"1","h":1,"l":1,"c":1,"v":1,"eventType":"ohlcv","type":"1m","unixTime":1,"symbol":"S","address":"A"}`))
	var typeErr *json.UnmarshalTypeError
	assert.True(t, errors.As(err, &typeErr), "got %v", err)
}

func TestPriceDataIgnoresCaseVariantKeys(t *testing.T) {
	p, err := ParsePriceData([]byte(`{"o":1,"h":1,"l":1,"c":1,"v":1,"eventType":"ohlcv","type":"1m","unixTime":1,
		"symbol":"S","address":"A","Address":"B","SYMBOL":"X"}`))
	require.NoError(t, err)
	assert.Equal(t, "A", p.Address)
	assert.Equal(t, "S", p.Symbol)

	_, err = ParsePriceData([]byte(`{"o":1,"h":1,"l":1,"c":1,"v":1,"eventType":"ohlcv","type":"1m","unixTime":1,"symbol":"S","Address":"B"}`))
	var missing *MissingFieldError
	require.True(t, errors.As(err, &missing), "got %v", err)
	assert.Equal(t, "address", missing.Field)
}

func TestBaseQuotePriceDataDecode(t *testing.T) {
	raw := []byte(`{"o":24.5,"h":25,"l":24,"c":24.75,"v":1000,"eventType":"ohlcv","type":"15m",
		"unixTime":1700000900,"baseAddress":"BASE","quoteAddress":"QUOTE"}`)
	b, err := ParseBaseQuotePriceData(raw)
	require.NoError(t, err)
	assert.Equal(t, "BASE", b.BaseAddress)
	assert.Equal(t, "QUOTE", b.QuoteAddress)
	assert.Equal(t, "15m", b.ChartType)
	assert.Equal(t, 24.75, b.Close)
}

const txPayload = `{
	"blockUnixTime": 1700000000,
	"owner": "OWNER",
	"source": "raydium",
	"txHash": "HASH",
	"alias": "alias-1",
	"isTradeOnBe": false,
	"platform": "PLATFORM",
	"volumeUSD": 1234.5678,
	"from": {"symbol":"SOL","decimals":9,"address":"FROM","amount":1500000000,"type":"transfer",
		"typeSwap":"from","uiAmount":1.5,"price":101.25,"nearestPrice":101.2,"changeAmount":-1500000000,
		"uiChangeAmount":-1.5,"icon":"https://icon"},
	"to": {"symbol":"USDC","decimals":6,"address":"TO","amount":151875000,"type":"transfer",
		"typeSwap":"to","uiAmount":151.875,"changeAmount":151875000,"uiChangeAmount":151.875}
}`

func TestTransactionDataDecode(t *testing.T) {
	tx, err := ParseTransactionData([]byte(txPayload))
	require.NoError(t, err)

	assert.Equal(t, int64(1700000000), tx.BlockUnixTime)
	require.NotNil(t, tx.Alias)
	assert.Equal(t, "alias-1", *tx.Alias)
	assert.Equal(t, 1234.5678, tx.VolumeUSD)

	require.NotNil(t, tx.From.Price)
	assert.Equal(t, 101.25, *tx.From.Price)
	require.NotNil(t, tx.From.NearestPrice)
	assert.Equal(t, int64(-1500000000), tx.From.ChangeAmount)
	assert.Equal(t, uint8(9), tx.From.Decimals)

	assert.Nil(t, tx.To.Price)
	assert.Nil(t, tx.To.NearestPrice)
	assert.Nil(t, tx.To.Icon)
}

func TestTransactionDataNestedMissingField(t *testing.T) {
	raw := []byte(`{"blockUnixTime":1,"owner":"O","source":"S","txHash":"H","isTradeOnBe":true,"platform":"P","volumeUSD":1,
		"from":{"symbol":"A","decimals":1,"address":"A","amount":1,"type":"t","typeSwap":"from","uiAmount":1,"changeAmount":1,"uiChangeAmount":1},
		"to":{"symbol":"B","decimals":1,"address":"B","amount":1,"type":"t","uiAmount":1,"changeAmount":1,"uiChangeAmount":1}}`)
	_, err := ParseTransactionData(raw)
	var missing *MissingFieldError
	require.True(t, errors.As(err, &missing), "got %v", err)
	assert.Equal(t, "TokenTransferInfo", missing.Record)
	assert.Equal(t, "typeSwap", missing.Field)
}

func TestDecimalsOutOfRange(t *testing.T) {
	_, err := ParseNewPairData([]byte(`{"address":"P","name":"A-B","source":"raydium","txHash":"H","blockTime":1,
		"base":{"address":"A","name":"A","symbol":"A","decimals":300},
		"quote":{"address":"B","name":"B","symbol":"B","decimals":6}}`))
	assert.Error(t, err)
}

func TestNewPairDataDecode(t *testing.T) {
	n, err := ParseNewPairData([]byte(`{"address":"PAIR","name":"BONK-SOL","source":"raydium","txHash":"H","blockTime":1700000000,
		"base":{"address":"BONK","name":"Bonk","symbol":"BONK","decimals":5},
		"quote":{"address":"SOL","name":"Wrapped SOL","symbol":"SOL","decimals":9}}`))
	require.NoError(t, err)
	assert.Equal(t, "BONK", n.Base.Symbol)
	assert.Equal(t, uint8(9), n.Quote.Decimals)
	assert.Equal(t, int64(1700000000), n.BlockTime)
}

func TestTokenListingDataDecode(t *testing.T) {
	l, err := ParseTokenListingData([]byte(`{"address":"TOKEN","decimals":6,"name":"Token","symbol":"TKN",
		"liquidity":"12345.678901234","liquidityAddedAt":1700000000}`))
	require.NoError(t, err)
	assert.Equal(t, "12345.678901234", l.Liquidity)
	assert.Equal(t, int64(1700000000), l.LiquidityAddedAt)

	_, err = ParseTokenListingData([]byte(`{"address":"TOKEN","decimals":6,"name":"Token","symbol":"TKN","liquidityAddedAt":1}`))
	var missing *MissingFieldError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "liquidity", missing.Field)
}

func TestLargeTradeDataDecode(t *testing.T) {
	raw := []byte(`{"blockUnixTime":1700000000,"blockHumanTime":"2023-11-14T22:13:20","owner":"O","source":"orca",
		"poolAddress":"POOL","txHash":"H","volumeUSD":25000.5,"network":"solana",
		"from":{"symbol":"SOL","decimals":9,"address":"A","uiAmount":250,"price":100.002,"uiChangeAmount":-250},
		"to":{"symbol":"USDC","decimals":6,"address":"B","uiAmount":25000.5,"nearestPrice":1,"uiChangeAmount":25000.5}}`)
	l, err := ParseLargeTradeData(raw)
	require.NoError(t, err)
	assert.Equal(t, "POOL", l.PoolAddress)
	require.NotNil(t, l.From.Price)
	assert.Equal(t, 100.002, *l.From.Price)
	assert.Nil(t, l.From.NearestPrice)
	assert.Nil(t, l.To.Price)
	require.NotNil(t, l.To.NearestPrice)
	assert.Equal(t, 1.0, *l.To.NearestPrice)
}

const walletPayload = `{
	"type": "swap",
	"blockUnixTime": 1700000000,
	"blockHumanTime": "2023-11-14T22:13:20",
	"owner": "WALLET",
	"source": "jupiter",
	"poolAddress": "POOL",
	"txHash": "HASH",
	"volumeUSD": 10.5,
	"network": "solana",
	"slot": 234567890,
	"fee": {"lamports": 5000},
	"from": {"symbol":"SOL","decimals":9,"address":"A","uiAmount":0.1,"amount":"100000000","price":105,"uiChangeAmount":-0.1},
	"to": {"symbol":"USDC","decimals":6,"address":"B","uiAmount":10.5,"amount":10500000.000,"uiChangeAmount":10.5}
}`

func TestWalletTxDataDecode(t *testing.T) {
	w, err := ParseWalletTxData([]byte(walletPayload))
	require.NoError(t, err)

	assert.Equal(t, "swap", w.Type)
	require.NotNil(t, w.PoolAddress)
	assert.Equal(t, "POOL", *w.PoolAddress)

	require.NotNil(t, w.From)
	assert.Equal(t, "100000000", w.From.Amount.String())
	assert.False(t, w.From.Amount.IsNumber())

	require.NotNil(t, w.To)
	assert.Equal(t, "10500000.000", w.To.Amount.String())
	assert.True(t, w.To.Amount.IsNumber())

	assert.Equal(t, []string{"fee", "slot"}, w.ExtraFields())
	assert.JSONEq(t, `{"lamports": 5000}`, string(w.Extra["fee"]))
	assert.Equal(t, "234567890", string(w.Extra["slot"]))
}

func TestWalletTxDataCaseVariantKeyStaysExtra(t *testing.T) {
	raw := []byte(`{"type":"transfer","blockUnixTime":1,"blockHumanTime":"t","owner":"O","OWNER":"X",
		"source":"S","txHash":"H","volumeUSD":0,"network":"solana"}`)
	w, err := ParseWalletTxData(raw)
	require.NoError(t, err)
	assert.Equal(t, "O", w.Owner)
	assert.Equal(t, []string{"OWNER"}, w.ExtraFields())
	assert.Equal(t, `"X"`, string(w.Extra["OWNER"]))
}

func TestWalletTxDataWithoutSides(t *testing.T) {
	w, err := ParseWalletTxData([]byte(`{"type":"transfer","blockUnixTime":1,"blockHumanTime":"t","owner":"O",
		"source":"S","txHash":"H","volumeUSD":0,"network":"ethereum","poolAddress":null}`))
	require.NoError(t, err)
	assert.Nil(t, w.From)
	assert.Nil(t, w.To)
	assert.Nil(t, w.PoolAddress)
	assert.Empty(t, w.Extra)
}

func TestWalletTxDataMarshalKeepsExtra(t *testing.T) {
	w, err := ParseWalletTxData([]byte(walletPayload))
	require.NoError(t, err)

	out, err := json.Marshal(w)
	require.NoError(t, err)
	assert.JSONEq(t, walletPayload, string(out))
}

func TestWalletTxDataDecodeIsRepeatable(t *testing.T) {
	first, err := ParseWalletTxData([]byte(walletPayload))
	require.NoError(t, err)
	second, err := ParseWalletTxData([]byte(walletPayload))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
