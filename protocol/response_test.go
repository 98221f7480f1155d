package protocol

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"birdeyeflow/models"
)

const pricePayload = `{"o":1.0000001,"h":2.5,"l":0.5,"c":2.25,"v":12345.678,"eventType":"ohlcv",
	"type":"1m","unixTime":1700000000,"symbol":"SOL","address":"So11111111111111111111111111111111111111112"}`

func envelope(typ, data string) []byte {
	return []byte(`{"type":"` + typ + `","data":` + data + `}`)
}

func TestDecodeEveryType(t *testing.T) {
	cases := []struct {
		typ  ResponseType
		data string
		want any
	}{
		{PriceData, pricePayload, PriceEvent{}},
		{BaseQuotePriceData, `{"o":1,"h":1,"l":1,"c":1,"v":1,"eventType":"ohlcv","type":"1h","unixTime":1,"baseAddress":"B","quoteAddress":"Q"}`, BaseQuotePriceEvent{}},
		{TxsData, `{"blockUnixTime":1,"owner":"O","source":"S","txHash":"H","isTradeOnBe":false,"platform":"P","volumeUSD":1,
			"from":{"symbol":"A","decimals":1,"address":"A","amount":1,"type":"t","typeSwap":"from","uiAmount":1,"changeAmount":1,"uiChangeAmount":1},
			"to":{"symbol":"B","decimals":1,"address":"B","amount":1,"type":"t","typeSwap":"to","uiAmount":1,"changeAmount":1,"uiChangeAmount":1}}`, TxsEvent{}},
		{TokenNewListing, `{"address":"T","decimals":6,"name":"N","symbol":"S","liquidity":"100.5","liquidityAddedAt":1}`, TokenListingEvent{}},
		{NewPair, `{"address":"P","name":"N","source":"S","txHash":"H","blockTime":1,
			"base":{"address":"A","name":"A","symbol":"A","decimals":1},"quote":{"address":"B","name":"B","symbol":"B","decimals":1}}`, NewPairEvent{}},
		{WalletTxsData, `{"type":"swap","blockUnixTime":1,"blockHumanTime":"t","owner":"O","source":"S","txHash":"H","volumeUSD":1,"network":"solana"}`, WalletTxsEvent{}},
		{TxsLargeTradeData, `{"blockUnixTime":1,"blockHumanTime":"t","owner":"O","source":"S","poolAddress":"P","txHash":"H","volumeUSD":1,"network":"solana",
			"from":{"symbol":"A","decimals":1,"address":"A","uiAmount":1,"uiChangeAmount":1},
			"to":{"symbol":"B","decimals":1,"address":"B","uiAmount":1,"uiChangeAmount":1}}`, LargeTradeEvent{}},
		{ErrorData, `{"message":"invalid api key","code":401}`, ErrorEvent{}},
	}
	for _, c := range cases {
		t.Run(string(c.typ), func(t *testing.T) {
			ev, err := Decode(envelope(string(c.typ), c.data))
			require.NoError(t, err)
			assert.Equal(t, c.typ, ev.Type())
			assert.IsType(t, c.want, ev)
		})
	}
	assert.Len(t, cases, len(ResponseTypes()))
}

func TestDecodePriceValues(t *testing.T) {
	ev, err := Decode(envelope("PRICE_DATA", pricePayload))
	require.NoError(t, err)
	price, ok := ev.(PriceEvent)
	require.True(t, ok)
	assert.Equal(t, 1.0000001, price.Open)
	assert.Equal(t, 12345.678, price.Volume)
	assert.Equal(t, "1m", price.ChartType)
}

func TestDecodeUnknownType(t *testing.T) {
	_, err := Decode(envelope("CANDLE_DATA", pricePayload))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownType))
	assert.Equal(t, KindUnknownType, KindOf(err))

	_, err = Dispatch(Envelope{Type: "price_data", Data: json.RawMessage(pricePayload)})
	assert.True(t, errors.Is(err, ErrUnknownType))
}

func TestDecodeSyntaxError(t *testing.T) {
	_, err := Decode([]byte(`{"type":"PRICE_DATA","data":`))
	assert.True(t, errors.Is(err, ErrSyntax))
	var syntaxErr *json.SyntaxError
	assert.True(t, errors.As(err, &syntaxErr))
}

func TestDecodeEnvelopeShape(t *testing.T) {
	cases := map[string]string{
		"missing type": `{"data":{}}`,
		"null type":    `{"type":null,"data":{}}`,
		"numeric type": `{"type":7,"data":{}}`,
		"missing data": `{"type":"PRICE_DATA"}`,
		"null data":    `{"type":"ERROR","data":null}`,
		"array":        `[1,2]`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(raw))
			assert.True(t, errors.Is(err, ErrSchema), "got %v", err)
		})
	}
}

func TestDispatchMissingData(t *testing.T) {
	for _, data := range []json.RawMessage{nil, json.RawMessage(" "), json.RawMessage("null")} {
		_, err := Dispatch(Envelope{Type: PriceData, Data: data})
		var perr *Error
		require.True(t, errors.As(err, &perr), "got %v", err)
		assert.Equal(t, KindSchema, perr.Kind)
		assert.Equal(t, "data", perr.Field)
	}
}

func TestDecodeMissingRequiredField(t *testing.T) {
	_, err := Decode(envelope("PRICE_DATA", `{"o":1,"h":1,"l":1,"c":1,"v":1,"eventType":"ohlcv","type":"1m","unixTime":1,"symbol":"S"}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSchema))

	var perr *Error
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "address", perr.Field)

	var missing *models.MissingFieldError
	assert.True(t, errors.As(err, &missing))
}

func TestDecodeWrongFieldType(t *testing.T) {
	_, err := Decode(envelope("TOKEN_NEW_LISTING", `{"address":"T","decimals":6,"name":"N","symbol":"S","liquidity":100.5,"liquidityAddedAt":1}`))
	require.Error(t, err)
	assert.Equal(t, KindSchema, KindOf(err))
}

func TestDecodeOptionalFieldAbsent(t *testing.T) {
	ev, err := Decode(envelope("TXS_LARGE_TRADE_DATA", `{"blockUnixTime":1,"blockHumanTime":"t","owner":"O","source":"S","poolAddress":"P","txHash":"H","volumeUSD":1,"network":"solana",
		"from":{"symbol":"A","decimals":1,"address":"A","uiAmount":1,"price":null,"uiChangeAmount":1},
		"to":{"symbol":"B","decimals":1,"address":"B","uiAmount":1,"uiChangeAmount":1}}`))
	require.NoError(t, err)
	trade := ev.(LargeTradeEvent)
	assert.Nil(t, trade.From.Price)
	assert.Nil(t, trade.To.Price)
}

func TestErrorEventPassthrough(t *testing.T) {
	ev, err := Decode(envelope("ERROR", `"rate limited"`))
	require.NoError(t, err)
	e := ev.(ErrorEvent)
	assert.Equal(t, `"rate limited"`, string(e.Data))

	peerErr := e.Err()
	assert.True(t, errors.Is(peerErr, ErrPeer))
	assert.Contains(t, peerErr.Error(), "rate limited")
}

func TestDecodeIsIdempotent(t *testing.T) {
	raw := envelope("WALLET_TXS_DATA", `{"type":"swap","blockUnixTime":1,"blockHumanTime":"t","owner":"O","source":"S",
		"txHash":"H","volumeUSD":1,"network":"solana","slot":42,
		"from":{"symbol":"A","decimals":1,"address":"A","uiAmount":1,"amount":"1000000000000000000001","uiChangeAmount":1}}`)
	first, err := Decode(raw)
	require.NoError(t, err)
	second, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	w := first.(WalletTxsEvent)
	assert.Equal(t, "1000000000000000000001", w.From.Amount.String())
	assert.Equal(t, []string{"slot"}, w.ExtraFields())
}
