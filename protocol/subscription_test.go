package protocol

import (
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeMap(t *testing.T, s Subscription) (string, map[string]any) {
	t.Helper()
	raw, err := Encode(s)
	require.NoError(t, err)

	var msg struct {
		Type string         `json:"type"`
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &msg))
	require.NotNil(t, msg.Data, "data must be an object: %s", raw)
	return msg.Type, msg.Data
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func mustSub[T Subscription](t *testing.T) func(T, error) T {
	return func(s T, err error) T {
		t.Helper()
		require.NoError(t, err)
		return s
	}
}

func TestSubscriptionPayloadKeys(t *testing.T) {
	large := mustSub[LargeTradeSubscription](t)(NewLargeTradeSubscription(mustLargeTrade(t, 5000)))
	listingOpts, err := TokenListingOptions{}.WithMinLiquidity(100)
	require.NoError(t, err)
	listingOpts = listingOpts.WithMemePlatform(true)
	pairOpts, err := NewPairOptions{}.WithMaxLiquidity(500000)
	require.NoError(t, err)

	cases := []struct {
		name string
		sub  Subscription
		typ  string
		keys []string
	}{
		{"price", mustSub[PriceSubscription](t)(NewPriceSubscription("SOL", Chart1m, CurrencyUSD)),
			"SUBSCRIBE_PRICE", []string{"address", "chartType", "currency", "queryType"}},
		{"multi price", mustSub[MultiPriceSubscription](t)(NewMultiPriceSubscription([]PriceQuery{{"A", Chart5m, CurrencyUSD}})),
			"SUBSCRIBE_PRICE", []string{"query", "queryType"}},
		{"token txs", NewTokenTxsSubscription("TOKEN"), "SUBSCRIBE_TXS", []string{"address", "queryType"}},
		{"pair txs", NewPairTxsSubscription("PAIR"), "SUBSCRIBE_TXS", []string{"pairAddress", "queryType"}},
		{"multi txs", mustSub[MultiTxsSubscription](t)(NewMultiTxsSubscription([]string{"A"}, nil)),
			"SUBSCRIBE_TXS", []string{"query", "queryType"}},
		{"token listing unfiltered", NewTokenListingSubscription(nil), "SUBSCRIBE_TOKEN_NEW_LISTING", []string{}},
		{"token listing filtered", NewTokenListingSubscription(&listingOpts), "SUBSCRIBE_TOKEN_NEW_LISTING",
			[]string{"meme_platform_enabled", "min_liquidity"}},
		{"new pair unfiltered", NewNewPairSubscription(nil), "SUBSCRIBE_NEW_PAIR", []string{}},
		{"new pair filtered", NewNewPairSubscription(&pairOpts), "SUBSCRIBE_NEW_PAIR", []string{"max_liquidity"}},
		{"large trade", large, "SUBSCRIBE_LARGE_TRADE_TXS", []string{"min_volume"}},
		{"wallet", NewWalletTxsSubscription("WALLET"), "SUBSCRIBE_WALLET_TXS", []string{"address"}},
		{"base quote", mustSub[BaseQuoteSubscription](t)(NewBaseQuoteSubscription("BASE", "QUOTE", Chart1h)),
			"SUBSCRIBE_BASE_QUOTE_PRICE", []string{"baseAddress", "chartType", "quoteAddress"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			typ, data := encodeMap(t, c.sub)
			assert.Equal(t, c.typ, typ)
			assert.Equal(t, c.typ, string(c.sub.Type()))
			assert.Equal(t, c.keys, keys(data))
		})
	}
}

func TestSimplePayloadValues(t *testing.T) {
	price, err := NewPriceSubscription("So111", Chart15m, CurrencyPair)
	require.NoError(t, err)
	raw, err := Encode(price)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"SUBSCRIBE_PRICE","data":{"queryType":"simple","chartType":"15m","address":"So111","currency":"pair"}}`, string(raw))

	raw, err = Encode(NewPairTxsSubscription("PAIR"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"SUBSCRIBE_TXS","data":{"queryType":"simple","pairAddress":"PAIR"}}`, string(raw))

	bq, err := NewBaseQuoteSubscription("B", "Q", Chart1w)
	require.NoError(t, err)
	raw, err = Encode(bq)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"SUBSCRIBE_BASE_QUOTE_PRICE","data":{"baseAddress":"B","quoteAddress":"Q","chartType":"1w"}}`, string(raw))
}

func TestOptionedPayloadValues(t *testing.T) {
	opts := mustLargeTrade(t, 1000)
	opts, err := opts.WithMaxVolume(1001)
	require.NoError(t, err)
	sub, err := NewLargeTradeSubscription(opts)
	require.NoError(t, err)
	raw, err := Encode(sub)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"SUBSCRIBE_LARGE_TRADE_TXS","data":{"min_volume":1000,"max_volume":1001}}`, string(raw))

	listing, err := TokenListingOptions{}.WithMinLiquidity(10.01)
	require.NoError(t, err)
	listing, err = listing.WithMaxLiquidity(250.5)
	require.NoError(t, err)
	listing = listing.WithMemePlatform(false)
	raw, err = Encode(NewTokenListingSubscription(&listing))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"SUBSCRIBE_TOKEN_NEW_LISTING","data":{"meme_platform_enabled":false,"min_liquidity":10.01,"max_liquidity":250.5}}`, string(raw))

	raw, err = Encode(NewNewPairSubscription(nil))
	require.NoError(t, err)
	assert.Equal(t, `{"type":"SUBSCRIBE_NEW_PAIR","data":{}}`, string(raw))
}

func TestMultiTxsQuery(t *testing.T) {
	sub, err := NewMultiTxsSubscription([]string{"A", "B"}, []string{"P"})
	require.NoError(t, err)
	_, data := encodeMap(t, sub)
	assert.Equal(t, "complex", data["queryType"])
	assert.Equal(t, "address = A OR address = B OR pairAddress = P", data["query"])
	assert.Equal(t, "address = A OR address = B OR pairAddress = P", sub.Query())
}

func TestMultiTxsQueryKeepsDuplicates(t *testing.T) {
	sub, err := NewMultiTxsSubscription([]string{"A", "A"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "address = A OR address = A", sub.Query())
}

func TestMultiPriceQuery(t *testing.T) {
	sub, err := NewMultiPriceSubscription([]PriceQuery{
		{Address: "A", ChartType: Chart1m, Currency: CurrencyUSD},
		{Address: "B", ChartType: Chart4h, Currency: CurrencyPair},
	})
	require.NoError(t, err)
	assert.Equal(t,
		"(address = A AND chartType = 1m AND currency = usd) OR (address = B AND chartType = 4h AND currency = pair)",
		sub.Query())
}

func TestComplexQueryTargetLimits(t *testing.T) {
	_, err := NewMultiTxsSubscription(nil, nil)
	assert.True(t, errors.Is(err, ErrValidation))

	_, err = NewMultiPriceSubscription(nil)
	assert.True(t, errors.Is(err, ErrValidation))

	tokens := make([]string, 60)
	pairs := make([]string, 40)
	for i := range tokens {
		tokens[i] = "T"
	}
	for i := range pairs {
		pairs[i] = "P"
	}
	sub, err := NewMultiTxsSubscription(tokens, pairs)
	require.NoError(t, err)
	assert.Equal(t, 100, strings.Count(sub.Query(), " = "))

	_, err = NewMultiTxsSubscription(append(tokens, "X"), pairs)
	var perr *Error
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, KindValidation, perr.Kind)
	assert.Equal(t, "query", perr.Field)
}

func TestChartValidation(t *testing.T) {
	_, err := NewBaseQuoteSubscription("B", "Q", ChartType("2m"))
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = NewPriceSubscription("A", "", CurrencyUSD)
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = NewMultiPriceSubscription([]PriceQuery{{Address: "A", ChartType: "1y", Currency: CurrencyUSD}})
	assert.Equal(t, KindValidation, KindOf(err))

	for _, c := range ChartTypes() {
		parsed, err := ParseChartType(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, parsed)
	}
	_, err = ParseChartType("1M")
	assert.Error(t, err)
}

func TestUnsubscribe(t *testing.T) {
	for _, f := range Feeds() {
		u, err := NewUnsubscribe(f)
		require.NoError(t, err)
		typ, data := encodeMap(t, u)
		assert.True(t, strings.HasPrefix(typ, "UNSUBSCRIBE_"), typ)
		assert.Equal(t, strings.TrimPrefix(string(f.SubscribeType()), "SUBSCRIBE_"), strings.TrimPrefix(typ, "UNSUBSCRIBE_"))
		assert.Empty(t, data)
	}

	u, err := NewUnsubscribeAddress(FeedWalletTxs, "WALLET")
	require.NoError(t, err)
	raw, err := Encode(u)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"UNSUBSCRIBE_WALLET_TXS","data":{"address":"WALLET"}}`, string(raw))

	_, err = NewUnsubscribe(Feed("candles"))
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestUnsubscribeCovers(t *testing.T) {
	wallet := NewWalletTxsSubscription("W1")
	other := NewWalletTxsSubscription("W2")
	token := NewTokenTxsSubscription("W1")
	multi, err := NewMultiTxsSubscription([]string{"W1", "W2"}, nil)
	require.NoError(t, err)

	all, err := NewUnsubscribe(FeedWalletTxs)
	require.NoError(t, err)
	assert.True(t, all.Covers(wallet))
	assert.True(t, all.Covers(other))
	assert.False(t, all.Covers(token))

	one, err := NewUnsubscribeAddress(FeedWalletTxs, "W1")
	require.NoError(t, err)
	assert.True(t, one.Covers(wallet))
	assert.False(t, one.Covers(other))

	txs, err := NewUnsubscribeAddress(FeedTxs, "W1")
	require.NoError(t, err)
	assert.True(t, txs.Covers(token))
	assert.False(t, txs.Covers(multi), "multi-target queries are only stopped feed-wide")
}

func TestEncodeIsStable(t *testing.T) {
	sub, err := NewMultiTxsSubscription([]string{"A"}, []string{"P"})
	require.NoError(t, err)
	first, err := Encode(sub)
	require.NoError(t, err)
	second, err := Encode(sub)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
