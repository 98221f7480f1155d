package protocol

// SubscriptionType is the discriminant of an outbound control message.
type SubscriptionType string

const (
	SubscribePrice          SubscriptionType = "SUBSCRIBE_PRICE"
	SubscribeTxs            SubscriptionType = "SUBSCRIBE_TXS"
	SubscribeTokenListing   SubscriptionType = "SUBSCRIBE_TOKEN_NEW_LISTING"
	SubscribeNewPair        SubscriptionType = "SUBSCRIBE_NEW_PAIR"
	SubscribeWalletTxs      SubscriptionType = "SUBSCRIBE_WALLET_TXS"
	SubscribeBaseQuotePrice SubscriptionType = "SUBSCRIBE_BASE_QUOTE_PRICE"
	SubscribeLargeTradeTxs  SubscriptionType = "SUBSCRIBE_LARGE_TRADE_TXS"

	UnsubscribePrice          SubscriptionType = "UNSUBSCRIBE_PRICE"
	UnsubscribeTxs            SubscriptionType = "UNSUBSCRIBE_TXS"
	UnsubscribeTokenListing   SubscriptionType = "UNSUBSCRIBE_TOKEN_NEW_LISTING"
	UnsubscribeNewPair        SubscriptionType = "UNSUBSCRIBE_NEW_PAIR"
	UnsubscribeWalletTxs      SubscriptionType = "UNSUBSCRIBE_WALLET_TXS"
	UnsubscribeBaseQuotePrice SubscriptionType = "UNSUBSCRIBE_BASE_QUOTE_PRICE"
	UnsubscribeLargeTradeTxs  SubscriptionType = "UNSUBSCRIBE_LARGE_TRADE_TXS"
)

// ResponseType is the discriminant of an inbound message.
type ResponseType string

const (
	PriceData          ResponseType = "PRICE_DATA"
	TxsData            ResponseType = "TXS_DATA"
	TokenNewListing    ResponseType = "TOKEN_NEW_LISTING"
	NewPair            ResponseType = "NEW_PAIR"
	WalletTxsData      ResponseType = "WALLET_TXS_DATA"
	BaseQuotePriceData ResponseType = "BASE_QUOTE_PRICE_DATA"
	TxsLargeTradeData  ResponseType = "TXS_LARGE_TRADE_DATA"
	ErrorData          ResponseType = "ERROR"
)

// Feed names one category of streaming event.
type Feed string

const (
	FeedPrice          Feed = "price"
	FeedTxs            Feed = "txs"
	FeedTokenListing   Feed = "token_listing"
	FeedNewPair        Feed = "new_pair"
	FeedWalletTxs      Feed = "wallet_txs"
	FeedBaseQuotePrice Feed = "base_quote_price"
	FeedLargeTrade     Feed = "large_trade"
)

type feedTypes struct {
	subscribe   SubscriptionType
	unsubscribe SubscriptionType
	response    ResponseType
}

var feeds = map[Feed]feedTypes{
	FeedPrice:          {SubscribePrice, UnsubscribePrice, PriceData},
	FeedTxs:            {SubscribeTxs, UnsubscribeTxs, TxsData},
	FeedTokenListing:   {SubscribeTokenListing, UnsubscribeTokenListing, TokenNewListing},
	FeedNewPair:        {SubscribeNewPair, UnsubscribeNewPair, NewPair},
	FeedWalletTxs:      {SubscribeWalletTxs, UnsubscribeWalletTxs, WalletTxsData},
	FeedBaseQuotePrice: {SubscribeBaseQuotePrice, UnsubscribeBaseQuotePrice, BaseQuotePriceData},
	FeedLargeTrade:     {SubscribeLargeTradeTxs, UnsubscribeLargeTradeTxs, TxsLargeTradeData},
}

// Feeds lists every feed in a stable order.
func Feeds() []Feed {
	return []Feed{
		FeedPrice, FeedTxs, FeedTokenListing, FeedNewPair,
		FeedWalletTxs, FeedBaseQuotePrice, FeedLargeTrade,
	}
}

// ParseFeed resolves a feed name as used in configuration.
func ParseFeed(s string) (Feed, error) {
	f := Feed(s)
	if _, ok := feeds[f]; !ok {
		return "", validationError("parse_feed", "feed", "unknown feed %q", s)
	}
	return f, nil
}

func (f Feed) Valid() bool {
	_, ok := feeds[f]
	return ok
}

// SubscribeType returns the subscribe discriminant of the feed.
func (f Feed) SubscribeType() SubscriptionType {
	return feeds[f].subscribe
}

// UnsubscribeType returns the unsubscribe discriminant of the feed.
func (f Feed) UnsubscribeType() SubscriptionType {
	return feeds[f].unsubscribe
}

// ResponseType returns the discriminant of events pushed on the feed.
func (f Feed) ResponseType() ResponseType {
	return feeds[f].response
}

// ChartType is a candle interval.
type ChartType string

const (
	Chart1m  ChartType = "1m"
	Chart3m  ChartType = "3m"
	Chart5m  ChartType = "5m"
	Chart15m ChartType = "15m"
	Chart30m ChartType = "30m"
	Chart1h  ChartType = "1h"
	Chart4h  ChartType = "4h"
	Chart1d  ChartType = "1d"
	Chart1w  ChartType = "1w"
)

var chartTypes = []ChartType{Chart1m, Chart3m, Chart5m, Chart15m, Chart30m, Chart1h, Chart4h, Chart1d, Chart1w}

// ChartTypes lists every supported interval, shortest first.
func ChartTypes() []ChartType {
	out := make([]ChartType, len(chartTypes))
	copy(out, chartTypes)
	return out
}

// ParseChartType accepts only the wire values 1m,3m,5m,15m,30m,1h,4h,1d,1w.
func ParseChartType(s string) (ChartType, error) {
	for _, c := range chartTypes {
		if string(c) == s {
			return c, nil
		}
	}
	return "", validationError("parse_chart_type", "chartType", "unsupported chart type %q", s)
}

func (c ChartType) String() string {
	return string(c)
}

func (c ChartType) Valid() bool {
	_, err := ParseChartType(string(c))
	return err == nil
}

// Currency selects the quote unit of a price subscription.
type Currency string

const (
	CurrencyUSD  Currency = "usd"
	CurrencyPair Currency = "pair"
)

func (c Currency) String() string {
	return string(c)
}

func checkChart(op string, c ChartType) error {
	if !c.Valid() {
		return validationError(op, "chartType", "unsupported chart type %q", string(c))
	}
	return nil
}

func checkFeed(op string, f Feed) error {
	if !f.Valid() {
		return validationError(op, "feed", "unknown feed %q", string(f))
	}
	return nil
}
