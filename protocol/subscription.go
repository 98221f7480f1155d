package protocol

import "encoding/json"

// Subscription is an outbound control message. The set of implementations is
// closed; each one carries its own typed payload, which is rendered only by
// NewMessage and Encode.
type Subscription interface {
	Type() SubscriptionType
	Feed() Feed
	payload() any
}

// Message is the wire form {"type": ..., "data": {...}}.
type Message struct {
	Type SubscriptionType `json:"type"`
	Data any              `json:"data"`
}

// NewMessage renders a subscription into its wire envelope.
func NewMessage(s Subscription) Message {
	return Message{Type: s.Type(), Data: s.payload()}
}

// Encode serializes a subscription for the transport.
func Encode(s Subscription) ([]byte, error) {
	b, err := json.Marshal(NewMessage(s))
	if err != nil {
		return nil, newError(KindSyntax, "encode", err)
	}
	return b, nil
}

type simplePricePayload struct {
	QueryType string    `json:"queryType"`
	ChartType ChartType `json:"chartType"`
	Address   string    `json:"address"`
	Currency  Currency  `json:"currency"`
}

type complexPayload struct {
	QueryType string `json:"queryType"`
	Query     string `json:"query"`
}

type tokenTxsPayload struct {
	QueryType string `json:"queryType"`
	Address   string `json:"address"`
}

type pairTxsPayload struct {
	QueryType   string `json:"queryType"`
	PairAddress string `json:"pairAddress"`
}

type addressPayload struct {
	Address string `json:"address"`
}

type liquidityPayload struct {
	MemePlatformEnabled *bool    `json:"meme_platform_enabled,omitempty"`
	MinLiquidity        *float64 `json:"min_liquidity,omitempty"`
	MaxLiquidity        *float64 `json:"max_liquidity,omitempty"`
}

type largeTradePayload struct {
	MinVolume float64  `json:"min_volume"`
	MaxVolume *float64 `json:"max_volume,omitempty"`
}

type baseQuotePayload struct {
	BaseAddress  string    `json:"baseAddress"`
	QuoteAddress string    `json:"quoteAddress"`
	ChartType    ChartType `json:"chartType"`
}

// PriceSubscription follows OHLCV updates of one token.
type PriceSubscription struct {
	address  string
	chart    ChartType
	currency Currency
}

func NewPriceSubscription(address string, chart ChartType, currency Currency) (PriceSubscription, error) {
	if err := checkChart("price_subscription", chart); err != nil {
		return PriceSubscription{}, err
	}
	return PriceSubscription{address: address, chart: chart, currency: currency}, nil
}

func (PriceSubscription) Type() SubscriptionType { return SubscribePrice }
func (PriceSubscription) Feed() Feed             { return FeedPrice }
func (s PriceSubscription) payload() any {
	return simplePricePayload{QueryType: queryTypeSimple, ChartType: s.chart, Address: s.address, Currency: s.currency}
}

// MultiPriceSubscription follows OHLCV updates of several tokens.
type MultiPriceSubscription struct {
	query string
}

// NewMultiPriceSubscription accepts between 1 and MaxComplexTargets queries.
func NewMultiPriceSubscription(queries []PriceQuery) (MultiPriceSubscription, error) {
	q, err := priceQuery(queries)
	if err != nil {
		return MultiPriceSubscription{}, err
	}
	return MultiPriceSubscription{query: q}, nil
}

func (MultiPriceSubscription) Type() SubscriptionType { return SubscribePrice }
func (MultiPriceSubscription) Feed() Feed             { return FeedPrice }
func (s MultiPriceSubscription) Query() string        { return s.query }
func (s MultiPriceSubscription) payload() any {
	return complexPayload{QueryType: queryTypeComplex, Query: s.query}
}

// TxsSubscription follows the swaps of one token or one pair.
type TxsSubscription struct {
	address string
	pair    bool
}

func NewTokenTxsSubscription(address string) TxsSubscription {
	return TxsSubscription{address: address}
}

func NewPairTxsSubscription(pairAddress string) TxsSubscription {
	return TxsSubscription{address: pairAddress, pair: true}
}

func (TxsSubscription) Type() SubscriptionType { return SubscribeTxs }
func (TxsSubscription) Feed() Feed             { return FeedTxs }
func (s TxsSubscription) payload() any {
	if s.pair {
		return pairTxsPayload{QueryType: queryTypeSimple, PairAddress: s.address}
	}
	return tokenTxsPayload{QueryType: queryTypeSimple, Address: s.address}
}

// MultiTxsSubscription follows the swaps of several tokens and pairs.
type MultiTxsSubscription struct {
	query string
}

// NewMultiTxsSubscription accepts between 1 and MaxComplexTargets addresses in
// total. Tokens are rendered before pairs.
func NewMultiTxsSubscription(tokens, pairs []string) (MultiTxsSubscription, error) {
	q, err := txsQuery(tokens, pairs)
	if err != nil {
		return MultiTxsSubscription{}, err
	}
	return MultiTxsSubscription{query: q}, nil
}

func (MultiTxsSubscription) Type() SubscriptionType { return SubscribeTxs }
func (MultiTxsSubscription) Feed() Feed             { return FeedTxs }
func (s MultiTxsSubscription) Query() string        { return s.query }
func (s MultiTxsSubscription) payload() any {
	return complexPayload{QueryType: queryTypeComplex, Query: s.query}
}

// TokenListingSubscription follows newly listed tokens.
type TokenListingSubscription struct {
	opts TokenListingOptions
}

// NewTokenListingSubscription accepts nil for an unfiltered feed.
func NewTokenListingSubscription(opts *TokenListingOptions) TokenListingSubscription {
	if opts == nil {
		return TokenListingSubscription{}
	}
	return TokenListingSubscription{opts: *opts}
}

func (TokenListingSubscription) Type() SubscriptionType { return SubscribeTokenListing }
func (TokenListingSubscription) Feed() Feed             { return FeedTokenListing }
func (s TokenListingSubscription) payload() any {
	return liquidityPayload{
		MemePlatformEnabled: s.opts.memePlatform,
		MinLiquidity:        s.opts.bounds.min,
		MaxLiquidity:        s.opts.bounds.max,
	}
}

// NewPairSubscription follows newly created pairs.
type NewPairSubscription struct {
	opts NewPairOptions
}

// NewNewPairSubscription accepts nil for an unfiltered feed.
func NewNewPairSubscription(opts *NewPairOptions) NewPairSubscription {
	if opts == nil {
		return NewPairSubscription{}
	}
	return NewPairSubscription{opts: *opts}
}

func (NewPairSubscription) Type() SubscriptionType { return SubscribeNewPair }
func (NewPairSubscription) Feed() Feed             { return FeedNewPair }
func (s NewPairSubscription) payload() any {
	return liquidityPayload{MinLiquidity: s.opts.bounds.min, MaxLiquidity: s.opts.bounds.max}
}

// LargeTradeSubscription follows trades above a USD volume.
type LargeTradeSubscription struct {
	opts LargeTradeOptions
}

// NewLargeTradeSubscription rejects options that were not built with
// NewLargeTradeOptions.
func NewLargeTradeSubscription(opts LargeTradeOptions) (LargeTradeSubscription, error) {
	if err := opts.validate("large_trade_subscription"); err != nil {
		return LargeTradeSubscription{}, err
	}
	return LargeTradeSubscription{opts: opts}, nil
}

func (LargeTradeSubscription) Type() SubscriptionType { return SubscribeLargeTradeTxs }
func (LargeTradeSubscription) Feed() Feed             { return FeedLargeTrade }
func (s LargeTradeSubscription) payload() any {
	return largeTradePayload{MinVolume: s.opts.minVolume, MaxVolume: s.opts.maxVolume}
}

// WalletTxsSubscription follows the transactions of one wallet.
type WalletTxsSubscription struct {
	address string
}

func NewWalletTxsSubscription(address string) WalletTxsSubscription {
	return WalletTxsSubscription{address: address}
}

func (WalletTxsSubscription) Type() SubscriptionType { return SubscribeWalletTxs }
func (WalletTxsSubscription) Feed() Feed             { return FeedWalletTxs }
func (s WalletTxsSubscription) payload() any {
	return addressPayload{Address: s.address}
}

// BaseQuoteSubscription follows the price of base in units of quote. The peer
// serves one base-quote pair per connection; birdeye.Stream enforces that.
type BaseQuoteSubscription struct {
	base  string
	quote string
	chart ChartType
}

func NewBaseQuoteSubscription(base, quote string, chart ChartType) (BaseQuoteSubscription, error) {
	if err := checkChart("base_quote_subscription", chart); err != nil {
		return BaseQuoteSubscription{}, err
	}
	return BaseQuoteSubscription{base: base, quote: quote, chart: chart}, nil
}

func (BaseQuoteSubscription) Type() SubscriptionType { return SubscribeBaseQuotePrice }
func (BaseQuoteSubscription) Feed() Feed             { return FeedBaseQuotePrice }
func (s BaseQuoteSubscription) payload() any {
	return baseQuotePayload{BaseAddress: s.base, QuoteAddress: s.quote, ChartType: s.chart}
}

// Unsubscribe stops a feed, or one address of it.
type Unsubscribe struct {
	feed    Feed
	address string
	scoped  bool
}

// NewUnsubscribe stops every subscription of the feed.
func NewUnsubscribe(feed Feed) (Unsubscribe, error) {
	if err := checkFeed("unsubscribe", feed); err != nil {
		return Unsubscribe{}, err
	}
	return Unsubscribe{feed: feed}, nil
}

// NewUnsubscribeAddress stops the feed for a single address. Only
// subscriptions to exactly that address are affected; multi-target queries
// that include it stay active.
func NewUnsubscribeAddress(feed Feed, address string) (Unsubscribe, error) {
	if err := checkFeed("unsubscribe", feed); err != nil {
		return Unsubscribe{}, err
	}
	return Unsubscribe{feed: feed, address: address, scoped: true}, nil
}

// Covers reports whether sub is stopped by u: every subscription of the feed
// for a feed-wide unsubscribe, or a single-address subscription of the same
// feed and address for a scoped one.
func (u Unsubscribe) Covers(sub Subscription) bool {
	if sub.Feed() != u.feed {
		return false
	}
	if _, ok := sub.(Unsubscribe); ok {
		return false
	}
	if !u.scoped {
		return true
	}
	switch s := sub.(type) {
	case PriceSubscription:
		return s.address == u.address
	case TxsSubscription:
		return s.address == u.address
	case WalletTxsSubscription:
		return s.address == u.address
	}
	return false
}

func (u Unsubscribe) Type() SubscriptionType { return u.feed.UnsubscribeType() }
func (u Unsubscribe) Feed() Feed             { return u.feed }
func (u Unsubscribe) payload() any {
	if u.scoped {
		return addressPayload{Address: u.address}
	}
	return struct{}{}
}
