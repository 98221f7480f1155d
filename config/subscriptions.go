package config

import (
	"fmt"

	"birdeyeflow/protocol"
)

// SubscriptionConfig describes one subscription in the config file. Which
// keys apply depends on Feed.
type SubscriptionConfig struct {
	Feed string `yaml:"feed"`

	Address     string `yaml:"address"`
	PairAddress string `yaml:"pair_address"`
	Chart       string `yaml:"chart"`
	Currency    string `yaml:"currency"`

	// Multi-target filters.
	Tokens  []string           `yaml:"tokens"`
	Pairs   []string           `yaml:"pairs"`
	Queries []PriceQueryConfig `yaml:"queries"`

	BaseAddress  string `yaml:"base_address"`
	QuoteAddress string `yaml:"quote_address"`

	MinVolume    *float64 `yaml:"min_volume"`
	MaxVolume    *float64 `yaml:"max_volume"`
	MinLiquidity *float64 `yaml:"min_liquidity"`
	MaxLiquidity *float64 `yaml:"max_liquidity"`
	MemePlatform *bool    `yaml:"meme_platform"`
}

type PriceQueryConfig struct {
	Address  string `yaml:"address"`
	Chart    string `yaml:"chart"`
	Currency string `yaml:"currency"`
}

const buildOp = "subscription_config"

func required(field, value string) error {
	if value == "" {
		return protocol.ValidationError(buildOp, field, "%s is required", field)
	}
	return nil
}

func currency(s string) protocol.Currency {
	if s == "" {
		return protocol.CurrencyUSD
	}
	return protocol.Currency(s)
}

func chart(s string) (protocol.ChartType, error) {
	if s == "" {
		return protocol.Chart1m, nil
	}
	return protocol.ParseChartType(s)
}

// Build turns the entry into a subscription using the protocol builders, so
// every bound the builders enforce is enforced here too.
func (s SubscriptionConfig) Build() (protocol.Subscription, error) {
	feed, err := protocol.ParseFeed(s.Feed)
	if err != nil {
		return nil, err
	}

	switch feed {
	case protocol.FeedPrice:
		return s.buildPrice()
	case protocol.FeedTxs:
		return s.buildTxs()
	case protocol.FeedTokenListing:
		return s.buildTokenListing()
	case protocol.FeedNewPair:
		return s.buildNewPair()
	case protocol.FeedWalletTxs:
		if err := required("address", s.Address); err != nil {
			return nil, err
		}
		return protocol.NewWalletTxsSubscription(s.Address), nil
	case protocol.FeedBaseQuotePrice:
		if err := required("base_address", s.BaseAddress); err != nil {
			return nil, err
		}
		if err := required("quote_address", s.QuoteAddress); err != nil {
			return nil, err
		}
		c, err := chart(s.Chart)
		if err != nil {
			return nil, err
		}
		return protocol.NewBaseQuoteSubscription(s.BaseAddress, s.QuoteAddress, c)
	case protocol.FeedLargeTrade:
		return s.buildLargeTrade()
	}
	return nil, protocol.ValidationError(buildOp, "feed", "unsupported feed %q", s.Feed)
}

func (s SubscriptionConfig) buildPrice() (protocol.Subscription, error) {
	if len(s.Queries) > 0 {
		queries := make([]protocol.PriceQuery, 0, len(s.Queries))
		for _, q := range s.Queries {
			c, err := chart(q.Chart)
			if err != nil {
				return nil, err
			}
			queries = append(queries, protocol.PriceQuery{Address: q.Address, ChartType: c, Currency: currency(q.Currency)})
		}
		return protocol.NewMultiPriceSubscription(queries)
	}
	if err := required("address", s.Address); err != nil {
		return nil, err
	}
	c, err := chart(s.Chart)
	if err != nil {
		return nil, err
	}
	return protocol.NewPriceSubscription(s.Address, c, currency(s.Currency))
}

func (s SubscriptionConfig) buildTxs() (protocol.Subscription, error) {
	if len(s.Tokens)+len(s.Pairs) > 0 {
		return protocol.NewMultiTxsSubscription(s.Tokens, s.Pairs)
	}
	switch {
	case s.Address != "" && s.PairAddress != "":
		return nil, protocol.ValidationError(buildOp, "address", "address and pair_address are mutually exclusive")
	case s.PairAddress != "":
		return protocol.NewPairTxsSubscription(s.PairAddress), nil
	case s.Address != "":
		return protocol.NewTokenTxsSubscription(s.Address), nil
	}
	return nil, protocol.ValidationError(buildOp, "address", "address, pair_address, tokens or pairs is required")
}

func (s SubscriptionConfig) buildTokenListing() (protocol.Subscription, error) {
	var (
		opts protocol.TokenListingOptions
		err  error
	)
	if s.MinLiquidity != nil {
		if opts, err = opts.WithMinLiquidity(*s.MinLiquidity); err != nil {
			return nil, err
		}
	}
	if s.MaxLiquidity != nil {
		if opts, err = opts.WithMaxLiquidity(*s.MaxLiquidity); err != nil {
			return nil, err
		}
	}
	if s.MemePlatform != nil {
		opts = opts.WithMemePlatform(*s.MemePlatform)
	}
	return protocol.NewTokenListingSubscription(&opts), nil
}

func (s SubscriptionConfig) buildNewPair() (protocol.Subscription, error) {
	var (
		opts protocol.NewPairOptions
		err  error
	)
	if s.MinLiquidity != nil {
		if opts, err = opts.WithMinLiquidity(*s.MinLiquidity); err != nil {
			return nil, err
		}
	}
	if s.MaxLiquidity != nil {
		if opts, err = opts.WithMaxLiquidity(*s.MaxLiquidity); err != nil {
			return nil, err
		}
	}
	return protocol.NewNewPairSubscription(&opts), nil
}

func (s SubscriptionConfig) buildLargeTrade() (protocol.Subscription, error) {
	if s.MinVolume == nil {
		return nil, protocol.ValidationError(buildOp, "min_volume", "min_volume is required")
	}
	opts, err := protocol.NewLargeTradeOptions(*s.MinVolume)
	if err != nil {
		return nil, err
	}
	if s.MaxVolume != nil {
		if opts, err = opts.WithMaxVolume(*s.MaxVolume); err != nil {
			return nil, err
		}
	}
	return protocol.NewLargeTradeSubscription(opts)
}

// BuildSubscriptions builds every configured subscription in order. Only one
// base-quote subscription is allowed because the peer serves one per
// connection.
func (c *Config) BuildSubscriptions() ([]protocol.Subscription, error) {
	subs := make([]protocol.Subscription, 0, len(c.Subscriptions))
	baseQuote := 0
	for i, sc := range c.Subscriptions {
		sub, err := sc.Build()
		if err != nil {
			return nil, fmt.Errorf("subscriptions[%d]: %w", i, err)
		}
		if sub.Type() == protocol.SubscribeBaseQuotePrice {
			baseQuote++
			if baseQuote > 1 {
				return nil, fmt.Errorf("subscriptions[%d]: only one base_quote_price subscription is allowed per connection", i)
			}
		}
		subs = append(subs, sub)
	}
	return subs, nil
}
