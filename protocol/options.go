package protocol

import "math"

const (
	// MinLargeTradeVolume is the smallest accepted min_volume, in USD.
	MinLargeTradeVolume = 1000.0
	// LiquidityFloor is the exclusive lower bound of min_liquidity.
	LiquidityFloor = 10.0
)

// LargeTradeOptions filters the large trade feed by USD volume. Build it with
// NewLargeTradeOptions; the zero value is not valid.
type LargeTradeOptions struct {
	minVolume float64
	maxVolume *float64
}

// NewLargeTradeOptions requires a finite minVolume >= 1000.
func NewLargeTradeOptions(minVolume float64) (LargeTradeOptions, error) {
	if err := checkFinite("large_trade_options", "min_volume", minVolume); err != nil {
		return LargeTradeOptions{}, err
	}
	if !(minVolume >= MinLargeTradeVolume) {
		return LargeTradeOptions{}, validationError("large_trade_options", "min_volume",
			"min_volume must be at least %g, got %g", MinLargeTradeVolume, minVolume)
	}
	return LargeTradeOptions{minVolume: minVolume}, nil
}

// WithMaxVolume returns a copy with max_volume set. max must exceed min_volume.
func (o LargeTradeOptions) WithMaxVolume(max float64) (LargeTradeOptions, error) {
	if err := checkFinite("large_trade_options", "max_volume", max); err != nil {
		return o, err
	}
	if !(max > o.minVolume) {
		return o, validationError("large_trade_options", "max_volume",
			"max_volume must be greater than min_volume %g, got %g", o.minVolume, max)
	}
	o.maxVolume = &max
	return o, nil
}

func (o LargeTradeOptions) MinVolume() float64 {
	return o.minVolume
}

// MaxVolume returns the upper bound and whether it is set.
func (o LargeTradeOptions) MaxVolume() (float64, bool) {
	if o.maxVolume == nil {
		return 0, false
	}
	return *o.maxVolume, true
}

func (o LargeTradeOptions) validate(op string) error {
	if err := checkFinite(op, "min_volume", o.minVolume); err != nil {
		return err
	}
	if o.maxVolume != nil {
		if err := checkFinite(op, "max_volume", *o.maxVolume); err != nil {
			return err
		}
	}
	if !(o.minVolume >= MinLargeTradeVolume) {
		return validationError(op, "min_volume", "min_volume must be at least %g, got %g", MinLargeTradeVolume, o.minVolume)
	}
	if o.maxVolume != nil && !(*o.maxVolume > o.minVolume) {
		return validationError(op, "max_volume", "max_volume must be greater than min_volume")
	}
	return nil
}

// liquidityBounds is shared by the new pair and token listing filters.
type liquidityBounds struct {
	min *float64
	max *float64
}

func (b liquidityBounds) withMin(op string, min float64) (liquidityBounds, error) {
	if err := checkFinite(op, "min_liquidity", min); err != nil {
		return b, err
	}
	if !(min > LiquidityFloor) {
		return b, validationError(op, "min_liquidity", "min_liquidity must be greater than %g, got %g", LiquidityFloor, min)
	}
	if b.max != nil && !(*b.max > min) {
		return b, validationError(op, "min_liquidity", "min_liquidity %g must be less than max_liquidity %g", min, *b.max)
	}
	b.min = &min
	return b, nil
}

func (b liquidityBounds) withMax(op string, max float64) (liquidityBounds, error) {
	if err := checkFinite(op, "max_liquidity", max); err != nil {
		return b, err
	}
	if b.min != nil && !(max > *b.min) {
		return b, validationError(op, "max_liquidity", "max_liquidity must be greater than min_liquidity %g, got %g", *b.min, max)
	}
	b.max = &max
	return b, nil
}

// checkFinite rejects NaN and infinities, which JSON cannot carry.
func checkFinite(op, field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return validationError(op, field, "%s must be a finite number, got %g", field, v)
	}
	return nil
}

func optional(p *float64) (float64, bool) {
	if p == nil {
		return 0, false
	}
	return *p, true
}

// NewPairOptions filters the new pair feed by liquidity. The zero value
// applies no filter.
type NewPairOptions struct {
	bounds liquidityBounds
}

// WithMinLiquidity requires min > 10 and below any max already set.
func (o NewPairOptions) WithMinLiquidity(min float64) (NewPairOptions, error) {
	b, err := o.bounds.withMin("new_pair_options", min)
	if err != nil {
		return o, err
	}
	o.bounds = b
	return o, nil
}

// WithMaxLiquidity requires max above any min already set.
func (o NewPairOptions) WithMaxLiquidity(max float64) (NewPairOptions, error) {
	b, err := o.bounds.withMax("new_pair_options", max)
	if err != nil {
		return o, err
	}
	o.bounds = b
	return o, nil
}

func (o NewPairOptions) MinLiquidity() (float64, bool) { return optional(o.bounds.min) }
func (o NewPairOptions) MaxLiquidity() (float64, bool) { return optional(o.bounds.max) }

// TokenListingOptions filters the token listing feed. The zero value applies
// no filter.
type TokenListingOptions struct {
	bounds       liquidityBounds
	memePlatform *bool
}

// WithMinLiquidity requires min > 10 and below any max already set.
func (o TokenListingOptions) WithMinLiquidity(min float64) (TokenListingOptions, error) {
	b, err := o.bounds.withMin("token_listing_options", min)
	if err != nil {
		return o, err
	}
	o.bounds = b
	return o, nil
}

// WithMaxLiquidity requires max above any min already set.
func (o TokenListingOptions) WithMaxLiquidity(max float64) (TokenListingOptions, error) {
	b, err := o.bounds.withMax("token_listing_options", max)
	if err != nil {
		return o, err
	}
	o.bounds = b
	return o, nil
}

// WithMemePlatform toggles listings from meme launch platforms.
func (o TokenListingOptions) WithMemePlatform(enabled bool) TokenListingOptions {
	o.memePlatform = &enabled
	return o
}

func (o TokenListingOptions) MinLiquidity() (float64, bool) { return optional(o.bounds.min) }
func (o TokenListingOptions) MaxLiquidity() (float64, bool) { return optional(o.bounds.max) }

// MemePlatform returns the meme platform flag and whether it is set.
func (o TokenListingOptions) MemePlatform() (bool, bool) {
	if o.memePlatform == nil {
		return false, false
	}
	return *o.memePlatform, true
}
