package types

import (
	"cosmossdk.io/math"
)

// Candlestick summarizes the execution prices of one directed pair in one
// block. Prices are units of the start asset paid per unit of the end asset.
type Candlestick struct {
	Height uint64         `json:"height"`
	Open   math.LegacyDec `json:"open"`
	Close  math.LegacyDec `json:"close"`
	High   math.LegacyDec `json:"high"`
	Low    math.LegacyDec `json:"low"`
	// DirectVolume is input traded through single-hop traces.
	DirectVolume math.Int `json:"direct_volume"`
	// SwapVolume is input traded through multi-hop traces.
	SwapVolume math.Int `json:"swap_volume"`
	empty      bool
}

// NewCandlestick returns an empty candlestick for height.
func NewCandlestick(height uint64) *Candlestick {
	return &Candlestick{
		Height:       height,
		DirectVolume: math.ZeroInt(),
		SwapVolume:   math.ZeroInt(),
		empty:        true,
	}
}

// IsEmpty reports whether no trace has been recorded.
func (c *Candlestick) IsEmpty() bool { return c.empty }

// Record folds every trace of execution into the candlestick.
func (c *Candlestick) Record(execution SwapExecution) {
	for _, trace := range execution.Traces {
		if len(trace) < 2 {
			continue
		}
		input, output := trace[0].Amount, trace[len(trace)-1].Amount
		if len(trace) == 2 {
			c.DirectVolume = c.DirectVolume.Add(input)
		} else {
			c.SwapVolume = c.SwapVolume.Add(input)
		}
		price, ok := PriceFromAmounts(input, output)
		if !ok {
			continue
		}
		c.observe(price.Dec())
	}
}

func (c *Candlestick) observe(price math.LegacyDec) {
	if c.empty {
		c.Open, c.High, c.Low = price, price, price
		c.empty = false
	}
	if price.GT(c.High) {
		c.High = price
	}
	if price.LT(c.Low) {
		c.Low = price
	}
	c.Close = price
}
