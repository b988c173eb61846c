package config

import (
	"fmt"
	"time"

	"github.com/kilianp07/meritorder/core/market"
)

// MarketConfig describes one periodic market session: which mechanism
// clears it, how price ties are broken and the grid of delivery
// products offered per clearing call.
type MarketConfig struct {
	// Name identifies the market in logs and metrics.
	Name string `json:"name"`
	// Mechanism selects the clearing engine: "pay_as_clear" or "pay_as_bid".
	Mechanism string `json:"mechanism"`
	// TieBreak selects the equal-price ordering: "random", "submission"
	// or "lexical".
	TieBreak string `json:"tie_break"`
	// ProductDurationMinutes is the delivery window length per product.
	ProductDurationMinutes int `json:"product_duration_minutes"`
	// ProductCount is the number of consecutive products per call.
	ProductCount int `json:"product_count"`
	// OnlyHours optionally restricts every product to a block of hours.
	OnlyHours *market.HourWindow `json:"only_hours"`
	// MaxPrice and MinPrice bound the limit prices accepted into a
	// session. Defaults follow the usual day-ahead bounds.
	MaxPrice float64 `json:"max_price"`
	MinPrice float64 `json:"min_price"`
}

// SetDefaults applies sane defaults for an hourly day-ahead session.
func (c *MarketConfig) SetDefaults() {
	if c.Name == "" {
		c.Name = "EOM"
	}
	if c.Mechanism == "" {
		c.Mechanism = "pay_as_clear"
	}
	if c.TieBreak == "" {
		c.TieBreak = "random"
	}
	if c.ProductDurationMinutes == 0 {
		c.ProductDurationMinutes = 60
	}
	if c.ProductCount == 0 {
		c.ProductCount = 24
	}
	if c.MaxPrice == 0 {
		c.MaxPrice = 3000
	}
	if c.MinPrice == 0 {
		c.MinPrice = -500
	}
}

// Validate checks mandatory fields.
func (c MarketConfig) Validate() error {
	if c.Mechanism != "pay_as_clear" && c.Mechanism != "pay_as_bid" {
		return fmt.Errorf("unknown mechanism %s", c.Mechanism)
	}
	if c.TieBreak != "random" && c.TieBreak != "submission" && c.TieBreak != "lexical" {
		return fmt.Errorf("unknown tie-break %s", c.TieBreak)
	}
	if c.ProductDurationMinutes <= 0 {
		return fmt.Errorf("product duration must be positive")
	}
	if c.ProductCount <= 0 {
		return fmt.Errorf("product count must be positive")
	}
	if c.MaxPrice <= c.MinPrice {
		return fmt.Errorf("max price %v must exceed min price %v", c.MaxPrice, c.MinPrice)
	}
	return nil
}

// ProductDuration returns the delivery window length.
func (c MarketConfig) ProductDuration() time.Duration {
	return time.Duration(c.ProductDurationMinutes) * time.Minute
}

// Products derives the valid-product list for a clearing call: the
// configured number of consecutive delivery windows, the first one
// starting at the next slot boundary at or after from.
func (c MarketConfig) Products(from time.Time) []market.Product {
	dur := c.ProductDuration()
	start := from.Truncate(dur)
	if start.Before(from) {
		start = start.Add(dur)
	}
	products := make([]market.Product, c.ProductCount)
	for i := range products {
		products[i] = market.Product{
			StartTime: start,
			EndTime:   start.Add(dur),
			OnlyHours: c.OnlyHours,
		}
		start = start.Add(dur)
	}
	return products
}
