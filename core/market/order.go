package market

import (
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
)

// ErrMalformedOrder is returned when an orderbook contains an order the
// engine cannot process. The whole clearing call fails in that case,
// since matching a partially valid book would break the balance
// invariant.
var ErrMalformedOrder = errors.New("malformed order")

// Order represents one trading intent for a single product. Volume is
// signed: positive for supply (ask), negative for demand (bid). Price is
// the limit price, i.e. the minimum acceptable for supply and the
// maximum acceptable for demand.
//
// AcceptedVolume and AcceptedPrice are set by the clearing engine.
// Agent and Metadata are opaque to the engine and passed through
// unmodified.
type Order struct {
	ID       string
	Agent    string
	Product  Product
	Volume   float64
	Price    float64
	Metadata map[string]string

	AcceptedVolume float64
	AcceptedPrice  float64
}

// NewOrder creates an order with a generated ID.
func NewOrder(agent string, p Product, volume, price float64) *Order {
	return &Order{
		ID:      uuid.NewString(),
		Agent:   agent,
		Product: p,
		Volume:  volume,
		Price:   price,
	}
}

// IsSupply reports whether the order offers generation.
func (o *Order) IsSupply() bool { return o.Volume > 0 }

// IsDemand reports whether the order requests consumption.
func (o *Order) IsDemand() bool { return o.Volume < 0 }

// Validate checks that the order can enter a clearing call. Zero-volume
// orders are not malformed; they are treated as never submitted and
// filtered out by the engine.
func (o *Order) Validate() error {
	if math.IsNaN(o.Price) || math.IsInf(o.Price, 0) {
		return fmt.Errorf("order %s: price %v: %w", o.ID, o.Price, ErrMalformedOrder)
	}
	if math.IsNaN(o.Volume) || math.IsInf(o.Volume, 0) {
		return fmt.Errorf("order %s: volume %v: %w", o.ID, o.Volume, ErrMalformedOrder)
	}
	if err := o.Product.Validate(); err != nil {
		return fmt.Errorf("order %s: %w", o.ID, err)
	}
	return nil
}

// Split carves the given volume out of the order and returns it as a new
// record sharing the original's identity and lineage. The receiver keeps
// its volume and acceptance state; the returned record carries the
// leftover with no acceptance yet. Used when a marginal supply order has
// to be divided between two price tiers.
func (o *Order) Split(volume float64) *Order {
	s := &Order{
		ID:       o.ID,
		Agent:    o.Agent,
		Product:  o.Product,
		Volume:   volume,
		Price:    o.Price,
		Metadata: o.Metadata,
	}
	return s
}

// Orderbook is an ordered sequence of orders. Ordering before grouping
// is irrelevant, but grouping is stable: every order ends up in exactly
// one product group or is rejected as invalid.
type Orderbook []*Order

// Validate checks every order in the book and returns the first error.
func (b Orderbook) Validate() error {
	for _, o := range b {
		if err := o.Validate(); err != nil {
			return err
		}
	}
	return nil
}
