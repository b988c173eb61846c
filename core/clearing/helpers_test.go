package clearing

import (
	"math"
	"testing"
	"time"

	"github.com/kilianp07/meritorder/core/market"
)

var testDay = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func testProduct(hour int) market.Product {
	start := testDay.Add(time.Duration(hour) * time.Hour)
	return market.Product{StartTime: start, EndTime: start.Add(time.Hour)}
}

func supply(p market.Product, price, volume float64) *market.Order {
	return market.NewOrder("gen", p, volume, price)
}

func demand(p market.Product, price, volume float64) *market.Order {
	return market.NewOrder("load", p, -math.Abs(volume), price)
}

// assertPartition checks that every submitted order with nonzero volume
// appears exactly once across accepted and rejected.
func assertPartition(t *testing.T, book market.Orderbook, res market.ClearingResult) {
	t.Helper()
	seen := make(map[*market.Order]int)
	for _, o := range res.Accepted {
		seen[o]++
	}
	for _, o := range res.Rejected {
		seen[o]++
	}
	for _, o := range book {
		if o.Volume == 0 {
			if seen[o] != 0 {
				t.Errorf("zero-volume order %s must not appear in output", o.ID)
			}
			continue
		}
		if seen[o] != 1 {
			t.Errorf("order %s appears %d times in output, want 1", o.ID, seen[o])
		}
	}
}

// assertBalance checks per-product energy balance over the accepted set.
func assertBalance(t *testing.T, res market.ClearingResult) {
	t.Helper()
	sums := make(map[market.ProductKey]float64)
	for _, o := range res.Accepted {
		sums[o.Product.Key()] += o.AcceptedVolume
	}
	for k, s := range sums {
		if math.Abs(s) > 1e-9 {
			t.Errorf("product %+v unbalanced by %v", k, s)
		}
	}
}

// assertBounds checks the accepted-volume bounds on every order.
func assertBounds(t *testing.T, res market.ClearingResult) {
	t.Helper()
	for _, o := range res.Accepted {
		av, v := o.AcceptedVolume, o.Volume
		if av*v < 0 {
			t.Errorf("order %s: accepted volume %v flips sign of %v", o.ID, av, v)
		}
		if math.Abs(av) > math.Abs(v)+1e-9 {
			t.Errorf("order %s: accepted volume %v exceeds %v", o.ID, av, v)
		}
	}
	for _, o := range res.Rejected {
		if o.AcceptedVolume != 0 {
			t.Errorf("rejected order %s has accepted volume %v", o.ID, o.AcceptedVolume)
		}
	}
}

// assertMeritOrder checks that no rejected supply undercuts accepted
// supply in the same product, and symmetrically for demand.
func assertMeritOrder(t *testing.T, res market.ClearingResult) {
	t.Helper()
	type extremes struct {
		maxAcceptedSupply float64
		minAcceptedDemand float64
		hasSupply         bool
		hasDemand         bool
	}
	acc := make(map[market.ProductKey]*extremes)
	for _, o := range res.Accepted {
		k := o.Product.Key()
		e := acc[k]
		if e == nil {
			e = &extremes{}
			acc[k] = e
		}
		if o.IsSupply() {
			if !e.hasSupply || o.Price > e.maxAcceptedSupply {
				e.maxAcceptedSupply = o.Price
			}
			e.hasSupply = true
		} else {
			if !e.hasDemand || o.Price < e.minAcceptedDemand {
				e.minAcceptedDemand = o.Price
			}
			e.hasDemand = true
		}
	}
	for _, o := range res.Rejected {
		e := acc[o.Product.Key()]
		if e == nil {
			continue
		}
		if o.IsSupply() && e.hasSupply && o.Price < e.maxAcceptedSupply {
			t.Errorf("supply %s at %v rejected while supply at %v cleared", o.ID, o.Price, e.maxAcceptedSupply)
		}
		if o.IsDemand() && e.hasDemand && o.Price > e.minAcceptedDemand {
			t.Errorf("demand %s at %v rejected while demand at %v cleared", o.ID, o.Price, e.minAcceptedDemand)
		}
	}
}
