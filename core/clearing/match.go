package clearing

import (
	"sort"

	"github.com/kilianp07/meritorder/core/logger"
	"github.com/kilianp07/meritorder/core/market"
)

// Clearer matches a batch of orders against a list of valid products.
//
// The engine borrows exclusive write access to every order for the
// duration of the call: AcceptedVolume and AcceptedPrice are mutated in
// place and the returned lists alias the caller's records (or their
// explicit splits). Running two calls over the same records concurrently
// is undefined.
type Clearer interface {
	Clear(book market.Orderbook, products []market.Product) (market.ClearingResult, error)
}

// settlement customizes the shared merit-order loop per pricing regime.
type settlement interface {
	// beginDemand resets per-demand state before supply is drawn.
	beginDemand(st *productState, d *market.Order)
	// accept commits the popped supply order to the current demand order
	// and returns the volume newly added to the matched total.
	accept(st *productState, s *market.Order) float64
	// trim reduces the marginal supply acceptance by diff and returns
	// the record to requeue at the front of the supply queue.
	trim(st *productState, diff float64) *market.Order
	// endDemand finishes the current demand order once volumes are settled.
	endDemand(st *productState, d *market.Order)
	// settle assigns accepted prices for the product and returns the
	// reference price recorded on in-product rejected orders.
	settle(st *productState) float64
}

// productState is the working state for matching one product group.
type productState struct {
	product        market.Product
	group          []*market.Order // every nonzero-volume order of the product, splits included
	supply         []*market.Order // working queue, cheapest first
	acceptedSupply []*market.Order
	acceptedDemand []*market.Order
	rejected       []*market.Order
	commit         []*market.Order // supply committed to the current demand order (pay-as-bid)
	genVol         float64
	demVol         float64
}

// clearProducts is the engine skeleton shared by both pricing variants:
// validation, grouping, per-product matching, rejection sweep and
// aggregation. The settlement policy supplies the price assignment.
func clearProducts(book market.Orderbook, products []market.Product, tb TieBreaker, pol settlement, log logger.Logger) (market.ClearingResult, error) {
	if err := book.Validate(); err != nil {
		return market.ClearingResult{}, err
	}

	valid := make(map[market.ProductKey]struct{}, len(products))
	for _, p := range products {
		valid[p.Key()] = struct{}{}
	}

	res := market.ClearingResult{Flows: []market.Flow{}}
	groups := make(map[market.ProductKey][]*market.Order)
	for _, o := range book {
		if o.Volume == 0 {
			// invalid trade intent, treated as never submitted
			continue
		}
		k := o.Product.Key()
		if _, ok := valid[k]; !ok {
			o.AcceptedVolume = 0
			o.AcceptedPrice = 0
			res.Rejected = append(res.Rejected, o)
			log.Debugw("order outside valid products", map[string]any{
				"order": o.ID, "product": o.Product.String(),
			})
			continue
		}
		groups[k] = append(groups[k], o)
	}

	for _, p := range products {
		group := groups[p.Key()]
		if len(group) == 0 {
			continue
		}
		st := &productState{product: p, group: group}
		matchProduct(st, tb, pol)

		inRejected := make(map[*market.Order]struct{}, len(st.rejected))
		for _, o := range st.rejected {
			inRejected[o] = struct{}{}
		}
		for _, o := range st.group {
			if o.AcceptedVolume != 0 {
				continue
			}
			if _, ok := inRejected[o]; ok {
				continue
			}
			st.rejected = append(st.rejected, o)
		}

		refPrice := pol.settle(st)
		for _, o := range st.rejected {
			o.AcceptedVolume = 0
			o.AcceptedPrice = refPrice
		}

		res.Accepted = append(res.Accepted, st.acceptedDemand...)
		res.Accepted = append(res.Accepted, st.acceptedSupply...)
		res.Rejected = append(res.Rejected, st.rejected...)
		res.Meta = append(res.Meta, calculateMeta(st.acceptedSupply, st.acceptedDemand, p))
	}
	return res, nil
}

// matchProduct runs the merit-order loop for one product: cheapest
// generation serves the most valuable demand first, the marginal supply
// order is trimmed and requeued when it overshoots.
func matchProduct(st *productState, tb TieBreaker, pol settlement) {
	var supply, demand []*market.Order
	for _, o := range st.group {
		if o.IsSupply() {
			supply = append(supply, o)
		} else {
			demand = append(demand, o)
		}
	}
	sortByPrice(supply, tb, false)
	sortByPrice(demand, tb, true)
	st.supply = supply

	for _, d := range demand {
		if len(st.supply) == 0 {
			// no generation left, leftover demand is rejected in the sweep
			continue
		}
		st.demVol += -d.Volume
		d.AcceptedVolume = d.Volume
		pol.beginDemand(st, d)

		for len(st.supply) > 0 && st.genVol < st.demVol {
			s := st.supply[0]
			st.supply = st.supply[1:]
			if s.Price <= d.Price {
				st.genVol += pol.accept(st, s)
			} else if s.AcceptedVolume == 0 {
				// too expensive and never accepted: out of this product
				st.rejected = append(st.rejected, s)
			}
			// a partially accepted order that is now too expensive keeps
			// its acceptance and simply leaves the queue
		}

		diff := st.genVol - st.demVol
		switch {
		case diff < 0:
			// shortfall: demand only partially filled
			d.AcceptedVolume = d.Volume - diff
		case diff > 0:
			// overshoot: trim the marginal supply order and requeue the
			// remainder for lower-priority demand
			re := pol.trim(st, diff)
			st.genVol -= diff
			st.supply = append([]*market.Order{re}, st.supply...)
			d.AcceptedVolume = d.Volume
		}

		pol.endDemand(st, d)
		if d.AcceptedVolume != 0 {
			st.acceptedDemand = append(st.acceptedDemand, d)
		}
	}
}

type keyedOrder struct {
	o *market.Order
	k float64
}

// sortByPrice sorts orders by limit price, descending when desc is set,
// using the tie-break keys for equal prices.
func sortByPrice(orders []*market.Order, tb TieBreaker, desc bool) {
	keys := tb.Keys(orders)
	pairs := make([]keyedOrder, len(orders))
	for i, o := range orders {
		pairs[i] = keyedOrder{o: o, k: keys[i]}
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		if pairs[i].o.Price != pairs[j].o.Price {
			if desc {
				return pairs[i].o.Price > pairs[j].o.Price
			}
			return pairs[i].o.Price < pairs[j].o.Price
		}
		return pairs[i].k < pairs[j].k
	})
	for i := range pairs {
		orders[i] = pairs[i].o
	}
}
