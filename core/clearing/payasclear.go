package clearing

import (
	"github.com/kilianp07/meritorder/core/logger"
	"github.com/kilianp07/meritorder/core/market"
)

// PayAsClear clears every product at a single uniform price: the limit
// price of the priciest accepted supply order, or 0 when no supply is
// accepted. All accepted orders settle at that price and in-product
// rejected orders carry it as a reference value.
type PayAsClear struct {
	TieBreak TieBreaker
	Log      logger.Logger
}

// NewPayAsClear returns a pay-as-clear engine with the random tie-break.
func NewPayAsClear() *PayAsClear {
	return &PayAsClear{TieBreak: NewRandomTieBreak(), Log: logger.Nop{}}
}

// Clear implements the Clearer interface.
func (c *PayAsClear) Clear(book market.Orderbook, products []market.Product) (market.ClearingResult, error) {
	return clearProducts(book, products, c.TieBreak, payAsClearPolicy{}, c.Log)
}

type payAsClearPolicy struct{}

func (payAsClearPolicy) beginDemand(*productState, *market.Order) {}

// accept takes the full volume of the supply order. A record trimmed by
// an earlier overshoot re-accumulates: only the leftover counts towards
// the matched total and it is not inserted twice.
func (payAsClearPolicy) accept(st *productState, s *market.Order) float64 {
	added := s.Volume - s.AcceptedVolume
	if s.AcceptedVolume == 0 {
		st.acceptedSupply = append(st.acceptedSupply, s)
	}
	s.AcceptedVolume = s.Volume
	return added
}

// trim reduces the marginal supply order's recorded acceptance and hands
// the same record back for requeueing, so later demand can grow it again.
func (payAsClearPolicy) trim(st *productState, diff float64) *market.Order {
	s := st.acceptedSupply[len(st.acceptedSupply)-1]
	s.AcceptedVolume = s.Volume - diff
	return s
}

func (payAsClearPolicy) endDemand(*productState, *market.Order) {}

// settle computes the uniform clearing price and assigns it to every
// accepted order. Rejected orders carry it as a reference value.
func (payAsClearPolicy) settle(st *productState) float64 {
	clearPrice := 0.0
	for i, s := range st.acceptedSupply {
		if i == 0 || s.Price > clearPrice {
			clearPrice = s.Price
		}
	}
	for _, o := range st.acceptedDemand {
		o.AcceptedPrice = clearPrice
	}
	for _, o := range st.acceptedSupply {
		o.AcceptedPrice = clearPrice
	}
	return clearPrice
}
