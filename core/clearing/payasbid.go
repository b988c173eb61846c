package clearing

import (
	"github.com/kilianp07/meritorder/core/logger"
	"github.com/kilianp07/meritorder/core/market"
)

// PayAsBid settles every accepted supply order at its own limit price.
// A demand order settles at the price of the last (most expensive)
// supply record delivered to it. Rejected orders carry no reference
// price, since no single product price exists under this regime.
type PayAsBid struct {
	TieBreak TieBreaker
	Log      logger.Logger
}

// NewPayAsBid returns a pay-as-bid engine with the random tie-break.
func NewPayAsBid() *PayAsBid {
	return &PayAsBid{TieBreak: NewRandomTieBreak(), Log: logger.Nop{}}
}

// Clear implements the Clearer interface.
func (c *PayAsBid) Clear(book market.Orderbook, products []market.Product) (market.ClearingResult, error) {
	return clearProducts(book, products, c.TieBreak, &payAsBidPolicy{}, c.Log)
}

type payAsBidPolicy struct{}

func (*payAsBidPolicy) beginDemand(st *productState, _ *market.Order) {
	st.commit = nil
}

// accept commits the supply order to the current demand order. Records
// in the queue are always unaccepted here: an overshoot finalizes the
// trimmed original and requeues a fresh split instead.
func (*payAsBidPolicy) accept(st *productState, s *market.Order) float64 {
	s.AcceptedVolume = s.Volume
	st.commit = append(st.commit, s)
	return s.Volume
}

// trim finalizes the marginal supply order with its reduced acceptance
// and splits the leftover into a new record sharing its lineage, which
// goes back to the queue for lower-priority demand.
func (*payAsBidPolicy) trim(st *productState, diff float64) *market.Order {
	s := st.commit[len(st.commit)-1]
	s.AcceptedVolume = s.Volume - diff
	split := s.Split(diff)
	st.group = append(st.group, split)
	return split
}

// endDemand settles the committed supply at its own prices; the demand
// order pays the price of the marginal unit delivered to it.
func (*payAsBidPolicy) endDemand(st *productState, d *market.Order) {
	for _, s := range st.commit {
		s.AcceptedPrice = s.Price
		d.AcceptedPrice = s.Price
	}
	st.acceptedSupply = append(st.acceptedSupply, st.commit...)
}

func (*payAsBidPolicy) settle(*productState) float64 {
	return 0
}
