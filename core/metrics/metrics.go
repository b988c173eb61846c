package metrics

import (
	"time"

	"github.com/kilianp07/meritorder/core/market"
)

// ClearingEvent captures the outcome of one cleared product for
// observability purposes.
type ClearingEvent struct {
	Market       string
	Mechanism    string
	ProductStart time.Time
	ProductEnd   time.Time
	// Price is the volume-weighted average accepted supply price. Under
	// pay-as-clear all accepted supply settles at one price, so this is
	// the clearing price itself.
	Price          float64
	SupplyVolume   float64
	DemandVolume   float64
	AcceptedOrders int
	RejectedOrders int
	Time           time.Time
}

// MetricsSink records clearing outcomes.
type MetricsSink interface {
	RecordClearing(events []ClearingEvent) error
}

// NopSink discards all events.
type NopSink struct{}

// RecordClearing implements MetricsSink as a no-op.
func (NopSink) RecordClearing([]ClearingEvent) error { return nil }

// EventsFromResult derives one ClearingEvent per processed product from
// a clearing result. Rejected orders outside any processed product are
// not attributed to an event.
func EventsFromResult(marketName, mechanism string, res market.ClearingResult, now time.Time) []ClearingEvent {
	accepted := make(map[market.ProductKey]int)
	for _, o := range res.Accepted {
		accepted[o.Product.Key()]++
	}
	rejected := make(map[market.ProductKey]int)
	for _, o := range res.Rejected {
		rejected[o.Product.Key()]++
	}

	events := make([]ClearingEvent, 0, len(res.Meta))
	for _, m := range res.Meta {
		p := market.Product{StartTime: m.ProductStart, EndTime: m.ProductEnd, OnlyHours: m.OnlyHours}
		k := p.Key()
		events = append(events, ClearingEvent{
			Market:         marketName,
			Mechanism:      mechanism,
			ProductStart:   m.ProductStart,
			ProductEnd:     m.ProductEnd,
			Price:          m.Price,
			SupplyVolume:   m.SupplyVolume,
			DemandVolume:   m.DemandVolume,
			AcceptedOrders: accepted[k],
			RejectedOrders: rejected[k],
			Time:           now,
		})
	}
	return events
}
