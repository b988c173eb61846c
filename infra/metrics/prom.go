package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/meritorder/core/metrics"
)

// PromSink records clearing events in Prometheus metrics.
type PromSink struct {
	orders *prometheus.CounterVec
	volume *prometheus.CounterVec
	price  *prometheus.GaugeVec
}

// NewPromSink registers clearing metrics on the default Prometheus
// registerer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global one. Already registered
// collectors are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	orders := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "clearing_orders_total",
		Help: "Total number of orders processed by clearing calls",
	}, []string{"market", "mechanism", "status"})
	volume := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "clearing_matched_volume_mw_total",
		Help: "Total matched supply volume in MW",
	}, []string{"market", "mechanism"})
	price := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "clearing_price",
		Help: "Clearing price of the most recently cleared product",
	}, []string{"market", "mechanism"})

	if err := reg.Register(orders); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			orders = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(volume); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			volume = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(price); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			price = are.ExistingCollector.(*prometheus.GaugeVec)
		} else {
			return nil, err
		}
	}

	return &PromSink{orders: orders, volume: volume, price: price}, nil
}

// RecordClearing updates the counters and the price gauge for each
// cleared product.
func (s *PromSink) RecordClearing(events []coremetrics.ClearingEvent) error {
	for _, ev := range events {
		s.orders.WithLabelValues(ev.Market, ev.Mechanism, "accepted").Add(float64(ev.AcceptedOrders))
		s.orders.WithLabelValues(ev.Market, ev.Mechanism, "rejected").Add(float64(ev.RejectedOrders))
		s.volume.WithLabelValues(ev.Market, ev.Mechanism).Add(ev.SupplyVolume)
		s.price.WithLabelValues(ev.Market, ev.Mechanism).Set(ev.Price)
	}
	return nil
}
