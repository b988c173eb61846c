// Package session wires a configured market to a clearing engine with
// observability: each call clears one batch of orders, records metrics
// and publishes the result on an event bus. Scenario orchestration and
// bidding logic live outside this module.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/kilianp07/meritorder/config"
	"github.com/kilianp07/meritorder/core/clearing"
	"github.com/kilianp07/meritorder/core/factory"
	"github.com/kilianp07/meritorder/core/logger"
	"github.com/kilianp07/meritorder/core/market"
	"github.com/kilianp07/meritorder/core/metrics"
	infralogger "github.com/kilianp07/meritorder/infra/logger"
	_ "github.com/kilianp07/meritorder/infra/metrics" // sink registrations
	"github.com/kilianp07/meritorder/internal/eventbus"
)

// ErrPriceOutOfBounds is returned when an order's limit price falls
// outside the session's configured price band.
var ErrPriceOutOfBounds = errors.New("price out of bounds")

// Market is one periodic market session. It holds no state between
// clearing calls besides the engine's tie-break source.
type Market struct {
	cfg     config.MarketConfig
	clearer clearing.Clearer
	sink    metrics.MetricsSink
	bus     *eventbus.TypedBus[market.ClearingResult]
	log     logger.Logger
}

// New creates a Market from the configuration.
func New(cfg *config.Config) (*Market, error) {
	clearer, err := clearing.NewMechanism(factory.ModuleConfig{
		Type: cfg.Market.Mechanism,
		Conf: map[string]any{"tie_break": cfg.Market.TieBreak},
	})
	if err != nil {
		return nil, fmt.Errorf("clearing mechanism: %w", err)
	}
	sink, err := metrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	return &Market{
		cfg:     cfg.Market,
		clearer: clearer,
		sink:    sink,
		bus:     eventbus.NewTyped[market.ClearingResult](),
		log:     infralogger.New("session"),
	}, nil
}

// Products derives the valid-product list for a call starting at the
// next slot boundary at or after from.
func (m *Market) Products(from time.Time) []market.Product {
	return m.cfg.Products(from)
}

// Clear runs one clearing call over the book against the session's
// product grid. The caller's order records are mutated in place; see
// clearing.Clearer for the ownership contract.
func (m *Market) Clear(now time.Time, book market.Orderbook) (market.ClearingResult, error) {
	if err := m.checkBounds(book); err != nil {
		return market.ClearingResult{}, err
	}
	products := m.cfg.Products(now)
	res, err := m.clearer.Clear(book, products)
	if err != nil {
		m.log.Errorf("clearing failed: %v", err)
		return market.ClearingResult{}, err
	}

	events := metrics.EventsFromResult(m.cfg.Name, m.cfg.Mechanism, res, now)
	if err := m.sink.RecordClearing(events); err != nil {
		m.log.Warnf("record clearing metrics: %v", err)
	}
	m.bus.Publish(res)
	m.log.Infof("market %s cleared %d products: %d accepted, %d rejected",
		m.cfg.Name, len(res.Meta), len(res.Accepted), len(res.Rejected))
	return res, nil
}

// checkBounds rejects books carrying limit prices outside the session's
// price band before they reach the engine.
func (m *Market) checkBounds(book market.Orderbook) error {
	for _, o := range book {
		if o.Price > m.cfg.MaxPrice || o.Price < m.cfg.MinPrice {
			return fmt.Errorf("order %s: price %v outside [%v, %v]: %w",
				o.ID, o.Price, m.cfg.MinPrice, m.cfg.MaxPrice, ErrPriceOutOfBounds)
		}
	}
	return nil
}

// Results returns a channel receiving every future clearing result.
func (m *Market) Results() <-chan market.ClearingResult {
	return m.bus.Subscribe()
}

// Close shuts the result bus down.
func (m *Market) Close() {
	m.bus.Close()
}
