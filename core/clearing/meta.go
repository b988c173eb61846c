package clearing

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/meritorder/core/market"
)

// calculateMeta aggregates the finally-accepted orders of one product.
// Demand is reported as a positive magnitude, energy volumes are scaled
// by the product duration in hours. Price statistics default to 0 when
// no supply was accepted.
func calculateMeta(acceptedSupply, acceptedDemand []*market.Order, p market.Product) market.ProductMeta {
	vols := make([]float64, len(acceptedSupply))
	prices := make([]float64, len(acceptedSupply))
	for i, s := range acceptedSupply {
		vols[i] = s.AcceptedVolume
		prices[i] = s.AcceptedPrice
	}
	supplyVol := floats.Sum(vols)

	demandVol := 0.0
	for _, d := range acceptedDemand {
		demandVol += d.AcceptedVolume
	}
	demandVol = -demandVol

	m := market.ProductMeta{
		SupplyVolume:       supplyVol,
		DemandVolume:       demandVol,
		SupplyVolumeEnergy: supplyVol * p.Duration(),
		DemandVolumeEnergy: demandVol * p.Duration(),
		ProductStart:       p.StartTime,
		ProductEnd:         p.EndTime,
		OnlyHours:          p.OnlyHours,
	}
	if len(prices) > 0 {
		m.MaxPrice = floats.Max(prices)
		m.MinPrice = floats.Min(prices)
	}
	if supplyVol != 0 {
		m.Price = stat.Mean(prices, vols)
	}
	return m
}
