package market

import "time"

// ProductMeta aggregates the outcome of one cleared product. It is
// informational only and never feeds back into matching. Volumes are in
// MW, the energy variants in MWh (scaled by the product duration).
type ProductMeta struct {
	SupplyVolume       float64
	DemandVolume       float64
	SupplyVolumeEnergy float64
	DemandVolumeEnergy float64
	// Price is the volume-weighted average accepted supply price,
	// 0 when no supply was accepted.
	Price    float64
	MaxPrice float64
	MinPrice float64
	// Node is reserved for network-constrained clearing and stays empty
	// in this engine.
	Node         string
	ProductStart time.Time
	ProductEnd   time.Time
	OnlyHours    *HourWindow
}

// Flow is a placeholder for network flow records produced by
// constrained clearing mechanisms. The engines here never emit any.
type Flow struct {
	From    string
	To      string
	Product Product
	Volume  float64
}

// ClearingResult is the outcome of one clearing call. Accepted and
// Rejected alias the caller's order records (or their explicit splits);
// the engine mutates AcceptedVolume and AcceptedPrice in place. Meta is
// ordered by product.
type ClearingResult struct {
	Accepted Orderbook
	Rejected Orderbook
	Meta     []ProductMeta
	Flows    []Flow
}
