package market

import (
	"fmt"
	"time"
)

// HourWindow restricts a product to a sub-block of hours within its
// delivery window. It is part of the product identity.
type HourWindow struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// Product identifies one auction instance: a delivery window plus an
// optional hour restriction. A clearing call receives the list of valid
// products; any order whose product is not in that list is invalid for
// the round.
type Product struct {
	StartTime time.Time
	EndTime   time.Time
	OnlyHours *HourWindow
}

// ProductKey is the comparable grouping key derived from a product.
type ProductKey struct {
	Start      int64
	End        int64
	Hours      HourWindow
	Restricted bool
}

// Key returns the grouping key for the product.
func (p Product) Key() ProductKey {
	k := ProductKey{Start: p.StartTime.UnixNano(), End: p.EndTime.UnixNano()}
	if p.OnlyHours != nil {
		k.Hours = *p.OnlyHours
		k.Restricted = true
	}
	return k
}

// Duration returns the delivery window length in hours, used to scale
// power volumes to energy.
func (p Product) Duration() float64 {
	return p.EndTime.Sub(p.StartTime).Hours()
}

// Validate checks that the delivery window is well formed.
func (p Product) Validate() error {
	if !p.StartTime.Before(p.EndTime) {
		return fmt.Errorf("product start %s not before end %s: %w",
			p.StartTime.Format(time.RFC3339), p.EndTime.Format(time.RFC3339), ErrMalformedOrder)
	}
	return nil
}

// String returns a human-readable product identifier.
func (p Product) String() string {
	s := p.StartTime.Format(time.RFC3339) + "/" + p.EndTime.Format(time.RFC3339)
	if p.OnlyHours != nil {
		s += fmt.Sprintf("/h%d-%d", p.OnlyHours.From, p.OnlyHours.To)
	}
	return s
}
