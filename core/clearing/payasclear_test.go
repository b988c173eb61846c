package clearing

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/kilianp07/meritorder/core/market"
)

func newTestPayAsClear() *PayAsClear {
	c := NewPayAsClear()
	c.TieBreak = SubmissionTieBreak{}
	return c
}

func TestPayAsClear_MeritOrderCross(t *testing.T) {
	p := testProduct(12)
	s1 := supply(p, 10, 5)
	s2 := supply(p, 20, 5)
	s3 := supply(p, 30, 5)
	d1 := demand(p, 40, 5)
	d2 := demand(p, 25, 5)
	d3 := demand(p, 15, 5)
	book := market.Orderbook{s1, s2, s3, d1, d2, d3}

	res, err := newTestPayAsClear().Clear(book, []market.Product{p})
	if err != nil {
		t.Fatalf("clear: %v", err)
	}

	if len(res.Accepted) != 4 {
		t.Fatalf("accepted %d orders, want 4", len(res.Accepted))
	}
	if len(res.Rejected) != 2 {
		t.Fatalf("rejected %d orders, want 2", len(res.Rejected))
	}
	// supply above and demand below the intersection stay out
	if s3.AcceptedVolume != 0 || d3.AcceptedVolume != 0 {
		t.Error("marginal cross must exclude supply@30 and demand@15")
	}
	for _, o := range []*market.Order{s1, s2, d1, d2} {
		if o.AcceptedVolume != o.Volume {
			t.Errorf("order %s accepted %v, want full %v", o.ID, o.AcceptedVolume, o.Volume)
		}
		if o.AcceptedPrice != 20 {
			t.Errorf("order %s settles at %v, want clearing price 20", o.ID, o.AcceptedPrice)
		}
	}
	// rejected orders carry the clearing price as a reference value
	if s3.AcceptedPrice != 20 || d3.AcceptedPrice != 20 {
		t.Error("in-product rejects must carry the clearing price")
	}

	if len(res.Meta) != 1 {
		t.Fatalf("meta records = %d, want 1", len(res.Meta))
	}
	m := res.Meta[0]
	if m.SupplyVolume != 10 || m.DemandVolume != 10 {
		t.Errorf("matched volumes %v/%v, want 10/10", m.SupplyVolume, m.DemandVolume)
	}
	if m.Price != 20 || m.MaxPrice != 20 || m.MinPrice != 20 {
		t.Errorf("meta prices %v/%v/%v, want uniform 20", m.Price, m.MaxPrice, m.MinPrice)
	}
	if len(res.Flows) != 0 {
		t.Errorf("flows must stay empty, got %d", len(res.Flows))
	}

	assertPartition(t, book, res)
	assertBalance(t, res)
	assertBounds(t, res)
	assertMeritOrder(t, res)
}

func TestPayAsClear_NoCross(t *testing.T) {
	p := testProduct(12)
	s := supply(p, 10, 10)
	d := demand(p, 5, 10)
	book := market.Orderbook{s, d}

	res, err := newTestPayAsClear().Clear(book, []market.Product{p})
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if len(res.Accepted) != 0 || len(res.Rejected) != 2 {
		t.Fatalf("accepted/rejected = %d/%d, want 0/2", len(res.Accepted), len(res.Rejected))
	}
	if s.AcceptedVolume != 0 || d.AcceptedVolume != 0 {
		t.Error("rejected orders must have zero accepted volume")
	}
	if s.AcceptedPrice != 0 || d.AcceptedPrice != 0 {
		t.Error("clearing price is 0 when no supply clears")
	}
	if res.Meta[0].SupplyVolume != 0 || res.Meta[0].Price != 0 {
		t.Error("meta must report an empty product")
	}
}

func TestPayAsClear_PartialFillSplitsMarginalSupply(t *testing.T) {
	p := testProduct(12)
	s := supply(p, 10, 10)
	d := demand(p, 20, 6)
	book := market.Orderbook{s, d}

	res, err := newTestPayAsClear().Clear(book, []market.Product{p})
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if d.AcceptedVolume != -6 {
		t.Errorf("demand accepted %v, want -6", d.AcceptedVolume)
	}
	if s.AcceptedVolume != 6 {
		t.Errorf("supply accepted %v, want 6", s.AcceptedVolume)
	}
	if s.AcceptedPrice != 10 || d.AcceptedPrice != 10 {
		t.Errorf("clearing price %v/%v, want 10", s.AcceptedPrice, d.AcceptedPrice)
	}
	if len(res.Rejected) != 0 {
		t.Errorf("partially accepted supply must not be rejected")
	}
	assertBalance(t, res)
}

func TestPayAsClear_MarginalRemainderServesLaterDemand(t *testing.T) {
	p := testProduct(12)
	s := supply(p, 10, 10)
	dA := demand(p, 20, 6)
	dB := demand(p, 15, 3)
	book := market.Orderbook{s, dA, dB}

	res, err := newTestPayAsClear().Clear(book, []market.Product{p})
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if s.AcceptedVolume != 9 {
		t.Errorf("supply re-accumulates to %v, want 9", s.AcceptedVolume)
	}
	if dA.AcceptedVolume != -6 || dB.AcceptedVolume != -3 {
		t.Errorf("demand accepted %v/%v, want -6/-3", dA.AcceptedVolume, dB.AcceptedVolume)
	}
	// same record, one acceptance entry
	count := 0
	for _, o := range res.Accepted {
		if o == s {
			count++
		}
	}
	if count != 1 {
		t.Errorf("supply record appears %d times in accepted, want 1", count)
	}
	assertBalance(t, res)
}

func TestPayAsClear_InvalidProductRejected(t *testing.T) {
	p := testProduct(12)
	other := testProduct(13)
	s := supply(p, 10, 5)
	d := demand(p, 20, 5)
	stray := supply(other, 5, 5)
	book := market.Orderbook{s, d, stray}

	res, err := newTestPayAsClear().Clear(book, []market.Product{p})
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	found := 0
	for _, o := range res.Rejected {
		if o == stray {
			found++
		}
	}
	if found != 1 {
		t.Fatalf("stray order appears %d times in rejected, want 1", found)
	}
	if stray.AcceptedVolume != 0 || stray.AcceptedPrice != 0 {
		t.Error("invalid-product reject must be zeroed")
	}
	if len(res.Meta) != 1 {
		t.Errorf("meta records = %d, want 1", len(res.Meta))
	}
}

func TestPayAsClear_ZeroVolumeExcluded(t *testing.T) {
	p := testProduct(12)
	z := market.NewOrder("ghost", p, 0, 10)
	s := supply(p, 10, 5)
	d := demand(p, 20, 5)
	book := market.Orderbook{z, s, d}

	res, err := newTestPayAsClear().Clear(book, []market.Product{p})
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	assertPartition(t, book, res)
}

func TestPayAsClear_MalformedOrderFailsCall(t *testing.T) {
	p := testProduct(12)
	s := supply(p, 10, 5)
	bad := demand(p, math.NaN(), 5)
	book := market.Orderbook{s, bad}

	_, err := newTestPayAsClear().Clear(book, []market.Product{p})
	if !errors.Is(err, market.ErrMalformedOrder) {
		t.Fatalf("expected ErrMalformedOrder, got %v", err)
	}
	if s.AcceptedVolume != 0 {
		t.Error("failed call must not leave acceptances behind")
	}
}

func TestPayAsClear_DisjointProductsIndependent(t *testing.T) {
	pA := testProduct(12)
	pB := testProduct(13)

	build := func() (market.Orderbook, market.Orderbook) {
		a := market.Orderbook{supply(pA, 10, 5), supply(pA, 30, 5), demand(pA, 40, 8)}
		b := market.Orderbook{supply(pB, 12, 4), demand(pB, 50, 2), demand(pB, 8, 2)}
		return a, b
	}

	bookA, bookB := build()
	combined := append(append(market.Orderbook{}, bookA...), bookB...)
	resAB, err := newTestPayAsClear().Clear(combined, []market.Product{pA, pB})
	if err != nil {
		t.Fatalf("clear combined: %v", err)
	}

	freshA, freshB := build()
	resA, err := newTestPayAsClear().Clear(freshA, []market.Product{pA})
	if err != nil {
		t.Fatalf("clear A: %v", err)
	}
	resB, err := newTestPayAsClear().Clear(freshB, []market.Product{pB})
	if err != nil {
		t.Fatalf("clear B: %v", err)
	}

	if len(resAB.Meta) != 2 {
		t.Fatalf("combined meta records = %d, want 2", len(resAB.Meta))
	}
	for i, want := range []struct {
		meta market.ProductMeta
	}{{resA.Meta[0]}, {resB.Meta[0]}} {
		got := resAB.Meta[i]
		if got.SupplyVolume != want.meta.SupplyVolume || got.Price != want.meta.Price {
			t.Errorf("product %d: combined %+v differs from separate %+v", i, got, want.meta)
		}
	}
	if len(resAB.Accepted) != len(resA.Accepted)+len(resB.Accepted) {
		t.Errorf("combined accepted %d, separate %d+%d",
			len(resAB.Accepted), len(resA.Accepted), len(resB.Accepted))
	}
}

func TestPayAsClear_MetaOrderedByProduct(t *testing.T) {
	pA := testProduct(12)
	pB := testProduct(13)
	// submit B's orders first; meta must still follow the product list
	book := market.Orderbook{
		supply(pB, 10, 5), demand(pB, 20, 5),
		supply(pA, 10, 5), demand(pA, 20, 5),
	}
	res, err := newTestPayAsClear().Clear(book, []market.Product{pA, pB})
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if len(res.Meta) != 2 {
		t.Fatalf("meta records = %d, want 2", len(res.Meta))
	}
	if !res.Meta[0].ProductStart.Equal(pA.StartTime) || !res.Meta[1].ProductStart.Equal(pB.StartTime) {
		t.Error("meta must be ordered by product")
	}
}

func TestPayAsClear_RandomizedBooksKeepInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	engine := NewPayAsClear() // randomized tie-break on purpose
	for round := 0; round < 50; round++ {
		p := testProduct(rng.Intn(24))
		var book market.Orderbook
		for i := 0; i < 3+rng.Intn(8); i++ {
			book = append(book, supply(p, float64(rng.Intn(12)*10), 1+float64(rng.Intn(10))))
		}
		for i := 0; i < 3+rng.Intn(8); i++ {
			book = append(book, demand(p, float64(rng.Intn(12)*10), 1+float64(rng.Intn(10))))
		}
		res, err := engine.Clear(book, []market.Product{p})
		if err != nil {
			t.Fatalf("round %d: %v", round, err)
		}
		assertPartition(t, book, res)
		assertBalance(t, res)
		assertBounds(t, res)
		assertMeritOrder(t, res)

		// uniform price: one accepted price shared by every accepted order
		for _, o := range res.Accepted {
			if o.AcceptedPrice != res.Meta[0].MaxPrice {
				t.Fatalf("round %d: order %s at %v deviates from clearing price %v",
					round, o.ID, o.AcceptedPrice, res.Meta[0].MaxPrice)
			}
		}
	}
}
