package market

import (
	"testing"
	"time"
)

func TestProduct_KeyEquality(t *testing.T) {
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	a := Product{StartTime: start, EndTime: start.Add(time.Hour)}
	b := Product{StartTime: start, EndTime: start.Add(time.Hour)}
	if a.Key() != b.Key() {
		t.Error("identical products must share a key")
	}

	c := Product{StartTime: start, EndTime: start.Add(time.Hour), OnlyHours: &HourWindow{From: 8, To: 20}}
	if a.Key() == c.Key() {
		t.Error("hour restriction is part of the product identity")
	}
	d := Product{StartTime: start, EndTime: start.Add(time.Hour), OnlyHours: &HourWindow{From: 8, To: 20}}
	if c.Key() != d.Key() {
		t.Error("equal restrictions must share a key")
	}
}

func TestProduct_Duration(t *testing.T) {
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	p := Product{StartTime: start, EndTime: start.Add(15 * time.Minute)}
	if got := p.Duration(); got != 0.25 {
		t.Errorf("duration = %v, want 0.25", got)
	}
}

func TestProduct_Validate(t *testing.T) {
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	bad := Product{StartTime: start, EndTime: start}
	if err := bad.Validate(); err == nil {
		t.Error("expected error for empty window")
	}
	ok := Product{StartTime: start, EndTime: start.Add(time.Hour)}
	if err := ok.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
