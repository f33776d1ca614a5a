package dwell

import (
	"math"
	"testing"
)

func TestAddPoint_Scenario(t *testing.T) {
	d := New(0.75, 75)

	steps := []struct {
		x, y, t      float64
		wantChanged  bool
		wantDwelling bool
	}{
		{500, 500, 0.0, false, false},
		{520, 510, 0.3, false, false},
		{510, 495, 0.8, true, true},
		{700, 700, 0.9, true, false},
	}

	for i, s := range steps {
		r := d.AddPoint(s.x, s.y, s.t)
		if r.Changed != s.wantChanged || r.Dwelling != s.wantDwelling {
			t.Fatalf("step %d: got (changed=%v, dwelling=%v), want (%v, %v)",
				i, r.Changed, r.Dwelling, s.wantChanged, s.wantDwelling)
		}
		if r.Dwelling && r.Point == nil {
			t.Fatalf("step %d: dwelling without a point", i)
		}
		if !r.Dwelling && r.Point != nil {
			t.Fatalf("step %d: point reported while not dwelling: %+v", i, *r.Point)
		}
	}
}

func TestAddPoint_DwellPointIsMostRecentSample(t *testing.T) {
	d := New(0.5, 50)
	d.AddPoint(100, 100, 0)
	r := d.AddPoint(110, 95, 0.6)

	if !r.Onset() {
		t.Fatalf("expected onset, got %+v", r)
	}
	if r.Point.X != 110 || r.Point.Y != 95 {
		t.Errorf("dwell point = %+v, want (110, 95)", *r.Point)
	}
}

func TestAddPoint_StabilityOnsetOnce(t *testing.T) {
	d := New(0.2, 10)

	onsets := 0
	dwellingAfterOnset := 0
	for i := 0; i < 100; i++ {
		ts := float64(i) * 0.01
		// Jitter inside the radius around (300, 300).
		x := 300 + 4*math.Sin(float64(i))
		y := 300 + 4*math.Cos(float64(i))
		r := d.AddPoint(x, y, ts)

		if ts < 0.2-1e-9 && r.Dwelling {
			t.Fatalf("dwelling before duration elapsed at t=%v", ts)
		}
		if r.Onset() {
			onsets++
			continue
		}
		if onsets > 0 {
			if !r.Dwelling || r.Changed {
				t.Fatalf("t=%v: expected continued dwell, got %+v", ts, r)
			}
			dwellingAfterOnset++
		}
	}

	if onsets != 1 {
		t.Errorf("onsets = %d, want 1", onsets)
	}
	if dwellingAfterOnset == 0 {
		t.Error("expected samples after onset to keep dwelling")
	}
}

func TestAddPoint_BreakBeforeDwell(t *testing.T) {
	d := New(1.0, 20)
	d.AddPoint(0, 0, 0)
	d.AddPoint(5, 5, 0.5)

	r := d.AddPoint(100, 100, 0.6)
	if r.Changed || r.Dwelling || r.Point != nil {
		t.Errorf("break before dwell should be silent, got %+v", r)
	}

	anchor, ok := d.Anchor()
	if !ok || anchor.X != 100 || anchor.Y != 100 {
		t.Errorf("anchor = %+v (ok=%v), want (100, 100)", anchor, ok)
	}
}

func TestAddPoint_BreakAfterDwell(t *testing.T) {
	d := New(0.1, 20)
	d.AddPoint(0, 0, 0)
	if r := d.AddPoint(1, 1, 0.2); !r.Onset() {
		t.Fatalf("expected onset, got %+v", r)
	}

	r := d.AddPoint(50, 0, 0.3)
	if !r.Changed || r.Dwelling {
		t.Errorf("break after dwell: got %+v, want changed and not dwelling", r)
	}
	if d.Dwelling() {
		t.Error("detector still dwelling after break")
	}

	// The breaking sample starts a new window; a fresh onset follows.
	if r := d.AddPoint(51, 1, 0.35); r.Dwelling {
		t.Errorf("new window dwelling too early: %+v", r)
	}
	if r := d.AddPoint(52, 0, 0.45); !r.Onset() {
		t.Errorf("expected second onset, got %+v", r)
	}
}

func TestAddPoint_ReferenceIsFixedAnchor(t *testing.T) {
	d := New(10, 10)
	d.AddPoint(0, 0, 0)
	d.AddPoint(9, 0, 1)

	// 18 is within 10 of the previous sample but not of the anchor.
	r := d.AddPoint(18, 0, 2)
	if r.Changed || r.Dwelling {
		t.Errorf("unexpected result %+v", r)
	}
	anchor, _ := d.Anchor()
	if anchor.X != 18 {
		t.Errorf("window should re-anchor at 18, anchor = %+v", anchor)
	}
}

func TestSetDuration_Live(t *testing.T) {
	d := New(0.5, 50)
	d.AddPoint(0, 0, 0)
	if r := d.AddPoint(1, 0, 0.6); !r.Onset() {
		t.Fatalf("expected onset at 0.6s, got %+v", r)
	}

	d.SetDuration(2)
	if r := d.AddPoint(1, 1, 0.7); r.Dwelling || r.Changed {
		t.Errorf("raising duration should end dwell silently, got %+v", r)
	}

	d.SetDuration(0.5)
	if r := d.AddPoint(2, 1, 0.8); !r.Onset() {
		t.Errorf("lowering duration should start a new onset, got %+v", r)
	}
}

func TestSetDuration_LowerCompletesPendingWindow(t *testing.T) {
	d := New(5, 50)
	d.AddPoint(0, 0, 0)
	if r := d.AddPoint(0, 0, 1); r.Dwelling {
		t.Fatalf("dwelling too early: %+v", r)
	}

	d.SetDuration(1.5)
	if r := d.AddPoint(0, 0, 2); !r.Onset() {
		t.Errorf("expected onset after lowering duration, got %+v", r)
	}
}

func TestZeroDuration(t *testing.T) {
	d := New(0, 10)

	r := d.AddPoint(42, 24, 3)
	if !r.Onset() {
		t.Fatalf("first sample should be an instant dwell, got %+v", r)
	}
	if r.Point == nil || r.Point.X != 42 || r.Point.Y != 24 {
		t.Errorf("dwell point = %v, want (42, 24)", r.Point)
	}

	if r := d.AddPoint(42, 25, 3.1); !r.Dwelling || r.Changed {
		t.Errorf("expected continued dwell, got %+v", r)
	}
}

func TestNegativeDuration(t *testing.T) {
	d := New(-1, 10)
	if r := d.AddPoint(1, 1, 0); !r.Onset() {
		t.Errorf("negative duration should behave like zero, got %+v", r)
	}
}

func TestZeroRadius(t *testing.T) {
	d := New(0.1, 0)
	d.AddPoint(10, 10, 0)

	if r := d.AddPoint(10, 10, 0.2); !r.Onset() {
		t.Fatalf("identical positions should dwell, got %+v", r)
	}

	r := d.AddPoint(10.001, 10, 0.3)
	if !r.Changed || r.Dwelling {
		t.Errorf("any movement should break a zero-radius dwell, got %+v", r)
	}
}

func TestSetRange_Live(t *testing.T) {
	d := New(1, 100)
	d.AddPoint(0, 0, 0)
	d.AddPoint(50, 0, 0.5)

	d.SetRange(10)
	r := d.AddPoint(50, 0, 1.2)
	if r.Dwelling {
		t.Errorf("shrunk range should break the window, got %+v", r)
	}
	if d.Range() != 10 {
		t.Errorf("Range() = %v, want 10", d.Range())
	}
}

func TestNonMonotonicTimestamps(t *testing.T) {
	d := New(0.5, 10)
	d.AddPoint(0, 0, 10)

	if r := d.AddPoint(0, 0, 9); r.Dwelling {
		t.Errorf("sample older than anchor must not dwell, got %+v", r)
	}
	if r := d.AddPoint(0, 0, 10.6); !r.Onset() {
		t.Errorf("expected onset once span is reached, got %+v", r)
	}
}

func TestReset(t *testing.T) {
	d := New(0, 10)
	d.AddPoint(0, 0, 0)
	d.Reset()

	if d.Dwelling() {
		t.Error("Reset should clear dwelling")
	}
	if _, ok := d.Anchor(); ok {
		t.Error("Reset should clear the window")
	}
	if r := d.AddPoint(100, 100, 1); !r.Onset() {
		t.Errorf("expected fresh onset after reset, got %+v", r)
	}
}
