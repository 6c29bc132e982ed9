package history

import (
	"testing"
	"time"
)

func TestBufferRollsOver(t *testing.T) {
	b := NewBuffer(5)

	now := time.Now()
	for i := 0; i < 7; i++ {
		b.Push(100+i, now.Add(time.Duration(i)*time.Second))
	}

	if b.Len() != 5 {
		t.Errorf("expected 5 points, got %d", b.Len())
	}

	if b.Last() != 106 {
		t.Errorf("Last(): got %d, want 106", b.Last())
	}

	if b.Min != 100 {
		t.Errorf("Min: got %d, want 100", b.Min)
	}

	if b.Peak != 106 {
		t.Errorf("Peak: got %d, want 106", b.Peak)
	}
}

func TestAvg(t *testing.T) {
	b := NewBuffer(10)
	now := time.Now()

	for _, v := range []int{100, 200, 300} {
		b.Push(v, now)
	}

	if avg := b.Avg(); avg != 200.0 {
		t.Errorf("Avg: got %f, want 200.0", avg)
	}
}

func TestLastNPoints(t *testing.T) {
	b := NewBuffer(100)
	base := time.Date(2026, 2, 21, 14, 0, 0, 0, time.Local)

	for i := 0; i < 120; i++ {
		b.Push(50+i%10, base.Add(time.Duration(i)*time.Second))
	}

	pts := b.LastNPoints(5)
	if len(pts) != 5 {
		t.Fatalf("LastNPoints(5): got %d, want 5", len(pts))
	}

	for _, p := range pts {
		if p.Time.IsZero() {
			t.Error("expected non-zero timestamp")
		}
	}

	last := pts[len(pts)-1]
	if last.Time != base.Add(119*time.Second) {
		t.Errorf("last point time: got %v, want %v", last.Time, base.Add(119*time.Second))
	}
}

func TestEmptyBuffer(t *testing.T) {
	b := NewBuffer(4)

	if b.Last() != 0 {
		t.Errorf("Last on empty: got %d, want 0", b.Last())
	}
	if b.Avg() != 0 {
		t.Errorf("Avg on empty: got %f, want 0", b.Avg())
	}
	if pts := b.LastNPoints(3); pts != nil {
		t.Errorf("LastNPoints on empty: got %v, want nil", pts)
	}
}
