package detector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/luki/metaldetect/internal/store"
)

// fakeSource replays a fixed sequence of readings.
type fakeSource struct {
	values []int
	idx    int
}

func (f *fakeSource) Next() int {
	v := f.values[f.idx%len(f.values)]
	f.idx++
	return v
}

// fakeLog records appends in memory, optionally failing.
type fakeLog struct {
	records []store.Record
	err     error
}

func (f *fakeLog) Append(rec store.Record) error {
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, rec)
	return nil
}

func TestIsDetectedAtBoundary(t *testing.T) {
	d := New(Config{Threshold: 501}, &fakeSource{values: []int{0}}, &fakeLog{})

	if d.IsDetected(500) {
		t.Error("500 should be safe under threshold 501")
	}
	if !d.IsDetected(501) {
		t.Error("501 should be detected under threshold 501")
	}
	if !d.IsDetected(1023) {
		t.Error("1023 should be detected under threshold 501")
	}
}

func TestSetThresholdRejectsOutOfRange(t *testing.T) {
	d := New(Config{Threshold: 500}, &fakeSource{values: []int{0}}, &fakeLog{})

	for _, v := range []int{-1, 1024, 99999} {
		if err := d.SetThreshold(v); !errors.Is(err, ErrThresholdRange) {
			t.Errorf("SetThreshold(%d): got %v, want ErrThresholdRange", v, err)
		}
		if d.Threshold() != 500 {
			t.Errorf("SetThreshold(%d) changed threshold to %d", v, d.Threshold())
		}
	}

	for _, v := range []int{0, 1023, 42} {
		if err := d.SetThreshold(v); err != nil {
			t.Errorf("SetThreshold(%d): unexpected error %v", v, err)
		}
		if d.Threshold() != v {
			t.Errorf("threshold: got %d, want %d", d.Threshold(), v)
		}
	}
}

func TestSetDelayRejectsNonPositive(t *testing.T) {
	d := New(Config{}, &fakeSource{values: []int{0}}, &fakeLog{})

	if err := d.SetDelay(0); !errors.Is(err, ErrDelayRange) {
		t.Errorf("SetDelay(0): got %v, want ErrDelayRange", err)
	}
	if d.Delay() != DefaultDelay {
		t.Errorf("delay changed to %v", d.Delay())
	}

	if err := d.SetDelay(time.Second); err != nil {
		t.Fatalf("SetDelay(1s): %v", err)
	}
	if d.Delay() != time.Second {
		t.Errorf("delay: got %v, want 1s", d.Delay())
	}
}

func TestNewFallsBackToDefaults(t *testing.T) {
	d := New(Config{Threshold: -5, Delay: 0}, &fakeSource{values: []int{0}}, &fakeLog{})

	if d.Threshold() != DefaultThreshold {
		t.Errorf("threshold: got %d, want default %d", d.Threshold(), DefaultThreshold)
	}
	if d.Delay() != DefaultDelay {
		t.Errorf("delay: got %v, want default %v", d.Delay(), DefaultDelay)
	}
}

func TestRunCycleLogsOnlyDetections(t *testing.T) {
	log := &fakeLog{}
	src := &fakeSource{values: []int{100, 700, 499, 500}}
	d := New(Config{Threshold: 500}, src, log)

	var detected int
	for i := 0; i < 4; i++ {
		c, err := d.RunCycle()
		if err != nil {
			t.Fatalf("cycle %d: %v", i, err)
		}
		if c.Detected {
			detected++
		}
	}

	if detected != 2 {
		t.Errorf("expected 2 detections, got %d", detected)
	}
	if len(log.records) != 2 {
		t.Fatalf("expected 2 logged records, got %d", len(log.records))
	}
	if log.records[0].Value != 700 || log.records[1].Value != 500 {
		t.Errorf("logged values: got [%d %d], want [700 500]", log.records[0].Value, log.records[1].Value)
	}
}

func TestRunCycleSurfacesStorageError(t *testing.T) {
	boom := errors.New("disk full")
	d := New(Config{Threshold: 0}, &fakeSource{values: []int{999}}, &fakeLog{err: boom})

	c, err := d.RunCycle()
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped storage error, got %v", err)
	}
	if !c.Detected {
		t.Error("cycle should still report the detection")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	log := &fakeLog{}
	d := New(Config{Threshold: 600, Delay: time.Millisecond}, &fakeSource{values: []int{650}}, log)

	ctx, cancel := context.WithCancel(context.Background())
	cycles := make(chan Cycle, 64)

	done := make(chan struct{})
	go func() {
		d.Run(ctx, func(c Cycle, err error) {
			if err != nil {
				t.Errorf("unexpected cycle error: %v", err)
			}
			select {
			case cycles <- c:
			default:
			}
		})
		close(done)
	}()

	// Let a few cycles happen, then cancel and expect a clean return.
	<-cycles
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancellation")
	}

	if len(log.records) == 0 {
		t.Error("expected at least one logged detection before cancel")
	}
}
