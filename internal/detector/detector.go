// Package detector holds the detection threshold, classifies sensor
// readings against it, and drives the monitoring loop that persists
// positive detections.
package detector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/luki/metaldetect/internal/store"
)

// Threshold bounds, matching the sensor's reading range.
const (
	MinThreshold = 0
	MaxThreshold = 1023
)

// Defaults applied when the config leaves a field unset or invalid.
const (
	DefaultThreshold = 500
	DefaultDelay     = 500 * time.Millisecond
)

// ErrThresholdRange is returned by SetThreshold for values outside
// [MinThreshold, MaxThreshold]. The threshold is left unchanged.
var ErrThresholdRange = errors.New("threshold must be between 0 and 1023")

// ErrDelayRange is returned by SetDelay for non-positive intervals.
var ErrDelayRange = errors.New("delay must be positive")

// Source produces one sensor reading per call.
type Source interface {
	Next() int
}

// Appender persists detection records.
type Appender interface {
	Append(rec store.Record) error
}

// Config carries the tunable detector state. It replaces the ambient
// globals of an earlier design so tests can pass explicit values.
type Config struct {
	Threshold int
	Delay     time.Duration
}

// Cycle is the outcome of one monitoring cycle.
type Cycle struct {
	Time     time.Time
	Value    int
	Detected bool
}

// Detector classifies readings from a Source and logs detections to an
// Appender. Threshold and delay are mutated only between monitoring
// sessions; Run never touches them concurrently.
type Detector struct {
	threshold int
	delay     time.Duration
	source    Source
	log       Appender
	now       func() time.Time
}

// New creates a Detector. Out-of-range config values fall back to the
// defaults rather than failing construction.
func New(cfg Config, src Source, log Appender) *Detector {
	d := &Detector{
		threshold: cfg.Threshold,
		delay:     cfg.Delay,
		source:    src,
		log:       log,
		now:       time.Now,
	}
	if d.threshold < MinThreshold || d.threshold > MaxThreshold {
		d.threshold = DefaultThreshold
	}
	if d.delay <= 0 {
		d.delay = DefaultDelay
	}
	return d
}

// Threshold returns the current detection threshold.
func (d *Detector) Threshold() int {
	return d.threshold
}

// Delay returns the interval between monitoring cycles.
func (d *Detector) Delay() time.Duration {
	return d.delay
}

// IsDetected reports whether a reading counts as a detection.
func (d *Detector) IsDetected(value int) bool {
	return value >= d.threshold
}

// SetThreshold updates the threshold. Values outside [0, 1023] are
// rejected with ErrThresholdRange and leave the state unchanged.
func (d *Detector) SetThreshold(value int) error {
	if value < MinThreshold || value > MaxThreshold {
		return ErrThresholdRange
	}
	d.threshold = value
	return nil
}

// SetDelay updates the cycle interval. Non-positive values are rejected
// with ErrDelayRange and leave the state unchanged.
func (d *Detector) SetDelay(delay time.Duration) error {
	if delay <= 0 {
		return ErrDelayRange
	}
	d.delay = delay
	return nil
}

// RunCycle obtains one reading, classifies it, and on detection appends
// a record with the current timestamp. A storage failure is returned
// for this cycle only; the write is not retried.
func (d *Detector) RunCycle() (Cycle, error) {
	c := Cycle{Time: d.now(), Value: d.source.Next()}
	c.Detected = d.IsDetected(c.Value)
	if !c.Detected {
		return c, nil
	}

	if err := d.log.Append(store.Record{Time: c.Time, Value: c.Value}); err != nil {
		return c, fmt.Errorf("log detection: %w", err)
	}
	return c, nil
}

// Run repeats RunCycle with the configured delay between cycles until
// ctx is cancelled. Cancellation is observed at the delay boundary and
// is a normal return, not an error. onCycle, if non-nil, observes every
// cycle and any storage error on the loop's goroutine.
func (d *Detector) Run(ctx context.Context, onCycle func(Cycle, error)) {
	ticker := time.NewTicker(d.delay)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c, err := d.RunCycle()
			if onCycle != nil {
				onCycle(c, err)
			}
		}
	}
}
