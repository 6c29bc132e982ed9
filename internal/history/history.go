// Package history provides a ring-buffer based reading history with
// min/peak/avg statistics for the live monitor chart.
package history

import (
	"math"
	"time"
)

// Point is a single data point in the reading history.
type Point struct {
	Value int
	Time  time.Time
}

// Buffer stores a ring buffer of sensor readings. There is a single
// sensor, so one buffer per monitoring session suffices.
type Buffer struct {
	Points []Point
	Max    int // capacity
	Min    int
	Peak   int
}

// NewBuffer creates a new history ring buffer with the given capacity.
func NewBuffer(capacity int) *Buffer {
	return &Buffer{
		Points: make([]Point, 0, capacity),
		Max:    capacity,
		Min:    math.MaxInt,
		Peak:   math.MinInt,
	}
}

// Push adds a new reading to the history.
func (b *Buffer) Push(value int, t time.Time) {
	p := Point{Value: value, Time: t}
	if len(b.Points) >= b.Max {
		copy(b.Points, b.Points[1:])
		b.Points[len(b.Points)-1] = p
	} else {
		b.Points = append(b.Points, p)
	}

	if value < b.Min {
		b.Min = value
	}
	if value > b.Peak {
		b.Peak = value
	}
}

// Len returns the number of stored points.
func (b *Buffer) Len() int {
	return len(b.Points)
}

// Last returns the most recent reading, or 0 if empty.
func (b *Buffer) Last() int {
	if len(b.Points) == 0 {
		return 0
	}
	return b.Points[len(b.Points)-1].Value
}

// Avg returns the average reading across all stored points.
func (b *Buffer) Avg() float64 {
	if len(b.Points) == 0 {
		return 0
	}
	sum := 0
	for _, p := range b.Points {
		sum += p.Value
	}
	return float64(sum) / float64(len(b.Points))
}

// LastNPoints returns the last n points (with timestamps), for chart
// rendering.
func (b *Buffer) LastNPoints(n int) []Point {
	if n <= 0 || len(b.Points) == 0 {
		return nil
	}
	start := len(b.Points) - n
	if start < 0 {
		start = 0
	}
	out := make([]Point, len(b.Points[start:]))
	copy(out, b.Points[start:])
	return out
}
