// Package chart provides sparkline rendering for sensor readings with
// threshold-colored blocks, minute tick marks, and timeline labels.
package chart

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/luki/metaldetect/internal/history"
)

var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// ValueColor returns the appropriate color for a reading relative to
// the detection threshold.
func ValueColor(v, threshold int) lipgloss.Color {
	switch {
	case v >= threshold:
		return lipgloss.Color("196") // red: detection
	case float64(v) >= float64(threshold)*0.85:
		return lipgloss.Color("220") // yellow: close to the threshold
	default:
		return lipgloss.Color("78") // soft green
	}
}

// RenderValue renders a reading as a colored 4-digit field.
func RenderValue(v, threshold int) string {
	style := lipgloss.NewStyle().Foreground(ValueColor(v, threshold))
	if v >= threshold {
		style = style.Bold(true)
	}
	return style.Render(fmt.Sprintf("%4d", v))
}

// RenderSparklinePoints renders a sparkline with minute tick marks. A
// subtle pipe is drawn at each minute boundary; blocks are colored by
// their value's relation to the threshold.
func RenderSparklinePoints(points []history.Point, width, rangeMin, rangeMax, threshold int) string {
	if width <= 0 {
		return ""
	}

	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("236"))
	if len(points) == 0 {
		return dim.Render(strings.Repeat("╌", width))
	}

	if len(points) > width {
		points = points[len(points)-width:]
	}

	padLen := width - len(points)
	span := rangeMax - rangeMin
	if span <= 0 {
		span = 1
	}

	var sb strings.Builder

	for i := 0; i < padLen; i++ {
		sb.WriteString(dim.Render("╌"))
	}

	tickStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("239"))

	for i, p := range points {
		norm := float64(p.Value-rangeMin) / float64(span)
		if norm < 0 {
			norm = 0
		}
		if norm > 1 {
			norm = 1
		}

		idx := int(norm * 7)
		if idx > 7 {
			idx = 7
		}

		if isMinuteTick(points, i) {
			sb.WriteString(tickStyle.Render("│"))
			continue
		}

		style := lipgloss.NewStyle().Foreground(ValueColor(p.Value, threshold))
		if p.Value >= threshold {
			style = style.Bold(true)
		}
		sb.WriteString(style.Render(string(sparkBlocks[idx])))
	}

	return sb.String()
}

// RenderTimeline renders the time labels under the sparkline, showing
// HH:MM at each minute tick position.
func RenderTimeline(points []history.Point, width int) string {
	if len(points) == 0 || width <= 0 {
		return ""
	}

	if len(points) > width {
		points = points[len(points)-width:]
	}

	padLen := width - len(points)

	line := make([]rune, width)
	for i := range line {
		line[i] = ' '
	}

	for i, p := range points {
		if !isMinuteTick(points, i) {
			continue
		}
		pos := padLen + i
		label := p.Time.Format("15:04")
		if pos+len(label) > width {
			continue
		}
		for j, r := range label {
			line[pos+j] = r
		}
	}

	tickStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("239"))
	return tickStyle.Render(string(line))
}

func isMinuteTick(points []history.Point, i int) bool {
	p := points[i]
	if p.Time.IsZero() {
		return false
	}
	if p.Time.Second() == 0 {
		return true
	}
	if i > 0 && !points[i-1].Time.IsZero() {
		return p.Time.Minute() != points[i-1].Time.Minute()
	}
	return false
}
