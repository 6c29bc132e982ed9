// Package monitor implements the live detection TUI using BubbleTea,
// with a real-time sparkline of readings and threshold-colored status.
package monitor

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/luki/metaldetect/internal/chart"
	"github.com/luki/metaldetect/internal/detector"
	"github.com/luki/metaldetect/internal/history"
)

const historySize = 600

// ── Messages ─────────────────────────────────────────────────────────

type tickMsg time.Time

type cycleMsg struct {
	cycle detector.Cycle
	err   error
}

// ── Model ────────────────────────────────────────────────────────────

// Model is the BubbleTea model for the live monitor.
type Model struct {
	det     *detector.Detector
	logPath string

	history    *history.Buffer
	last       detector.Cycle
	haveCycle  bool
	detections int
	err        error

	width     int
	height    int
	startTime time.Time
	paused    bool
}

// New creates the initial model for a monitoring session. The detector
// carries the threshold and delay picked before the session started.
func New(det *detector.Detector, logPath string) Model {
	return Model{
		det:       det,
		logPath:   logPath,
		history:   history.NewBuffer(historySize),
		startTime: time.Now(),
	}
}

// Run launches the live monitor TUI and blocks until the user quits
// back to the menu.
func Run(det *detector.Detector, logPath string) error {
	p := tea.NewProgram(New(det, logPath), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// ── Commands ─────────────────────────────────────────────────────────

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.det.Delay(), func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) runCycle() tea.Msg {
	c, err := m.det.RunCycle()
	return cycleMsg{cycle: c, err: err}
}

// ── Init / Update ────────────────────────────────────────────────────

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.runCycle, m.tickCmd())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case " ", "p":
			m.paused = !m.paused
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		if m.paused {
			return m, m.tickCmd()
		}
		return m, tea.Batch(m.runCycle, m.tickCmd())

	case cycleMsg:
		m.last = msg.cycle
		m.haveCycle = true
		m.history.Push(msg.cycle.Value, msg.cycle.Time)
		if msg.cycle.Detected {
			m.detections++
		}
		// A storage failure stays visible; the loop keeps cycling and
		// the failed write is not retried.
		if msg.err != nil {
			m.err = msg.err
		}
	}

	return m, nil
}

// ── Color palette ────────────────────────────────────────────────────

var (
	colorTitleBg  = lipgloss.Color("17")
	colorTitleFg  = lipgloss.Color("51")
	colorBorder   = lipgloss.Color("62")
	colorLabel    = lipgloss.Color("252")
	colorDim      = lipgloss.Color("240")
	colorFooterBg = lipgloss.Color("235")
	colorSafe     = lipgloss.Color("78")
	colorWarn     = lipgloss.Color("220")
	colorCrit     = lipgloss.Color("196")
	colorPaused   = lipgloss.Color("196")
)

// ── View ─────────────────────────────────────────────────────────────

func (m Model) View() string {
	if m.width == 0 {
		return "  Initializing..."
	}

	contentWidth := m.width - 2
	if contentWidth < 40 {
		contentWidth = 40
	}

	var sections []string

	sections = append(sections, m.renderTitleBar(contentWidth))

	if m.err != nil {
		errBox := lipgloss.NewStyle().
			Foreground(colorCrit).
			Bold(true).
			Width(contentWidth).
			Padding(0, 1).
			Render(fmt.Sprintf(" WRITE ERROR: %v", m.err))
		sections = append(sections, errBox)
	}

	if !m.haveCycle {
		waiting := lipgloss.NewStyle().
			Foreground(colorDim).
			Width(contentWidth).
			Align(lipgloss.Center).
			Padding(2, 0).
			Render("Waiting for the first reading...")
		sections = append(sections, waiting)
	} else {
		sections = append(sections, m.renderPanel(contentWidth))
	}

	sections = append(sections, m.renderFooter(contentWidth))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderTitleBar(width int) string {
	logo := lipgloss.NewStyle().
		Bold(true).
		Foreground(colorTitleFg).
		Render("METAL DETECTOR")

	var statusParts []string

	uptime := lipgloss.NewStyle().
		Foreground(colorDim).
		Render(fmt.Sprintf("up %s", fmtDuration(time.Since(m.startTime))))
	statusParts = append(statusParts, uptime)

	threshold := lipgloss.NewStyle().
		Foreground(colorLabel).
		Render(fmt.Sprintf("threshold %d", m.det.Threshold()))
	statusParts = append(statusParts, threshold)

	if m.haveCycle {
		ts := lipgloss.NewStyle().
			Foreground(colorDim).
			Render(m.last.Time.Format("15:04:05"))
		statusParts = append(statusParts, ts)
	}

	if m.paused {
		p := lipgloss.NewStyle().
			Foreground(colorPaused).
			Bold(true).
			Render("PAUSED")
		statusParts = append(statusParts, p)
	}

	rec := lipgloss.NewStyle().
		Foreground(lipgloss.Color("196")).
		Render("REC") +
		lipgloss.NewStyle().
			Foreground(colorDim).
			Render(" "+m.logPath)
	statusParts = append(statusParts, rec)

	sep := lipgloss.NewStyle().Foreground(colorDim).Render(" │ ")
	right := strings.Join(statusParts, sep)

	gap := width - lipgloss.Width(logo) - lipgloss.Width(right) - 4
	if gap < 1 {
		gap = 1
	}
	filler := strings.Repeat(" ", gap)

	return lipgloss.NewStyle().
		Background(colorTitleBg).
		Width(width).
		Padding(0, 1).
		Render(logo + filler + right)
}

func (m Model) renderPanel(totalWidth int) string {
	innerWidth := totalWidth - 4
	if innerWidth < 30 {
		innerWidth = 30
	}

	chartWidth := innerWidth - 30
	if chartWidth < 15 {
		chartWidth = 15
	}
	if chartWidth > 140 {
		chartWidth = 140
	}

	threshold := m.det.Threshold()

	dimS := lipgloss.NewStyle().Foreground(colorDim)
	valS := lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	frameL := lipgloss.NewStyle().Foreground(colorBorder).Render("▕")
	frameR := lipgloss.NewStyle().Foreground(colorBorder).Render("▏")

	var rows []string

	status := lipgloss.NewStyle().
		Foreground(colorSafe).
		Render("Safe")
	if m.last.Detected {
		status = lipgloss.NewStyle().
			Foreground(colorCrit).
			Bold(true).
			Render("METAL DETECTED ⚠")
	}
	rows = append(rows,
		dimS.Render("Sensor Value ")+
			chart.RenderValue(m.last.Value, threshold)+
			dimS.Render("  Status ")+status+
			dimS.Render("  Detections ")+valS.Render(fmt.Sprintf("%d", m.detections)))

	// Keep the threshold inside the visible range so its crossings are
	// readable on the sparkline.
	rangeMin := 0
	rangeMax := m.history.Peak + 50
	if threshold+50 > rangeMax {
		rangeMax = threshold + 50
	}

	pts := m.history.LastNPoints(chartWidth)
	spark := chart.RenderSparklinePoints(pts, chartWidth, rangeMin, rangeMax, threshold)
	rows = append(rows, frameL+spark+frameR+
		dimS.Render(" avg")+valS.Render(fmt.Sprintf("%6.1f", m.history.Avg()))+
		dimS.Render(" lo")+valS.Render(fmt.Sprintf("%5d", m.history.Min))+
		dimS.Render(" pk")+valS.Render(fmt.Sprintf("%5d", m.history.Peak))+
		dimS.Render(" th")+lipgloss.NewStyle().Foreground(colorWarn).Render(fmt.Sprintf("%5d", threshold)))

	timeline := chart.RenderTimeline(pts, chartWidth)
	if strings.TrimSpace(timeline) != "" {
		rows = append(rows, " "+timeline)
	}

	panelContent := lipgloss.JoinVertical(lipgloss.Left, rows...)
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1).
		Width(totalWidth).
		Render(panelContent)
}

func (m Model) renderFooter(width int) string {
	safeS := lipgloss.NewStyle().Foreground(colorSafe).Render("██")
	warnS := lipgloss.NewStyle().Foreground(colorWarn).Render("██")
	critS := lipgloss.NewStyle().Foreground(colorCrit).Render("██")
	tickS := lipgloss.NewStyle().Foreground(lipgloss.Color("239")).Render("│")

	dimS := lipgloss.NewStyle().Foreground(colorDim)
	legend := safeS + dimS.Render(" safe ") +
		warnS + dimS.Render(" near ") +
		critS + dimS.Render(" detected ") +
		tickS + dimS.Render(" 1min")

	keys := dimS.Render("q") + lipgloss.NewStyle().Foreground(colorLabel).Render(":menu") +
		dimS.Render("  p") + lipgloss.NewStyle().Foreground(colorLabel).Render(":pause")

	gap := width - lipgloss.Width(legend) - lipgloss.Width(keys) - 4
	if gap < 1 {
		gap = 1
	}
	filler := strings.Repeat(" ", gap)

	return lipgloss.NewStyle().
		Background(colorFooterBg).
		Width(width).
		Padding(0, 1).
		Render(legend + filler + keys)
}

func fmtDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}
