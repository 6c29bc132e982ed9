// Package viewer implements the detection-log browser TUI: a scrollable
// table of the most recent detections read back from the CSV store.
package viewer

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/luki/metaldetect/internal/chart"
	"github.com/luki/metaldetect/internal/store"
)

// Run launches the detection-log browser and blocks until the user
// quits back to the menu. An absent log is shown as an empty list, not
// an error.
func Run(st *store.CSVStore, limit, threshold int) error {
	p := tea.NewProgram(initModel(st, limit, threshold), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// ── Color palette ────────────────────────────────────────────────────

var (
	colorTitleBg  = lipgloss.Color("17")
	colorTitleFg  = lipgloss.Color("51")
	colorBorder   = lipgloss.Color("62")
	colorLabel    = lipgloss.Color("252")
	colorDim      = lipgloss.Color("240")
	colorFooterBg = lipgloss.Color("235")
	colorCrit     = lipgloss.Color("196")
)

// ── Model ────────────────────────────────────────────────────────────

type model struct {
	st        *store.CSVStore
	limit     int
	threshold int

	records []store.Record
	err     error
	scroll  int
	width   int
	height  int
}

func initModel(st *store.CSVStore, limit, threshold int) model {
	m := model{st: st, limit: limit, threshold: threshold}
	m.load()
	return m
}

func (m *model) load() {
	records, err := m.st.Recent(m.limit)
	m.records = records
	m.err = err
	if m.scroll > len(records) {
		m.scroll = 0
	}
}

// ── Init / Update ────────────────────────────────────────────────────

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.scroll > 0 {
				m.scroll--
			}
		case "down", "j":
			m.scroll++
		case "home":
			m.scroll = 0
		case "r":
			m.load()
		case "+":
			m.limit *= 2
			m.load()
		case "-":
			if m.limit > 1 {
				m.limit /= 2
				m.load()
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}

	return m, nil
}

// ── View ─────────────────────────────────────────────────────────────

func (m model) View() string {
	if m.width == 0 {
		return "  Initializing..."
	}

	contentWidth := m.width - 2
	if contentWidth < 40 {
		contentWidth = 40
	}

	var sections []string

	sections = append(sections, m.renderTitleBar(contentWidth))

	switch {
	case m.err != nil:
		errBox := lipgloss.NewStyle().
			Foreground(colorCrit).
			Bold(true).
			Width(contentWidth).
			Padding(0, 1).
			Render(fmt.Sprintf(" ERROR: %v", m.err))
		sections = append(sections, errBox)

	case len(m.records) == 0:
		empty := lipgloss.NewStyle().
			Foreground(colorDim).
			Width(contentWidth).
			Align(lipgloss.Center).
			Padding(2, 0).
			Render("No detections logged yet.")
		sections = append(sections, empty)

	default:
		sections = append(sections, m.renderTable(contentWidth))
	}

	sections = append(sections, m.renderFooter(contentWidth))

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	lines := strings.Split(content, "\n")
	visibleLines := m.height
	if visibleLines < 5 {
		visibleLines = 5
	}
	maxScroll := len(lines) - visibleLines
	if maxScroll < 0 {
		maxScroll = 0
	}
	if m.scroll > maxScroll {
		m.scroll = maxScroll
	}

	start := m.scroll
	end := start + visibleLines
	if end > len(lines) {
		end = len(lines)
	}

	return strings.Join(lines[start:end], "\n")
}

func (m model) renderTitleBar(width int) string {
	logo := lipgloss.NewStyle().
		Bold(true).
		Foreground(colorTitleFg).
		Render("RECENT DETECTIONS")

	count := lipgloss.NewStyle().
		Foreground(colorDim).
		Render(fmt.Sprintf("%d of last %d │ %s", len(m.records), m.limit, m.st.Path()))

	gap := width - lipgloss.Width(logo) - lipgloss.Width(count) - 4
	if gap < 1 {
		gap = 1
	}
	filler := strings.Repeat(" ", gap)

	return lipgloss.NewStyle().
		Background(colorTitleBg).
		Width(width).
		Padding(0, 1).
		Render(logo + filler + count)
}

func (m model) renderTable(totalWidth int) string {
	dimS := lipgloss.NewStyle().Foreground(colorDim)
	labelS := lipgloss.NewStyle().Foreground(colorLabel)

	var rows []string
	rows = append(rows, dimS.Render(fmt.Sprintf("%-21s %6s  %s", "Timestamp", "Value", "Age")))

	now := time.Now()
	for _, rec := range m.records {
		ts := labelS.Render(fmt.Sprintf("%-21s", rec.Time.Format("2006-01-02 15:04:05")))
		val := chart.RenderValue(rec.Value, m.threshold)
		age := dimS.Render(" " + fmtAge(now.Sub(rec.Time)))
		rows = append(rows, ts+" "+val+" "+age)
	}

	tableContent := lipgloss.JoinVertical(lipgloss.Left, rows...)
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1).
		Width(totalWidth).
		Render(tableContent)
}

func (m model) renderFooter(width int) string {
	dimS := lipgloss.NewStyle().Foreground(colorDim)
	labelS := lipgloss.NewStyle().Foreground(colorLabel)

	keys := dimS.Render("q") + labelS.Render(":menu") +
		dimS.Render("  j/k") + labelS.Render(":scroll") +
		dimS.Render("  r") + labelS.Render(":refresh") +
		dimS.Render("  +/-") + labelS.Render(":more/less")

	gap := width - lipgloss.Width(keys) - 4
	if gap < 1 {
		gap = 1
	}
	filler := strings.Repeat(" ", gap)

	return lipgloss.NewStyle().
		Background(colorFooterBg).
		Width(width).
		Padding(0, 1).
		Render(keys + filler)
}

func fmtAge(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
