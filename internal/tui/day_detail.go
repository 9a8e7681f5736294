package tui

import (
	"fmt"
	"time"

	"readiness/internal/analysis"
	"readiness/internal/service"
	"readiness/internal/store"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// DayDetailModel breaks one day's readiness down into its inputs
type DayDetailModel struct {
	queryService *service.QueryService
	units        Units
	day          string
	snapshot     *service.ScoreSnapshot
	workouts     []store.WorkoutRecord
	viewport     viewport.Model
	loading      bool
	err          error
	ready        bool
}

// NewDayDetailModel creates a detail model for day (YYYY-MM-DD)
func NewDayDetailModel(qs *service.QueryService, units Units, day string, width, height int) DayDetailModel {
	m := DayDetailModel{
		queryService: qs,
		units:        units,
		day:          day,
		loading:      true,
	}

	if width > 0 && height > 0 {
		m.viewport = viewport.New(width, height-6) // header, nav and footer
		m.ready = true
	}

	return m
}

// Init initializes the detail screen
func (m DayDetailModel) Init() tea.Cmd {
	return m.loadDetail
}

type dayDetailLoadedMsg struct {
	snapshot *service.ScoreSnapshot
	workouts []store.WorkoutRecord
	err      error
}

func (m DayDetailModel) loadDetail() tea.Msg {
	snap, err := m.queryService.Day(m.day)
	if err != nil {
		return dayDetailLoadedMsg{err: err}
	}
	workouts, err := m.queryService.Workouts(m.day, m.day)
	if err != nil {
		return dayDetailLoadedMsg{err: err}
	}
	return dayDetailLoadedMsg{snapshot: snap, workouts: workouts}
}

// Update handles messages
func (m DayDetailModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dayDetailLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.snapshot = msg.snapshot
		m.workouts = msg.workouts
		if m.ready {
			m.viewport.SetContent(m.renderContent())
		}

	case tea.WindowSizeMsg:
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-6)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 6
		}
		if m.snapshot != nil {
			m.viewport.SetContent(m.renderContent())
		}

	case tea.KeyMsg:
		if msg.String() == "r" {
			m.loading = true
			return m, m.loadDetail
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the detail screen
func (m DayDetailModel) View() string {
	if m.loading {
		return "\n  Loading " + m.day + "..."
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	footer := statusStyle.Render("  esc: back  j/k or arrows: scroll  r: refresh")
	return lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), footer)
}

func (m DayDetailModel) renderContent() string {
	if m.snapshot == nil {
		return "No data"
	}

	sections := []string{
		m.renderHeader(),
		m.renderLoad(),
		m.renderPhysiology(),
		m.renderSleep(),
	}
	if len(m.workouts) > 0 {
		sections = append(sections, m.renderWorkouts())
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m DayDetailModel) renderHeader() string {
	s := m.snapshot
	date := s.Day
	if t, err := time.Parse(analysis.DayLayout, s.Day); err == nil {
		date = t.Format("Monday, January 2, 2006")
	}

	title := cardTitleStyle.Render(date)
	score := lipgloss.JoinHorizontal(lipgloss.Left, RenderScore(s.Score), " ", metricValueStyle.Render(s.Label))
	return lipgloss.JoinVertical(lipgloss.Left, "", title, score, RenderGauge(s.Score, 40), "")
}

func sectionTitle(title string) string {
	return lipgloss.NewStyle().Bold(true).Foreground(secondaryColor).Render(title)
}

func (m DayDetailModel) renderLoad() string {
	s := m.snapshot
	lines := []string{
		sectionTitle("Training Load"),
		fmt.Sprintf("  Stress (TSS):       %.0f from %d workouts", s.TotalTSS, s.WorkoutCount),
		fmt.Sprintf("  Fitness (chronic):  %.1f", s.Chronic),
		fmt.Sprintf("  Fatigue (acute):    %.1f", s.Acute),
		fmt.Sprintf("  Form (balance):     %+.1f  %s", s.Balance, s.Form),
		fmt.Sprintf("  Ramp rate:          %+.1f  %s", s.RampRate, s.RampBand),
		"",
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m DayDetailModel) renderPhysiology() string {
	s := m.snapshot
	lines := []string{
		sectionTitle("Physiology"),
		fmt.Sprintf("  HRV:                %s ms  (%+.1f)", formatOptional(s.AvgHRV, "%.0f"), s.HRVAdjustment),
		fmt.Sprintf("  Resting HR:         %s bpm  (%+.1f)", formatOptional(s.AvgRHR, "%.0f"), s.RHRAdjustment),
		fmt.Sprintf("  Score adjustment:   %+.1f", s.Adjustment),
		fmt.Sprintf("  Illness:            %s", s.Illness),
		"",
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m DayDetailModel) renderSleep() string {
	s := m.snapshot
	if s.SleepDuration == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, sectionTitle("Sleep"), "  No sleep recorded", "")
	}
	lines := []string{
		sectionTitle("Sleep"),
		fmt.Sprintf("  Asleep:             %s", formatDuration(s.SleepDuration)),
		fmt.Sprintf("  Deep:               %s", formatDuration(s.DeepSleep)),
		fmt.Sprintf("  Sleep score:        %s", formatOptional(s.SleepScore, "%.0f")),
		"",
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m DayDetailModel) renderWorkouts() string {
	lines := []string{sectionTitle("Workouts")}
	lines = append(lines, tableHeaderStyle.Render(fmt.Sprintf("%-6s  %-9s  %-14s  %8s  %9s  %5s  %-17s",
		"Start", "Source", "Sport", "Time", "Distance", "TSS", "Method")))

	for _, w := range m.workouts {
		row := fmt.Sprintf("%-6s  %-9s  %-14s  %8s  %9s  %5.0f  %-17s",
			w.StartTime.Format("15:04"),
			w.Origin,
			truncateName(w.Sport, 14),
			formatDuration(w.Duration),
			m.units.FormatDistance(w.DistanceMeters),
			w.TSS,
			w.TSSMethod,
		)
		if w.Suppressed {
			lines = append(lines, lipgloss.NewStyle().Foreground(mutedColor).Strikethrough(true).Padding(0, 1).Render(row))
		} else {
			lines = append(lines, tableRowStyle.Render(row))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
