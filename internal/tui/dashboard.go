package tui

import (
	"errors"
	"fmt"

	"readiness/internal/analysis"
	"readiness/internal/service"
	"readiness/internal/store"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
)

const (
	chartDays          = 30
	recentWorkoutsDays = 7
)

// dashboardData is everything the dashboard shows
type dashboardData struct {
	today          *service.ScoreSnapshot
	recommendation *analysis.Recommendation
	history        []store.DailyAggregate
	workouts       []store.WorkoutRecord
}

// DashboardModel is the dashboard screen model
type DashboardModel struct {
	queryService *service.QueryService
	units        Units
	data         *dashboardData
	loading      bool
	err          error
}

// NewDashboardModel creates a new dashboard model
func NewDashboardModel(qs *service.QueryService, units Units) DashboardModel {
	return DashboardModel{
		queryService: qs,
		units:        units,
		loading:      true,
	}
}

// Init initializes the dashboard
func (m DashboardModel) Init() tea.Cmd {
	return m.loadData
}

func (m DashboardModel) loadData() tea.Msg {
	today, err := m.queryService.TodayScore()
	if err != nil {
		return dashboardDataMsg{err: err}
	}

	data := &dashboardData{today: today}
	if data.recommendation, err = m.queryService.TodayRecommendation(); err != nil {
		return dashboardDataMsg{err: err}
	}
	if data.history, err = m.queryService.RecentScores(chartDays); err != nil {
		return dashboardDataMsg{err: err}
	}

	from := today.Day
	if n := len(data.history); n > 0 {
		from = data.history[max(0, n-recentWorkoutsDays)].Day
	}
	if data.workouts, err = m.queryService.Workouts(from, today.Day); err != nil {
		return dashboardDataMsg{err: err}
	}
	return dashboardDataMsg{data: data}
}

type dashboardDataMsg struct {
	data *dashboardData
	err  error
}

// Update handles messages
func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		m.loading = false
		m.err = msg.err
		m.data = msg.data
	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			m.loading = true
			return m, m.loadData
		case "enter":
			if m.data != nil {
				day := m.data.today.Day
				return m, func() tea.Msg { return OpenDayMsg{Day: day} }
			}
		}
	}
	return m, nil
}

// View renders the dashboard
func (m DashboardModel) View() string {
	if m.loading {
		return "\n  Loading dashboard..."
	}

	if errors.Is(m.err, service.ErrNoScores) {
		return "\n  No readiness computed yet. Press 's' to run an update."
	}
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	var sections []string

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, m.renderScoreCard(), "  ", m.renderLoadCard())
	sections = append(sections, topRow, m.renderRecommendation())

	if len(m.data.history) > 2 {
		sections = append(sections, m.renderChart())
	}

	sections = append(sections, m.renderRecentWorkouts())
	sections = append(sections, statusStyle.Render("Press 'r' to refresh, 'enter' for today's breakdown, 's' to update"))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m DashboardModel) renderScoreCard() string {
	t := m.data.today
	title := cardTitleStyle.Render("Readiness")
	if t.Stale {
		title = cardTitleStyle.Render("Readiness (" + t.Day + ")")
	}

	lines := []string{
		lipgloss.JoinHorizontal(lipgloss.Left, RenderScore(t.Score), " ", metricValueStyle.Render(t.Label)),
		RenderGauge(t.Score, 30),
		"",
		RenderMetric("Trend", string(t.Trend), trendArrow(t.Trend)),
		RenderMetric("Physiology", fmt.Sprintf("%+.1f", t.Adjustment), ""),
		RenderMetric("Sleep score", formatOptional(t.SleepScore, "%.0f"), ""),
	}
	if t.Illness > analysis.IllnessNone {
		lines = append(lines, "", warningStyle.Render("Illness "+t.Illness.String()))
	}
	if t.Stale {
		lines = append(lines, "", warningStyle.Render("No score for today yet"))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return cardStyle.Width(40).Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func (m DashboardModel) renderLoadCard() string {
	t := m.data.today
	title := cardTitleStyle.Render("Training Load")

	mutedStyle := lipgloss.NewStyle().Foreground(mutedColor)
	lines := []string{
		RenderMetric("Fitness (chronic)", fmt.Sprintf("%.0f", t.Chronic), ""),
		RenderMetric("Fatigue (acute)", fmt.Sprintf("%.0f", t.Acute), ""),
		RenderMetric("Form (balance)", fmt.Sprintf("%+.0f", t.Balance), ""),
		RenderMetric("Ramp rate", fmt.Sprintf("%+.1f", t.RampRate), string(t.RampBand)),
		RenderMetric("Today's TSS", fmt.Sprintf("%.0f", t.TotalTSS), ""),
		"",
		mutedStyle.Render(t.Form),
	}

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return cardStyle.Width(40).Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func (m DashboardModel) renderRecommendation() string {
	r := m.data.recommendation
	title := cardTitleStyle.Render("Today's Training")

	target := "rest"
	if r.MaxTSS > 0 {
		target = fmt.Sprintf("%.0f-%.0f TSS", r.MinTSS, r.MaxTSS)
	}
	lines := []string{
		RenderMetric("Level", r.Level, ""),
		RenderMetric("Target", target, ""),
		"",
		r.Message,
	}
	return cardStyle.Width(82).Render(lipgloss.JoinVertical(lipgloss.Left, title, lipgloss.JoinVertical(lipgloss.Left, lines...)))
}

func (m DashboardModel) renderChart() string {
	title := cardTitleStyle.Render(fmt.Sprintf("Readiness - Last %d Days", len(m.data.history)))

	scores := make([]float64, len(m.data.history))
	for i, a := range m.data.history {
		scores[i] = a.Score
	}
	graph := asciigraph.Plot(scores,
		asciigraph.Height(8),
		asciigraph.Width(60),
		asciigraph.Precision(0),
		asciigraph.LowerBound(0),
		asciigraph.UpperBound(100),
	)

	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, graph))
}

func (m DashboardModel) renderRecentWorkouts() string {
	title := cardTitleStyle.Render("Recent Workouts")

	var active []store.WorkoutRecord
	for _, w := range m.data.workouts {
		if !w.Suppressed {
			active = append(active, w)
		}
	}
	if len(active) == 0 {
		return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, "No workouts this week"))
	}

	header := tableHeaderStyle.Render(fmt.Sprintf("%-10s  %-14s  %8s  %9s  %5s  %-10s",
		"Date", "Sport", "Time", "Distance", "TSS", "Method"))
	rows := []string{header}

	// Newest first
	for i := len(active) - 1; i >= 0 && len(rows) <= 5; i-- {
		w := active[i]
		rows = append(rows, tableRowStyle.Render(fmt.Sprintf("%-10s  %-14s  %8s  %9s  %5.0f  %-10s",
			w.StartTime.Format("Jan 02"),
			truncateName(w.Sport, 14),
			formatDuration(w.Duration),
			m.units.FormatDistance(w.DistanceMeters),
			w.TSS,
			w.TSSMethod,
		)))
	}

	table := lipgloss.JoinVertical(lipgloss.Left, rows...)
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, table))
}
