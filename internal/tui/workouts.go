package tui

import (
	"fmt"
	"time"

	"readiness/internal/analysis"
	"readiness/internal/service"
	"readiness/internal/store"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// workoutWindowDays is how far back the workout list reaches
const workoutWindowDays = 42

// WorkoutsModel lists recent workouts, newest first
type WorkoutsModel struct {
	queryService *service.QueryService
	units        Units
	workouts     []store.WorkoutRecord
	cursor       int
	offset       int
	pageSize     int
	loading      bool
	err          error
}

// NewWorkoutsModel creates a new workouts model
func NewWorkoutsModel(qs *service.QueryService, units Units) WorkoutsModel {
	return WorkoutsModel{
		queryService: qs,
		units:        units,
		pageSize:     15,
		loading:      true,
	}
}

// Init initializes the workouts screen
func (m WorkoutsModel) Init() tea.Cmd {
	return m.load
}

type workoutsLoadedMsg struct {
	workouts []store.WorkoutRecord
	err      error
}

func (m WorkoutsModel) load() tea.Msg {
	latest, err := m.queryService.RecentScores(1)
	if err != nil {
		return workoutsLoadedMsg{err: err}
	}
	if len(latest) == 0 {
		return workoutsLoadedMsg{}
	}

	to, err := time.Parse(analysis.DayLayout, latest[0].Day)
	if err != nil {
		return workoutsLoadedMsg{err: err}
	}
	from := analysis.DayKey(to.AddDate(0, 0, -workoutWindowDays))
	workouts, err := m.queryService.Workouts(from, latest[0].Day)
	if err != nil {
		return workoutsLoadedMsg{err: err}
	}

	// Newest first
	for i, j := 0, len(workouts)-1; i < j; i, j = i+1, j-1 {
		workouts[i], workouts[j] = workouts[j], workouts[i]
	}
	return workoutsLoadedMsg{workouts: workouts}
}

// Update handles messages
func (m WorkoutsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case workoutsLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.workouts = msg.workouts
		m.cursor, m.offset = 0, 0

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.workouts)-1 {
				m.cursor++
			}
		case "pgup":
			m.cursor = max(0, m.cursor-m.pageSize)
		case "pgdown":
			m.cursor = max(0, min(len(m.workouts)-1, m.cursor+m.pageSize))
		case "r":
			m.loading = true
			return m, m.load
		case "enter":
			if m.cursor < len(m.workouts) {
				day := m.workouts[m.cursor].Day
				return m, func() tea.Msg { return OpenDayMsg{Day: day} }
			}
		}
		// Keep the cursor on the visible page
		if m.cursor < m.offset {
			m.offset = m.cursor
		} else if m.cursor >= m.offset+m.pageSize {
			m.offset = m.cursor - m.pageSize + 1
		}
	}
	return m, nil
}

// View renders the workout list
func (m WorkoutsModel) View() string {
	if m.loading {
		return "\n  Loading workouts..."
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	if len(m.workouts) == 0 {
		return "\n  No workouts found. Press 's' to run an update."
	}

	end := min(len(m.workouts), m.offset+m.pageSize)
	title := cardTitleStyle.Render(fmt.Sprintf("Workouts (%d-%d of %d, last %d days)",
		m.offset+1, end, len(m.workouts), workoutWindowDays))
	sections := []string{title}

	sections = append(sections, tableHeaderStyle.Render(fmt.Sprintf("   %-10s  %-9s  %-14s  %8s  %9s  %5s  %-17s",
		"Date", "Source", "Sport", "Time", "Distance", "TSS", "Method")))

	for i := m.offset; i < end; i++ {
		w := m.workouts[i]

		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}

		method := w.TSSMethod
		if w.Suppressed {
			method = "duplicate"
		}
		row := fmt.Sprintf("%s%-10s  %-9s  %-14s  %8s  %9s  %5.0f  %-17s",
			cursor,
			w.StartTime.Format("Jan 02"),
			w.Origin,
			truncateName(w.Sport, 14),
			formatDuration(w.Duration),
			m.units.FormatDistance(w.DistanceMeters),
			w.TSS,
			method,
		)

		if i == m.cursor {
			sections = append(sections, tableSelectedStyle.Render(row))
		} else {
			sections = append(sections, tableRowStyle.Render(row))
		}
	}

	sections = append(sections, statusStyle.Render("\n  enter: day breakdown  j/k: navigate  pgup/pgdn: page  r: refresh"))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
