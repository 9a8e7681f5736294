// Package tui is the terminal dashboard for readiness scores.
package tui

import (
	"context"

	"readiness/internal/service"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Screen identifiers
type Screen int

const (
	ScreenDashboard Screen = iota
	ScreenWorkouts
	ScreenDayDetail
	ScreenSync
	ScreenHelp
)

// Runner runs readiness passes
type Runner interface {
	RecomputeAll(ctx context.Context) (*service.PassResult, error)
	IncrementalUpdate(ctx context.Context) (*service.PassResult, error)
}

// App is the root Bubble Tea model
type App struct {
	screen     Screen
	prevScreen Screen

	dashboard  DashboardModel
	workouts   WorkoutsModel
	dayDetail  DayDetailModel
	syncScreen SyncModel

	queryService *service.QueryService
	units        Units

	width  int
	height int
}

// NewApp creates the app. feed may be nil when the runner reports no progress.
func NewApp(qs *service.QueryService, runner Runner, feed *ProgressFeed, units Units) *App {
	return &App{
		screen:       ScreenDashboard,
		queryService: qs,
		units:        units,
		dashboard:    NewDashboardModel(qs, units),
		workouts:     NewWorkoutsModel(qs, units),
		syncScreen:   NewSyncModel(runner, feed),
	}
}

// Init initializes the app
func (a *App) Init() tea.Cmd {
	return a.dashboard.Init()
}

// Update handles messages
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Navigation is locked while a pass runs
		if !a.syncScreen.running {
			switch msg.String() {
			case "q", "ctrl+c":
				return a, tea.Quit
			case "1":
				a.screen = ScreenDashboard
				a.dashboard = NewDashboardModel(a.queryService, a.units)
				return a, a.dashboard.Init()
			case "2":
				a.screen = ScreenWorkouts
				return a, a.workouts.Init()
			case "3", "s":
				if a.screen != ScreenSync {
					a.screen = ScreenSync
					return a, a.syncScreen.Init()
				}
			case "?":
				a.prevScreen = a.screen
				a.screen = ScreenHelp
				return a, nil
			case "esc":
				switch a.screen {
				case ScreenHelp:
					a.screen = a.prevScreen
					return a, nil
				case ScreenDayDetail:
					a.screen = ScreenWorkouts
					return a, nil
				}
			}
		} else if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

	case OpenDayMsg:
		a.screen = ScreenDayDetail
		a.dayDetail = NewDayDetailModel(a.queryService, a.units, msg.Day, a.width, a.height)
		return a, a.dayDetail.Init()

	case PassCompleteMsg:
		// Scores changed; reload what the screens show
		a.dashboard = NewDashboardModel(a.queryService, a.units)
		a.workouts = NewWorkoutsModel(a.queryService, a.units)
		return a, a.dashboard.Init()
	}

	var cmd tea.Cmd
	switch a.screen {
	case ScreenDashboard:
		var m tea.Model
		m, cmd = a.dashboard.Update(msg)
		a.dashboard = m.(DashboardModel)
	case ScreenWorkouts:
		var m tea.Model
		m, cmd = a.workouts.Update(msg)
		a.workouts = m.(WorkoutsModel)
	case ScreenDayDetail:
		var m tea.Model
		m, cmd = a.dayDetail.Update(msg)
		a.dayDetail = m.(DayDetailModel)
	case ScreenSync:
		var m tea.Model
		m, cmd = a.syncScreen.Update(msg)
		a.syncScreen = m.(SyncModel)
	}

	return a, cmd
}

// View renders the app
func (a *App) View() string {
	var content string
	switch a.screen {
	case ScreenDashboard:
		content = a.dashboard.View()
	case ScreenWorkouts:
		content = a.workouts.View()
	case ScreenDayDetail:
		content = a.dayDetail.View()
	case ScreenSync:
		content = a.syncScreen.View()
	case ScreenHelp:
		content = renderHelp()
	}

	return lipgloss.JoinVertical(lipgloss.Left, headerStyle.Render("Training Readiness"), a.renderNav(), content)
}

func (a *App) renderNav() string {
	items := []struct {
		key    string
		label  string
		screen Screen
	}{
		{"1", "Dashboard", ScreenDashboard},
		{"2", "Workouts", ScreenWorkouts},
		{"3", "Update", ScreenSync},
		{"?", "Help", ScreenHelp},
	}

	var nav string
	for i, item := range items {
		if i > 0 {
			nav += "  "
		}

		label := "[" + item.key + "] " + item.label
		if a.screen == item.screen {
			nav += navActiveStyle.Render(label)
		} else {
			nav += navInactiveStyle.Render(label)
		}
	}

	nav += "  " + navInactiveStyle.Render("[q] Quit")

	return navStyle.Render(nav)
}

// OpenDayMsg opens the detail screen for a day (YYYY-MM-DD)
type OpenDayMsg struct {
	Day string
}

// PassCompleteMsg is sent when a pass finishes successfully
type PassCompleteMsg struct{}
