package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"readiness/internal/service"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ProgressFeed carries engine progress to the update screen. Report never
// blocks; updates are dropped when the screen is behind.
type ProgressFeed struct {
	ch chan service.PassProgress
}

// NewProgressFeed creates a feed to pass as the engine's progress callback
func NewProgressFeed() *ProgressFeed {
	return &ProgressFeed{ch: make(chan service.PassProgress, 16)}
}

// Report publishes p
func (f *ProgressFeed) Report(p service.PassProgress) {
	select {
	case f.ch <- p:
	default:
	}
}

type progressMsg service.PassProgress

func (f *ProgressFeed) wait() tea.Msg {
	return progressMsg(<-f.ch)
}

// SyncModel runs incremental updates and full recomputes
type SyncModel struct {
	runner  Runner
	feed    *ProgressFeed
	running bool
	waiting bool // a feed read is outstanding
	mode    service.PassMode
	phase   string
	result  *service.PassResult
	err     error
	done    bool
}

// NewSyncModel creates a new update screen model
func NewSyncModel(runner Runner, feed *ProgressFeed) SyncModel {
	return SyncModel{runner: runner, feed: feed}
}

// Init initializes the update screen
func (m SyncModel) Init() tea.Cmd {
	return nil
}

type passDoneMsg struct {
	result *service.PassResult
	err    error
}

// Update handles messages
func (m SyncModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case progressMsg:
		m.waiting = false
		if !m.running {
			return m, nil
		}
		m.phase = msg.Phase
		m.waiting = true
		return m, m.feed.wait

	case passDoneMsg:
		m.running = false
		m.done = true
		m.result = msg.result
		m.err = msg.err
		if msg.err != nil {
			return m, nil
		}
		return m, func() tea.Msg { return PassCompleteMsg{} }

	case tea.KeyMsg:
		if m.running || m.runner == nil {
			return m, nil
		}
		switch msg.String() {
		case "enter", "u":
			return m.start(service.ModeIncremental)
		case "f":
			return m.start(service.ModeFull)
		}
	}
	return m, nil
}

func (m SyncModel) start(mode service.PassMode) (SyncModel, tea.Cmd) {
	m.running = true
	m.done = false
	m.mode = mode
	m.phase = ""
	m.err = nil
	m.result = nil

	runner := m.runner
	run := func() tea.Msg {
		ctx := context.Background()
		var res *service.PassResult
		var err error
		if mode == service.ModeFull {
			res, err = runner.RecomputeAll(ctx)
		} else {
			res, err = runner.IncrementalUpdate(ctx)
		}
		return passDoneMsg{result: res, err: err}
	}

	if m.feed == nil || m.waiting {
		return m, run
	}
	m.waiting = true
	return m, tea.Batch(run, m.feed.wait)
}

// View renders the update screen
func (m SyncModel) View() string {
	sections := []string{cardTitleStyle.Render("Update Readiness")}

	switch {
	case m.runner == nil:
		sections = append(sections, warningStyle.Render("\n  No workout source configured. Run 'readiness init' first."))
	case m.running:
		sections = append(sections, m.renderProgress())
	case m.err != nil:
		sections = append(sections, m.renderError())
	case m.done:
		sections = append(sections, m.renderSummary())
	default:
		sections = append(sections, m.renderStartPrompt())
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m SyncModel) renderStartPrompt() string {
	lines := []string{
		"",
		"  u / enter   Update with workouts and recovery data since the last pass",
		"  f           Recompute every day in the history window",
		"",
		statusStyle.Render("  A full recompute is only needed after changing thresholds"),
	}
	return strings.Join(lines, "\n")
}

var phases = []struct {
	key   string
	label string
}{
	{"fetch", "Fetching workouts and recovery data"},
	{"aggregate", "Scoring workouts and removing duplicates"},
	{"fold", "Folding training load and readiness"},
	{"persist", "Saving results"},
}

func (m SyncModel) renderProgress() string {
	title := "  Updating..."
	if m.mode == service.ModeFull {
		title = "  Recomputing full history..."
	}
	lines := []string{"", title, ""}

	current := -1
	for i, p := range phases {
		if p.key == m.phase {
			current = i
		}
	}
	for i, p := range phases {
		line := fmt.Sprintf("%d. %s", i+1, p.label)
		switch {
		case i < current:
			lines = append(lines, "  "+successStyle.Render("✓ "+line))
		case i == current:
			lines = append(lines, "  > "+line)
		default:
			lines = append(lines, "    "+helpDescStyle.Render(line))
		}
	}
	return strings.Join(lines, "\n")
}

func (m SyncModel) renderError() string {
	msg := m.err.Error()
	switch {
	case errors.Is(m.err, service.ErrAlreadyProcessing):
		msg = "Another pass is already running"
	case errors.Is(m.err, service.ErrConfigurationIncomplete):
		msg = "Thresholds are missing. Check max_hr and resting_hr in the config. (" + m.err.Error() + ")"
	}
	lines := []string{
		"",
		errorStyle.Render("  Error: " + msg),
		"",
		statusStyle.Render("  Press 'u' or Enter to retry"),
	}
	return strings.Join(lines, "\n")
}

func (m SyncModel) renderSummary() string {
	r := m.result
	if r == nil {
		return ""
	}

	lines := []string{""}
	if r.NoChanges {
		lines = append(lines, statusStyle.Render("  Nothing new since the last pass"))
		return strings.Join(lines, "\n")
	}

	lines = append(lines, successStyle.Render(fmt.Sprintf("  %s pass complete: %s to %s", r.Mode, r.From, r.To)))
	lines = append(lines, fmt.Sprintf("  %d workouts stored (%d duplicates), %d days scored", r.WorkoutsWritten, r.Suppressed, r.DaysWritten))
	lines = append(lines, fmt.Sprintf("  Fetched %d primary, %d secondary workouts, %d recovery samples",
		r.PrimaryFetched, r.SecondaryFetched, r.SamplesFetched))

	if r.SecondaryDegraded != nil {
		lines = append(lines, "", warningStyle.Render("  Secondary source unavailable: "+r.SecondaryDegraded.Error()))
	}
	lines = append(lines, "", statusStyle.Render("  Press '1' to go to the dashboard"))
	return strings.Join(lines, "\n")
}
