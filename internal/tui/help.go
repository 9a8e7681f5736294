package tui

import (
	"fmt"
	"strings"

	"readiness/internal/analysis"

	"github.com/charmbracelet/lipgloss"
)

// binding is one key and what it does
type binding struct {
	key, action string
}

// helpGroups lists the bindings per screen in the order they are shown
var helpGroups = []struct {
	screen   string
	bindings []binding
}{
	{"Anywhere", []binding{
		{"1", "dashboard"},
		{"2", "workouts"},
		{"3 or s", "update"},
		{"?", "this page"},
		{"esc", "back"},
		{"q", "quit (locked while a pass runs; ctrl+c always quits)"},
	}},
	{"Dashboard", []binding{
		{"enter", "today's breakdown"},
		{"r", "reload scores"},
	}},
	{"Workouts", []binding{
		{"j k / arrows", "move"},
		{"pgup pgdown", "page"},
		{"enter", "breakdown of that day"},
		{"r", "reload"},
	}},
	{"Day breakdown", []binding{
		{"arrows", "scroll"},
		{"r", "reload"},
	}},
	{"Update", []binding{
		{"u / enter", "fold in new workouts and recovery data"},
		{"f", "rebuild the whole history window"},
	}},
}

// glossary explains the numbers shown on the dashboard
func glossary() [][2]string {
	return [][2]string{
		{"Readiness", fmt.Sprintf("0-100 from form, moved up to ±%.0f by HRV and resting HR against your baseline",
			analysis.MaxPhysiologyAdjustment)},
		{"TSS", "stress of one workout: power if FTP is known, else heart rate, else duration"},
		{"Fitness", "42-day exponentially weighted daily TSS (chronic load)"},
		{"Fatigue", "7-day exponentially weighted daily TSS (acute load)"},
		{"Form", "fitness minus fatigue; negative while building, positive when fresh"},
		{"Ramp", fmt.Sprintf("fitness change over %d days; over 5 is aggressive, over 8 unsafe",
			analysis.RampWindowDays)},
	}
}

// renderHelp draws the help page
func renderHelp() string {
	heading := lipgloss.NewStyle().Bold(true).Foreground(secondaryColor)
	muted := lipgloss.NewStyle().Foreground(mutedColor)

	var b strings.Builder
	b.WriteString(cardTitleStyle.Render("Keys"))
	b.WriteString("\n")
	for _, g := range helpGroups {
		b.WriteString("\n" + heading.Render(g.screen) + "\n")
		for _, k := range g.bindings {
			b.WriteString("  " + RenderKeyHelp(k.key, k.action) + "\n")
		}
	}

	b.WriteString("\n" + heading.Render("What the numbers mean") + "\n")
	for _, entry := range glossary() {
		fmt.Fprintf(&b, "  %s  %s\n", helpKeyStyle.Render(fmt.Sprintf("%-9s", entry[0])), muted.Render(entry[1]))
	}
	return b.String()
}
