package tui

import (
	"fmt"
	"time"

	"readiness/internal/analysis"
)

const (
	metersPerMile = 1609.34
	metersPerKm   = 1000.0
)

// Units formats distances in the athlete's preferred unit system
type Units struct {
	system analysis.UnitSystem
}

// NewUnits creates a formatter for system; anything but imperial is metric
func NewUnits(system analysis.UnitSystem) Units {
	return Units{system: system}
}

// IsImperial reports whether distances are shown in miles
func (u Units) IsImperial() bool {
	return u.system == analysis.UnitsImperial
}

// FormatDistance formats meters in the preferred unit, "-" when unknown
func (u Units) FormatDistance(meters float64) string {
	if meters <= 0 {
		return "-"
	}
	if u.IsImperial() {
		return fmt.Sprintf("%.1f mi", meters/metersPerMile)
	}
	return fmt.Sprintf("%.1f km", meters/metersPerKm)
}

// DistanceLabel returns the short unit label
func (u Units) DistanceLabel() string {
	if u.IsImperial() {
		return "mi"
	}
	return "km"
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Minute)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

func formatOptional(v *float64, format string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf(format, *v)
}

func truncateName(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
