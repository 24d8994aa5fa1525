package glitter

import (
	"fmt"
	"time"
)

// debugStats holds timing and failure counters for the debug overlay.
type debugStats struct {
	tickTime   time.Duration
	renderTime time.Duration
	ticks      uint64
	primitives int
	failures   int
}

// DebugLines returns overlay text: a header, one line per non-empty system
// with its live count, and the total. It returns nil when no systems are
// registered. With WithDebug enabled, timing lines follow.
func (m *Manager) DebugLines() []string {
	if len(m.systems) == 0 {
		return nil
	}
	lines := []string{"Glitter:"}
	total := 0
	for _, s := range m.systems {
		n := s.ParticleCount()
		if n == 0 {
			continue
		}
		lines = append(lines, fmt.Sprintf(" - %s: %d", s.Name, n))
		total += n
	}
	lines = append(lines, fmt.Sprintf(" - %d", total))

	if m.debug {
		lines = append(lines,
			fmt.Sprintf(" tick: %v | render: %v", m.stats.tickTime, m.stats.renderTime),
			fmt.Sprintf(" ticks: %d | primitives: %d | failures: %d",
				m.stats.ticks, m.stats.primitives, m.stats.failures),
		)
	}
	return lines
}

// Failures returns how many tick, render or reload failures were logged.
func (m *Manager) Failures() int { return m.stats.failures }
