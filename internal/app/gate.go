package app

import (
	"time"

	"deadline_notifier/internal/domain/event"
	"deadline_notifier/internal/domain/notification"
)

// Gate filters candidates against the dismissal records read at the start of a pass.
// It has no side effects.
type Gate struct {
	dismissals map[string]*notification.Dismissal
}

func NewGate(dismissals []*notification.Dismissal) *Gate {
	g := &Gate{dismissals: make(map[string]*notification.Dismissal, len(dismissals))}
	for _, d := range dismissals {
		if d == nil {
			continue
		}
		g.dismissals[d.Key] = d
	}
	return g
}

// Suppressed reports whether key is permanently dismissed or snoozed past now.
func (g *Gate) Suppressed(key string, now time.Time) bool {
	d, ok := g.dismissals[key]
	return ok && d.Suppresses(now)
}

// Filter keeps the candidates that are not suppressed, preserving order.
func (g *Gate) Filter(now time.Time, candidates []notification.Candidate) []notification.Candidate {
	out := make([]notification.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if g.Suppressed(c.KeyString(), now) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Scan runs the scanner and the gate in one step.
func Scan(now time.Time, events []*event.Event, prefs *notification.Preferences, dismissals []*notification.Dismissal) []notification.Candidate {
	return NewGate(dismissals).Filter(now, ScanDeadlines(now, events, prefs))
}
