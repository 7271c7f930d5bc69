package app

import (
	"time"

	"deadline_notifier/internal/domain/event"
	"deadline_notifier/internal/domain/notification"
)

// calendar holds the reference dates of one scan, all in the viewer's location.
type calendar struct {
	loc      *time.Location
	today    notification.Date
	tomorrow notification.Date
	week     notification.Date
}

func newCalendar(now time.Time) calendar {
	today := notification.DateOf(now)
	return calendar{
		loc:      now.Location(),
		today:    today,
		tomorrow: today.AddDays(1),
		week:     today.AddDays(7),
	}
}

// ScanDeadlines lists the reminders due at now for every incomplete stage. Calendar-day
// comparisons happen in now's location, so callers pass now already converted to the
// viewer's time zone. Nil preferences or an empty event list yield nothing.
func ScanDeadlines(now time.Time, events []*event.Event, prefs *notification.Preferences) []notification.Candidate {
	if prefs == nil || len(events) == 0 {
		return nil
	}

	cal := newCalendar(now)
	var candidates []notification.Candidate
	for _, ev := range events {
		if ev == nil {
			continue
		}
		for _, st := range ev.Stages {
			if st == nil || st.IsCompleted {
				continue
			}

			if !st.DeadlineEnd.IsZero() {
				if c, ok := cal.upcoming(ev, st, notification.BoundaryEnd, st.DeadlineEnd, prefs); ok {
					candidates = append(candidates, c)
				}
				if st.DeadlineEnd.Before(now) {
					candidates = append(candidates, newCandidate(ev, st, notification.NewMissedKey(st.ID), st.DeadlineEnd))
				}
			}

			// a passed start date is never reported as missed
			if st.DeadlineStart != nil && !st.DeadlineStart.IsZero() {
				if c, ok := cal.upcoming(ev, st, notification.BoundaryStart, *st.DeadlineStart, prefs); ok {
					candidates = append(candidates, c)
				}
			}
		}
	}
	return candidates
}

// upcoming matches one boundary against today, tomorrow and today+7. A boundary lands on
// at most one of those dates, so it yields at most one candidate.
func (c calendar) upcoming(ev *event.Event, st *event.Stage, b notification.Boundary, at time.Time, prefs *notification.Preferences) (notification.Candidate, bool) {
	day := notification.DateOf(at.In(c.loc))

	var key notification.Key
	switch day {
	case c.today:
		key = notification.NewOnDayKey(st.ID, b, day)
	case c.tomorrow:
		key = notification.NewTomorrowKey(st.ID, b)
	case c.week:
		key = notification.NewSevenDaysKey(st.ID, b)
	default:
		return notification.Candidate{}, false
	}
	if !prefs.Allows(key.Window()) {
		return notification.Candidate{}, false
	}
	return newCandidate(ev, st, key, at), true
}

func newCandidate(ev *event.Event, st *event.Stage, key notification.Key, deadline time.Time) notification.Candidate {
	title, body := alertText(key.Window(), key.Boundary(), ev.Title, st.Name)
	return notification.Candidate{
		Key:        key,
		Category:   key.Window().Category(),
		EventID:    ev.ID,
		StageID:    st.ID,
		EventTitle: ev.Title,
		StageName:  st.Name,
		Deadline:   deadline,
		Title:      title,
		Body:       body,
	}
}
