package notification

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var ErrInvalidKey = errors.New("invalid notification key")

// Key identifies one (stage, boundary, window) reminder. It is either an OnDayKey, which
// embeds the calendar date and may fire once per distinct day, or a OnceKey, which fires
// at most once per stage until explicitly un-dismissed.
type Key interface {
	fmt.Stringer
	Stage() uuid.UUID
	Boundary() Boundary
	Window() Window
	isKey()
}

// OnDayKey renders as "end-<stage>-<date>" or "start-<stage>-<date>".
type OnDayKey struct {
	StageID uuid.UUID
	Bound   Boundary
	Date    Date
}

func NewOnDayKey(stageID uuid.UUID, b Boundary, d Date) OnDayKey {
	return OnDayKey{StageID: stageID, Bound: b, Date: d}
}

func (k OnDayKey) Stage() uuid.UUID   { return k.StageID }
func (k OnDayKey) Boundary() Boundary { return k.Bound }
func (k OnDayKey) Window() Window     { return WindowOnDay }
func (OnDayKey) isKey()               {}

func (k OnDayKey) String() string {
	return fmt.Sprintf("%s-%s-%s", k.Bound, k.StageID, k.Date)
}

// OnceKey renders as "tomorrow[-start]-<stage>", "7days[-start]-<stage>" or
// "missed-end-<stage>".
type OnceKey struct {
	StageID uuid.UUID
	Bound   Boundary
	Win     Window
}

func NewTomorrowKey(stageID uuid.UUID, b Boundary) OnceKey {
	return OnceKey{StageID: stageID, Bound: b, Win: WindowTomorrow}
}

func NewSevenDaysKey(stageID uuid.UUID, b Boundary) OnceKey {
	return OnceKey{StageID: stageID, Bound: b, Win: WindowSevenDays}
}

// NewMissedKey builds the missed reminder key. Only end boundaries can be missed.
func NewMissedKey(stageID uuid.UUID) OnceKey {
	return OnceKey{StageID: stageID, Bound: BoundaryEnd, Win: WindowMissed}
}

func (k OnceKey) Stage() uuid.UUID   { return k.StageID }
func (k OnceKey) Boundary() Boundary { return k.Bound }
func (k OnceKey) Window() Window     { return k.Win }
func (OnceKey) isKey()               {}

func (k OnceKey) String() string {
	var prefix string
	switch k.Win {
	case WindowTomorrow:
		prefix = "tomorrow"
	case WindowSevenDays:
		prefix = "7days"
	case WindowMissed:
		return "missed-end-" + k.StageID.String()
	default:
		prefix = string(k.Win)
	}
	if k.Bound == BoundaryStart {
		return prefix + "-start-" + k.StageID.String()
	}
	return prefix + "-" + k.StageID.String()
}

var oncePrefixes = []struct {
	prefix string
	window Window
	bound  Boundary
}{
	// longer prefixes first so "tomorrow-start-" wins over "tomorrow-"
	{"missed-end-", WindowMissed, BoundaryEnd},
	{"tomorrow-start-", WindowTomorrow, BoundaryStart},
	{"tomorrow-", WindowTomorrow, BoundaryEnd},
	{"7days-start-", WindowSevenDays, BoundaryStart},
	{"7days-", WindowSevenDays, BoundaryEnd},
}

// ParseKey is the inverse of Key.String.
func ParseKey(s string) (Key, error) {
	for _, p := range oncePrefixes {
		if rest, ok := strings.CutPrefix(s, p.prefix); ok {
			id, err := parseStageID(rest)
			if err != nil {
				return nil, fmt.Errorf("%w %q: %v", ErrInvalidKey, s, err)
			}
			return OnceKey{StageID: id, Bound: p.bound, Win: p.window}, nil
		}
	}

	for _, b := range []Boundary{BoundaryEnd, BoundaryStart} {
		rest, ok := strings.CutPrefix(s, string(b)+"-")
		if !ok {
			continue
		}
		// <36-char uuid>-<YYYY-MM-DD>
		if len(rest) != 36+1+len(isoDateLayout) || rest[36] != '-' {
			return nil, fmt.Errorf("%w %q", ErrInvalidKey, s)
		}
		id, err := parseStageID(rest[:36])
		if err != nil {
			return nil, fmt.Errorf("%w %q: %v", ErrInvalidKey, s, err)
		}
		d, err := ParseDate(rest[37:])
		if err != nil {
			return nil, fmt.Errorf("%w %q: %v", ErrInvalidKey, s, err)
		}
		return OnDayKey{StageID: id, Bound: b, Date: d}, nil
	}

	return nil, fmt.Errorf("%w %q", ErrInvalidKey, s)
}

func parseStageID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, err
	}
	// only the canonical lowercase form round-trips through String
	if id.String() != s {
		return uuid.Nil, fmt.Errorf("stage id %q is not in canonical form", s)
	}
	return id, nil
}
